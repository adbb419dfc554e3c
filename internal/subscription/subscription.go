// Package subscription рассчитывает жизненный цикл подписки: продление,
// отмену и признак активности. Все функции чистые и принимают текущее время явно.
package subscription

import (
	"time"

	"github.com/harmonyeco/gec-subscriptions/internal/lib/month"
	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

// Метки статуса подписки.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// ComputeRenewal возвращает новый момент продления и новый срок истечения.
// Действующая подписка продлевается от текущего срока, истёкшая или
// никогда не активированная — от now. durationMonths должен быть >= 1.
// Календарь берётся из часового пояса now, в каком бы поясе ни был сохранён срок.
func ComputeRenewal(currentExpiry *time.Time, now time.Time, durationMonths int) (newRenewal, newExpiry time.Time) {
	base := now
	if currentExpiry != nil && currentExpiry.After(now) {
		base = currentExpiry.In(now.Location())
	}
	return now, month.AddMonths(base, durationMonths)
}

// IsActive сообщает, истекает ли подписка строго позже now.
func IsActive(expiry *time.Time, now time.Time) bool {
	return expiry != nil && expiry.After(now)
}

// Status возвращает метку статуса для expiry на момент now.
func Status(expiry *time.Time, now time.Time) string {
	if IsActive(expiry, now) {
		return StatusActive
	}
	return StatusInactive
}

// Activate продлевает подписку пользователя и возвращает обновлённую запись
// вместе с полями, которые нужно сохранить.
func Activate(user models.User, now time.Time, durationMonths int) (models.User, models.Fields) {
	renewal, expiry := ComputeRenewal(user.ExpiresAt, now, durationMonths)
	user.LastRenewal = &renewal
	user.ExpiresAt = &expiry
	return user, models.Fields{
		models.FieldLastRenewal: renewal,
		models.FieldExpiresAt:   expiry,
	}
}

// Cancel снимает срок истечения. Момент последнего продления сохраняется.
func Cancel(user models.User) models.User {
	user.ExpiresAt = nil
	return user
}

// CancelFields возвращает поля, которые нужно сохранить при отмене.
func CancelFields() models.Fields {
	return models.Fields{models.FieldExpiresAt: nil}
}

// View дополняет запись статусом, вычисленным на момент now.
func View(user models.User, now time.Time) models.UserView {
	view := models.UserView{
		User:   user,
		Active: IsActive(user.ExpiresAt, now),
		Status: StatusInactive,
	}
	if view.Active {
		view.Status = StatusActive
		view.RemainingMonths = month.Remaining(now, *user.ExpiresAt)
	}
	return view
}

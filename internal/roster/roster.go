// Package roster фильтрует список пользователей в памяти: по наличию телефона
// и по цифрам номера телефона.
package roster

import (
	"strings"

	"github.com/harmonyeco/gec-subscriptions/internal/models"
)

// Digits оставляет в s только ASCII-цифры 0-9.
func Digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// HasPhone сообщает, задан ли у пользователя непустой номер телефона.
func HasPhone(u models.User) bool {
	return u.Phone != nil && strings.TrimSpace(*u.Phone) != ""
}

// Displayable оставляет только записи с телефоном, порядок сохраняется.
func Displayable(users []models.User) []models.User {
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if HasPhone(u) {
			out = append(out, u)
		}
	}
	return out
}

// FilterByPhone возвращает пользователей, в цифрах телефона которых встречаются
// цифры запроса. Если в запросе нет цифр, users возвращается без изменений.
func FilterByPhone(users []models.User, query string) []models.User {
	q := Digits(query)
	if q == "" {
		return users
	}
	out := make([]models.User, 0, len(users))
	for _, u := range users {
		if u.Phone == nil {
			continue
		}
		if strings.Contains(Digits(*u.Phone), q) {
			out = append(out, u)
		}
	}
	return out
}

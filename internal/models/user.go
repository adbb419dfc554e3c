// Package models содержит доменную модель пользователя GEC APP,
// сырой документ хранилища и вспомогательные типы для JSON-запросов.
package models

import (
	"time"
)

// Имена полей документа пользователя в хранилище.
const (
	FieldName        = "name"
	FieldPhone       = "phone"
	FieldEmail       = "email"
	FieldLastRenewal = "lastRenewal"
	FieldExpiresAt   = "expiresAt"
)

// User представляет запись пользователя, прочитанную из хранилища документов.
// Все атрибуты, кроме идентификатора, необязательны.
type User struct {
	ID          string     `json:"id"`                     // Непрозрачный уникальный идентификатор
	Name        *string    `json:"name,omitempty"`         // Отображаемое имя
	Phone       *string    `json:"phone,omitempty"`        // Номер телефона в произвольном формате
	Email       *string    `json:"email,omitempty"`        // Электронная почта
	LastRenewal *time.Time `json:"last_renewal,omitempty"` // Момент последней активации/продления
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`   // Момент истечения подписки
}

// UserView — пользователь вместе с вычисленным на момент чтения статусом подписки.
// Статус нигде не хранится и пересчитывается при каждом ответе.
type UserView struct {
	User
	Status          string `json:"status"`
	Active          bool   `json:"active"`
	RemainingMonths int    `json:"remaining_months"`
}

// UserFromDocument собирает User из сырого документа.
// Отсутствующие поля и поля с неожиданным типом остаются пустыми.
func UserFromDocument(doc Document) User {
	return User{
		ID:          doc.ID,
		Name:        stringField(doc.Fields, FieldName),
		Phone:       stringField(doc.Fields, FieldPhone),
		Email:       stringField(doc.Fields, FieldEmail),
		LastRenewal: timeField(doc.Fields, FieldLastRenewal),
		ExpiresAt:   timeField(doc.Fields, FieldExpiresAt),
	}
}

func stringField(fields Fields, key string) *string {
	switch v := fields[key].(type) {
	case string:
		return &v
	case *string:
		if v == nil {
			return nil
		}
		s := *v
		return &s
	default:
		return nil
	}
}

func timeField(fields Fields, key string) *time.Time {
	switch v := fields[key].(type) {
	case time.Time:
		return &v
	case *time.Time:
		if v == nil {
			return nil
		}
		t := *v
		return &t
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return nil
		}
		return &t
	default:
		return nil
	}
}

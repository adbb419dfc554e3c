package models

import "time"

// ActivateRequest используется для приёма JSON-запроса на активацию или продление подписки.
type ActivateRequest struct {
	DurationMonths int `json:"duration_months" validate:"required,min=1,max=120"` // Срок продления в месяцах
}

// LoginRequest — учётные данные оператора.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ExpiryNotice — событие о скором окончании подписки, публикуется планировщиком в очередь.
type ExpiryNotice struct {
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	ExpiresAt time.Time `json:"expires_at"`
}

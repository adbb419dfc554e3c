package models

// Fields — набор полей документа. Значение nil в частичном обновлении
// означает удаление поля.
type Fields map[string]any

// Document — сырой документ хранилища: идентификатор и поля как есть.
type Document struct {
	ID     string
	Fields Fields
}

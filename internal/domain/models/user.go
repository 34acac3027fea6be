package models

import "time"

// User представляет пользователя магазина
type User struct {
	ID        int64
	Email     string
	PassHash  []byte
	IsStaff   bool // админ управляет каталогом, подборками и статусами заказов
	CreatedAt time.Time
}

// UserSummary — краткое представление пользователя для вложенных ответов API
type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

// Summary возвращает представление пользователя без чувствительных полей
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email}
}

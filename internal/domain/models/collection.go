package models

import "time"

// ProductCollection — подборка товаров от администратора.
// Связь с товарами many-to-many: удаление подборки товары не трогает.
type ProductCollection struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Text      string    `json:"text"`
	ItemIDs   []int64   `json:"collection_items"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

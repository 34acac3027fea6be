package models

import "time"

// ProductReview представляет отзыв к товару.
// На пару (автор, товар) допускается не больше одного отзыва.
type ProductReview struct {
	ID        int64       `json:"id"`
	CreatorID int64       `json:"-"`
	Creator   UserSummary `json:"creator"`
	ProductID int64       `json:"product_id"`
	Text      string      `json:"text"`
	Stars     int         `json:"stars"` // оценка от 0 до 5
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

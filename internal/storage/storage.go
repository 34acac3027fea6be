package storage

import (
	"errors"
	"strings"

	"github.com/lib/pq"
)

// ErrUniqueViolation возвращается, когда вставка нарушила уникальный индекс
// (один отзыв на пару автор-товар, одна позиция на пару заказ-товар).
// Сервисный слой переводит её в понятную клиенту ошибку валидации.
var ErrUniqueViolation = errors.New("unique constraint violation")

// код unique_violation в postgres
const pqUniqueViolation = "23505"

// asUniqueViolation подменяет ошибку postgres о нарушении уникальности
// на сентинел ErrUniqueViolation, остальные ошибки возвращает как есть
func asUniqueViolation(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrUniqueViolation
	}
	return err
}

func whereClause(conds []string) string {
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

package service

import "github.com/linemk/almost-amazon/internal/domain/models"

// Actor — аутентифицированный пользователь запроса.
// Заполняется в handlers из JWT, клиентом не передаётся.
type Actor struct {
	UserID  int64
	IsStaff bool
}

// Правила доступа собраны здесь, а не размазаны по endpoint'ам:
// одна функция на пару (ресурс, действие), каждая возвращает
// ошибку с конкретной причиной отказа.

// canCreateOrder: при создании заказа нельзя указывать статус
func canCreateOrder(statusProvided bool) error {
	if statusProvided {
		return ErrStatusOnCreate
	}
	return nil
}

// canModifyOrder проверяет update/partial-update/delete заказа.
// Админу можно всё. Не-админ должен быть создателем заказа, не трогать
// статус и успеть, пока заказ ещё NEW.
func canModifyOrder(actor Actor, order *models.Order, statusProvided bool) error {
	if actor.IsStaff {
		return nil
	}
	if order.CreatorID != actor.UserID {
		return ErrNotOwner
	}
	if statusProvided {
		return ErrStatusNotStaff
	}
	if order.Status != models.OrderStatusNew {
		return ErrOrderNotNew
	}
	return nil
}

// canReadOrder: не-админ видит только свои заказы
func canReadOrder(actor Actor, order *models.Order) bool {
	return actor.IsStaff || order.CreatorID == actor.UserID
}

// canModifyReview: отзыв правит его автор или админ
func canModifyReview(actor Actor, review *models.ProductReview) error {
	if actor.IsStaff || review.CreatorID == actor.UserID {
		return nil
	}
	return ErrNotOwner
}

// requireStaff: каталог и подборки меняет только админ
func requireStaff(actor Actor) error {
	if !actor.IsStaff {
		return ErrStaffOnly
	}
	return nil
}

package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/linemk/almost-amazon/internal/domain/models"
)

func TestCanCreateOrder(t *testing.T) {
	// создание без статуса разрешено любому аутентифицированному пользователю
	assert.NoError(t, canCreateOrder(false))
	// явный статус в запросе на создание запрещен всем
	assert.ErrorIs(t, canCreateOrder(true), ErrStatusOnCreate)
}

func TestCanModifyOrder_Staff(t *testing.T) {
	staff := Actor{UserID: 1, IsStaff: true}
	order := &models.Order{CreatorID: 2, Status: models.OrderStatusDone}

	// админу можно всё, включая смену статуса чужого завершенного заказа
	assert.NoError(t, canModifyOrder(staff, order, true))
	assert.NoError(t, canModifyOrder(staff, order, false))
}

func TestCanModifyOrder_NotOwner(t *testing.T) {
	actor := Actor{UserID: 1}
	order := &models.Order{CreatorID: 2, Status: models.OrderStatusNew}

	assert.ErrorIs(t, canModifyOrder(actor, order, false), ErrNotOwner)
}

func TestCanModifyOrder_StatusByOwner(t *testing.T) {
	actor := Actor{UserID: 1}
	order := &models.Order{CreatorID: 1, Status: models.OrderStatusNew}

	// смена статуса запрещена даже создателю
	assert.ErrorIs(t, canModifyOrder(actor, order, true), ErrStatusNotStaff)
}

func TestCanModifyOrder_NotNew(t *testing.T) {
	actor := Actor{UserID: 1}

	for _, status := range []string{models.OrderStatusInProgress, models.OrderStatusDone} {
		order := &models.Order{CreatorID: 1, Status: status}
		assert.ErrorIs(t, canModifyOrder(actor, order, false), ErrOrderNotNew)
	}
}

func TestCanModifyOrder_OwnerNewOrder(t *testing.T) {
	actor := Actor{UserID: 1}
	order := &models.Order{CreatorID: 1, Status: models.OrderStatusNew}

	assert.NoError(t, canModifyOrder(actor, order, false))
}

func TestCanReadOrder(t *testing.T) {
	order := &models.Order{CreatorID: 2}

	assert.True(t, canReadOrder(Actor{UserID: 2}, order), "creator sees own order")
	assert.True(t, canReadOrder(Actor{UserID: 1, IsStaff: true}, order), "staff sees all orders")
	assert.False(t, canReadOrder(Actor{UserID: 1}, order), "stranger does not see the order")
}

func TestCanModifyReview(t *testing.T) {
	review := &models.ProductReview{CreatorID: 2}

	assert.NoError(t, canModifyReview(Actor{UserID: 2}, review))
	assert.NoError(t, canModifyReview(Actor{UserID: 1, IsStaff: true}, review))
	assert.ErrorIs(t, canModifyReview(Actor{UserID: 1}, review), ErrNotOwner)
}

func TestRequireStaff(t *testing.T) {
	assert.NoError(t, requireStaff(Actor{UserID: 1, IsStaff: true}))
	assert.ErrorIs(t, requireStaff(Actor{UserID: 1}), ErrStaffOnly)
}

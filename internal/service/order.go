package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/almost-amazon/internal/domain/models"
	"github.com/linemk/almost-amazon/internal/storage"
)

// PositionInput — строка заказа из запроса клиента
type PositionInput struct {
	ProductID int64
	Amount    int
}

// OrderUpdate — частичное обновление заказа. Отсутствующее поле не трогается.
// Переданные позиции полностью заменяют прежний набор (не сливаются с ним) —
// осознанное решение, унаследованное от исходного поведения.
type OrderUpdate struct {
	Positions         []PositionInput
	PositionsProvided bool
	Status            *string
}

type OrderService interface {
	Create(ctx context.Context, actor Actor, positions []PositionInput, statusProvided bool) (*models.Order, error)
	Update(ctx context.Context, actor Actor, orderID int64, upd OrderUpdate) (*models.Order, error)
	Get(ctx context.Context, actor Actor, orderID int64) (*models.Order, error)
	List(ctx context.Context, actor Actor, filter storage.OrderFilter) ([]*models.Order, error)
	Delete(ctx context.Context, actor Actor, orderID int64) error
}

type orderService struct {
	log         *slog.Logger
	db          *sql.DB
	productRepo storage.ProductStorage
	orderRepo   storage.OrderStorage
}

func NewOrderService(log *slog.Logger, db *sql.DB, productRepo storage.ProductStorage, orderRepo storage.OrderStorage) OrderService {
	return &orderService{
		log:         log,
		db:          db,
		productRepo: productRepo,
		orderRepo:   orderRepo,
	}
}

// Create создаёт заказ с позициями одной транзакцией.
// Сумма заказа считается на сервере по актуальным ценам товаров,
// статус всегда NEW. Если что-то идет не так, транзакция откатывается.
func (s *orderService) Create(ctx context.Context, actor Actor, positions []PositionInput, statusProvided bool) (*models.Order, error) {
	const op = "service.OrderService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID))

	if err := canCreateOrder(statusProvided); err != nil {
		logger.Warn("status supplied on creation")
		return nil, err
	}
	if err := validatePositions(positions); err != nil {
		return nil, err
	}

	logger.Info("starting order creation transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	total, err := s.resolveTotal(ctx, tx, positions)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to price order", slog.Any("error", err))
		return nil, err
	}

	orderID, err := s.orderRepo.CreateOrderTx(ctx, tx, actor.UserID, models.OrderStatusNew, total)
	if err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to create order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create order: %w", op, err)
	}

	if err := s.insertPositions(ctx, tx, orderID, positions); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to insert positions", slog.Any("error", err))
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order created", slog.Int64("orderID", orderID), slog.String("total", total.String()))
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

// Update обновляет заказ. Проверка прав идет до транзакции, сама транзакция
// заменяет набор позиций (с пересчетом суммы) и/или статус.
func (s *orderService) Update(ctx context.Context, actor Actor, orderID int64, upd OrderUpdate) (*models.Order, error) {
	const op = "service.OrderService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canReadOrder(actor, order) {
		// чужой заказ для не-админа неотличим от несуществующего
		return nil, storage.ErrOrderNotFound
	}
	if err := canModifyOrder(actor, order, upd.Status != nil); err != nil {
		logger.Warn("order modification denied", slog.Any("reason", err))
		return nil, err
	}

	status := order.Status
	if upd.Status != nil {
		if !models.ValidOrderStatus(*upd.Status) {
			return nil, ErrBadStatus
		}
		status = *upd.Status
	}
	if upd.PositionsProvided {
		if err := validatePositions(upd.Positions); err != nil {
			return nil, err
		}
	}

	logger.Info("starting order update transaction")
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to begin transaction: %w", op, err)
	}

	total := order.Total
	if upd.PositionsProvided {
		if err := s.orderRepo.DeletePositionsTx(ctx, tx, orderID); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to delete positions", slog.Any("error", err))
			return nil, fmt.Errorf("%s: failed to delete positions: %w", op, err)
		}
		total, err = s.resolveTotal(ctx, tx, upd.Positions)
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to price order", slog.Any("error", err))
			return nil, err
		}
		if err := s.insertPositions(ctx, tx, orderID, upd.Positions); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				logger.Error("transaction rollback failed", slog.Any("error", rbErr))
			}
			logger.Error("failed to insert positions", slog.Any("error", err))
			return nil, err
		}
	}

	if err := s.orderRepo.UpdateOrderTx(ctx, tx, orderID, status, total); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			logger.Error("transaction rollback failed", slog.Any("error", rbErr))
		}
		logger.Error("failed to update order", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update order: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("failed to commit transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	logger.Info("order updated", slog.String("status", status), slog.String("total", total.String()))
	return s.orderRepo.GetOrderByID(ctx, orderID)
}

func (s *orderService) Get(ctx context.Context, actor Actor, orderID int64) (*models.Order, error) {
	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !canReadOrder(actor, order) {
		return nil, storage.ErrOrderNotFound
	}
	return order, nil
}

// List возвращает заказы по фильтру: админ видит все, остальные — только свои
func (s *orderService) List(ctx context.Context, actor Actor, filter storage.OrderFilter) ([]*models.Order, error) {
	if !actor.IsStaff {
		creatorID := actor.UserID
		filter.CreatorID = &creatorID
	}
	return s.orderRepo.ListOrders(ctx, filter)
}

func (s *orderService) Delete(ctx context.Context, actor Actor, orderID int64) error {
	const op = "service.OrderService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("orderID", orderID))

	order, err := s.orderRepo.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}
	if !canReadOrder(actor, order) {
		return storage.ErrOrderNotFound
	}
	if err := canModifyOrder(actor, order, false); err != nil {
		logger.Warn("order deletion denied", slog.Any("reason", err))
		return err
	}

	if err := s.orderRepo.DeleteOrder(ctx, orderID); err != nil {
		logger.Error("failed to delete order", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete order: %w", op, err)
	}
	logger.Info("order deleted")
	return nil
}

func validatePositions(positions []PositionInput) error {
	if len(positions) == 0 {
		return ErrEmptyOrder
	}
	for _, pos := range positions {
		if pos.Amount < 1 {
			return ErrBadAmount
		}
	}
	return nil
}

// resolveTotal считает сумму заказа по текущим ценам товаров.
// Деньги считаются в decimal, чтобы исключить дрейф плавающей точки.
func (s *orderService) resolveTotal(ctx context.Context, tx *sql.Tx, positions []PositionInput) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, pos := range positions {
		product, err := s.productRepo.GetProductByIDTx(ctx, tx, pos.ProductID)
		if err != nil {
			if errors.Is(err, storage.ErrProductNotFound) {
				// несуществующий товар в позициях — ошибка валидации запроса
				return decimal.Zero, ErrUnknownProduct
			}
			return decimal.Zero, err
		}
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(pos.Amount))))
	}
	return total, nil
}

// insertPositions вставляет позиции заказа; дубль товара в пределах одного
// заказа отклоняется уникальным индексом, а не сливается по количеству
func (s *orderService) insertPositions(ctx context.Context, tx *sql.Tx, orderID int64, positions []PositionInput) error {
	for _, pos := range positions {
		if err := s.orderRepo.InsertPositionTx(ctx, tx, orderID, pos.ProductID, pos.Amount); err != nil {
			if errors.Is(err, storage.ErrUniqueViolation) {
				return ErrDuplicatePosition
			}
			return err
		}
	}
	return nil
}

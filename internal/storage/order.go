package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/linemk/almost-amazon/internal/domain/models"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderFilter — необязательные условия выборки заказов.
// CreatorID заполняется сервисом для не-админов: они видят только свои заказы.
type OrderFilter struct {
	CreatorID   *int64
	Status      string
	TotalFrom   *decimal.Decimal
	TotalTo     *decimal.Decimal
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	UpdatedFrom *time.Time
	UpdatedTo   *time.Time
}

// OrderStorage описывает методы для работы с заказами и их позициями.
// Методы с суффиксом Tx выполняются внутри переданной транзакции:
// создание/обновление заказа и его позиций должны коммититься атомарно.
type OrderStorage interface {
	CreateOrderTx(ctx context.Context, tx *sql.Tx, creatorID int64, status string, total decimal.Decimal) (int64, error)
	InsertPositionTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, amount int) error
	DeletePositionsTx(ctx context.Context, tx *sql.Tx, orderID int64) error
	UpdateOrderTx(ctx context.Context, tx *sql.Tx, orderID int64, status string, total decimal.Decimal) error
	GetOrderByID(ctx context.Context, id int64) (*models.Order, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error)
	DeleteOrder(ctx context.Context, id int64) error
}

type orderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) OrderStorage {
	return &orderRepository{db: db}
}

// CreateOrderTx вставляет строку заказа и возвращает её id.
// Позиции вставляются отдельно через InsertPositionTx в той же транзакции.
func (r *orderRepository) CreateOrderTx(ctx context.Context, tx *sql.Tx, creatorID int64, status string, total decimal.Decimal) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx,
		"INSERT INTO orders (creator_id, status, total) VALUES ($1, $2, $3) RETURNING id",
		creatorID, status, total,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create order: %w", err)
	}
	return id, nil
}

// InsertPositionTx вставляет позицию заказа. Дубль товара в одном заказе
// упирается в уникальный индекс (order_id, product_id) и возвращается
// как ErrUniqueViolation.
func (r *orderRepository) InsertPositionTx(ctx context.Context, tx *sql.Tx, orderID, productID int64, amount int) error {
	_, err := tx.ExecContext(ctx,
		"INSERT INTO positions (order_id, product_id, amount) VALUES ($1, $2, $3)",
		orderID, productID, amount,
	)
	if err != nil {
		return asUniqueViolation(err)
	}
	return nil
}

// DeletePositionsTx удаляет все позиции заказа: обновление позиций — это
// полная замена набора, а не слияние
func (r *orderRepository) DeletePositionsTx(ctx context.Context, tx *sql.Tx, orderID int64) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM positions WHERE order_id = $1", orderID); err != nil {
		return fmt.Errorf("failed to delete positions: %w", err)
	}
	return nil
}

func (r *orderRepository) UpdateOrderTx(ctx context.Context, tx *sql.Tx, orderID int64, status string, total decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE orders SET status = $1, total = $2, updated_at = NOW() WHERE id = $3",
		status, total, orderID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

const orderColumns = `o.id, o.creator_id, u.email, o.status, o.total, o.created_at, o.updated_at`

func (r *orderRepository) GetOrderByID(ctx context.Context, id int64) (*models.Order, error) {
	order := &models.Order{}
	row := r.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+`
		FROM orders o
		JOIN users u ON o.creator_id = u.id
		WHERE o.id = $1`, id)
	if err := row.Scan(&order.ID, &order.CreatorID, &order.Creator.Email, &order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	order.Creator.ID = order.CreatorID

	if err := r.attachPositions(ctx, []*models.Order{order}); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders возвращает заказы по фильтру вместе с позициями
func (r *orderRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]*models.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders o
		JOIN users u ON o.creator_id = u.id`
	var args []any
	var conds []string

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		conds = append(conds, "o.creator_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "o.status = $"+strconv.Itoa(len(args)))
	}
	if filter.TotalFrom != nil {
		args = append(args, *filter.TotalFrom)
		conds = append(conds, "o.total >= $"+strconv.Itoa(len(args)))
	}
	if filter.TotalTo != nil {
		args = append(args, *filter.TotalTo)
		conds = append(conds, "o.total <= $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conds = append(conds, "o.created_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conds = append(conds, "o.created_at <= $"+strconv.Itoa(len(args)))
	}
	if filter.UpdatedFrom != nil {
		args = append(args, *filter.UpdatedFrom)
		conds = append(conds, "o.updated_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.UpdatedTo != nil {
		args = append(args, *filter.UpdatedTo)
		conds = append(conds, "o.updated_at <= $"+strconv.Itoa(len(args)))
	}
	query += whereClause(conds) + " ORDER BY o.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.Order
	for rows.Next() {
		order := &models.Order{}
		if err := rows.Scan(&order.ID, &order.CreatorID, &order.Creator.Email, &order.Status, &order.Total, &order.CreatedAt, &order.UpdatedAt); err != nil {
			return nil, err
		}
		order.Creator.ID = order.CreatorID
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachPositions(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// attachPositions одним запросом подгружает позиции для набора заказов
func (r *orderRepository) attachPositions(ctx context.Context, orders []*models.Order) error {
	if len(orders) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(orders))
	byID := make(map[int64]*models.Order, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Positions = []*models.Position{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT pos.id, pos.order_id, pos.product_id, pos.amount, p.name
		FROM positions pos
		JOIN products p ON pos.product_id = p.id
		WHERE pos.order_id = ANY($1)
		ORDER BY pos.id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		pos := &models.Position{}
		if err := rows.Scan(&pos.ID, &pos.OrderID, &pos.ProductID, &pos.Amount, &pos.Name); err != nil {
			return err
		}
		if order, ok := byID[pos.OrderID]; ok {
			order.Positions = append(order.Positions, pos)
		}
	}
	return rows.Err()
}

// DeleteOrder удаляет заказ, позиции уходят каскадом на уровне схемы
func (r *orderRepository) DeleteOrder(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM orders WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

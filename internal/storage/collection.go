package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/linemk/almost-amazon/internal/domain/models"
)

var ErrCollectionNotFound = errors.New("collection not found")

// код foreign_key_violation в postgres: ссылка на несуществующий товар
const pqForeignKeyViolation = "23503"

// CollectionStorage описывает методы для работы с подборками товаров.
type CollectionStorage interface {
	CreateCollection(ctx context.Context, c *models.ProductCollection) (*models.ProductCollection, error)
	GetCollectionByID(ctx context.Context, id int64) (*models.ProductCollection, error)
	ListCollections(ctx context.Context) ([]*models.ProductCollection, error)
	UpdateCollection(ctx context.Context, c *models.ProductCollection) error
	DeleteCollection(ctx context.Context, id int64) error
}

type collectionRepository struct {
	db *sql.DB
}

func NewCollectionRepository(db *sql.DB) CollectionStorage {
	return &collectionRepository{db: db}
}

// CreateCollection вставляет подборку вместе со ссылками на товары одной транзакцией
func (r *collectionRepository) CreateCollection(ctx context.Context, c *models.ProductCollection) (*models.ProductCollection, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	err = tx.QueryRowContext(ctx,
		`INSERT INTO product_collections (title, text) VALUES ($1, $2)
		 RETURNING id, created_at, updated_at`,
		c.Title, c.Text,
	).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		_ = tx.Rollback()
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	if err := insertCollectionItems(ctx, tx, c.ID, c.ItemIDs); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func insertCollectionItems(ctx context.Context, tx *sql.Tx, collectionID int64, itemIDs []int64) error {
	for _, productID := range itemIDs {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO product_collection_items (collection_id, product_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			collectionID, productID,
		)
		if err != nil {
			var pqErr *pq.Error
			if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
				return ErrProductNotFound
			}
			return fmt.Errorf("failed to add collection item: %w", err)
		}
	}
	return nil
}

func (r *collectionRepository) GetCollectionByID(ctx context.Context, id int64) (*models.ProductCollection, error) {
	c := &models.ProductCollection{}
	row := r.db.QueryRowContext(ctx,
		"SELECT id, title, text, created_at, updated_at FROM product_collections WHERE id = $1", id)
	if err := row.Scan(&c.ID, &c.Title, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCollectionNotFound
		}
		return nil, err
	}

	if err := r.attachItems(ctx, []*models.ProductCollection{c}); err != nil {
		return nil, err
	}
	return c, nil
}

func (r *collectionRepository) ListCollections(ctx context.Context) ([]*models.ProductCollection, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, title, text, created_at, updated_at FROM product_collections ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var collections []*models.ProductCollection
	for rows.Next() {
		c := &models.ProductCollection{}
		if err := rows.Scan(&c.ID, &c.Title, &c.Text, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		collections = append(collections, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.attachItems(ctx, collections); err != nil {
		return nil, err
	}
	return collections, nil
}

// attachItems одним запросом подгружает ссылки на товары для набора подборок
func (r *collectionRepository) attachItems(ctx context.Context, collections []*models.ProductCollection) error {
	if len(collections) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(collections))
	byID := make(map[int64]*models.ProductCollection, len(collections))
	for _, c := range collections {
		ids = append(ids, c.ID)
		byID[c.ID] = c
		c.ItemIDs = []int64{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT collection_id, product_id
		FROM product_collection_items
		WHERE collection_id = ANY($1)
		ORDER BY product_id`, pq.Array(ids))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var collectionID, productID int64
		if err := rows.Scan(&collectionID, &productID); err != nil {
			return err
		}
		if c, ok := byID[collectionID]; ok {
			c.ItemIDs = append(c.ItemIDs, productID)
		}
	}
	return rows.Err()
}

// UpdateCollection обновляет поля подборки и полностью заменяет набор товаров
func (r *collectionRepository) UpdateCollection(ctx context.Context, c *models.ProductCollection) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		"UPDATE product_collections SET title = $1, text = $2, updated_at = NOW() WHERE id = $3",
		c.Title, c.Text, c.ID,
	)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	if affected == 0 {
		_ = tx.Rollback()
		return ErrCollectionNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM product_collection_items WHERE collection_id = $1", c.ID); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("failed to clear collection items: %w", err)
	}
	if err := insertCollectionItems(ctx, tx, c.ID, c.ItemIDs); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (r *collectionRepository) DeleteCollection(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM product_collections WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrCollectionNotFound
	}
	return nil
}

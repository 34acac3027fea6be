package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/linemk/almost-amazon/internal/domain/models"
)

var ErrReviewNotFound = errors.New("review not found")

// ReviewFilter — необязательные условия выборки отзывов
type ReviewFilter struct {
	CreatorID   *int64
	ProductID   *int64
	StarsFrom   *int
	StarsTo     *int
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// ReviewStorage описывает методы для работы с отзывами к товарам.
type ReviewStorage interface {
	CreateReview(ctx context.Context, review *models.ProductReview) (*models.ProductReview, error)
	GetReviewByID(ctx context.Context, id int64) (*models.ProductReview, error)
	// GetReviewsByCreator возвращает все отзывы пользователя: сервис сканирует
	// их перед созданием, чтобы отдать понятную ошибку о повторном отзыве.
	GetReviewsByCreator(ctx context.Context, creatorID int64) ([]*models.ProductReview, error)
	ListReviews(ctx context.Context, filter ReviewFilter) ([]*models.ProductReview, error)
	UpdateReview(ctx context.Context, review *models.ProductReview) error
	DeleteReview(ctx context.Context, id int64) error
}

type reviewRepository struct {
	db *sql.DB
}

func NewReviewRepository(db *sql.DB) ReviewStorage {
	return &reviewRepository{db: db}
}

const reviewColumns = `r.id, r.creator_id, u.email, r.product_id, r.text, r.stars, r.created_at, r.updated_at`

func scanReview(row interface{ Scan(...any) error }) (*models.ProductReview, error) {
	rev := &models.ProductReview{}
	if err := row.Scan(&rev.ID, &rev.CreatorID, &rev.Creator.Email, &rev.ProductID, &rev.Text, &rev.Stars, &rev.CreatedAt, &rev.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	rev.Creator.ID = rev.CreatorID
	return rev, nil
}

// CreateReview вставляет отзыв. Гонка двух одновременных отзывов одного
// пользователя на один товар упирается в уникальный индекс
// (creator_id, product_id) и возвращается как ErrUniqueViolation.
func (r *reviewRepository) CreateReview(ctx context.Context, review *models.ProductReview) (*models.ProductReview, error) {
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO product_reviews (creator_id, product_id, text, stars) VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at, updated_at`,
		review.CreatorID, review.ProductID, review.Text, review.Stars,
	)
	if err := row.Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt); err != nil {
		return nil, asUniqueViolation(err)
	}
	return review, nil
}

func (r *reviewRepository) GetReviewByID(ctx context.Context, id int64) (*models.ProductReview, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+reviewColumns+`
		FROM product_reviews r
		JOIN users u ON r.creator_id = u.id
		WHERE r.id = $1`, id)
	return scanReview(row)
}

func (r *reviewRepository) GetReviewsByCreator(ctx context.Context, creatorID int64) ([]*models.ProductReview, error) {
	return r.ListReviews(ctx, ReviewFilter{CreatorID: &creatorID})
}

func (r *reviewRepository) ListReviews(ctx context.Context, filter ReviewFilter) ([]*models.ProductReview, error) {
	query := `
		SELECT ` + reviewColumns + `
		FROM product_reviews r
		JOIN users u ON r.creator_id = u.id`
	var args []any
	var conds []string

	if filter.CreatorID != nil {
		args = append(args, *filter.CreatorID)
		conds = append(conds, "r.creator_id = $"+strconv.Itoa(len(args)))
	}
	if filter.ProductID != nil {
		args = append(args, *filter.ProductID)
		conds = append(conds, "r.product_id = $"+strconv.Itoa(len(args)))
	}
	if filter.StarsFrom != nil {
		args = append(args, *filter.StarsFrom)
		conds = append(conds, "r.stars >= $"+strconv.Itoa(len(args)))
	}
	if filter.StarsTo != nil {
		args = append(args, *filter.StarsTo)
		conds = append(conds, "r.stars <= $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conds = append(conds, "r.created_at >= $"+strconv.Itoa(len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conds = append(conds, "r.created_at <= $"+strconv.Itoa(len(args)))
	}
	query += whereClause(conds) + " ORDER BY r.created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []*models.ProductReview
	for rows.Next() {
		rev, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (r *reviewRepository) UpdateReview(ctx context.Context, review *models.ProductReview) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE product_reviews SET text = $1, stars = $2, updated_at = NOW() WHERE id = $3",
		review.Text, review.Stars, review.ID,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

func (r *reviewRepository) DeleteReview(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM product_reviews WHERE id = $1", id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrReviewNotFound
	}
	return nil
}

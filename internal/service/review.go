package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/almost-amazon/internal/domain/models"
	"github.com/linemk/almost-amazon/internal/storage"
)

// ReviewInput — данные отзыва из запроса клиента
type ReviewInput struct {
	ProductID int64
	Text      string
	Stars     int
}

type ReviewService interface {
	Create(ctx context.Context, actor Actor, input ReviewInput) (*models.ProductReview, error)
	Update(ctx context.Context, actor Actor, reviewID int64, text string, stars int) (*models.ProductReview, error)
	Get(ctx context.Context, reviewID int64) (*models.ProductReview, error)
	List(ctx context.Context, filter storage.ReviewFilter) ([]*models.ProductReview, error)
	Delete(ctx context.Context, actor Actor, reviewID int64) error
}

type reviewService struct {
	log         *slog.Logger
	reviewRepo  storage.ReviewStorage
	productRepo storage.ProductStorage
}

func NewReviewService(log *slog.Logger, reviewRepo storage.ReviewStorage, productRepo storage.ProductStorage) ReviewService {
	return &reviewService{
		log:         log,
		reviewRepo:  reviewRepo,
		productRepo: productRepo,
	}
}

// Create создаёт отзыв. Перед вставкой сканируются существующие отзывы автора:
// повторный отзыв на тот же товар отклоняется с понятной ошибкой. Уникальный
// индекс в БД остаётся страховкой от гонки двух одновременных создании.
func (s *reviewService) Create(ctx context.Context, actor Actor, input ReviewInput) (*models.ProductReview, error) {
	const op = "service.ReviewService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("productID", input.ProductID))

	if input.Stars < 0 || input.Stars > 5 {
		return nil, ErrBadStars
	}

	// товар должен существовать
	if _, err := s.productRepo.GetProductByID(ctx, input.ProductID); err != nil {
		logger.Warn("product lookup failed", slog.Any("error", err))
		if errors.Is(err, storage.ErrProductNotFound) {
			return nil, ErrUnknownProduct
		}
		return nil, err
	}

	existing, err := s.reviewRepo.GetReviewsByCreator(ctx, actor.UserID)
	if err != nil {
		logger.Error("failed to load creator reviews", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to load reviews: %w", op, err)
	}
	for _, rev := range existing {
		if rev.ProductID == input.ProductID {
			logger.Warn("duplicate review rejected")
			return nil, ErrAlreadyReviewed
		}
	}

	review := &models.ProductReview{
		CreatorID: actor.UserID,
		ProductID: input.ProductID,
		Text:      input.Text,
		Stars:     input.Stars,
	}
	created, err := s.reviewRepo.CreateReview(ctx, review)
	if err != nil {
		if errors.Is(err, storage.ErrUniqueViolation) {
			// гонка: пре-чек прошли оба запроса, вставка проиграла индексу
			logger.Warn("duplicate review rejected by constraint")
			return nil, ErrAlreadyReviewed
		}
		logger.Error("failed to create review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to create review: %w", op, err)
	}

	logger.Info("review created", slog.Int64("reviewID", created.ID))
	return s.reviewRepo.GetReviewByID(ctx, created.ID)
}

func (s *reviewService) Update(ctx context.Context, actor Actor, reviewID int64, text string, stars int) (*models.ProductReview, error) {
	const op = "service.ReviewService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("reviewID", reviewID))

	if stars < 0 || stars > 5 {
		return nil, ErrBadStars
	}

	review, err := s.reviewRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if err := canModifyReview(actor, review); err != nil {
		logger.Warn("review modification denied")
		return nil, err
	}

	review.Text = text
	review.Stars = stars
	if err := s.reviewRepo.UpdateReview(ctx, review); err != nil {
		logger.Error("failed to update review", slog.Any("error", err))
		return nil, fmt.Errorf("%s: failed to update review: %w", op, err)
	}
	return s.reviewRepo.GetReviewByID(ctx, reviewID)
}

func (s *reviewService) Get(ctx context.Context, reviewID int64) (*models.ProductReview, error) {
	return s.reviewRepo.GetReviewByID(ctx, reviewID)
}

func (s *reviewService) List(ctx context.Context, filter storage.ReviewFilter) ([]*models.ProductReview, error) {
	return s.reviewRepo.ListReviews(ctx, filter)
}

func (s *reviewService) Delete(ctx context.Context, actor Actor, reviewID int64) error {
	const op = "service.ReviewService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("reviewID", reviewID))

	review, err := s.reviewRepo.GetReviewByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if err := canModifyReview(actor, review); err != nil {
		logger.Warn("review deletion denied")
		return err
	}

	if err := s.reviewRepo.DeleteReview(ctx, reviewID); err != nil {
		logger.Error("failed to delete review", slog.Any("error", err))
		return fmt.Errorf("%s: failed to delete review: %w", op, err)
	}
	logger.Info("review deleted")
	return nil
}

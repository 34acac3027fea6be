package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/linemk/almost-amazon/internal/domain/models"
	"github.com/linemk/almost-amazon/internal/storage"
)

// CollectionInput — данные подборки из запроса администратора
type CollectionInput struct {
	Title   string
	Text    string
	ItemIDs []int64
}

type CollectionService interface {
	Create(ctx context.Context, actor Actor, input CollectionInput) (*models.ProductCollection, error)
	Update(ctx context.Context, actor Actor, collectionID int64, input CollectionInput) (*models.ProductCollection, error)
	Get(ctx context.Context, collectionID int64) (*models.ProductCollection, error)
	List(ctx context.Context) ([]*models.ProductCollection, error)
	Delete(ctx context.Context, actor Actor, collectionID int64) error
}

type collectionService struct {
	log            *slog.Logger
	collectionRepo storage.CollectionStorage
}

func NewCollectionService(log *slog.Logger, collectionRepo storage.CollectionStorage) CollectionService {
	return &collectionService{
		log:            log,
		collectionRepo: collectionRepo,
	}
}

// Create создаёт подборку товаров. Доступно только администратору.
func (s *collectionService) Create(ctx context.Context, actor Actor, input CollectionInput) (*models.ProductCollection, error) {
	const op = "service.CollectionService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID))

	if err := requireStaff(actor); err != nil {
		logger.Warn("collection creation denied")
		return nil, err
	}

	collection := &models.ProductCollection{
		Title:   input.Title,
		Text:    input.Text,
		ItemIDs: input.ItemIDs,
	}
	created, err := s.collectionRepo.CreateCollection(ctx, collection)
	if err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			// ссылка на несуществующий товар в составе подборки
			logger.Warn("unknown product in collection items")
			return nil, ErrUnknownProduct
		}
		logger.Error("failed to create collection", slog.Any("error", err))
		return nil, err
	}
	logger.Info("collection created", slog.Int64("collectionID", created.ID))
	return s.collectionRepo.GetCollectionByID(ctx, created.ID)
}

// Update обновляет поля подборки; набор товаров заменяется целиком
func (s *collectionService) Update(ctx context.Context, actor Actor, collectionID int64, input CollectionInput) (*models.ProductCollection, error) {
	const op = "service.CollectionService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("collectionID", collectionID))

	if err := requireStaff(actor); err != nil {
		logger.Warn("collection update denied")
		return nil, err
	}

	collection, err := s.collectionRepo.GetCollectionByID(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	collection.Title = input.Title
	collection.Text = input.Text
	collection.ItemIDs = input.ItemIDs

	if err := s.collectionRepo.UpdateCollection(ctx, collection); err != nil {
		if errors.Is(err, storage.ErrProductNotFound) {
			logger.Warn("unknown product in collection items")
			return nil, ErrUnknownProduct
		}
		logger.Error("failed to update collection", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.collectionRepo.GetCollectionByID(ctx, collectionID)
}

func (s *collectionService) Get(ctx context.Context, collectionID int64) (*models.ProductCollection, error) {
	return s.collectionRepo.GetCollectionByID(ctx, collectionID)
}

func (s *collectionService) List(ctx context.Context) ([]*models.ProductCollection, error) {
	return s.collectionRepo.ListCollections(ctx)
}

func (s *collectionService) Delete(ctx context.Context, actor Actor, collectionID int64) error {
	const op = "service.CollectionService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("collectionID", collectionID))

	if err := requireStaff(actor); err != nil {
		logger.Warn("collection deletion denied")
		return err
	}
	if err := s.collectionRepo.DeleteCollection(ctx, collectionID); err != nil {
		logger.Error("failed to delete collection", slog.Any("error", err))
		return err
	}
	logger.Info("collection deleted")
	return nil
}

package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/linemk/almost-amazon/internal/domain/models"
	"github.com/linemk/almost-amazon/internal/storage"
)

// ProductInput — данные товара из запроса администратора
type ProductInput struct {
	Name        string
	Description string
	Price       decimal.Decimal
}

type CatalogService interface {
	Create(ctx context.Context, actor Actor, input ProductInput) (*models.Product, error)
	Update(ctx context.Context, actor Actor, productID int64, input ProductInput) (*models.Product, error)
	Get(ctx context.Context, productID int64) (*models.Product, error)
	List(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error)
	Delete(ctx context.Context, actor Actor, productID int64) error
}

type catalogService struct {
	log         *slog.Logger
	productRepo storage.ProductStorage
}

func NewCatalogService(log *slog.Logger, productRepo storage.ProductStorage) CatalogService {
	return &catalogService{
		log:         log,
		productRepo: productRepo,
	}
}

// Create добавляет товар в каталог. Доступно только администратору.
func (s *catalogService) Create(ctx context.Context, actor Actor, input ProductInput) (*models.Product, error) {
	const op = "service.CatalogService.Create"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID))

	if err := requireStaff(actor); err != nil {
		logger.Warn("product creation denied")
		return nil, err
	}
	if !input.Price.IsPositive() {
		return nil, ErrBadPrice
	}

	product := &models.Product{
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
	}
	created, err := s.productRepo.CreateProduct(ctx, product)
	if err != nil {
		logger.Error("failed to create product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	logger.Info("product created", slog.Int64("productID", created.ID))
	return created, nil
}

func (s *catalogService) Update(ctx context.Context, actor Actor, productID int64, input ProductInput) (*models.Product, error) {
	const op = "service.CatalogService.Update"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("productID", productID))

	if err := requireStaff(actor); err != nil {
		logger.Warn("product update denied")
		return nil, err
	}
	if !input.Price.IsPositive() {
		return nil, ErrBadPrice
	}

	product, err := s.productRepo.GetProductByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	product.Name = input.Name
	product.Description = input.Description
	product.Price = input.Price

	if err := s.productRepo.UpdateProduct(ctx, product); err != nil {
		logger.Error("failed to update product", slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.productRepo.GetProductByID(ctx, productID)
}

func (s *catalogService) Get(ctx context.Context, productID int64) (*models.Product, error) {
	return s.productRepo.GetProductByID(ctx, productID)
}

func (s *catalogService) List(ctx context.Context, filter storage.ProductFilter) ([]*models.Product, error) {
	return s.productRepo.ListProducts(ctx, filter)
}

func (s *catalogService) Delete(ctx context.Context, actor Actor, productID int64) error {
	const op = "service.CatalogService.Delete"
	logger := s.log.With(slog.String("op", op), slog.Int64("userID", actor.UserID), slog.Int64("productID", productID))

	if err := requireStaff(actor); err != nil {
		logger.Warn("product deletion denied")
		return err
	}
	if err := s.productRepo.DeleteProduct(ctx, productID); err != nil {
		logger.Error("failed to delete product", slog.Any("error", err))
		return err
	}
	logger.Info("product deleted")
	return nil
}

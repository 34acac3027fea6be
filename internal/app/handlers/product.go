package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/linemk/almost-amazon/internal/service"
	"github.com/linemk/almost-amazon/internal/storage"
)

// ProductRequest — тело запроса на создание/обновление товара
type ProductRequest struct {
	Name        string          `json:"name" validate:"required,max=256"`
	Description string          `json:"description" validate:"max=10000"`
	Price       decimal.Decimal `json:"price" validate:"required"`
}

// ListProductsHandler обрабатывает GET /api/products.
// Доступен без аутентификации; поддерживает фильтры по подстроке и диапазону цен.
func ListProductsHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListProductsHandler"
		logger := log.With(slog.String("op", op))

		filter := storage.ProductFilter{
			Name:        r.URL.Query().Get("name"),
			Description: r.URL.Query().Get("description"),
		}
		if raw := r.URL.Query().Get("price_from"); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				writeErrorMessage(logger, w, http.StatusBadRequest, "invalid price_from")
				return
			}
			filter.PriceFrom = &d
		}
		if raw := r.URL.Query().Get("price_to"); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				writeErrorMessage(logger, w, http.StatusBadRequest, "invalid price_to")
				return
			}
			filter.PriceTo = &d
		}

		products, err := catalog.List(r.Context(), filter)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, products)
	}
}

// GetProductHandler обрабатывает GET /api/products/{id}
func GetProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetProductHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid product id")
			return
		}
		product, err := catalog.Get(r.Context(), id)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, product)
	}
}

// CreateProductHandler обрабатывает POST /api/products (только админ)
func CreateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateProductHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeErrorMessage(logger, w, http.StatusBadRequest, "validation error")
			return
		}

		product, err := catalog.Create(r.Context(), actor, service.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
		})
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, product)
	}
}

// UpdateProductHandler обрабатывает PATCH/PUT /api/products/{id} (только админ)
func UpdateProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateProductHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid product id")
			return
		}

		var req ProductRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Error("invalid request: decoding error", slog.Any("error", err))
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid request")
			return
		}
		if err := validate.Struct(req); err != nil {
			logger.Error("invalid request: validation error", slog.Any("error", err))
			writeErrorMessage(logger, w, http.StatusBadRequest, "validation error")
			return
		}

		product, err := catalog.Update(r.Context(), actor, id, service.ProductInput{
			Name:        req.Name,
			Description: req.Description,
			Price:       req.Price,
		})
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, product)
	}
}

// DeleteProductHandler обрабатывает DELETE /api/products/{id} (только админ)
func DeleteProductHandler(log *slog.Logger, catalog service.CatalogService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteProductHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid product id")
			return
		}

		if err := catalog.Delete(r.Context(), actor, id); err != nil {
			writeServiceError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

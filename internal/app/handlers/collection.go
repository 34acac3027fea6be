package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/almost-amazon/internal/service"
)

// CollectionRequest — тело запроса на создание/обновление подборки
type CollectionRequest struct {
	Title           string  `json:"title" validate:"required,max=256"`
	Text            string  `json:"text" validate:"max=10000"`
	CollectionItems []int64 `json:"collection_items"`
}

// ListCollectionsHandler обрабатывает GET /api/product_collections (доступен без аутентификации)
func ListCollectionsHandler(log *slog.Logger, collections service.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListCollectionsHandler"
		logger := log.With(slog.String("op", op))

		result, err := collections.List(r.Context())
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, result)
	}
}

// GetCollectionHandler обрабатывает GET /api/product_collections/{id}
func GetCollectionHandler(log *slog.Logger, collections service.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetCollectionHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid collection id")
			return
		}
		collection, err := collections.Get(r.Context(), id)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, collection)
	}
}

// CreateCollectionHandler обрабатывает POST /api/product_collections (только админ)
func CreateCollectionHandler(log *slog.Logger, collections service.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateCollectionHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CollectionRequest
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

		collection, err := collections.Create(r.Context(), actor, service.CollectionInput{
			Title:   req.Title,
			Text:    req.Text,
			ItemIDs: req.CollectionItems,
		})
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, collection)
	}
}

// UpdateCollectionHandler обрабатывает PATCH/PUT /api/product_collections/{id} (только админ)
func UpdateCollectionHandler(log *slog.Logger, collections service.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateCollectionHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid collection id")
			return
		}

		var req CollectionRequest
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

		collection, err := collections.Update(r.Context(), actor, id, service.CollectionInput{
			Title:   req.Title,
			Text:    req.Text,
			ItemIDs: req.CollectionItems,
		})
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, collection)
	}
}

// DeleteCollectionHandler обрабатывает DELETE /api/product_collections/{id} (только админ)
func DeleteCollectionHandler(log *slog.Logger, collections service.CollectionService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteCollectionHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid collection id")
			return
		}

		if err := collections.Delete(r.Context(), actor, id); err != nil {
			writeServiceError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

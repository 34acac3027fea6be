package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/linemk/almost-amazon/internal/service"
	"github.com/linemk/almost-amazon/internal/storage"
)

// CreateReviewRequest — тело запроса на создание отзыва
type CreateReviewRequest struct {
	ProductID int64  `json:"product_id" validate:"required"`
	Text      string `json:"text" validate:"max=10000"`
	Stars     int    `json:"stars" validate:"gte=0,lte=5"`
}

// UpdateReviewRequest — тело запроса на обновление отзыва
type UpdateReviewRequest struct {
	Text  string `json:"text" validate:"max=10000"`
	Stars int    `json:"stars" validate:"gte=0,lte=5"`
}

// CreateReviewHandler обрабатывает POST /api/product_reviews.
// Любой аутентифицированный пользователь, но не больше одного отзыва на товар.
func CreateReviewHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateReviewHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CreateReviewRequest
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

		review, err := reviews.Create(r.Context(), actor, service.ReviewInput{
			ProductID: req.ProductID,
			Text:      req.Text,
			Stars:     req.Stars,
		})
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, review)
	}
}

// ListReviewsHandler обрабатывает GET /api/product_reviews (доступен без аутентификации)
func ListReviewsHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListReviewsHandler"
		logger := log.With(slog.String("op", op))

		filter, err := reviewFilterFromQuery(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := reviews.List(r.Context(), filter)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, result)
	}
}

// GetReviewHandler обрабатывает GET /api/product_reviews/{id}
func GetReviewHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetReviewHandler"
		logger := log.With(slog.String("op", op))

		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid review id")
			return
		}
		review, err := reviews.Get(r.Context(), id)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, review)
	}
}

// UpdateReviewHandler обрабатывает PATCH/PUT /api/product_reviews/{id}
// (автор отзыва или админ)
func UpdateReviewHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateReviewHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid review id")
			return
		}

		var req UpdateReviewRequest
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

		review, err := reviews.Update(r.Context(), actor, id, req.Text, req.Stars)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, review)
	}
}

// DeleteReviewHandler обрабатывает DELETE /api/product_reviews/{id}
func DeleteReviewHandler(log *slog.Logger, reviews service.ReviewService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteReviewHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid review id")
			return
		}

		if err := reviews.Delete(r.Context(), actor, id); err != nil {
			writeServiceError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func reviewFilterFromQuery(r *http.Request) (storage.ReviewFilter, error) {
	var filter storage.ReviewFilter
	q := r.URL.Query()

	var err error
	if filter.CreatorID, err = parseInt64Param(q.Get("creator_id")); err != nil {
		return filter, errInvalidFilter("creator_id")
	}
	if filter.ProductID, err = parseInt64Param(q.Get("product_id")); err != nil {
		return filter, errInvalidFilter("product_id")
	}
	if filter.StarsFrom, err = parseIntParam(q.Get("stars_from")); err != nil {
		return filter, errInvalidFilter("stars_from")
	}
	if filter.StarsTo, err = parseIntParam(q.Get("stars_to")); err != nil {
		return filter, errInvalidFilter("stars_to")
	}
	if filter.CreatedFrom, err = parseTimeParam(q.Get("created_from")); err != nil {
		return filter, errInvalidFilter("created_from")
	}
	if filter.CreatedTo, err = parseTimeParam(q.Get("created_to")); err != nil {
		return filter, errInvalidFilter("created_to")
	}
	return filter, nil
}

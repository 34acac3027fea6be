package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/linemk/almost-amazon/internal/jwt-new/jwtmiddleware"
	"github.com/linemk/almost-amazon/internal/service"
	"github.com/linemk/almost-amazon/internal/storage"
)

var validate = validator.New()

// ErrorResponse — машиночитаемое тело ошибки
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func writeJSON(log *slog.Logger, w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", slog.Any("error", err))
	}
}

func writeErrorMessage(log *slog.Logger, w http.ResponseWriter, status int, msg string) {
	writeJSON(log, w, status, ErrorResponse{Error: msg})
}

// writeServiceError переводит ошибки сервисного слоя в HTTP-статусы:
// валидация — 400, отказ в правах — 403, не найдено — 404, остальное — 500.
func writeServiceError(log *slog.Logger, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrBadAmount),
		errors.Is(err, service.ErrBadStatus),
		errors.Is(err, service.ErrBadPrice),
		errors.Is(err, service.ErrBadStars),
		errors.Is(err, service.ErrDuplicatePosition),
		errors.Is(err, service.ErrAlreadyReviewed),
		// несуществующий товар в теле запроса — ошибка валидации, не 404:
		// 404 остаётся за самим адресуемым ресурсом (/api/products/{id})
		errors.Is(err, service.ErrUnknownProduct),
		errors.Is(err, storage.ErrUniqueViolation):
		writeErrorMessage(log, w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrStatusOnCreate),
		errors.Is(err, service.ErrStatusNotStaff),
		errors.Is(err, service.ErrOrderNotNew),
		errors.Is(err, service.ErrNotOwner),
		errors.Is(err, service.ErrStaffOnly):
		writeErrorMessage(log, w, http.StatusForbidden, err.Error())
	case errors.Is(err, storage.ErrProductNotFound),
		errors.Is(err, storage.ErrOrderNotFound),
		errors.Is(err, storage.ErrReviewNotFound),
		errors.Is(err, storage.ErrCollectionNotFound),
		errors.Is(err, storage.ErrUserNotFound):
		writeErrorMessage(log, w, http.StatusNotFound, err.Error())
	default:
		log.Error("unexpected error", slog.Any("error", err))
		writeErrorMessage(log, w, http.StatusInternalServerError, "internal server error")
	}
}

// actorFromRequest достает личность пользователя, установленную JWT middleware
func actorFromRequest(r *http.Request) (service.Actor, bool) {
	id, ok := jwtmiddleware.FromContext(r.Context())
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{UserID: id.UserID, IsStaff: id.IsStaff}, true
}

func errInvalidFilter(name string) error {
	return errors.New("invalid filter value: " + name)
}

// idParam разбирает числовой идентификатор из пути
func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// parseTimeParam принимает дату в формате YYYY-MM-DD или полный RFC3339
func parseTimeParam(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func parseIntParam(raw string) (*int, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func parseInt64Param(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

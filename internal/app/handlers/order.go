package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/linemk/almost-amazon/internal/service"
	"github.com/linemk/almost-amazon/internal/storage"
)

// PositionDTO — строка заказа в запросе клиента
type PositionDTO struct {
	ProductID int64 `json:"product_id" validate:"required"`
	Amount    int   `json:"amount"`
}

// CreateOrderRequest — тело запроса на создание заказа.
// Поле status здесь только для того, чтобы отклонить попытку его задать.
type CreateOrderRequest struct {
	Positions []PositionDTO `json:"positions" validate:"dive"`
	Status    *string       `json:"status"`
}

// UpdateOrderRequest — частичное обновление: отсутствующее поле не трогается
type UpdateOrderRequest struct {
	Positions *[]PositionDTO `json:"positions" validate:"omitempty,dive"`
	Status    *string        `json:"status"`
}

func toPositionInputs(dtos []PositionDTO) []service.PositionInput {
	positions := make([]service.PositionInput, 0, len(dtos))
	for _, dto := range dtos {
		amount := dto.Amount
		if amount == 0 {
			amount = 1 // количество по умолчанию
		}
		positions = append(positions, service.PositionInput{ProductID: dto.ProductID, Amount: amount})
	}
	return positions
}

// CreateOrderHandler обрабатывает POST /api/orders
func CreateOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.CreateOrderHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		var req CreateOrderRequest
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

		order, err := orders.Create(r.Context(), actor, toPositionInputs(req.Positions), req.Status != nil)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusCreated, order)
	}
}

// ListOrdersHandler обрабатывает GET /api/orders.
// Админ видит все заказы, обычный пользователь — только свои.
func ListOrdersHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.ListOrdersHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}

		filter, err := orderFilterFromQuery(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, err.Error())
			return
		}

		result, err := orders.List(r.Context(), actor, filter)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, result)
	}
}

// GetOrderHandler обрабатывает GET /api/orders/{id}
func GetOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.GetOrderHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid order id")
			return
		}

		order, err := orders.Get(r.Context(), actor, id)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}

// UpdateOrderHandler обрабатывает PATCH/PUT /api/orders/{id}
func UpdateOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.UpdateOrderHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid order id")
			return
		}

		var req UpdateOrderRequest
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

		upd := service.OrderUpdate{Status: req.Status}
		if req.Positions != nil {
			upd.PositionsProvided = true
			upd.Positions = toPositionInputs(*req.Positions)
		}

		order, err := orders.Update(r.Context(), actor, id, upd)
		if err != nil {
			writeServiceError(logger, w, err)
			return
		}
		writeJSON(logger, w, http.StatusOK, order)
	}
}

// DeleteOrderHandler обрабатывает DELETE /api/orders/{id}
func DeleteOrderHandler(log *slog.Logger, orders service.OrderService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.DeleteOrderHandler"
		logger := log.With(slog.String("op", op))

		actor, ok := actorFromRequest(r)
		if !ok {
			writeErrorMessage(logger, w, http.StatusUnauthorized, "unauthorized")
			return
		}
		id, err := idParam(r)
		if err != nil {
			writeErrorMessage(logger, w, http.StatusBadRequest, "invalid order id")
			return
		}

		if err := orders.Delete(r.Context(), actor, id); err != nil {
			writeServiceError(logger, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func orderFilterFromQuery(r *http.Request) (storage.OrderFilter, error) {
	var filter storage.OrderFilter
	q := r.URL.Query()

	filter.Status = q.Get("status")
	if raw := q.Get("total_from"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errInvalidFilter("total_from")
		}
		filter.TotalFrom = &d
	}
	if raw := q.Get("total_to"); raw != "" {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return filter, errInvalidFilter("total_to")
		}
		filter.TotalTo = &d
	}

	var err error
	if filter.CreatedFrom, err = parseTimeParam(q.Get("created_from")); err != nil {
		return filter, errInvalidFilter("created_from")
	}
	if filter.CreatedTo, err = parseTimeParam(q.Get("created_to")); err != nil {
		return filter, errInvalidFilter("created_to")
	}
	if filter.UpdatedFrom, err = parseTimeParam(q.Get("updated_from")); err != nil {
		return filter, errInvalidFilter("updated_from")
	}
	if filter.UpdatedTo, err = parseTimeParam(q.Get("updated_to")); err != nil {
		return filter, errInvalidFilter("updated_to")
	}
	return filter, nil
}

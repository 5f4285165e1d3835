package bulk_create_time_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректный период или временные интервалы"
	msgInvalidFormat      = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgInvalidPeriod      = "некорректный период: дата окончания раньше начала или период слишком длинный"
	msgInvalidTimeRange   = "время начала интервала должно быть раньше времени окончания"
	msgInvalidCapacity    = "вместимость слота должна быть от 1 до 100"
)

type Handler struct {
	service TimeSlotService
	logger  Logger
}

func NewHandler(service TimeSlotService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle POST /api/v1/admin/time-slots/bulk
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.BulkCreateRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /admin/time-slots/bulk - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	result, err := h.service.BulkCreate(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, timeslots.ErrInvalidFormat):
			h.logger.Warn("POST /admin/time-slots/bulk - Invalid format: %s..%s, error=%v", req.StartDate, req.EndDate, err)
			handlers.RespondBadRequest(w, msgInvalidFormat)

		case errors.Is(err, timeslots.ErrInvalidPeriod):
			h.logger.Warn("POST /admin/time-slots/bulk - Invalid period: %s..%s, error=%v", req.StartDate, req.EndDate, err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)

		case errors.Is(err, timeslots.ErrInvalidTimeRange):
			h.logger.Warn("POST /admin/time-slots/bulk - Invalid time range: %s..%s, error=%v", req.StartDate, req.EndDate, err)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, timeslots.ErrInvalidCapacity):
			h.logger.Warn("POST /admin/time-slots/bulk - Invalid capacity: %s..%s", req.StartDate, req.EndDate)
			handlers.RespondBadRequest(w, msgInvalidCapacity)

		case errors.Is(err, timeslots.ErrInvalidInput):
			h.logger.Warn("POST /admin/time-slots/bulk - Invalid input: %s..%s, error=%v", req.StartDate, req.EndDate, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		default:
			h.logger.Error("POST /admin/time-slots/bulk - Failed to create slots: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/time-slots/bulk - Slots created: %s..%s, created=%d", req.StartDate, req.EndDate, result.Created)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

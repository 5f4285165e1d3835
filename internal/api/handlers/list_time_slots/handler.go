package list_time_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

const (
	msgInvalidAvailability = "некорректное значение isAvailable, ожидается true или false"
	msgInvalidPeriod       = "некорректный период, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/admin/time-slots
// Query params: from, to, isAvailable (optional)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := &models.ListSlotsRequest{
		From: handlers.OptionalQuery(r, "from"),
		To:   handlers.OptionalQuery(r, "to"),
	}

	if raw := handlers.OptionalQuery(r, "isAvailable"); raw != nil {
		available, err := strconv.ParseBool(*raw)
		if err != nil {
			h.logger.Warn("GET /admin/time-slots - Invalid isAvailable: %v", err)
			handlers.RespondBadRequest(w, msgInvalidAvailability)
			return
		}
		req.IsAvailable = &available
	}

	result, err := h.service.List(r.Context(), req)
	if err != nil {
		if errors.Is(err, timeslots.ErrInvalidInput) {
			h.logger.Warn("GET /admin/time-slots - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /admin/time-slots - Failed to list slots: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /admin/time-slots - Slots listed: total=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}

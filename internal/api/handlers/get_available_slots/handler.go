package get_available_slots

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
)

const (
	msgInvalidPeriod = "некорректный период, ожидается YYYY-MM-DD"
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

// Handle GET /api/v1/time-slots/available
// Query params: from, to (optional, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	req := FromQuery(r)

	result, err := h.service.ListAvailable(r.Context(), req)
	if err != nil {
		if errors.Is(err, timeslots.ErrInvalidInput) {
			h.logger.Warn("GET /time-slots/available - Invalid period: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPeriod)
			return
		}
		h.logger.Error("GET /time-slots/available - Failed to list slots: error=%v", err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /time-slots/available - Slots listed: total=%d", result.Total)
	handlers.RespondJSON(w, http.StatusOK, result)
}

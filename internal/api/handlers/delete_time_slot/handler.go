package delete_time_slot

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
)

const (
	msgInvalidSlotID = "некорректный ID слота"
	msgNotFound      = "временной слот не найден"
	msgHasBookings   = "нельзя удалить слот с активными записями"
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

// Handle DELETE /api/v1/admin/time-slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.ParseID(mux.Vars(r)["slotId"])
	if err != nil {
		h.logger.Warn("DELETE /admin/time-slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	if err := h.service.Delete(r.Context(), slotID); err != nil {
		switch {
		case errors.Is(err, timeslots.ErrSlotNotFound):
			h.logger.Warn("DELETE /admin/time-slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, timeslots.ErrSlotHasBookings):
			h.logger.Warn("DELETE /admin/time-slots/{id} - Slot has bookings: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgHasBookings)

		default:
			h.logger.Error("DELETE /admin/time-slots/{id} - Failed to delete slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("DELETE /admin/time-slots/{id} - Slot deleted: slot_id=%d", slotID)
	w.WriteHeader(http.StatusNoContent)
}

package update_time_slot

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

const (
	msgInvalidSlotID      = "некорректный ID слота"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры слота"
	msgInvalidFormat      = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgPastDate           = "дата слота уже прошла"
	msgInvalidTimeRange   = "время начала должно быть раньше времени окончания"
	msgInvalidCapacity    = "вместимость слота должна быть от 1 до 100"
	msgCapacityBelow      = "вместимость не может быть меньше числа текущих записей"
	msgNotesTooLong       = "заметки техника слишком длинные"
	msgNotFound           = "временной слот не найден"
	msgConflict           = "слот с такой датой и временем уже существует"
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

// Handle PUT /api/v1/admin/time-slots/{slotId}
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	slotID, err := handlers.ParseID(mux.Vars(r)["slotId"])
	if err != nil {
		h.logger.Warn("PUT /admin/time-slots/{id} - Invalid slot ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidSlotID)
		return
	}

	var req models.UpdateSlotRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("PUT /admin/time-slots/{id} - Invalid request body: slot_id=%d, error=%v", slotID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	result, err := h.service.Update(r.Context(), slotID, &req)
	if err != nil {
		switch {
		case errors.Is(err, timeslots.ErrSlotNotFound):
			h.logger.Warn("PUT /admin/time-slots/{id} - Slot not found: slot_id=%d", slotID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, timeslots.ErrInvalidFormat):
			h.logger.Warn("PUT /admin/time-slots/{id} - Invalid format: slot_id=%d, error=%v", slotID, err)
			handlers.RespondBadRequest(w, msgInvalidFormat)

		case errors.Is(err, timeslots.ErrPastDate):
			h.logger.Warn("PUT /admin/time-slots/{id} - Past date: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, timeslots.ErrInvalidTimeRange):
			h.logger.Warn("PUT /admin/time-slots/{id} - Invalid time range: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, timeslots.ErrInvalidCapacity):
			h.logger.Warn("PUT /admin/time-slots/{id} - Invalid capacity: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgInvalidCapacity)

		case errors.Is(err, timeslots.ErrCapacityBelowBookings):
			h.logger.Warn("PUT /admin/time-slots/{id} - Capacity below bookings: slot_id=%d, error=%v", slotID, err)
			handlers.RespondBadRequest(w, msgCapacityBelow)

		case errors.Is(err, timeslots.ErrNotesTooLong):
			h.logger.Warn("PUT /admin/time-slots/{id} - Notes too long: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgNotesTooLong)

		case errors.Is(err, timeslots.ErrInvalidInput):
			h.logger.Warn("PUT /admin/time-slots/{id} - Invalid input: slot_id=%d, error=%v", slotID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, timeslots.ErrSlotConflict):
			h.logger.Warn("PUT /admin/time-slots/{id} - Slot conflict: slot_id=%d", slotID)
			handlers.RespondBadRequest(w, msgConflict)

		default:
			h.logger.Error("PUT /admin/time-slots/{id} - Failed to update slot: slot_id=%d, error=%v", slotID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /admin/time-slots/{id} - Slot updated: slot_id=%d", slotID)
	handlers.RespondJSON(w, http.StatusOK, result)
}

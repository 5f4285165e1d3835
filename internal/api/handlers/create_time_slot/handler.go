package create_time_slot

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidInput       = "некорректные параметры слота"
	msgInvalidFormat      = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgPastDate           = "дата слота уже прошла"
	msgInvalidTimeRange   = "время начала должно быть раньше времени окончания"
	msgInvalidCapacity    = "вместимость слота должна быть от 1 до 100"
	msgNotesTooLong       = "заметки техника слишком длинные"
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

// Handle POST /api/v1/admin/time-slots
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSlotRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /admin/time-slots - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, timeslots.ErrInvalidFormat):
			h.logger.Warn("POST /admin/time-slots - Invalid format: date=%s, start=%s, end=%s", req.Date, req.StartTime, req.EndTime)
			handlers.RespondBadRequest(w, msgInvalidFormat)

		case errors.Is(err, timeslots.ErrPastDate):
			h.logger.Warn("POST /admin/time-slots - Past date: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgPastDate)

		case errors.Is(err, timeslots.ErrInvalidTimeRange):
			h.logger.Warn("POST /admin/time-slots - Invalid time range: start=%s, end=%s", req.StartTime, req.EndTime)
			handlers.RespondBadRequest(w, msgInvalidTimeRange)

		case errors.Is(err, timeslots.ErrInvalidCapacity):
			h.logger.Warn("POST /admin/time-slots - Invalid capacity: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgInvalidCapacity)

		case errors.Is(err, timeslots.ErrNotesTooLong):
			h.logger.Warn("POST /admin/time-slots - Notes too long: date=%s", req.Date)
			handlers.RespondBadRequest(w, msgNotesTooLong)

		case errors.Is(err, timeslots.ErrInvalidInput):
			h.logger.Warn("POST /admin/time-slots - Invalid input: date=%s, error=%v", req.Date, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, timeslots.ErrSlotConflict):
			h.logger.Warn("POST /admin/time-slots - Slot conflict: date=%s, start=%s, end=%s", req.Date, req.StartTime, req.EndTime)
			handlers.RespondBadRequest(w, msgConflict)

		default:
			h.logger.Error("POST /admin/time-slots - Failed to create slot: error=%v", err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /admin/time-slots - Slot created: id=%d, date=%s", result.ID, result.Date)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

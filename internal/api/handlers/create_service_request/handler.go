package create_service_request

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	createRequest "github.com/m04kA/SMC-TechService/internal/usecase/create_service_request"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgUnauthorized       = "требуется авторизация"
	msgInvalidInput       = "некорректные данные заявки"
	msgTimeSlotRequired   = "необходимо выбрать временной слот"
	msgInvalidServiceType = "неизвестный тип услуги"
	msgInvalidPriority    = "неизвестный приоритет заявки"
	msgDescriptionEmpty   = "описание проблемы не может быть пустым"
	msgDescriptionTooLong = "описание проблемы слишком длинное"
	msgSlotNotFound       = "временной слот не найден"
	msgSlotUnavailable    = "временной слот недоступен для записи"
	msgSlotFull           = "на выбранный временной слот нет свободных мест"
)

type Handler struct {
	useCase CreateServiceRequestUseCase
	logger  Logger
}

func NewHandler(useCase CreateServiceRequestUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/service-requests
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		h.logger.Warn("POST /service-requests - Missing actor")
		handlers.RespondUnauthorized(w, msgUnauthorized)
		return
	}

	var req CreateServiceRequestRequest
	if err := handlers.DecodeAndValidate(r, &req); err != nil {
		h.logger.Warn("POST /service-requests - Invalid request body: user_id=%d, error=%v", actor.UserID, err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody+": "+err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), req.ToUseCaseRequest(actor.UserID))
	if err != nil {
		switch {
		case errors.Is(err, createRequest.ErrTimeSlotRequired):
			h.logger.Warn("POST /service-requests - Time slot required: user_id=%d", actor.UserID)
			handlers.RespondBadRequest(w, msgTimeSlotRequired)

		case errors.Is(err, createRequest.ErrInvalidServiceType):
			h.logger.Warn("POST /service-requests - Invalid service type: user_id=%d, type=%s", actor.UserID, req.ServiceType)
			handlers.RespondBadRequest(w, msgInvalidServiceType)

		case errors.Is(err, createRequest.ErrInvalidPriority):
			h.logger.Warn("POST /service-requests - Invalid priority: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidPriority)

		case errors.Is(err, createRequest.ErrDescriptionRequired):
			h.logger.Warn("POST /service-requests - Empty description: user_id=%d", actor.UserID)
			handlers.RespondBadRequest(w, msgDescriptionEmpty)

		case errors.Is(err, createRequest.ErrDescriptionTooLong):
			h.logger.Warn("POST /service-requests - Description too long: user_id=%d", actor.UserID)
			handlers.RespondBadRequest(w, msgDescriptionTooLong)

		case errors.Is(err, createRequest.ErrInvalidInput):
			h.logger.Warn("POST /service-requests - Invalid input: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondBadRequest(w, msgInvalidInput)

		case errors.Is(err, timeslots.ErrSlotNotFound):
			h.logger.Warn("POST /service-requests - Slot not found: user_id=%d, slot_id=%d", actor.UserID, *req.TimeSlotID)
			handlers.RespondNotFound(w, msgSlotNotFound)

		case errors.Is(err, timeslots.ErrSlotUnavailable):
			h.logger.Warn("POST /service-requests - Slot unavailable: user_id=%d, slot_id=%d", actor.UserID, *req.TimeSlotID)
			handlers.RespondBadRequest(w, msgSlotUnavailable)

		case errors.Is(err, timeslots.ErrSlotFull):
			h.logger.Warn("POST /service-requests - Slot full: user_id=%d, slot_id=%d", actor.UserID, *req.TimeSlotID)
			handlers.RespondBadRequest(w, msgSlotFull)

		default:
			h.logger.Error("POST /service-requests - Failed to create service request: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /service-requests - Service request created: id=%d, number=%s, user_id=%d",
		result.ID, result.RequestNumber, actor.UserID)
	handlers.RespondJSON(w, http.StatusCreated, result)
}

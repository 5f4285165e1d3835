package api

import (
	"net/http"

	"github.com/gorilla/mux"

	bulkCreateTimeSlotsHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/bulk_create_time_slots"
	cancelServiceRequestHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/cancel_service_request"
	completeServiceRequestHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/complete_service_request"
	createServiceRequestHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/create_service_request"
	createTimeSlotHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/create_time_slot"
	deleteTimeSlotHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/delete_time_slot"
	getAvailableSlotsHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/get_available_slots"
	getMyServiceRequestsHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/get_my_service_requests"
	getServiceRequestHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/get_service_request"
	"github.com/m04kA/SMC-TechService/internal/api/handlers/health"
	listServiceRequestsHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/list_service_requests"
	listTimeSlotsHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/list_time_slots"
	updateServiceRequestHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/update_service_request"
	updateTimeSlotHandler "github.com/m04kA/SMC-TechService/internal/api/handlers/update_time_slot"
	"github.com/m04kA/SMC-TechService/internal/api/middleware"
	"github.com/m04kA/SMC-TechService/internal/service/servicerequests"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots"
	cancelServiceRequestUC "github.com/m04kA/SMC-TechService/internal/usecase/cancel_service_request"
	createServiceRequestUC "github.com/m04kA/SMC-TechService/internal/usecase/create_service_request"
	"github.com/m04kA/SMC-TechService/pkg/logger"
	"github.com/m04kA/SMC-TechService/pkg/metrics"
)

const PathPrefix = "/api/v1"

// Services собранные сервисы и use cases
type Services struct {
	TimeSlots            *timeslots.Service
	ServiceRequests      *servicerequests.Service
	CreateServiceRequest *createServiceRequestUC.UseCase
	CancelServiceRequest *cancelServiceRequestUC.UseCase
}

// Options инфраструктура роутера. Authenticator обязателен, остальные nil поля
// отключают соответствующую функциональность, без Logger используется logger.NewNop.
type Options struct {
	Authenticator  *middleware.Authenticator
	Metrics        *metrics.Metrics
	MetricsPath    string
	MetricsHandler http.Handler
	Limiter        middleware.Limiter
	DB             health.Pinger
	Logger         *logger.Logger
}

// NewRouter собирает маршруты сервиса
func NewRouter(svc Services, opts Options) *mux.Router {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}

	createServiceRequest := createServiceRequestHandler.NewHandler(svc.CreateServiceRequest, log)
	getServiceRequest := getServiceRequestHandler.NewHandler(svc.ServiceRequests, log)
	getMyServiceRequests := getMyServiceRequestsHandler.NewHandler(svc.ServiceRequests, log)
	updateServiceRequest := updateServiceRequestHandler.NewHandler(svc.ServiceRequests, log)
	cancelServiceRequest := cancelServiceRequestHandler.NewHandler(svc.CancelServiceRequest, log)
	completeServiceRequest := completeServiceRequestHandler.NewHandler(svc.ServiceRequests, log)
	getAvailableSlots := getAvailableSlotsHandler.NewHandler(svc.TimeSlots, log)

	listServiceRequests := listServiceRequestsHandler.NewHandler(svc.ServiceRequests, log)
	listTimeSlots := listTimeSlotsHandler.NewHandler(svc.TimeSlots, log)
	createTimeSlot := createTimeSlotHandler.NewHandler(svc.TimeSlots, log)
	bulkCreateTimeSlots := bulkCreateTimeSlotsHandler.NewHandler(svc.TimeSlots, log)
	updateTimeSlot := updateTimeSlotHandler.NewHandler(svc.TimeSlots, log)
	deleteTimeSlot := deleteTimeSlotHandler.NewHandler(svc.TimeSlots, log)

	healthCheck := health.NewHandler(opts.DB, log)

	r := mux.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Tracing)
	r.Use(middleware.MetricsMiddleware(opts.Metrics))

	// ============================================================
	// PUBLIC ROUTES
	// ============================================================

	r.HandleFunc("/health", healthCheck.Handle).Methods(http.MethodGet)

	if opts.MetricsHandler != nil && opts.MetricsPath != "" {
		r.Handle(opts.MetricsPath, opts.MetricsHandler).Methods(http.MethodGet)
	}

	// ============================================================
	// PROTECTED ROUTES (Bearer JWT)
	// ============================================================

	protected := r.PathPrefix(PathPrefix).Subrouter()
	protected.Use(opts.Authenticator.Middleware)

	// --- Заявки ---
	var create http.Handler = http.HandlerFunc(createServiceRequest.Handle)
	if opts.Limiter != nil {
		create = middleware.RateLimit(opts.Limiter, log)(create)
	}
	protected.Handle("/service-requests", create).Methods(http.MethodPost)

	// /my регистрируется раньше /{requestId}
	protected.HandleFunc("/service-requests/my", getMyServiceRequests.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/service-requests/{requestId:[0-9]+}", getServiceRequest.Handle).Methods(http.MethodGet)
	protected.HandleFunc("/service-requests/{requestId:[0-9]+}", updateServiceRequest.Handle).Methods(http.MethodPut)
	protected.HandleFunc("/service-requests/{requestId:[0-9]+}/cancel", cancelServiceRequest.Handle).Methods(http.MethodPost)
	protected.HandleFunc("/service-requests/{requestId:[0-9]+}/complete", completeServiceRequest.Handle).Methods(http.MethodPost)

	// --- Слоты ---
	protected.HandleFunc("/time-slots/available", getAvailableSlots.Handle).Methods(http.MethodGet)

	// ============================================================
	// ADMIN ROUTES (role=admin)
	// ============================================================

	admin := protected.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)

	admin.HandleFunc("/service-requests", listServiceRequests.Handle).Methods(http.MethodGet)

	admin.HandleFunc("/time-slots", listTimeSlots.Handle).Methods(http.MethodGet)
	admin.HandleFunc("/time-slots", createTimeSlot.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/time-slots/bulk", bulkCreateTimeSlots.Handle).Methods(http.MethodPost)
	admin.HandleFunc("/time-slots/{slotId:[0-9]+}", updateTimeSlot.Handle).Methods(http.MethodPut)
	admin.HandleFunc("/time-slots/{slotId:[0-9]+}", deleteTimeSlot.Handle).Methods(http.MethodDelete)

	return r
}

package create_service_request

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_service_request: invalid input data")

	// ErrTimeSlotRequired возвращается, если слот не указан
	ErrTimeSlotRequired = errors.New("create_service_request: time slot is required")

	// ErrInvalidServiceType возвращается при неизвестном типе услуги
	ErrInvalidServiceType = errors.New("create_service_request: unknown service type")

	// ErrInvalidPriority возвращается при неизвестном приоритете
	ErrInvalidPriority = errors.New("create_service_request: unknown priority")

	// ErrDescriptionRequired возвращается при пустом описании
	ErrDescriptionRequired = errors.New("create_service_request: description is required")

	// ErrDescriptionTooLong возвращается при слишком длинном описании
	ErrDescriptionTooLong = errors.New("create_service_request: description is too long")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_service_request: internal error")
)

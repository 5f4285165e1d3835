package create_service_request

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/m04kA/SMC-TechService/internal/domain"
)

// validateRequest проверяет входные данные и возвращает тип и приоритет заявки
func validateRequest(req *Request) (domain.ServiceType, domain.Priority, error) {
	if req.UserID <= 0 {
		return "", "", fmt.Errorf("%w: user ID is required", ErrInvalidInput)
	}

	if req.TimeSlotID == nil {
		return "", "", invalidf(ErrTimeSlotRequired, "timeSlotId is missing")
	}
	if *req.TimeSlotID <= 0 {
		return "", "", invalidf(ErrTimeSlotRequired, "timeSlotId must be positive")
	}

	serviceType := domain.ServiceType(req.ServiceType)
	if !serviceType.IsValid() {
		return "", "", invalidf(ErrInvalidServiceType, "%q", req.ServiceType)
	}

	priority := domain.DefaultPriority
	if req.Priority != nil {
		priority = domain.Priority(*req.Priority)
		if !priority.IsValid() {
			return "", "", invalidf(ErrInvalidPriority, "%q", *req.Priority)
		}
	}

	description := strings.TrimSpace(req.Description)
	if description == "" {
		return "", "", invalidf(ErrDescriptionRequired, "empty after trimming")
	}
	if utf8.RuneCountInString(description) > domain.MaxDescriptionLength {
		return "", "", invalidf(ErrDescriptionTooLong, "exceeds %d characters", domain.MaxDescriptionLength)
	}

	return serviceType, priority, nil
}

// invalidf оборачивает причину в ErrInvalidInput
func invalidf(cause error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidInput, cause, fmt.Sprintf(format, args...))
}

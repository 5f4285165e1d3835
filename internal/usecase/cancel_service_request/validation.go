package cancel_service_request

import (
	"fmt"

	"github.com/m04kA/SMC-TechService/internal/domain"
)

func validateRequest(req *Request) error {
	if req.RequestID <= 0 {
		return fmt.Errorf("%w: request ID must be positive", ErrRequestNotFound)
	}
	if req.Actor.UserID <= 0 {
		return fmt.Errorf("%w: caller is not identified", ErrForbidden)
	}
	return nil
}

// checkCancellable проверяет права и статус заявки
func checkCancellable(req *domain.ServiceRequest, actor domain.Actor) error {
	if !actor.CanAccess(req) {
		return ErrForbidden
	}
	if !req.CanBeCancelled() {
		return fmt.Errorf("%w: status is %s", ErrCannotCancel, req.Status)
	}
	return nil
}

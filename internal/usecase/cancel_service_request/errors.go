package cancel_service_request

import "errors"

var (
	// ErrRequestNotFound возвращается, когда заявка не найдена
	ErrRequestNotFound = errors.New("cancel_service_request: service request not found")

	// ErrForbidden возвращается, если пользователь не владелец и не администратор
	ErrForbidden = errors.New("cancel_service_request: access denied")

	// ErrCannotCancel возвращается для уже завершённой или отменённой заявки
	ErrCannotCancel = errors.New("cancel_service_request: service request cannot be cancelled in its current status")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("cancel_service_request: internal error")
)

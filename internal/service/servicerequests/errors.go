package servicerequests

import "errors"

var (
	// ErrRequestNotFound возвращается, когда заявка не найдена
	ErrRequestNotFound = errors.New("service request not found")

	// ErrForbidden возвращается, когда у пользователя нет прав на операцию
	ErrForbidden = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrRequestFinalized возвращается при изменении завершённой или отменённой заявки
	ErrRequestFinalized = errors.New("service request is already completed or cancelled")

	// ErrCannotComplete возвращается, если заявку нельзя завершить в текущем статусе
	ErrCannotComplete = errors.New("service request cannot be completed in its current status")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("servicerequests service: internal error")
)

package servicerequest

import "errors"

var (
	// ErrRequestNotFound возвращается, когда заявка не найдена
	ErrRequestNotFound = errors.New("servicerequest.repository: service request not found")

	// ErrDuplicateRequestNumber возвращается при совпадении номера заявки
	ErrDuplicateRequestNumber = errors.New("servicerequest.repository: duplicate request number")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("servicerequest.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("servicerequest.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("servicerequest.repository: failed to scan row")

	// ErrDeviceInfo возвращается при ошибке (де)сериализации device_info
	ErrDeviceInfo = errors.New("servicerequest.repository: invalid device info")
)

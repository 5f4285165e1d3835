package timeslot

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("timeslot.repository: slot not found")

	// ErrDuplicateSlot возвращается при нарушении уникальности (date, start, end)
	ErrDuplicateSlot = errors.New("timeslot.repository: slot with the same window already exists")

	// ErrSlotReferenced возвращается, если слот нельзя удалить из-за внешних ссылок
	ErrSlotReferenced = errors.New("timeslot.repository: slot is referenced")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("timeslot.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("timeslot.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("timeslot.repository: failed to scan row")
)

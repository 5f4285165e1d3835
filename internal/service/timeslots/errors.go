package timeslots

import "errors"

var (
	// ErrSlotNotFound возвращается, когда слот не найден
	ErrSlotNotFound = errors.New("time slot not found")

	// ErrSlotUnavailable возвращается, когда слот отключён администратором
	ErrSlotUnavailable = errors.New("time slot is not available")

	// ErrSlotFull возвращается, когда вместимость слота исчерпана
	ErrSlotFull = errors.New("time slot is fully booked")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidFormat возвращается при неверном формате даты или времени
	ErrInvalidFormat = errors.New("invalid date or time format")

	// ErrPastDate возвращается, если дата слота уже прошла
	ErrPastDate = errors.New("date is in the past")

	// ErrInvalidTimeRange возвращается, если начало слота не раньше конца
	ErrInvalidTimeRange = errors.New("start time must be before end time")

	// ErrInvalidCapacity возвращается при вместимости вне допустимых границ
	ErrInvalidCapacity = errors.New("capacity is out of range")

	// ErrCapacityBelowBookings возвращается при уменьшении вместимости ниже текущей занятости
	ErrCapacityBelowBookings = errors.New("capacity is below current bookings")

	// ErrInvalidPeriod возвращается при неверном периоде массового создания
	ErrInvalidPeriod = errors.New("invalid period")

	// ErrNotesTooLong возвращается при слишком длинных заметках техника
	ErrNotesTooLong = errors.New("technician notes are too long")

	// ErrSlotConflict возвращается, если слот с таким окном уже существует
	ErrSlotConflict = errors.New("time slot with the same date and time already exists")

	// ErrSlotHasBookings возвращается при попытке удалить слот с активными бронированиями
	ErrSlotHasBookings = errors.New("time slot has active bookings")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("timeslots service: internal error")
)

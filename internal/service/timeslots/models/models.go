package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/pkg/types"
)

var (
	// ErrInvalidDate возвращается при некорректном формате даты
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")

	// ErrInvalidTime возвращается при некорректном формате времени
	ErrInvalidTime = errors.New("invalid time, expected HH:MM")
)

// Request модели

// CreateSlotRequest запрос на создание слота
type CreateSlotRequest struct {
	Date            string  `json:"date" validate:"required"`      // "2025-10-15"
	StartTime       string  `json:"startTime" validate:"required"` // "09:00"
	EndTime         string  `json:"endTime" validate:"required"`   // "10:00"
	MaxCapacity     *int    `json:"maxCapacity,omitempty" validate:"omitempty,min=1,max=100"`
	TechnicianNotes *string `json:"technicianNotes,omitempty" validate:"omitempty,max=2000"`
}

// TimeRangeRequest пара начало/конец
type TimeRangeRequest struct {
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
}

// BulkCreateRequest запрос на пакетное создание слотов за период
type BulkCreateRequest struct {
	StartDate       string             `json:"startDate" validate:"required"`
	EndDate         string             `json:"endDate" validate:"required"`
	TimeRanges      []TimeRangeRequest `json:"timeRanges" validate:"max=48,dive"`
	MaxCapacity     *int               `json:"maxCapacity,omitempty" validate:"omitempty,min=1,max=100"`
	ExcludeWeekends bool               `json:"excludeWeekends"`
}

// UpdateSlotRequest частичное обновление слота, отсутствующие поля не меняются
type UpdateSlotRequest struct {
	Date            *string `json:"date,omitempty"`
	StartTime       *string `json:"startTime,omitempty"`
	EndTime         *string `json:"endTime,omitempty"`
	IsAvailable     *bool   `json:"isAvailable,omitempty"`
	MaxCapacity     *int    `json:"maxCapacity,omitempty"`
	TechnicianNotes *string `json:"technicianNotes,omitempty" validate:"omitempty,max=2000"`
}

// ListSlotsRequest фильтр списка слотов
type ListSlotsRequest struct {
	From        *string `json:"from,omitempty"`
	To          *string `json:"to,omitempty"`
	IsAvailable *bool   `json:"isAvailable,omitempty"`
}

// ToDomainPatch конвертирует запрос в domain патч
func (r *UpdateSlotRequest) ToDomainPatch() (domain.TimeSlotPatch, error) {
	patch := domain.TimeSlotPatch{
		IsAvailable:     r.IsAvailable,
		MaxCapacity:     r.MaxCapacity,
		TechnicianNotes: r.TechnicianNotes,
	}

	if r.Date != nil {
		date, err := ParseDate(*r.Date)
		if err != nil {
			return patch, err
		}
		patch.Date = &date
	}
	if r.StartTime != nil {
		start, err := ParseTime(*r.StartTime)
		if err != nil {
			return patch, err
		}
		patch.StartTime = &start
	}
	if r.EndTime != nil {
		end, err := ParseTime(*r.EndTime)
		if err != nil {
			return patch, err
		}
		patch.EndTime = &end
	}

	return patch, nil
}

// ToDomainFilter конвертирует запрос в domain фильтр
func (r *ListSlotsRequest) ToDomainFilter() (domain.TimeSlotFilter, error) {
	filter := domain.TimeSlotFilter{IsAvailable: r.IsAvailable}

	if r.From != nil {
		from, err := ParseDate(*r.From)
		if err != nil {
			return filter, err
		}
		filter.From = &from
	}
	if r.To != nil {
		to, err := ParseDate(*r.To)
		if err != nil {
			return filter, err
		}
		filter.To = &to
	}

	return filter, nil
}

// ParseDate парсит дату "YYYY-MM-DD"
func ParseDate(s string) (time.Time, error) {
	date, err := domain.ParseDate(s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return date, nil
}

// ParseTime парсит время "HH:MM"
func ParseTime(s string) (types.TimeString, error) {
	ts, err := types.NewTimeStringFromString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, s)
	}
	return ts, nil
}

// Response модели

// SlotResponse ответ с данными слота
type SlotResponse struct {
	ID              int64     `json:"id"`
	Date            string    `json:"date"`      // "2025-10-15"
	StartTime       string    `json:"startTime"` // "09:00"
	EndTime         string    `json:"endTime"`   // "10:00"
	IsAvailable     bool      `json:"isAvailable"`
	MaxCapacity     int       `json:"maxCapacity"`
	CurrentBookings int       `json:"currentBookings"`
	AvailableSpots  int       `json:"availableSpots"`
	TechnicianNotes *string   `json:"technicianNotes,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// SlotListResponse список слотов
type SlotListResponse struct {
	Slots []SlotResponse `json:"slots"`
	Total int            `json:"total"`
}

// BulkCreateResponse результат пакетного создания
type BulkCreateResponse struct {
	Created int `json:"created"`
}

// FromDomainSlot конвертирует domain слот в response
func FromDomainSlot(slot *domain.TimeSlot) *SlotResponse {
	return &SlotResponse{
		ID:              slot.ID,
		Date:            slot.Date.Format(domain.DateFormat),
		StartTime:       slot.StartTime.String(),
		EndTime:         slot.EndTime.String(),
		IsAvailable:     slot.IsAvailable,
		MaxCapacity:     slot.MaxCapacity,
		CurrentBookings: slot.CurrentBookings,
		AvailableSpots:  slot.FreeSpots(),
		TechnicianNotes: slot.TechnicianNotes,
		CreatedAt:       slot.CreatedAt,
		UpdatedAt:       slot.UpdatedAt,
	}
}

// FromDomainSlotList конвертирует список domain слотов в response
func FromDomainSlotList(slots []*domain.TimeSlot) *SlotListResponse {
	resp := &SlotListResponse{
		Slots: make([]SlotResponse, 0, len(slots)),
		Total: len(slots),
	}
	for _, slot := range slots {
		resp.Slots = append(resp.Slots, *FromDomainSlot(slot))
	}
	return resp
}

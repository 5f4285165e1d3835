package timeslots

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-TechService/internal/domain"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

func (s *Service) slotFromCreateRequest(req *models.CreateSlotRequest) (*domain.TimeSlot, error) {
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, invalidf(ErrInvalidFormat, "date: %v", err)
	}
	if date.Before(s.today()) {
		return nil, invalidf(ErrPastDate, "%s", req.Date)
	}

	window, err := parseRange(req.StartTime, req.EndTime)
	if err != nil {
		return nil, err
	}

	capacity := domain.DefaultMaxCapacity
	if req.MaxCapacity != nil {
		capacity = *req.MaxCapacity
	}
	if err := validateCapacity(capacity); err != nil {
		return nil, err
	}

	if req.TechnicianNotes != nil && len(*req.TechnicianNotes) > domain.MaxNotesLength {
		return nil, invalidf(ErrNotesTooLong, "technicianNotes exceeds %d characters", domain.MaxNotesLength)
	}

	return &domain.TimeSlot{
		Date:            date,
		StartTime:       window.Start,
		EndTime:         window.End,
		IsAvailable:     true,
		MaxCapacity:     capacity,
		CurrentBookings: 0,
		TechnicianNotes: req.TechnicianNotes,
	}, nil
}

func (s *Service) validateBulkRequest(req *models.BulkCreateRequest) (time.Time, time.Time, []domain.TimeRange, error) {
	start, err := models.ParseDate(req.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, nil, invalidf(ErrInvalidFormat, "startDate: %v", err)
	}
	end, err := models.ParseDate(req.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, nil, invalidf(ErrInvalidFormat, "endDate: %v", err)
	}

	if end.Before(start) {
		return time.Time{}, time.Time{}, nil, invalidf(ErrInvalidPeriod, "endDate is before startDate")
	}
	if days := int(end.Sub(start).Hours()/24) + 1; days > domain.MaxBulkRangeDays {
		return time.Time{}, time.Time{}, nil, invalidf(ErrInvalidPeriod, "period of %d days exceeds %d", days, domain.MaxBulkRangeDays)
	}
	// прошедшие дни периода пропускаются
	if today := s.today(); start.Before(today) {
		start = today
	}

	if len(req.TimeRanges) > domain.MaxTimeRangesPerBulk {
		return time.Time{}, time.Time{}, nil, invalidf(ErrInvalidPeriod, "at most %d time ranges allowed", domain.MaxTimeRangesPerBulk)
	}

	ranges := make([]domain.TimeRange, 0, len(req.TimeRanges))
	for _, tr := range req.TimeRanges {
		r, err := parseRange(tr.StartTime, tr.EndTime)
		if err != nil {
			return time.Time{}, time.Time{}, nil, err
		}
		ranges = append(ranges, r)
	}

	if req.MaxCapacity != nil {
		if err := validateCapacity(*req.MaxCapacity); err != nil {
			return time.Time{}, time.Time{}, nil, err
		}
	}

	return start, end, ranges, nil
}

func (s *Service) validateUpdate(current, next *domain.TimeSlot, patch domain.TimeSlotPatch) error {
	if patch.MaxCapacity != nil {
		if err := validateCapacity(next.MaxCapacity); err != nil {
			return err
		}
		if next.MaxCapacity < current.CurrentBookings {
			return invalidf(ErrCapacityBelowBookings, "maxCapacity %d, current bookings %d",
				next.MaxCapacity, current.CurrentBookings)
		}
	}

	if patch.ChangesWindow() {
		if !next.StartTime.IsBefore(next.EndTime) {
			return invalidf(ErrInvalidTimeRange, "%s-%s", next.StartTime, next.EndTime)
		}
		if patch.Date != nil && next.Date.Before(s.today()) {
			return invalidf(ErrPastDate, "%s", next.Date.Format(domain.DateFormat))
		}
	}

	if patch.TechnicianNotes != nil && len(*patch.TechnicianNotes) > domain.MaxNotesLength {
		return invalidf(ErrNotesTooLong, "technicianNotes exceeds %d characters", domain.MaxNotesLength)
	}

	return nil
}

func parseRange(startRaw, endRaw string) (domain.TimeRange, error) {
	start, err := models.ParseTime(startRaw)
	if err != nil {
		return domain.TimeRange{}, invalidf(ErrInvalidFormat, "startTime: %v", err)
	}
	end, err := models.ParseTime(endRaw)
	if err != nil {
		return domain.TimeRange{}, invalidf(ErrInvalidFormat, "endTime: %v", err)
	}

	r := domain.TimeRange{Start: start, End: end}
	if !r.IsValid() {
		return domain.TimeRange{}, invalidf(ErrInvalidTimeRange, "%s-%s", start, end)
	}
	return r, nil
}

func validateCapacity(capacity int) error {
	if capacity < domain.MinCapacity || capacity > domain.MaxCapacity {
		return invalidf(ErrInvalidCapacity, "maxCapacity must be between %d and %d", domain.MinCapacity, domain.MaxCapacity)
	}
	return nil
}

// invalidf оборачивает причину в ErrInvalidInput
func invalidf(cause error, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %w: %s", ErrInvalidInput, cause, fmt.Sprintf(format, args...))
}

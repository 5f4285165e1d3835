package domain

import (
	"time"

	"github.com/m04kA/SMC-TechService/pkg/types"
)

// TimeSlot represents a bookable technical-service window with bounded capacity.
// Invariant: 0 <= CurrentBookings <= MaxCapacity.
type TimeSlot struct {
	ID              int64
	Date            time.Time // date only, time part is ignored
	StartTime       types.TimeString
	EndTime         types.TimeString
	IsAvailable     bool
	MaxCapacity     int
	CurrentBookings int
	TechnicianNotes *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// IsFull returns true if no capacity is left
func (s *TimeSlot) IsFull() bool {
	return s.CurrentBookings >= s.MaxCapacity
}

// CanBeReserved returns true if the slot is enabled and has free capacity
func (s *TimeSlot) CanBeReserved() bool {
	return s.IsAvailable && !s.IsFull()
}

// HasBookings returns true if at least one reservation is held
func (s *TimeSlot) HasBookings() bool {
	return s.CurrentBookings > 0
}

// FreeSpots returns the remaining capacity
func (s *TimeSlot) FreeSpots() int {
	if s.IsFull() {
		return 0
	}
	return s.MaxCapacity - s.CurrentBookings
}

// ScheduledAt combines the slot date with its start time
func (s *TimeSlot) ScheduledAt() (time.Time, error) {
	return s.StartTime.OnDate(s.Date)
}

// SameWindow reports whether both slots cover the same (date, start, end) triple
func (s *TimeSlot) SameWindow(other *TimeSlot) bool {
	return SameDay(s.Date, other.Date) &&
		s.StartTime == other.StartTime &&
		s.EndTime == other.EndTime
}

// TimeRange is a start/end pair of wall-clock times
type TimeRange struct {
	Start types.TimeString
	End   types.TimeString
}

// IsValid returns true if both times are well-formed and Start < End
func (r TimeRange) IsValid() bool {
	if r.Start.Validate() != nil || r.End.Validate() != nil {
		return false
	}
	return r.Start.IsBefore(r.End)
}

// TimeSlotPatch carries optional changes for a slot; nil fields keep prior values
type TimeSlotPatch struct {
	Date            *time.Time
	StartTime       *types.TimeString
	EndTime         *types.TimeString
	IsAvailable     *bool
	MaxCapacity     *int
	TechnicianNotes *string
}

// IsEmpty returns true if the patch changes nothing
func (p TimeSlotPatch) IsEmpty() bool {
	return p.Date == nil && p.StartTime == nil && p.EndTime == nil &&
		p.IsAvailable == nil && p.MaxCapacity == nil && p.TechnicianNotes == nil
}

// ChangesWindow returns true if the patch touches date or time bounds
func (p TimeSlotPatch) ChangesWindow() bool {
	return p.Date != nil || p.StartTime != nil || p.EndTime != nil
}

// ApplyTo returns a copy of the slot with the patch applied
func (p TimeSlotPatch) ApplyTo(s TimeSlot) TimeSlot {
	if p.Date != nil {
		s.Date = TruncateToDay(*p.Date)
	}
	if p.StartTime != nil {
		s.StartTime = *p.StartTime
	}
	if p.EndTime != nil {
		s.EndTime = *p.EndTime
	}
	if p.IsAvailable != nil {
		s.IsAvailable = *p.IsAvailable
	}
	if p.MaxCapacity != nil {
		s.MaxCapacity = *p.MaxCapacity
	}
	if p.TechnicianNotes != nil {
		notes := *p.TechnicianNotes
		s.TechnicianNotes = &notes
	}
	return s
}

// TimeSlotFilter filter for listing slots
type TimeSlotFilter struct {
	From         *time.Time // inclusive, nil = no lower bound
	To           *time.Time // inclusive, nil = no upper bound
	IsAvailable  *bool
	OnlyBookable bool // is_available AND current_bookings < max_capacity
}

// Matches reports whether the slot passes the filter
func (f TimeSlotFilter) Matches(s *TimeSlot) bool {
	day := TruncateToDay(s.Date)
	if f.From != nil && day.Before(TruncateToDay(*f.From)) {
		return false
	}
	if f.To != nil && day.After(TruncateToDay(*f.To)) {
		return false
	}
	if f.IsAvailable != nil && s.IsAvailable != *f.IsAvailable {
		return false
	}
	if f.OnlyBookable && !s.CanBeReserved() {
		return false
	}
	return true
}

// TruncateToDay drops the time of day keeping the location
func TruncateToDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether both times fall on the same calendar date
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// IsWeekend returns true for Saturday and Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// DateOf returns the calendar date of t as UTC midnight
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses "YYYY-MM-DD" into UTC midnight
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateFormat, s, time.UTC)
}

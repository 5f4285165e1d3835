package domain

// Default values
const (
	DefaultMaxCapacity = 1
	DefaultPriority    = PriorityMedium
)

// Business validation constants
const (
	MinCapacity          = 1
	MaxCapacity          = 100
	MaxDescriptionLength = 2000
	MaxNotesLength       = 2000
	MaxBulkRangeDays     = 366
	MaxTimeRangesPerBulk = 48
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// RequestNumberPrefix prefix of human-readable service request numbers
const RequestNumberPrefix = "SR"

// TerminalStatuses statuses no transition leaves
var TerminalStatuses = []ServiceRequestStatus{
	StatusCompleted,
	StatusCancelled,
}

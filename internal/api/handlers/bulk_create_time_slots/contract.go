package bulk_create_time_slots

import (
	"context"

	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

type TimeSlotService interface {
	BulkCreate(ctx context.Context, req *models.BulkCreateRequest) (*models.BulkCreateResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

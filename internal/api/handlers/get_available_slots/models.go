package get_available_slots

import (
	"net/http"

	"github.com/m04kA/SMC-TechService/internal/api/handlers"
	"github.com/m04kA/SMC-TechService/internal/service/timeslots/models"
)

// FromQuery собирает фильтр из query параметров from и to (YYYY-MM-DD)
func FromQuery(r *http.Request) *models.ListSlotsRequest {
	return &models.ListSlotsRequest{
		From: handlers.OptionalQuery(r, "from"),
		To:   handlers.OptionalQuery(r, "to"),
	}
}

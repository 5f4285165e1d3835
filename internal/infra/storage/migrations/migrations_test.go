package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	migrations, err := Load()
	require.NoError(t, err)
	require.Len(t, migrations, 2)

	assert.Equal(t, "0001_time_slots", migrations[0].Version)
	assert.Equal(t, "0002_service_requests", migrations[1].Version)
	assert.Contains(t, migrations[0].SQL, "time_slots_window_uniq")
	assert.Contains(t, migrations[1].SQL, "ON DELETE SET NULL")
}

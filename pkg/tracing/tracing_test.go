package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Config{Enabled: false})

	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestInit_UnknownExporter(t *testing.T) {
	_, err := Init(context.Background(), Config{Enabled: true, Exporter: "zipkin"})

	assert.Error(t, err)
}

func TestSampleRatio(t *testing.T) {
	assert.Equal(t, defaultSampleRatio, sampleRatio(0))
	assert.Equal(t, defaultSampleRatio, sampleRatio(-1))
	assert.Equal(t, 0.5, sampleRatio(0.5))
	assert.Equal(t, 1.0, sampleRatio(3))
}

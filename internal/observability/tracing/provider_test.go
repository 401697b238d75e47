package tracing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProvider_Disabled(t *testing.T) {
	provider, err := NewProvider(nil, Config{Enabled: false}, nil)
	require.NoError(t, err)
	require.NotNil(t, provider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewProvider_Enabled(t *testing.T) {
	provider, err := NewProvider(nil, Config{
		Enabled:          true,
		ServiceName:      "moim",
		ServiceVersion:   "test",
		Environment:      "test",
		ExporterProtocol: "grpc",
		SamplingRatio:    1,
	}, nil)
	require.NoError(t, err)
	require.NotNil(t, provider)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, provider.Shutdown(ctx))
}

func TestNewExporter_UnsupportedProtocol(t *testing.T) {
	_, err := newExporter("carrier-pigeon", "")
	assert.Error(t, err)
}

package telemetry

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTracerProviderStdout(t *testing.T) {
	var buf bytes.Buffer
	tp, err := NewTracerProvider(context.Background(), Config{ServiceName: "gaia", Exporter: "stdout", Writer: &buf})
	require.NoError(t, err)

	_, span := tp.Tracer("test").Start(context.Background(), "chip.Generate")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	require.Contains(t, buf.String(), "chip.Generate")
	require.Contains(t, buf.String(), "gaia")
}

func TestNewTracerProviderNone(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Exporter: "none"})
	require.NoError(t, err)
	_, span := tp.Tracer("test").Start(context.Background(), "noop")
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewTracerProviderUnknown(t *testing.T) {
	_, err := NewTracerProvider(context.Background(), Config{Exporter: "zipkin"})
	require.ErrorIs(t, err, ErrUnknownExporter)
}

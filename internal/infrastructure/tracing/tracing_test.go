package tracing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestInitTracer_Disabled(t *testing.T) {
	shutdown, err := InitTracer(Config{ServiceName: "catalog"})
	require.NoError(t, err)

	assert.NoError(t, shutdown(context.Background()))
	assert.ElementsMatch(t, []string{"traceparent", "tracestate", "baggage"}, otel.GetTextMapPropagator().Fields())
}

func TestGetTracer(t *testing.T) {
	_, span := GetTracer("test").Start(context.Background(), "op")
	defer span.End()

	assert.NotNil(t, span)
}

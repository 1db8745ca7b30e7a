package messaging

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hilthontt/melody/messaging"

// headerCarrier implements propagation.TextMapCarrier for AMQP headers.
type headerCarrier struct {
	headers amqp.Table
}

func (c headerCarrier) Get(key string) string {
	switch v := c.headers[key].(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func (c headerCarrier) Set(key, value string) {
	c.headers[key] = value
}

func (c headerCarrier) Keys() []string {
	out := make([]string, 0, len(c.headers))
	for k := range c.headers {
		out = append(out, k)
	}
	return out
}

// injectTraceContext adds the current trace context to the message headers.
func injectTraceContext(ctx context.Context, headers amqp.Table) amqp.Table {
	if headers == nil {
		headers = amqp.Table{}
	}
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{headers: headers})
	return headers
}

// extractTraceContext retrieves the trace context from delivery headers.
func extractTraceContext(ctx context.Context, headers amqp.Table) context.Context {
	if headers == nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier{headers: headers})
}

func startPublishSpan(ctx context.Context, exchange, key string) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "rabbitmq.publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.destination", exchange),
			attribute.String("messaging.rabbitmq.routing_key", key),
			attribute.String("messaging.operation", "publish"),
		),
	)
}

func startConsumeSpan(ctx context.Context, queue string, d amqp.Delivery) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, "rabbitmq.consume",
		trace.WithSpanKind(trace.SpanKindConsumer),
		trace.WithAttributes(
			attribute.String("messaging.system", "rabbitmq"),
			attribute.String("messaging.source", queue),
			attribute.String("messaging.rabbitmq.routing_key", d.RoutingKey),
			attribute.String("messaging.message_id", d.MessageId),
			attribute.String("messaging.operation", "process"),
		),
	)
}

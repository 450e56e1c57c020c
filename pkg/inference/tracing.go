package inference

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const tracerName = "aficionado-be/pkg/inference"

// Traced wraps a gateway so every call produces an "inference.invoke" span.
func Traced(backend string, next Gateway) Gateway {
	tracer := otel.Tracer(tracerName)
	return GatewayFunc(func(ctx context.Context, username, task string) Result {
		ctx, span := tracer.Start(ctx, "inference.invoke")
		defer span.End()

		span.SetAttributes(
			attribute.String("inference.backend", backend),
			attribute.String("workspace.username", username),
			attribute.Int("inference.task_length", len(task)),
		)

		res := next.Invoke(ctx, username, task)
		span.SetAttributes(
			attribute.String("inference.result", res.Kind.String()),
			attribute.Int("inference.status", res.Status),
		)
		if !res.IsOK() {
			span.SetStatus(codes.Error, res.Display())
		}
		return res
	})
}

package session

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentedSession wraps a Session with tracing and metrics. It implements
// Handler, so the Runner treats both the same way.
type InstrumentedSession struct {
	session *Session
	tracer  trace.Tracer
	meter   metric.Meter
}

func NewInstrumentedSession(s *Session, tracer trace.Tracer, meter metric.Meter) *InstrumentedSession {
	return &InstrumentedSession{
		session: s,
		tracer:  tracer,
		meter:   meter,
	}
}

// Start begins a planning round under a span.
func (i *InstrumentedSession) Start(ctx context.Context) error {
	ctx, span := i.tracer.Start(ctx, "Session.Start", trace.WithAttributes(
		attribute.String("session.id", i.session.ID()),
	))
	defer span.End()

	startsCounter, _ := i.meter.Int64Counter("session_starts_total",
		metric.WithDescription("Total number of planning rounds started"))
	startsCounter.Add(ctx, 1)

	err := i.session.Start(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

// HandleUserInput processes one user message under a span, recording turn
// latency and the stage transition it caused.
func (i *InstrumentedSession) HandleUserInput(ctx context.Context, content string) error {
	ctx, span := i.tracer.Start(ctx, "Session.HandleUserInput", trace.WithAttributes(
		attribute.String("session.id", i.session.ID()),
		attribute.String("session.stage", string(i.session.Stage())),
	))
	defer span.End()

	turnsCounter, _ := i.meter.Int64Counter("session_turns_total",
		metric.WithDescription("Total number of user turns processed"))
	turnErrorsCounter, _ := i.meter.Int64Counter("session_turn_errors_total",
		metric.WithDescription("Total number of turns that failed"))
	turnDuration, _ := i.meter.Float64Histogram("session_turn_duration_seconds",
		metric.WithDescription("Time to fully process one user turn"))

	started := time.Now()
	err := i.session.HandleUserInput(ctx, content)
	elapsed := time.Since(started).Seconds()

	stageAttr := metric.WithAttributes(attribute.String("stage", string(i.session.Stage())))
	turnsCounter.Add(ctx, 1, stageAttr)
	turnDuration.Record(ctx, elapsed, stageAttr)
	span.SetAttributes(attribute.String("session.stage_after", string(i.session.Stage())))

	if err != nil {
		turnErrorsCounter.Add(ctx, 1, stageAttr)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

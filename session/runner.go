package session

import (
	"context"
	"fmt"
	"log/slog"
)

// Inbound is one session event from the transport.
type Inbound struct {
	Type    string `json:"type"`
	Content string `json:"content,omitempty"`
}

const (
	InboundStart     = "start"
	InboundUserInput = "user_input"
)

// Handler processes inbound session events. *Session implements it;
// InstrumentedSession wraps it with tracing and metrics.
type Handler interface {
	Start(ctx context.Context) error
	HandleUserInput(ctx context.Context, content string) error
}

// Runner serializes one session: every inbound event is fully processed,
// including any tool calls, before the next is accepted. Different sessions
// run in independent runners with no shared mutable state.
type Runner struct {
	handler Handler
	events  chan Inbound
}

func NewRunner(handler Handler, buffer int) *Runner {
	return &Runner{
		handler: handler,
		events:  make(chan Inbound, buffer),
	}
}

// Submit enqueues an inbound event. It blocks when the session is behind, so
// the transport applies backpressure instead of reordering.
func (r *Runner) Submit(ctx context.Context, in Inbound) error {
	select {
	case r.events <- in:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run processes events until the context is canceled (connection closed).
// Cancellation mid-turn propagates into outstanding tool calls; their late
// results are discarded with the session.
func (r *Runner) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			slog.Info("RUNNER: Session torn down", "reason", ctx.Err())
			return ctx.Err()
		case in := <-r.events:
			if err := r.dispatch(ctx, in); err != nil {
				// Session-scoped failures were already reported to the user;
				// anything surfacing here is a programming error worth seeing.
				slog.Error("RUNNER: Event handling failed", "type", in.Type, "error", err)
			}
		}
	}
}

func (r *Runner) dispatch(ctx context.Context, in Inbound) error {
	switch in.Type {
	case InboundStart:
		return r.handler.Start(ctx)
	case InboundUserInput:
		return r.handler.HandleUserInput(ctx, in.Content)
	default:
		return fmt.Errorf("unknown inbound event type %q", in.Type)
	}
}

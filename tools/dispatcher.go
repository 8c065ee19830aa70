package tools

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/spachava753/deskmcp/fault"
	"github.com/spachava753/deskmcp/internal/telemetry"
)

// Response is the outcome of one tool call.
type Response struct {
	Text    string
	IsError bool
}

// Dispatcher is the failure boundary around a Router. Every error and panic
// below it becomes an error Response.
type Dispatcher struct {
	router   *Router
	observer *telemetry.Observer
	logger   zerolog.Logger
}

// NewDispatcher returns a dispatcher over router. observer may be nil.
func NewDispatcher(router *Router, observer *telemetry.Observer, logger zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		router:   router,
		observer: observer,
		logger:   logger.With().Str("component", "dispatcher").Logger(),
	}
}

// Router returns the dispatcher's router.
func (d *Dispatcher) Router() *Router {
	return d.router
}

// Handle runs one tool call. It never panics and never returns an error.
func (d *Dispatcher) Handle(ctx context.Context, tool string, args Args) (resp Response) {
	operation, _ := args[OperationArg].(string)
	ctx, end := d.observer.Start(ctx, tool, operation)
	started := time.Now()
	logger := d.logger.With().Str("tool", tool).Str("operation", operation).Logger()

	defer func() {
		if r := recover(); r != nil {
			logger.Error().Interface("panic", r).Msg("tool call panicked")
			resp = Response{Text: fmt.Sprintf("internal error: %v", r), IsError: true}
			end(string(fault.KindUnknown))
		}
	}()

	text, err := d.router.Route(ctx, tool, args)
	if err != nil {
		kind := fault.KindOf(err)
		logger.Warn().Err(err).Str("kind", string(kind)).Dur("elapsed", time.Since(started)).Msg("tool call failed")
		end(string(kind))
		return Response{Text: errorText(err), IsError: true}
	}
	logger.Info().Dur("elapsed", time.Since(started)).Msg("tool call")
	end("")
	return Response{Text: text}
}

func errorText(err error) string {
	return "Error: " + err.Error()
}

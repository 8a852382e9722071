// Package supervise runs the long-lived parts of tagwm (the manager loop and
// the control socket) under a suture supervisor.
package supervise

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/thejerf/suture/v4"
)

// New returns a supervisor that logs its events to logger.
func New(name string, logger *slog.Logger) *suture.Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return suture.New(name, suture.Spec{
		EventHook: EventHook(logger),
		Timeout:   5 * time.Second,
	})
}

// EventHook translates supervisor events into log records.
func EventHook(logger *slog.Logger) suture.EventHook {
	return func(ei suture.Event) {
		switch e := ei.(type) {
		case suture.EventStopTimeout:
			logger.Warn("service failed to stop in time", "supervisor", e.SupervisorName, "service", e.ServiceName)
		case suture.EventServicePanic:
			logger.Error("service panicked", "supervisor", e.SupervisorName, "service", e.ServiceName, "panic", e.PanicMsg)
			logger.Debug(e.Stacktrace)
		case suture.EventServiceTerminate:
			logger.Error("service failed", "supervisor", e.SupervisorName, "service", e.ServiceName, "error", e.Err, "restarting", e.Restarting)
		case suture.EventBackoff:
			logger.Debug("too many service failures, backing off", "supervisor", e.SupervisorName)
		case suture.EventResume:
			logger.Debug("leaving backoff", "supervisor", e.SupervisorName)
		default:
			b, _ := json.Marshal(e)
			logger.Warn("unknown supervisor event", "type", int(e.Type()), "event", string(b))
		}
	}
}

// Service is a suture service with a name for the event log.
type Service interface {
	String() string
	suture.Service
}

// Add registers service with super, sanitizing the errors it returns.
func Add(super *suture.Supervisor, service Service) suture.ServiceToken {
	return super.Add(sanitizeService{Service: service})
}

type sanitizeService struct {
	Service
}

func (s sanitizeService) Serve(ctx context.Context) error {
	return SanitizeError(ctx, s.Service.Serve(ctx))
}

// SanitizeError keeps a service error from looking like a context error
// unless ctx really is done. Suture stops restarting a service that returns
// a context error.
func SanitizeError(ctx context.Context, err error) error {
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if !(errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}

	var errs [3]error
	if errors.Is(err, suture.ErrDoNotRestart) {
		errs[0] = suture.ErrDoNotRestart
	}
	if errors.Is(err, suture.ErrTerminateSupervisorTree) {
		errs[1] = suture.ErrTerminateSupervisorTree
	}
	errs[2] = errors.New(err.Error())
	return errors.Join(errs[:]...)
}

// Func adapts a function to Service.
type Func struct {
	name string
	fn   func(ctx context.Context) error
}

// NewFunc names fn for the supervisor.
func NewFunc(name string, fn func(ctx context.Context) error) Func {
	return Func{name: name, fn: fn}
}

func (f Func) String() string {
	return f.name
}

func (f Func) Serve(ctx context.Context) error {
	return f.fn(ctx)
}

// Terminal wraps fn so that its return, error or not, ends the whole tree.
func Terminal(name string, fn func(ctx context.Context) error) Func {
	return NewFunc(name, func(ctx context.Context) error {
		err := fn(ctx)
		if err == nil {
			return suture.ErrTerminateSupervisorTree
		}
		return errors.Join(err, suture.ErrTerminateSupervisorTree)
	})
}

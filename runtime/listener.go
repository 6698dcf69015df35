package runtime

import (
	"context"
	"errors"
	"time"

	"github.com/viant/steward/host"
	"github.com/viant/steward/model/event"
	"github.com/viant/steward/tracing"
	"golang.org/x/time/rate"
)

// listen forks a listener task forwarding each matching event to onEvent.
// The listener ends when ctx is done or its channel closes.
func (e *engine) listen(ctx context.Context, name string, pattern event.Pattern, onEvent func(ctx context.Context, ch *subscription, evt *event.Event) error) host.Handle {
	return e.Fork(ctx, host.Named(name, host.Func(func(ctx context.Context, _ host.Args) error {
		ch, err := e.Channel(ctx, pattern)
		if err != nil {
			return err
		}
		defer ch.Close()
		sub := ch.(*subscription)
		for {
			evt, err := sub.Take(ctx)
			if err != nil {
				if errors.Is(err, host.ErrClosed) {
					return nil
				}
				return err
			}
			_, span := tracing.StartSpan(ctx, name+" "+evt.Type, tracing.KindConsumer)
			span.WithAttributes(map[string]string{"event.id": evt.ID})
			err = onEvent(ctx, sub, evt)
			tracing.EndSpan(span, err)
			if err != nil {
				return err
			}
		}
	})), nil)
}

// TakeEvery forks worker with args and the event for every matching event.
// A worker failure fails the listener.
func (e *engine) TakeEvery(ctx context.Context, pattern event.Pattern, worker host.Task, args host.Args) host.Handle {
	return e.listen(ctx, "takeEvery("+host.NameOf(worker)+")", pattern, func(ctx context.Context, _ *subscription, evt *event.Event) error {
		e.Fork(ctx, worker, args.With(evt))
		return nil
	})
}

// TakeLatest forks worker for every matching event, cancelling the previous
// instance first. A worker failure fails the listener.
func (e *engine) TakeLatest(ctx context.Context, pattern event.Pattern, worker host.Task, args host.Args) host.Handle {
	var last host.Handle
	return e.listen(ctx, "takeLatest("+host.NameOf(worker)+")", pattern, func(ctx context.Context, _ *subscription, evt *event.Event) error {
		e.Cancel(last)
		last = e.Fork(ctx, worker, args.With(evt))
		return nil
	})
}

// Throttle forks worker for a matching event at most once per interval.
// Events arriving while the listener waits collapse to the most recent one.
func (e *engine) Throttle(ctx context.Context, interval time.Duration, pattern event.Pattern, worker host.Task, args host.Args) host.Handle {
	limiter := rate.NewLimiter(rate.Every(interval), 1)
	return e.listen(ctx, "throttle("+host.NameOf(worker)+")", pattern, func(ctx context.Context, sub *subscription, evt *event.Event) error {
		reservation := limiter.Reserve()
		if delay := reservation.Delay(); delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				reservation.Cancel()
				return ctx.Err()
			case <-timer.C:
			}
			if latest, ok := sub.latest(); ok {
				evt = latest
			}
		}
		e.Fork(ctx, worker, args.With(evt))
		return nil
	})
}

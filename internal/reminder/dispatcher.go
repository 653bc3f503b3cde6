// Package reminder fires time-based notifications for a scheduled plan.
//
// A Dispatcher keeps pending events in a min-heap ordered by trigger time and
// delivers them on a buffered channel. Delivery never blocks: if the consumer
// falls behind, events are dropped and counted.
package reminder

import (
	"container/heap"
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

var (
	ErrInvalidTriggerTime = errors.New("reminder: invalid trigger time")
	ErrStopped            = errors.New("reminder: dispatcher stopped")
)

type Kind string

const (
	KindTaskStart    Kind = "task_start"
	KindBreakStart   Kind = "break_start"
	KindDailySummary Kind = "daily_summary"
)

type Event struct {
	ID        string    `json:"id"`
	TaskID    string    `json:"taskId,omitempty"`
	Kind      Kind      `json:"kind"`
	Title     string    `json:"title"`
	TriggerAt time.Time `json:"triggerAt"`
}

type eventQueue []Event

func (q eventQueue) Len() int { return len(q) }

func (q eventQueue) Less(i, j int) bool {
	return q[i].TriggerAt.Before(q[j].TriggerAt)
}

func (q eventQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *eventQueue) Push(x any) { *q = append(*q, x.(Event)) }

func (q *eventQueue) Pop() any {
	old := *q
	n := len(old)
	ev := old[n-1]
	*q = old[:n-1]
	return ev
}

type Dispatcher struct {
	mu      sync.Mutex
	queue   eventQueue
	out     chan Event
	wakeup  chan struct{}
	stopCh  chan struct{}
	doneCh  chan struct{}
	started bool
	stopped bool
	dropped atomic.Uint64
	now     func() time.Time
	logger  *zap.Logger
}

type Option func(*Dispatcher)

func WithLogger(logger *zap.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		if now != nil {
			d.now = now
		}
	}
}

func NewDispatcher(bufferSize int, opts ...Option) *Dispatcher {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	d := &Dispatcher{
		queue:  make(eventQueue, 0),
		out:    make(chan Event, bufferSize),
		wakeup: make(chan struct{}, 1),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
		now:    time.Now,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// C is closed once the dispatcher stops.
func (d *Dispatcher) C() <-chan Event {
	return d.out
}

// Start runs the delivery loop until Stop is called or ctx is done.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.started = true
	heap.Init(&d.queue)
	go d.loop(ctx)
}

func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started || d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.stopCh)
	d.mu.Unlock()
	<-d.doneCh
}

func (d *Dispatcher) Schedule(ev Event) error {
	if ev.TriggerAt.IsZero() {
		return ErrInvalidTriggerTime
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	heap.Push(&d.queue, ev)
	d.signalWakeup()
	return nil
}

// Replace discards every pending event and queues events in its place. It is
// used when a plan is recomputed.
func (d *Dispatcher) Replace(events []Event) error {
	for _, ev := range events {
		if ev.TriggerAt.IsZero() {
			return ErrInvalidTriggerTime
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return ErrStopped
	}
	d.queue = append(make(eventQueue, 0, len(events)), events...)
	heap.Init(&d.queue)
	d.signalWakeup()
	d.logger.Debug("reminders replaced", zap.Int("pending", len(events)))
	return nil
}

func (d *Dispatcher) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.queue)
}

func (d *Dispatcher) Dropped() uint64 {
	return d.dropped.Load()
}

func (d *Dispatcher) loop(ctx context.Context) {
	defer close(d.doneCh)
	defer close(d.out)

	var timer *time.Timer
	defer func() { stopTimer(timer) }()
	for {
		next, ok := d.peek()
		if !ok {
			select {
			case <-d.wakeup:
				continue
			case <-d.stopCh:
				return
			case <-ctx.Done():
				d.markStopped()
				return
			}
		}

		wait := next.TriggerAt.Sub(d.now())
		if wait < 0 {
			wait = 0
		}
		timer = resetTimer(timer, wait)

		select {
		case <-timer.C:
			for _, ev := range d.popDue(d.now()) {
				select {
				case d.out <- ev:
				default:
					d.dropped.Add(1)
					d.logger.Warn("reminder dropped", zap.String("event_id", ev.ID), zap.String("kind", string(ev.Kind)))
				}
			}
		case <-d.wakeup:
			continue
		case <-d.stopCh:
			return
		case <-ctx.Done():
			d.markStopped()
			return
		}
	}
}

func (d *Dispatcher) markStopped() {
	d.mu.Lock()
	d.stopped = true
	d.mu.Unlock()
}

func (d *Dispatcher) signalWakeup() {
	select {
	case d.wakeup <- struct{}{}:
	default:
	}
}

func (d *Dispatcher) peek() (Event, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queue) == 0 {
		return Event{}, false
	}
	return d.queue[0], true
}

func (d *Dispatcher) popDue(now time.Time) []Event {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []Event
	for len(d.queue) > 0 && !d.queue[0].TriggerAt.After(now) {
		out = append(out, heap.Pop(&d.queue).(Event))
	}
	return out
}

func resetTimer(timer *time.Timer, wait time.Duration) *time.Timer {
	if timer == nil {
		return time.NewTimer(wait)
	}
	stopTimer(timer)
	timer.Reset(wait)
	return timer
}

func stopTimer(timer *time.Timer) {
	if timer == nil {
		return
	}
	if !timer.Stop() {
		select {
		case <-timer.C:
		default:
		}
	}
}

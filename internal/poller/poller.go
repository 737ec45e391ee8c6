package poller

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// EventSource is the outstanding event list of a payment processor
//
//go:generate mockgen -source=poller.go -destination=../mocks/poller.go -package=mocks -mock_names=EventSource=MockEventSource
type EventSource interface {
	// ListEvents returns every event the processor still holds
	ListEvents(ctx context.Context) ([]domain.PaymentEvent, error)
	// DeleteEvent acknowledges an event so the processor stops returning it
	DeleteEvent(ctx context.Context, eventID string) error
}

// Callback receives the terminal event of a payment
type Callback func(ctx context.Context, event domain.PaymentEvent) error

// Config holds poller configuration
type Config struct {
	Interval          time.Duration
	TickTimeout       time.Duration
	DeleteConcurrency int
}

// Poller polls the processor while at least one payment is subscribed and hands each terminal
// event to the subscriber of its payment exactly once
type Poller struct {
	cfg    Config
	source EventSource
	clock  adapter.Clock

	// tickMu keeps ticks from overlapping
	tickMu sync.Mutex

	mu          sync.Mutex
	subscribers map[string]Callback
	running     bool
	stopCh      chan struct{}
	stoppedCh   chan struct{}
}

// New creates a poller. Polling starts with the first subscription.
func New(cfg Config, source EventSource, clock adapter.Clock) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 5 * time.Second
	}
	if cfg.TickTimeout <= 0 {
		cfg.TickTimeout = 20 * time.Second
	}
	if cfg.DeleteConcurrency <= 0 {
		cfg.DeleteConcurrency = 1
	}

	return &Poller{
		cfg:         cfg,
		source:      source,
		clock:       clock,
		subscribers: make(map[string]Callback),
	}
}

// Subscribe registers the callback of a payment, replacing an earlier one, and starts polling
// if it is not running
func (p *Poller) Subscribe(paymentID string, cb Callback) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.subscribers[paymentID] = cb
	if !p.running {
		p.running = true
		p.stopCh = make(chan struct{})
		p.stoppedCh = make(chan struct{})
		go p.loop(p.stopCh, p.stoppedCh)
	}
}

// SubscribeAll registers cb for every payment id load returns. No tick runs between the load and
// the last subscription, so a payment a tick has just settled is never subscribed again.
func (p *Poller) SubscribeAll(ctx context.Context, load func(ctx context.Context) ([]string, error), cb Callback) (int, error) {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	paymentIDs, err := load(ctx)
	if err != nil {
		return 0, err
	}
	for _, paymentID := range paymentIDs {
		p.Subscribe(paymentID, cb)
	}
	return len(paymentIDs), nil
}

// Pending returns the number of subscribed payments
func (p *Poller) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.subscribers)
}

// Running reports whether the timer is active
func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Stop halts the timer and waits for an in-flight tick. Subscriptions are kept; the next
// Subscribe restarts polling.
func (p *Poller) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = false
	close(p.stopCh)
	stoppedCh := p.stoppedCh
	p.mu.Unlock()

	select {
	case <-stoppedCh:
		logger.InfoCtx(ctx, "Payment poller stopped")
		return nil
	case <-ctx.Done():
		logger.WarnCtx(ctx, "Payment poller stop interrupted by context timeout")
		return ctx.Err()
	}
}

func (p *Poller) loop(stopCh chan struct{}, stoppedCh chan struct{}) {
	defer close(stoppedCh)

	ctx := context.Background()
	logger.InfoCtx(ctx, "Payment poller started", zap.Duration("interval", p.cfg.Interval))

	for {
		select {
		case <-stopCh:
			return
		case <-p.clock.After(p.cfg.Interval):
		}

		p.Poll(ctx)

		select {
		case <-stopCh:
			return
		default:
		}

		p.mu.Lock()
		if len(p.subscribers) == 0 {
			p.running = false
			p.mu.Unlock()
			logger.InfoCtx(ctx, "Payment poller idle, timer stopped")
			return
		}
		p.mu.Unlock()
	}
}

// Poll runs one tick and returns the number of callbacks invoked. A failed or timed-out fetch
// means no terminal events this round.
func (p *Poller) Poll(ctx context.Context) int {
	p.tickMu.Lock()
	defer p.tickMu.Unlock()

	if p.Pending() == 0 {
		return 0
	}

	tickCtx, cancel := context.WithTimeout(ctx, p.cfg.TickTimeout)
	defer cancel()

	events, err := p.source.ListEvents(tickCtx)
	if err != nil {
		logger.WarnCtx(ctx, "Failed to list payment events, skipping tick", zap.Error(err))
		return 0
	}

	ids, groups := groupByPayment(events)

	delivered := 0
	for _, paymentID := range ids {
		group := groups[paymentID]
		terminal, ok := terminalEvent(group)
		if !ok {
			continue
		}

		p.deleteEvents(tickCtx, group)

		p.mu.Lock()
		cb, subscribed := p.subscribers[paymentID]
		delete(p.subscribers, paymentID)
		p.mu.Unlock()

		if !subscribed {
			logger.DebugCtx(ctx, "Terminal event without subscriber", zap.String("payment_id", paymentID))
			continue
		}

		p.invoke(ctx, cb, terminal)
		delivered++
	}

	return delivered
}

// deleteEvents removes every event of a group from the processor, terminal or not
func (p *Poller) deleteEvents(ctx context.Context, group []domain.PaymentEvent) {
	pool := pond.NewPool(p.cfg.DeleteConcurrency, pond.WithContext(ctx))
	for _, event := range group {
		pool.Submit(func() {
			if err := p.source.DeleteEvent(ctx, event.EventID); err != nil {
				logger.WarnCtx(ctx, "Failed to delete payment event",
					zap.String("event_id", event.EventID),
					zap.String("payment_id", event.PaymentID),
					zap.Error(err))
			}
		})
	}
	pool.StopAndWait()
}

func (p *Poller) invoke(ctx context.Context, cb Callback, event domain.PaymentEvent) {
	fields := []zap.Field{
		zap.String("payment_id", event.PaymentID),
		zap.String("event", string(event.Name)),
	}

	defer func() {
		if r := recover(); r != nil {
			logger.ErrorCtx(ctx, fmt.Errorf("payment callback panicked: %v", r), fields...)
		}
	}()

	if err := cb(ctx, event); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("payment callback failed: %w", err), fields...)
	}
}

// groupByPayment groups events by payment id, keeping the order in which ids first appear
func groupByPayment(events []domain.PaymentEvent) ([]string, map[string][]domain.PaymentEvent) {
	var ids []string
	groups := make(map[string][]domain.PaymentEvent)
	for _, event := range events {
		if _, ok := groups[event.PaymentID]; !ok {
			ids = append(ids, event.PaymentID)
		}
		groups[event.PaymentID] = append(groups[event.PaymentID], event)
	}
	return ids, groups
}

func terminalEvent(group []domain.PaymentEvent) (domain.PaymentEvent, bool) {
	for _, event := range group {
		if event.IsTerminal() {
			return event, true
		}
	}
	return domain.PaymentEvent{}, false
}

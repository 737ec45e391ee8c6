package correlator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/feral-file/ff-minter/internal/adapter"
	"github.com/feral-file/ff-minter/internal/chain"
	"github.com/feral-file/ff-minter/internal/domain"
	"github.com/feral-file/ff-minter/internal/logger"
)

// ErrAlreadyBound is returned when a submission reference already has a listener
var ErrAlreadyBound = errors.New("submission reference already bound")

// Listener receives the confirmation event of a binding. The event is nil for registrations
// without a submission reference.
type Listener func(ctx context.Context, event *domain.ChainEvent) error

// Result is the single value delivered by Await
type Result struct {
	Event *domain.ChainEvent
	Err   error
}

// Source is the chain event stream of a network
type Source struct {
	Network domain.Network
	Client  chain.Client
}

// Key identifies one binding
type Key struct {
	Network  string
	Contract string
	Kind     domain.EventKind
	Ref      string
}

// Config holds correlator configuration
type Config struct {
	// ListenerTTL is how long a binding waits before Expire drops it; zero disables expiry
	ListenerTTL time.Duration
	// ReplayBuffer is the number of unmatched events kept per stream for late registrations
	ReplayBuffer int
	// ResubscribeInterval is the first wait before re-attaching a failed stream
	ResubscribeInterval time.Duration
	// ResubscribeMaxInterval caps the wait between re-attach attempts
	ResubscribeMaxInterval time.Duration
}

type streamKey struct {
	network  string
	contract string
	kind     domain.EventKind
}

type stream struct {
	key    streamKey
	source Source
	sub    chain.Subscription
}

type binding struct {
	listener  Listener
	onExpire  func(err error)
	createdAt time.Time
}

type replayed struct {
	event      domain.ChainEvent
	receivedAt time.Time
}

// Correlator matches chain events to the submissions waiting for them. It subscribes at most once
// per (network, contract, event kind) and delivers each event to at most one listener.
type Correlator struct {
	cfg   Config
	clock adapter.Clock
	log   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// attachMu serializes stream attachment so each stream is subscribed once
	attachMu sync.Mutex

	mu        sync.Mutex
	streams   map[streamKey]*stream
	bindings  map[Key]*binding
	wildcards map[streamKey][]Listener
	replay    map[streamKey][]replayed
	closed    bool
}

// New creates a correlator. Close releases its streams.
func New(cfg Config, clock adapter.Clock) *Correlator {
	if cfg.ResubscribeInterval <= 0 {
		cfg.ResubscribeInterval = time.Second
	}
	if cfg.ResubscribeMaxInterval <= 0 {
		cfg.ResubscribeMaxInterval = 30 * time.Second
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Correlator{
		cfg:       cfg,
		clock:     clock,
		log:       logger.Named("correlator"),
		ctx:       ctx,
		cancel:    cancel,
		streams:   make(map[streamKey]*stream),
		bindings:  make(map[Key]*binding),
		wildcards: make(map[streamKey][]Listener),
		replay:    make(map[streamKey][]replayed),
	}
}

// Watch attaches the event stream of a contract if it is not attached yet. Callers watch before
// submitting so a confirmation emitted before registration lands in the replay buffer.
func (c *Correlator) Watch(ctx context.Context, src Source, contract string, kind domain.EventKind) error {
	c.attachMu.Lock()
	defer c.attachMu.Unlock()

	sk := newStreamKey(src.Network.Name, contract, kind)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrListenerClosed
	}
	_, attached := c.streams[sk]
	c.mu.Unlock()
	if attached {
		return nil
	}

	sub, err := src.Client.SubscribeEvents(c.ctx, src.Network, sk.contract, kind, c.handler(sk))
	if err != nil {
		if errors.Is(err, domain.ErrEventStreamUnsupported) {
			return err
		}
		return domain.Upstream("subscribe events", err)
	}

	s := &stream{key: sk, source: src, sub: sub}
	c.mu.Lock()
	c.streams[sk] = s
	c.mu.Unlock()

	c.wg.Add(1)
	go c.supervise(s)

	c.log.Info("Attached event stream",
		zap.String("network", sk.network),
		zap.String("contract", sk.contract),
		zap.String("kind", string(kind)))

	return nil
}

// On registers a one-shot listener for the event carrying ref. An empty ref invokes the listener
// immediately with a nil event. A matching event already in the replay buffer is delivered at once.
func (c *Correlator) On(ctx context.Context, src Source, contract string, kind domain.EventKind, ref string, listener Listener) error {
	return c.register(ctx, src, contract, kind, ref, listener, nil)
}

// OnAny registers a listener for the next event of the stream that matches no bound reference.
// All wildcard listeners of a stream are drained together.
func (c *Correlator) OnAny(ctx context.Context, src Source, contract string, kind domain.EventKind, listener Listener) error {
	if err := c.Watch(ctx, src, contract, kind); err != nil {
		return err
	}

	sk := newStreamKey(src.Network.Name, contract, kind)
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return domain.ErrListenerClosed
	}
	c.wildcards[sk] = append(c.wildcards[sk], listener)
	return nil
}

// Await registers a binding and returns a channel that receives exactly one Result and is then closed.
// Expiry delivers domain.ErrCorrelationTimeout and Close delivers domain.ErrListenerClosed.
func (c *Correlator) Await(ctx context.Context, src Source, contract string, kind domain.EventKind, ref string) (<-chan Result, error) {
	ch := make(chan Result, 1)
	var once sync.Once
	send := func(r Result) {
		once.Do(func() {
			ch <- r
			close(ch)
		})
	}

	listener := func(_ context.Context, event *domain.ChainEvent) error {
		send(Result{Event: event})
		return nil
	}
	onExpire := func(err error) {
		send(Result{Err: err})
	}

	if err := c.register(ctx, src, contract, kind, ref, listener, onExpire); err != nil {
		return nil, err
	}
	return ch, nil
}

func (c *Correlator) register(ctx context.Context, src Source, contract string, kind domain.EventKind, ref string, listener Listener, onExpire func(error)) error {
	key := Key{
		Network:  src.Network.Name,
		Contract: domain.NormalizeAddress(contract),
		Kind:     kind,
		Ref:      normalizeRef(ref),
	}

	if key.Ref == "" {
		c.invoke(ctx, key, listener, nil)
		return nil
	}

	if err := c.Watch(ctx, src, contract, kind); err != nil {
		return err
	}

	sk := newStreamKey(key.Network, key.Contract, kind)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return domain.ErrListenerClosed
	}
	if event, ok := c.takeReplayed(sk, key.Ref); ok {
		c.mu.Unlock()
		c.log.Debug("Delivering replayed event", zap.String("ref", key.Ref))
		c.invoke(c.ctx, key, listener, &event)
		return nil
	}
	if _, ok := c.bindings[key]; ok {
		c.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyBound, key.Ref)
	}
	c.bindings[key] = &binding{
		listener:  listener,
		onExpire:  onExpire,
		createdAt: c.clock.Now(),
	}
	c.mu.Unlock()

	return nil
}

// Pending returns the number of bindings waiting for an event
func (c *Correlator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bindings)
}

// Expire drops the bindings older than the listener TTL and returns their keys in a stable order.
// Their listeners never fire.
func (c *Correlator) Expire(ctx context.Context) []Key {
	if c.cfg.ListenerTTL <= 0 {
		return nil
	}

	now := c.clock.Now()
	var keys []Key
	var expired []*binding

	c.mu.Lock()
	for key, b := range c.bindings {
		if now.Sub(b.createdAt) >= c.cfg.ListenerTTL {
			delete(c.bindings, key)
			keys = append(keys, key)
			expired = append(expired, b)
		}
	}
	for sk, events := range c.replay {
		kept := events[:0]
		for _, r := range events {
			if now.Sub(r.receivedAt) < c.cfg.ListenerTTL {
				kept = append(kept, r)
			}
		}
		if len(kept) == 0 {
			delete(c.replay, sk)
		} else {
			c.replay[sk] = kept
		}
	}
	c.mu.Unlock()

	for _, b := range expired {
		if b.onExpire != nil {
			b.onExpire(domain.ErrCorrelationTimeout)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Network != keys[j].Network {
			return keys[i].Network < keys[j].Network
		}
		if keys[i].Contract != keys[j].Contract {
			return keys[i].Contract < keys[j].Contract
		}
		return keys[i].Ref < keys[j].Ref
	})

	if len(keys) > 0 {
		logger.WarnCtx(ctx, "Expired correlator bindings", zap.Int("count", len(keys)), zap.Duration("ttl", c.cfg.ListenerTTL))
	}

	return keys
}

// Close detaches every stream and fails the pending awaits with domain.ErrListenerClosed
func (c *Correlator) Close() {
	c.attachMu.Lock()
	defer c.attachMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	bindings := c.bindings
	c.bindings = make(map[Key]*binding)
	c.wildcards = make(map[streamKey][]Listener)
	c.replay = make(map[streamKey][]replayed)
	c.mu.Unlock()

	c.cancel()
	c.wg.Wait()

	// supervisors have exited, nothing swaps a subscription anymore
	for _, s := range c.streams {
		s.sub.Unsubscribe()
	}

	for _, b := range bindings {
		if b.onExpire != nil {
			b.onExpire(domain.ErrListenerClosed)
		}
	}

	c.log.Info("Correlator closed", zap.Int("dropped_bindings", len(bindings)))
}

// handler returns the stream callback of one stream. It runs on the stream goroutine, so events of
// a stream are dispatched in emission order.
func (c *Correlator) handler(sk streamKey) chain.EventHandler {
	return func(event domain.ChainEvent) {
		c.dispatch(sk, event)
	}
}

func (c *Correlator) dispatch(sk streamKey, event domain.ChainEvent) {
	key := Key{Network: sk.network, Contract: sk.contract, Kind: sk.kind, Ref: normalizeRef(event.SubmissionRef)}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	var listeners []Listener
	if b, ok := c.bindings[key]; ok {
		delete(c.bindings, key)
		listeners = []Listener{b.listener}
	} else if wildcards := c.wildcards[sk]; len(wildcards) > 0 {
		delete(c.wildcards, sk)
		listeners = wildcards
	} else if key.Ref != "" {
		c.remember(sk, event)
	}
	c.mu.Unlock()

	for _, listener := range listeners {
		ev := event
		c.invoke(c.ctx, key, listener, &ev)
	}
}

// invoke runs a listener, isolating its errors and panics from the stream and other bindings
func (c *Correlator) invoke(ctx context.Context, key Key, listener Listener, event *domain.ChainEvent) {
	fields := []zap.Field{
		zap.String("network", key.Network),
		zap.String("contract", key.Contract),
		zap.String("kind", string(key.Kind)),
		zap.String("ref", key.Ref),
	}

	defer func() {
		if r := recover(); r != nil {
			c.log.Error("Listener panicked", append(fields, zap.Any("panic", r))...)
		}
	}()

	if err := listener(ctx, event); err != nil {
		c.log.Error("Listener failed", append(fields, zap.Error(err))...)
	}
}

// remember keeps an unmatched event for a registration that arrives after it. Caller holds mu.
func (c *Correlator) remember(sk streamKey, event domain.ChainEvent) {
	if c.cfg.ReplayBuffer <= 0 {
		return
	}

	events := append(c.replay[sk], replayed{event: event, receivedAt: c.clock.Now()})
	if len(events) > c.cfg.ReplayBuffer {
		events = events[len(events)-c.cfg.ReplayBuffer:]
	}
	c.replay[sk] = events
}

// takeReplayed removes and returns the buffered event carrying ref. Caller holds mu.
func (c *Correlator) takeReplayed(sk streamKey, ref string) (domain.ChainEvent, bool) {
	events := c.replay[sk]
	for i, r := range events {
		if normalizeRef(r.event.SubmissionRef) == ref {
			c.replay[sk] = append(events[:i:i], events[i+1:]...)
			return r.event, true
		}
	}
	return domain.ChainEvent{}, false
}

// supervise re-attaches a stream whenever it fails, until the correlator closes
func (c *Correlator) supervise(s *stream) {
	defer c.wg.Done()

	sub := s.sub
	for {
		select {
		case <-c.ctx.Done():
			return
		case err := <-sub.Err():
			c.log.Warn("Event stream failed, resubscribing",
				zap.String("network", s.key.network),
				zap.String("contract", s.key.contract),
				zap.Error(err))
			sub.Unsubscribe()

			next, err := c.resubscribe(s)
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					c.log.Error("Failed to resubscribe event stream", zap.Error(err))
				}
				return
			}

			c.mu.Lock()
			s.sub = next
			c.mu.Unlock()
			sub = next

			c.log.Info("Event stream resubscribed",
				zap.String("network", s.key.network),
				zap.String("contract", s.key.contract))
		}
	}
}

func (c *Correlator) resubscribe(s *stream) (chain.Subscription, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.cfg.ResubscribeInterval
	b.MaxInterval = c.cfg.ResubscribeMaxInterval
	b.MaxElapsedTime = 0

	var sub chain.Subscription
	operation := func() error {
		var err error
		sub, err = s.source.Client.SubscribeEvents(c.ctx, s.source.Network, s.key.contract, s.key.kind, c.handler(s.key))
		if errors.Is(err, domain.ErrEventStreamUnsupported) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		c.log.Warn("Resubscribe attempt failed", zap.Error(err), zap.Duration("retry_in", wait))
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(b, c.ctx), notify); err != nil {
		return nil, err
	}

	// Close may have run while the last attempt was in flight
	if c.ctx.Err() != nil {
		sub.Unsubscribe()
		return nil, c.ctx.Err()
	}

	return sub, nil
}

func newStreamKey(network string, contract string, kind domain.EventKind) streamKey {
	return streamKey{network: network, contract: domain.NormalizeAddress(contract), kind: kind}
}

func normalizeRef(ref string) string {
	return strings.ToLower(strings.TrimSpace(ref))
}

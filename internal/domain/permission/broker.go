package permission

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/GriffinCanCode/WebOS/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
	"go.uber.org/zap"
)

// DefaultChannels are registered on every broker
var DefaultChannels = []types.ChannelInfo{
	{Channel: types.ChannelStorage, Description: "Read and write files in browser storage"},
	{Channel: types.ChannelNetwork, Description: "Make network requests to external services"},
	{Channel: types.ChannelClipboard, Description: "Read from and write to the clipboard"},
}

// Listener receives a snapshot after every queue or decision change
type Listener func(types.PermissionSnapshot)

// Option configures a Broker
type Option func(*Broker)

// WithLogger sets the broker logger
func WithLogger(logger *zap.Logger) Option {
	return func(b *Broker) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithMetrics records prompts and decisions on the given collector
func WithMetrics(metrics *monitoring.Metrics) Option {
	return func(b *Broker) {
		b.metrics = metrics
	}
}

type channelState struct {
	description string
	decision    types.Decision
}

type pendingPrompt struct {
	prompt  types.Prompt
	waiters map[*Ticket]struct{}
}

// Broker owns the per-channel decisions and the prompt queue
type Broker struct {
	logger  *zap.Logger
	metrics *monitoring.Metrics

	mu        sync.Mutex
	channels  map[types.Channel]*channelState
	order     []types.Channel
	queue     []*pendingPrompt
	byChannel map[types.Channel]*pendingPrompt

	notifyMu     sync.Mutex
	listeners    map[int]Listener
	nextListener int
}

// NewBroker creates a broker with the default channels registered
func NewBroker(opts ...Option) *Broker {
	b := &Broker{
		logger:    zap.NewNop(),
		channels:  make(map[types.Channel]*channelState),
		byChannel: make(map[types.Channel]*pendingPrompt),
		listeners: make(map[int]Listener),
	}
	for _, opt := range opts {
		opt(b)
	}
	for _, ch := range DefaultChannels {
		b.registerLocked(ch.Channel, ch.Description)
	}
	return b
}

// RegisterChannel adds a channel or updates its description. An existing
// decision is kept.
func (b *Broker) RegisterChannel(ch types.Channel, description string) {
	b.mu.Lock()
	b.registerLocked(ch, description)
	b.commit()
}

func (b *Broker) registerLocked(ch types.Channel, description string) {
	if state, ok := b.channels[ch]; ok {
		state.description = description
		return
	}
	b.channels[ch] = &channelState{description: description, decision: types.DecisionUnset}
	b.order = append(b.order, ch)
}

// Request asks for access to ch. The ticket settles at once when the
// channel is decided; otherwise it waits on a prompt shared by every
// request for the same channel.
func (b *Broker) Request(ch types.Channel, description string) (*Ticket, error) {
	b.mu.Lock()

	state, ok := b.channels[ch]
	if !ok {
		b.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrUnknownChannel, ch)
	}

	t := newTicket(b, ch)

	if state.decision != types.DecisionUnset {
		t.settle(state.decision == types.DecisionGranted)
		b.mu.Unlock()
		return t, nil
	}

	if pending, ok := b.byChannel[ch]; ok {
		t.promptID = pending.prompt.ID
		pending.waiters[t] = struct{}{}
		b.mu.Unlock()
		return t, nil
	}

	if description == "" {
		description = state.description
	}
	pending := &pendingPrompt{
		prompt: types.Prompt{
			ID:          id.NewPromptID(),
			Channel:     ch,
			Description: description,
			CreatedAt:   time.Now(),
		},
		waiters: map[*Ticket]struct{}{t: {}},
	}
	t.promptID = pending.prompt.ID
	b.queue = append(b.queue, pending)
	b.byChannel[ch] = pending

	b.logger.Info("Permission prompt queued",
		zap.String("prompt_id", pending.prompt.ID.String()),
		zap.String("channel", string(ch)),
		zap.Int("queue_length", len(b.queue)))

	b.commit()
	return t, nil
}

// Ensure waits for a decision on ch. It returns ctx.Err() if the context
// ends first; the request is then withdrawn.
func (b *Broker) Ensure(ctx context.Context, ch types.Channel, description string) (bool, error) {
	t, err := b.Request(ch, description)
	if err != nil {
		return false, err
	}

	granted, err := t.Wait(ctx)
	if err != nil {
		t.Cancel()
		return false, err
	}
	return granted, nil
}

// Require is Ensure that turns a denial into a DeniedError
func (b *Broker) Require(ctx context.Context, ch types.Channel, description string) error {
	granted, err := b.Ensure(ctx, ch, description)
	if err != nil {
		return err
	}
	if !granted {
		return &DeniedError{Channel: ch}
	}
	return nil
}

// Resolve records the user's decision for a pending prompt, settles every
// waiter and caches the decision for the channel.
func (b *Broker) Resolve(pid id.PromptID, decision types.Decision) error {
	if decision != types.DecisionGranted && decision != types.DecisionDenied {
		return fmt.Errorf("%w: %q", ErrInvalidDecision, decision)
	}

	b.mu.Lock()

	idx := slices.IndexFunc(b.queue, func(p *pendingPrompt) bool { return p.prompt.ID == pid })
	if idx < 0 {
		b.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrPromptNotFound, pid)
	}

	pending := b.queue[idx]
	b.queue = slices.Delete(b.queue, idx, idx+1)
	delete(b.byChannel, pending.prompt.Channel)
	b.channels[pending.prompt.Channel].decision = decision

	granted := decision == types.DecisionGranted
	for t := range pending.waiters {
		t.settle(granted)
	}

	b.logger.Info("Permission resolved",
		zap.String("prompt_id", pid.String()),
		zap.String("channel", string(pending.prompt.Channel)),
		zap.String("decision", string(decision)),
		zap.Int("waiters", len(pending.waiters)))
	b.metrics.RecordPermissionDecision(string(pending.prompt.Channel), string(decision))

	b.commit()
	return nil
}

// withdraw removes a ticket from its prompt; the prompt goes away with its
// last waiter.
func (b *Broker) withdraw(t *Ticket) {
	b.mu.Lock()

	pending, ok := b.byChannel[t.channel]
	if !ok || pending.prompt.ID != t.promptID {
		b.mu.Unlock()
		return
	}
	if _, waiting := pending.waiters[t]; !waiting {
		b.mu.Unlock()
		return
	}

	delete(pending.waiters, t)
	if len(pending.waiters) > 0 {
		b.mu.Unlock()
		return
	}

	delete(b.byChannel, t.channel)
	b.queue = slices.DeleteFunc(b.queue, func(p *pendingPrompt) bool { return p == pending })

	b.logger.Debug("Permission prompt withdrawn",
		zap.String("prompt_id", pending.prompt.ID.String()),
		zap.String("channel", string(t.channel)))

	b.commit()
}

// Head returns the prompt the gateway should present
func (b *Broker) Head() (types.Prompt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.queue) == 0 {
		return types.Prompt{}, false
	}
	return b.queue[0].prompt, true
}

// Pending returns every queued prompt, oldest first
func (b *Broker) Pending() []types.Prompt {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.pendingLocked()
}

// Decision returns the cached decision for ch
func (b *Broker) Decision(ch types.Channel) types.Decision {
	b.mu.Lock()
	defer b.mu.Unlock()

	if state, ok := b.channels[ch]; ok {
		return state.decision
	}
	return types.DecisionUnset
}

// Channels lists registered channels in registration order
func (b *Broker) Channels() []types.ChannelInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.channelsLocked()
}

// Snapshot returns the queue and channel decisions together
func (b *Broker) Snapshot() types.PermissionSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snapshotLocked()
}

// Subscribe registers a listener and returns its unsubscribe function
func (b *Broker) Subscribe(fn Listener) func() {
	b.notifyMu.Lock()
	key := b.nextListener
	b.nextListener++
	b.listeners[key] = fn
	b.notifyMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.notifyMu.Lock()
			delete(b.listeners, key)
			b.notifyMu.Unlock()
		})
	}
}

func (b *Broker) pendingLocked() []types.Prompt {
	out := make([]types.Prompt, len(b.queue))
	for i, p := range b.queue {
		out[i] = p.prompt
	}
	return out
}

func (b *Broker) channelsLocked() []types.ChannelInfo {
	out := make([]types.ChannelInfo, len(b.order))
	for i, ch := range b.order {
		state := b.channels[ch]
		out[i] = types.ChannelInfo{Channel: ch, Description: state.description, Decision: state.decision}
	}
	return out
}

func (b *Broker) snapshotLocked() types.PermissionSnapshot {
	return types.PermissionSnapshot{
		Pending:  b.pendingLocked(),
		Channels: b.channelsLocked(),
	}
}

// commit publishes the current state. Must be called with mu held; it
// releases mu before running listeners.
func (b *Broker) commit() {
	snap := b.snapshotLocked()

	b.notifyMu.Lock()
	b.mu.Unlock()
	defer b.notifyMu.Unlock()

	b.metrics.SetPromptsPending(len(snap.Pending))

	for _, fn := range b.listeners {
		fn(snap)
	}
}

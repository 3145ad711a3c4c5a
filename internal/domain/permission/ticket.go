package permission

import (
	"context"
	"sync"

	"github.com/GriffinCanCode/WebOS/internal/shared/id"
	"github.com/GriffinCanCode/WebOS/internal/shared/types"
)

// Ticket is a pending answer to one permission request
type Ticket struct {
	broker   *Broker
	channel  types.Channel
	promptID id.PromptID

	once    sync.Once
	done    chan struct{}
	granted bool
}

func newTicket(b *Broker, ch types.Channel) *Ticket {
	return &Ticket{
		broker:  b,
		channel: ch,
		done:    make(chan struct{}),
	}
}

// Channel returns the requested channel
func (t *Ticket) Channel() types.Channel {
	return t.channel
}

// PromptID returns the prompt the ticket waits on. Empty when the channel
// was already decided.
func (t *Ticket) PromptID() id.PromptID {
	return t.promptID
}

// Done is closed once the decision is known
func (t *Ticket) Done() <-chan struct{} {
	return t.done
}

// Granted reports the decision. Only meaningful after Done is closed.
func (t *Ticket) Granted() bool {
	select {
	case <-t.done:
		return t.granted
	default:
		return false
	}
}

// Wait blocks until the decision or until ctx ends. It does not withdraw
// the request; call Cancel for that.
func (t *Ticket) Wait(ctx context.Context) (bool, error) {
	select {
	case <-t.done:
		return t.granted, nil
	case <-ctx.Done():
		select {
		case <-t.done:
			return t.granted, nil
		default:
			return false, ctx.Err()
		}
	}
}

// Cancel withdraws interest in the decision. A prompt nobody waits on any
// more is removed from the queue.
func (t *Ticket) Cancel() {
	select {
	case <-t.done:
		return
	default:
	}
	t.broker.withdraw(t)
}

func (t *Ticket) settle(granted bool) {
	t.once.Do(func() {
		t.granted = granted
		close(t.done)
	})
}

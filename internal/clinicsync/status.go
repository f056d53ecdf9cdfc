package clinicsync

import "time"

// Status is the sync state shown to the user.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusSyncing Status = "syncing"
	StatusSynced  Status = "synced"
	StatusError   Status = "error"
	StatusOffline Status = "offline"
)

// StatusEvent is one status transition.
type StatusEvent struct {
	Status Status    `json:"status"`
	Error  string    `json:"error,omitempty"`
	At     time.Time `json:"at"`
}

const subscriberBuffer = 8

// Status returns the latest status event.
func (o *Orchestrator) Status() StatusEvent {
	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	return o.status
}

// Subscribe returns a channel receiving every status transition and a
// function to unsubscribe. A subscriber that falls behind loses the oldest
// pending events, never the latest.
func (o *Orchestrator) Subscribe() (<-chan StatusEvent, func()) {
	ch := make(chan StatusEvent, subscriberBuffer)
	o.statusMu.Lock()
	o.subs[ch] = struct{}{}
	ch <- o.status
	o.statusMu.Unlock()

	var closed bool
	return ch, func() {
		o.statusMu.Lock()
		defer o.statusMu.Unlock()
		if closed {
			return
		}
		closed = true
		delete(o.subs, ch)
		close(ch)
	}
}

func (o *Orchestrator) setStatus(s Status, err error) {
	ev := StatusEvent{Status: s, At: o.clock.Now()}
	if err != nil {
		ev.Error = err.Error()
	}

	o.statusMu.Lock()
	defer o.statusMu.Unlock()
	o.status = ev
	o.metrics.setStatus(s)
	for ch := range o.subs {
		select {
		case ch <- ev:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- ev:
			default:
			}
		}
	}
}

package forecast

import "sync"

// Ticket identifies one issued request for a slot.
type Ticket struct {
	Slot string
	Seq  uint64
}

// Tracker enforces last-request-wins per slot: a result may only be
// applied if its ticket is still the newest one issued for that slot.
// Sequence numbers are never reused across slots, so a slot can be
// forgotten once its newest request settles.
type Tracker struct {
	mu     sync.Mutex
	seq    uint64
	latest map[string]uint64
}

func NewTracker() *Tracker {
	return &Tracker{latest: make(map[string]uint64)}
}

func (t *Tracker) Begin(slot string) Ticket {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq++
	t.latest[slot] = t.seq
	return Ticket{Slot: slot, Seq: t.seq}
}

func (t *Tracker) Current(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.latest[ticket.Slot] == ticket.Seq
}

// Done drops the slot if ticket is still its newest request. Stale tickets
// leave the slot alone.
func (t *Tracker) Done(ticket Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest[ticket.Slot] == ticket.Seq {
		delete(t.latest, ticket.Slot)
	}
}

// Pending reports how many slots have a request in flight.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.latest)
}

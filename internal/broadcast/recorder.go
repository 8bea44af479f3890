package broadcast

import "sync"

// Recorder captures published events in commit order. It stands in for the
// websocket hub in tests.
type Recorder struct {
	mu     sync.Mutex
	events []Published
}

type Published struct {
	Topic string
	Event Event
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(topic string, event Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, Published{Topic: topic, Event: event})
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Published {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Published, len(r.events))
	copy(out, r.events)
	return out
}

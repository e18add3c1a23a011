package events

import (
	"sync"

	"github.com/google/uuid"
	"github.com/labstack/gommon/log"

	"meetcal/cmd/internal/utils"
)

type Type string

const (
	TypeCalendarCreated  Type = "calendar.created"
	TypeMeetingBooked    Type = "meeting.booked"
	TypeMeetingCancelled Type = "meeting.cancelled"
)

// Event is the envelope published after every successful mutation, for
// external consumers such as directory indexers. Events are informational
// only; nothing in the request path waits on them.
type Event struct {
	ID         string `json:"id"`
	Type       Type   `json:"type"`
	CalendarID int    `json:"calendar_id"`
	ActorID    int    `json:"actor_id"`
	Year       int    `json:"year,omitempty"`
	Month      int    `json:"month,omitempty"`
	Day        int    `json:"day,omitempty"`
	Start      string `json:"start,omitempty"`
	End        string `json:"end,omitempty"`
	At         int64  `json:"at"`
}

// Bus fans events out to subscriber channels. Publishing never blocks: a
// subscriber that falls behind its buffer loses events, which is acceptable
// for indexing consumers that can re-read the ledger.
type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
}

func NewBus() *Bus {
	return &Bus{}
}

func (b *Bus) Subscribe(buffer int) <-chan Event {
	ch := make(chan Event, buffer)

	b.mu.Lock()
	b.subscribers = append(b.subscribers, ch)
	b.mu.Unlock()

	return ch
}

func (b *Bus) Publish(e Event) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.At == 0 {
		e.At = utils.NowUTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- e:
		default:
			log.Warnf("event bus: dropping %s event %s for a slow subscriber", e.Type, e.ID)
		}
	}
}

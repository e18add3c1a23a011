package events

import (
	"testing"
	"time"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()
	first := bus.Subscribe(4)
	second := bus.Subscribe(4)

	bus.Publish(Event{Type: TypeMeetingBooked, CalendarID: 1, ActorID: 2})

	for name, ch := range map[string]<-chan Event{"first": first, "second": second} {
		select {
		case e := <-ch:
			if e.Type != TypeMeetingBooked || e.CalendarID != 1 {
				t.Errorf("%s subscriber got %+v", name, e)
			}
			if e.ID == "" {
				t.Errorf("%s subscriber: event has no ID", name)
			}
			if e.At == 0 {
				t.Errorf("%s subscriber: event has no timestamp", name)
			}
		case <-time.After(time.Second):
			t.Fatalf("%s subscriber never received the event", name)
		}
	}
}

func TestBusKeepsExplicitIDAndTimestamp(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe(1)

	bus.Publish(Event{ID: "fixed", At: 42, Type: TypeCalendarCreated})

	e := <-ch
	if e.ID != "fixed" || e.At != 42 {
		t.Errorf("bus rewrote envelope fields: %+v", e)
	}
}

func TestBusNeverBlocksOnSlowSubscriber(t *testing.T) {
	bus := NewBus()
	slow := bus.Subscribe(1)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			bus.Publish(Event{Type: TypeMeetingBooked})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked on a full subscriber buffer")
	}

	// The one buffered event is still deliverable.
	select {
	case <-slow:
	default:
		t.Error("expected one buffered event")
	}
}

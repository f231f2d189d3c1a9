package eventbus

import (
	"sync"
	"testing"
	"time"
)

func TestPublishFansOut(t *testing.T) {
	t.Parallel()
	b := New()

	a, unsubA := b.Subscribe(4)
	c, unsubC := b.Subscribe(4)
	defer unsubA()
	defer unsubC()

	b.Publish(Event{Type: TypeTaskStarted, Data: "x"})

	for _, ch := range []<-chan Event{a, c} {
		select {
		case ev := <-ch:
			if ev.Type != TypeTaskStarted {
				t.Fatalf("Type = %s", ev.Type)
			}
			if ev.Time.IsZero() {
				t.Fatal("Time not stamped")
			}
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	t.Parallel()
	b := New()

	ch, unsub := b.Subscribe(2)
	defer unsub()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			b.Publish(Event{Type: TypeTaskFinished})
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on full subscriber")
	}
	if got := len(ch); got != 2 {
		t.Fatalf("buffered events = %d, want 2", got)
	}
}

func TestUnsubscribeIsIdempotentAndSafeUnderPublish(t *testing.T) {
	t.Parallel()
	b := New()

	_, unsub := b.Subscribe(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			b.Publish(Event{Type: TypeRunFinished})
		}
	}()

	unsub()
	unsub()
	wg.Wait()

	// Late subscribers still work after churn.
	ch, unsub2 := b.Subscribe(1)
	defer unsub2()
	b.Publish(Event{Type: TypeRunFinished})
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("event not delivered after resubscribe")
	}
}

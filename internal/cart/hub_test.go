package cart

import (
	"context"
	"sync"
	"testing"

	"go.uber.org/goleak"
)

func TestHubDeliversByTab(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	defer hub.Close()

	a := hub.Subscribe("v1", "a")
	b := hub.Subscribe("v1", "b")
	defer a.Close()
	defer b.Close()

	if err := hub.Publish(context.Background(), Change{Area: "v1", Key: Key, Tab: "a"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if ev := <-a.C(); ev.Kind != EventChanged {
		t.Fatalf("origin tab got %v, want changed", ev.Kind)
	}
	if ev := <-b.C(); ev.Kind != EventStorage {
		t.Fatalf("other tab got %v, want storage", ev.Kind)
	}
}

func TestHubWithoutOriginTabBroadcastsStorage(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	a := hub.Subscribe("v1", "a")
	defer a.Close()

	_ = hub.Publish(context.Background(), Change{Area: "v1", Key: Key})
	if ev := <-a.C(); ev.Kind != EventStorage {
		t.Fatalf("got %v, want storage", ev.Kind)
	}
}

func TestHubDropsWhenSubscriberIsSlow(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe("v1", "slow")
	defer sub.Close()

	for i := 0; i < defaultSubscriberBuffer*3; i++ {
		if err := hub.Publish(context.Background(), Change{Area: "v1", Key: Key}); err != nil {
			t.Fatalf("publish: %v", err)
		}
	}
	if got := len(sub.C()); got != defaultSubscriberBuffer {
		t.Fatalf("buffered %d events, want %d", got, defaultSubscriberBuffer)
	}
}

func TestHubCloseEndsSubscriptions(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := NewHub(nil)
	sub := hub.Subscribe("v1", "a")

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for range sub.C() {
		}
	}()

	hub.Close()
	wg.Wait()
	sub.Close()

	late := hub.Subscribe("v1", "b")
	if _, ok := <-late.C(); ok {
		t.Fatalf("expected closed channel after hub close")
	}
	late.Close()
}

func TestSubscriptionCloseIsIdempotent(t *testing.T) {
	hub := NewHub(nil)
	defer hub.Close()
	sub := hub.Subscribe("v1", "a")
	sub.Close()
	sub.Close()
	if _, ok := <-sub.C(); ok {
		t.Fatalf("expected closed channel")
	}
	_ = hub.Publish(context.Background(), Change{Area: "v1", Key: Key})
}

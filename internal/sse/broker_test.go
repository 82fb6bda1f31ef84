package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: TypeRecordCreated, Data: map[string]string{"path": "requests/a.yaml"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: records.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"path":"requests/a.yaml"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

// drain counts buffered messages by whether they are refresh events.
func drain(ch chan []byte) (records, refreshes int) {
	for {
		select {
		case msg := <-ch:
			if strings.Contains(string(msg), TypeDashboardRefresh) {
				refreshes++
			} else {
				records++
			}
		default:
			return records, refreshes
		}
	}
}

func TestPublishRecordEvent_RefreshThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event triggers a refresh; the second lands inside the window.
	b.PublishRecordEvent("created", "requests/a.yaml")
	b.PublishRecordEvent("updated", "requests/b.yaml")

	time.Sleep(50 * time.Millisecond)
	records, refreshes := drain(ch)
	if records != 2 {
		t.Errorf("record events = %d, want 2", records)
	}
	if refreshes != 1 {
		t.Errorf("refresh events = %d, want 1 (throttled)", refreshes)
	}

	// The throttled change still gets one trailing refresh.
	time.Sleep(600 * time.Millisecond)
	_, refreshes = drain(ch)
	if refreshes != 1 {
		t.Errorf("trailing refresh events = %d, want 1", refreshes)
	}
}

func TestPublishRecordEvent_UnknownOpIgnored(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent("renamed", "x.yaml")
	time.Sleep(50 * time.Millisecond)
	if records, refreshes := drain(ch); records != 0 || refreshes != 0 {
		t.Errorf("got %d record and %d refresh events, want none", records, refreshes)
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client from handler")
	}

	b.Publish(Event{Type: TypeRecordUpdated, Data: map[string]string{"path": "x.yaml"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: records.updated") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Client should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.ClientCount() != 0 {
		t.Errorf("client not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: TypeRecordUpdated, Data: map[string]string{"path": "x.yaml"}})
	b.PublishRecordEvent("updated", "x.yaml")
}

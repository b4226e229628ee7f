package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sunshower1260/VisionAid/internal/entity"
)

type chanQueue struct {
	ch chan string
}

func (q *chanQueue) Enqueue(ctx context.Context, queue string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.ch <- string(data)
	return nil
}

func (q *chanQueue) Dequeue(ctx context.Context, queue string) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case s := <-q.ch:
		return s, nil
	}
}

func notification(t *testing.T) string {
	t.Helper()
	data, err := json.Marshal(entity.NotificationEvent{
		Event:         "volunteer_requested",
		HelpRequestID: 11,
		VolunteerID:   2,
		Email:         "v@example.com",
		Latitude:      10,
		Longitude:     106,
		DistanceKm:    1.1,
	})
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func noBackoff(int) time.Duration { return 0 }

func TestProcess_Delivers(t *testing.T) {
	var got entity.NotificationEvent
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/json" {
			t.Errorf("content type = %q", r.Header.Get("Content-Type"))
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := New(&chanQueue{}, srv.URL, 3)
	if err := w.Process(context.Background(), notification(t)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got.HelpRequestID != 11 || got.VolunteerID != 2 {
		t.Errorf("webhook received %+v", got)
	}
}

func TestProcess_RetriesThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	w := New(&chanQueue{}, srv.URL, 3)
	w.Backoff = noBackoff
	if err := w.Process(context.Background(), notification(t)); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n := atomic.LoadInt32(&calls); n != 3 {
		t.Errorf("calls = %d, want 3", n)
	}
}

func TestProcess_GivesUp(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	w := New(&chanQueue{}, srv.URL, 2)
	w.Backoff = noBackoff
	if err := w.Process(context.Background(), notification(t)); err == nil {
		t.Fatal("expected error after exhausting retries")
	}
	if n := atomic.LoadInt32(&calls); n != 2 {
		t.Errorf("calls = %d, want 2", n)
	}
}

func TestProcess_InvalidPayload(t *testing.T) {
	w := New(&chanQueue{}, "http://127.0.0.1:0", 1)
	if err := w.Process(context.Background(), "not json"); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestProcess_CancelledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	w := New(&chanQueue{}, srv.URL, 5)
	w.Backoff = func(int) time.Duration {
		cancel()
		return time.Hour
	}
	if err := w.Process(ctx, notification(t)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestStart_ConsumesQueue(t *testing.T) {
	var mu sync.Mutex
	received := 0
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		received++
		if received == 2 {
			close(done)
		}
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	q := &chanQueue{ch: make(chan string, 2)}
	q.ch <- notification(t)
	q.ch <- notification(t)

	ctx, cancel := context.WithCancel(context.Background())
	w := New(q, srv.URL, 1)
	stopped := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(stopped)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not deliver both notifications")
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}
}

func TestHandle_RequeuesOnShutdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	q := &chanQueue{ch: make(chan string, 1)}
	ctx, cancel := context.WithCancel(context.Background())
	w := New(q, srv.URL, 5)
	w.Backoff = func(int) time.Duration {
		cancel()
		return time.Hour
	}

	payload := notification(t)
	w.handle(ctx, payload)

	select {
	case got := <-q.ch:
		if got != payload {
			t.Errorf("requeued payload = %s, want %s", got, payload)
		}
	default:
		t.Fatal("interrupted notification was not returned to the queue")
	}
}

func TestHandle_DropsFailedWithoutShutdown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	q := &chanQueue{ch: make(chan string, 1)}
	w := New(q, srv.URL, 1)
	w.handle(context.Background(), notification(t))

	if len(q.ch) != 0 {
		t.Errorf("failed notification must not be requeued, queue len = %d", len(q.ch))
	}
}

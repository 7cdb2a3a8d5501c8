package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func newTestClient(t *testing.T, url string, retries int) *Client {
	t.Helper()
	client := NewClient(Options{
		BaseURL:        url,
		RequestTimeout: 2 * time.Second,
		Retries:        retries,
	})
	client.backoff = time.Millisecond
	return client
}

func TestSendParsesMessageKeyAck(t *testing.T) {
	var gotPath, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("apikey")
		w.Write([]byte(`{"key":{"id":"BAE5A75BF7"},"status":"PENDING"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	ack, err := client.Send(context.Background(), "painel01", "secret", "5511987654321", "hello")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ack.MessageID != "BAE5A75BF7" {
		t.Fatalf("MessageID = %q", ack.MessageID)
	}
	if gotPath != "/message/sendText/painel01" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotKey != "secret" {
		t.Fatalf("apikey header = %q", gotKey)
	}
}

func TestSendRetriesServerErrorsThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status":"SENT"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	ack, err := client.Send(context.Background(), "painel01", "k", "5511987654321", "hi")
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if ack.Status != "SENT" {
		t.Fatalf("Status = %q", ack.Status)
	}
	if got := atomic.LoadInt32(&calls); got != 3 {
		t.Fatalf("gateway called %d times, want 3", got)
	}
}

func TestSendDoesNotRetryClientErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"number not on whatsapp"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)
	_, err := client.Send(context.Background(), "painel01", "k", "123", "hi")
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("err = %v, want *SendError", err)
	}
	if sendErr.Transient() {
		t.Fatal("4xx must be permanent")
	}
	if sendErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("StatusCode = %d", sendErr.StatusCode)
	}
	if got := atomic.LoadInt32(&calls); got != 1 {
		t.Fatalf("gateway called %d times, want 1", got)
	}
}

func TestSendRejectsOKWithErrorPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":"instance disconnected"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 0)
	_, err := client.Send(context.Background(), "painel01", "k", "5511987654321", "hi")
	var sendErr *SendError
	if !errors.As(err, &sendErr) {
		t.Fatalf("err = %v, want *SendError", err)
	}
	if sendErr.Transient() {
		t.Fatal("ack-less 200 must be permanent")
	}
}

func TestSendAbortsHungRequest(t *testing.T) {
	// The server only cancels r.Context() on client disconnect once the
	// request body has been consumed; the handler never reads it, so an
	// extra channel is needed to unblock the handler at teardown or
	// srv.Close() deadlocks.
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-done:
		}
	}))
	defer srv.Close()
	defer close(done)

	client := NewClient(Options{BaseURL: srv.URL, RequestTimeout: 50 * time.Millisecond, Retries: 0})
	start := time.Now()
	_, err := client.Send(context.Background(), "painel01", "k", "5511987654321", "hi")
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("send blocked for %s", elapsed)
	}
}

func TestSendRequiresInstance(t *testing.T) {
	client := newTestClient(t, "http://gateway.invalid", 0)
	if _, err := client.Send(context.Background(), " ", "k", "5511987654321", "hi"); !errors.Is(err, ErrMissingInstance) {
		t.Fatalf("err = %v, want ErrMissingInstance", err)
	}
}

package platform

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ashwinyue/next-fans/internal/errs"
)

func TestSendMessage(t *testing.T) {
	var got OutboundMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acct-1/chats/fan-9/messages" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer creator-token" {
			t.Errorf("unexpected auth %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":{"id":"pm-77","createdAt":"2026-10-15T10:00:00Z"}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "global-key", time.Second)
	sent, err := c.SendMessage(context.Background(), Account{ID: "acct-1", Token: "creator-token"}, "fan-9", &OutboundMessage{
		Text:      "te va a encantar",
		Price:     18,
		MediaURLs: []string{"https://cdn/a.jpg"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if sent.ID != "pm-77" {
		t.Errorf("ID = %s", sent.ID)
	}
	if got.Price != 18 || got.Text != "te va a encantar" || len(got.MediaURLs) != 1 {
		t.Errorf("unexpected body %+v", got)
	}
}

func TestSetTypingUsesGlobalKey(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if auth := r.Header.Get("Authorization"); auth != "Bearer global-key" {
			t.Errorf("unexpected auth %q", auth)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "global-key", 0)
	if err := c.SetTyping(context.Background(), Account{ID: "acct-1"}, "fan-9"); err != nil {
		t.Fatal(err)
	}
}

func TestUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "account disconnected", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	_, err := c.SendMessage(context.Background(), Account{ID: "a"}, "f", &OutboundMessage{Text: "hi"})
	if errs.Code(err) != errs.CodeUpstream {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

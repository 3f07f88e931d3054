package ingesthttp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"DigestEngine/internal/domain"
	"DigestEngine/internal/ingest"
)

func TestFetchDecodesRows(t *testing.T) {
	t.Parallel()

	var gotQuery, gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("date")
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"id":"s1","topicId":"ai","sourceId":"feed-a","tier":"authority",
			 "title":"Model release","summary":"...","relevance":0.8,
			 "createdAt":"2025-11-20T06:00:00Z","durationSeconds":90,"mediaRef":"m/s1.mp3"}
		]`))
	}))
	defer srv.Close()

	day := time.Date(2025, 11, 20, 0, 0, 0, 0, time.UTC)
	segments, err := NewSource(srv.Client()).Fetch(context.Background(), ingest.Request{
		URL:     srv.URL,
		Day:     day,
		Options: map[string]string{"apiKey": "key-123"},
	})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	if gotQuery != "2025-11-20" {
		t.Fatalf("date query: got %q", gotQuery)
	}
	if gotAuth != "Bearer key-123" {
		t.Fatalf("authorization: got %q", gotAuth)
	}
	if len(segments) != 1 {
		t.Fatalf("segments: got %d, want 1", len(segments))
	}
	seg := segments[0]
	if seg.ID != "s1" || seg.Tier != domain.TierAuthority || seg.Relevance != 0.8 {
		t.Fatalf("segment mismatch: %+v", seg)
	}
	if seg.Title != "Model release" || seg.DurationSeconds != 90 {
		t.Fatalf("metadata mismatch: %+v", seg)
	}
}

func TestFetchRejectsNonOKStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewSource(srv.Client()).Fetch(context.Background(), ingest.Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected error on non-200 response")
	}
}

func TestFetchRejectsMalformedBody(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"not":"an array"}`))
	}))
	defer srv.Close()

	_, err := NewSource(srv.Client()).Fetch(context.Background(), ingest.Request{URL: srv.URL})
	if err == nil {
		t.Fatal("expected decode error")
	}
}

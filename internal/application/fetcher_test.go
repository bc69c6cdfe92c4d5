package application

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/cenkalti/backoff/v4"
)

func noWait() backoff.BackOff {
	return backoff.WithMaxRetries(&backoff.ZeroBackOff{}, 3)
}

func TestFetcher_Fetch(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/javascript")
		w.Write([]byte("Auth0.setClient(" + sampleApplication + ");"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "CLIENTID", WithBackOff(noWait))
	app, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}

	if path != "/client/CLIENTID.js" {
		t.Errorf("request path = %q, want /client/CLIENTID.js", path)
	}
	if app.ID != "CLIENTID" || len(app.Connections) != 4 {
		t.Errorf("unexpected application: %+v", app)
	}
}

func TestFetcher_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("Auth0.setClient(" + sampleApplication + ");"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "CLIENTID", WithBackOff(noWait))
	conns, err := f.FetchConnections(context.Background())
	if err != nil {
		t.Fatalf("FetchConnections() error: %v", err)
	}
	if len(conns) != 4 {
		t.Errorf("len(connections) = %d, want 4", len(conns))
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server calls = %d, want 3", got)
	}
}

func TestFetcher_GivesUpOnServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "CLIENTID", WithBackOff(noWait))
	_, err := f.Fetch(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Fetch() error = %v, want ErrFetchFailed", err)
	}
	if got := calls.Load(); got != 4 {
		t.Errorf("server calls = %d, want 4", got)
	}
}

func TestFetcher_ClientErrorsArePermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "unknown", WithBackOff(noWait))
	_, err := f.Fetch(context.Background())
	if !errors.Is(err, ErrFetchFailed) {
		t.Fatalf("Fetch() error = %v, want ErrFetchFailed", err)
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound(%v) = false, want true", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestFetcher_ParseErrorsAreNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte("not jsonp"))
	}))
	defer srv.Close()

	f := NewFetcher(srv.URL, "CLIENTID", WithBackOff(noWait), WithHTTPClient(srv.Client()))
	_, err := f.Fetch(context.Background())
	if !errors.Is(err, ErrInvalidApplication) {
		t.Fatalf("Fetch() error = %v, want ErrInvalidApplication", err)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server calls = %d, want 1", got)
	}
}

func TestFetcher_MaxBodySize(t *testing.T) {
	doc := "Auth0.setClient(" + sampleApplication + ");"

	tests := []struct {
		name    string
		limit   int64
		wantErr bool
	}{
		{"larger limit", int64(len(doc)) + 1, false},
		{"exact fit", int64(len(doc)), false},
		{"one byte over", int64(len(doc)) - 1, true},
		{"far over", 8, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				w.Write([]byte(doc))
			}))
			defer srv.Close()

			f := NewFetcher(srv.URL, "CLIENTID", WithBackOff(noWait), WithHTTPClient(srv.Client()), WithMaxBodySize(tt.limit))
			app, err := f.Fetch(context.Background())
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("Fetch() error = %v", err)
				}
				if app.ID != "CLIENTID" {
					t.Errorf("app.ID = %q, want CLIENTID", app.ID)
				}
				return
			}
			if !errors.Is(err, ErrDocumentTooLarge) || !errors.Is(err, ErrFetchFailed) {
				t.Fatalf("Fetch() error = %v, want ErrDocumentTooLarge wrapped in ErrFetchFailed", err)
			}
			if got := calls.Load(); got != 1 {
				t.Errorf("server calls = %d, want 1", got)
			}
		})
	}
}

func TestFetcher_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher(srv.URL, "CLIENTID", WithBackOff(noWait))
	if _, err := f.Fetch(ctx); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("Fetch() error = %v, want ErrFetchFailed", err)
	}
}

func TestFetcher_URL(t *testing.T) {
	f := NewFetcher("https://cdn.eu.auth0.com/", "abc")
	if got := f.URL(); got != "https://cdn.eu.auth0.com/client/abc.js" {
		t.Errorf("URL() = %q", got)
	}
}

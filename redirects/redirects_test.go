package redirects

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"safeRestServer/httpclient"
)

func setupServer(dead string) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/chain/", func(w http.ResponseWriter, r *http.Request) {
		n, _ := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/chain/"))
		if n <= 0 {
			_, _ = w.Write([]byte("ok"))
			return
		}
		http.Redirect(w, r, fmt.Sprintf("/chain/%d", n-1), http.StatusFound)
	})
	mux.HandleFunc("/final", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/relative", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "final")
		w.WriteHeader(http.StatusMovedPermanently)
	})
	mux.HandleFunc("/loop", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/loop", http.StatusFound)
	})
	mux.HandleFunc("/dead", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, dead, http.StatusFound)
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(500 * time.Millisecond)
		http.Redirect(w, r, "/final", http.StatusFound)
	})
	mux.HandleFunc("/created", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Location", "/final")
		w.WriteHeader(http.StatusCreated)
	})
	return httptest.NewServer(mux)
}

func deadURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	u := srv.URL
	srv.Close()
	return u + "/gone"
}

func newInspector() *Inspector {
	return New(httpclient.New(httpclient.Config{Timeout: 5 * time.Second}), nil)
}

func TestCheck(t *testing.T) {
	srv := setupServer(deadURL())
	defer srv.Close()

	tests := []struct {
		name string
		path string
		want Result
	}{
		{"no redirect", "/final", Result{0, false}},
		{"single", "/chain/1", Result{1, false}},
		{"three is not excessive", "/chain/3", Result{3, false}},
		{"four is excessive", "/chain/4", Result{4, true}},
		{"relative location", "/relative", Result{1, false}},
		{"loop bounded", "/loop", Result{DefaultMaxHops, true}},
		{"long chain bounded", "/chain/25", Result{DefaultMaxHops, true}},
		{"location on non-3xx", "/created", Result{1, false}},
		{"failure mid-chain", "/dead", Result{0, false}},
	}

	in := newInspector()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := in.Check(context.Background(), srv.URL+tt.path)
			if got != tt.want {
				t.Fatalf("Check(%s) = %+v, want %+v", tt.path, got, tt.want)
			}
		})
	}
}

func TestCheckUnreachable(t *testing.T) {
	got := newInspector().Check(context.Background(), deadURL())
	if got != (Result{}) {
		t.Fatalf("expected zero result, got %+v", got)
	}
}

func TestCheckHopTimeout(t *testing.T) {
	srv := setupServer(deadURL())
	defer srv.Close()

	in := newInspector()
	in.HopTimeout = 100 * time.Millisecond

	got := in.Check(context.Background(), srv.URL+"/slow")
	if got != (Result{}) {
		t.Fatalf("expected zero result on timeout, got %+v", got)
	}
}

func TestCheckMaxHops(t *testing.T) {
	srv := setupServer(deadURL())
	defer srv.Close()

	in := newInspector()
	in.MaxHops = 2

	got := in.Check(context.Background(), srv.URL+"/chain/5")
	if got != (Result{2, false}) {
		t.Fatalf("got %+v", got)
	}
}

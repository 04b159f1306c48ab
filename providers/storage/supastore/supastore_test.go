package supastore

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/edlowe/flatsheet/providers/storage"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := New(Config{URL: srv.URL, ServiceKey: "test-key", Bucket: "reports"})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return c, srv
}

func TestNew_Validation(t *testing.T) {
	cases := []Config{
		{ServiceKey: "k", Bucket: "b"},
		{URL: "https://x", Bucket: "b"},
		{URL: "https://x", ServiceKey: "k"},
	}
	for i, cfg := range cases {
		if _, err := New(cfg); err == nil {
			t.Errorf("Case %d: expected validation error, got nil", i)
		}
	}
}

func TestDownload(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("Expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/storage/v1/object/reports/in/file.txt" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Missing bearer auth, got %q", got)
		}
		if got := r.Header.Get("apikey"); got != "test-key" {
			t.Errorf("Missing apikey header, got %q", got)
		}
		_, _ = w.Write([]byte("content"))
	})

	data, err := c.Download(context.Background(), "in/file.txt")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != "content" {
		t.Errorf("Expected content, got %q", data)
	}
}

func TestDownload_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := c.Download(context.Background(), "missing.txt")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestUpload(t *testing.T) {
	var gotBody []byte
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.Header.Get("x-upsert") != "true" {
			t.Error("Expected x-upsert header")
		}
		if r.Header.Get("Content-Type") != "text/csv" {
			t.Errorf("Unexpected content type: %s", r.Header.Get("Content-Type"))
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	err := c.Upload(context.Background(), "out/file.csv", []byte("a,b"), "text/csv")
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if string(gotBody) != "a,b" {
		t.Errorf("Expected body a,b, got %q", gotBody)
	}
}

func TestList(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/storage/v1/object/list/reports" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req["prefix"] != "csv_Output_File" {
			t.Errorf("Unexpected prefix: %v", req["prefix"])
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"name": "a.csv", "metadata": map[string]any{"size": 12}},
			{"name": "b.csv"},
		})
	})

	objs, err := c.List(context.Background(), "csv_Output_File")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(objs))
	}
	if objs[0].Name != "a.csv" || objs[0].Size != 12 {
		t.Errorf("Unexpected first object: %+v", objs[0])
	}
}

func TestRemove(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		var req map[string][]string
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req["prefixes"]) != 2 {
			t.Errorf("Expected 2 prefixes, got %v", req)
		}
		w.WriteHeader(http.StatusOK)
	})

	err := c.Remove(context.Background(), []string{"in/a", "in/b"})
	if err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
}

func TestRemove_EmptyIsNoop(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("No request expected for empty remove")
	})
	if err := c.Remove(context.Background(), nil); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
}

func TestStatusErrorIncludesBodyPreview(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusForbidden)
	})

	err := c.Upload(context.Background(), "out/x.csv", []byte("x"), "")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if got := err.Error(); !strings.Contains(got, "403") || !strings.Contains(got, "quota exceeded") {
		t.Errorf("Error missing detail: %q", got)
	}
}

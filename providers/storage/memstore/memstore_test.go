package memstore

import (
	"context"
	"errors"
	"testing"

	"github.com/edlowe/flatsheet/providers/storage"
)

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := New()

	if err := s.Upload(ctx, "folder/a.txt", []byte("hello"), "text/plain"); err != nil {
		t.Fatalf("Upload failed: %v", err)
	}

	data, err := s.Download(ctx, "folder/a.txt")
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	if string(data) != "hello" {
		t.Errorf("Expected hello, got %q", data)
	}
}

func TestStore_DownloadMissing(t *testing.T) {
	_, err := New().Download(context.Background(), "nope")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListSortedRelativeNames(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Upload(ctx, "in/b.csv", []byte("2"), "")
	_ = s.Upload(ctx, "in/a.csv", []byte("1"), "")
	_ = s.Upload(ctx, "out/c.csv", []byte("3"), "")

	objs, err := s.List(ctx, "in")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(objs) != 2 {
		t.Fatalf("Expected 2 objects, got %d", len(objs))
	}
	if objs[0].Name != "a.csv" || objs[1].Name != "b.csv" {
		t.Errorf("Expected sorted relative names, got %v", objs)
	}
}

func TestStore_Remove(t *testing.T) {
	ctx := context.Background()
	s := New()
	_ = s.Upload(ctx, "in/a", []byte("1"), "")
	_ = s.Upload(ctx, "in/b", []byte("2"), "")

	if err := s.Remove(ctx, []string{"in/a", "in/b", "missing"}); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if s.Len() != 0 {
		t.Errorf("Expected empty store, got %d blobs", s.Len())
	}
}

package archive

import (
	"context"
	"testing"
)

func TestLocalFS_ImplementsBackend(t *testing.T) {
	var _ Backend = (*LocalFS)(nil)
}

func TestLocalFS_PutGet(t *testing.T) {
	fs, err := NewLocalFS(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalFS: %v", err)
	}

	ctx := context.Background()
	data := []byte(`{"run_id":"abc"}`)

	if err := fs.Put(ctx, "runs/2026/abc/result.json", data); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, err := fs.Get(ctx, "runs/2026/abc/result.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocalFS_Exists(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	exists, _ := fs.Exists(ctx, "missing.json")
	if exists {
		t.Error("expected false for missing path")
	}

	fs.Put(ctx, "present.json", []byte("{}"))
	exists, _ = fs.Exists(ctx, "present.json")
	if !exists {
		t.Error("expected true for stored path")
	}
}

func TestLocalFS_ListAndDelete(t *testing.T) {
	fs, _ := NewLocalFS(t.TempDir())
	ctx := context.Background()

	fs.Put(ctx, "runs/2026/a/result.json", []byte("a"))
	fs.Put(ctx, "runs/2026/b/result.json", []byte("b"))
	fs.Put(ctx, "runs/2025/c/result.json", []byte("c"))

	paths, err := fs.List(ctx, "runs/2026")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("List returned %d paths, want 2", len(paths))
	}

	if err := fs.Delete(ctx, "runs/2026/a/result.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	exists, _ := fs.Exists(ctx, "runs/2026/a/result.json")
	if exists {
		t.Error("expected path gone after delete")
	}

	paths, _ = fs.List(ctx, "runs/missing")
	if len(paths) != 0 {
		t.Errorf("expected empty list for missing prefix, got %v", paths)
	}
}

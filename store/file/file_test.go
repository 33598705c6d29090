package file_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"todobreeze/store/file"
	"todobreeze/task"
)

func testBackend(t *testing.T) *file.Backend {
	t.Helper()
	b, err := file.New(file.Config{FilePath: filepath.Join(t.TempDir(), "tasks.json")})
	if err != nil {
		t.Fatalf("failed to create file backend: %v", err)
	}
	return b
}

func TestLoadMissingFile(t *testing.T) {
	b := testBackend(t)
	entries, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if entries != nil {
		t.Errorf("missing file should load as nil, got %v", entries)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	b := testBackend(t)
	if err := os.WriteFile(b.Path(), nil, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	entries, err := b.Load(context.Background())
	if err != nil {
		t.Fatalf("empty file should not error: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("empty file should load as empty collection, got %v", entries)
	}
}

func TestLoadNonArray(t *testing.T) {
	b := testBackend(t)
	if err := os.WriteFile(b.Path(), []byte(`{"not":"an array"}`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := b.Load(context.Background()); err == nil {
		t.Error("non-array content should be a load failure")
	}
}

func TestSaveAndLoad(t *testing.T) {
	b := testBackend(t)
	ctx := context.Background()

	tasks := []task.Task{
		{ID: "t1", Title: "first", Tags: []string{"a"}, Position: 1},
		{ID: "t2", Title: "second", Due: "2024-06-15", Position: 2},
	}
	if err := b.Save(ctx, tasks); err != nil {
		t.Fatalf("save: %v", err)
	}

	entries, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	first, ok := entries[0].(map[string]any)
	if !ok {
		t.Fatalf("entry is %T, want object", entries[0])
	}
	if first["id"] != "t1" || first["title"] != "first" {
		t.Errorf("entry = %v", first)
	}
}

func TestSaveFormatting(t *testing.T) {
	b := testBackend(t)
	if err := b.Save(context.Background(), []task.Task{{ID: "x", Title: "y"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	data, err := os.ReadFile(b.Path())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	content := string(data)
	if !strings.Contains(content, "\n  ") {
		t.Error("output should be pretty-printed with two-space indent")
	}
	if !strings.HasSuffix(content, "\n") {
		t.Error("output should end with a newline")
	}
}

func TestSaveNilWritesEmptyArray(t *testing.T) {
	b := testBackend(t)
	ctx := context.Background()
	if err := b.Save(ctx, nil); err != nil {
		t.Fatalf("save: %v", err)
	}
	entries, err := b.Load(ctx)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if entries == nil || len(entries) != 0 {
		t.Errorf("nil save should persist an empty array, got %v", entries)
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "tasks.json")
	b, err := file.New(file.Config{FilePath: path})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if err := b.Save(context.Background(), []task.Task{{ID: "a", Title: "b"}}); err != nil {
		t.Fatalf("save should create parent directories: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("file not written: %v", err)
	}
}

func TestRelativePathResolved(t *testing.T) {
	b, err := file.New(file.Config{FilePath: "rel/tasks.json"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if !filepath.IsAbs(b.Path()) {
		t.Errorf("relative path not resolved: %q", b.Path())
	}
}

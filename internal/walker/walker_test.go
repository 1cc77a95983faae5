package walker

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"

	"github.com/monishjocata/Vendor-Check/internal/model"
)

func TestFileWalker_Walk(t *testing.T) {
	rootDir, err := os.MkdirTemp("", "walker-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(rootDir)

	files := []string{
		"main.go",
		"main.py",
		"test.js",
		"ignored.txt",
		"app_test.py",
		"sub/sub.py",
		"sub/ignore_dir/file.py",
		"vendor/vendor.py",
		".venv/lib.py",
	}

	for _, f := range files {
		path := filepath.Join(rootDir, f)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte("x = 1"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	tests := []struct {
		name     string
		exts     []string
		excludes []string
		want     []string
	}{
		{
			name:     "Find Py files",
			exts:     []string{"py"},
			excludes: []string{"vendor", "ignore_dir", "*_test.py"},
			want:     []string{"main.py", "sub/sub.py"},
		},
		{
			name:     "Find Go and Py files",
			exts:     []string{"go", ".PY"},
			excludes: []string{"vendor", "ignore_dir"},
			want:     []string{"app_test.py", "main.go", "main.py", "sub/sub.py"},
		},
		{
			name:     "No extension filter",
			excludes: []string{"vendor", "sub"},
			want:     []string{"app_test.py", "ignored.txt", "main.go", "main.py", "test.js"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			walker := NewFileWalker(tt.exts, tt.excludes)

			paths, errs := walker.Walk(context.Background(), rootDir)
			var got []string
			for p := range paths {
				rel, err := filepath.Rel(rootDir, p)
				if err != nil {
					t.Fatalf("Rel error: %v", err)
				}
				got = append(got, filepath.ToSlash(rel))
			}
			for err := range errs {
				t.Errorf("Walk() error = %v", err)
			}

			sort.Strings(got)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("%s: Walk() got %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestFileWalker_SingleFileRoot(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "requirements.txt")
	if err := os.WriteFile(path, []byte("requests==2.19.1"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, _ := NewFileWalker([]string{"py"}, nil).Walk(context.Background(), path)
	var got []string
	for p := range paths {
		got = append(got, p)
	}
	if !reflect.DeepEqual(got, []string{path}) {
		t.Errorf("Walk() got %v, want [%s]", got, path)
	}
}

func TestFileWalker_MissingRoot(t *testing.T) {
	paths, errs := NewFileWalker(nil, nil).Walk(context.Background(), filepath.Join(t.TempDir(), "missing"))
	for range paths {
		t.Error("unexpected path from missing root")
	}
	if err := <-errs; err == nil {
		t.Error("Walk() of missing root reported no error")
	}
}

func TestWorkerPool_Start(t *testing.T) {
	mockProc := func(path string) ([]model.ScanResult, error) {
		return []model.ScanResult{{SnippetID: path, Triggered: []string{}}}, nil
	}

	pool := NewWorkerPool(2, mockProc)
	paths := make(chan string, 5)
	for i := 0; i < 5; i++ {
		paths <- "dummy_path"
	}
	close(paths)

	count := 0
	for res := range pool.Start(context.Background(), paths) {
		if res.Error != nil {
			t.Errorf("WorkerPool error: %v", res.Error)
		}
		if len(res.Results) != 1 {
			t.Errorf("Expected 1 result, got %d", len(res.Results))
		}
		count++
	}

	if count != 5 {
		t.Errorf("Expected 5 results, got %d", count)
	}
}

func TestWorkerPool_ZeroConcurrency(t *testing.T) {
	pool := NewWorkerPool(0, func(string) ([]model.ScanResult, error) { return nil, nil })
	if pool.Concurrency != 1 {
		t.Errorf("Concurrency = %d, want 1", pool.Concurrency)
	}
}

func TestCollect(t *testing.T) {
	boom := errors.New("boom")
	results := make(chan FileResult, 3)
	results <- FileResult{File: "b.py", Results: []model.ScanResult{{SnippetID: "b.py:10"}, {SnippetID: "b.py:2"}}}
	results <- FileResult{File: "bad.py", Error: boom}
	results <- FileResult{File: "a.py", Results: []model.ScanResult{{SnippetID: "a.py"}}}
	close(results)

	got, err := Collect(results)
	if !errors.Is(err, boom) {
		t.Errorf("Collect() error = %v, want wrapping boom", err)
	}
	var ids []string
	for _, r := range got {
		ids = append(ids, r.SnippetID)
	}
	want := []string{"a.py", "b.py:2", "b.py:10"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Collect() order = %v, want %v", ids, want)
	}
}

package compilecache

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func sampleInput() FingerprintInput {
	return FingerprintInput{
		Sources: []SourceFile{
			{RelativePath: "Plugin.swift", Content: []byte("// v1")},
		},
		APIVersion:  "1",
		ToolchainID: "swift-5.9",
	}
}

func TestFingerprint_StableAcrossSourceOrder(t *testing.T) {
	a := FingerprintInput{Sources: []SourceFile{{RelativePath: "a", Content: []byte("1")}, {RelativePath: "b", Content: []byte("2")}}}
	b := FingerprintInput{Sources: []SourceFile{{RelativePath: "b", Content: []byte("2")}, {RelativePath: "a", Content: []byte("1")}}}
	if Fingerprint(a) != Fingerprint(b) {
		t.Errorf("fingerprint should not depend on source slice order")
	}
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	a := sampleInput()
	b := sampleInput()
	b.Sources[0].Content = []byte("// v2")
	if Fingerprint(a) == Fingerprint(b) {
		t.Errorf("fingerprint should change when source content changes")
	}
}

func TestCache_EnsureMissThenHit(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	var started, ended int
	compileCalls := 0
	compile := func(ctx context.Context, target string) error {
		compileCalls++
		return os.WriteFile(target, []byte("#!/bin/sh\n"), 0o755)
	}

	path1, skipped1, err := c.Ensure(context.Background(), sampleInput(), compile,
		func() { started++ },
		func(CompilationResult) { ended++ })
	if err != nil {
		t.Fatalf("Ensure() miss error = %v", err)
	}
	if skipped1 {
		t.Errorf("first Ensure() should be a miss, got skipped=true")
	}
	if started != 1 || ended != 1 {
		t.Errorf("started=%d ended=%d, want 1,1", started, ended)
	}

	path2, skipped2, err := c.Ensure(context.Background(), sampleInput(), compile,
		func() { started++ },
		func(CompilationResult) { ended++ })
	if err != nil {
		t.Fatalf("Ensure() hit error = %v", err)
	}
	if !skipped2 {
		t.Errorf("second Ensure() should be a hit, got skipped=false")
	}
	if path1 != path2 {
		t.Errorf("cache path changed between calls: %q vs %q", path1, path2)
	}
	if compileCalls != 1 {
		t.Errorf("compile invoked %d times, want 1", compileCalls)
	}
	if started != 1 || ended != 1 {
		t.Errorf("after hit: started=%d ended=%d, want unchanged 1,1", started, ended)
	}
}

func TestCache_ConcurrentEnsureCoalesces(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	var compileCalls int32
	compile := func(ctx context.Context, target string) error {
		atomic.AddInt32(&compileCalls, 1)
		time.Sleep(20 * time.Millisecond)
		return os.WriteFile(target, []byte("bin"), 0o755)
	}

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _, err := c.Ensure(context.Background(), sampleInput(), compile, nil, nil)
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: Ensure() error = %v", i, err)
		}
	}
	if got := atomic.LoadInt32(&compileCalls); got != 1 {
		t.Errorf("compile invoked %d times concurrently, want at-most-one-concurrent = 1", got)
	}
}

func TestCache_CompileErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	c := NewCache(dir)

	wantErr := os.ErrPermission
	compile := func(ctx context.Context, target string) error { return wantErr }

	var ended CompilationResult
	_, _, err := c.Ensure(context.Background(), sampleInput(), compile, nil, func(r CompilationResult) { ended = r })
	if err == nil {
		t.Fatalf("Ensure() should propagate compile error")
	}
	if ended.Err != wantErr {
		t.Errorf("ended.Err = %v, want %v", ended.Err, wantErr)
	}

	if _, statErr := os.Stat(filepath.Join(dir, Fingerprint(sampleInput())[:16])); statErr == nil {
		t.Errorf("no artifact should be left behind after a failed compile")
	}
}

// Package compilecache implements the Script Compiler Cache: given plugin
// sources, a declared API version and a toolchain identity, it returns the
// absolute path to a compiled executable, hitting a content-addressed cache
// when the inputs are unchanged. It is grounded on the teacher's
// registry/cache.go (atomic temp-file-then-rename disk cache) and uses
// golang.org/x/sync/singleflight so concurrent requests for the same
// fingerprint coalesce into a single compile (spec §4.C).
package compilecache

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/singleflight"
)

// SourceFile is one plugin source file, identified by its path relative to
// the plugin's root (not its absolute path — the fingerprint must not
// change just because the plugin was checked out somewhere else).
type SourceFile struct {
	RelativePath string
	Content      []byte
}

// FingerprintInput is everything the cache key is derived from: source
// contents, their relative paths, the declared plugin API version, the
// host toolchain identity, and compilation flags (which vary with the
// target sandbox policy, e.g. linker flags).
type FingerprintInput struct {
	Sources     []SourceFile
	APIVersion  string
	ToolchainID string
	Flags       []string
}

// CompilationResult is reported to the delegate when a cache miss causes an
// actual compile.
type CompilationResult struct {
	Duration time.Duration
	Err      error
}

// CompileFunc compiles the plugin and must write the resulting executable
// to targetPath. It is invoked at most once per fingerprint even under
// concurrent callers.
type CompileFunc func(ctx context.Context, targetPath string) error

// Cache is a process-wide, disk-backed compile cache rooted at dir.
type Cache struct {
	dir   string
	group singleflight.Group
}

// NewCache creates a Cache rooted at dir. The directory is created lazily
// on first use.
func NewCache(dir string) *Cache {
	return &Cache{dir: dir}
}

// Ensure returns the absolute path to a compiled executable for input,
// compiling via compile on a cache miss. started is called (on the calling
// goroutine, before compile runs) only on a miss, after this call has won the
// coalescing race; ended is always called on a miss once compile returns,
// with timing and error. On a hit, neither is called and skipped is true.
func (c *Cache) Ensure(ctx context.Context, input FingerprintInput, compile CompileFunc, started func(), ended func(CompilationResult)) (path string, skipped bool, err error) {
	key := Fingerprint(input)
	target := c.pathFor(key)

	type ensureResult struct {
		path    string
		skipped bool
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		if _, statErr := os.Stat(target); statErr == nil {
			return ensureResult{path: target, skipped: true}, nil
		}

		if err := os.MkdirAll(c.dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating compile cache dir: %w", err)
		}

		if started != nil {
			started()
		}

		// Compile to a sibling temp file and rename into place on success,
		// mirroring registry/cache.go's atomic temp-file-then-rename disk
		// cache so a crash mid-compile can never leave os.Stat treating a
		// partial artifact as a hit.
		tmpTarget := target + ".tmp"
		begin := time.Now()
		compileErr := compile(ctx, tmpTarget)
		result := CompilationResult{Duration: time.Since(begin), Err: compileErr}
		if ended != nil {
			ended(result)
		}
		if compileErr != nil {
			os.Remove(tmpTarget)
			return nil, fmt.Errorf("compiling plugin: %w", compileErr)
		}
		if err := os.Rename(tmpTarget, target); err != nil {
			return nil, fmt.Errorf("finalizing compiled plugin: %w", err)
		}

		return ensureResult{path: target, skipped: false}, nil
	})
	if err != nil {
		return "", false, err
	}

	r := v.(ensureResult)
	return r.path, r.skipped, nil
}

// pathFor returns the deterministic cache file path for a fingerprint,
// mirroring registry/cache.go's fileCache.path.
func (c *Cache) pathFor(fingerprint string) string {
	name := fingerprint
	if len(name) > 16 {
		name = name[:16]
	}
	return filepath.Join(c.dir, name)
}

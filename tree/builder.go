// Package tree applies a built transpile configuration to every file of an
// input tree, mirroring relative paths into an output tree. It owns nothing
// beyond per-file delegation and tree shape: caching, atomicity and rollback
// belong to the surrounding build system.
package tree

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/goliatone/go-transpile"
	"github.com/goliatone/go-transpile/transform"
)

// Option configures a Builder.
type Option func(*Builder)

// WithFs sets the filesystem both trees live on. Defaults to the OS
// filesystem; tests hand in an in-memory one.
func WithFs(fs afero.Fs) Option {
	return func(b *Builder) {
		b.fs = fs
	}
}

// WithEngine replaces the transform engine.
func WithEngine(engine *transform.Engine) Option {
	return func(b *Builder) {
		b.engine = engine
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithExtensions replaces the set of file extensions handed to the engine.
// Everything else passes through byte for byte.
func WithExtensions(exts ...string) Option {
	return func(b *Builder) {
		b.exts = make(map[string]bool, len(exts))
		for _, ext := range exts {
			b.exts[ext] = true
		}
	}
}

// Builder drives the transform engine over directory trees.
type Builder struct {
	fs     afero.Fs
	engine *transform.Engine
	logger *slog.Logger
	exts   map[string]bool
}

// NewBuilder constructs a Builder with OS filesystem, builtin engine and .js
// handling.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{}
	for _, opt := range opts {
		if opt != nil {
			opt(b)
		}
	}
	if b.fs == nil {
		b.fs = afero.NewOsFs()
	}
	if b.engine == nil {
		b.engine = transform.New()
	}
	if b.logger == nil {
		b.logger = slog.Default()
	}
	if b.exts == nil {
		b.exts = map[string]bool{".js": true, ".mjs": true}
	}
	return b
}

// Build transforms every file under inDir into outDir, preserving relative
// paths. The first failing file aborts the build; output already written for
// earlier files stays in place.
func (b *Builder) Build(inDir, outDir string, cfg transpile.Config) error {
	buildID := uuid.NewString()
	log := b.logger.With("build", buildID, "in", inDir, "out", outDir)
	log.Info("tree transform starting")

	files := 0
	err := afero.Walk(b.fs, inDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(inDir, path)
		if relErr != nil {
			return relErr
		}
		target := filepath.Join(outDir, rel)
		if info.IsDir() {
			return b.fs.MkdirAll(target, 0o755)
		}
		if err := b.file(rel, path, target, cfg); err != nil {
			return err
		}
		files++
		return nil
	})
	if err != nil {
		log.Error("tree transform failed", "error", err)
		return err
	}
	log.Info("tree transform finished", "files", files)
	return nil
}

func (b *Builder) file(rel, path, target string, cfg transpile.Config) error {
	data, err := afero.ReadFile(b.fs, path)
	if err != nil {
		return fmt.Errorf("tree: read %s: %w", rel, err)
	}

	out := data
	if b.exts[strings.ToLower(filepath.Ext(rel))] {
		transformed, err := b.engine.File(filepath.ToSlash(rel), string(data), cfg)
		if err != nil {
			// Engine errors already carry the file path and cause.
			return err
		}
		out = []byte(transformed)
	}

	if err := b.fs.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("tree: mkdir for %s: %w", rel, err)
	}
	if err := afero.WriteFile(b.fs, target, out, 0o644); err != nil {
		return fmt.Errorf("tree: write %s: %w", rel, err)
	}
	return nil
}

package tree

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/goliatone/go-transpile"
	"github.com/goliatone/go-transpile/transform"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) transpile.Config {
	t.Helper()
	falsev := false
	cfg, err := transpile.BuildConfig(&transpile.Resolved{CompileModules: &falsev}, nil, transpile.Other)
	if err != nil {
		t.Fatalf("BuildConfig: %v", err)
	}
	return cfg
}

func TestBuildMirrorsTree(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/app.js", "let a = () => {};")
	write(t, fs, "src/lib/util.js", "let b = 1;")
	write(t, fs, "src/styles/site.css", "body { color: red }")

	b := NewBuilder(WithFs(fs), WithLogger(quietLogger()))
	if err := b.Build("src", "out", testConfig(t)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := read(t, fs, "out/app.js"); got != "var a = function () {};" {
		t.Fatalf("unexpected transform of app.js: %q", got)
	}
	if got := read(t, fs, "out/lib/util.js"); got != "var b = 1;" {
		t.Fatalf("expected nested path preserved and transformed, got %q", got)
	}
	if got := read(t, fs, "out/styles/site.css"); got != "body { color: red }" {
		t.Fatalf("expected non-script file copied byte for byte, got %q", got)
	}
}

func TestBuildFailsFastWithPath(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/aaa.js", "var ok = 1;")
	write(t, fs, "src/bad.js", "let {")
	write(t, fs, "src/zzz.js", "var also = 2;")

	b := NewBuilder(WithFs(fs), WithLogger(quietLogger()))
	err := b.Build("src", "out", testConfig(t))
	if err == nil {
		t.Fatal("expected the broken file to abort the build")
	}
	var tErr *transform.TransformError
	if !errors.As(err, &tErr) {
		t.Fatalf("expected a TransformError, got %T: %v", err, err)
	}
	if tErr.Path != "bad.js" {
		t.Fatalf("expected the failing relative path attached, got %q", tErr.Path)
	}

	// Files processed before the failure stay in place; later ones are absent.
	if _, err := fs.Stat("out/aaa.js"); err != nil {
		t.Fatalf("expected earlier output kept: %v", err)
	}
	if _, err := fs.Stat("out/zzz.js"); err == nil {
		t.Fatal("expected no output past the failing file")
	}
}

func TestBuildCustomExtensions(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/app.ts", "let a = () => {};")
	write(t, fs, "src/app.js", "let b = () => {};")

	b := NewBuilder(WithFs(fs), WithLogger(quietLogger()), WithExtensions(".ts"))
	if err := b.Build("src", "out", testConfig(t)); err != nil {
		t.Fatalf("Build: %v", err)
	}

	if got := read(t, fs, "out/app.ts"); strings.Contains(got, "=>") {
		t.Fatalf("expected .ts handled with custom extensions, got %q", got)
	}
	if got := read(t, fs, "out/app.js"); got != "let b = () => {};" {
		t.Fatalf("expected .js copied untouched with custom extensions, got %q", got)
	}
}

func TestBuildCustomEngine(t *testing.T) {
	fs := afero.NewMemMapFs()
	write(t, fs, "src/app.js", "import { TRACE } from '@acme/env';\nif (TRACE) { work(); }\n")

	engine := transform.New(transform.WithRecognized(transform.Recognized{
		EnvModule:   "@acme/env",
		FlagName:    "TRACE",
		DebugModule: "@acme/debug",
		MacroName:   "check",
		RuntimeName: "runtimeCheck",
	}))
	cfg := transpile.Config{Plugins: transpile.DebugPlugins(transpile.Development, false)}

	b := NewBuilder(WithFs(fs), WithEngine(engine), WithLogger(quietLogger()))
	if err := b.Build("src", "out", cfg); err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got := read(t, fs, "out/app.js"); got != "\nif (true) { work(); }\n" {
		t.Fatalf("expected the custom flag inlined, got %q", got)
	}
}

func TestBuildMissingInputDir(t *testing.T) {
	fs := afero.NewMemMapFs()
	b := NewBuilder(WithFs(fs), WithLogger(quietLogger()))
	if err := b.Build("nope", "out", testConfig(t)); err == nil {
		t.Fatal("expected an error for a missing input tree")
	}
}

func write(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := afero.WriteFile(fs, path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func read(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

// Package transform applies a built transpile configuration to individual
// source files. Rewrites are computed as splices at exact parse-tree node
// offsets, so untouched code survives byte for byte and downstream dead-branch
// elimination can rely on inlined literals being syntactic constants.
package transform

import (
	"fmt"
	"log/slog"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/parser"

	"github.com/goliatone/go-transpile"
)

// maxPasses bounds the per-plugin fixpoint loop. Nested constructs shrink
// every pass, so hitting the bound means a plugin keeps producing edits for
// its own output.
const maxPasses = 64

// Recognized names the modules and identifiers the debug plugins rewrite.
type Recognized struct {
	EnvModule   string
	FlagName    string
	DebugModule string
	MacroName   string
	RuntimeName string
}

func defaultRecognized() Recognized {
	return Recognized{
		EnvModule:   "@runtime/env",
		FlagName:    "DEBUG",
		DebugModule: "@runtime/debug",
		MacroName:   "assert",
		RuntimeName: "runtimeAssert",
	}
}

// Context is the view one plugin pass gets of the file being transformed.
type Context struct {
	// File is the tree-relative path of the source.
	File string
	// Source is the current text; all edit offsets reference it.
	Source string
	// Program is the parse tree of Source with module declarations blanked.
	// Node offsets are valid against Source.
	Program *ast.Program
	// Modules describes the blanked module declarations.
	Modules *ModuleInfo
	// Options carries the per-plugin options from the configuration.
	Options map[string]any
	// Recognized carries the engine's debug identifier configuration.
	Recognized Recognized
}

// Option configures an Engine.
type Option func(*Engine)

// WithRecognized overrides the recognized debug modules and identifiers.
func WithRecognized(r Recognized) Option {
	return func(e *Engine) {
		e.recognized = r
	}
}

// WithRegistry replaces the builtin plugin set. The registry is cloned.
func WithRegistry(registry *Registry) Option {
	return func(e *Engine) {
		if registry == nil {
			return
		}
		e.registry = registry.Clone()
	}
}

// WithLogger attaches a structured logger. Absent a logger the engine stays
// silent.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine applies plugin sequences to single files.
type Engine struct {
	registry   *Registry
	recognized Recognized
	logger     *slog.Logger
}

// New constructs an engine with the builtin plugins registered.
func New(opts ...Option) *Engine {
	e := &Engine{recognized: defaultRecognized()}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	if e.registry == nil {
		e.registry = builtinRegistry()
	}
	return e
}

// Registry exposes the engine's plugin registry, mainly so hosts can register
// additional transforms before building trees.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// File applies the configuration's plugin sequence to one source file and
// returns the transformed text. A file no plugin touches comes back
// byte-identical. The first failing plugin aborts with the file path and
// cause attached.
func (e *Engine) File(path, source string, cfg transpile.Config) (string, error) {
	src := source
	for _, plugin := range cfg.AllPlugins() {
		fn, ok := e.registry.Lookup(plugin.Name)
		if !ok {
			// Unknown identifiers were requirement-decided conservatively;
			// execution-side resolution is the host's concern.
			if e.logger != nil {
				e.logger.Debug("plugin not registered, skipping", "plugin", plugin.Name, "file", path)
			}
			continue
		}
		next, err := e.runPlugin(path, src, plugin, fn)
		if err != nil {
			return "", err
		}
		src = next
	}
	return src, nil
}

func (e *Engine) runPlugin(path, src string, plugin transpile.Plugin, fn PluginFunc) (string, error) {
	for pass := 0; pass < maxPasses; pass++ {
		mods, parseCopy, err := scanModules(src)
		if err != nil {
			return "", wrapTransformError(path, plugin.Name, err)
		}
		program, err := parser.ParseFile(nil, path, parseCopy, 0)
		if err != nil {
			return "", wrapTransformError(path, plugin.Name, err)
		}
		ctx := &Context{
			File:       path,
			Source:     src,
			Program:    program,
			Modules:    mods,
			Options:    plugin.Options,
			Recognized: e.recognized,
		}
		edits, err := fn(ctx)
		if err != nil {
			return "", wrapTransformError(path, plugin.Name, err)
		}
		edits = outermost(edits)
		if len(edits) == 0 {
			return src, nil
		}
		src, err = applyEdits(src, edits)
		if err != nil {
			return "", wrapTransformError(path, plugin.Name, err)
		}
	}
	return "", wrapTransformError(path, plugin.Name, fmt.Errorf("no fixpoint after %d passes", maxPasses))
}

func builtinRegistry() *Registry {
	r := NewRegistry()
	// Registration of the builtin set cannot collide.
	_ = r.Register(transpile.PluginDebugFlagInline, debugFlagInline)
	_ = r.Register(transpile.PluginDebugMacroLower, debugMacroLower)
	_ = r.Register(transpile.PluginModuleRewrite, moduleRewrite)
	_ = r.Register("transform-es2015-arrow-functions", lowerArrowFunctions)
	_ = r.Register("transform-es2015-block-scoping", lowerBlockScoping)
	_ = r.Register("transform-es2015-template-literals", lowerTemplateLiterals)
	return r
}

package transpile

import (
	"sort"

	"github.com/goliatone/go-transpile/internal/hydrate"
)

// Namespace keys recognized inside a Layer.
const (
	NamespaceCurrent = "transpile"
	NamespaceLegacy  = "babel"

	// legacyCompileModulesKey is the superseded top-level form of
	// transpile.compileModules.
	legacyCompileModulesKey = "compileModules"
)

// Namespace is the typed shape both option namespaces share. Pointer fields
// distinguish "absent" from an explicit zero value.
type Namespace struct {
	IncludePolyfill      *bool    `json:"includePolyfill"`
	CompileModules       *bool    `json:"compileModules"`
	Plugins              []Plugin `json:"plugins"`
	PostTransformPlugins []Plugin `json:"postTransformPlugins"`
	DisableDebugTooling  *bool    `json:"disableDebugTooling"`
	SourceMaps           *string  `json:"sourceMaps"`
	Compact              *bool    `json:"compact"`
	FilenameHint         *string  `json:"filenameHint"`
}

// Resolved is the single normalized options value produced by merging the
// recognized namespaces of one layer. It never aliases structures owned by
// the input layer.
type Resolved struct {
	// IncludePolyfill defaults to false when no form declared it.
	IncludePolyfill bool

	// CompileModules is nil unless some form set it explicitly; the default
	// is version-gated and decided by ShouldCompileModules.
	CompileModules *bool

	// Plugins are the user-declared plugins, current-namespace entries first,
	// legacy-namespace entries appended after them.
	Plugins []Plugin

	// PostTransformPlugins run after every other plugin, same namespace
	// ordering as Plugins.
	PostTransformPlugins []Plugin

	// DisableDebugTooling opts out of every debug rewrite rule.
	DisableDebugTooling bool

	SourceMaps   string
	Compact      *bool
	FilenameHint string

	// Trace records which namespace supplied each effective key.
	Trace Trace
}

// MergeOption configures a single Merge call.
type MergeOption func(*mergeConfig)

type mergeConfig struct {
	log  *DeprecationLog
	sink DeprecationSink
}

// WithDeprecationLog replaces the process-wide deprecation log, including its
// once-per-key guard. Intended for tests and embedders that scope notice
// emission themselves.
func WithDeprecationLog(log *DeprecationLog) MergeOption {
	return func(cfg *mergeConfig) {
		cfg.log = log
	}
}

// WithDeprecationSink redirects notices to sink while keeping the shared
// once-per-key guard.
func WithDeprecationSink(sink DeprecationSink) MergeOption {
	return func(cfg *mergeConfig) {
		cfg.sink = sink
	}
}

func applyMergeOptions(opts []MergeOption) mergeConfig {
	cfg := mergeConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.log == nil {
		cfg.log = defaultDeprecations
	}
	return cfg
}

var namespaceDecoder = hydrate.NewDecoder[Namespace](hydrate.WithUseNumber[Namespace]())

// Merge reads the current and legacy namespaces from layer and produces one
// normalized Resolved value. Current-namespace keys win on conflict; legacy
// keys fill gaps. Deprecated forms emit at most one notice per process per
// key. The input layer and its nested structures are never mutated or
// aliased.
func Merge(layer Layer, opts ...MergeOption) (*Resolved, error) {
	cfg := applyMergeOptions(opts)
	if layer == nil {
		layer = Layer{}
	}

	current := subMap(layer, NamespaceCurrent)
	legacy := subMap(layer, NamespaceLegacy)

	if len(legacy) > 0 {
		cfg.emit(Deprecation{
			Key:     NamespaceLegacy,
			Message: "the " + NamespaceLegacy + " options namespace is deprecated, use " + NamespaceCurrent,
		})
	}
	if _, ok := legacy["includePolyfill"]; ok {
		cfg.emit(Deprecation{
			Key:     NamespaceLegacy + ".includePolyfill",
			Message: "use " + NamespaceCurrent + ".includePolyfill",
		})
	}
	if _, ok := layer[legacyCompileModulesKey]; ok {
		cfg.emit(Deprecation{
			Key:     legacyCompileModulesKey,
			Message: "use " + NamespaceCurrent + ".compileModules",
		})
	}

	merged, trace := mergeNamespaces(current, legacy)

	// The superseded top-level compileModules participates as the weakest
	// layer of its namespaced form.
	if raw, ok := layer[legacyCompileModulesKey]; ok {
		if _, defined := merged[legacyCompileModulesKey]; !defined {
			merged[legacyCompileModulesKey] = cloneAny(raw)
			trace = append(trace, Provenance{
				Key:       legacyCompileModulesKey,
				Namespace: "root",
				Value:     cloneAny(raw),
			})
		}
	}

	ns, err := namespaceDecoder.Decode(hydrate.Context{Namespace: NamespaceCurrent}, merged)
	if err != nil {
		return nil, wrapConfigError("merge", "", err)
	}

	// Current-namespace plugin lists come first; legacy lists append after.
	curNS, err := decodeNamespace(current, NamespaceCurrent)
	if err != nil {
		return nil, err
	}
	legNS, err := decodeNamespace(legacy, NamespaceLegacy)
	if err != nil {
		return nil, err
	}
	ns.Plugins = append(append([]Plugin(nil), curNS.Plugins...), legNS.Plugins...)
	ns.PostTransformPlugins = append(append([]Plugin(nil), curNS.PostTransformPlugins...), legNS.PostTransformPlugins...)

	resolved := &Resolved{
		CompileModules:       ns.CompileModules,
		Plugins:              clonePlugins(ns.Plugins),
		PostTransformPlugins: clonePlugins(ns.PostTransformPlugins),
		Compact:              ns.Compact,
		Trace:                Trace{Entries: trace},
	}
	if ns.IncludePolyfill != nil {
		resolved.IncludePolyfill = *ns.IncludePolyfill
	}
	if ns.DisableDebugTooling != nil {
		resolved.DisableDebugTooling = *ns.DisableDebugTooling
	}
	if ns.SourceMaps != nil {
		resolved.SourceMaps = *ns.SourceMaps
	}
	if ns.FilenameHint != nil {
		resolved.FilenameHint = *ns.FilenameHint
	}
	return resolved, nil
}

func (cfg mergeConfig) emit(d Deprecation) {
	if cfg.sink != nil {
		cfg.log.EmitTo(cfg.sink, d)
		return
	}
	cfg.log.Emit(d)
}

func decodeNamespace(payload map[string]any, name string) (Namespace, error) {
	if len(payload) == 0 {
		return Namespace{}, nil
	}
	ns, err := namespaceDecoder.Decode(hydrate.Context{Namespace: name}, payload)
	if err != nil {
		return Namespace{}, wrapConfigError("merge", name, err)
	}
	return ns, nil
}

// mergeNamespaces overlays current onto legacy key by key, cloning every
// value so the result never shares structure with either input.
func mergeNamespaces(current, legacy map[string]any) (map[string]any, []Provenance) {
	merged := make(map[string]any, len(current)+len(legacy))
	for key, value := range legacy {
		merged[key] = cloneAny(value)
	}
	for key, value := range current {
		merged[key] = cloneAny(value)
	}

	keys := make([]string, 0, len(merged))
	for key := range merged {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	trace := make([]Provenance, 0, len(keys))
	for _, key := range keys {
		namespace := NamespaceLegacy
		if _, ok := current[key]; ok {
			namespace = NamespaceCurrent
		}
		trace = append(trace, Provenance{
			Key:       key,
			Namespace: namespace,
			Value:     cloneAny(merged[key]),
		})
	}
	return merged, trace
}

func clonePlugins(plugins []Plugin) []Plugin {
	if plugins == nil {
		return nil
	}
	out := make([]Plugin, len(plugins))
	for i, p := range plugins {
		out[i] = Plugin{Name: p.Name, Options: cloneMap(p.Options)}
	}
	return out
}

func subMap(layer Layer, key string) map[string]any {
	if raw, ok := layer[key]; ok {
		if m, ok := raw.(map[string]any); ok {
			return m
		}
	}
	return nil
}

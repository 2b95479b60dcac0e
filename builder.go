package transpile

import (
	"path"
	"sort"
	"strings"

	"github.com/goliatone/go-transpile/compat"
)

// moduleCompileHostThreshold is the host toolchain version below which module
// rewriting defaults off. The prerelease suffix keeps matching dev builds of
// the threshold release on the compiling side.
const moduleCompileHostThreshold = "2.12.0-alpha.1"

// Config is the final, self-contained transform configuration. It forwards a
// fixed allow-list of resolved options and nothing else, so unrelated
// configuration noise can never reach the transform engine.
type Config struct {
	// DisableConfigDiscovery is always true: the resolved configuration is
	// authoritative and builds must not depend on ambient config files.
	DisableConfigDiscovery bool

	// Plugins is the ordered main sequence: user plugins, debug plugins,
	// auto-selected compatibility plugins, module-syntax plugin.
	Plugins []Plugin

	// PostTransform plugins run strictly after everything in Plugins. They
	// are kept out of Plugins so mid-build consumers of the current plugin
	// list never observe them.
	PostTransform []Plugin

	SourceMaps   string
	Compact      *bool
	FilenameHint string
}

// AllPlugins returns the complete execution order: Plugins then
// PostTransform.
func (c Config) AllPlugins() []Plugin {
	out := make([]Plugin, 0, len(c.Plugins)+len(c.PostTransform))
	out = append(out, c.Plugins...)
	out = append(out, c.PostTransform...)
	return out
}

// BuildOption configures a BuildConfig call.
type BuildOption func(*buildConfig)

type buildConfig struct {
	table          *compat.Table
	comparator     VersionComparator
	moduleResolver ModuleResolver
}

// WithCompatTable replaces the default compatibility table.
func WithCompatTable(table *compat.Table) BuildOption {
	return func(cfg *buildConfig) {
		cfg.table = table
	}
}

// WithVersionComparator injects the host toolchain version comparator used to
// gate module compilation.
func WithVersionComparator(cmp VersionComparator) BuildOption {
	return func(cfg *buildConfig) {
		cfg.comparator = cmp
	}
}

// WithModuleResolver sets the module-source-resolution strategy handed to the
// module-syntax plugin.
func WithModuleResolver(resolver ModuleResolver) BuildOption {
	return func(cfg *buildConfig) {
		cfg.moduleResolver = resolver
	}
}

func applyBuildOptions(opts []BuildOption) buildConfig {
	cfg := buildConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.table == nil {
		cfg.table = compat.DefaultTable()
	}
	if cfg.moduleResolver == nil {
		cfg.moduleResolver = DefaultModuleResolver
	}
	return cfg
}

// ShouldCompileModules decides module-syntax rewriting. An explicit
// compileModules setting is authoritative. Otherwise rewriting defaults on,
// unless the host toolchain's version is known (a comparator was supplied)
// and is not past the fixed threshold. Comparator failures propagate: we will
// not guess the host version and risk emitting the wrong module syntax.
func ShouldCompileModules(resolved *Resolved, cmp VersionComparator) (bool, error) {
	if resolved != nil && resolved.CompileModules != nil {
		return *resolved.CompileModules, nil
	}
	if cmp == nil {
		return true, nil
	}
	ok, err := cmp.GreaterThan(moduleCompileHostThreshold)
	if err != nil {
		return false, wrapConfigError("compile-modules", "", err)
	}
	return ok, nil
}

// BuildConfig composes the resolved options, target constraints and build
// environment into the final transform configuration. The plugin order is an
// invariant: user plugins, then debug plugins, then auto-selected
// compatibility plugins, then the module-syntax plugin, with user-declared
// post-transform plugins kept strictly last.
func BuildConfig(resolved *Resolved, targets compat.TargetList, env Environment, opts ...BuildOption) (Config, error) {
	cfg := applyBuildOptions(opts)
	if resolved == nil {
		resolved = &Resolved{}
	}

	plugins := clonePlugins(resolved.Plugins)
	plugins = append(plugins, DebugPlugins(env, resolved.DisableDebugTooling)...)

	ids := cfg.table.PluginIDs()
	sort.Strings(ids)
	for _, id := range ids {
		if cfg.table.Requires(id, targets) {
			plugins = append(plugins, Plugin{Name: id})
		}
	}

	compileModules, err := ShouldCompileModules(resolved, cfg.comparator)
	if err != nil {
		return Config{}, err
	}
	if compileModules {
		plugins = append(plugins, Plugin{
			Name:    PluginModuleRewrite,
			Options: map[string]any{"resolver": cfg.moduleResolver},
		})
	}

	return Config{
		DisableConfigDiscovery: true,
		Plugins:                plugins,
		PostTransform:          clonePlugins(resolved.PostTransformPlugins),
		SourceMaps:             resolved.SourceMaps,
		Compact:                resolved.Compact,
		FilenameHint:           resolved.FilenameHint,
	}, nil
}

// DefaultModuleResolver normalizes relative specifiers against the importing
// file and leaves bare specifiers untouched.
func DefaultModuleResolver(specifier, fromFile string) string {
	if !strings.HasPrefix(specifier, "./") && !strings.HasPrefix(specifier, "../") {
		return specifier
	}
	return path.Join(path.Dir(fromFile), specifier)
}

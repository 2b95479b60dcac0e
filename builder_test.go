package transpile

import (
	"errors"
	"reflect"
	"sort"
	"strings"
	"testing"

	"github.com/goliatone/go-transpile/compat"
)

func TestBuildConfigPluginOrder(t *testing.T) {
	resolved := &Resolved{
		Plugins:              []Plugin{{Name: "user-a"}, {Name: "user-b"}},
		PostTransformPlugins: []Plugin{{Name: "post-a"}},
	}

	// Unspecified targets force every compatibility plugin in.
	cfg, err := BuildConfig(resolved, nil, Development)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	if !cfg.DisableConfigDiscovery {
		t.Error("expected config discovery to be disabled")
	}

	compatIDs := compat.DefaultTable().PluginIDs()
	want := []string{"user-a", "user-b", PluginDebugFlagInline, PluginDebugMacroLower}
	want = append(want, sorted(compatIDs)...)
	want = append(want, PluginModuleRewrite)

	if got := pluginNames(cfg.Plugins); !reflect.DeepEqual(got, want) {
		t.Fatalf("plugin order mismatch:\nwant: %v\n got: %v", want, got)
	}
	if got := pluginNames(cfg.PostTransform); !reflect.DeepEqual(got, []string{"post-a"}) {
		t.Fatalf("expected post-transform plugins kept apart, got %v", got)
	}

	all := pluginNames(cfg.AllPlugins())
	if all[len(all)-1] != "post-a" {
		t.Fatalf("expected post-transform plugin to run last, got %v", all)
	}
}

func TestBuildConfigMidBuildPluginListExcludesPostTransform(t *testing.T) {
	resolved := &Resolved{PostTransformPlugins: []Plugin{{Name: "post-a"}}}
	cfg, err := BuildConfig(resolved, nil, Other)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	for _, p := range cfg.Plugins {
		if p.Name == "post-a" {
			t.Fatal("post-transform plugin leaked into the main plugin list")
		}
	}
}

func TestBuildConfigModernTargetsSkipCompatPlugins(t *testing.T) {
	targets := compat.TargetList{{Engine: "chrome", Version: "120"}}
	cfg, err := BuildConfig(&Resolved{}, targets, Other)
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}
	for _, p := range cfg.Plugins {
		if strings.HasPrefix(p.Name, "transform-es2015-") {
			t.Fatalf("expected no compatibility plugins for modern targets, got %v", pluginNames(cfg.Plugins))
		}
	}
}

func TestBuildConfigComparatorErrorPropagates(t *testing.T) {
	boom := errors.New("unparseable host version")
	cmp := VersionComparatorFunc(func(string) (bool, error) {
		return false, boom
	})

	_, err := BuildConfig(&Resolved{}, nil, Other, WithVersionComparator(cmp))
	if err == nil {
		t.Fatal("expected comparator failure to surface")
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped comparator error, got %v", err)
	}
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected a ConfigError, got %T", err)
	}
}

func TestShouldCompileModules(t *testing.T) {
	truev, falsev := true, false
	older := VersionComparatorFunc(func(string) (bool, error) { return false, nil })
	newer := VersionComparatorFunc(func(string) (bool, error) { return true, nil })

	cases := []struct {
		name     string
		resolved *Resolved
		cmp      VersionComparator
		want     bool
	}{
		{"explicit true wins over old host", &Resolved{CompileModules: &truev}, older, true},
		{"explicit false wins over new host", &Resolved{CompileModules: &falsev}, newer, false},
		{"unknown host defaults on", &Resolved{}, nil, true},
		{"nil resolved defaults on", nil, nil, true},
		{"old host defaults off", &Resolved{}, older, false},
		{"new host defaults on", &Resolved{}, newer, true},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := ShouldCompileModules(tc.resolved, tc.cmp)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("want %v, got %v", tc.want, got)
			}
		})
	}
}

func TestBuildConfigModuleRewriteCarriesResolver(t *testing.T) {
	var calls []string
	resolver := ModuleResolver(func(specifier, fromFile string) string {
		calls = append(calls, specifier)
		return specifier
	})

	cfg, err := BuildConfig(&Resolved{}, nil, Other, WithModuleResolver(resolver))
	if err != nil {
		t.Fatalf("unexpected build error: %v", err)
	}

	last := cfg.Plugins[len(cfg.Plugins)-1]
	if last.Name != PluginModuleRewrite {
		t.Fatalf("expected module-rewrite plugin last, got %q", last.Name)
	}
	fn, ok := last.Options["resolver"].(ModuleResolver)
	if !ok {
		t.Fatalf("expected resolver option of type ModuleResolver, got %T", last.Options["resolver"])
	}
	fn("./x", "a/b.js")
	if !reflect.DeepEqual(calls, []string{"./x"}) {
		t.Fatalf("expected the injected resolver to be invoked, got %v", calls)
	}
}

func TestDefaultModuleResolver(t *testing.T) {
	cases := []struct {
		specifier string
		fromFile  string
		want      string
	}{
		{"./util", "app/main.js", "app/util"},
		{"../lib/x", "app/sub/main.js", "app/lib/x"},
		{"lodash", "app/main.js", "lodash"},
		{"@scope/pkg", "app/main.js", "@scope/pkg"},
	}
	for _, tc := range cases {
		if got := DefaultModuleResolver(tc.specifier, tc.fromFile); got != tc.want {
			t.Errorf("DefaultModuleResolver(%q, %q) = %q, want %q", tc.specifier, tc.fromFile, got, tc.want)
		}
	}
}

func TestDebugPlugins(t *testing.T) {
	cases := []struct {
		name     string
		env      Environment
		disabled bool
		want     []string
		flag     bool
	}{
		{"development inlines true", Development, false, []string{PluginDebugFlagInline, PluginDebugMacroLower}, true},
		{"production inlines false", Production, false, []string{PluginDebugFlagInline, PluginDebugMacroLower}, false},
		{"other environment disables both", Other, false, nil, false},
		{"explicit opt-out disables both", Development, true, nil, false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got := DebugPlugins(tc.env, tc.disabled)
			names := pluginNames(got)
			if len(tc.want) == 0 {
				if len(got) != 0 {
					t.Fatalf("expected no debug plugins, got %v", names)
				}
				return
			}
			if !reflect.DeepEqual(names, tc.want) {
				t.Fatalf("want %v, got %v", tc.want, names)
			}
			for _, p := range got {
				if v, ok := p.Options["value"].(bool); !ok || v != tc.flag {
					t.Fatalf("expected %s to carry value=%v, got %v", p.Name, tc.flag, p.Options)
				}
			}
		})
	}
}

func TestEnvironmentFromString(t *testing.T) {
	cases := map[string]Environment{
		"development": Development,
		"dev":         Development,
		"production":  Production,
		"prod":        Production,
		"test":        Other,
		"":            Other,
	}
	for raw, want := range cases {
		if got := EnvironmentFromString(raw); got != want {
			t.Errorf("EnvironmentFromString(%q) = %q, want %q", raw, got, want)
		}
	}
}

func sorted(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}

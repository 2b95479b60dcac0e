package compat

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"sort"
	"testing"
)

func TestRequiresFromFixture(t *testing.T) {
	fx := loadCompatFixture(t, "requires_cases.json")
	table := NewTable(fx.Rows)

	for _, tc := range fx.Cases {
		tc := tc
		t.Run(tc.Name, func(t *testing.T) {
			var targets TargetList
			if tc.Targets != nil {
				targets = append(TargetList{}, tc.Targets...)
			}
			if got := table.Requires(tc.Plugin, targets); got != tc.Want {
				t.Fatalf("Requires(%q, %v) = %v, want %v", tc.Plugin, targets, got, tc.Want)
			}
		})
	}
}

func TestRequiresUnspecifiedSentinel(t *testing.T) {
	table := DefaultTable()
	for _, id := range table.PluginIDs() {
		if !table.Requires(id, nil) {
			t.Errorf("expected %q required when targets are unspecified", id)
		}
	}

	// A declared-but-empty list is the opposite of the sentinel.
	for _, id := range table.PluginIDs() {
		if table.Requires(id, TargetList{}) {
			t.Errorf("expected %q not required for a declared empty target list", id)
		}
	}
}

func TestRequiresUnknownPlugin(t *testing.T) {
	table := DefaultTable()
	targets := TargetList{{Engine: "chrome", Version: "120"}}
	if !table.Requires("transform-not-in-table", targets) {
		t.Fatal("expected an unknown plugin to be required")
	}
}

func TestRequiresEngineMissingFromRow(t *testing.T) {
	table := NewTable(map[string]Row{
		"p": {MinVersions: map[string]string{"chrome": "50"}},
	})
	targets := TargetList{{Engine: "netscape", Version: "4"}}
	if !table.Requires("p", targets) {
		t.Fatal("expected an engine absent from the row to force the plugin in")
	}
}

func TestRequiresMalformedVersionIsRequired(t *testing.T) {
	table := NewTable(map[string]Row{
		"p": {MinVersions: map[string]string{"chrome": "50"}},
	})
	targets := TargetList{{Engine: "chrome", Version: "not-a-version"}}
	if !table.Requires("p", targets) {
		t.Fatal("expected a malformed target version to force the plugin in")
	}
}

func TestRequiresWhenPredicate(t *testing.T) {
	table := NewTable(map[string]Row{
		"p": {
			MinVersions: map[string]string{"chrome": "1", "ie": "1"},
			When:        `any(targets, {.engine == "ie"})`,
		},
	})

	if !table.Requires("p", TargetList{{Engine: "ie", Version: "11"}}) {
		t.Fatal("expected the predicate to force the plugin in for ie targets")
	}
	if table.Requires("p", TargetList{{Engine: "chrome", Version: "50"}}) {
		t.Fatal("expected the plugin skipped when versions pass and the predicate is false")
	}
}

func TestRequiresBrokenPredicateFailsSafe(t *testing.T) {
	table := NewTable(map[string]Row{
		"p": {
			MinVersions: map[string]string{"chrome": "1"},
			When:        "this is not an expression ((",
		},
	})
	if !table.Requires("p", TargetList{{Engine: "chrome", Version: "50"}}) {
		t.Fatal("expected an uncompilable predicate to count as required")
	}
}

func TestWhenPredicateUsesProgramCache(t *testing.T) {
	cache := NewMemoryProgramCache()
	table := NewTable(map[string]Row{
		"p": {
			MinVersions: map[string]string{"chrome": "1"},
			When:        `len(targets) > 1`,
		},
	}, WithProgramCache(cache))

	targets := TargetList{{Engine: "chrome", Version: "50"}}
	table.Requires("p", targets)
	if _, ok := cache.Get(`len(targets) > 1`); !ok {
		t.Fatal("expected the compiled predicate to be cached")
	}
	if table.Requires("p", targets) {
		t.Fatal("expected a cached predicate to evaluate the same way")
	}
}

func TestNewTableCopiesRows(t *testing.T) {
	rows := map[string]Row{
		"p": {MinVersions: map[string]string{"chrome": "50"}},
	}
	table := NewTable(rows)

	rows["p"].MinVersions["chrome"] = "999"
	if table.Requires("p", TargetList{{Engine: "chrome", Version: "60"}}) {
		t.Fatal("expected the table to hold its own copy of the rows")
	}

	row, ok := table.Row("p")
	if !ok {
		t.Fatal("expected row to exist")
	}
	row.MinVersions["chrome"] = "999"
	if table.Requires("p", TargetList{{Engine: "chrome", Version: "60"}}) {
		t.Fatal("expected Row to return a detached copy")
	}
}

func TestLoadTableRoundTrip(t *testing.T) {
	table := NewTable(map[string]Row{
		"a": {MinVersions: map[string]string{"chrome": "40", "node": "4"}},
		"b": {MinVersions: map[string]string{"chrome": "50"}, When: `len(targets) == 0`},
	})

	var buf bytes.Buffer
	if err := table.EncodeTo(&buf); err != nil {
		t.Fatalf("EncodeTo: %v", err)
	}
	back, err := LoadTable(&buf)
	if err != nil {
		t.Fatalf("LoadTable: %v", err)
	}

	want := sortedIDs(table)
	got := sortedIDs(back)
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("plugin ids changed across round trip: want %v, got %v", want, got)
	}
	for _, id := range want {
		a, _ := table.Row(id)
		b, _ := back.Row(id)
		if !reflect.DeepEqual(a, b) {
			t.Errorf("row %q changed across round trip:\nwant %+v\n got %+v", id, a, b)
		}
	}
}

func TestLoadTableRejectsMalformedPayload(t *testing.T) {
	if _, err := LoadTable(bytes.NewReader([]byte(`{"p": []}`))); err == nil {
		t.Fatal("expected decode error for a malformed table document")
	}
}

func sortedIDs(t *Table) []string {
	ids := t.PluginIDs()
	sort.Strings(ids)
	return ids
}

type compatFixture struct {
	Description string              `json:"description"`
	Rows        map[string]Row      `json:"rows"`
	Cases       []compatFixtureCase `json:"cases"`
}

type compatFixtureCase struct {
	Name    string   `json:"name"`
	Plugin  string   `json:"plugin"`
	Targets []Target `json:"targets"`
	Want    bool     `json:"want"`
}

func loadCompatFixture(t *testing.T, name string) compatFixture {
	t.Helper()
	path := filepath.Join("testdata", name)
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read compat fixture %q: %v", name, err)
	}
	var fx compatFixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		t.Fatalf("failed to unmarshal compat fixture %q: %v", name, err)
	}
	return fx
}

// Package compat decides whether optional transform plugins are required for
// a stated set of target runtimes. The decision procedure is table-driven:
// the table is pure data and can be replaced or extended without touching the
// decision logic.
package compat

import (
	goversion "github.com/hashicorp/go-version"
)

// Target identifies a runtime engine and the minimum version it must support.
type Target struct {
	Engine  string `json:"engine"`
	Version string `json:"version"`
}

// TargetList is the declared set of target runtimes. A nil list is the
// "unspecified" sentinel: the system cannot prove any feature safe to skip,
// so every optional plugin is required.
type TargetList []Target

// Unspecified reports whether no targets were declared at all. An empty but
// declared list is not the sentinel; it means every feature is supported.
func (t TargetList) Unspecified() bool {
	return t == nil
}

// Row maps one plugin to the minimum engine versions that support the
// corresponding language feature natively. An engine missing from MinVersions
// never supports the feature. When carries an optional predicate expression
// consulted in addition to the version thresholds; see Table.Requires.
type Row struct {
	MinVersions map[string]string `json:"minVersions"`
	When        string            `json:"when,omitempty"`
}

// TableOption configures a Table.
type TableOption func(*Table)

// WithProgramCache memoizes compiled When predicates across Requires calls.
func WithProgramCache(cache ProgramCache) TableOption {
	return func(t *Table) {
		t.cache = cache
	}
}

// Table holds the compatibility rows keyed by plugin identifier.
type Table struct {
	rows  map[string]Row
	cache ProgramCache
}

// NewTable constructs a table from rows. The map is copied.
func NewTable(rows map[string]Row, opts ...TableOption) *Table {
	t := &Table{rows: make(map[string]Row, len(rows))}
	for id, row := range rows {
		t.rows[id] = cloneRow(row)
	}
	for _, opt := range opts {
		if opt != nil {
			opt(t)
		}
	}
	if t.cache == nil {
		t.cache = NewMemoryProgramCache()
	}
	return t
}

// Requires reports whether the plugin's transform is necessary for targets.
//
// The unspecified sentinel and unknown plugin identifiers both yield true:
// inclusion is the safe direction, since omitting a plugin may only ever
// shrink output, never change behavior. Otherwise the plugin is required iff
// at least one target fails the row's minimum version (or the row's When
// predicate asks for it).
func (t *Table) Requires(pluginID string, targets TargetList) bool {
	if targets.Unspecified() {
		return true
	}
	row, ok := t.rows[pluginID]
	if !ok {
		return true
	}
	for _, target := range targets {
		if !meetsMinimum(row.MinVersions, target) {
			return true
		}
	}
	if row.When != "" {
		return t.evalWhen(row.When, targets)
	}
	return false
}

// PluginIDs returns the identifiers present in the table, in no particular
// order.
func (t *Table) PluginIDs() []string {
	ids := make([]string, 0, len(t.rows))
	for id := range t.rows {
		ids = append(ids, id)
	}
	return ids
}

// Row returns the row registered for pluginID.
func (t *Table) Row(pluginID string) (Row, bool) {
	row, ok := t.rows[pluginID]
	if !ok {
		return Row{}, false
	}
	return cloneRow(row), true
}

func meetsMinimum(minVersions map[string]string, target Target) bool {
	raw, ok := minVersions[target.Engine]
	if !ok {
		return false
	}
	min, err := goversion.NewVersion(raw)
	if err != nil {
		return false
	}
	have, err := goversion.NewVersion(target.Version)
	if err != nil {
		return false
	}
	return have.GreaterThanOrEqual(min)
}

func cloneRow(row Row) Row {
	clone := Row{When: row.When}
	if row.MinVersions != nil {
		clone.MinVersions = make(map[string]string, len(row.MinVersions))
		for engine, v := range row.MinVersions {
			clone.MinVersions[engine] = v
		}
	}
	return clone
}

// DefaultTable ships rows for the ES2015 transform set. The data mirrors the
// earliest engine releases with native support; anything older (or any engine
// missing from a row) needs the transform.
func DefaultTable(opts ...TableOption) *Table {
	return NewTable(map[string]Row{
		"transform-es2015-arrow-functions": {
			MinVersions: map[string]string{
				"chrome": "47", "firefox": "45", "safari": "10", "edge": "13", "node": "6", "opera": "34",
			},
		},
		"transform-es2015-block-scoping": {
			MinVersions: map[string]string{
				"chrome": "49", "firefox": "51", "safari": "10", "edge": "14", "node": "6", "opera": "36",
			},
		},
		"transform-es2015-classes": {
			MinVersions: map[string]string{
				"chrome": "46", "firefox": "45", "safari": "10", "edge": "13", "node": "5", "opera": "33",
			},
		},
		"transform-es2015-template-literals": {
			MinVersions: map[string]string{
				"chrome": "41", "firefox": "34", "safari": "9", "edge": "13", "node": "4", "opera": "28",
			},
		},
		"transform-es2015-destructuring": {
			MinVersions: map[string]string{
				"chrome": "51", "firefox": "53", "safari": "10", "edge": "15", "node": "6.5", "opera": "38",
			},
		},
		"transform-es2015-shorthand-properties": {
			MinVersions: map[string]string{
				"chrome": "43", "firefox": "33", "safari": "9", "edge": "12", "node": "4", "opera": "30",
			},
		},
		"transform-es2015-computed-properties": {
			MinVersions: map[string]string{
				"chrome": "44", "firefox": "34", "safari": "7.1", "edge": "12", "node": "4", "opera": "31",
			},
		},
		"transform-es2015-parameters": {
			MinVersions: map[string]string{
				"chrome": "49", "firefox": "53", "safari": "10", "edge": "14", "node": "6", "opera": "36",
			},
		},
		"transform-es2015-spread": {
			MinVersions: map[string]string{
				"chrome": "46", "firefox": "36", "safari": "10", "edge": "13", "node": "5", "opera": "33",
			},
		},
	}, opts...)
}

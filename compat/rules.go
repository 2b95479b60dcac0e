package compat

import (
	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// evalWhen evaluates a row's predicate expression against the target
// bindings. The expression sees:
//
//	targets: list of {engine, version} maps
//
// and must yield a boolean. Any compile or runtime failure counts as
// "required": the table cannot vouch for the feature's safety, so inclusion
// is the safe answer.
func (t *Table) evalWhen(expression string, targets TargetList) bool {
	program, err := t.loadOrCompile(expression)
	if err != nil {
		return true
	}

	bindings := make([]map[string]any, len(targets))
	for i, target := range targets {
		bindings[i] = map[string]any{
			"engine":  target.Engine,
			"version": target.Version,
		}
	}

	out, err := expr.Run(program, map[string]any{"targets": bindings})
	if err != nil {
		return true
	}
	required, ok := out.(bool)
	if !ok {
		return true
	}
	return required
}

func (t *Table) loadOrCompile(expression string) (*vm.Program, error) {
	if t.cache != nil {
		if cached, ok := t.cache.Get(expression); ok {
			if program, ok := cached.(*vm.Program); ok {
				return program, nil
			}
		}
	}
	program, err := expr.Compile(expression, expr.AsBool())
	if err != nil {
		return nil, err
	}
	if t.cache != nil {
		t.cache.Set(expression, program)
	}
	return program, nil
}

package transform

import (
	"fmt"

	"github.com/dop251/goja/ast"
)

// debugFlagInline replaces references to the recognized debug-environment
// flag with the literal boolean carried in the plugin options, then drops the
// import that bound it. Substitution happens at identifier nodes, never by
// text search, so the inlined literal is guaranteed to be a syntactic boolean
// constant. Shadowing of the imported binding is not tracked.
func debugFlagInline(ctx *Context) ([]Edit, error) {
	value, err := flagLiteral(ctx.Options)
	if err != nil {
		return nil, err
	}
	locals := importedLocals(ctx.Modules, ctx.Recognized.EnvModule, ctx.Recognized.FlagName)
	if len(locals) == 0 {
		return nil, nil
	}

	var edits []Edit
	walk(ctx.Program, func(n ast.Node) bool {
		switch node := n.(type) {
		case *ast.Identifier:
			if locals[node.Name.String()] {
				start, end := nodeSpan(node)
				edits = append(edits, Edit{Start: start, End: end, Text: value})
			}
		case *ast.PropertyShort:
			// { DEBUG } carries both key and reference; expand the shorthand.
			if node.Initializer == nil && locals[node.Name.Name.String()] {
				start, end := nodeSpan(node)
				edits = append(edits, Edit{Start: start, End: end, Text: node.Name.Name.String() + ": " + value})
				return false
			}
		}
		return true
	})

	// The flag import has no runtime counterpart; remove declarations that
	// bound nothing else.
	for _, im := range ctx.Modules.Imports {
		if im.Source != ctx.Recognized.EnvModule || im.Bare {
			continue
		}
		onlyFlags := true
		for _, b := range im.Bindings {
			if b.Imported != ctx.Recognized.FlagName {
				onlyFlags = false
				break
			}
		}
		if onlyFlags {
			edits = append(edits, Edit{Start: im.Start, End: im.End, Text: ""})
		}
	}
	return edits, nil
}

// debugMacroLower rewrites calls to the recognized assertion macro into a
// conjunction of the inlined flag and the always-available runtime function,
// preserving argument order and count exactly. The macro's import specifier
// is repointed at the runtime function so module rewriting still binds it.
func debugMacroLower(ctx *Context) ([]Edit, error) {
	value, err := flagLiteral(ctx.Options)
	if err != nil {
		return nil, err
	}
	locals := importedLocals(ctx.Modules, ctx.Recognized.DebugModule, ctx.Recognized.MacroName)
	if len(locals) == 0 {
		return nil, nil
	}

	var edits []Edit
	walk(ctx.Program, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpression)
		if !ok {
			return true
		}
		callee, ok := call.Callee.(*ast.Identifier)
		if !ok || !locals[callee.Name.String()] {
			return true
		}
		start, end := nodeSpan(call)
		args := sliceRange(ctx.Source, off(call.LeftParenthesis)+1, off(call.RightParenthesis))
		text := "(" + value + " && " + ctx.Recognized.RuntimeName + "(" + args + "))"
		edits = append(edits, Edit{Start: start, End: end, Text: text})
		return true
	})

	for _, im := range ctx.Modules.Imports {
		if im.Source != ctx.Recognized.DebugModule {
			continue
		}
		for _, b := range im.Bindings {
			if b.Imported == ctx.Recognized.MacroName {
				edits = append(edits, Edit{Start: b.Start, End: b.End, Text: ctx.Recognized.RuntimeName})
			}
		}
	}
	return edits, nil
}

func flagLiteral(options map[string]any) (string, error) {
	raw, ok := options["value"]
	if !ok {
		return "", fmt.Errorf("debug plugin missing value option")
	}
	value, ok := raw.(bool)
	if !ok {
		return "", fmt.Errorf("debug plugin value option must be a bool, got %T", raw)
	}
	if value {
		return "true", nil
	}
	return "false", nil
}

// importedLocals collects the local names module bound to the named export.
func importedLocals(mods *ModuleInfo, module, exported string) map[string]bool {
	if mods == nil {
		return nil
	}
	locals := make(map[string]bool)
	for _, im := range mods.Imports {
		if im.Source != module {
			continue
		}
		for _, b := range im.Bindings {
			if b.Imported == exported {
				locals[b.Local] = true
			}
		}
	}
	if len(locals) == 0 {
		return nil
	}
	return locals
}

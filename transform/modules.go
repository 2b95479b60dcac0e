package transform

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-transpile"
)

// moduleRewrite lowers import/export declarations into the host's runtime
// module format: require calls and exports assignments. Every specifier runs
// through the configured resolver before it reaches the output.
func moduleRewrite(ctx *Context) ([]Edit, error) {
	if !ctx.Modules.HasModuleSyntax() {
		return nil, nil
	}
	resolve := resolverFromOptions(ctx.Options)

	var edits []Edit
	for i, im := range ctx.Modules.Imports {
		resolved := resolve(im.Source, ctx.File)
		edits = append(edits, Edit{Start: im.Start, End: im.End, Text: rewriteImport(im, i, resolved)})
	}

	var tail strings.Builder
	for i, ex := range ctx.Modules.Exports {
		switch ex.Kind {
		case ExportDefault:
			edits = append(edits, Edit{Start: ex.Start, End: ex.End, Text: `exports["default"] =`})
		case ExportDeclaration:
			// Drop the keyword, let the declaration execute, then publish.
			edits = append(edits, Edit{Start: ex.Start, End: ex.End, Text: ""})
			for _, name := range ex.Names {
				fmt.Fprintf(&tail, "exports[%q] = %s;\n", name.Exported, name.Local)
			}
		case ExportNamed:
			var b strings.Builder
			for _, name := range ex.Names {
				fmt.Fprintf(&b, "exports[%q] = %s; ", name.Exported, name.Local)
			}
			edits = append(edits, Edit{Start: ex.Start, End: ex.End, Text: strings.TrimSpace(b.String())})
		case ExportReExport:
			resolved := resolve(ex.Source, ctx.File)
			tmp := fmt.Sprintf("__reexport%d", i)
			var b strings.Builder
			fmt.Fprintf(&b, "var %s = require(%q); ", tmp, resolved)
			for _, name := range ex.Names {
				fmt.Fprintf(&b, "exports[%q] = %s[%q]; ", name.Exported, tmp, name.Local)
			}
			edits = append(edits, Edit{Start: ex.Start, End: ex.End, Text: strings.TrimSpace(b.String())})
		case ExportReExportAll:
			resolved := resolve(ex.Source, ctx.File)
			tmp := fmt.Sprintf("__reexport%d", i)
			var b strings.Builder
			fmt.Fprintf(&b, "var %s = require(%q); ", tmp, resolved)
			if len(ex.Names) == 1 && ex.Names[0].Local == "*" {
				fmt.Fprintf(&b, "exports[%q] = %s;", ex.Names[0].Exported, tmp)
			} else {
				key := fmt.Sprintf("__key%d", i)
				fmt.Fprintf(&b, "for (var %s in %s) { exports[%s] = %s[%s]; }", key, tmp, key, tmp, key)
			}
			edits = append(edits, Edit{Start: ex.Start, End: ex.End, Text: strings.TrimSpace(b.String())})
		}
	}

	if tail.Len() > 0 {
		edits = append(edits, Edit{Start: len(ctx.Source), End: len(ctx.Source), Text: "\n" + tail.String()})
	}
	return edits, nil
}

func rewriteImport(im ImportDecl, index int, resolved string) string {
	if im.Bare {
		return fmt.Sprintf("require(%q);", resolved)
	}
	tmp := fmt.Sprintf("__import%d", index)
	var b strings.Builder
	fmt.Fprintf(&b, "var %s = require(%q);", tmp, resolved)
	for _, binding := range im.Bindings {
		switch binding.Imported {
		case "*":
			fmt.Fprintf(&b, " var %s = %s;", binding.Local, tmp)
		case "default":
			fmt.Fprintf(&b, " var %s = %s[\"default\"] !== undefined ? %s[\"default\"] : %s;", binding.Local, tmp, tmp, tmp)
		default:
			fmt.Fprintf(&b, " var %s = %s[%q];", binding.Local, tmp, binding.Imported)
		}
	}
	return b.String()
}

func resolverFromOptions(options map[string]any) transpile.ModuleResolver {
	switch resolver := options["resolver"].(type) {
	case transpile.ModuleResolver:
		return resolver
	case func(specifier, fromFile string) string:
		return resolver
	default:
		return func(specifier, _ string) string { return specifier }
	}
}

package transform

import (
	"strconv"
	"strings"

	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/token"
)

// lowerArrowFunctions rewrites arrow literals into equivalent function
// expressions. Lexical this/arguments capture is not reproduced; sources
// relying on it keep their semantics only when the arrow does not touch
// either. Async arrows are left alone.
func lowerArrowFunctions(ctx *Context) ([]Edit, error) {
	var edits []Edit
	walk(ctx.Program, func(n ast.Node) bool {
		arrow, ok := n.(*ast.ArrowFunctionLiteral)
		if !ok {
			return true
		}
		if arrow.Async {
			return true
		}
		start, end := nodeSpan(arrow)
		edits = append(edits, Edit{Start: start, End: end, Text: rewriteArrow(ctx.Source, arrow)})
		return true
	})
	return edits, nil
}

func rewriteArrow(src string, arrow *ast.ArrowFunctionLiteral) string {
	var params []string
	if arrow.ParameterList != nil {
		for _, binding := range arrow.ParameterList.List {
			s, e := nodeSpan(binding.Target)
			text := sliceRange(src, s, e)
			if binding.Initializer != nil {
				_, ie := nodeSpan(binding.Initializer)
				text = sliceRange(src, s, ie)
			}
			params = append(params, text)
		}
		if rest := arrow.ParameterList.Rest; rest != nil {
			s, e := nodeSpan(rest)
			params = append(params, "..."+sliceRange(src, s, e))
		}
	}

	var body string
	switch b := arrow.Body.(type) {
	case *ast.BlockStatement:
		s, e := nodeSpan(b)
		body = sliceRange(src, s, e)
	case *ast.ExpressionBody:
		s, e := nodeSpan(b.Expression)
		body = "{ return " + sliceRange(src, s, e) + "; }"
	default:
		s, e := nodeSpan(arrow.Body)
		body = "{ return " + sliceRange(src, s, e) + "; }"
	}

	return "function (" + strings.Join(params, ", ") + ") " + body
}

// lowerBlockScoping replaces let and const declarations with var. Temporal
// dead zone and per-iteration binding semantics are dropped, matching the
// coarse lowering downstream consumers expect from this transform.
func lowerBlockScoping(ctx *Context) ([]Edit, error) {
	var edits []Edit
	walk(ctx.Program, func(n ast.Node) bool {
		switch decl := n.(type) {
		case *ast.LexicalDeclaration:
			length := len("let")
			if decl.Token == token.CONST {
				length = len("const")
			}
			start := off(decl.Idx)
			edits = append(edits, Edit{Start: start, End: start + length, Text: "var"})
		case *ast.ForDeclaration:
			length := len("let")
			if decl.IsConst {
				length = len("const")
			}
			start := off(decl.Idx)
			edits = append(edits, Edit{Start: start, End: start + length, Text: "var"})
		}
		return true
	})
	return edits, nil
}

// lowerTemplateLiterals rewrites untagged template literals into string
// concatenation over the cooked segments. Tagged templates pass through.
func lowerTemplateLiterals(ctx *Context) ([]Edit, error) {
	var edits []Edit
	walk(ctx.Program, func(n ast.Node) bool {
		tpl, ok := n.(*ast.TemplateLiteral)
		if !ok || tpl.Tag != nil {
			return true
		}
		start, end := nodeSpan(tpl)
		edits = append(edits, Edit{Start: start, End: end, Text: rewriteTemplate(ctx.Source, tpl)})
		return true
	})
	return edits, nil
}

func rewriteTemplate(src string, tpl *ast.TemplateLiteral) string {
	if len(tpl.Elements) == 0 {
		return `""`
	}
	var b strings.Builder
	for i, element := range tpl.Elements {
		if i > 0 {
			b.WriteString(" + ")
		}
		b.WriteString(strconv.Quote(element.Parsed.String()))
		if i < len(tpl.Expressions) {
			s, e := nodeSpan(tpl.Expressions[i])
			b.WriteString(" + (")
			b.WriteString(sliceRange(src, s, e))
			b.WriteString(")")
		}
	}
	return b.String()
}

package transform

import (
	"github.com/dop251/goja/ast"
	"github.com/dop251/goja/file"
)

// off converts the parser's 1-based index into a byte offset.
func off(i file.Idx) int {
	return int(i) - 1
}

func nodeSpan(n ast.Node) (int, int) {
	return off(n.Idx0()), off(n.Idx1())
}

// walk drives fn over the parsed tree in source order. The traversal is
// deliberately reference-oriented: identifiers in declaration or member
// positions (binding targets, dot members, non-computed property keys,
// bare assignment targets) are not visited, so a visitor that sees an
// *ast.Identifier can treat it as a value reference. Returning false from fn
// stops descent into the node's children.
func walk(node ast.Node, fn func(ast.Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *ast.Program:
		for _, stmt := range n.Body {
			walk(stmt, fn)
		}
	case *ast.BlockStatement:
		for _, stmt := range n.List {
			walk(stmt, fn)
		}
	case *ast.ExpressionStatement:
		walk(n.Expression, fn)
	case *ast.IfStatement:
		walk(n.Test, fn)
		walk(n.Consequent, fn)
		if n.Alternate != nil {
			walk(n.Alternate, fn)
		}
	case *ast.ReturnStatement:
		if n.Argument != nil {
			walk(n.Argument, fn)
		}
	case *ast.ThrowStatement:
		walk(n.Argument, fn)
	case *ast.WhileStatement:
		walk(n.Test, fn)
		walk(n.Body, fn)
	case *ast.DoWhileStatement:
		walk(n.Body, fn)
		walk(n.Test, fn)
	case *ast.ForStatement:
		if n.Initializer != nil {
			walkForInit(n.Initializer, fn)
		}
		if n.Test != nil {
			walk(n.Test, fn)
		}
		if n.Update != nil {
			walk(n.Update, fn)
		}
		walk(n.Body, fn)
	case *ast.ForInStatement:
		walkForInto(n.Into, fn)
		walk(n.Source, fn)
		walk(n.Body, fn)
	case *ast.ForOfStatement:
		walkForInto(n.Into, fn)
		walk(n.Source, fn)
		walk(n.Body, fn)
	case *ast.SwitchStatement:
		walk(n.Discriminant, fn)
		for _, c := range n.Body {
			if c.Test != nil {
				walk(c.Test, fn)
			}
			for _, stmt := range c.Consequent {
				walk(stmt, fn)
			}
		}
	case *ast.TryStatement:
		walk(n.Body, fn)
		if n.Catch != nil {
			walk(n.Catch.Body, fn)
		}
		if n.Finally != nil {
			walk(n.Finally, fn)
		}
	case *ast.LabelledStatement:
		walk(n.Statement, fn)
	case *ast.VariableStatement:
		for _, b := range n.List {
			walkBinding(b, fn)
		}
	case *ast.LexicalDeclaration:
		for _, b := range n.List {
			walkBinding(b, fn)
		}
	case *ast.FunctionDeclaration:
		walk(n.Function, fn)
	case *ast.ClassDeclaration:
		walk(n.Class, fn)

	case *ast.FunctionLiteral:
		walkParams(n.ParameterList, fn)
		walk(n.Body, fn)
	case *ast.ArrowFunctionLiteral:
		walkParams(n.ParameterList, fn)
		walk(n.Body, fn)
	case *ast.ExpressionBody:
		walk(n.Expression, fn)
	case *ast.ClassLiteral:
		if n.SuperClass != nil {
			walk(n.SuperClass, fn)
		}
		for _, element := range n.Body {
			switch e := element.(type) {
			case *ast.MethodDefinition:
				if e.Computed {
					walk(e.Key, fn)
				}
				walk(e.Body, fn)
			case *ast.FieldDefinition:
				if e.Computed {
					walk(e.Key, fn)
				}
				if e.Initializer != nil {
					walk(e.Initializer, fn)
				}
			}
		}
	case *ast.CallExpression:
		walk(n.Callee, fn)
		for _, arg := range n.ArgumentList {
			walk(arg, fn)
		}
	case *ast.NewExpression:
		walk(n.Callee, fn)
		for _, arg := range n.ArgumentList {
			walk(arg, fn)
		}
	case *ast.DotExpression:
		walk(n.Left, fn)
	case *ast.BracketExpression:
		walk(n.Left, fn)
		walk(n.Member, fn)
	case *ast.BinaryExpression:
		walk(n.Left, fn)
		walk(n.Right, fn)
	case *ast.UnaryExpression:
		walk(n.Operand, fn)
	case *ast.AssignExpression:
		// A bare identifier target is a write, not a reference.
		if _, bare := n.Left.(*ast.Identifier); !bare {
			walk(n.Left, fn)
		}
		walk(n.Right, fn)
	case *ast.ConditionalExpression:
		walk(n.Test, fn)
		walk(n.Consequent, fn)
		walk(n.Alternate, fn)
	case *ast.SequenceExpression:
		for _, e := range n.Sequence {
			walk(e, fn)
		}
	case *ast.ObjectLiteral:
		for _, prop := range n.Value {
			walk(prop, fn)
		}
	case *ast.PropertyKeyed:
		if n.Computed {
			walk(n.Key, fn)
		}
		walk(n.Value, fn)
	case *ast.PropertyShort:
		if n.Initializer != nil {
			walk(n.Initializer, fn)
		}
	case *ast.ArrayLiteral:
		for _, e := range n.Value {
			if e != nil {
				walk(e, fn)
			}
		}
	case *ast.SpreadElement:
		walk(n.Expression, fn)
	case *ast.TemplateLiteral:
		if n.Tag != nil {
			walk(n.Tag, fn)
		}
		for _, e := range n.Expressions {
			walk(e, fn)
		}
	}
}

func walkBinding(b *ast.Binding, fn func(ast.Node) bool) {
	if b == nil {
		return
	}
	// Target is a declaration position; only the initializer holds
	// references.
	if b.Initializer != nil {
		walk(b.Initializer, fn)
	}
}

func walkParams(params *ast.ParameterList, fn func(ast.Node) bool) {
	if params == nil {
		return
	}
	for _, b := range params.List {
		walkBinding(b, fn)
	}
}

func walkForInit(init ast.ForLoopInitializer, fn func(ast.Node) bool) {
	switch i := init.(type) {
	case *ast.ForLoopInitializerExpression:
		walk(i.Expression, fn)
	case *ast.ForLoopInitializerVarDeclList:
		for _, b := range i.List {
			walkBinding(b, fn)
		}
	case *ast.ForLoopInitializerLexicalDecl:
		walk(&i.LexicalDeclaration, fn)
	}
}

func walkForInto(into ast.ForInto, fn func(ast.Node) bool) {
	switch i := into.(type) {
	case *ast.ForIntoVar:
		walkBinding(i.Binding, fn)
	case *ast.ForDeclaration:
		fn(i)
	case *ast.ForIntoExpression:
		walk(i.Expression, fn)
	}
}

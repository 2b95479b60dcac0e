package transform

import (
	"fmt"
	"strings"
)

// ExportKind discriminates the supported export declaration shapes.
type ExportKind int

const (
	ExportDefault ExportKind = iota
	ExportDeclaration
	ExportNamed
	ExportReExport
	ExportReExportAll
)

// ImportBinding is one name bound by an import declaration. Imported is
// "default" for default imports and "*" for namespace imports. Start/End
// cover the binding's own text so plugins can rewrite a single specifier.
type ImportBinding struct {
	Local    string
	Imported string
	Start    int
	End      int
}

// ImportDecl is one top-level import declaration.
type ImportDecl struct {
	Start    int
	End      int
	Source   string
	Bindings []ImportBinding
	Bare     bool
}

// ExportName maps a local name to its exported name.
type ExportName struct {
	Local    string
	Exported string
}

// ExportDecl is one top-level export declaration. For ExportDefault and
// ExportDeclaration the span covers only the keyword region; the declared
// value stays in place as ordinary code.
type ExportDecl struct {
	Start  int
	End    int
	Kind   ExportKind
	Names  []ExportName
	Source string
}

// ModuleInfo is everything the scanner learned about a file's module syntax.
type ModuleInfo struct {
	Imports []ImportDecl
	Exports []ExportDecl
}

// HasModuleSyntax reports whether any module declaration was found.
func (m *ModuleInfo) HasModuleSyntax() bool {
	return m != nil && (len(m.Imports) > 0 || len(m.Exports) > 0)
}

// scanModules finds top-level import/export declarations. Module syntax sits
// outside the script grammar the parser accepts, so the returned parse copy
// has every declaration span blanked to spaces; offsets are preserved exactly,
// which keeps node positions valid against the original source.
func scanModules(src string) (*ModuleInfo, string, error) {
	info := &ModuleInfo{}
	depth := 0
	stmtStart := true
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = skipBlockComment(src, i)
		case c == '\'' || c == '"':
			i = skipString(src, i)
			stmtStart = false
		case c == '`':
			i = skipTemplate(src, i)
			stmtStart = false
		case c == '(' || c == '[':
			depth++
			stmtStart = false
			i++
		case c == '{':
			depth++
			stmtStart = true
			i++
		case c == ')' || c == ']':
			depth--
			stmtStart = false
			i++
		case c == '}':
			depth--
			stmtStart = true
			i++
		case c == ';' || c == '\n':
			stmtStart = true
			i++
		case isSpaceByte(c):
			i++
		case isIdentStart(c):
			word, next := readWord(src, i)
			if depth == 0 && stmtStart && (word == "import" || word == "export") && !isMetaOrCall(src, next) {
				if word == "import" {
					decl, resume, err := parseImport(src, i, next)
					if err != nil {
						return nil, "", err
					}
					info.Imports = append(info.Imports, decl)
					i = resume
				} else {
					decl, resume, err := parseExport(src, i, next)
					if err != nil {
						return nil, "", err
					}
					info.Exports = append(info.Exports, decl)
					i = resume
				}
				stmtStart = true
				continue
			}
			stmtStart = false
			i = next
		default:
			stmtStart = false
			i++
		}
	}

	if !info.HasModuleSyntax() {
		return info, src, nil
	}

	blanked := []byte(src)
	for _, im := range info.Imports {
		blankRange(blanked, im.Start, im.End)
	}
	for _, ex := range info.Exports {
		blankRange(blanked, ex.Start, ex.End)
	}
	return info, string(blanked), nil
}

// isMetaOrCall guards against import() calls and import.meta, which are
// expressions rather than declarations.
func isMetaOrCall(src string, i int) bool {
	j := skipSpaceAndComments(src, i)
	return j < len(src) && (src[j] == '(' || src[j] == '.')
}

func parseImport(src string, kwStart, i int) (ImportDecl, int, error) {
	decl := ImportDecl{Start: kwStart}
	j := skipSpaceAndComments(src, i)
	if j < len(src) && (src[j] == '\'' || src[j] == '"') {
		value, next, err := readStringLiteral(src, j)
		if err != nil {
			return ImportDecl{}, 0, err
		}
		decl.Source = value
		decl.Bare = true
		decl.End = consumeSemicolon(src, next)
		return decl, decl.End, nil
	}

	clauseStart := j
	fromEnd := -1
	braceDepth := 0
	k := j
	for k < len(src) && fromEnd == -1 {
		c := src[k]
		switch {
		case c == '/' && k+1 < len(src) && src[k+1] == '/':
			k = skipLineComment(src, k)
		case c == '/' && k+1 < len(src) && src[k+1] == '*':
			k = skipBlockComment(src, k)
		case c == '{':
			braceDepth++
			k++
		case c == '}':
			braceDepth--
			k++
		case isIdentStart(c):
			word, next := readWord(src, k)
			if word == "from" && braceDepth == 0 {
				fromEnd = k
			}
			k = next
		default:
			k++
		}
	}
	if fromEnd == -1 {
		return ImportDecl{}, 0, fmt.Errorf("import at offset %d: missing from clause", kwStart)
	}

	j = skipSpaceAndComments(src, k)
	value, next, err := readStringLiteral(src, j)
	if err != nil {
		return ImportDecl{}, 0, err
	}
	decl.Source = value
	decl.End = consumeSemicolon(src, next)

	bindings, err := parseImportClause(src, clauseStart, fromEnd)
	if err != nil {
		return ImportDecl{}, 0, err
	}
	decl.Bindings = bindings
	return decl, decl.End, nil
}

func parseImportClause(src string, start, end int) ([]ImportBinding, error) {
	var bindings []ImportBinding
	i := start
	for i < end {
		c := src[i]
		switch {
		case isSpaceByte(c) || c == ',':
			i++
		case c == '/' && i+1 < end && src[i+1] == '/':
			i = skipLineComment(src, i)
		case c == '/' && i+1 < end && src[i+1] == '*':
			i = skipBlockComment(src, i)
		case c == '*':
			star := i
			j := skipSpaceAndComments(src, i+1)
			word, next := readWord(src, j)
			if word != "as" {
				return nil, fmt.Errorf("import clause at offset %d: expected as after *", star)
			}
			j = skipSpaceAndComments(src, next)
			name, next := readWord(src, j)
			if name == "" {
				return nil, fmt.Errorf("import clause at offset %d: missing namespace name", star)
			}
			bindings = append(bindings, ImportBinding{Local: name, Imported: "*", Start: star, End: next})
			i = next
		case c == '{':
			close := strings.IndexByte(src[i:end], '}')
			if close == -1 {
				return nil, fmt.Errorf("import clause at offset %d: unterminated specifier list", i)
			}
			close += i
			named, err := parseNamedSpecifiers(src, i+1, close)
			if err != nil {
				return nil, err
			}
			bindings = append(bindings, named...)
			i = close + 1
		case isIdentStart(c):
			name, next := readWord(src, i)
			bindings = append(bindings, ImportBinding{Local: name, Imported: "default", Start: i, End: next})
			i = next
		default:
			return nil, fmt.Errorf("import clause at offset %d: unexpected %q", i, string(c))
		}
	}
	return bindings, nil
}

// parseNamedSpecifiers reads the comma-separated items of a { ... } specifier
// list, preserving each item's exact text offsets.
func parseNamedSpecifiers(src string, start, end int) ([]ImportBinding, error) {
	var bindings []ImportBinding
	i := start
	for i < end {
		segEnd := i
		for segEnd < end && src[segEnd] != ',' {
			segEnd++
		}
		s, e := trimIndex(src, i, segEnd)
		if s < e {
			fields := strings.Fields(src[s:e])
			switch {
			case len(fields) == 1 && isIdentifier(fields[0]):
				bindings = append(bindings, ImportBinding{Local: fields[0], Imported: fields[0], Start: s, End: e})
			case len(fields) == 3 && fields[1] == "as" && isIdentifier(fields[0]) && isIdentifier(fields[2]):
				bindings = append(bindings, ImportBinding{Local: fields[2], Imported: fields[0], Start: s, End: e})
			default:
				return nil, fmt.Errorf("import specifier %q at offset %d not supported", src[s:e], s)
			}
		}
		i = segEnd + 1
	}
	return bindings, nil
}

func parseExport(src string, kwStart, i int) (ExportDecl, int, error) {
	kwEnd := i
	j := skipSpaceAndComments(src, i)
	if j >= len(src) {
		return ExportDecl{}, 0, fmt.Errorf("export at offset %d: truncated", kwStart)
	}

	switch src[j] {
	case '{':
		close := strings.IndexByte(src[j:], '}')
		if close == -1 {
			return ExportDecl{}, 0, fmt.Errorf("export at offset %d: unterminated specifier list", kwStart)
		}
		close += j
		names, err := parseExportNames(src[j+1 : close])
		if err != nil {
			return ExportDecl{}, 0, fmt.Errorf("export at offset %d: %w", kwStart, err)
		}
		k := skipSpaceAndComments(src, close+1)
		word, next := readWord(src, k)
		if word == "from" {
			k = skipSpaceAndComments(src, next)
			source, after, err := readStringLiteral(src, k)
			if err != nil {
				return ExportDecl{}, 0, err
			}
			end := consumeSemicolon(src, after)
			return ExportDecl{Start: kwStart, End: end, Kind: ExportReExport, Names: names, Source: source}, end, nil
		}
		end := consumeSemicolon(src, close+1)
		return ExportDecl{Start: kwStart, End: end, Kind: ExportNamed, Names: names}, end, nil

	case '*':
		k := skipSpaceAndComments(src, j+1)
		word, next := readWord(src, k)
		var names []ExportName
		if word == "as" {
			k = skipSpaceAndComments(src, next)
			name, n := readWord(src, k)
			if name == "" {
				return ExportDecl{}, 0, fmt.Errorf("export at offset %d: missing namespace name", kwStart)
			}
			names = []ExportName{{Local: "*", Exported: name}}
			word, next = readWord(src, skipSpaceAndComments(src, n))
		}
		if word != "from" {
			return ExportDecl{}, 0, fmt.Errorf("export at offset %d: expected from clause", kwStart)
		}
		k = skipSpaceAndComments(src, next)
		source, after, err := readStringLiteral(src, k)
		if err != nil {
			return ExportDecl{}, 0, err
		}
		end := consumeSemicolon(src, after)
		return ExportDecl{Start: kwStart, End: end, Kind: ExportReExportAll, Names: names, Source: source}, end, nil
	}

	word, next := readWord(src, j)
	switch word {
	case "default":
		return ExportDecl{Start: kwStart, End: next, Kind: ExportDefault}, next, nil
	case "function", "class":
		k := skipSpaceAndComments(src, next)
		if k < len(src) && src[k] == '*' {
			k = skipSpaceAndComments(src, k+1)
		}
		name, _ := readWord(src, k)
		if name == "" {
			return ExportDecl{}, 0, fmt.Errorf("export at offset %d: anonymous %s must use export default", kwStart, word)
		}
		decl := ExportDecl{Start: kwStart, End: kwEnd, Kind: ExportDeclaration, Names: []ExportName{{Local: name, Exported: name}}}
		return decl, kwEnd, nil
	case "var", "let", "const":
		names := declaratorNames(src, next)
		decl := ExportDecl{Start: kwStart, End: kwEnd, Kind: ExportDeclaration, Names: names}
		return decl, kwEnd, nil
	}
	return ExportDecl{}, 0, fmt.Errorf("export at offset %d: unsupported form %q", kwStart, word)
}

func parseExportNames(clause string) ([]ExportName, error) {
	var names []ExportName
	for _, segment := range strings.Split(clause, ",") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		fields := strings.Fields(segment)
		switch {
		case len(fields) == 1 && isIdentifier(fields[0]):
			names = append(names, ExportName{Local: fields[0], Exported: fields[0]})
		case len(fields) == 3 && fields[1] == "as" && isIdentifier(fields[0]) && isIdentifier(fields[2]):
			names = append(names, ExportName{Local: fields[0], Exported: fields[2]})
		default:
			return nil, fmt.Errorf("specifier %q not supported", segment)
		}
	}
	return names, nil
}

// declaratorNames collects the names declared by a var/let/const statement.
// Destructuring patterns are skipped; only plain identifier declarators
// export.
func declaratorNames(src string, i int) []ExportName {
	var names []ExportName
	depth := 0
	expectName := true
	for i < len(src) {
		c := src[i]
		switch {
		case c == ';' && depth == 0:
			return names
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = skipBlockComment(src, i)
		case c == '\'' || c == '"':
			i = skipString(src, i)
		case c == '`':
			i = skipTemplate(src, i)
		case c == '(' || c == '[' || c == '{':
			depth++
			i++
		case c == ')' || c == ']' || c == '}':
			depth--
			i++
		case c == ',' && depth == 0:
			expectName = true
			i++
		case isIdentStart(c):
			name, next := readWord(src, i)
			if expectName && depth == 0 {
				names = append(names, ExportName{Local: name, Exported: name})
				expectName = false
			}
			i = next
		default:
			i++
		}
	}
	return names
}

func consumeSemicolon(src string, i int) int {
	j := i
	for j < len(src) && (src[j] == ' ' || src[j] == '\t') {
		j++
	}
	if j < len(src) && src[j] == ';' {
		return j + 1
	}
	return i
}

func skipLineComment(src string, i int) int {
	for i < len(src) && src[i] != '\n' {
		i++
	}
	return i
}

func skipBlockComment(src string, i int) int {
	i += 2
	for i+1 < len(src) {
		if src[i] == '*' && src[i+1] == '/' {
			return i + 2
		}
		i++
	}
	return len(src)
}

func skipString(src string, i int) int {
	quote := src[i]
	i++
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2
		case quote:
			return i + 1
		case '\n':
			return i
		default:
			i++
		}
	}
	return i
}

// skipTemplate walks past a template literal, descending into ${ ... }
// substitutions which may themselves contain strings, comments and nested
// templates.
func skipTemplate(src string, i int) int {
	i++
	for i < len(src) {
		switch {
		case src[i] == '\\':
			i += 2
		case src[i] == '`':
			return i + 1
		case src[i] == '$' && i+1 < len(src) && src[i+1] == '{':
			i = skipTemplateSubstitution(src, i+2)
		default:
			i++
		}
	}
	return i
}

func skipTemplateSubstitution(src string, i int) int {
	depth := 1
	for i < len(src) && depth > 0 {
		c := src[i]
		switch {
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = skipBlockComment(src, i)
		case c == '\'' || c == '"':
			i = skipString(src, i)
		case c == '`':
			i = skipTemplate(src, i)
		case c == '{':
			depth++
			i++
		case c == '}':
			depth--
			i++
		default:
			i++
		}
	}
	return i
}

func skipSpaceAndComments(src string, i int) int {
	for i < len(src) {
		c := src[i]
		switch {
		case isSpaceByte(c):
			i++
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			i = skipLineComment(src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i = skipBlockComment(src, i)
		default:
			return i
		}
	}
	return i
}

func readWord(src string, i int) (string, int) {
	if i >= len(src) || !isIdentStart(src[i]) {
		return "", i
	}
	j := i
	for j < len(src) && isIdentPart(src[j]) {
		j++
	}
	return src[i:j], j
}

func readStringLiteral(src string, i int) (string, int, error) {
	if i >= len(src) || (src[i] != '\'' && src[i] != '"') {
		return "", 0, fmt.Errorf("expected string literal at offset %d", i)
	}
	quote := src[i]
	j := i + 1
	var b strings.Builder
	for j < len(src) {
		switch src[j] {
		case '\\':
			if j+1 < len(src) {
				b.WriteByte(src[j+1])
			}
			j += 2
		case quote:
			return b.String(), j + 1, nil
		case '\n':
			return "", 0, fmt.Errorf("unterminated string literal at offset %d", i)
		default:
			b.WriteByte(src[j])
			j++
		}
	}
	return "", 0, fmt.Errorf("unterminated string literal at offset %d", i)
}

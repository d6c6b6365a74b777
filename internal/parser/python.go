package parser

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	sitter "github.com/smacker/go-tree-sitter"
)

// SymbolKind represents the type of a top-level Python construct.
type SymbolKind string

const (
	SymbolFunction SymbolKind = "function"
	SymbolClass    SymbolKind = "class"
	SymbolComment  SymbolKind = "comment"
)

// Symbol is a module-level construct. Byte offsets cover the whole node,
// decorators included.
type Symbol struct {
	Name      string     `json:"name,omitempty"`
	Kind      SymbolKind `json:"kind"`
	StartLine int        `json:"start_line"`
	EndLine   int        `json:"end_line"`
	StartByte uint32     `json:"start_byte"`
	EndByte   uint32     `json:"end_byte"`
	Docstring string     `json:"docstring,omitempty"`
}

// Symbols parses Python source and returns its module-level definitions and
// comment runs in source order. Nested definitions are not reported.
func (p *Parser) Symbols(ctx context.Context, source []byte) ([]Symbol, error) {
	if p.language != LanguagePython {
		return nil, fmt.Errorf("%w: symbol extraction not implemented for %s", ErrUnsupportedLanguage, p.language)
	}

	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, fmt.Errorf("%w: python: invalid syntax near line %d", ErrParse, firstErrorLine(root))
	}

	return extractPythonSymbols(root, source), nil
}

func extractPythonSymbols(root *sitter.Node, source []byte) []Symbol {
	var symbols []Symbol

	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)

		switch node.Type() {
		case "function_definition", "class_definition":
			symbols = append(symbols, extractPythonDefinition(node, node, source))

		case "decorated_definition":
			// Span starts at the first decorator; name and kind come from the inner def.
			if def := node.ChildByFieldName("definition"); def != nil {
				symbols = append(symbols, extractPythonDefinition(node, def, source))
			}

		case "comment":
			// a trailing comment belongs to the code on its line
			if prev := node.PrevSibling(); prev != nil && prev.EndPoint().Row == node.StartPoint().Row {
				continue
			}
			start := int(node.StartPoint().Row) + 1
			end := int(node.EndPoint().Row) + 1
			if n := len(symbols); n > 0 && symbols[n-1].Kind == SymbolComment && symbols[n-1].EndLine == start-1 {
				symbols[n-1].EndLine = end
				symbols[n-1].EndByte = node.EndByte()
				continue
			}
			symbols = append(symbols, Symbol{
				Kind:      SymbolComment,
				StartLine: start,
				EndLine:   end,
				StartByte: node.StartByte(),
				EndByte:   node.EndByte(),
			})
		}
	}

	return symbols
}

func extractPythonDefinition(outer, def *sitter.Node, source []byte) Symbol {
	kind := SymbolFunction
	if def.Type() == "class_definition" {
		kind = SymbolClass
	}

	name := ""
	if nameNode := def.ChildByFieldName("name"); nameNode != nil {
		name = nodeContent(nameNode, source)
	} else if nameNode := findChild(def, "identifier"); nameNode != nil {
		name = nodeContent(nameNode, source)
	}

	return Symbol{
		Name:      name,
		Kind:      kind,
		StartLine: int(outer.StartPoint().Row) + 1,
		EndLine:   int(outer.EndPoint().Row) + 1,
		StartByte: outer.StartByte(),
		EndByte:   outer.EndByte(),
		Docstring: pythonDocstring(def, source),
	}
}

// pythonDocstring returns the cleaned docstring when the first statement of
// the body is a bare string literal.
func pythonDocstring(def *sitter.Node, source []byte) string {
	body := def.ChildByFieldName("body")
	if body == nil {
		body = findChild(def, "block")
	}
	if body == nil {
		return ""
	}

	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() == "comment" {
			continue
		}
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() != 1 {
			return ""
		}
		str := stmt.NamedChild(0)
		if str.Type() != "string" {
			return ""
		}
		// bytes and f-strings are not docstrings
		raw := nodeContent(str, source)
		if strings.ContainsAny(stringPrefix(raw), "bBfF") {
			return ""
		}
		return cleanDocstring(raw)
	}
	return ""
}

func firstErrorLine(node *sitter.Node) int {
	if node.Type() == "ERROR" || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.HasError() || child.IsMissing() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPoint().Row) + 1
}

func stringPrefix(s string) string {
	return s[:len(s)-len(strings.TrimLeft(s, "rRuUbBfF"))]
}

// cleanDocstring turns a string literal into its cleaned value.
func cleanDocstring(s string) string {
	prefix := stringPrefix(s)
	s = s[len(prefix):]

	// Remove quotes
	switch {
	case len(s) >= 6 && (strings.HasPrefix(s, `"""`) || strings.HasPrefix(s, `'''`)):
		s = s[3 : len(s)-3]
	case len(s) >= 2 && (s[0] == '"' || s[0] == '\''):
		s = s[1 : len(s)-1]
	}

	if !strings.ContainsAny(prefix, "rR") {
		s = unescape(s)
	}
	return cleandoc(s)
}

var hexEscapeWidth = map[byte]int{'x': 2, 'u': 4, 'U': 8}

// unescape decodes the backslash escapes of a non-raw Python string.
// Unrecognised or malformed escapes, and \N{...}, are kept as written.
func unescape(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}

	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}

		c := s[i+1]
		switch c {
		case '\n':
			// line continuation
			i++
		case '\r':
			i++
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\\', '\'', '"':
			b.WriteByte(c)
			i++
		case 'a':
			b.WriteByte('\a')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i + 1
			for j < len(s) && j < i+4 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i+1:j], 8, 32)
			b.WriteRune(rune(v))
			i = j - 1
		case 'x', 'u', 'U':
			end := i + 2 + hexEscapeWidth[c]
			if end > len(s) {
				b.WriteByte(s[i])
				continue
			}
			v, err := strconv.ParseUint(s[i+2:end], 16, 32)
			if err != nil || v > unicode.MaxRune {
				b.WriteByte(s[i])
				continue
			}
			b.WriteRune(rune(v))
			i = end - 1
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

// cleandoc strips the first line, removes the common indentation of the
// remaining lines and drops blank lines at both ends.
func cleandoc(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = expandTabs(line)
	}

	margin := -1
	for _, line := range lines[1:] {
		stripped := strings.TrimLeft(line, " ")
		if strings.TrimSpace(stripped) == "" {
			continue
		}
		if indent := len(line) - len(stripped); margin < 0 || indent < margin {
			margin = indent
		}
	}

	lines[0] = strings.TrimSpace(lines[0])
	for i := 1; i < len(lines); i++ {
		if margin > 0 && len(lines[i]) >= margin {
			lines[i] = lines[i][margin:]
		} else {
			lines[i] = strings.TrimLeft(lines[i], " ")
		}
		lines[i] = strings.TrimRight(lines[i], " \r")
	}

	for len(lines) > 0 && lines[0] == "" {
		lines = lines[1:]
	}
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

// expandTabs replaces each tab with spaces up to the next multiple of 8.
func expandTabs(line string) string {
	if !strings.Contains(line, "\t") {
		return line
	}
	var b strings.Builder
	col := 0
	for _, r := range line {
		if r == '\t' {
			n := 8 - col%8
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

package chunk

import (
	"fmt"
	"strings"
)

// Format renders c as a labelled text block for indexing. It panics on a
// chunk type it does not know; chunk values only come from this module.
func Format(c Chunk) string {
	var b strings.Builder

	switch c := c.(type) {
	case Function:
		writeDefinition(&b, "Function", c.Name, c.Docstring, c.Code)
	case Class:
		writeDefinition(&b, "Class", c.Name, c.Docstring, c.Code)
	case Comment:
		writeBlock(&b, "Comments:", c.Content)
	case Header:
		writeBlock(&b, c.Header, c.Content)
	case HTMLScript:
		writeBlock(&b, "HTML Script:", c.Content)
	case HTMLStyle:
		writeBlock(&b, "HTML Style:", c.Content)
	case CSSRule:
		writeBlock(&b, "CSS Rule:", c.Content)
	case File:
		writeBlock(&b, "File Content:", c.Content)
	default:
		panic(unknownKind(c))
	}

	return b.String()
}

// FormatAll joins the formatted chunks with blank lines in between.
func FormatAll(chunks []Chunk) string {
	parts := make([]string, len(chunks))
	for i, c := range chunks {
		parts[i] = Format(c)
	}
	return strings.Join(parts, "\n")
}

func writeDefinition(b *strings.Builder, label, name, docstring, code string) {
	fmt.Fprintf(b, "%s: %s\n", label, name)
	if docstring != "" {
		b.WriteString("Docstring:\n")
		b.WriteString(docstring)
		b.WriteString("\n")
	}
	writeBlock(b, "Code:", code)
}

func writeBlock(b *strings.Builder, title, body string) {
	b.WriteString(title)
	b.WriteString("\n")
	b.WriteString(body)
	if !strings.HasSuffix(body, "\n") {
		b.WriteString("\n")
	}
}

func unknownKind(c Chunk) string {
	return fmt.Sprintf("chunk: unknown chunk type %T", c)
}

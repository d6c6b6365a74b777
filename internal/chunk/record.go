package chunk

// Record is the flat JSON form of a chunk, discriminated by Type.
type Record struct {
	Type      Kind   `json:"type"`
	Name      string `json:"name,omitempty"`
	Code      string `json:"code,omitempty"`
	Docstring string `json:"docstring,omitempty"`
	Header    string `json:"header,omitempty"`
	Content   string `json:"content,omitempty"`
	StartLine int    `json:"start_line,omitempty"`
	EndLine   int    `json:"end_line,omitempty"`
}

// ToRecord converts any chunk to its JSON record.
func ToRecord(c Chunk) Record {
	switch c := c.(type) {
	case Function:
		return Record{Type: KindFunction, Name: c.Name, Code: c.Code, Docstring: c.Docstring, StartLine: c.StartLine, EndLine: c.EndLine}
	case Class:
		return Record{Type: KindClass, Name: c.Name, Code: c.Code, Docstring: c.Docstring, StartLine: c.StartLine, EndLine: c.EndLine}
	case Comment:
		return Record{Type: KindComment, Content: c.Content, StartLine: c.StartLine, EndLine: c.EndLine}
	case Header:
		return Record{Type: KindHeader, Header: c.Header, Content: c.Content}
	case File:
		return Record{Type: KindFile, Content: c.Content}
	case HTMLScript:
		return Record{Type: KindHTMLScript, Content: c.Content}
	case HTMLStyle:
		return Record{Type: KindHTMLStyle, Content: c.Content}
	case CSSRule:
		return Record{Type: KindCSSRule, Content: c.Content}
	default:
		panic(unknownKind(c))
	}
}

// ToRecords converts a chunk list.
func ToRecords(chunks []Chunk) []Record {
	records := make([]Record, len(chunks))
	for i, c := range chunks {
		records[i] = ToRecord(c)
	}
	return records
}

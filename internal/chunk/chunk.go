// Package chunk defines the chunk records produced by the chunkers and
// their uniform text form.
package chunk

// Kind is the discriminator of a chunk record.
type Kind string

const (
	KindFunction   Kind = "function"
	KindClass      Kind = "class"
	KindComment    Kind = "comment"
	KindHeader     Kind = "header"
	KindFile       Kind = "file"
	KindHTMLScript Kind = "html_script"
	KindHTMLStyle  Kind = "html_style"
	KindCSSRule    Kind = "css_rule"
)

// Chunk is one extracted unit of a source file. The set of implementations
// is closed; Format and ToRecord handle every one of them.
type Chunk interface {
	Kind() Kind
	chunk()
}

// Function is a top-level function definition.
type Function struct {
	Name      string
	Code      string // line-aligned source span, signature included
	Docstring string
	StartLine int
	EndLine   int
}

// Class is a top-level class definition.
type Class struct {
	Name      string
	Code      string
	Docstring string
	StartLine int
	EndLine   int
}

// Comment is a run of top-level comment lines outside any definition.
type Comment struct {
	Content   string
	StartLine int
	EndLine   int
}

// Header is a markdown section.
type Header struct {
	Header  string // the header line, # marks included
	Content string // lines up to the next header
}

// File is the whole-file fallback.
type File struct {
	Content string
}

// HTMLScript is the text inside a <script> element.
type HTMLScript struct {
	Content string
}

// HTMLStyle is the text inside a <style> element.
type HTMLStyle struct {
	Content string
}

// CSSRule is a top-level stylesheet rule or at-rule.
type CSSRule struct {
	Content string
}

func (Function) Kind() Kind   { return KindFunction }
func (Class) Kind() Kind      { return KindClass }
func (Comment) Kind() Kind    { return KindComment }
func (Header) Kind() Kind     { return KindHeader }
func (File) Kind() Kind       { return KindFile }
func (HTMLScript) Kind() Kind { return KindHTMLScript }
func (HTMLStyle) Kind() Kind  { return KindHTMLStyle }
func (CSSRule) Kind() Kind    { return KindCSSRule }

func (Function) chunk()   {}
func (Class) chunk()      {}
func (Comment) chunk()    {}
func (Header) chunk()     {}
func (File) chunk()       {}
func (HTMLScript) chunk() {}
func (HTMLStyle) chunk()  {}
func (CSSRule) chunk()    {}

// Body returns the verbatim source text carried by c.
func Body(c Chunk) string {
	switch c := c.(type) {
	case Function:
		return c.Code
	case Class:
		return c.Code
	case Comment:
		return c.Content
	case Header:
		return c.Content
	case File:
		return c.Content
	case HTMLScript:
		return c.Content
	case HTMLStyle:
		return c.Content
	case CSSRule:
		return c.Content
	default:
		panic(unknownKind(c))
	}
}

// TokenEstimate returns rough token count for the chunk.
func TokenEstimate(c Chunk) int {
	// Rough estimate: ~4 chars per token
	return len(Body(c)) / 4
}

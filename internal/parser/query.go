package parser

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"

	sitter "github.com/smacker/go-tree-sitter"
)

//go:embed queries/*.scm
var queryFS embed.FS

// Capture is one node matched by a structural query.
type Capture struct {
	Name      string // capture name without the leading @
	StartByte uint32
	EndByte   uint32
	StartLine int
	EndLine   int
}

// QuerySource returns the structural query registered for lang.
func QuerySource(lang Language) ([]byte, error) {
	src, err := queryFS.ReadFile("queries/" + string(lang) + ".scm")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no query set for %s", ErrUnsupportedLanguage, lang)
		}
		return nil, err
	}
	return src, nil
}

// HasQuery reports whether a structural query is registered for lang.
func HasQuery(lang Language) bool {
	_, err := QuerySource(lang)
	return err == nil
}

// Captures parses source and runs the language's structural query over it.
// Captures are returned in source order; an enclosing node sorts before the
// nodes nested inside it.
func (p *Parser) Captures(ctx context.Context, source []byte) ([]Capture, error) {
	querySrc, err := QuerySource(p.language)
	if err != nil {
		return nil, err
	}

	query, err := sitter.NewQuery(querySrc, p.lang)
	if err != nil {
		return nil, fmt.Errorf("compile %s query: %w", p.language, err)
	}
	defer query.Close()

	tree, err := p.parse(ctx, source)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	qc := sitter.NewQueryCursor()
	defer qc.Close()
	qc.Exec(query, tree.RootNode())

	var captures []Capture
	for {
		m, ok := qc.NextMatch()
		if !ok {
			break
		}
		m = qc.FilterPredicates(m, source)
		for _, c := range m.Captures {
			captures = append(captures, Capture{
				Name:      query.CaptureNameForId(c.Index),
				StartByte: c.Node.StartByte(),
				EndByte:   c.Node.EndByte(),
				StartLine: int(c.Node.StartPoint().Row) + 1,
				EndLine:   int(c.Node.EndPoint().Row) + 1,
			})
		}
	}

	sort.SliceStable(captures, func(i, j int) bool {
		if captures[i].StartByte != captures[j].StartByte {
			return captures[i].StartByte < captures[j].StartByte
		}
		return captures[i].EndByte > captures[j].EndByte
	})

	return captures, nil
}

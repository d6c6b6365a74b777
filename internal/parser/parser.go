// Package parser provides tree-sitter based parsing for chunk extraction.
package parser

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
)

var (
	// ErrParse is returned when the grammar rejects the input.
	ErrParse = errors.New("parse error")
	// ErrUnsupportedLanguage is returned when no grammar is registered.
	ErrUnsupportedLanguage = errors.New("unsupported language")
)

// Parser wraps tree-sitter for a specific language.
// A Parser is not safe for concurrent use; create one per file.
type Parser struct {
	language Language
	parser   *sitter.Parser
	lang     *sitter.Language
}

// NewParser creates a parser for the given language.
func NewParser(lang Language) (*Parser, error) {
	spec, ok := languages[lang]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedLanguage, lang)
	}

	l := spec.grammar()
	p := sitter.NewParser()
	p.SetLanguage(l)

	return &Parser{
		language: lang,
		parser:   p,
		lang:     l,
	}, nil
}

// Language returns the language this parser was created for.
func (p *Parser) Language() Language {
	return p.language
}

// Close releases the underlying tree-sitter parser.
func (p *Parser) Close() {
	p.parser.Close()
}

func (p *Parser) parse(ctx context.Context, source []byte) (*sitter.Tree, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, p.language, err)
	}
	if tree == nil || tree.RootNode() == nil {
		return nil, fmt.Errorf("%w: %s: empty syntax tree", ErrParse, p.language)
	}
	return tree, nil
}

// Helper functions

func findChild(node *sitter.Node, nodeType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if child.Type() == nodeType {
			return child
		}
	}
	return nil
}

func nodeContent(node *sitter.Node, source []byte) string {
	return string(source[node.StartByte():node.EndByte()])
}

package chunker

import (
	"context"

	"github.com/randalmurphal/code-chunker/internal/chunk"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
	"github.com/randalmurphal/code-chunker/internal/parser"
)

// ChunkPython emits one chunk per module-level function, class and comment
// run. Nested definitions stay inside their enclosing chunk.
func (c *Chunker) ChunkPython(ctx context.Context, path string) ([]chunk.Chunk, int, error) {
	text, err := fsutil.ReadText(path, c.readChunkSize)
	if err != nil {
		return nil, 0, err
	}

	p, err := parser.NewParser(parser.LanguagePython)
	if err != nil {
		return nil, 0, err
	}
	defer p.Close()

	symbols, err := p.Symbols(ctx, []byte(text))
	if err != nil {
		return nil, 0, err
	}

	chunks := make([]chunk.Chunk, 0, len(symbols))
	for _, sym := range symbols {
		code := lineSpan(text, int(sym.StartByte), int(sym.EndByte))
		switch sym.Kind {
		case parser.SymbolFunction:
			chunks = append(chunks, chunk.Function{
				Name:      sym.Name,
				Code:      code,
				Docstring: sym.Docstring,
				StartLine: sym.StartLine,
				EndLine:   sym.EndLine,
			})
		case parser.SymbolClass:
			chunks = append(chunks, chunk.Class{
				Name:      sym.Name,
				Code:      code,
				Docstring: sym.Docstring,
				StartLine: sym.StartLine,
				EndLine:   sym.EndLine,
			})
		case parser.SymbolComment:
			chunks = append(chunks, chunk.Comment{
				Content:   code,
				StartLine: sym.StartLine,
				EndLine:   sym.EndLine,
			})
		}
	}

	return chunks, CountLines(text), nil
}

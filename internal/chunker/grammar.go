package chunker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/randalmurphal/code-chunker/internal/chunk"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
	"github.com/randalmurphal/code-chunker/internal/parser"
)

// ChunkGrammar chunks a file with the structural query registered for ext.
// A file with no matching construct, no registered grammar, or a parse
// failure yields one whole-file chunk.
func (c *Chunker) ChunkGrammar(ctx context.Context, path, ext string) ([]chunk.Chunk, int, error) {
	text, err := fsutil.ReadText(path, c.readChunkSize)
	if err != nil {
		return nil, 0, err
	}
	lines := CountLines(text)

	if strings.TrimSpace(text) == "" {
		return nil, lines, nil
	}
	whole := []chunk.Chunk{chunk.File{Content: text}}

	lang, ok := parser.LanguageForExtension(ext)
	if !ok || !parser.HasQuery(lang) {
		return whole, lines, nil
	}

	captures, err := c.captures(ctx, lang, text)
	if err != nil {
		if errors.Is(err, parser.ErrParse) {
			c.logger.Debug("grammar parse failed, using whole file", "path", path, "language", string(lang), "error", err)
			return whole, lines, nil
		}
		return nil, 0, err
	}

	chunks, err := capturesToChunks(captures, text)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", lang, err)
	}
	if len(chunks) == 0 {
		return whole, lines, nil
	}

	return chunks, lines, nil
}

func (c *Chunker) captures(ctx context.Context, lang parser.Language, text string) ([]parser.Capture, error) {
	p, err := parser.NewParser(lang)
	if err != nil {
		return nil, err
	}
	defer p.Close()

	return p.Captures(ctx, []byte(text))
}

func capturesToChunks(captures []parser.Capture, text string) ([]chunk.Chunk, error) {
	var chunks []chunk.Chunk

	for _, cp := range captures {
		content := text[cp.StartByte:cp.EndByte]

		switch chunk.Kind(cp.Name) {
		case chunk.KindFile:
			return []chunk.Chunk{chunk.File{Content: text}}, nil
		case chunk.KindHTMLScript:
			chunks = append(chunks, chunk.HTMLScript{Content: content})
		case chunk.KindHTMLStyle:
			chunks = append(chunks, chunk.HTMLStyle{Content: content})
		case chunk.KindCSSRule:
			chunks = append(chunks, chunk.CSSRule{Content: content})
		default:
			return nil, fmt.Errorf("unknown capture @%s", cp.Name)
		}
	}

	return chunks, nil
}

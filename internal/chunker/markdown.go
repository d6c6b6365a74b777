package chunker

import (
	"regexp"
	"strings"

	"github.com/randalmurphal/code-chunker/internal/chunk"
	"github.com/randalmurphal/code-chunker/internal/fsutil"
)

var headerPattern = regexp.MustCompile(`^#+ `)

// ChunkMarkdown splits a markdown document into flat header sections. Text
// before the first header is dropped and there is no whole-file fallback.
func (c *Chunker) ChunkMarkdown(path string) ([]chunk.Chunk, int, error) {
	text, err := fsutil.ReadText(path, c.readChunkSize)
	if err != nil {
		return nil, 0, err
	}
	return splitMarkdown(text), CountLines(text), nil
}

func splitMarkdown(text string) []chunk.Chunk {
	var (
		chunks  []chunk.Chunk
		header  string
		body    []string
		inBlock bool
	)

	flush := func() {
		if inBlock {
			chunks = append(chunks, chunk.Header{Header: header, Content: strings.Join(body, "\n")})
		}
	}

	for _, line := range strings.Split(text, "\n") {
		if headerPattern.MatchString(line) {
			flush()
			header = strings.TrimSuffix(line, "\r")
			body = nil
			inBlock = true
			continue
		}
		if inBlock {
			body = append(body, line)
		}
	}
	flush()

	return chunks
}

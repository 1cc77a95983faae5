package extractor

import (
	"bufio"
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/monishjocata/Vendor-Check/internal/model"
)

// FileExtractor yields the whole file as one snippet whose id is the path.
type FileExtractor struct{}

func NewFileExtractor() *FileExtractor {
	return &FileExtractor{}
}

func (e *FileExtractor) Extract(filePath string, content []byte) ([]model.Snippet, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil
	}
	return []model.Snippet{{
		ID:       filePath,
		Source:   string(content),
		Location: model.Location{FilePath: filePath, Line: 1},
		Language: language(filePath),
	}}, nil
}

// BlockExtractor splits indentation-structured source into one snippet per
// top-level def or class (decorators included) plus one module snippet
// holding every other top-level line. Snippet ids are "path:line".
type BlockExtractor struct{}

func NewBlockExtractor() *BlockExtractor {
	return &BlockExtractor{}
}

type chunk struct {
	start int // 1-based line of the first line
	lines []string
}

func (e *BlockExtractor) Extract(filePath string, content []byte) ([]model.Snippet, error) {
	var blocks []*chunk
	module := &chunk{}
	var current *chunk
	depth := 0   // open brackets carried over from previous lines
	triple := "" // delimiter of a triple-quoted string still open

	scanner := bufio.NewScanner(bytes.NewReader(content))
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)

		if depth == 0 && triple == "" && trimmed != "" && line[0] != ' ' && line[0] != '\t' && !strings.HasPrefix(trimmed, "#") {
			switch {
			case startsBlock(trimmed):
				// decorators already opened the block
				if current == nil || !decoratorOnly(current) {
					current = &chunk{start: lineNo}
					blocks = append(blocks, current)
				}
			default:
				current = nil
			}
		}
		var delta int
		delta, triple = scanLine(line, triple)
		depth += delta
		if depth < 0 {
			depth = 0
		}

		target := current
		if target == nil {
			target = module
		}
		if target.start == 0 && trimmed != "" {
			target.start = lineNo
		}
		if target.start != 0 {
			target.lines = append(target.lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	lang := language(filePath)
	var snippets []model.Snippet
	add := func(c *chunk) {
		src := strings.TrimRight(strings.Join(c.lines, "\n"), "\n\t ")
		if strings.TrimSpace(src) == "" {
			return
		}
		snippets = append(snippets, model.Snippet{
			ID:       model.Location{FilePath: filePath, Line: c.start}.String(),
			Source:   src,
			Location: model.Location{FilePath: filePath, Line: c.start},
			Language: lang,
		})
	}
	add(module)
	for _, b := range blocks {
		add(b)
	}
	return snippets, nil
}

func startsBlock(line string) bool {
	return strings.HasPrefix(line, "@") ||
		strings.HasPrefix(line, "def ") ||
		strings.HasPrefix(line, "async def ") ||
		strings.HasPrefix(line, "class ")
}

// decoratorOnly reports whether c holds only decorator lines so far, in which
// case the def that follows belongs to it.
func decoratorOnly(c *chunk) bool {
	for _, l := range c.lines {
		if t := strings.TrimSpace(l); t != "" && !strings.HasPrefix(t, "@") && !strings.HasPrefix(l, " ") && !strings.HasPrefix(l, "\t") {
			return false
		}
	}
	return len(c.lines) > 0
}

// bracketDelta counts opening minus closing brackets outside quotes and
// comments on a line that does not start inside a string.
func bracketDelta(line string) int {
	delta, _ := scanLine(line, "")
	return delta
}

// scanLine counts opening minus closing brackets outside quotes and comments.
// triple is the delimiter of a triple-quoted string open at the start of the
// line, or ""; the delimiter still open at the end of the line is returned.
func scanLine(line, triple string) (delta int, open string) {
	i := 0
	if triple != "" {
		end := strings.Index(line, triple)
		if end < 0 {
			return 0, triple
		}
		i = end + len(triple)
	}
	var quote byte
	for ; i < len(line); i++ {
		c := line[i]
		if quote != 0 {
			switch c {
			case '\\':
				i++
			case quote:
				quote = 0
			}
			continue
		}
		switch c {
		case '#':
			return delta, ""
		case '"', '\'':
			if delim := line[i:min(i+3, len(line))]; delim == `"""` || delim == "'''" {
				end := strings.Index(line[i+3:], delim)
				if end < 0 {
					return delta, delim
				}
				i += 3 + end + 2
				continue
			}
			quote = c
		case '(', '[', '{':
			delta++
		case ')', ']', '}':
			delta--
		}
	}
	return delta, ""
}

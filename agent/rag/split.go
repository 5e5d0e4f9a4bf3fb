package rag

import "strings"

// Chunk is one retrievable passage of a source document.
type Chunk struct {
	Heading string `json:"heading,omitempty"`
	Content string `json:"content"`
}

// SplitMarkdown splits a markdown document into chunks on H1-H3 headings,
// keeping the heading path as context for each chunk.
func SplitMarkdown(text string) []Chunk {
	var (
		chunks  []Chunk
		headers [3]string
		buf     []string
	)

	flush := func() {
		content := strings.TrimSpace(strings.Join(buf, "\n"))
		buf = buf[:0]
		if content == "" {
			return
		}
		chunks = append(chunks, Chunk{
			Heading: headingPath(headers),
			Content: content,
		})
	}

	for _, line := range strings.Split(text, "\n") {
		level, title := headingLine(line)
		if level == 0 {
			buf = append(buf, line)
			continue
		}
		flush()
		headers[level-1] = title
		for i := level; i < len(headers); i++ {
			headers[i] = ""
		}
	}
	flush()

	return chunks
}

func headingLine(line string) (int, string) {
	trimmed := strings.TrimSpace(line)
	for level := 3; level >= 1; level-- {
		prefix := strings.Repeat("#", level) + " "
		if strings.HasPrefix(trimmed, prefix) {
			return level, strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))
		}
	}
	return 0, ""
}

func headingPath(headers [3]string) string {
	parts := make([]string, 0, len(headers))
	for _, h := range headers {
		if h != "" {
			parts = append(parts, h)
		}
	}
	return strings.Join(parts, " > ")
}

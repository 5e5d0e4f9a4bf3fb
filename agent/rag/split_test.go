package rag

import (
	"testing"
)

func TestSplitMarkdownHeadingPaths(t *testing.T) {
	t.Parallel()

	doc := `# AeroBuds Pro

True wireless earbuds with active noise cancellation.

## Battery

2 weeks standby, 8 hours playback.

### Charging

USB-C fast charge, 15 minutes for 2 hours of playback.

## Warranty

12 months limited warranty.
`

	chunks := SplitMarkdown(doc)
	if len(chunks) != 4 {
		t.Fatalf("expected 4 chunks, got %d: %#v", len(chunks), chunks)
	}

	want := []struct {
		heading string
		content string
	}{
		{"AeroBuds Pro", "True wireless earbuds with active noise cancellation."},
		{"AeroBuds Pro > Battery", "2 weeks standby, 8 hours playback."},
		{"AeroBuds Pro > Battery > Charging", "USB-C fast charge, 15 minutes for 2 hours of playback."},
		{"AeroBuds Pro > Warranty", "12 months limited warranty."},
	}
	for i, w := range want {
		if chunks[i].Heading != w.heading {
			t.Fatalf("chunk %d heading: expected %q, got %q", i, w.heading, chunks[i].Heading)
		}
		if chunks[i].Content != w.content {
			t.Fatalf("chunk %d content: expected %q, got %q", i, w.content, chunks[i].Content)
		}
	}
}

func TestSplitMarkdownSiblingHeadingResetsDeeperLevels(t *testing.T) {
	t.Parallel()

	doc := `# Product
## Specs
### Weight
5 grams.
## Support
Email us.
`

	chunks := SplitMarkdown(doc)
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Heading != "Product > Specs > Weight" {
		t.Fatalf("unexpected first heading: %q", chunks[0].Heading)
	}
	// "Support" replaces "Specs" and clears the stale H3.
	if chunks[1].Heading != "Product > Support" {
		t.Fatalf("unexpected second heading: %q", chunks[1].Heading)
	}
}

func TestSplitMarkdownPreamble(t *testing.T) {
	t.Parallel()

	chunks := SplitMarkdown("intro text before any heading\n\n# Title\nbody")
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if chunks[0].Heading != "" || chunks[0].Content != "intro text before any heading" {
		t.Fatalf("unexpected preamble chunk: %#v", chunks[0])
	}
}

func TestSplitMarkdownEmptyAndHeadingOnly(t *testing.T) {
	t.Parallel()

	if chunks := SplitMarkdown(""); len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty doc, got %d", len(chunks))
	}
	if chunks := SplitMarkdown("# Title\n## Sub\n"); len(chunks) != 0 {
		t.Fatalf("expected no chunks for heading-only doc, got %d", len(chunks))
	}
}

func TestSplitMarkdownIgnoresDeepHeadings(t *testing.T) {
	t.Parallel()

	chunks := SplitMarkdown("# Title\n#### not a split point\nbody")
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Content != "#### not a split point\nbody" {
		t.Fatalf("H4 line must stay in content, got %q", chunks[0].Content)
	}
}

func TestCosineSimilarity(t *testing.T) {
	t.Parallel()

	if got := cosineSimilarity([]float64{1, 0}, []float64{1, 0}); got != 1 {
		t.Fatalf("identical vectors: expected 1, got %f", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 1}); got != 0 {
		t.Fatalf("orthogonal vectors: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{0, 0}); got != 0 {
		t.Fatalf("zero vector: expected 0, got %f", got)
	}
	if got := cosineSimilarity([]float64{1, 0}, []float64{1}); got != 0 {
		t.Fatalf("mismatched lengths: expected 0, got %f", got)
	}
}

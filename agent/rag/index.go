package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/uptrace/bun"
	"gonum.org/v1/gonum/floats"
)

// Embedder turns texts into embedding vectors.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}

type docChunk struct {
	bun.BaseModel `bun:"table:doc_chunks,alias:dc"`

	ID        int64           `bun:"id,pk,autoincrement"`
	Source    string          `bun:"source,notnull"`
	Heading   string          `bun:"heading"`
	Content   string          `bun:"content,notnull"`
	Embedding json.RawMessage `bun:"embedding,type:jsonb,notnull"`
}

type ScoredChunk struct {
	Chunk
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

// Index stores embedded document chunks in Postgres and ranks them against a
// query embedding by cosine similarity.
type Index struct {
	db       bun.IDB
	embedder Embedder
}

func NewIndex(db bun.IDB, embedder Embedder) (*Index, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	if embedder == nil {
		return nil, errors.New("embedder is required")
	}
	return &Index{db: db, embedder: embedder}, nil
}

func (ix *Index) Init(ctx context.Context) error {
	_, err := ix.db.NewCreateTable().
		Model((*docChunk)(nil)).
		IfNotExists().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("create doc_chunks: %w", err)
	}
	return nil
}

// Add embeds and stores the chunks of one source document.
func (ix *Index) Add(ctx context.Context, source string, chunks []Chunk) error {
	source = strings.TrimSpace(source)
	if source == "" {
		return errors.New("source is required")
	}
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	vectors, err := ix.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed %d chunks from %s: %w", len(chunks), source, err)
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}

	rows := make([]docChunk, len(chunks))
	for i, c := range chunks {
		encoded, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("encode embedding: %w", err)
		}
		rows[i] = docChunk{
			Source:    source,
			Heading:   c.Heading,
			Content:   c.Content,
			Embedding: encoded,
		}
	}

	if _, err := ix.db.NewInsert().Model(&rows).Exec(ctx); err != nil {
		return fmt.Errorf("insert doc chunks: %w", err)
	}
	return nil
}

// Search embeds the query and returns the k most similar chunks.
func (ix *Index) Search(ctx context.Context, query string, k int) ([]ScoredChunk, error) {
	if k <= 0 {
		k = 3
	}

	vectors, err := ix.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for one query", len(vectors))
	}
	queryVec := vectors[0]

	var rows []docChunk
	if err := ix.db.NewSelect().Model(&rows).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load doc chunks: %w", err)
	}

	scored := make([]ScoredChunk, 0, len(rows))
	for _, row := range rows {
		var vec []float64
		if err := json.Unmarshal(row.Embedding, &vec); err != nil {
			return nil, fmt.Errorf("decode embedding id=%d: %w", row.ID, err)
		}
		scored = append(scored, ScoredChunk{
			Chunk:  Chunk{Heading: row.Heading, Content: row.Content},
			Source: row.Source,
			Score:  cosineSimilarity(queryVec, vec),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func cosineSimilarity(a, b []float64) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	na := math.Sqrt(floats.Dot(a, a))
	nb := math.Sqrt(floats.Dot(b, b))
	if na == 0 || nb == 0 {
		return 0
	}
	return floats.Dot(a, b) / (na * nb)
}

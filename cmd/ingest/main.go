// Command ingest loads markdown documents into the retrieval index: each file
// is split on headings and every section is embedded and stored.
package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	llmx "github.com/supportflow-ai/supportflow/agent/llm"
	"github.com/supportflow-ai/supportflow/agent/rag"
	configx "github.com/supportflow-ai/supportflow/pkg/config"
	_ "github.com/supportflow-ai/supportflow/pkg/logger/autoload"
	openrouterx "github.com/supportflow-ai/supportflow/pkg/openrouter"
)

type IngestConfig struct {
	PostgresDSN string `envconfig:"POSTGRES_DSN" split_words:"true" required:"true"`
	DocsDir     string `envconfig:"DOCS_DIR" split_words:"true" default:"docs"`
}

func main() {
	ctx := context.Background()

	cfg := configx.MustNew[IngestConfig]("AGENT")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid llm config")
	}

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(cfg.PostgresDSN)))
	db := bun.NewDB(sqldb, pgdialect.New())
	defer db.Close()

	embedder, err := openrouterx.NewEmbeddingsClient(llmCfg.OpenRouterFor(llmx.RoleRetrieval))
	if err != nil {
		log.Fatal().Err(err).Msg("create embeddings client")
	}
	index, err := rag.NewIndex(db, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("create index")
	}
	if err := index.Init(ctx); err != nil {
		log.Fatal().Err(err).Msg("init index")
	}

	if err := ingestDir(ctx, index, cfg.DocsDir); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.DocsDir).Msg("ingest failed")
	}
	log.Info().Str("dir", cfg.DocsDir).Msg("ingest complete")
}

func ingestDir(ctx context.Context, index *rag.Index, dir string) error {
	paths, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return err
	}

	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}

		chunks := rag.SplitMarkdown(string(content))
		if len(chunks) == 0 {
			log.Warn().Str("path", path).Msg("no chunks extracted")
			continue
		}

		source := filepath.Base(path)
		if err := index.Add(ctx, source, chunks); err != nil {
			return err
		}
		log.Info().Str("source", source).Int("chunks", len(chunks)).Msg("indexed document")
	}
	return nil
}

package main

import (
	"context"
	"database/sql"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	supervisorx "github.com/supportflow-ai/supportflow/agent/agents/supervisor"
	"github.com/supportflow-ai/supportflow/agent/capability"
	checkpointx "github.com/supportflow-ai/supportflow/agent/checkpoint"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
	llmx "github.com/supportflow-ai/supportflow/agent/llm"
	"github.com/supportflow-ai/supportflow/agent/oracle"
	"github.com/supportflow-ai/supportflow/agent/prompt"
	"github.com/supportflow-ai/supportflow/agent/rag"
	"github.com/supportflow-ai/supportflow/agent/sqlagent"
	configx "github.com/supportflow-ai/supportflow/pkg/config"
	_ "github.com/supportflow-ai/supportflow/pkg/logger/autoload"
	opikx "github.com/supportflow-ai/supportflow/pkg/opik"
	openrouterx "github.com/supportflow-ai/supportflow/pkg/openrouter"
	serverx "github.com/supportflow-ai/supportflow/server"
)

type AppConfig struct {
	ListenAddr    string `envconfig:"LISTEN_ADDR" split_words:"true" default:":8000"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN" split_words:"true" required:"true"`
	RetrievalTopK int    `envconfig:"RETRIEVAL_TOP_K" split_words:"true" default:"3"`
	SQLTopK       int    `envconfig:"SQL_TOP_K" split_words:"true" default:"5"`
	MaxDispatches int    `envconfig:"MAX_DISPATCHES" split_words:"true" default:"8"`
}

func main() {
	ctx := context.Background()

	appCfg := configx.MustNew[AppConfig]("AGENT")
	llmCfg := configx.MustNew[llmx.Config]("OPENROUTER")
	if err := llmCfg.Validate(); err != nil {
		panic(err)
	}

	db := openDB(appCfg.PostgresDSN)
	defer db.Close()

	store, err := checkpointx.NewBunStore(db)
	if err != nil {
		panic(err)
	}
	if err := store.Init(ctx); err != nil {
		panic(err)
	}

	prompts := prompt.LoadPromptSet()

	sup := buildSupervisor(ctx, db, store, *llmCfg, prompts, *appCfg)

	srv, err := serverx.New(sup)
	if err != nil {
		panic(err)
	}

	log.Info().Str("addr", appCfg.ListenAddr).Msg("customer support agent listening")
	if err := http.ListenAndServe(appCfg.ListenAddr, srv); err != nil {
		log.Fatal().Err(err).Msg("http server stopped")
	}
}

func openDB(dsn string) *bun.DB {
	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	return bun.NewDB(sqldb, pgdialect.New())
}

func buildSupervisor(
	ctx context.Context,
	db bun.IDB,
	store checkpointx.Store,
	llmCfg llmx.Config,
	prompts prompt.PromptSet,
	appCfg AppConfig,
) *supervisorx.Supervisor {
	supervisorCfg := llmCfg.OpenRouterFor(llmx.RoleSupervisor)
	supervisorModel, err := supervisorCfg.New(ctx)
	if err != nil {
		panic(err)
	}
	decisionOracle, err := oracle.New(ctx, supervisorModel, prompts.Supervisor)
	if err != nil {
		panic(err)
	}

	retrievalCfg := llmCfg.OpenRouterFor(llmx.RoleRetrieval)
	retrievalModel, err := retrievalCfg.New(ctx)
	if err != nil {
		panic(err)
	}
	embedder, err := openrouterx.NewEmbeddingsClient(retrievalCfg)
	if err != nil {
		panic(err)
	}
	index, err := rag.NewIndex(db, embedder)
	if err != nil {
		panic(err)
	}
	if err := index.Init(ctx); err != nil {
		panic(err)
	}
	retriever, err := rag.NewResponder(ctx, index, retrievalModel, prompts.Retrieval, appCfg.RetrievalTopK)
	if err != nil {
		panic(err)
	}

	structuredCfg := llmCfg.OpenRouterFor(llmx.RoleStructured)
	structuredModel, err := structuredCfg.New(ctx)
	if err != nil {
		panic(err)
	}
	answerer, err := sqlagent.NewResponder(ctx, db, structuredModel, prompts.SQLGen, prompts.SQLSummary, sqlagent.Config{
		TopK:   appCfg.SQLTopK,
		Schema: sqlagent.DefaultSchema,
	})
	if err != nil {
		panic(err)
	}

	registry, err := capability.NewRegistry(retriever, answerer)
	if err != nil {
		panic(err)
	}

	var trace contractx.TraceSink
	opikCfg := configx.MustNew[opikx.Config]("OPIK")
	if opikCfg.Enabled() {
		trace = opikx.MustNew(*opikCfg)
	}

	sup, err := supervisorx.New(store, decisionOracle, registry, trace, supervisorx.Config{
		MaxDispatches: appCfg.MaxDispatches,
	})
	if err != nil {
		panic(err)
	}
	return sup
}

package rag

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
	llmx "github.com/supportflow-ai/supportflow/agent/llm"
)

// Searcher ranks stored chunks against a query.
type Searcher interface {
	Search(ctx context.Context, query string, k int) ([]ScoredChunk, error)
}

// Responder implements the document-retrieval collaborator: retrieve top-k
// passages, then synthesize a grounded answer with the chat model.
type Responder struct {
	searcher Searcher
	runner   compose.Runnable[map[string]any, *schema.Message]
	topK     int
}

func NewResponder(
	ctx context.Context,
	searcher Searcher,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	topK int,
) (*Responder, error) {
	if searcher == nil {
		return nil, errors.New("searcher is required")
	}
	if topK <= 0 {
		topK = 3
	}
	runner, err := llmx.CompileTextGraph(ctx, chatModel, systemPrompt, "rag.synthesis_graph")
	if err != nil {
		return nil, fmt.Errorf("compile rag synthesis graph: %w", err)
	}
	return &Responder{searcher: searcher, runner: runner, topK: topK}, nil
}

func (r *Responder) Retrieve(ctx context.Context, query string) (string, error) {
	passages, err := r.searcher.Search(ctx, query, r.topK)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrRetrievalUnavailable, err)
	}

	payload := map[string]any{
		"query":    query,
		"passages": passages,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal retrieval payload: %v", contractx.ErrValidation, err)
	}

	msg, err := r.runner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("%w: synthesis invoke: %v", contractx.ErrRetrievalUnavailable, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: synthesis returned empty answer", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(msg.Content), nil
}

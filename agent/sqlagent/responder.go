package sqlagent

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/supportflow-ai/supportflow/agent/contract"
	llmx "github.com/supportflow-ai/supportflow/agent/llm"
	"github.com/uptrace/bun"
)

const (
	defaultTopK = 5
	maxScanRows = 50
)

type Config struct {
	// TopK is the row limit the generator is instructed to apply.
	TopK int
	// Schema describes the queryable tables for the generator prompt.
	Schema string
}

type sqlGenOutput struct {
	SQL string `json:"sql"`
}

// Responder implements the structured-data collaborator: generate one
// read-only SELECT for the question, execute it, and summarize the rows.
type Responder struct {
	db        bun.IDB
	genRunner compose.Runnable[map[string]any, sqlGenOutput]
	sumRunner compose.Runnable[map[string]any, *schema.Message]
	topK      int
	schema    string
}

func NewResponder(
	ctx context.Context,
	db bun.IDB,
	chatModel einomodel.BaseChatModel,
	genPrompt string,
	summaryPrompt string,
	cfg Config,
) (*Responder, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}
	if strings.TrimSpace(cfg.Schema) == "" {
		return nil, errors.New("schema description is required")
	}

	genRunner, err := llmx.CompileStructuredGraph[sqlGenOutput](ctx, chatModel, genPrompt, "sqlagent.generate_graph")
	if err != nil {
		return nil, fmt.Errorf("compile sql generation graph: %w", err)
	}
	sumRunner, err := llmx.CompileTextGraph(ctx, chatModel, summaryPrompt, "sqlagent.summary_graph")
	if err != nil {
		return nil, fmt.Errorf("compile sql summary graph: %w", err)
	}

	topK := cfg.TopK
	if topK <= 0 {
		topK = defaultTopK
	}

	return &Responder{
		db:        db,
		genRunner: genRunner,
		sumRunner: sumRunner,
		topK:      topK,
		schema:    strings.TrimSpace(cfg.Schema),
	}, nil
}

func (r *Responder) Answer(ctx context.Context, question string) (string, error) {
	stmt, err := r.generate(ctx, question)
	if err != nil {
		return "", err
	}

	records, err := r.execute(ctx, stmt)
	if err != nil {
		return "", err
	}

	return r.summarize(ctx, question, stmt, records)
}

func (r *Responder) generate(ctx context.Context, question string) (string, error) {
	payload := map[string]any{
		"question": question,
		"schema":   r.schema,
		"top_k":    r.topK,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal generation payload: %v", contractx.ErrValidation, err)
	}

	out, err := r.genRunner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("%w: generation invoke: %v", contractx.ErrQueryGeneration, err)
	}

	stmt := strings.TrimSuffix(strings.TrimSpace(out.SQL), ";")
	if err := validateSelect(stmt); err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrQueryGeneration, err)
	}
	return stmt, nil
}

func (r *Responder) execute(ctx context.Context, stmt string) ([]map[string]any, error) {
	rows, err := r.db.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrQueryExecution, err)
	}
	defer rows.Close()

	records, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", contractx.ErrQueryExecution, err)
	}
	return records, nil
}

func (r *Responder) summarize(ctx context.Context, question, stmt string, records []map[string]any) (string, error) {
	payload := map[string]any{
		"question": question,
		"sql":      stmt,
		"rows":     records,
	}
	input, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: marshal summary payload: %v", contractx.ErrValidation, err)
	}

	msg, err := r.sumRunner.Invoke(ctx, map[string]any{
		"input": string(input),
	})
	if err != nil {
		return "", fmt.Errorf("%w: summary invoke: %v", contractx.ErrQueryExecution, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: summary returned empty answer", contractx.ErrSchemaViolation)
	}
	return strings.TrimSpace(msg.Content), nil
}

// validateSelect enforces the read-only contract on generated statements.
func validateSelect(stmt string) error {
	if stmt == "" {
		return errors.New("empty statement")
	}
	if strings.ContainsRune(stmt, ';') {
		return errors.New("multiple statements are not allowed")
	}

	upper := strings.ToUpper(stmt)
	if !strings.HasPrefix(upper, "SELECT") && !strings.HasPrefix(upper, "WITH") {
		return fmt.Errorf("statement must be a SELECT, got %q", firstWord(stmt))
	}
	for _, kw := range []string{"INSERT", "UPDATE", "DELETE", "DROP", "ALTER", "CREATE", "TRUNCATE", "GRANT"} {
		for _, word := range strings.Fields(upper) {
			if strings.Trim(word, "();,") == kw {
				return fmt.Errorf("forbidden keyword %s", kw)
			}
		}
	}
	return nil
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var records []map[string]any
	for rows.Next() {
		if len(records) >= maxScanRows {
			break
		}
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

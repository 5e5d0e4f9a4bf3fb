package llm

import (
	"fmt"
	"strings"
	"time"

	contractx "github.com/supportflow-ai/supportflow/agent/contract"
	openrouterx "github.com/supportflow-ai/supportflow/pkg/openrouter"
)

// Role selects the per-role model override applied on top of the defaults.
type Role string

const (
	RoleSupervisor Role = "supervisor"
	RoleRetrieval  Role = "retrieval"
	RoleStructured Role = "structured"
)

type Config struct {
	BaseURL            string        `envconfig:"BASE_URL" split_words:"true" default:"https://openrouter.ai/api/v1"`
	APIKey             string        `envconfig:"API_KEY" split_words:"true" required:"true"`
	Model              string        `envconfig:"MODEL" split_words:"true" required:"true"`
	EmbeddingsModel    string        `envconfig:"EMBEDDINGS_MODEL" split_words:"true" default:"text-embedding-3-large"`
	MaxCompletionToken int           `envconfig:"MAX_COMPLETION_TOKEN" split_words:"true" default:"2000"`
	Temperature        float32       `envconfig:"TEMPERATURE" split_words:"true" default:"0.5"`
	Timeout            time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"30s"`
	SiteURL            string        `envconfig:"SITE_URL" split_words:"true"`
	SiteName           string        `envconfig:"SITE_NAME" split_words:"true"`

	SupervisorModel       string  `envconfig:"SUPERVISOR_MODEL" split_words:"true"`
	RetrievalModel        string  `envconfig:"RETRIEVAL_MODEL" split_words:"true"`
	StructuredModel       string  `envconfig:"STRUCTURED_MODEL" split_words:"true"`
	SupervisorTemperature float32 `envconfig:"SUPERVISOR_TEMPERATURE" split_words:"true" default:"-1"`
	RetrievalTemperature  float32 `envconfig:"RETRIEVAL_TEMPERATURE" split_words:"true" default:"-1"`
	StructuredTemperature float32 `envconfig:"STRUCTURED_TEMPERATURE" split_words:"true" default:"-1"`
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.APIKey) == "" {
		return fmt.Errorf("%w: openrouter api key is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("%w: default model is required", contractx.ErrValidation)
	}
	return nil
}

func (c Config) OpenRouterFor(role Role) openrouterx.Config {
	modelName := strings.TrimSpace(c.Model)
	temp := c.Temperature

	switch role {
	case RoleSupervisor:
		if v := strings.TrimSpace(c.SupervisorModel); v != "" {
			modelName = v
		}
		if c.SupervisorTemperature >= 0 {
			temp = c.SupervisorTemperature
		}
	case RoleRetrieval:
		if v := strings.TrimSpace(c.RetrievalModel); v != "" {
			modelName = v
		}
		if c.RetrievalTemperature >= 0 {
			temp = c.RetrievalTemperature
		}
	case RoleStructured:
		if v := strings.TrimSpace(c.StructuredModel); v != "" {
			modelName = v
		}
		if c.StructuredTemperature >= 0 {
			temp = c.StructuredTemperature
		}
	}

	maxCompletionToken := c.MaxCompletionToken
	return openrouterx.Config{
		BaseURL:            strings.TrimSpace(c.BaseURL),
		APIKey:             strings.TrimSpace(c.APIKey),
		Model:              modelName,
		EmbeddingsModel:    strings.TrimSpace(c.EmbeddingsModel),
		MaxCompletionToken: &maxCompletionToken,
		Temperature:        temp,
		Timeout:            c.Timeout,
		SiteURL:            strings.TrimSpace(c.SiteURL),
		SiteName:           strings.TrimSpace(c.SiteName),
	}
}

package prompt

import (
	_ "embed"
	"strings"
)

var (
	//go:embed template/supervisor.txt
	supervisorRaw string

	//go:embed template/retrieval.txt
	retrievalRaw string

	//go:embed template/sqlgen.txt
	sqlGenRaw string

	//go:embed template/sqlsummary.txt
	sqlSummaryRaw string
)

// PromptSet holds loaded prompt content.
type PromptSet struct {
	Supervisor string
	Retrieval  string
	SQLGen     string
	SQLSummary string
}

// LoadPromptSet returns a PromptSet with trimmed prompt strings.
// Safe to call concurrently; the embed is compile-time, trimming is cheap.
func LoadPromptSet() PromptSet {
	return PromptSet{
		Supervisor: strings.TrimSpace(supervisorRaw),
		Retrieval:  strings.TrimSpace(retrievalRaw),
		SQLGen:     strings.TrimSpace(sqlGenRaw),
		SQLSummary: strings.TrimSpace(sqlSummaryRaw),
	}
}

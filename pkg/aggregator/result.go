package aggregator

import (
	"github.com/agentstation/playerregistry/pkg/registry"
)

// Summary is the structured result of one aggregator invocation.
type Summary struct {
	RunID             string                  `json:"run_id" yaml:"run_id"`
	Processor         registry.SourceKind     `json:"processor" yaml:"processor"`
	Season            int                     `json:"season" yaml:"season"`
	Status            registry.RunStatus      `json:"status" yaml:"status"`
	DataDate          registry.Date           `json:"data_date" yaml:"data_date"`
	ValidationMode    registry.ValidationMode `json:"validation_mode" yaml:"validation_mode"`
	RecordsProcessed  int                     `json:"records_processed" yaml:"records_processed"`
	RecordsCreated    int                     `json:"records_created" yaml:"records_created"`
	RecordsSkipped    int                     `json:"records_skipped" yaml:"records_skipped"`
	PlayersDiscovered int                     `json:"players_discovered" yaml:"players_discovered"`
	Errors            []string                `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// counts converts the summary to ledger counts.
func (s *Summary) counts() registry.RunCounts {
	return registry.RunCounts{
		RecordsProcessed:  s.RecordsProcessed,
		RecordsCreated:    s.RecordsCreated,
		RecordsSkipped:    s.RecordsSkipped,
		PlayersDiscovered: s.PlayersDiscovered,
		Errors:            len(s.Errors),
	}
}

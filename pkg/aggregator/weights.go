package aggregator

import (
	"os"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// SourceWeight is the default priority and confidence a source contributes
// to records it writes.
type SourceWeight struct {
	Priority   int     `json:"priority" yaml:"priority"`     // Higher wins provenance display, nothing gates on it
	Confidence float64 `json:"confidence" yaml:"confidence"` // Base confidence in [0, 1]
}

// Weights is the per-source weighting configuration. Confidence increases
// with multi-source corroboration via the bonus.
type Weights struct {
	Sources            map[registry.SourceKind]SourceWeight `json:"sources" yaml:"sources"`
	CorroborationBonus float64                              `json:"corroboration_bonus" yaml:"corroboration_bonus"`
}

// DefaultWeights returns the standard source weighting: gamebook highest
// (verified), movement next (transactional), roster lowest (scraped).
func DefaultWeights() Weights {
	return Weights{
		Sources: map[registry.SourceKind]SourceWeight{
			registry.SourceGamebook: {Priority: 100, Confidence: 0.9},
			registry.SourceMovement: {Priority: 90, Confidence: 0.8},
			registry.SourceRoster:   {Priority: 80, Confidence: 0.7},
		},
		CorroborationBonus: 0.05,
	}
}

// LoadWeights reads a weighting configuration from a YAML file.
func LoadWeights(path string) (Weights, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Weights{}, &errors.NotFoundError{Resource: "weights file", ID: path}
		}
		return Weights{}, &errors.ConfigError{Component: "weights", Message: "read file", Err: err}
	}
	var w Weights
	if err := yaml.Unmarshal(data, &w); err != nil {
		return Weights{}, &errors.ConfigError{Component: "weights", Message: "parse yaml", Err: err}
	}
	if err := w.Validate(); err != nil {
		return Weights{}, err
	}
	return w, nil
}

// Validate checks the weighting configuration.
func (w Weights) Validate() error {
	for kind, sw := range w.Sources {
		if !kind.Valid() {
			return &errors.ValidationError{Field: "sources", Value: kind, Message: "unknown source kind"}
		}
		if sw.Confidence < 0 || sw.Confidence > 1 {
			return &errors.ValidationError{Field: "confidence", Value: sw.Confidence, Message: "must be in [0, 1]"}
		}
	}
	if w.CorroborationBonus < 0 || w.CorroborationBonus > 1 {
		return &errors.ValidationError{Field: "corroboration_bonus", Value: w.CorroborationBonus, Message: "must be in [0, 1]"}
	}
	return nil
}

// confidence computes the confidence score for a record written by source,
// bumped by how many distinct sources corroborate the record. Advisory
// metadata only.
func (w Weights) confidence(source registry.SourceKind, corroboratingSources int) float64 {
	c := w.Sources[source].Confidence
	if corroboratingSources > 1 {
		c += w.CorroborationBonus * float64(corroboratingSources-1)
	}
	if c > 1.0 {
		c = 1.0
	}
	return c
}

// priority returns the source's configured priority.
func (w Weights) priority(source registry.SourceKind) int {
	return w.Sources[source].Priority
}

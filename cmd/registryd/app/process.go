package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/playerregistry/internal/storage/sqlite"
	"github.com/agentstation/playerregistry/pkg/aggregator"
	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/investigate"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// processFlags holds the flag values shared by the processing commands.
type processFlags struct {
	season             int
	team               string
	from               string
	to                 string
	dataDate           string
	factsFile          string
	allowBackfill      bool
	strategy           string
	confirmFullReplace bool
}

// register adds the shared processing flags to a command.
func (f *processFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.season, "season", 0, "season start year, e.g. 2024 for 2024-25 (required)")
	cmd.Flags().StringVar(&f.team, "team", "", "restrict processing to one team abbreviation")
	cmd.Flags().StringVar(&f.from, "from", "", "start of the date range filter (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.to, "to", "", "end of the date range filter (YYYY-MM-DD)")
	cmd.Flags().StringVar(&f.dataDate, "data-date", "", "date of the source data (defaults to the latest fact date)")
	cmd.Flags().StringVar(&f.factsFile, "facts", "", "path to the facts file, JSON or YAML (required)")
	cmd.Flags().BoolVar(&f.allowBackfill, "allow-backfill", false, "accept out-of-order dates in insert-only mode")
	cmd.Flags().StringVar(&f.strategy, "strategy", "merge", "upsert strategy: merge or replace")
	cmd.Flags().BoolVar(&f.confirmFullReplace, "confirm-full-replace", false, "required confirmation for the replace strategy")
	_ = cmd.MarkFlagRequired("season")
	_ = cmd.MarkFlagRequired("facts")
}

// request converts the flags into an aggregator request.
func (f *processFlags) request() (aggregator.Request, error) {
	req := aggregator.Request{
		Season:             f.season,
		TeamAbbr:           f.team,
		AllowBackfill:      f.allowBackfill,
		Strategy:           registry.UpsertStrategy(f.strategy),
		ConfirmFullReplace: f.confirmFullReplace,
	}
	var err error
	if f.from != "" {
		if req.From, err = registry.ParseDate(f.from); err != nil {
			return req, &errors.ValidationError{Field: "from", Value: f.from, Message: err.Error()}
		}
	}
	if f.to != "" {
		if req.To, err = registry.ParseDate(f.to); err != nil {
			return req, &errors.ValidationError{Field: "to", Value: f.to, Message: err.Error()}
		}
	}
	if f.dataDate != "" {
		if req.DataDate, err = registry.ParseDate(f.dataDate); err != nil {
			return req, &errors.ValidationError{Field: "data-date", Value: f.dataDate, Message: err.Error()}
		}
	}
	return req, nil
}

// NewGamebookCommand creates the gamebook processing command.
func (a *App) NewGamebookCommand() *cobra.Command {
	flags := &processFlags{}
	cmd := &cobra.Command{
		Use:     "gamebook",
		GroupID: "process",
		Short:   "Process verified per-game participation facts",
		Long: `Gamebook processes verified post-game participation records. It is
the highest-priority source: accepted facts establish team assignment
authority and increment per-player participation counts.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var facts []aggregator.GamebookFact
			if err := loadFacts(flags.factsFile, &facts); err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			agg, err := a.gamebook()
			if err != nil {
				return err
			}
			summary, err := agg.Process(cmd.Context(), req, facts)
			return a.report(summary, err)
		},
	}
	flags.register(cmd)
	return cmd
}

// NewRosterCommand creates the roster processing command.
func (a *App) NewRosterCommand() *cobra.Command {
	flags := &processFlags{}
	cmd := &cobra.Command{
		Use:     "roster",
		GroupID: "process",
		Short:   "Process team roster snapshot facts",
		Long: `Roster processes team roster snapshots from the independent roster
feeds. Roster data refreshes jersey numbers and positions, but cannot
move a player the gamebook has already verified on another team, and
is superseded entirely by newer gamebook data.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var facts []aggregator.RosterFact
			if err := loadFacts(flags.factsFile, &facts); err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			agg, err := a.roster()
			if err != nil {
				return err
			}
			summary, err := agg.Process(cmd.Context(), req, facts)
			return a.report(summary, err)
		},
	}
	flags.register(cmd)
	return cmd
}

// NewMovementCommand creates the movement processing command.
func (a *App) NewMovementCommand() *cobra.Command {
	flags := &processFlags{}
	cmd := &cobra.Command{
		Use:     "movement",
		GroupID: "process",
		Short:   "Process player movement transaction facts",
		Long: `Movement processes trades, waivers, and signings. A movement fact
asserts that a player is associated with their new team from the
transaction date; participation counts are untouched.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var facts []aggregator.MovementFact
			if err := loadFacts(flags.factsFile, &facts); err != nil {
				return err
			}
			req, err := flags.request()
			if err != nil {
				return err
			}
			agg, err := a.movement()
			if err != nil {
				return err
			}
			summary, err := agg.Process(cmd.Context(), req, facts)
			return a.report(summary, err)
		},
	}
	flags.register(cmd)
	return cmd
}

// gamebook builds the gamebook aggregator from app configuration.
func (a *App) gamebook() (*aggregator.Gamebook, error) {
	store, opts, err := a.aggregatorDeps()
	if err != nil {
		return nil, err
	}
	return aggregator.NewGamebook(store, opts...)
}

// roster builds the roster aggregator from app configuration.
func (a *App) roster() (*aggregator.Roster, error) {
	store, opts, err := a.aggregatorDeps()
	if err != nil {
		return nil, err
	}
	return aggregator.NewRoster(store, opts...)
}

// movement builds the movement aggregator from app configuration.
func (a *App) movement() (*aggregator.Movement, error) {
	store, opts, err := a.aggregatorDeps()
	if err != nil {
		return nil, err
	}
	return aggregator.NewMovement(store, opts...)
}

// aggregatorDeps opens the store and translates app configuration into
// aggregator options.
func (a *App) aggregatorDeps() (*sqlite.Store, []aggregator.Option, error) {
	store, err := a.Store()
	if err != nil {
		return nil, nil, err
	}

	opts := []aggregator.Option{
		aggregator.WithStalenessThreshold(a.config.StalenessDays),
		aggregator.WithUnresolvedAlertThreshold(a.config.UnresolvedAlertThreshold),
	}

	if a.config.LookbackSeasons > 0 {
		inv, err := investigate.New(store, investigate.WithLookbackSeasons(a.config.LookbackSeasons))
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, aggregator.WithInvestigator(inv))
	}

	if a.config.WeightsFile != "" {
		weights, err := aggregator.LoadWeights(a.config.WeightsFile)
		if err != nil {
			return nil, nil, errors.WrapResource(err, "load", "weights", a.config.WeightsFile)
		}
		opts = append(opts, aggregator.WithWeights(weights))
	}

	return store, opts, nil
}

// report prints the run summary to stdout and returns the process error.
// The summary is printed even for failed runs so operators see partial
// progress and the recorded run id.
func (a *App) report(summary *aggregator.Summary, processErr error) error {
	if summary != nil {
		encoded, err := json.MarshalIndent(summary, "", "  ")
		if err != nil {
			return fmt.Errorf("encode summary: %w", err)
		}
		fmt.Fprintln(os.Stdout, string(encoded))
	}
	return processErr
}

// loadFacts reads a facts file into out, decoding by file extension.
func loadFacts(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.WrapResource(err, "read", "facts file", path)
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, out); err != nil {
			return errors.WrapResource(err, "decode", "facts file", path)
		}
	default:
		if err := json.Unmarshal(data, out); err != nil {
			return errors.WrapResource(err, "decode", "facts file", path)
		}
	}
	return nil
}

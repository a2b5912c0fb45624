package app

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agentstation/playerregistry/pkg/errors"
	"github.com/agentstation/playerregistry/pkg/registry"
)

// NewLedgerCommand creates the ledger inspection command.
func (a *App) NewLedgerCommand() *cobra.Command {
	var (
		season    int
		processor string
	)
	cmd := &cobra.Command{
		Use:     "ledger",
		GroupID: "inspect",
		Short:   "Show run ledger entries for a processor and season",
		Long: `Ledger prints the immutable run ledger for one processor and season.
The ledger is what the temporal ordering guard and the gamebook
precedence guard consult, so it explains why a run was accepted,
backfilled, or blocked.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			kind := registry.SourceKind(processor)
			if !kind.Valid() {
				return &errors.ValidationError{Field: "processor", Value: processor, Message: "must be gamebook, roster, or movement"}
			}

			store, err := a.Store()
			if err != nil {
				return err
			}
			entries, err := store.LedgerEntries(cmd.Context(), kind, season)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintf(os.Stdout, "no ledger entries for %s season %d\n", kind, season)
				return nil
			}

			encoded, err := json.MarshalIndent(entries, "", "  ")
			if err != nil {
				return fmt.Errorf("encode ledger entries: %w", err)
			}
			fmt.Fprintln(os.Stdout, string(encoded))
			return nil
		},
	}
	cmd.Flags().IntVar(&season, "season", 0, "season start year (required)")
	cmd.Flags().StringVar(&processor, "processor", "", "processor: gamebook, roster, or movement (required)")
	_ = cmd.MarkFlagRequired("season")
	_ = cmd.MarkFlagRequired("processor")
	return cmd
}

package app

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func (a *App) NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		GroupID: "inspect",
		Short:   "Show version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintf(os.Stdout, "registryd %s\n", a.version)
			fmt.Fprintf(os.Stdout, "  commit:  %s\n", a.commit)
			fmt.Fprintf(os.Stdout, "  built:   %s\n", a.date)
			fmt.Fprintf(os.Stdout, "  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
		},
	}
}

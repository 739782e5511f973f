// Package cli provides the administrative command-line surface: migrations,
// staff accounts, and patient listings.
package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type BuildInfo struct {
	Version string
	Commit  string
}

func NewRootCommand(out io.Writer, build BuildInfo) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:           "clinidesk",
		Short:         "Clinidesk records manager",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the TOML config file")

	cmd.AddCommand(newVersionCommand(out, build))
	cmd.AddCommand(newMigrateCommand(out, &configPath))
	cmd.AddCommand(newUserCommand(out, &configPath))
	cmd.AddCommand(newPatientCommand(out, &configPath))
	cmd.InitDefaultCompletionCmd()
	return cmd
}

func newVersionCommand(out io.Writer, build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(out, "version=%s commit=%s\n", build.Version, build.Commit)
			return err
		},
	}
}

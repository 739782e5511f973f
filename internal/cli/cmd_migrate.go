package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newMigrateCommand(out io.Writer, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations and print the ledger",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			entries, err := rt.store.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tEXECUTED AT\tSUCCESS\tDESCRIPTION")
			for _, entry := range entries {
				fmt.Fprintf(w, "%s\t%s\t%t\t%s\n", entry.Version, entry.ExecutedAt, entry.Success, entry.Description)
			}
			return w.Flush()
		},
	}
	return cmd
}

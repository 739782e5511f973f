package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jeanscarter/clinidesk/internal/model"
	"github.com/jeanscarter/clinidesk/internal/storage"
)

func newPatientCommand(out io.Writer, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patient",
		Short: "Inspect the patient registry",
	}
	cmd.AddCommand(newPatientListCommand(out, configPath))
	cmd.AddCommand(newPatientSearchCommand(out, configPath))
	return cmd
}

func newPatientListCommand(out io.Writer, configPath *string) *cobra.Command {
	var (
		pageIndex int
		pageSize  int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List one page of the patient registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			patients, page, err := rt.store.Patients.ListPage(cmd.Context(), storage.PageRequest{
				Index: pageIndex,
				Size:  pageSize,
			})
			if err != nil {
				return err
			}

			if err := printPatients(out, patients); err != nil {
				return err
			}
			_, err = fmt.Fprintf(out, "rows %d-%d of %d (%d pages)\n",
				page.RangeStart, page.RangeEnd, page.TotalRows, page.TotalPages)
			return err
		},
	}

	cmd.Flags().IntVar(&pageIndex, "page", 0, "Zero-based page index")
	cmd.Flags().IntVar(&pageSize, "size", 10, "Rows per page")
	return cmd
}

func newPatientSearchCommand(out io.Writer, configPath *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search patients by name substring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := openRuntime(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer rt.close()

			patients, err := rt.store.Patients.SearchByName(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printPatients(out, patients)
		},
	}
	return cmd
}

func printPatients(out io.Writer, patients []model.Patient) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCEDULA\tAPELLIDO\tNOMBRE\tTELEFONO")
	for _, p := range patients {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", p.ID, p.Cedula, p.Apellido, p.Nombre, p.Telefono)
	}
	return w.Flush()
}

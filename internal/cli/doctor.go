package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check catalog connectivity and report counts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()
			if err := store.CheckConnectivity(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintf(out, "catalog: ok (%s)\n", c.cfg.Database.Driver)

			count, err := store.Count(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "tables:  %d\n", count)
			return nil
		},
	}
}

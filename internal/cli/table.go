package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/internal/discovery"
	"github.com/lakescan-io/lakescan/pkg/models"
)

func (c *CLI) newTableCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "table",
		Short: "Manage discovered tables",
	}
	cmd.AddCommand(
		c.newTableListCmd(),
		c.newTableDescribeCmd(),
		c.newTableDeleteCmd(),
	)
	return cmd
}

func (c *CLI) newTableListCmd() *cobra.Command {
	var formatFilter string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List discovered tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			format, err := catalog.ParseFormat(formatFilter)
			if err != nil {
				return err
			}

			engine := discovery.NewEngine(store, nil)
			names, err := engine.List(cmd.Context(), format)
			if err != nil {
				return err
			}

			if done, err := c.renderStructured(cmd.OutOrStdout(), names); done || err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no tables discovered")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatFilter, "format", "f", "", "filter by table format (iceberg, delta, hudi, parquet)")
	return cmd
}

func (c *CLI) newTableDescribeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "describe <name>",
		Short: "Show a discovered table's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			engine := discovery.NewEngine(store, nil)
			meta, err := engine.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			info := models.FromTableMetadata(meta)
			if done, err := c.renderStructured(cmd.OutOrStdout(), info); done || err != nil {
				return err
			}
			renderTable(cmd.OutOrStdout(), info)
			return nil
		},
	}
}

func (c *CLI) newTableDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a discovered table from the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			engine := discovery.NewEngine(store, nil)
			if err := engine.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			if !c.quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			}
			return nil
		},
	}
}

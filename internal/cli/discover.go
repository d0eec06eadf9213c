package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakescan-io/lakescan/internal/discovery"
	"github.com/lakescan-io/lakescan/internal/observability"
	"github.com/lakescan-io/lakescan/pkg/models"
)

func (c *CLI) newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover <uri>",
		Short: "Discover a table and register its metadata in the catalog",
		Long: `Discover detects the table format under the given object-store URI,
reads its native metadata, and stores the normalized result.

Example:
  lakescan discover s3://warehouse/sales/orders/`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, store, err := c.openCatalog(cmd)
			if err != nil {
				return err
			}
			defer db.Close()

			objStore, _, err := c.objectStoreFor(args[0])
			if err != nil {
				return err
			}

			var logger observability.DiscoveryLogger = observability.NewNoopLogger()
			if !c.quiet {
				logger = observability.NewJSONLogger(os.Stderr)
			}

			engine := discovery.NewEngine(store, logger)
			meta, err := engine.Discover(cmd.Context(), objStore, args[0])
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

// renderTable prints a table description in text form.
func renderTable(w io.Writer, info models.TableInfo) {
	fmt.Fprintf(w, "Table:       %s\n", info.Name)
	fmt.Fprintf(w, "Format:      %s\n", info.Format)
	fmt.Fprintf(w, "Location:    %s\n", info.Location)
	fmt.Fprintf(w, "Time travel: %v\n", info.SupportsTimeTravel)
	if len(info.Partitions) > 0 {
		fmt.Fprintf(w, "Partitions:  %s\n", strings.Join(info.Partitions, ", "))
	}
	if info.NumFiles != nil {
		fmt.Fprintf(w, "Files:       %d\n", *info.NumFiles)
	}
	if info.SizeBytes != nil {
		fmt.Fprintf(w, "Size:        %d bytes\n", *info.SizeBytes)
	}
	if info.RowCount != nil {
		fmt.Fprintf(w, "Rows:        %d\n", *info.RowCount)
	}

	fmt.Fprintf(w, "Columns (%d):\n", len(info.Columns))
	for _, col := range info.Columns {
		null := "NOT NULL"
		if col.Nullable {
			null = "NULL"
		}
		fmt.Fprintf(w, "  %-24s %-28s %s\n", col.Name, col.DataType, null)
	}

	if len(info.Properties) > 0 {
		fmt.Fprintf(w, "Properties (%d):\n", len(info.Properties))
		for _, key := range sortedKeys(info.Properties) {
			fmt.Fprintf(w, "  %s=%s\n", key, info.Properties[key])
		}
	}

	for _, warning := range info.Warnings {
		fmt.Fprintf(w, "warning [%s]: %s\n", warning.Kind, warning.Message)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lakescan-io/lakescan/internal/discovery"
)

func (c *CLI) newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <uri>",
		Short: "Summarize a datastore location without registering it",
		Long: `Inspect lists the objects under the URI and reports the detected
format, file count, total size and a per-extension histogram. Nothing is
persisted; unrecognized layouts report format "unknown" instead of failing.`,
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

			engine := discovery.NewEngine(store, nil)
			report, err := engine.Inspect(cmd.Context(), objStore, args[0])
			if err != nil {
				return err
			}

			if done, err := c.renderStructured(cmd.OutOrStdout(), report); done || err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Location: %s\n", report.URI)
			fmt.Fprintf(out, "Format:   %s\n", report.Format)
			fmt.Fprintf(out, "Files:    %d\n", report.FileCount)
			fmt.Fprintf(out, "Size:     %d bytes\n", report.TotalSizeBytes)
			if report.LastModified != nil {
				fmt.Fprintf(out, "Modified: %s\n", report.LastModified.UTC().Format("2006-01-02 15:04:05"))
			}
			if len(report.FileTypes) > 0 {
				fmt.Fprintln(out, "File types:")
				for _, ft := range report.SortedFileTypes() {
					fmt.Fprintf(out, "  %-12s %d\n", ft.Extension, ft.Count)
				}
			}
			return nil
		},
	}
}

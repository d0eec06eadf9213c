package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lakescan-io/lakescan/internal/capabilities"
	"github.com/lakescan-io/lakescan/internal/catalog"
	"github.com/lakescan-io/lakescan/pkg/models"
)

// displayNames maps format identifiers to their display names.
var displayNames = map[catalog.TableFormat]string{
	catalog.FormatIceberg: "Apache Iceberg",
	catalog.FormatDelta:   "Delta Lake",
	catalog.FormatHudi:    "Apache Hudi",
	catalog.FormatParquet: "Apache Parquet",
}

func (c *CLI) newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported table formats and their capabilities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []models.FormatInfo
			for _, format := range catalog.AllFormats() {
				caps := capabilities.GetFormatCapabilities(format)
				names := make([]string, 0, len(caps))
				for _, cap := range caps {
					names = append(names, cap.String())
				}
				infos = append(infos, models.FormatInfo{
					Format:       format.String(),
					Name:         displayNames[format],
					Lakehouse:    format.IsLakehouse(),
					Capabilities: names,
				})
			}

			if done, err := c.renderStructured(cmd.OutOrStdout(), infos); done || err != nil {
				return err
			}
			for _, info := range infos {
				fmt.Fprintf(cmd.OutOrStdout(), "%-10s %-16s %s\n",
					info.Format, info.Name, strings.Join(info.Capabilities, ","))
			}
			return nil
		},
	}
}

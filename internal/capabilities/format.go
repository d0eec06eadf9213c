package capabilities

import (
	"github.com/lakescan-io/lakescan/internal/catalog"
)

// FormatCapabilities maps table formats to the capabilities they can
// support. This is the static upper bound: a concrete table may lack a
// capability the format allows (a Hudi table with a single commit has no
// history to travel to), but never the reverse.
var FormatCapabilities = map[catalog.TableFormat][]Capability{
	catalog.FormatIceberg: {
		CapabilityRead,
		CapabilityTimeTravel,
		CapabilitySnapshotQuery,
		CapabilitySchemaEvolution,
		CapabilityPartitionPruning,
	},
	catalog.FormatDelta: {
		CapabilityRead,
		CapabilityTimeTravel,
		CapabilityVersionQuery,
		CapabilitySchemaEvolution,
		CapabilityPartitionPruning,
	},
	catalog.FormatHudi: {
		CapabilityRead,
		CapabilityTimeTravel,
		CapabilityIncrementalQuery,
		CapabilityPartitionPruning,
	},
	catalog.FormatParquet: {
		CapabilityRead,
		// No time-travel for raw Parquet.
	},
	catalog.FormatUnknown: {
		CapabilityRead,
	},
}

// GetFormatCapabilities returns the capabilities for a table format.
func GetFormatCapabilities(format catalog.TableFormat) []Capability {
	caps, ok := FormatCapabilities[format]
	if !ok {
		return FormatCapabilities[catalog.FormatUnknown]
	}
	return caps
}

// FormatSupportsCapability checks if a format supports a specific capability.
func FormatSupportsCapability(format catalog.TableFormat, cap Capability) bool {
	for _, c := range GetFormatCapabilities(format) {
		if c == cap {
			return true
		}
	}
	return false
}

// FormatSupportsTimeTravel checks if a format can support time-travel reads.
func FormatSupportsTimeTravel(format catalog.TableFormat) bool {
	return FormatSupportsCapability(format, CapabilityTimeTravel)
}

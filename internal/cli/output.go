package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// renderStructured writes v as JSON or YAML per the --output flag.
// Returns false when the flag selects text, leaving rendering to the
// command.
func (c *CLI) renderStructured(w io.Writer, v any) (bool, error) {
	switch c.output {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return true, enc.Encode(v)
	case "text", "":
		return false, nil
	default:
		return false, fmt.Errorf("unknown output format %q (valid: text, json, yaml)", c.output)
	}
}

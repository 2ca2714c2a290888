package cmd

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/postalworks/imbgen/internal/imb"
)

// stidsCmd lists the service type identifiers known to the encoder.
var stidsCmd = &cobra.Command{
	Use:   "stids",
	Short: "List known service type identifiers",
	Long: `List the service type identifiers (STIDs) the encoder accepts,
including any additions from the configuration file.

Examples:
  imbgen stids
  imbgen stids --format json`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		enc := imb.New(imb.Options{ServiceTypes: mergedServiceTypes(cfg.Encode.ServiceTypes)})
		stids := enc.ServiceTypes()

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "", "text":
			keys := make([]string, 0, len(stids))
			for k := range stids {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", k, stids[k])
			}
		case "json":
			data, err := json.MarshalIndent(stids, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal service types: %w", err)
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), string(data))
		default:
			return fmt.Errorf("unsupported output format: %s (must be text or json)", format)
		}
		return nil
	},
}

// mergedServiceTypes extends the built-in registry with config additions.
// Returns nil when there is nothing to add.
func mergedServiceTypes(additions map[string]string) map[string]string {
	if len(additions) == 0 {
		return nil
	}
	merged := make(map[string]string, len(imb.DefaultServiceTypes)+len(additions))
	for k, v := range imb.DefaultServiceTypes {
		merged[k] = v
	}
	for k, v := range additions {
		merged[k] = v
	}
	return merged
}

func init() {
	rootCmd.AddCommand(stidsCmd)
	stidsCmd.Flags().StringP("format", "f", "text", "output format: text, json")
}

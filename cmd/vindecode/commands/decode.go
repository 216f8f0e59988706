package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Shekel-Africa/vin-package-sub000/internal/decode"
	"github.com/Shekel-Africa/vin-package-sub000/internal/merge"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/requestcontext"
	"github.com/Shekel-Africa/vin-package-sub000/pkg/vehicle"
)

func (c *CLI) newDecodeCmd() *cobra.Command {
	var (
		skipCache    bool
		forceRefresh bool
		localOnly    bool
		legacy       bool
		newest       bool
		asJSON       bool
		strategy     string
		mergeMode    string
	)

	cmd := &cobra.Command{
		Use:   "decode <identifier>",
		Short: "Decode an identifier through the source chain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := requestcontext.WithCaller(cmd.Context(), "cli")

			eng, err := c.buildEngine(ctx, engineOptions{
				strategy:  strategy,
				mergeMode: mergeMode,
				newest:    newest,
				legacy:    legacy,
			})
			if err != nil {
				return err
			}
			defer eng.close()

			var rec merge.Record
			if localOnly {
				rec, err = eng.orch.DecodeLocal(ctx, args[0])
			} else {
				rec, err = eng.orch.Decode(ctx, args[0], decode.Options{
					SkipCache:    skipCache,
					ForceRefresh: forceRefresh,
				})
			}
			if err != nil {
				return err
			}
			return writeRecord(cmd.OutOrStdout(), rec, asJSON)
		},
	}

	cmd.Flags().BoolVar(&skipCache, "skip-cache", false, "bypass the merged-record cache entirely")
	cmd.Flags().BoolVar(&forceRefresh, "force-refresh", false, "re-decode even when a cached record exists")
	cmd.Flags().BoolVar(&localOnly, "local", false, "decode offline from the reference tables only")
	cmd.Flags().BoolVar(&legacy, "legacy", false, "use the historical remote-plus-fallback pipeline")
	cmd.Flags().BoolVar(&newest, "newest", false, "resolve fields by most recent source instead of the static priorities")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full record as JSON")
	cmd.Flags().StringVar(&strategy, "strategy", "", "chain strategy: fail_fast or collect_all")
	cmd.Flags().StringVar(&mergeMode, "merge", "", "merge strategy: priority, best_effort or complete")

	return cmd
}

// writeRecord renders a decoded record: indented JSON with --json, otherwise
// the standard fields in canonical order plus a provenance line.
func writeRecord(w io.Writer, rec merge.Record, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rec)
	}

	for _, field := range vehicle.StandardFields {
		if v, ok := rec[field]; ok {
			fmt.Fprintf(w, "%-14s %v\n", field+":", v)
		}
	}

	// Records fresh off a decode carry the metadata struct; records served
	// from the cache carry its unmarshalled map form.
	switch meta := rec[merge.FieldCacheMetadata].(type) {
	case merge.CacheMetadata:
		fmt.Fprintf(w, "%-14s %s\n", "sources:", strings.Join(meta.Sources, ", "))
		if meta.DecodedBy != "" {
			fmt.Fprintf(w, "%-14s %s\n", "decoded_by:", meta.DecodedBy)
		}
	case map[string]any:
		if raw, ok := meta["sources"].([]any); ok {
			names := make([]string, 0, len(raw))
			for _, s := range raw {
				if name, ok := s.(string); ok {
					names = append(names, name)
				}
			}
			fmt.Fprintf(w, "%-14s %s\n", "sources:", strings.Join(names, ", "))
		}
		if by, ok := meta["decoded_by"].(string); ok && by != "" {
			fmt.Fprintf(w, "%-14s %s\n", "decoded_by:", by)
		}
	}
	return nil
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/domain"
	"github.com/Gopalvamsikrishna/SupplyChainTrack/internal/query"
)

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(opts *RootOptions, newEnv EnvironmentFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <batchId>",
		Short: "Print the provenance timeline and risk verdict of a batch",
		Long: `Print the reconciled provenance timeline of a batch: its registration,
custody handoffs, sensor readings and the risk verdict.

With --format json the output is the same document GET /verify/:batchId returns.

Examples:
  provenance-cli verify 42
  provenance-cli verify 42 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, opts, newEnv, func(ctx context.Context, env Environment) error {
				resp, err := env.Query().Verify(ctx, args[0])
				if err != nil {
					if errors.Is(err, domain.ErrInvalidBatchID) {
						return WrapExitError(ExitCommandError, "invalid batch id", err)
					}
					return WrapExitError(ExitFailure, "failed to verify batch", err)
				}

				if opts.Format == "json" {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				return writeVerifyText(cmd.OutOrStdout(), args[0], resp)
			})
		},
	}
}

func writeVerifyText(out io.Writer, batchID string, resp *query.VerifyResponse) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	if resp.Batch == nil {
		fmt.Fprintf(w, "Batch %s\tnot registered\n", batchID)
	} else {
		fmt.Fprintf(w, "Batch %s\tregistered %s\n", resp.Batch.BatchID, formatUnix(resp.Batch.CreatedAt))
		fmt.Fprintf(w, "Manufacturer\t%s\n", displayName(resp.Batch.ManufacturerName, resp.Batch.Manufacturer))
		if resp.Batch.ContentRef != nil {
			fmt.Fprintf(w, "Content\t%s\n", *resp.Batch.ContentRef)
		}
	}
	fmt.Fprintf(w, "Risk\t%d (%s)\n", resp.Risk.Score, resp.Risk.Label)
	for _, reason := range resp.Risk.Reasons {
		fmt.Fprintf(w, "\t- %s\n", reason)
	}

	fmt.Fprintf(w, "\nHandoffs (%d)\n", len(resp.Handoffs))
	for _, h := range resp.Handoffs {
		fmt.Fprintf(w, "  %s\t%s\t->\t%s\n",
			formatUnix(h.Time),
			displayName(h.FromName, &h.FromAddr),
			displayName(h.ToName, &h.ToAddr))
	}

	fmt.Fprintf(w, "\nSensors (%d)\n", len(resp.Sensors))
	for _, s := range resp.Sensors {
		anchored := "unanchored"
		if s.Time != nil {
			anchored = formatUnix(*s.Time)
		}
		temp := "-"
		if s.TempC != nil {
			temp = fmt.Sprintf("%.2fC", *s.TempC)
		}
		match := "no payload"
		if s.PayloadHashMatch != nil {
			match = "hash mismatch"
			if *s.PayloadHashMatch {
				match = "hash ok"
			}
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n", s.ShortHash, anchored, displayName(s.SignerName, s.Signer), temp, match)
	}

	return w.Flush()
}

func displayName(name *string, address *string) string {
	if name != nil && *name != "" {
		return *name
	}
	if address != nil && *address != "" {
		return *address
	}
	return "-"
}

func formatUnix(ts int64) string {
	return time.Unix(ts, 0).UTC().Format(time.RFC3339)
}

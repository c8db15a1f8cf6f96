package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/internal/report"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pending queues and the local schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withClient(cmd, func(ctx context.Context, c client.Client) error {
				status, err := c.Status(ctx)
				if err != nil {
					return err
				}
				return rootOpts.print(cmd, status, formatStatus(status))
			})
		},
	}
}

func formatStatus(status models.SyncStatusResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "app version:    %s\n", status.AppVersion)
	fmt.Fprintf(&b, "schema version: %d\n", status.SchemaVersion)

	if len(status.Pending) == 0 {
		b.WriteString("pending:        none")
	} else {
		names := make([]string, 0, len(status.Pending))
		for _, s := range status.Pending {
			names = append(names, string(s))
		}
		fmt.Fprintf(&b, "pending:        %s", strings.Join(names, ", "))
	}

	stores := make([]schema.StoreName, 0, len(status.Indicators))
	for s := range status.Indicators {
		stores = append(stores, s)
	}
	slices.Sort(stores)
	for _, s := range stores {
		fmt.Fprintf(&b, "\n%s %s", report.Glyph(status.Indicators[s]), s)
	}

	return b.String()
}

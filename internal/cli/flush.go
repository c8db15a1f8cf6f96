package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// NewFlushErrorsCommand creates the flush-errors command.
func NewFlushErrorsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "flush-errors",
		Short: "Send queued error reports to the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withClient(cmd, func(ctx context.Context, c client.Client) error {
				sent, err := c.FlushErrors(ctx)
				if printErr := rootOpts.print(cmd, models.FlushResponse{Sent: sent}, fmt.Sprintf("sent %d error reports", sent)); printErr != nil {
					return printErr
				}
				return err
			})
		},
	}
}

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/internal/report"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// NewPushCommand creates the push command.
func NewPushCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "push",
		Short: "Back up pending local changes to the server",
		Long: `Sends every non-empty mutation queue to the server, store by store,
and removes the records the server acknowledged.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withClient(cmd, func(ctx context.Context, c client.Client) error {
				return runPush(ctx, cmd, rootOpts, c)
			})
		},
	}
}

func runPush(ctx context.Context, cmd *cobra.Command, opts *RootOptions, c client.Client) error {
	var result models.BackupResult
	err := opts.watch(ctx, cmd, c, "Backup", func(ctx context.Context) error {
		var pushErr error
		result, pushErr = c.Push(ctx)
		return pushErr
	})

	if printErr := opts.print(cmd, result, report.RenderBackup(result)); printErr != nil {
		return printErr
	}
	if err != nil {
		return err
	}
	if !result.OK {
		return ErrSyncFailed
	}
	return nil
}

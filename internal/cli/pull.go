package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/internal/report"
	"github.com/MKhiriev/go-farrier-sync/internal/schema"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// NewPullCommand creates the pull command.
func NewPullCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "pull [tables...]",
		Short: "Replace local mirrors with the server snapshot",
		Long: `Downloads the server snapshot of the given tables and replaces the
local mirrors with it. Without arguments every table is pulled.`,
		ValidArgs: tableNames(),
		Args:      cobra.OnlyValidArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootOpts.withClient(cmd, func(ctx context.Context, c client.Client) error {
				return runPull(ctx, cmd, rootOpts, c, args)
			})
		},
	}
}

func runPull(ctx context.Context, cmd *cobra.Command, opts *RootOptions, c client.Client, args []string) error {
	var tables []schema.Table
	for _, arg := range args {
		tables = append(tables, schema.Table(arg))
	}

	var result models.TransferResult
	err := opts.watch(ctx, cmd, c, "Transfer", func(ctx context.Context) error {
		var pullErr error
		result, pullErr = c.Pull(ctx, tables)
		return pullErr
	})

	if printErr := opts.print(cmd, result, report.RenderTransfer(result)); printErr != nil {
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

func tableNames() []string {
	tables := schema.Tables()
	names := make([]string, 0, len(tables))
	for _, t := range tables {
		names = append(names, string(t))
	}
	return names
}

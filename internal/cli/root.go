// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package cli is the command line of the sync client. Every command but
// version opens the local database through a [ClientFactory], runs, and
// closes it again.
package cli

import (
	"context"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/models"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = []string{"text", "json"}

// ClientFactory opens a client for the resolved configuration.
type ClientFactory func(ctx context.Context, cfg *config.ClientConfig, logger *logger.Logger) (client.Client, error)

// RootOptions holds the global flags shared by all commands.
type RootOptions struct {
	Format string
	Plain  bool

	build     models.AppBuildInfo
	newClient ClientFactory
	logger    *logger.Logger
}

// NewRootCommand creates the root command.
func NewRootCommand(build models.AppBuildInfo, newClient ClientFactory) *cobra.Command {
	opts := &RootOptions{build: build, newClient: newClient, logger: logger.Nop()}

	cmd := &cobra.Command{
		Use:           "farrier-sync",
		Short:         "Offline-first sync for the farrier tracker",
		Long:          "Keeps the farrier tracker data in a local database and syncs it with the server when a network is available.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return fmt.Errorf("%w %q: must be one of %v", ErrInvalidFormat, opts.Format, ValidFormats)
			}
			return nil
		},
	}

	config.AddFlags(cmd.PersistentFlags())
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json)")
	cmd.PersistentFlags().BoolVar(&opts.Plain, "plain", false, "disable the live progress view")

	cmd.AddCommand(NewPushCommand(opts))
	cmd.AddCommand(NewPullCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewFlushErrorsCommand(opts))
	cmd.AddCommand(NewVersionCommand(opts))

	return cmd
}

// withClient opens a client from the merged configuration, runs fn with it
// and closes it.
func (o *RootOptions) withClient(cmd *cobra.Command, fn func(ctx context.Context, c client.Client) error) error {
	cfg, err := config.GetClientConfig(cmd.Flags())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if o.build.Known() {
		cfg.App.Version = o.build.BuildVersion()
	}

	o.logger = logger.NewClientLogger("farrier-sync", cfg.Log)

	c, err := o.newClient(cmd.Context(), cfg, o.logger)
	if err != nil {
		return fmt.Errorf("open client: %w", err)
	}
	defer func() {
		if closeErr := c.Close(); closeErr != nil {
			o.logger.Err(closeErr).Msg("error closing client")
		}
	}()

	return fn(cmd.Context(), c)
}

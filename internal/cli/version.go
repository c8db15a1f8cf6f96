package cli

import (
	"github.com/spf13/cobra"
)

type versionInfo struct {
	Version string `json:"version"`
	Date    string `json:"date"`
	Commit  string `json:"commit"`
}

// NewVersionCommand creates the version command. It needs no configuration.
func NewVersionCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := versionInfo{
				Version: rootOpts.build.BuildVersion(),
				Date:    rootOpts.build.BuildDate(),
				Commit:  rootOpts.build.BuildCommit(),
			}
			return rootOpts.print(cmd, info, rootOpts.build.String())
		},
	}
}

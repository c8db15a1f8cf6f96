package cli

import (
	"context"
	"encoding/json"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/internal/tui"
)

// print writes v as indented JSON, or text otherwise.
func (o *RootOptions) print(cmd *cobra.Command, v any, text string) error {
	if o.Format == "json" {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}

	_, err := fmt.Fprintln(cmd.OutOrStdout(), text)
	return err
}

// watch runs run under the live indicator view. The view is skipped for
// --plain and for JSON output.
func (o *RootOptions) watch(ctx context.Context, cmd *cobra.Command, c client.Client, title string, run tui.Runner) error {
	if o.Plain || o.Format == "json" {
		return run(ctx)
	}
	return tui.RunIndicators(ctx, c.Indicators(), title, run,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.ErrOrStderr()),
	)
}

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/MKhiriev/go-farrier-sync/internal/cli"
	"github.com/MKhiriev/go-farrier-sync/internal/client"
	"github.com/MKhiriev/go-farrier-sync/internal/config"
	"github.com/MKhiriev/go-farrier-sync/internal/logger"
	"github.com/MKhiriev/go-farrier-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	build := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	root := cli.NewRootCommand(build, func(ctx context.Context, cfg *config.ClientConfig, log *logger.Logger) (client.Client, error) {
		app, err := client.NewApp(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return app, nil
	})

	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

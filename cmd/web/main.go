// Command web serves the SaaS metrics report upload page, the report API and
// the live report-state feed.
package main

import (
	"log/slog"
	"os"

	"saaspulse/internal/app"
)

func main() {
	application, err := app.NewApplication()
	if err != nil {
		slog.Error("Failed to create application", "error", err)
		os.Exit(1)
	}

	if err := application.Run(); err != nil {
		application.Logger.Error("Application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

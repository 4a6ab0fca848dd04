package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yungbote/geograph/internal/app"
	"github.com/yungbote/geograph/internal/platform/shutdown"
)

func main() {
	var graphContext, exportPath string
	var exportOnly bool
	flag.StringVar(&graphContext, "context", "", "InfraNodus context to import (default: import.context)")
	flag.StringVar(&exportPath, "export", "", "also write a JSON snapshot of the context to this path")
	flag.BoolVar(&exportOnly, "export-only", false, "write the snapshot and skip the import")
	flag.Parse()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if graphContext == "" {
		graphContext = a.Cfg.Import.Context
	}
	if exportOnly && exportPath == "" {
		exportPath = filepath.Join(a.Cfg.OutputDir, "infranodus_export.json")
	}
	if exportPath != "" {
		if _, err := a.InfraNodus.Login(ctx); err != nil {
			a.Log.Warn("infranodus login failed", "error", err)
		}
		if _, err := a.InfraNodus.Export(ctx, graphContext, exportPath); err != nil {
			a.Log.Error("export failed", "error", err, "path", exportPath)
			if exportOnly {
				a.Close()
				os.Exit(1)
			}
		}
	}
	if exportOnly {
		return
	}

	stats, err := a.Importer.ImportFullDataset(ctx, graphContext)
	if path, serr := stats.Save(a.Cfg.OutputDir); serr != nil {
		a.Log.Warn("stats not saved", "error", serr)
	} else {
		a.Log.Info("stats saved", "path", path)
	}
	if err != nil {
		a.Log.Error("import failed", "error", err, "context", graphContext)
		a.Close()
		os.Exit(1)
	}

	fmt.Printf("Imported context %s (run %s)\n", stats.Context, stats.RunID)
	fmt.Printf("  keywords:       %d\n", stats.Keywords)
	fmt.Printf("  topic clusters: %d\n", stats.Clusters)
	fmt.Printf("  cluster links:  %d\n", stats.ClusterLinks)
	fmt.Printf("  co-occurrences: %d\n", stats.CoOccurrences)
	fmt.Printf("  gaps:           %d\n", stats.Gaps)
	fmt.Printf("  prompts:        %d\n", stats.Prompts)
	if stats.FetchError != "" {
		fmt.Printf("  warning: graph fetch failed: %s\n", stats.FetchError)
	}
}

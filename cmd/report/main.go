package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/geograph/internal/app"
	"github.com/yungbote/geograph/internal/monitoring"
	"github.com/yungbote/geograph/internal/platform/shutdown"
)

func main() {
	var healthOnly bool
	flag.BoolVar(&healthOnly, "health", false, "print the health check and exit")
	flag.Parse()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	if healthOnly {
		h, err := a.Monitor.CheckHealth(ctx)
		if err != nil {
			a.Log.Error("health check failed", "error", err)
			a.Close()
			os.Exit(1)
		}
		fmt.Printf("Health score: %.0f%%  neo4j=%s infranodus=%s nodes=%d\n",
			h.HealthScore, h.Neo4jStatus, h.InfraNodusStatus, h.TotalNodes)
		if a.Snapshots != nil {
			if err := a.Snapshots.SaveHealth(ctx, h); err != nil {
				a.Log.Warn("health snapshot not stored", "error", err)
			}
		}
		return
	}

	report, err := a.Monitor.WeeklyReport(ctx)
	if err != nil {
		a.Log.Error("weekly report failed", "error", err)
		a.Close()
		os.Exit(1)
	}
	mdPath, jsonPath, err := monitoring.SaveReport(a.Cfg.OutputDir, report)
	if err != nil {
		a.Log.Error("save report failed", "error", err)
		a.Close()
		os.Exit(1)
	}
	if a.Snapshots != nil {
		if err := a.Snapshots.SaveReport(ctx, report); err != nil {
			a.Log.Warn("report snapshot not stored", "error", err)
		}
	}

	fmt.Print(monitoring.RenderMarkdown(report))
	fmt.Printf("\nSaved %s and %s\n", mdPath, jsonPath)
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/yungbote/geograph/internal/app"
	"github.com/yungbote/geograph/internal/platform/shutdown"
)

func main() {
	var graphContext string
	flag.StringVar(&graphContext, "context", "", "InfraNodus context to build (default: acquisition.context)")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: acquire [-context name] URL...\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	urls := flag.Args()
	if len(urls) == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	stats := a.Acquisition.Run(ctx, urls, graphContext)
	out, _ := json.MarshalIndent(stats, "", "  ")
	fmt.Println(string(out))
	if len(stats.Errors) > 0 {
		a.Close()
		os.Exit(1)
	}
}

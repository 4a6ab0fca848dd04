package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yungbote/geograph/internal/app"
	"github.com/yungbote/geograph/internal/graphrag"
	"github.com/yungbote/geograph/internal/platform/shutdown"
)

// ask answers the question given as arguments, or one question per line on
// stdin when there are none.
func main() {
	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	a, err := app.New(ctx)
	if err != nil {
		fmt.Printf("init app: %v\n", err)
		os.Exit(1)
	}
	defer a.Close()

	answer := func(q string) {
		ans, err := a.Answerer.Answer(ctx, q)
		if err != nil {
			a.Log.Error("answer failed", "error", err)
			return
		}
		fmt.Println(graphrag.Format(ans))
		fmt.Println()
	}

	if len(os.Args) > 1 {
		answer(strings.Join(os.Args[1:], " "))
		return
	}
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		if q := strings.TrimSpace(sc.Text()); q != "" {
			answer(q)
		}
		if ctx.Err() != nil {
			return
		}
	}
}

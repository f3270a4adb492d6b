package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/yungbote/shopgraph/internal/app"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

func main() {
	schedule := flag.String("schedule", "", "cron spec; run on this schedule instead of once (overrides ETL_SCHEDULE)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.NewETL(ctx)
	if err != nil {
		fmt.Printf("failed to initialize etl: %v\n", err)
		os.Exit(1)
	}

	spec := strings.TrimSpace(*schedule)
	if spec == "" {
		spec = a.Cfg.ETLSchedule
	}
	if spec != "" {
		err = a.RunScheduled(ctx, spec)
	} else {
		report, runErr := a.RunOnce(ctx)
		if err = runErr; err == nil {
			a.Log.Info("etl finished", "run_id", report.RunID, "nodes", report.Load.NodeTotal(), "edges", report.Load.EdgeTotal(), "duration", report.Duration.String())
		}
	}
	if err != nil {
		a.Log.Error("etl failed", "error", err, "kind", string(pkgerrors.KindOf(err)), "transient", pkgerrors.Transient(err))
		a.Close()
		os.Exit(1)
	}
	a.Close()
}

package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/yungbote/shopgraph/internal/etl"
	"github.com/yungbote/shopgraph/internal/observability"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type ETLApp struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  *Clients
	Pipeline *etl.Pipeline

	shutdownOtel func(context.Context) error
}

func NewETL(ctx context.Context) (*ETLApp, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	shutdownOtel := observability.InitOTel(ctx, log, cfg.Otel)

	clients, err := wireClients(ctx, log, cfg, true)
	if err != nil {
		log.Sync()
		return nil, err
	}
	pipeline, err := clients.Pipeline(log, cfg)
	if err != nil {
		clients.Close(ctx)
		log.Sync()
		return nil, err
	}
	return &ETLApp{Log: log, Cfg: cfg, Clients: clients, Pipeline: pipeline, shutdownOtel: shutdownOtel}, nil
}

func (a *ETLApp) RunOnce(ctx context.Context) (*etl.Report, error) {
	return a.Pipeline.Run(ctx)
}

// RunScheduled runs the pipeline on spec until ctx is canceled. Overlapping
// ticks are skipped, and a run that finds another holder of the run lock is
// logged and left for the next tick.
func (a *ETLApp) RunScheduled(ctx context.Context, spec string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(spec, func() {
		report, err := a.Pipeline.Run(ctx)
		switch {
		case err == nil:
			a.Log.Info("scheduled etl run complete", "run_id", report.RunID, "nodes", report.Load.NodeTotal(), "edges", report.Load.EdgeTotal())
		case pkgerrors.KindOf(err) == pkgerrors.KindRunInProgress:
			a.Log.Warn("scheduled etl run skipped; another run holds the lock")
		default:
			a.Log.Error("scheduled etl run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	a.Log.Info("etl scheduler started", "schedule", spec)
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	a.Log.Info("etl scheduler stopped")
	return nil
}

func (a *ETLApp) Close() {
	if a == nil {
		return
	}
	ctx := context.Background()
	a.Clients.Close(ctx)
	if a.shutdownOtel != nil {
		_ = a.shutdownOtel(ctx)
	}
	a.Log.Sync()
}

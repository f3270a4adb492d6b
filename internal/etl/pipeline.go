// Package etl materializes the relational commerce tables as a property
// graph: extract every table, map rows to graph writes, then load them in
// two ordered phases.
package etl

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/data/source"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	"github.com/yungbote/shopgraph/internal/observability"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
	"github.com/yungbote/shopgraph/internal/platform/redislock"
)

type Source interface {
	Ping(ctx context.Context) error
	ExtractAll(ctx context.Context, specs []source.TableSpec) (map[string]*source.Table, error)
}

type Locker interface {
	Acquire(ctx context.Context, ttl time.Duration) (func(context.Context) error, error)
}

type TableBinding struct {
	Role Role
	Spec source.TableSpec
}

// DefaultBindings lists the commerce tables in mapping order.
func DefaultBindings(includeEvents bool) []TableBinding {
	b := []TableBinding{
		{Role: RoleCustomers, Spec: source.TableSpec{Name: "customers", Required: []string{"id", "name"}}},
		{Role: RoleCategories, Spec: source.TableSpec{Name: "categories", Required: []string{"id", "name"}}},
		{Role: RoleProducts, Spec: source.TableSpec{Name: "products", Required: []string{"id", "name", "price", "category_id"}}},
		{Role: RoleOrders, Spec: source.TableSpec{Name: "orders", Required: []string{"id", "customer_id"}}},
		{Role: RoleOrderItems, Spec: source.TableSpec{
			Name:     "order_items",
			Required: []string{"order_id", "product_id", "quantity"},
			OrderBy:  []string{"order_id", "product_id"},
		}},
	}
	if includeEvents {
		b = append(b, TableBinding{Role: RoleEvents, Spec: source.TableSpec{
			Name:     "events",
			Required: []string{"id", "customer_id", "product_id", "event_type"},
		}})
	}
	return b
}

type Config struct {
	BatchSize     int
	IncludeEvents bool
	LockTTL       time.Duration
	Readiness     ReadinessConfig
}

func DefaultConfig() Config {
	return Config{
		BatchSize:     DefaultBatchSize,
		IncludeEvents: true,
		LockTTL:       30 * time.Minute,
		Readiness:     DefaultReadinessConfig(),
	}
}

type Report struct {
	RunID         string         `json:"run_id"`
	StartedAt     time.Time      `json:"started_at"`
	Duration      time.Duration  `json:"duration"`
	RowsExtracted map[string]int `json:"rows_extracted"`
	Instructions  int            `json:"instructions"`
	Load          *LoadReport    `json:"load"`
}

type Pipeline struct {
	src    Source
	store  graph.Writer
	lock   Locker
	schema graphschema.Schema
	cfg    Config
	log    *logger.Logger
}

// NewPipeline wires a run. lock may be nil when only one runner exists.
func NewPipeline(src Source, store graph.Writer, lock Locker, cfg Config, log *logger.Logger) *Pipeline {
	if log == nil {
		log = logger.Nop()
	}
	return &Pipeline{
		src:    src,
		store:  store,
		lock:   lock,
		schema: graphschema.Default(),
		cfg:    cfg,
		log:    log.With("component", "Pipeline"),
	}
}

// Run performs one full, idempotent materialization. Any error aborts the
// run; the graph may then hold a partial entity phase, which the next
// successful run converges.
func (p *Pipeline) Run(ctx context.Context) (report *Report, err error) {
	runID := uuid.NewString()
	started := time.Now()
	log := p.log.With("run_id", runID)

	ctx, span := observability.StartSpan(ctx, "etl.run", attribute.String("etl.run_id", runID))
	defer func() {
		status := "success"
		if err != nil {
			status = string(pkgerrors.KindOf(err))
			if status == "" {
				status = "error"
			}
			log.Error("etl run failed", "error", err, "kind", status, "duration", time.Since(started).String())
		}
		observability.RecordETLRun(status, time.Since(started))
		observability.EndSpan(span, err)
	}()

	log.Info("etl run starting", "include_events", p.cfg.IncludeEvents, "batch_size", p.cfg.BatchSize)

	if err := p.phase(ctx, "readiness", func(ctx context.Context) error {
		if err := WaitForStore(ctx, p.store, p.cfg.Readiness, log); err != nil {
			return err
		}
		return WaitForSource(ctx, p.src, p.cfg.Readiness, log)
	}); err != nil {
		return nil, err
	}

	if p.lock != nil {
		release, err := p.lock.Acquire(ctx, p.cfg.LockTTL)
		if err != nil {
			if errors.Is(err, redislock.ErrLockHeld) {
				return nil, pkgerrors.New(pkgerrors.KindRunInProgress, "etl.run", err)
			}
			return nil, err
		}
		defer func() {
			if rerr := release(context.Background()); rerr != nil {
				log.Warn("release run lock failed", "error", rerr)
			}
		}()
	}

	if err := p.phase(ctx, "schema", func(ctx context.Context) error {
		return InitSchema(ctx, p.store, p.schema)
	}); err != nil {
		return nil, err
	}

	bindings := DefaultBindings(p.cfg.IncludeEvents)
	var tables map[string]*source.Table
	if err := p.phase(ctx, "extract", func(ctx context.Context) error {
		specs := make([]source.TableSpec, 0, len(bindings))
		for _, b := range bindings {
			specs = append(specs, b.Spec)
		}
		var err error
		tables, err = p.src.ExtractAll(ctx, specs)
		return err
	}); err != nil {
		return nil, err
	}

	report = &Report{RunID: runID, StartedAt: started.UTC(), RowsExtracted: map[string]int{}}
	for name, t := range tables {
		report.RowsExtracted[name] = len(t.Rows)
		observability.ETLRowsExtracted.WithLabelValues(name).Add(float64(len(t.Rows)))
	}

	var plan *Plan
	if err := p.phase(ctx, "map", func(ctx context.Context) error {
		instrs, err := mapTables(bindings, tables)
		if err != nil {
			return err
		}
		report.Instructions = len(instrs)
		plan, err = BuildPlan(instrs)
		return err
	}); err != nil {
		return nil, err
	}

	if err := p.phase(ctx, "load", func(ctx context.Context) error {
		var err error
		report.Load, err = NewLoader(p.store, p.cfg.BatchSize, log).Load(ctx, plan)
		return err
	}); err != nil {
		return nil, err
	}

	report.Duration = time.Since(started)
	log.Info("etl run complete",
		"nodes", report.Load.NodeTotal(),
		"edges", report.Load.EdgeTotal(),
		"instructions", report.Instructions,
		"duration", report.Duration.String(),
	)
	return report, nil
}

func (p *Pipeline) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := observability.StartSpan(ctx, "etl."+name)
	start := time.Now()
	err := fn(ctx)
	observability.RecordETLPhase(name, time.Since(start))
	observability.EndSpan(span, err)
	if err != nil {
		observability.ReportDataQuality(ctx, p.log, name, err, nil)
	}
	return err
}

// mapTables maps bindings in order, rows in extraction order.
func mapTables(bindings []TableBinding, tables map[string]*source.Table) ([]Instruction, error) {
	var out []Instruction
	for _, b := range bindings {
		t := tables[b.Spec.Name]
		if t == nil {
			return nil, pkgerrors.Newf(pkgerrors.KindSchemaMismatch, "etl.map", "table %q was not extracted", b.Spec.Name)
		}
		for _, row := range t.Rows {
			instrs, err := MapRow(b.Role, row)
			if err != nil {
				return nil, err
			}
			out = append(out, instrs...)
		}
	}
	return out, nil
}

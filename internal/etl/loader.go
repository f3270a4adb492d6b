package etl

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	"github.com/yungbote/shopgraph/internal/observability"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

const DefaultBatchSize = 500

type LoadReport struct {
	Nodes map[graphschema.Label]int   `json:"nodes"`
	Edges map[graphschema.RelType]int `json:"edges"`
}

func (r *LoadReport) NodeTotal() int {
	n := 0
	for _, c := range r.Nodes {
		n += c
	}
	return n
}

func (r *LoadReport) EdgeTotal() int {
	n := 0
	for _, c := range r.Edges {
		n += c
	}
	return n
}

type Loader struct {
	store     graph.Writer
	batchSize int
	log       *logger.Logger
}

func NewLoader(store graph.Writer, batchSize int, log *logger.Logger) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Loader{store: store, batchSize: batchSize, log: log.With("component", "Loader")}
}

// Load writes plan in two phases: all nodes (labels in parallel), then all
// edges. Edges never start before every node write has finished.
func (l *Loader) Load(ctx context.Context, plan *Plan) (*LoadReport, error) {
	if err := plan.CheckEndpoints(); err != nil {
		return nil, err
	}
	report := &LoadReport{
		Nodes: map[graphschema.Label]int{},
		Edges: map[graphschema.RelType]int{},
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, label := range graphschema.Labels() {
		label := label
		rows := plan.Nodes[label]
		if len(rows) == 0 {
			continue
		}
		g.Go(func() error {
			written := 0
			for _, chunk := range chunks(rows, l.batchSize) {
				n, err := l.store.UpsertNodes(gctx, label, chunk)
				if err != nil {
					return fmt.Errorf("load %s nodes: %w", label, err)
				}
				written += n
				observability.ETLGraphWrites.WithLabelValues("node", string(label)).Add(float64(n))
			}
			mu.Lock()
			report.Nodes[label] = written
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	l.log.Debug("entity phase complete", "nodes", report.NodeTotal())

	for _, rel := range graphschema.Rels() {
		rows := plan.Edges[rel.Type]
		if len(rows) == 0 {
			continue
		}
		written := 0
		for _, chunk := range chunks(rows, l.batchSize) {
			n, err := l.store.UpsertEdges(ctx, rel, chunk)
			if err != nil {
				return nil, fmt.Errorf("load %s edges: %w", rel.Type, err)
			}
			if n < len(chunk) {
				return nil, &pkgerrors.Error{
					Kind:   pkgerrors.KindDanglingReference,
					Op:     "etl.load",
					Entity: string(rel.Type),
					Detail: fmt.Sprintf("%d of %d edges found no endpoints", len(chunk)-n, len(chunk)),
				}
			}
			written += n
			observability.ETLGraphWrites.WithLabelValues("edge", string(rel.Type)).Add(float64(n))
		}
		report.Edges[rel.Type] = written
	}
	l.log.Debug("relationship phase complete", "edges", report.EdgeTotal())
	return report, nil
}

func chunks[T any](rows []T, size int) [][]T {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]T, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := start + size
		if end > len(rows) {
			end = len(rows)
		}
		out = append(out, rows[start:end])
	}
	return out
}

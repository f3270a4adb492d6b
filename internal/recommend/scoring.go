package recommend

import "github.com/yungbote/shopgraph/internal/data/graph"

// scorer returns one hit's contribution. Contributions for the same product
// are summed, which is only meaningful for collaborative hits (one per peer);
// the other shapes return a single hit per product.
type scorer func(h graph.Hit) float64

func (e *Engine) scorer(t graph.Traversal) scorer {
	switch t.Shape {
	case graph.ShapeCollaborative:
		if e.cfg.CollaborativeScoring == ScoringJaccard {
			return jaccardPeer
		}
		return func(graph.Hit) float64 { return 1 }
	case graph.ShapeContent:
		return contentScore
	default:
		return func(h graph.Hit) float64 { return float64(h.Count) }
	}
}

func jaccardPeer(h graph.Hit) float64 {
	union := h.AnchorTotal + h.ViaTotal - h.Shared
	if union <= 0 {
		return 0
	}
	return float64(h.Shared) / float64(union)
}

func contentScore(h graph.Hit) float64 {
	if h.HasDistance {
		return 1 / (1 + h.PriceDistance)
	}
	return float64(h.Count)
}

package graph

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

type edgeKey struct {
	From string
	To   string
	Key  string
}

// MemoryStore keeps nodes in per-label id maps and edges in per-type maps
// keyed on endpoints (plus KeyProp where declared). It is safe for
// concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	nodes map[graphschema.Label]map[string]map[string]any
	edges map[graphschema.RelType]map[edgeKey]map[string]any
	decls map[string]graphschema.Declaration
	down  error

	nodeWrites int
	edgeWrites int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: map[graphschema.Label]map[string]map[string]any{},
		edges: map[graphschema.RelType]map[edgeKey]map[string]any{},
		decls: map[string]graphschema.Declaration{},
	}
}

// SetUnavailable makes every call fail with err until reset with nil.
func (m *MemoryStore) SetUnavailable(err error) {
	m.mu.Lock()
	m.down = err
	m.mu.Unlock()
}

func (m *MemoryStore) check(op string) error {
	if m.down != nil {
		return pkgerrors.New(pkgerrors.KindStoreUnavailable, op, m.down)
	}
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if err := ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return fmt.Errorf("graph.memory.ping: %w", err)
		}
		return pkgerrors.New(pkgerrors.KindStoreUnavailable, "graph.memory.ping", err)
	}
	return m.check("graph.memory.ping")
}

func (m *MemoryStore) Close(context.Context) error { return nil }

func (m *MemoryStore) ApplyDeclaration(ctx context.Context, d graphschema.Declaration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("graph.memory.schema"); err != nil {
		return err
	}
	m.decls[d.Name()] = d
	return nil
}

func (m *MemoryStore) Declarations() []graphschema.Declaration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]graphschema.Declaration, 0, len(m.decls))
	for _, d := range m.decls {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

func (m *MemoryStore) UpsertNodes(ctx context.Context, label graphschema.Label, rows []NodeRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("graph.memory.upsert_nodes"); err != nil {
		return 0, err
	}
	byID := m.nodes[label]
	if byID == nil {
		byID = map[string]map[string]any{}
		m.nodes[label] = byID
	}
	for _, r := range rows {
		props := byID[r.ID]
		if props == nil {
			props = map[string]any{}
			byID[r.ID] = props
		}
		mergeProps(props, r.Attrs)
		props["id"] = r.ID
	}
	m.nodeWrites += len(rows)
	return len(rows), nil
}

func (m *MemoryStore) UpsertEdges(ctx context.Context, rel graphschema.Rel, rows []EdgeRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.check("graph.memory.upsert_edges"); err != nil {
		return 0, err
	}
	byKey := m.edges[rel.Type]
	if byKey == nil {
		byKey = map[edgeKey]map[string]any{}
		m.edges[rel.Type] = byKey
	}
	matched := 0
	for _, r := range rows {
		if _, ok := m.nodes[rel.From][r.FromID]; !ok {
			continue
		}
		if _, ok := m.nodes[rel.To][r.ToID]; !ok {
			continue
		}
		k := edgeKey{From: r.FromID, To: r.ToID}
		if rel.KeyProp != "" {
			k.Key = r.Key
		}
		props := byKey[k]
		if props == nil {
			props = map[string]any{}
			byKey[k] = props
		}
		mergeProps(props, r.Attrs)
		if rel.KeyProp != "" {
			props[rel.KeyProp] = r.Key
		}
		matched++
	}
	m.edgeWrites += matched
	return matched, nil
}

// SET += semantics: nil removes the property.
func mergeProps(dst, src map[string]any) {
	for k, v := range src {
		if v == nil {
			delete(dst, k)
			continue
		}
		dst[k] = v
	}
}

// Snapshot is a deep copy of the graph contents for comparisons in tests.
type Snapshot struct {
	Nodes map[graphschema.Label]map[string]map[string]any
	Edges map[graphschema.RelType][]EdgeRecord
}

func (m *MemoryStore) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := Snapshot{
		Nodes: map[graphschema.Label]map[string]map[string]any{},
		Edges: map[graphschema.RelType][]EdgeRecord{},
	}
	for label, byID := range m.nodes {
		cp := make(map[string]map[string]any, len(byID))
		for id, props := range byID {
			cp[id] = copyProps(props)
		}
		s.Nodes[label] = cp
	}
	for t := range m.edges {
		s.Edges[t] = m.edgesLocked(t)
	}
	return s
}

// Edges lists edges of type t sorted by endpoints and key.
func (m *MemoryStore) Edges(t graphschema.RelType) []EdgeRecord {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.edgesLocked(t)
}

func (m *MemoryStore) edgesLocked(t graphschema.RelType) []EdgeRecord {
	out := make([]EdgeRecord, 0, len(m.edges[t]))
	for k, props := range m.edges[t] {
		out = append(out, EdgeRecord{FromID: k.From, ToID: k.To, Key: k.Key, Attrs: copyProps(props)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].FromID != out[j].FromID {
			return out[i].FromID < out[j].FromID
		}
		if out[i].ToID != out[j].ToID {
			return out[i].ToID < out[j].ToID
		}
		return out[i].Key < out[j].Key
	})
	return out
}

func (m *MemoryStore) NodeIDs(label graphschema.Label) []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedKeys(m.nodes[label])
}

// Writes reports cumulative node and edge writes since creation.
func (m *MemoryStore) Writes() (nodes, edges int) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.nodeWrites, m.edgeWrites
}

func copyProps(src map[string]any) map[string]any {
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

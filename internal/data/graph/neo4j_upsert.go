package graph

import (
	"context"
	"fmt"

	"github.com/yungbote/shopgraph/internal/domain/graphschema"
)

func (s *Neo4jStore) UpsertNodes(ctx context.Context, label graphschema.Label, rows []NodeRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	if !cypherIdent.MatchString(string(label)) {
		return 0, fmt.Errorf("graph.neo4j.upsert_nodes: invalid label %q", label)
	}
	params := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		props := make(map[string]any, len(r.Attrs)+1)
		for k, v := range r.Attrs {
			props[k] = v
		}
		props["id"] = r.ID
		params = append(params, map[string]any{"id": r.ID, "props": props})
	}
	q := fmt.Sprintf(`
UNWIND $rows AS r
MERGE (n:%s {id: r.id})
SET n += r.props
RETURN count(n) AS written
`, label)
	n, err := s.write(ctx, "graph.neo4j.upsert_nodes "+string(label), q, map[string]any{"rows": params}, "written")
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

// UpsertEdges matches both endpoints by id; rows whose endpoints are missing
// drop out of the MATCH, so the returned count can fall short of len(rows).
func (s *Neo4jStore) UpsertEdges(ctx context.Context, rel graphschema.Rel, rows []EdgeRecord) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for _, ident := range []string{string(rel.Type), string(rel.From), string(rel.To)} {
		if !cypherIdent.MatchString(ident) {
			return 0, fmt.Errorf("graph.neo4j.upsert_edges: invalid identifier %q", ident)
		}
	}
	params := make([]map[string]any, 0, len(rows))
	for _, r := range rows {
		props := make(map[string]any, len(r.Attrs))
		for k, v := range r.Attrs {
			props[k] = v
		}
		params = append(params, map[string]any{
			"from_id": r.FromID,
			"to_id":   r.ToID,
			"key":     r.Key,
			"props":   props,
		})
	}

	merge := fmt.Sprintf("MERGE (a)-[e:%s]->(b)", rel.Type)
	if rel.KeyProp != "" {
		if !cypherIdent.MatchString(rel.KeyProp) {
			return 0, fmt.Errorf("graph.neo4j.upsert_edges: invalid key property %q", rel.KeyProp)
		}
		merge = fmt.Sprintf("MERGE (a)-[e:%s {%s: r.key}]->(b)", rel.Type, rel.KeyProp)
	}
	q := fmt.Sprintf(`
UNWIND $rows AS r
MATCH (a:%s {id: r.from_id})
MATCH (b:%s {id: r.to_id})
%s
SET e += r.props
RETURN count(e) AS matched
`, rel.From, rel.To, merge)

	n, err := s.write(ctx, "graph.neo4j.upsert_edges "+string(rel.Type), q, map[string]any{"rows": params}, "matched")
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

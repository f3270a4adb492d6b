package graph

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
	"github.com/yungbote/shopgraph/internal/platform/neo4jdb"
)

// Labels and relationship types cannot be parameterized in Cypher.
var cypherIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Neo4jStore struct {
	client *neo4jdb.Client
	log    *logger.Logger
}

func NewNeo4jStore(client *neo4jdb.Client, log *logger.Logger) *Neo4jStore {
	if log == nil {
		log = logger.Nop()
	}
	return &Neo4jStore{client: client, log: log.With("component", "Neo4jStore")}
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	if s == nil || s.client == nil {
		return pkgerrors.Newf(pkgerrors.KindStoreUnavailable, "graph.neo4j.ping", "no client")
	}
	if err := s.client.Ping(ctx); err != nil {
		return pkgerrors.New(pkgerrors.KindStoreUnavailable, "graph.neo4j.ping", err)
	}
	return nil
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close(ctx)
}

func (s *Neo4jStore) ApplyDeclaration(ctx context.Context, d graphschema.Declaration) error {
	session := s.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	res, err := session.Run(ctx, d.Cypher(), nil)
	if err == nil {
		_, err = res.Consume(ctx)
	}
	if err != nil {
		return storeError("graph.neo4j.schema "+d.Name(), err)
	}
	return nil
}

// read runs one query in a managed read transaction and collects every
// record.
func (s *Neo4jStore) read(ctx context.Context, op, cypher string, params map[string]any) ([]*neo4j.Record, error) {
	if s == nil || s.client == nil || s.client.Driver == nil {
		return nil, pkgerrors.Newf(pkgerrors.KindStoreUnavailable, op, "no client")
	}
	session := s.client.Session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)

	out, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		return res.Collect(ctx)
	})
	if err != nil {
		return nil, storeError(op, err)
	}
	records, _ := out.([]*neo4j.Record)
	return records, nil
}

// write runs one query in a managed write transaction and returns the int64
// in column col of its single record.
func (s *Neo4jStore) write(ctx context.Context, op, cypher string, params map[string]any, col string) (int64, error) {
	if s == nil || s.client == nil || s.client.Driver == nil {
		return 0, pkgerrors.Newf(pkgerrors.KindStoreUnavailable, op, "no client")
	}
	session := s.client.Session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)

	out, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		rec, err := res.Single(ctx)
		if err != nil {
			return nil, err
		}
		v, _ := rec.Get(col)
		return asInt(v), nil
	})
	if err != nil {
		return 0, storeError(op, err)
	}
	n, _ := out.(int64)
	return n, nil
}

// storeError marks connectivity failures and timeouts as StoreUnavailable.
// A canceled caller context says nothing about the store and stays as is.
func storeError(op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	if neo4j.IsConnectivityError(err) || errors.Is(err, context.DeadlineExceeded) {
		return pkgerrors.New(pkgerrors.KindStoreUnavailable, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func recString(rec *neo4j.Record, key string) string {
	v, _ := rec.Get(key)
	return asString(v)
}

func recFloat(rec *neo4j.Record, key string) float64 {
	v, _ := rec.Get(key)
	return asFloat(v)
}

func recInt(rec *neo4j.Record, key string) int64 {
	v, _ := rec.Get(key)
	return asInt(v)
}

package etl

import (
	"context"
	"fmt"

	"github.com/yungbote/shopgraph/internal/data/graph"
	"github.com/yungbote/shopgraph/internal/domain/graphschema"
	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

// InitSchema applies every declaration in order. The store must answer a
// ping first; any failed declaration stops the run.
func InitSchema(ctx context.Context, store graph.Writer, schema graphschema.Schema) error {
	if err := store.Ping(ctx); err != nil {
		if pkgerrors.KindOf(err) == "" {
			err = pkgerrors.New(pkgerrors.KindStoreUnavailable, "etl.schema", err)
		}
		return err
	}
	for _, d := range schema.Declarations {
		if err := store.ApplyDeclaration(ctx, d); err != nil {
			return fmt.Errorf("apply %s: %w", d.Name(), err)
		}
	}
	return nil
}

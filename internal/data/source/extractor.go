// Package source reads whole relational tables into typed rows for the graph
// pipeline.
package source

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Postgres SQLSTATEs that mean the source does not have the expected shape.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

type Extractor struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewExtractor(db *gorm.DB, log *logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop()
	}
	return &Extractor{db: db, log: log.With("component", "Extractor")}
}

func (e *Extractor) Ping(ctx context.Context) error {
	if e == nil || e.db == nil {
		return pkgerrors.Newf(pkgerrors.KindSourceUnavailable, "source.ping", "no database handle")
	}
	sqlDB, err := e.db.DB()
	if err != nil {
		return pkgerrors.New(pkgerrors.KindSourceUnavailable, "source.ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return pkgerrors.New(pkgerrors.KindSourceUnavailable, "source.ping", err)
	}
	return nil
}

// Extract reads every row of spec.Name in a deterministic order.
func (e *Extractor) Extract(ctx context.Context, spec TableSpec) (*Table, error) {
	op := "source.extract"
	if !identRe.MatchString(spec.Name) {
		return nil, pkgerrors.Newf(pkgerrors.KindSchemaMismatch, op, "invalid table name %q", spec.Name)
	}
	db := e.db.WithContext(ctx)

	columns, err := e.inspectColumns(db, spec.Name)
	if err != nil {
		return nil, classifyError(op, spec.Name, err)
	}
	table := &Table{Name: spec.Name, Columns: columns}
	for _, req := range spec.Required {
		if !table.HasColumn(req) {
			return nil, &pkgerrors.Error{
				Kind:   pkgerrors.KindSchemaMismatch,
				Op:     op,
				Entity: spec.Name,
				Detail: fmt.Sprintf("missing required column %q", req),
			}
		}
	}

	orderBy := spec.OrderBy
	if len(orderBy) == 0 && table.HasColumn("id") {
		orderBy = []string{"id"}
	}
	q := "SELECT * FROM " + quoteIdent(spec.Name)
	if len(orderBy) > 0 {
		parts := make([]string, 0, len(orderBy))
		for _, c := range orderBy {
			if !identRe.MatchString(c) || !table.HasColumn(c) {
				return nil, &pkgerrors.Error{
					Kind:   pkgerrors.KindSchemaMismatch,
					Op:     op,
					Entity: spec.Name,
					Detail: fmt.Sprintf("unknown order column %q", c),
				}
			}
			parts = append(parts, quoteIdent(c))
		}
		q += " ORDER BY " + strings.Join(parts, ", ")
	}

	rows, err := db.Raw(q).Rows()
	if err != nil {
		return nil, classifyError(op, spec.Name, err)
	}
	defer rows.Close()

	n := len(columns)
	for rows.Next() {
		vals := make([]any, n)
		ptrs := make([]any, n)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, classifyError(op, spec.Name, err)
		}
		row := make(Row, n)
		for i, c := range columns {
			row[c.Name] = normalizeValue(vals[i], c.DatabaseType)
		}
		table.Rows = append(table.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyError(op, spec.Name, err)
	}

	e.log.Debug("table extracted", "table", spec.Name, "rows", len(table.Rows))
	return table, nil
}

// ExtractAll reads independent tables concurrently. The first failure
// cancels the remaining reads.
func (e *Extractor) ExtractAll(ctx context.Context, specs []TableSpec) (map[string]*Table, error) {
	out := make(map[string]*Table, len(specs))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, spec := range specs {
		spec := spec
		g.Go(func() error {
			t, err := e.Extract(gctx, spec)
			if err != nil {
				return err
			}
			mu.Lock()
			out[spec.Name] = t
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *Extractor) inspectColumns(db *gorm.DB, table string) ([]Column, error) {
	rows, err := db.Raw("SELECT * FROM " + quoteIdent(table) + " LIMIT 0").Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	types, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}
	return columnsOf(types), nil
}

func columnsOf(types []*sql.ColumnType) []Column {
	out := make([]Column, 0, len(types))
	for _, ct := range types {
		out = append(out, Column{Name: ct.Name(), DatabaseType: strings.ToUpper(ct.DatabaseTypeName())})
	}
	return out
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func classifyError(op, table string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUndefinedTable, pgUndefinedColumn:
			return &pkgerrors.Error{Kind: pkgerrors.KindSchemaMismatch, Op: op, Entity: table, Err: err}
		}
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "no such table") || strings.Contains(msg, "no such column") {
		return &pkgerrors.Error{Kind: pkgerrors.KindSchemaMismatch, Op: op, Entity: table, Err: err}
	}
	return &pkgerrors.Error{Kind: pkgerrors.KindSourceUnavailable, Op: op, Entity: table, Err: err}
}

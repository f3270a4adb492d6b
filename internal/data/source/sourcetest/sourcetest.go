// Package sourcetest opens throwaway relational sources seeded with small
// commerce fixtures.
package sourcetest

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	sourcedb "github.com/yungbote/shopgraph/internal/data/db"
	"github.com/yungbote/shopgraph/internal/domain/shop"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger
	logErr  error
)

func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		logg, logErr = logger.New("test")
	})
	if logErr != nil {
		tb.Fatalf("failed to init logger: %v", logErr)
	}
	return logg
}

// Empty opens a file-backed sqlite database with no tables.
func Empty(tb testing.TB) *gorm.DB {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "source.db")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

// Migrated opens a source with every commerce table created and empty.
func Migrated(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := Empty(tb)
	if err := sourcedb.AutoMigrateAll(db); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	return db
}

func Str(s string) *string { return &s }

var day = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

// Scenario seeds two customers, three products in two categories and two
// orders: C1 bought P1 and P2, C2 bought P1 and P3.
func Scenario(tb testing.TB) *gorm.DB {
	tb.Helper()
	db := Migrated(tb)
	Insert(tb, db,
		&[]shop.Customer{
			{ID: "C1", Name: "Ada", JoinDate: day},
			{ID: "C2", Name: "Bob", JoinDate: day},
		},
		&[]shop.Category{
			{ID: "CAT1", Name: "Electronics"},
			{ID: "CAT2", Name: "Books"},
		},
		&[]shop.Product{
			{ID: "P1", Name: "Headphones", Price: 100, CategoryID: Str("CAT1")},
			{ID: "P2", Name: "Speaker", Price: 120, CategoryID: Str("CAT1")},
			{ID: "P3", Name: "Novel", Price: 15, CategoryID: Str("CAT2")},
		},
		&[]shop.Order{
			{ID: "O1", CustomerID: Str("C1"), Ts: day.Add(time.Hour)},
			{ID: "O2", CustomerID: Str("C2"), Ts: day.Add(2 * time.Hour)},
		},
		&[]shop.OrderItem{
			{OrderID: "O1", ProductID: "P1", Quantity: 1},
			{OrderID: "O1", ProductID: "P2", Quantity: 2},
			{OrderID: "O2", ProductID: "P1", Quantity: 1},
			{OrderID: "O2", ProductID: "P3", Quantity: 1},
		},
		&[]shop.Event{
			{ID: "E1", CustomerID: Str("C1"), ProductID: Str("P3"), EventType: "view", Ts: day},
			{ID: "E2", CustomerID: Str("C1"), ProductID: Str("P3"), EventType: "add_to_cart", Ts: day.Add(time.Minute)},
		},
	)
	return db
}

// Insert creates each batch in order.
func Insert(tb testing.TB, db *gorm.DB, batches ...any) {
	tb.Helper()
	for _, b := range batches {
		if err := db.Create(b).Error; err != nil {
			tb.Fatalf("seed %T: %v", b, err)
		}
	}
}

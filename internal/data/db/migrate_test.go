package db_test

import (
	"testing"

	"github.com/yungbote/shopgraph/internal/data/db"
	"github.com/yungbote/shopgraph/internal/data/source/sourcetest"
)

func TestAutoMigrateAllCreatesSourceTables(t *testing.T) {
	gdb := sourcetest.Empty(t)
	for i := 0; i < 2; i++ {
		if err := db.AutoMigrateAll(gdb); err != nil {
			t.Fatalf("migrate (pass %d): %v", i, err)
		}
	}
	for _, table := range []string{"customers", "categories", "products", "orders", "order_items", "events"} {
		if !gdb.Migrator().HasTable(table) {
			t.Fatalf("table %q missing after migrate", table)
		}
	}
}

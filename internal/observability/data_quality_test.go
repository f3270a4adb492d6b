package observability

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
)

func TestReportDataQualityCountsByEntity(t *testing.T) {
	t.Setenv("DATA_QUALITY_ALERTS_ENABLED", "false")
	counter := ETLDataQualityIssues.WithLabelValues("map", "integrity_violation", "products")
	before := testutil.ToFloat64(counter)

	err := fmt.Errorf("etl.map: %w", pkgerrors.Row(pkgerrors.KindIntegrityViolation, "products", "P9", "category_id is null"))
	ReportDataQuality(context.Background(), nil, "map", err, nil)

	if got := testutil.ToFloat64(counter) - before; got != 1 {
		t.Fatalf("data quality counter delta: want=1 got=%v", got)
	}
}

func TestReportDataQualityIgnoresAvailability(t *testing.T) {
	if IsDataQualityIssue(pkgerrors.New(pkgerrors.KindStoreUnavailable, "graph", errors.New("down"))) {
		t.Fatalf("store unavailability is not a data quality issue")
	}
	if IsDataQualityIssue(errors.New("plain")) {
		t.Fatalf("untyped errors are not data quality issues")
	}
	if !IsDataQualityIssue(pkgerrors.ErrDanglingReference) {
		t.Fatalf("dangling references are data quality issues")
	}
}

func TestDataQualityAlertIsRateLimited(t *testing.T) {
	var posts atomic.Int32
	var last map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&last)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	t.Setenv("DATA_QUALITY_ALERTS_ENABLED", "true")
	t.Setenv("DATA_QUALITY_ALERT_WEBHOOK_URL", srv.URL)
	t.Setenv("DATA_QUALITY_ALERT_MIN_INTERVAL", "1h")

	err := pkgerrors.Row(pkgerrors.KindDanglingReference, "order_items", "O1/P404", "product missing")
	ReportDataQuality(context.Background(), nil, "alert-test", err, nil)
	ReportDataQuality(context.Background(), nil, "alert-test", err, nil)

	if got := posts.Load(); got != 1 {
		t.Fatalf("webhook posts: want=1 got=%d", got)
	}
	if last["entity"] != "order_items" || last["issue"] != "dangling_reference" {
		t.Fatalf("unexpected alert payload: %v", last)
	}
}

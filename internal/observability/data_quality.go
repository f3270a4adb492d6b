package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	pkgerrors "github.com/yungbote/shopgraph/internal/pkg/errors"
	"github.com/yungbote/shopgraph/internal/platform/ctxutil"
	"github.com/yungbote/shopgraph/internal/platform/envutil"
	"github.com/yungbote/shopgraph/internal/platform/logger"
)

type dqAlertState struct {
	mu   sync.Mutex
	last map[string]time.Time
}

var dqAlerts dqAlertState

// IsDataQualityIssue reports whether err was caused by the source rows
// themselves rather than by an unavailable dependency.
func IsDataQualityIssue(err error) bool {
	switch pkgerrors.KindOf(err) {
	case pkgerrors.KindSchemaMismatch, pkgerrors.KindIntegrityViolation,
		pkgerrors.KindInvalidValue, pkgerrors.KindDanglingReference:
		return true
	}
	return false
}

// ReportDataQuality counts and logs a data problem found during stage, and
// posts a rate-limited alert when DATA_QUALITY_ALERT_WEBHOOK_URL is set.
// Errors that are not data problems are ignored.
func ReportDataQuality(ctx context.Context, log *logger.Logger, stage string, err error, meta map[string]any) {
	if !IsDataQualityIssue(err) {
		return
	}
	stage = strings.TrimSpace(stage)
	if stage == "" {
		stage = "unknown"
	}
	if meta == nil {
		meta = map[string]any{}
	}
	if td := ctxutil.GetTraceData(ctx); td != nil && td.TraceID != "" {
		meta["trace_id"] = td.TraceID
	}

	issue := string(pkgerrors.KindOf(err))
	entity := "unknown"
	var pe *pkgerrors.Error
	if errors.As(err, &pe) {
		if pe.Entity != "" {
			entity = pe.Entity
		}
		if pe.RowID != "" {
			meta["row_id"] = pe.RowID
		}
	}
	ETLDataQualityIssues.WithLabelValues(stage, issue, entity).Inc()

	if log != nil {
		log.Warn("data quality issue detected",
			"stage", stage,
			"issue", issue,
			"entity", entity,
			"error", err.Error(),
			"meta", meta,
		)
	}
	sendDataQualityAlert(stage, issue, entity, err.Error(), meta, log)
}

func sendDataQualityAlert(stage, issue, entity, sample string, meta map[string]any, log *logger.Logger) {
	if !envutil.Bool("DATA_QUALITY_ALERTS_ENABLED", false) {
		return
	}
	webhook := envutil.String("DATA_QUALITY_ALERT_WEBHOOK_URL", "")
	if webhook == "" {
		return
	}
	key := stage + "|" + issue
	dqAlerts.mu.Lock()
	if dqAlerts.last == nil {
		dqAlerts.last = map[string]time.Time{}
	}
	last := dqAlerts.last[key]
	if !last.IsZero() && time.Since(last) < envutil.Duration("DATA_QUALITY_ALERT_MIN_INTERVAL", 5*time.Minute) {
		dqAlerts.mu.Unlock()
		return
	}
	dqAlerts.last[key] = time.Now()
	dqAlerts.mu.Unlock()

	payload := map[string]any{
		"title":        "ETL data quality issue",
		"stage":        stage,
		"issue":        issue,
		"entity":       entity,
		"sample_error": sample,
		"meta":         meta,
		"timestamp":    time.Now().UTC().Format(time.RFC3339),
	}
	body, _ := json.Marshal(payload)
	req, err := http.NewRequest(http.MethodPost, webhook, bytes.NewReader(body))
	if err != nil {
		if log != nil {
			log.Warn("data quality alert request build failed", "error", err, "stage", stage)
		}
		return
	}
	req.Header.Set("Content-Type", "application/json")
	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		if log != nil {
			log.Warn("data quality alert post failed", "error", err, "stage", stage)
		}
		return
	}
	_ = resp.Body.Close()
	if log != nil {
		log.Info("data quality alert sent", "stage", stage, "status", resp.StatusCode)
	}
}

// Package worker keeps the exported daily report rows in step with the record store.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"sindbad/internal/amqp"
	"sindbad/internal/cache"
	"sindbad/internal/core"
	"sindbad/internal/notify"
	"sindbad/internal/report"
	"sindbad/internal/sheets"
)

// SnapshotLoader is implemented by *services.ReportService.
type SnapshotLoader interface {
	Snapshot(ctx context.Context, owner string) (report.Snapshot, error)
	Today() core.Date
}

// ExportWorker turns record events into refreshed daily report rows.
type ExportWorker struct {
	reports  SnapshotLoader
	sheets   sheets.ReportWriter
	notifier notify.Notifier
	dedup    *cache.Dedup
}

const (
	dedupSize = 10000
	dedupTTL  = 24 * time.Hour
)

// NewExportWorker builds a worker. A nil notifier disables summaries.
func NewExportWorker(reports SnapshotLoader, writer sheets.ReportWriter, notifier notify.Notifier) *ExportWorker {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	return &ExportWorker{
		reports:  reports,
		sheets:   writer,
		notifier: notifier,
		dedup:    cache.NewDedup(dedupSize, dedupTTL),
	}
}

// Dedup exposes the redelivery cache so the caller can register it for cleanup.
func (w *ExportWorker) Dedup() *cache.Dedup { return w.dedup }

// HandleRecordEvent refreshes the row of the event's day. A returned error makes
// the consumer requeue the message; events already handled are skipped.
func (w *ExportWorker) HandleRecordEvent(ctx context.Context, ev *amqp.RecordEvent) error {
	if w.dedup.Seen(ev.EventID) {
		slog.InfoContext(ctx, "Skipping duplicate record event", "event_id", ev.EventID)
		return nil
	}

	slog.InfoContext(ctx, "Processing record event",
		"event_id", ev.EventID,
		"entity", ev.Entity,
		"op", ev.Op,
		"day", ev.Day)

	date, err := core.ParseDate(ev.Day)
	if err != nil {
		// Retrying cannot fix a bad day.
		slog.ErrorContext(ctx, "Dropping record event with invalid day",
			"event_id", ev.EventID,
			"day", ev.Day,
			"error", err)
		return nil
	}

	if _, err := w.ExportDay(ctx, ev.OwnerID, date); err != nil {
		return fmt.Errorf("export day %s: %w", ev.Day, err)
	}
	w.dedup.Mark(ev.EventID)
	slog.DebugContext(ctx, "Marked record event", "event_id", ev.EventID, "remembered", w.dedup.Len())
	return nil
}

// ExportDay recomputes the report of date for owner and writes its row.
func (w *ExportWorker) ExportDay(ctx context.Context, owner string, date core.Date) (report.DailyReport, error) {
	snap, err := w.reports.Snapshot(ctx, owner)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("load snapshot: %w", err)
	}
	r := snap.DailyReport(date)

	ref, err := w.sheets.UpsertDailyRow(ctx, owner, r)
	if err != nil {
		return report.DailyReport{}, fmt.Errorf("write report row: %w", err)
	}

	slog.InfoContext(ctx, "Exported daily report",
		"owner", owner,
		"date", date.String(),
		"sheets_ref", ref,
		"income", r.DailyIncome.String(),
		"expenses", r.DailyExpenses.String())
	return r, nil
}

// RunDailyExport exports today's row for owner and posts the summary.
func (w *ExportWorker) RunDailyExport(ctx context.Context, owner string) error {
	r, err := w.ExportDay(ctx, owner, w.reports.Today())
	if err != nil {
		return err
	}
	if err := w.notifier.Notify(ctx, report.DailySummaryText(r)); err != nil {
		// The row is written; a missed message is not worth a retry.
		slog.ErrorContext(ctx, "Failed to send daily summary", "owner", owner, "error", err)
	}
	return nil
}

// RunPeriodic calls RunDailyExport for owner every interval until ctx ends.
func (w *ExportWorker) RunPeriodic(ctx context.Context, owner string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunDailyExport(ctx, owner); err != nil {
				slog.ErrorContext(ctx, "Periodic export failed", "owner", owner, "error", err)
			}
		}
	}
}

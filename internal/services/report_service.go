package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"sindbad/internal/core"
	"sindbad/internal/report"
	"sindbad/internal/storage"
)

// ReportService builds the financial views from a fresh snapshot on every call.
type ReportService struct {
	repo  storage.Repository
	clock func() time.Time
	loc   *time.Location
}

func NewReportService(repo storage.Repository, loc *time.Location, clock func() time.Time) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	if clock == nil {
		clock = time.Now
	}
	return &ReportService{repo: repo, clock: clock, loc: loc}
}

// Snapshot loads every record of owner. The five lists are read concurrently.
func (s *ReportService) Snapshot(ctx context.Context, owner string) (report.Snapshot, error) {
	snap := report.Snapshot{Location: s.loc}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		snap.Customers, err = s.repo.ListCustomers(gctx, owner)
		return wrap("customers", err)
	})
	g.Go(func() (err error) {
		snap.Bookings, err = s.repo.ListBookings(gctx, owner)
		return wrap("bookings", err)
	})
	g.Go(func() (err error) {
		snap.Visas, err = s.repo.ListVisas(gctx, owner)
		return wrap("visas", err)
	})
	g.Go(func() (err error) {
		snap.Expenses, err = s.repo.ListExpenses(gctx, owner)
		return wrap("expenses", err)
	})
	g.Go(func() (err error) {
		snap.Debts, err = s.repo.ListDebts(gctx, owner)
		return wrap("debts", err)
	})
	if err := g.Wait(); err != nil {
		return report.Snapshot{}, err
	}
	return snap, nil
}

func wrap(what string, err error) error {
	if err != nil {
		return fmt.Errorf("load %s: %w", what, err)
	}
	return nil
}

// Today is the current calendar day in the reporting location.
func (s *ReportService) Today() core.Date {
	return core.DateOf(s.clock(), s.loc)
}

func (s *ReportService) Summary(ctx context.Context, owner string) (report.Summary, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return report.Summary{}, err
	}
	return snap.Summary(), nil
}

func (s *ReportService) Dashboard(ctx context.Context, owner string) (report.Dashboard, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return report.Dashboard{}, err
	}
	return snap.Dashboard(), nil
}

// Daily builds the report for date, or for today when date is empty.
func (s *ReportService) Daily(ctx context.Context, owner string, date core.Date) (report.DailyReport, error) {
	if date.IsEmpty() {
		date = s.Today()
	}
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return report.DailyReport{}, err
	}
	return snap.DailyReport(date), nil
}

// CategoryTotals returns the spend per category, limited to date when it is set.
func (s *ReportService) CategoryTotals(ctx context.Context, owner string, date *core.Date) ([]report.CategoryTotal, error) {
	snap, err := s.Snapshot(ctx, owner)
	if err != nil {
		return nil, err
	}
	return snap.ExpensesByCategory(date), nil
}

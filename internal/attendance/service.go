package attendance

import (
	"context"
	"time"
)

// Store is the persistence boundary the service writes through. *Repository
// is the Postgres implementation; tests substitute in-memory stubs.
type Store interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	Get(ctx context.Context, id string) (Record, error)
	Update(ctx context.Context, rec Record) (Record, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f ListFilter) ([]Record, error)
	SetPresent(ctx context.Context, ids []string, present bool) (int64, error)
	DuplicateForDate(ctx context.Context, ids []string, date time.Time) (int64, error)
	Counts(ctx context.Context) (Stats, error)
	PresentOn(ctx context.Context, date time.Time) ([]Record, error)
	StatsSince(ctx context.Context, from time.Time) (Stats, error)
	DailyStats(ctx context.Context, start, end time.Time) ([]DayStats, error)
	TopPeople(ctx context.Context, limit int) ([]PersonStats, error)
}

// Service runs the validated write path and the reporting reads. The clock is
// injected so the future-date rule and "current month" are deterministic in
// tests.
type Service struct {
	store Store
	cache *StatsCache
	now   func() time.Time
}

// NewService creates a service. cache may be nil, now defaults to time.Now.
func NewService(store Store, cache *StatsCache, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{store: store, cache: cache, now: now}
}

// Create validates, normalizes and persists a new record. A zero Date
// defaults to today before validation runs.
func (s *Service) Create(ctx context.Context, rec Record) (Record, error) {
	now := s.now()
	if rec.Date.IsZero() {
		rec.Date = dateOnly(now)
	}
	if err := Validate(&rec, now); err != nil {
		return Record{}, err
	}
	return s.store.Insert(ctx, rec)
}

// Update replaces every user-editable field of an existing record after
// re-running the full validation pass. There is no partial update path.
func (s *Service) Update(ctx context.Context, id string, rec Record) (Record, error) {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return Record{}, err
	}
	rec.ID = existing.ID
	if rec.Date.IsZero() {
		rec.Date = existing.Date
	}
	if err := Validate(&rec, s.now()); err != nil {
		return Record{}, err
	}
	return s.store.Update(ctx, rec)
}

// Get returns one record.
func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	return s.store.Get(ctx, id)
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// List returns filtered records.
func (s *Service) List(ctx context.Context, f ListFilter) ([]Record, error) {
	return s.store.List(ctx, f)
}

// MarkPresent flips the presence flag on a set of records.
func (s *Service) MarkPresent(ctx context.Context, ids []string, present bool) (int64, error) {
	return s.store.SetPresent(ctx, ids, present)
}

// DuplicateForToday copies the given records onto today's date.
func (s *Service) DuplicateForToday(ctx context.Context, ids []string) (int64, error) {
	return s.store.DuplicateForDate(ctx, ids, dateOnly(s.now()))
}

// PresentToday returns the records marked present for today.
func (s *Service) PresentToday(ctx context.Context) ([]Record, error) {
	return s.store.PresentOn(ctx, dateOnly(s.now()))
}

// MonthStats aggregates the current month, reading through the redis cache
// when one is configured. The worker refreshes the cached entry after every
// write event.
func (s *Service) MonthStats(ctx context.Context) (Stats, error) {
	month := monthKey(s.now())
	if s.cache != nil {
		if stats, ok := s.cache.Get(ctx, month); ok {
			return stats, nil
		}
	}
	stats, err := s.store.StatsSince(ctx, firstOfMonth(s.now()))
	if err != nil {
		return Stats{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, month, stats)
	}
	return stats, nil
}

// RefreshMonthStats recomputes the current month and overwrites the cache.
// Called by the worker when a write event arrives.
func (s *Service) RefreshMonthStats(ctx context.Context) (Stats, error) {
	stats, err := s.store.StatsSince(ctx, firstOfMonth(s.now()))
	if err != nil {
		return Stats{}, err
	}
	if s.cache != nil {
		s.cache.Set(ctx, monthKey(s.now()), stats)
	}
	return stats, nil
}

// Summary is the aggregate block behind the admin statistics view.
type Summary struct {
	Totals    Stats         `json:"totals"`
	Percent   float64       `json:"percent_present"`
	Month     Stats         `json:"month"`
	TopPeople []PersonStats `json:"top_people"`
}

// Summarize builds the admin statistics: all-time totals, attendance
// percentage, current-month stats and the ten most active people.
func (s *Service) Summarize(ctx context.Context) (Summary, error) {
	totals, err := s.store.Counts(ctx)
	if err != nil {
		return Summary{}, err
	}
	month, err := s.MonthStats(ctx)
	if err != nil {
		return Summary{}, err
	}
	top, err := s.store.TopPeople(ctx, 10)
	if err != nil {
		return Summary{}, err
	}
	var pct float64
	if totals.Total > 0 {
		pct = float64(totals.Present) / float64(totals.Total) * 100
	}
	return Summary{Totals: totals, Percent: pct, Month: month, TopPeople: top}, nil
}

// MonthlyReport is the per-day breakdown for the current month.
type MonthlyReport struct {
	Month  string     `json:"month"`
	Totals Stats      `json:"totals"`
	Days   []DayStats `json:"days"`
}

// ReportCurrentMonth groups the current month's records by day, first of the
// month through today, ascending.
func (s *Service) ReportCurrentMonth(ctx context.Context) (MonthlyReport, error) {
	now := s.now()
	days, err := s.store.DailyStats(ctx, firstOfMonth(now), dateOnly(now))
	if err != nil {
		return MonthlyReport{}, err
	}
	var totals Stats
	for _, d := range days {
		totals.Total += d.Total
		totals.Present += d.Present
		totals.Absent += d.Absent
	}
	return MonthlyReport{Month: monthKey(now), Totals: totals, Days: days}, nil
}

func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func monthKey(t time.Time) string {
	return t.Format("2006-01")
}

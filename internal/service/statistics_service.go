package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/hostelworks/hostel-core-api/internal/models"
	"github.com/hostelworks/hostel-core-api/pkg/config"
	appErrors "github.com/hostelworks/hostel-core-api/pkg/errors"
	"github.com/hostelworks/hostel-core-api/pkg/export"
)

const (
	statisticsCachePrefix  = "stats:deductions"
	statisticsCachePattern = statisticsCachePrefix + ":*"
	topPersonsLimit        = 10
)

// Histogram boundaries over deducted_amount. Each value lands in the first
// bucket whose upper bound it does not exceed; the last bucket is unbounded.
var deductionRangeBounds = []struct {
	label string
	upper int64
}{
	{"0-100", 100},
	{"100-500", 500},
	{"500-1000", 1000},
	{"1000-2000", 2000},
}

const deductionRangeOverflowLabel = "2000+"

type statRowsSource interface {
	StatRows(ctx context.Context, start, end time.Time, locationID string) ([]models.LedgerStatRow, error)
}

// StatisticsService aggregates the deduction ledger into reporting snapshots
// behind a short-TTL cache. Concurrent misses are serialized by an advisory
// lock: one caller computes while the rest poll the cache, falling back to an
// uncoordinated computation once the bounded wait expires.
type StatisticsService struct {
	repo    statRowsSource
	cache   *CacheService
	metrics *MetricsService
	cfg     config.StatisticsConfig
	logger  *zap.Logger
	now     func() time.Time
	sleep   func(time.Duration)
}

// NewStatisticsService constructs the statistics service.
func NewStatisticsService(repo statRowsSource, cache *CacheService, metrics *MetricsService, cfg config.StatisticsConfig, logger *zap.Logger) *StatisticsService {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 30 * time.Second
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 15 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 100 * time.Millisecond
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 3 * time.Second
	}
	if cfg.DefaultWindowDays <= 0 {
		cfg.DefaultWindowDays = 30
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		sleep:   time.Sleep,
	}
}

// StatisticsRequest scopes an aggregation window. Missing dates default to the
// configured trailing window ending today.
type StatisticsRequest struct {
	StartDate  *time.Time
	EndDate    *time.Time
	LocationID string
}

// GetStatistics serves the aggregate for the requested window, through the
// cache when possible. The boolean reports whether the cache satisfied the
// request. Lock contention never surfaces as an error.
func (s *StatisticsService) GetStatistics(ctx context.Context, req StatisticsRequest) (*models.DeductionStatistics, bool, error) {
	start, end, err := s.resolveWindow(req)
	if err != nil {
		return nil, false, err
	}

	if !s.cache.Enabled() {
		stats, err := s.compute(ctx, start, end, req.LocationID)
		if err != nil {
			return nil, false, err
		}
		return stats, false, nil
	}

	key := s.cacheKey(start, end, req.LocationID)
	var cached models.DeductionStatistics
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		s.metrics.RecordStampedeOutcome(StampedeOutcomeCacheHit)
		return &cached, true, nil
	}

	locked, err := s.cache.TryLock(ctx, key+":lock", s.cfg.LockTTL)
	if err != nil {
		s.logger.Warn("statistics lock attempt failed", zap.Error(err))
	}
	if locked {
		defer s.cache.Unlock(ctx, key+":lock")
		stats, err := s.compute(ctx, start, end, req.LocationID)
		if err != nil {
			return nil, false, err
		}
		if err := s.cache.Set(ctx, key, stats, s.cfg.CacheTTL); err != nil {
			s.logger.Warn("statistics cache store failed", zap.Error(err))
		}
		s.metrics.RecordStampedeOutcome(StampedeOutcomeLockAcquired)
		return stats, false, nil
	}

	// Another request holds the lock. Poll the cache at a fixed cadence until
	// the bounded wait expires; the loop is not cancellable mid-flight.
	deadline := s.now().Add(s.cfg.PollTimeout)
	for s.now().Before(deadline) {
		s.sleep(s.cfg.PollInterval)
		if hit, _ := s.cache.Get(ctx, key, &cached); hit {
			s.metrics.RecordStampedeOutcome(StampedeOutcomePollHit)
			return &cached, true, nil
		}
	}

	// The holder did not publish in time. Compute without coordination; the
	// holder remains the cache writer of record.
	s.metrics.RecordStampedeOutcome(StampedeOutcomeFallback)
	stats, err := s.compute(ctx, start, end, req.LocationID)
	if err != nil {
		return nil, false, err
	}
	return stats, false, nil
}

func (s *StatisticsService) resolveWindow(req StatisticsRequest) (time.Time, time.Time, error) {
	end := s.now().UTC()
	if req.EndDate != nil {
		end = req.EndDate.UTC()
	}
	end = time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)

	start := end.AddDate(0, 0, -s.cfg.DefaultWindowDays)
	if req.StartDate != nil {
		t := req.StartDate.UTC()
		start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "end_date must not precede start_date")
	}
	return start, end, nil
}

func (s *StatisticsService) cacheKey(start, end time.Time, locationID string) string {
	loc := locationID
	if loc == "" {
		loc = "all"
	}
	return fmt.Sprintf("%s:%s:%s:%s", statisticsCachePrefix, start.Format("2006-01-02"), end.Format("2006-01-02"), loc)
}

// compute builds the aggregate from the ledger rows in range.
func (s *StatisticsService) compute(ctx context.Context, start, end time.Time, locationID string) (*models.DeductionStatistics, error) {
	queryStart := s.now()
	rows, err := s.repo.StatRows(ctx, start, end, locationID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load ledger rows")
	}
	s.metrics.ObserveDBQuery("ledger_stat_rows", s.now().Sub(queryStart))

	stats := &models.DeductionStatistics{
		StartDate:   start,
		EndDate:     end,
		GeneratedAt: s.now().UTC(),
	}
	if locationID != "" {
		stats.LocationID = &locationID
	}

	total := decimal.Zero
	persons := map[string]struct{}{}

	type monthAccum struct {
		total   decimal.Decimal
		count   int
		persons map[string]struct{}
	}
	months := map[string]*monthAccum{}
	monthOrder := []string{}

	type personAccum struct {
		category models.PersonCategory
		total    decimal.Decimal
		count    int
	}
	perPerson := map[string]*personAccum{}
	personOrder := []string{}

	buckets := make([]int, len(deductionRangeBounds)+1)

	for _, row := range rows {
		total = total.Add(row.DeductedAmount)
		persons[row.PersonID] = struct{}{}

		month := row.AttendanceDate.UTC().Format("2006-01")
		m, ok := months[month]
		if !ok {
			m = &monthAccum{persons: map[string]struct{}{}}
			months[month] = m
			monthOrder = append(monthOrder, month)
		}
		m.total = m.total.Add(row.DeductedAmount)
		m.count++
		m.persons[row.PersonID] = struct{}{}

		p, ok := perPerson[row.PersonID]
		if !ok {
			p = &personAccum{category: row.PersonCategory}
			perPerson[row.PersonID] = p
			personOrder = append(personOrder, row.PersonID)
		}
		p.total = p.total.Add(row.DeductedAmount)
		p.count++

		buckets[bucketIndex(row.DeductedAmount)]++
	}

	stats.TotalDeductedAmount = total.Round(2)
	stats.TotalCheckoutRecords = len(rows)
	stats.UniquePersonsWithDeductions = len(persons)
	if len(rows) > 0 {
		stats.AverageDeductionPerCheckout = total.Div(decimal.NewFromInt(int64(len(rows)))).Round(2)
	} else {
		stats.AverageDeductionPerCheckout = decimal.Zero
	}

	sort.Strings(monthOrder)
	stats.ByMonth = make([]models.MonthlyDeductionGroup, 0, len(monthOrder))
	for _, month := range monthOrder {
		m := months[month]
		stats.ByMonth = append(stats.ByMonth, models.MonthlyDeductionGroup{
			Month:         month,
			TotalAmount:   m.total.Round(2),
			Count:         m.count,
			UniquePersons: len(m.persons),
		})
	}

	// Rank persons by summed deduction. The stable sort keeps first-encounter
	// order for equal totals.
	ranked := make([]models.PersonDeductionTotal, 0, len(personOrder))
	for _, id := range personOrder {
		p := perPerson[id]
		ranked = append(ranked, models.PersonDeductionTotal{
			PersonID:       id,
			PersonCategory: p.category,
			TotalAmount:    p.total.Round(2),
			Count:          p.count,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalAmount.GreaterThan(ranked[j].TotalAmount)
	})
	if len(ranked) > topPersonsLimit {
		ranked = ranked[:topPersonsLimit]
	}
	stats.TopPersonsByDeduction = ranked

	stats.DeductionRanges = make([]models.DeductionRangeBucket, 0, len(buckets))
	for i, bound := range deductionRangeBounds {
		upper := decimal.NewFromInt(bound.upper)
		stats.DeductionRanges = append(stats.DeductionRanges, models.DeductionRangeBucket{
			Label:      bound.label,
			UpperBound: &upper,
			Count:      buckets[i],
		})
	}
	stats.DeductionRanges = append(stats.DeductionRanges, models.DeductionRangeBucket{
		Label: deductionRangeOverflowLabel,
		Count: buckets[len(buckets)-1],
	})

	return stats, nil
}

// bucketIndex places an amount in the first bucket whose upper bound covers it.
func bucketIndex(amount decimal.Decimal) int {
	for i, bound := range deductionRangeBounds {
		if amount.LessThanOrEqual(decimal.NewFromInt(bound.upper)) {
			return i
		}
	}
	return len(deductionRangeBounds)
}

// ExportDataset flattens an aggregate into a tabular dataset for CSV/PDF export.
func ExportDataset(stats *models.DeductionStatistics) export.Dataset {
	headers := []string{"section", "key", "amount", "count", "unique_persons"}
	rows := []map[string]string{
		{
			"section":        "summary",
			"key":            "total",
			"amount":         stats.TotalDeductedAmount.StringFixed(2),
			"count":          fmt.Sprintf("%d", stats.TotalCheckoutRecords),
			"unique_persons": fmt.Sprintf("%d", stats.UniquePersonsWithDeductions),
		},
		{
			"section": "summary",
			"key":     "average_per_checkout",
			"amount":  stats.AverageDeductionPerCheckout.StringFixed(2),
		},
	}
	for _, m := range stats.ByMonth {
		rows = append(rows, map[string]string{
			"section":        "by_month",
			"key":            m.Month,
			"amount":         m.TotalAmount.StringFixed(2),
			"count":          fmt.Sprintf("%d", m.Count),
			"unique_persons": fmt.Sprintf("%d", m.UniquePersons),
		})
	}
	for _, p := range stats.TopPersonsByDeduction {
		rows = append(rows, map[string]string{
			"section": "top_persons",
			"key":     fmt.Sprintf("%s (%s)", p.PersonID, p.PersonCategory),
			"amount":  p.TotalAmount.StringFixed(2),
			"count":   fmt.Sprintf("%d", p.Count),
		})
	}
	for _, b := range stats.DeductionRanges {
		rows = append(rows, map[string]string{
			"section": "deduction_ranges",
			"key":     b.Label,
			"count":   fmt.Sprintf("%d", b.Count),
		})
	}
	return export.Dataset{Headers: headers, Rows: rows}
}

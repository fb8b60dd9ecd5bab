package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/spendy/internal/common"
	"github.com/dmitrijs2005/spendy/internal/logging"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/entries"
	"github.com/dmitrijs2005/spendy/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/spendy/internal/timex"
	"github.com/google/uuid"
)

// Calendar bucket positions in the arrays returned by SumByCalendarBuckets.
const (
	BucketDay = iota
	BucketMonth
	BucketYear
	BucketLifetime
)

// AggregateService sums entry prices per category over time windows.
// Categories without matching entries always map to 0.
type AggregateService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	log         logging.Logger
}

func NewAggregateService(db *sql.DB, m repomanager.RepositoryManager, log logging.Logger) *AggregateService {
	return &AggregateService{
		db:          db,
		repomanager: m,
		log:         log.With("module", "aggregates"),
	}
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", common.ErrValidation, err)
}

// SumByDateRange sums prices of owner's entries per category with the
// ledger date in [start, end].
func (s *AggregateService) SumByDateRange(ctx context.Context, owner string, categories []uuid.UUID, start, end time.Time) (map[uuid.UUID]int64, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("%w: range end %s before start %s", common.ErrValidation, end, start)
	}

	repo := s.repomanager.Entries(s.db)
	result := make(map[uuid.UUID]int64, len(categories))
	for _, c := range categories {
		sum, err := repo.SumPrices(ctx, owner, c, start.UTC(), end.UTC())
		if err != nil {
			return nil, fmt.Errorf("error summing category %s: %w", c, err)
		}
		result[c] = sum
	}
	return result, nil
}

// SumByCalendarBuckets computes, per category, four independent sums: the
// given day, its month, its year and the whole lifetime. Bucket edges follow
// the calendar of loc; nil means UTC.
func (s *AggregateService) SumByCalendarBuckets(ctx context.Context, owner string, categories []uuid.UUID,
	day, month, year int, loc *time.Location) (map[uuid.UUID][4]int64, error) {

	if loc == nil {
		loc = time.UTC
	}
	dayRange, err := timex.DayRange(year, month, day, loc)
	if err != nil {
		return nil, invalid(err)
	}
	monthRange, _ := timex.MonthRange(year, month, loc)
	yearRange, _ := timex.YearRange(year, loc)

	repo := s.repomanager.Entries(s.db)
	result := make(map[uuid.UUID][4]int64, len(categories))
	for _, c := range categories {
		var buckets [4]int64
		for i, r := range []timex.Range{dayRange, monthRange, yearRange} {
			if buckets[i], err = repo.SumPrices(ctx, owner, c, r.Start, r.End); err != nil {
				return nil, fmt.Errorf("error summing category %s: %w", c, err)
			}
		}
		if buckets[BucketLifetime], err = repo.SumPricesLifetime(ctx, owner, c); err != nil {
			return nil, fmt.Errorf("error summing category %s: %w", c, err)
		}
		result[c] = buckets
	}
	return result, nil
}

// SumByMonthsOfYear sums, per category, every requested month of year. Month
// edges are taken in the client's local time given by offset ("+02:00",
// "-0530", "Z" or empty for UTC) and converted to instants before querying.
// Sums are returned in request order.
func (s *AggregateService) SumByMonthsOfYear(ctx context.Context, owner string, categories []uuid.UUID,
	year int, months []int, offset string) (map[uuid.UUID][]int64, error) {

	loc, err := timex.ParseOffset(offset)
	if err != nil {
		return nil, invalid(err)
	}

	ranges := make([]timex.Range, len(months))
	for i, m := range months {
		if ranges[i], err = timex.MonthRange(year, m, loc); err != nil {
			return nil, invalid(err)
		}
	}

	repo := s.repomanager.Entries(s.db)
	result := make(map[uuid.UUID][]int64, len(categories))
	for _, c := range categories {
		sums, err := sumRanges(ctx, repo, owner, c, ranges)
		if err != nil {
			return nil, fmt.Errorf("error summing category %s: %w", c, err)
		}
		result[c] = sums
	}

	s.log.Debug(ctx, "monthly sums computed", "owner", owner, "year", year, "months", len(months), "offset", offset)
	return result, nil
}

func sumRanges(ctx context.Context, repo entries.Repository, owner string, category uuid.UUID, ranges []timex.Range) ([]int64, error) {
	sums := make([]int64, len(ranges))
	for i, r := range ranges {
		sum, err := repo.SumPrices(ctx, owner, category, r.Start, r.End)
		if err != nil {
			return nil, err
		}
		sums[i] = sum
	}
	return sums, nil
}

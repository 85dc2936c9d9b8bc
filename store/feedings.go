package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"github.com/padraicbc/feedlog/models"
)

// Feedings is the shared feeding record store. There is no per-user
// partitioning; concurrent edits are last-write-wins.
type Feedings struct {
	db  bun.IDB
	now func() time.Time
}

// NewFeedings returns a feeding store backed by db.
func NewFeedings(db bun.IDB) *Feedings {
	return &Feedings{db: db, now: time.Now}
}

// WithClock replaces the time source used when Add gets no timestamp.
func (f *Feedings) WithClock(now func() time.Time) *Feedings {
	f.now = now
	return f
}

// normalize stores everything in UTC at second resolution so ordering is
// identical on every backend.
func normalize(ts time.Time) time.Time {
	return ts.UTC().Truncate(time.Second)
}

// Add records a feeding at ts, or now when ts is nil.
func (f *Feedings) Add(ctx context.Context, ts *time.Time) (*models.Feeding, error) {
	at := f.now()
	if ts != nil {
		at = *ts
	}

	rec := &models.Feeding{Timestamp: normalize(at)}
	if _, err := f.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert feeding: %w", err)
	}
	return rec, nil
}

// Get returns a single feeding.
func (f *Feedings) Get(ctx context.Context, id int64) (*models.Feeding, error) {
	rec := &models.Feeding{}
	err := f.db.NewSelect().Model(rec).Where("id = ?", id).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("feeding %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("select feeding %d: %w", id, err)
	}
	rec.Timestamp = rec.Timestamp.UTC()
	return rec, nil
}

// Edit replaces the timestamp of feeding id.
func (f *Feedings) Edit(ctx context.Context, id int64, ts time.Time) (*models.Feeding, error) {
	rec := &models.Feeding{ID: id, Timestamp: normalize(ts)}
	res, err := f.db.NewUpdate().Model(rec).
		Column("timestamp").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("update feeding %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("feeding %d: %w", id, ErrNotFound)
	}
	return rec, nil
}

// Delete removes feeding id.
func (f *Feedings) Delete(ctx context.Context, id int64) error {
	res, err := f.db.NewDelete().Model((*models.Feeding)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete feeding %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("feeding %d: %w", id, ErrNotFound)
	}
	return nil
}

// List returns every feeding, most recent first. Equal timestamps fall back
// to id so later inserts come first.
func (f *Feedings) List(ctx context.Context) ([]models.Feeding, error) {
	var recs []models.Feeding
	err := f.db.NewSelect().Model(&recs).
		Order("timestamp DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select feedings: %w", err)
	}
	for i := range recs {
		recs[i].Timestamp = recs[i].Timestamp.UTC()
	}
	return recs, nil
}

// ListGroupedByDay returns all feedings grouped by calendar day in loc.
func (f *Feedings) ListGroupedByDay(ctx context.Context, loc *time.Location) ([]DayGroup, error) {
	recs, err := f.List(ctx)
	if err != nil {
		return nil, err
	}
	return GroupByDay(recs, loc), nil
}

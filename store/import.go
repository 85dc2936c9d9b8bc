package store

import (
	"context"
	"fmt"
	"time"

	"github.com/padraicbc/feedlog/models"
)

const importBatchSize = 500

// Import inserts a feeding for each timestamp not already recorded and
// returns how many were inserted. Duplicates within stamps are collapsed,
// so re-running an import is a no-op.
func (f *Feedings) Import(ctx context.Context, stamps []time.Time) (int, error) {
	var existing []time.Time
	err := f.db.NewSelect().Model((*models.Feeding)(nil)).
		Column("timestamp").
		Scan(ctx, &existing)
	if err != nil {
		return 0, fmt.Errorf("select existing timestamps: %w", err)
	}

	seen := make(map[int64]struct{}, len(existing)+len(stamps))
	for _, ts := range existing {
		seen[ts.Unix()] = struct{}{}
	}

	batch := make([]models.Feeding, 0, importBatchSize)
	total := 0
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if _, err := f.db.NewInsert().Model(&batch).Exec(ctx); err != nil {
			return fmt.Errorf("insert feedings: %w", err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, ts := range stamps {
		at := normalize(ts)
		if _, dup := seen[at.Unix()]; dup {
			continue
		}
		seen[at.Unix()] = struct{}{}
		batch = append(batch, models.Feeding{Timestamp: at})
		if len(batch) >= importBatchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportSkipsKnownTimestamps(t *testing.T) {
	ctx := context.Background()
	feedings := NewFeedings(newTestDB(t))

	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	_, err := feedings.Add(ctx, &base)
	require.NoError(t, err)

	stamps := []time.Time{
		base.Add(500 * time.Millisecond), // same second as the existing row
		base.Add(time.Hour),
		base.Add(time.Hour),
		base.Add(2 * time.Hour).In(time.FixedZone("UTC+3", 3*3600)),
	}
	n, err := feedings.Import(ctx, stamps)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = feedings.Import(ctx, stamps)
	require.NoError(t, err)
	assert.Zero(t, n)

	recs, err := feedings.List(ctx)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.True(t, recs[0].Timestamp.Equal(base.Add(2*time.Hour)))
	assert.Equal(t, time.UTC, recs[0].Timestamp.Location())
}

func TestImportLargeBatch(t *testing.T) {
	ctx := context.Background()
	feedings := NewFeedings(newTestDB(t))

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	stamps := make([]time.Time, importBatchSize+7)
	for i := range stamps {
		stamps[i] = base.Add(time.Duration(i) * time.Minute)
	}

	n, err := feedings.Import(ctx, stamps)
	require.NoError(t, err)
	assert.Equal(t, len(stamps), n)

	recs, err := feedings.List(ctx)
	require.NoError(t, err)
	assert.Len(t, recs, len(stamps))
}

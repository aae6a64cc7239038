package store

import (
	"testing"
	"time"

	"github.com/IgorDevApp/aptcatalog/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotsNewSnapshotsDBHandler(t *testing.T) {
	database := initDB(t)

	t.Run("Valid call NewSnapshotsDBHandler", func(t *testing.T) {
		snapshotsDbHandler, err := NewSnapshotsDBHandler(database, true)
		assert.NoError(t, err, "Expected NewSnapshotsDBHandler to not return an error")
		require.NotNil(t, snapshotsDbHandler, "Expected NewSnapshotsDBHandler to return a non-nil instance")
	})

	t.Run("Invalid call NewSnapshotsDBHandler with nil database", func(t *testing.T) {
		_, err := NewSnapshotsDBHandler(nil, false)
		assert.Error(t, err, "Expected error when creating SnapshotsDBHandler with nil database")
		assert.Contains(t, err.Error(), "database connection is nil", "Expected specific error message for nil database connection")
	})
}

func TestSnapshotsInsertAndSelectLatest(t *testing.T) {
	database := initDB(t)

	snapshotsDbHandler, err := NewSnapshotsDBHandler(database, true)
	require.NoError(t, err)

	t.Run("Insert snapshot record", func(t *testing.T) {
		record := &SnapshotRecord{
			BuiltAt:      time.Now().UTC().Truncate(time.Millisecond),
			TotalGroups:  42,
			TotalReports: 120,
			TotalLinks:   310,
			Diagnostics: model.Diagnostics{
				SourcesProcessed: 4,
				RecordsMerged:    57,
				RecordsSkipped:   2,
				AliasCollisions:  1,
			},
		}

		err := snapshotsDbHandler.InsertSnapshot(record)
		assert.NoError(t, err, "Expected InsertSnapshot to not return an error")
		assert.NotZero(t, record.ID, "Expected inserted record to have an ID")
		assert.WithinDuration(t, record.CreatedAt, time.Now(), 2*time.Second, "Expected CreatedAt to be set")
	})

	t.Run("Select latest snapshot returns the newest record", func(t *testing.T) {
		older := &SnapshotRecord{BuiltAt: time.Now().UTC(), TotalGroups: 1}
		newer := &SnapshotRecord{BuiltAt: time.Now().UTC(), TotalGroups: 2, Diagnostics: model.Diagnostics{UnparsedDates: 3}}

		require.NoError(t, snapshotsDbHandler.InsertSnapshot(older))
		require.NoError(t, snapshotsDbHandler.InsertSnapshot(newer))

		latest, err := snapshotsDbHandler.SelectLatestSnapshot()
		require.NoError(t, err, "Expected SelectLatestSnapshot to not return an error")
		assert.Equal(t, newer.ID, latest.ID)
		assert.Equal(t, 2, latest.TotalGroups)
		assert.Equal(t, 3, latest.Diagnostics.UnparsedDates, "Expected diagnostics to survive the JSONB round trip")
	})
}

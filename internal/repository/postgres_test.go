package repository_test

import (
	"log/slog"
	"regexp"
	"testing"
	"time"

	"github.com/UnknownOlympus/pinpoint/internal/models"
	"github.com/UnknownOlympus/pinpoint/internal/repository"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const saveLocationQuery = `
		INSERT INTO locations (address, latitude, longitude, confirmed_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (address) DO UPDATE
		SET
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			confirmed_at = now()
		RETURNING id, confirmed_at;
	`

const recentLocationsQuery = `
		SELECT id, address, latitude, longitude, confirmed_at
		FROM locations
		ORDER BY confirmed_at DESC
		LIMIT $1;
	`

// newMockRepository wires a repository to a pgxmock pool whose expectations
// are verified when the test ends.
func newMockRepository(t *testing.T) (pgxmock.PgxPoolIface, *repository.Repository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		mock.Close()
	})

	return mock, repository.NewRepository(mock, slog.Default())
}

func TestSaveLocation(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	location := models.ConfirmedLocation{Latitude: 52.1, Longitude: 13.4, Address: "10 Main St"}

	t.Run("error - insert location", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta(saveLocationQuery)).
			WithArgs(location.Address, location.Latitude, location.Longitude).
			WillReturnError(assert.AnError)

		saved, err := repo.SaveLocation(ctx, location)

		assert.Equal(t, models.SavedLocation{}, saved)
		require.ErrorContains(t, err, "failed to save confirmed location")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("success - returns stored row", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)
		confirmedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

		mock.ExpectQuery(regexp.QuoteMeta(saveLocationQuery)).
			WithArgs(location.Address, location.Latitude, location.Longitude).
			WillReturnRows(pgxmock.NewRows([]string{"id", "confirmed_at"}).AddRow(int64(7), confirmedAt))

		saved, err := repo.SaveLocation(ctx, location)

		require.NoError(t, err)
		assert.Equal(t, models.SavedLocation{
			ID:          7,
			Address:     "10 Main St",
			Latitude:    52.1,
			Longitude:   13.4,
			ConfirmedAt: confirmedAt,
		}, saved)
	})
}

func TestRecentLocations(t *testing.T) {
	t.Parallel()
	ctx := t.Context()
	limit := 5
	columns := []string{"id", "address", "latitude", "longitude", "confirmed_at"}
	confirmedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("error - query recent locations", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta(recentLocationsQuery)).
			WithArgs(limit).
			WillReturnError(assert.AnError)

		locations, err := repo.RecentLocations(ctx, limit)

		require.Nil(t, locations)
		require.ErrorContains(t, err, "failed to query recent locations")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("error - scan recent location", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta(recentLocationsQuery)).
			WithArgs(limit).
			WillReturnRows(pgxmock.NewRows(columns).AddRow("invalid_id", "10 Main St", 52.1, 13.4, confirmedAt))

		locations, err := repo.RecentLocations(ctx, limit)

		require.Nil(t, locations)
		require.ErrorContains(t, err, "failed to scan recent location")
	})

	t.Run("error - rows error", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta(recentLocationsQuery)).
			WithArgs(limit).
			WillReturnRows(
				pgxmock.NewRows(columns).AddRow(int64(1), "10 Main St", 52.1, 13.4, confirmedAt).
					RowError(1, assert.AnError),
			)

		locations, err := repo.RecentLocations(ctx, limit)

		require.Nil(t, locations)
		require.ErrorContains(t, err, "failed to read row")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("success - default limit", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta(recentLocationsQuery)).
			WithArgs(repository.DefaultRecentLimit).
			WillReturnRows(pgxmock.NewRows(columns).
				AddRow(int64(2), "Strand", 51.5, -0.12, confirmedAt).
				AddRow(int64(1), "10 Main St", 52.1, 13.4, confirmedAt.Add(-time.Hour)))

		locations, err := repo.RecentLocations(ctx, 0)

		require.NoError(t, err)
		require.Len(t, locations, 2)
		assert.Equal(t, "Strand", locations[0].Address)
		assert.Equal(t, int64(1), locations[1].ID)
		assert.Equal(t, confirmedAt.Add(-time.Hour), locations[1].ConfirmedAt)
	})

	t.Run("success - oversized limit is capped", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)

		mock.ExpectQuery(regexp.QuoteMeta(recentLocationsQuery)).
			WithArgs(repository.MaxRecentLimit).
			WillReturnRows(pgxmock.NewRows(columns))

		locations, err := repo.RecentLocations(ctx, 1<<40)

		require.NoError(t, err)
		assert.NotNil(t, locations)
		assert.Empty(t, locations)
	})
}

func TestEnsureSchema(t *testing.T) {
	t.Parallel()
	ctx := t.Context()

	t.Run("error", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS locations").WillReturnError(assert.AnError)

		err := repo.EnsureSchema(ctx)

		require.ErrorContains(t, err, "failed to create locations table")
		require.ErrorIs(t, err, assert.AnError)
	})

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		mock, repo := newMockRepository(t)
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS locations").
			WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))

		require.NoError(t, repo.EnsureSchema(ctx))
	})
}

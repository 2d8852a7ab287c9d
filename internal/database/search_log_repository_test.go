package database

import (
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/smarttransit/subway-routing/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSearchLogTest(t *testing.T) (*SearchLogRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}
	return NewSearchLogRepository(postgresDB), mock
}

func TestLogSearch(t *testing.T) {
	repo, mock := setupSearchLogTest(t)

	ip := "10.0.0.1"
	device := "mobile"
	log := &models.SearchLog{
		ID:             uuid.New(),
		FromInput:      "Ruggles",
		ToInput:        "Mattapan",
		Found:          true,
		StopCount:      20,
		ResponseTimeMs: 3,
		IPAddress:      &ip,
		DeviceType:     &device,
		CreatedAt:      time.Now(),
	}

	t.Run("Success", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO search_logs").
			WithArgs(log.ID, "Ruggles", "Mattapan", true, 20, int64(3), ip, device, log.CreatedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.LogSearch(log)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectExec("INSERT INTO search_logs").
			WillReturnError(errors.New("connection reset"))

		err := repo.LogSearch(log)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "error logging search")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetPopularSearches(t *testing.T) {
	repo, mock := setupSearchLogTest(t)

	t.Run("Success", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM search_logs").
			WithArgs(5).
			WillReturnRows(sqlmock.NewRows([]string{"from_input", "to_input", "search_count"}).
				AddRow("ruggles", "mattapan", 12).
				AddRow("ashmont", "downtown crossing", 4))

		searches, err := repo.GetPopularSearches(5)
		require.NoError(t, err)
		assert.Equal(t, []models.PopularSearch{
			{FromInput: "ruggles", ToInput: "mattapan", SearchCount: 12},
			{FromInput: "ashmont", ToInput: "downtown crossing", SearchCount: 4},
		}, searches)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("No searches", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM search_logs").
			WithArgs(10).
			WillReturnRows(sqlmock.NewRows([]string{"from_input", "to_input", "search_count"}))

		searches, err := repo.GetPopularSearches(10)
		require.NoError(t, err)
		assert.NotNil(t, searches)
		assert.Empty(t, searches)
	})

	t.Run("Database error", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM search_logs").
			WillReturnError(errors.New("timeout"))

		searches, err := repo.GetPopularSearches(10)
		assert.Nil(t, searches)
		assert.Error(t, err)
	})
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	postgresDB := &PostgresDB{DB: sqlx.NewDb(db, "sqlmock")}

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS search_logs").
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.NoError(t, EnsureSchema(postgresDB))

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS search_logs").
		WillReturnError(errors.New("permission denied"))
	assert.Error(t, EnsureSchema(postgresDB))

	assert.NoError(t, mock.ExpectationsWereMet())
}

package handlers

import (
	"database/sql"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ceylontrails/tourism-backend/internal/database"
)

func setupCatalogHandler(t *testing.T) (*CatalogHandler, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	return NewCatalogHandler(database.NewCatalogRepository(db)), mock
}

func catalogContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func TestListDestinations(t *testing.T) {
	t.Run("Default Pagination", func(t *testing.T) {
		handler, mock := setupCatalogHandler(t)

		mock.ExpectQuery(`SELECT id, name, location FROM destinations ORDER BY name LIMIT \$1 OFFSET \$2`).
			WithArgs(20, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location"}).
				AddRow(uuid.NewString(), "Sigiriya", "Matale District").
				AddRow(uuid.NewString(), "Temple of the Tooth", "Kandy"))

		c, w := catalogContext("/api/v1/destinations")
		handler.ListDestinations(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sigiriya")
		assert.Contains(t, w.Body.String(), `"count":2`)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Limit Is Clamped", func(t *testing.T) {
		handler, mock := setupCatalogHandler(t)

		mock.ExpectQuery(`SELECT id, name, location FROM destinations ORDER BY name LIMIT \$1 OFFSET \$2`).
			WithArgs(100, 40).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location"}))

		c, w := catalogContext("/api/v1/destinations?limit=500&offset=40")
		handler.ListDestinations(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Store Failure", func(t *testing.T) {
		handler, mock := setupCatalogHandler(t)

		mock.ExpectQuery(`SELECT id, name, location FROM destinations`).
			WillReturnError(errors.New("connection reset"))

		c, w := catalogContext("/api/v1/destinations")
		handler.ListDestinations(c)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestListEvents(t *testing.T) {
	handler, mock := setupCatalogHandler(t)

	mock.ExpectQuery(`SELECT id, name, location FROM events ORDER BY name LIMIT \$1 OFFSET \$2`).
		WithArgs(20, 0).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location"}).
			AddRow(uuid.NewString(), "Kandy Esala Perahera", "Kandy"))

	c, w := catalogContext("/api/v1/events")
	handler.ListEvents(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kandy Esala Perahera")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetDestination(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		handler, mock := setupCatalogHandler(t)
		destinationID := uuid.NewString()

		mock.ExpectQuery(`SELECT id, name, location FROM destinations WHERE id = \$1`).
			WithArgs(destinationID).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location"}).
				AddRow(destinationID, "Sigiriya", "Matale District"))

		c, w := catalogContext("/api/v1/destinations/" + destinationID)
		c.Params = gin.Params{{Key: "id", Value: destinationID}}
		handler.GetDestination(c)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "Sigiriya")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Invalid ID", func(t *testing.T) {
		handler, _ := setupCatalogHandler(t)

		c, w := catalogContext("/api/v1/destinations/not-a-uuid")
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}
		handler.GetDestination(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Not Found", func(t *testing.T) {
		handler, mock := setupCatalogHandler(t)
		destinationID := uuid.NewString()

		mock.ExpectQuery(`SELECT id, name, location FROM destinations WHERE id = \$1`).
			WithArgs(destinationID).
			WillReturnError(sql.ErrNoRows)

		c, w := catalogContext("/api/v1/destinations/" + destinationID)
		c.Params = gin.Params{{Key: "id", Value: destinationID}}
		handler.GetDestination(c)

		assert.Equal(t, http.StatusNotFound, w.Code)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGetEvent(t *testing.T) {
	handler, mock := setupCatalogHandler(t)
	eventID := uuid.NewString()

	mock.ExpectQuery(`SELECT id, name, location FROM events WHERE id = \$1`).
		WithArgs(eventID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "location"}).
			AddRow(eventID, "Kandy Esala Perahera", nil))

	c, w := catalogContext("/api/v1/events/" + eventID)
	c.Params = gin.Params{{Key: "id", Value: eventID}}
	handler.GetEvent(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

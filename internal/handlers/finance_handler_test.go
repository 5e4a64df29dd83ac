package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"church-service/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func financeRouter(db *gorm.DB) *gin.Engine {
	h := NewFinanceHandler(db)
	r := gin.New()
	r.POST("/finance", h.Create)
	r.PUT("/finance/:id", h.Update)
	r.DELETE("/finance/:id", h.Delete)
	return r
}

func putJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestFinanceUpdateValidatesTypeAndAmount(t *testing.T) {
	db := newTestDB(t)
	r := financeRouter(db)

	entry := models.LedgerEntry{
		Type: models.LedgerExpense, Category: "Utilities",
		Amount: decimal.NewFromInt(50000), Date: time.Now(),
	}
	require.NoError(t, db.Create(&entry).Error)
	path := fmt.Sprintf("/finance/%d", entry.ID)

	// same rules Create enforces
	w := putJSON(r, path, `{"type":"windfall","category":"Utilities","amount":100}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = putJSON(r, path, `{"type":"expense","category":"Utilities","amount":-5}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = putJSON(r, path, `{"type":"income","category":"Rental","amount":75000}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var updated models.LedgerEntry
	require.NoError(t, db.First(&updated, entry.ID).Error)
	assert.Equal(t, models.LedgerIncome, updated.Type)
	assert.True(t, updated.Amount.Equal(decimal.NewFromInt(75000)))
}

func TestFinanceDonationDerivedEntriesImmutable(t *testing.T) {
	db := newTestDB(t)
	r := financeRouter(db)

	entry := models.LedgerEntry{
		Type: models.LedgerIncome, Category: "Donation - tithe",
		Amount: decimal.NewFromInt(10000), Date: time.Now(),
		Reference: "DON-1756700000000-ABCDEF01",
	}
	require.NoError(t, db.Create(&entry).Error)
	path := fmt.Sprintf("/finance/%d", entry.ID)

	w := putJSON(r, path, `{"type":"income","category":"Donation - tithe","amount":99999}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodDelete, path, nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var kept models.LedgerEntry
	require.NoError(t, db.First(&kept, entry.ID).Error)
	assert.True(t, kept.Amount.Equal(decimal.NewFromInt(10000)))
}

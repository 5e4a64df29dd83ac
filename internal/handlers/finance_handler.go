package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"church-service/internal/models"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type FinanceHandler struct {
	DB *gorm.DB
}

func NewFinanceHandler(db *gorm.DB) *FinanceHandler {
	return &FinanceHandler{DB: db}
}

// donationDerived reports whether a ledger entry was emitted by the donation
// flow. Those rows are immutable from the finance console.
func donationDerived(entry *models.LedgerEntry) bool {
	return strings.HasPrefix(entry.Reference, "DON-")
}

type ledgerEntryRequest struct {
	Type        string          `json:"type" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	Date        time.Time       `json:"date"`
	Description string          `json:"description"`
	Reference   string          `json:"reference"`
	BranchID    *uint           `json:"branchId"`
}

func (h *FinanceHandler) Create(c *gin.Context) {
	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if req.Type != models.LedgerIncome && req.Type != models.LedgerExpense {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("type must be income or expense", nil, http.StatusBadRequest))
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("amount must be greater than zero", nil, http.StatusBadRequest))
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	entry := models.LedgerEntry{
		Type:        req.Type,
		Category:    req.Category,
		Amount:      req.Amount,
		Date:        req.Date,
		Description: req.Description,
		Reference:   req.Reference,
		BranchID:    req.BranchID,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(entry, "Ledger entry created"))
}

func (h *FinanceHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := h.DB.Model(&models.LedgerEntry{})
	if entryType := c.Query("type"); entryType != "" {
		query = query.Where("entry_type = ?", entryType)
	}
	if from := c.Query("from"); from != "" {
		query = query.Where("entry_date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("entry_date <= ?", to)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		fail(c, err)
		return
	}

	var entries []models.LedgerEntry
	if err := query.Order("entry_date DESC").Offset((page - 1) * limit).Limit(limit).Find(&entries).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.Paginate(entries, total, page, limit, ""))
}

func (h *FinanceHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid entry id", nil, http.StatusBadRequest))
		return
	}

	var entry models.LedgerEntry
	if err := h.DB.First(&entry, id).Error; err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Ledger entry not found", nil, http.StatusNotFound))
		return
	}
	if donationDerived(&entry) {
		c.JSON(http.StatusBadRequest,
			common.NewErrorResponse("Donation-derived entries cannot be edited", nil, http.StatusBadRequest))
		return
	}

	var req ledgerEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if req.Type != models.LedgerIncome && req.Type != models.LedgerExpense {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("type must be income or expense", nil, http.StatusBadRequest))
		return
	}
	if !req.Amount.IsPositive() {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("amount must be greater than zero", nil, http.StatusBadRequest))
		return
	}

	entry.Type = req.Type
	entry.Category = req.Category
	entry.Amount = req.Amount
	entry.Description = req.Description
	entry.Reference = req.Reference
	entry.BranchID = req.BranchID
	if !req.Date.IsZero() {
		entry.Date = req.Date
	}
	if err := h.DB.Save(&entry).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(entry, "Ledger entry updated"))
}

func (h *FinanceHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid entry id", nil, http.StatusBadRequest))
		return
	}

	var entry models.LedgerEntry
	if err := h.DB.First(&entry, id).Error; err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Ledger entry not found", nil, http.StatusNotFound))
		return
	}
	if donationDerived(&entry) {
		c.JSON(http.StatusBadRequest,
			common.NewErrorResponse("Donation-derived entries cannot be deleted", nil, http.StatusBadRequest))
		return
	}
	if err := h.DB.Delete(&entry).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Ledger entry deleted"))
}

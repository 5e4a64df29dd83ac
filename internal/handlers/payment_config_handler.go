package handlers

import (
	"net/http"

	"church-service/internal/models"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PaymentConfigHandler struct {
	DB *gorm.DB
}

func NewPaymentConfigHandler(db *gorm.DB) *PaymentConfigHandler {
	return &PaymentConfigHandler{DB: db}
}

// List returns every gateway configuration with credentials stripped, even
// for admins; secrets are write-only through this API.
func (h *PaymentConfigHandler) List(c *gin.Context) {
	var configs []models.PaymentConfig
	if err := h.DB.Order("provider").Find(&configs).Error; err != nil {
		fail(c, err)
		return
	}
	public := make([]map[string]interface{}, 0, len(configs))
	for _, cfg := range configs {
		public = append(public, cfg.Public())
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(public, "success"))
}

type paymentConfigRequest struct {
	Name          string `json:"name" binding:"required"`
	Provider      string `json:"provider" binding:"required"`
	BaseURL       string `json:"baseUrl"`
	APIKey        string `json:"apiKey"`
	APISecret     string `json:"apiSecret"`
	MerchantID    string `json:"merchantId"`
	ShortCode     string `json:"shortCode"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
	BankName      string `json:"bankName"`
	BankBranch    string `json:"bankBranch"`
	SwiftCode     string `json:"swiftCode"`
	IsActive      bool   `json:"isActive"`
}

// Upsert creates or replaces a named gateway configuration.
func (h *PaymentConfigHandler) Upsert(c *gin.Context) {
	var req paymentConfigRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	if !models.ValidPaymentMethod(req.Provider) {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("unknown provider", nil, http.StatusBadRequest))
		return
	}

	cfg := models.PaymentConfig{
		Name:          req.Name,
		Provider:      req.Provider,
		BaseURL:       req.BaseURL,
		APIKey:        req.APIKey,
		APISecret:     req.APISecret,
		MerchantID:    req.MerchantID,
		ShortCode:     req.ShortCode,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
		BankName:      req.BankName,
		BankBranch:    req.BankBranch,
		SwiftCode:     req.SwiftCode,
		IsActive:      req.IsActive,
	}

	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		UpdateAll: true,
	}).Create(&cfg).Error
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(cfg.Public(), "Payment configuration saved"))
}

package handlers

import (
	"net/http"
	"strconv"

	"church-service/internal/services"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
)

type DonationHandler struct {
	Donations *services.DonationService
}

func NewDonationHandler(donations *services.DonationService) *DonationHandler {
	return &DonationHandler{Donations: donations}
}

// Create handles the public donation form submission.
func (h *DonationHandler) Create(c *gin.Context) {
	var input services.CreateDonationDTO
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	donation, err := h.Donations.Create(input)
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":  "Donation recorded. Thank you for your generosity.",
		"donation": donation,
	})
}

type updateStatusRequest struct {
	PaymentStatus    string `json:"paymentStatus" binding:"required"`
	PaymentReference string `json:"paymentReference"`
}

// UpdateStatus is the finance-role manual transition endpoint.
func (h *DonationHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid donation id", nil, http.StatusBadRequest))
		return
	}

	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	donation, err := h.Donations.UpdateStatus(uint(id), req.PaymentStatus, req.PaymentReference)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(donation, "Donation status updated"))
}

func (h *DonationHandler) Get(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid donation id", nil, http.StatusBadRequest))
		return
	}
	donation, err := h.Donations.GetByID(uint(id))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(donation, "success"))
}

func (h *DonationHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	filter := services.DonationFilter{
		Status:   c.Query("status"),
		Category: c.Query("category"),
		Page:     page,
		Limit:    limit,
	}
	if branch := c.Query("branchId"); branch != "" {
		if id, err := strconv.ParseUint(branch, 10, 32); err == nil {
			bid := uint(id)
			filter.BranchID = &bid
		}
	}

	result, err := h.Donations.List(filter)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *DonationHandler) Stats(c *gin.Context) {
	totals, err := h.Donations.Stats()
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(totals, "success"))
}

func (h *DonationHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid donation id", nil, http.StatusBadRequest))
		return
	}
	if err := h.Donations.Delete(uint(id)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Donation deleted"))
}

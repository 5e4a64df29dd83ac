package handlers

import (
	"net/http"
	"strconv"

	"church-service/internal/models"
	"church-service/pkg/common"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type BranchHandler struct {
	DB *gorm.DB
}

func NewBranchHandler(db *gorm.DB) *BranchHandler {
	return &BranchHandler{DB: db}
}

type branchRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location"`
	Pastor   string `json:"pastor"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func (h *BranchHandler) Create(c *gin.Context) {
	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}
	branch := models.Branch{
		Name:     req.Name,
		Location: req.Location,
		Pastor:   req.Pastor,
		Phone:    req.Phone,
		Email:    req.Email,
	}
	if err := h.DB.Create(&branch).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, common.NewSuccessResponse(branch, "Branch created"))
}

func (h *BranchHandler) List(c *gin.Context) {
	var branches []models.Branch
	if err := h.DB.Order("name").Find(&branches).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(branches, "success"))
}

func (h *BranchHandler) Update(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid branch id", nil, http.StatusBadRequest))
		return
	}

	var branch models.Branch
	if err := h.DB.First(&branch, id).Error; err != nil {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Branch not found", nil, http.StatusNotFound))
		return
	}

	var req branchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse(err.Error(), nil, http.StatusBadRequest))
		return
	}

	branch.Name = req.Name
	branch.Location = req.Location
	branch.Pastor = req.Pastor
	branch.Phone = req.Phone
	branch.Email = req.Email
	if err := h.DB.Save(&branch).Error; err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(branch, "Branch updated"))
}

// Delete removes a branch. Donations and ledger entries keep their branch_id;
// the reference is weak on purpose.
func (h *BranchHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, common.NewErrorResponse("invalid branch id", nil, http.StatusBadRequest))
		return
	}
	res := h.DB.Delete(&models.Branch{}, id)
	if res.Error != nil {
		fail(c, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, common.NewErrorResponse("Branch not found", nil, http.StatusNotFound))
		return
	}
	c.JSON(http.StatusOK, common.NewSuccessResponse(nil, "Branch deleted"))
}

package handlers

import (
	"net/http"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

type CompanyRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// --- POST /api/company ---
func CreateCompany(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var input CompanyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Company name is required"})
		return
	}

	// One active company per user.
	var existing models.Company
	if err := database.DB.Where("user_id = ? AND is_deleted = ?", userID, false).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "You already have an active company"})
		return
	}

	// Company names are unique across the system, deleted ones included,
	// because invoice numbers carry the name's prefix forever.
	var clash models.Company
	if err := database.DB.Where("name = ?", input.Name).First(&clash).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"message": "A company with this name already exists"})
		return
	}

	company := models.Company{
		UserID:        userID,
		Name:          input.Name,
		Address:       input.Address,
		Email:         input.Email,
		InvoicePrefix: "INV",
		CurrentNumber: 1000,
		IncrementBy:   1,
	}
	if err := database.DB.Create(&company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create company"})
		return
	}

	c.JSON(http.StatusCreated, company)
}

// --- GET /api/company ---
func GetMyCompany(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var owner models.User
	database.DB.First(&owner, company.UserID)

	c.JSON(http.StatusOK, gin.H{
		"company": company,
		"owner":   owner,
	})
}

// --- PUT /api/company ---
func UpdateCompany(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var input struct {
		Name    *string `json:"name"`
		Address *string `json:"address"`
		Email   *string `json:"email"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	if input.Name != nil && *input.Name != company.Name {
		var clash models.Company
		if err := database.DB.Where("name = ? AND id <> ?", *input.Name, company.ID).First(&clash).Error; err == nil {
			c.JSON(http.StatusConflict, gin.H{"message": "A company with this name already exists"})
			return
		}
		company.Name = *input.Name
	}
	if input.Address != nil {
		company.Address = *input.Address
	}
	if input.Email != nil {
		company.Email = *input.Email
	}

	if err := database.DB.Save(company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company updated successfully", "company": company})
}

// --- DELETE /api/company ---
// Soft delete: the books stay in the database but the tenant goes dark.
func DeleteCompany(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	company.IsDeleted = true
	if err := database.DB.Save(company).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete company"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted successfully"})
}

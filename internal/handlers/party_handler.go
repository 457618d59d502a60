package handlers

import (
	"net/http"
	"strings"

	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
)

type PartyRequest struct {
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobile_number"`
	Address      string `json:"address"`
	GSTNumber    string `json:"gst_number"`
}

func validPartyType(t string) bool {
	return t == models.PartyTypeCustomer || t == models.PartyTypeSupplier || t == models.PartyTypeBoth
}

// partyNameTaken checks the per-company, case-insensitive uniqueness rule
// among non-deleted parties. excludeID skips the party being updated.
func partyNameTaken(companyID uint, name string, excludeID uint) bool {
	var clash models.Party
	q := database.DB.
		Where("company_id = ? AND LOWER(name) = ? AND is_deleted = ?", companyID, strings.ToLower(name), false)
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	return q.First(&clash).Error == nil
}

// --- POST /api/parties ---
func CreateParty(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	var input PartyRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Party name is required"})
		return
	}

	if input.Type == "" {
		input.Type = models.PartyTypeCustomer
	}
	if !validPartyType(input.Type) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Type must be 'Customer', 'Supplier', or 'Both'"})
		return
	}

	if partyNameTaken(company.ID, input.Name, 0) {
		c.JSON(http.StatusConflict, gin.H{"message": "A party with this name already exists"})
		return
	}

	party := models.Party{
		CompanyID:    company.ID,
		Name:         input.Name,
		Type:         input.Type,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		Address:      input.Address,
		GSTNumber:    input.GSTNumber,
	}
	if err := database.DB.Create(&party).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create party"})
		return
	}

	c.JSON(http.StatusCreated, party)
}

// --- GET /api/parties ---
// Supports ?type=Customer|Supplier|Both, ?search=<name/email/mobile>,
// ?sort=name|recent (default name).
func GetParties(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}

	q := database.DB.Where("company_id = ? AND is_deleted = ?", company.ID, false)

	if t := c.Query("type"); t != "" {
		if !validPartyType(t) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Type must be 'Customer', 'Supplier', or 'Both'"})
			return
		}
		// "Both" parties satisfy either role filter.
		if t == models.PartyTypeBoth {
			q = q.Where("type = ?", t)
		} else {
			q = q.Where("type IN ?", []string{t, models.PartyTypeBoth})
		}
	}

	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		q = q.Where("name LIKE ? OR email LIKE ? OR mobile_number LIKE ?", like, like, like)
	}

	switch c.DefaultQuery("sort", "name") {
	case "recent":
		q = q.Order("created_at desc")
	default:
		q = q.Order("name asc")
	}

	var parties []models.Party
	if err := q.Find(&parties).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to fetch parties"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"parties": parties, "count": len(parties)})
}

// --- GET /api/parties/:id ---
func GetParty(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var party models.Party
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&party).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Party not found"})
		return
	}

	c.JSON(http.StatusOK, party)
}

// --- PUT /api/parties/:id ---
func UpdateParty(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var party models.Party
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&party).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Party not found"})
		return
	}

	var input struct {
		Name         *string `json:"name"`
		Type         *string `json:"type"`
		Email        *string `json:"email"`
		MobileNumber *string `json:"mobile_number"`
		Address      *string `json:"address"`
		GSTNumber    *string `json:"gst_number"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid input"})
		return
	}

	if input.Type != nil {
		if !validPartyType(*input.Type) {
			c.JSON(http.StatusBadRequest, gin.H{"message": "Type must be 'Customer', 'Supplier', or 'Both'"})
			return
		}
		party.Type = *input.Type
	}
	if input.Name != nil && *input.Name != party.Name {
		if partyNameTaken(company.ID, *input.Name, party.ID) {
			c.JSON(http.StatusConflict, gin.H{"message": "A party with this name already exists"})
			return
		}
		party.Name = *input.Name
	}
	if input.Email != nil {
		party.Email = *input.Email
	}
	if input.MobileNumber != nil {
		party.MobileNumber = *input.MobileNumber
	}
	if input.Address != nil {
		party.Address = *input.Address
	}
	if input.GSTNumber != nil {
		party.GSTNumber = *input.GSTNumber
	}

	if err := database.DB.Save(&party).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to update party"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Party updated successfully", "party": party})
}

// --- DELETE /api/parties/:id ---
// Soft delete. Historical transactions keep pointing at the row.
func DeleteParty(c *gin.Context) {
	company, ok := activeCompanyForUser(c)
	if !ok {
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var party models.Party
	if err := database.DB.
		Where("id = ? AND company_id = ? AND is_deleted = ?", id, company.ID, false).
		First(&party).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Party not found"})
		return
	}

	party.IsDeleted = true
	if err := database.DB.Save(&party).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to delete party"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Party deleted successfully"})
}

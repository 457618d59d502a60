package handlers

import (
	"net/http"

	"go-bizbooks/internal/auth"
	"go-bizbooks/internal/database"
	"go-bizbooks/internal/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type SignupRequest struct {
	Username     string `json:"username" binding:"required"`
	Email        string `json:"email" binding:"required,email"`
	MobileNumber string `json:"mobile_number" binding:"required"`
	Password     string `json:"password" binding:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func Signup(c *gin.Context) {
	var input SignupRequest

	// 1. Parse JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username, email, mobile number and a password of at least 6 characters are required"})
		return
	}

	// 2. Uniqueness check across username/email/mobile.
	// Deleted accounts still hold their identifiers, so no is_deleted filter.
	var existing models.User
	err := database.DB.
		Where("username = ? OR email = ? OR mobile_number = ?", input.Username, input.Email, input.MobileNumber).
		First(&existing).Error
	if err == nil {
		msg := "An account with this username already exists"
		if existing.Email == input.Email {
			msg = "An account with this email already exists"
		} else if existing.MobileNumber == input.MobileNumber {
			msg = "An account with this mobile number already exists"
		}
		c.JSON(http.StatusConflict, gin.H{"message": msg})
		return
	}

	// 3. Hash the Password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to hash password"})
		return
	}

	// 4. Save to DB
	user := models.User{
		Username:     input.Username,
		Email:        input.Email,
		MobileNumber: input.MobileNumber,
		PasswordHash: string(hashedPassword),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to create account"})
		return
	}

	// 5. Log them straight in
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"token":   token,
		"user":    user,
	})
}

func Login(c *gin.Context) {
	var input LoginRequest

	// 1. Validate Input JSON
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Username and password are required"})
		return
	}

	// 2. Find the active user (username or email both work)
	var user models.User
	err := database.DB.
		Where("(username = ? OR email = ?) AND is_deleted = ?", input.Username, input.Username, false).
		First(&user).Error
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	// 3. Verify Password (Bcrypt)
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid credentials"})
		return
	}

	// 4. Generate JWT Token
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user":  user,
	})
}

// Me returns the authenticated account plus its active company, if one exists.
func Me(c *gin.Context) {
	userID := c.MustGet("userID").(uint)

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Account not found"})
		return
	}

	var company models.Company
	hasCompany := database.DB.
		Where("user_id = ? AND is_deleted = ?", userID, false).
		First(&company).Error == nil

	resp := gin.H{"user": user}
	if hasCompany {
		resp["company"] = company
	}
	c.JSON(http.StatusOK, resp)
}

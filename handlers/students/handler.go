package students

import (
	"net/http"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
)

type profileInput struct {
	Country      string `json:"country" binding:"required"`
	FieldOfStudy string `json:"fieldOfStudy" binding:"required"`
	University   string `json:"university" binding:"required"`
}

// CreateProfile turns the connected account into a student awaiting
// verification. Verification gates campaign creation, so the profile starts
// PENDING regardless of the account's history.
// @Summary Create a student profile
// @Description Register the connected user as a student pending verification
// @Tags students
// @Accept json
// @Produce json
// @Param profile body profileInput true "Student profile"
// @Security BearerAuth
// @Success 201 {object} map[string]string "message: Student profile created. Awaiting verification."
// @Failure 400 {object} map[string]string "error: Student profile already exists"
// @Router /students/profile [post]
func CreateProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var input profileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Country, field of study and university are required"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in CreateProfile")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if user.Role == models.StudentRole {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Student profile already exists"})
		return
	}

	updates := map[string]interface{}{
		"role":                models.StudentRole,
		"verification_status": models.VerificationPending,
		"country":             input.Country,
		"field_of_study":      input.FieldOfStudy,
		"university":          input.University,
	}
	if err := db.DB.Model(&user).Updates(updates).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating student profile")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the student profile"})
		return
	}

	utils.LogSuccessWithUser(userID, "Student profile created")
	c.JSON(http.StatusCreated, gin.H{"message": "Student profile created. Awaiting verification."})
}

// @Summary Get the connected student's profile
// @Description Return the student profile of the connected user
// @Tags students
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "profile"
// @Failure 404 {object} map[string]string "error: Student profile not found"
// @Router /students/profile [get]
func GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ? AND role = ?", userID, models.StudentRole).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Student profile not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": gin.H{
		"country":            user.Country,
		"fieldOfStudy":       user.FieldOfStudy,
		"university":         user.University,
		"verificationStatus": user.VerificationStatus,
		"verifiedAt":         user.VerifiedAt,
		"rejectionReason":    user.RejectionReason,
	}})
}

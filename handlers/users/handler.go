package users

import (
	"errors"
	"net/http"
	"time"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Get the connected user
// @Description Return the profile of the connected user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /users/me [get]
func GetMe(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", userID).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "User not found in GetMe")
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, user)
}

type verifyStudentInput struct {
	Action string `json:"action" binding:"required"`
	Reason string `json:"reason"`
}

// VerifyStudent approves or rejects a student profile. Verification gates
// campaign creation.
// @Summary Approve or reject a student
// @Description Set the verification status of a student account
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Student user id"
// @Param verification body verifyStudentInput true "action: approve or reject, optional reason"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Student verification updated"
// @Failure 400 {object} map[string]string "error: action must be 'approve' or 'reject'"
// @Failure 404 {object} map[string]string "error: Student not found"
// @Router /admin/students/{id}/verify [put]
func VerifyStudent(c *gin.Context) {
	studentID := c.Param("id")

	var input verifyStudentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	if input.Action != "approve" && input.Action != "reject" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "action must be 'approve' or 'reject'"})
		return
	}

	var student models.User
	if err := db.DB.First(&student, "id = ? AND role = ?", studentID, models.StudentRole).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Student not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching the student"})
		return
	}

	updates := map[string]interface{}{}
	if input.Action == "approve" {
		now := time.Now()
		updates["verification_status"] = models.VerificationVerified
		updates["verified_at"] = now
		updates["rejection_reason"] = ""
	} else {
		updates["verification_status"] = models.VerificationRejected
		updates["rejection_reason"] = input.Reason
	}

	if err := db.DB.Model(&student).Updates(updates).Error; err != nil {
		utils.LogError(err, "Error updating verification status for student "+studentID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the verification status"})
		return
	}

	utils.LogSuccess("Student " + studentID + " verification " + input.Action + "d")
	c.JSON(http.StatusOK, gin.H{"message": "Student verification updated"})
}

// @Summary List students pending verification
// @Description Return student accounts awaiting verification
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.User
// @Router /admin/students/pending [get]
func GetPendingStudents(c *gin.Context) {
	var students []models.User
	if err := db.DB.
		Where("role = ? AND verification_status = ?", models.StudentRole, models.VerificationPending).
		Order("created_at ASC").
		Find(&students).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching pending students"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

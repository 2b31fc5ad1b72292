package users

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const maxUsersPageSize = 50

// @Summary Platform statistics
// @Description Aggregate counts over users, verifications, campaigns and paid donations
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "data: users, verifications, campaigns, donations"
// @Router /admin/stats [get]
func GetPlatformStats(c *gin.Context) {
	var totalUsers, studentCount, donorCount, adminCount int64
	if err := db.DB.Model(&models.User{}).Count(&totalUsers).Error; err != nil {
		utils.LogError(err, "Error counting users for platform stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing statistics"})
		return
	}
	db.DB.Model(&models.User{}).Where("role = ?", models.StudentRole).Count(&studentCount)
	db.DB.Model(&models.User{}).Where("role = ?", models.DonorRole).Count(&donorCount)
	db.DB.Model(&models.User{}).Where("role = ?", models.AdminRole).Count(&adminCount)

	var pendingCount, verifiedCount, rejectedCount int64
	db.DB.Model(&models.User{}).
		Where("role = ? AND verification_status = ?", models.StudentRole, models.VerificationPending).
		Count(&pendingCount)
	db.DB.Model(&models.User{}).
		Where("role = ? AND verification_status = ?", models.StudentRole, models.VerificationVerified).
		Count(&verifiedCount)
	db.DB.Model(&models.User{}).
		Where("role = ? AND verification_status = ?", models.StudentRole, models.VerificationRejected).
		Count(&rejectedCount)

	var totalCampaigns, activeCampaigns, completedCampaigns int64
	db.DB.Model(&models.Campaign{}).Count(&totalCampaigns)
	db.DB.Model(&models.Campaign{}).Where("status = ?", models.CampaignActive).Count(&activeCampaigns)
	db.DB.Model(&models.Campaign{}).Where("status = ?", models.CampaignCompleted).Count(&completedCampaigns)

	// totals over the ledger only count money that actually came in
	var totalAmount float64
	var totalDonations int64
	row := db.DB.Model(&models.Donation{}).
		Where("payment_status = ?", models.PaymentPaid).
		Select("COALESCE(SUM(amount), 0), COUNT(*)").
		Row()
	if err := row.Scan(&totalAmount, &totalDonations); err != nil {
		utils.LogError(err, "Error aggregating donations for platform stats")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error computing statistics"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"users": gin.H{
			"total":    totalUsers,
			"students": studentCount,
			"donors":   donorCount,
			"admins":   adminCount,
		},
		"verifications": gin.H{
			"pending":  pendingCount,
			"verified": verifiedCount,
			"rejected": rejectedCount,
		},
		"campaigns": gin.H{
			"total":     totalCampaigns,
			"active":    activeCampaigns,
			"completed": completedCampaigns,
		},
		"donations": gin.H{
			"totalAmount": totalAmount,
			"totalCount":  totalDonations,
		},
	}})
}

// @Summary List users
// @Description Return user accounts, newest first, optionally filtered by role
// @Tags admin
// @Produce json
// @Param role query string false "Filter by role"
// @Param page query int false "Page, starting at 1"
// @Param limit query int false "Page size, max 50"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "users, pagination"
// @Router /admin/users [get]
func GetAllUsers(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > maxUsersPageSize {
		limit = maxUsersPageSize
	}

	query := db.DB.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", strings.ToUpper(role))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError(err, "Error counting users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching users"})
		return
	}

	var users []models.User
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&users).Error; err != nil {
		utils.LogError(err, "Error fetching users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching users"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"pagination": gin.H{
			"page":  page,
			"limit": limit,
			"total": total,
		},
	})
}

type updateRoleInput struct {
	Role string `json:"role" binding:"required"`
}

// UpdateUserRole changes an account's role. An admin cannot demote their own
// account, so the platform always keeps at least the acting admin.
// @Summary Change a user's role
// @Description Set the role of a user account
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "User id"
// @Param role body updateRoleInput true "New role"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: User role updated"
// @Failure 400 {object} map[string]string "error: Invalid role"
// @Failure 404 {object} map[string]string "error: User not found"
// @Router /admin/users/{id}/role [put]
func UpdateUserRole(c *gin.Context) {
	targetID := c.Param("id")

	var input updateRoleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	var newRole models.Role
	switch strings.ToUpper(input.Role) {
	case string(models.AdminRole):
		newRole = models.AdminRole
	case string(models.StudentRole):
		newRole = models.StudentRole
	case string(models.DonorRole):
		newRole = models.DonorRole
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role"})
		return
	}

	if adminID, exists := c.Get("user_id"); exists {
		if id, ok := adminID.(string); ok && id == targetID && newRole != models.AdminRole {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot demote yourself"})
			return
		}
	}

	var user models.User
	if err := db.DB.First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching the user"})
		return
	}

	if err := db.DB.Model(&user).Update("role", newRole).Error; err != nil {
		utils.LogError(err, "Error updating role for user "+targetID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the role"})
		return
	}

	utils.LogSuccess("User " + targetID + " role changed to " + string(newRole))
	c.JSON(http.StatusOK, gin.H{"message": "User role updated to " + string(newRole)})
}

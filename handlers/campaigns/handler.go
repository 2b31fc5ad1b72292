package campaigns

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/skairipa08/FundEd2/db"
	"github.com/skairipa08/FundEd2/models"
	"github.com/skairipa08/FundEd2/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

var validCategories = map[models.CampaignCategory]bool{
	models.CategoryTuition:   true,
	models.CategoryBooks:     true,
	models.CategoryLaptop:    true,
	models.CategoryHousing:   true,
	models.CategoryTravel:    true,
	models.CategoryEmergency: true,
}

// @Summary List active campaigns
// @Description Return active campaigns with optional category filter, text search and pagination
// @Tags campaigns
// @Produce json
// @Param category query string false "Campaign category"
// @Param search query string false "Text search over title and story"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 12, max 50)"
// @Success 200 {object} map[string]interface{} "campaigns, total, page, limit"
// @Router /campaigns [get]
func GetAllCampaigns(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "12"))
	if err != nil || limit < 1 {
		limit = 12
	}
	if limit > 50 {
		limit = 50
	}

	query := db.DB.Model(&models.Campaign{}).Where("status = ?", models.CampaignActive)

	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if search := c.Query("search"); search != "" {
		pattern := "%" + search + "%"
		query = query.Where("title ILIKE ? OR story ILIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.LogError(err, "Error counting campaigns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching campaigns"})
		return
	}

	var campaigns []models.Campaign
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&campaigns).Error; err != nil {
		utils.LogError(err, "Error fetching campaigns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": campaigns,
		"total":     total,
		"page":      page,
		"limit":     limit,
	})
}

// @Summary Get a campaign
// @Description Return one campaign by id
// @Tags campaigns
// @Produce json
// @Param id path string true "Campaign id"
// @Success 200 {object} models.Campaign
// @Failure 404 {object} map[string]string "error: Campaign not found"
// @Router /campaigns/{id} [get]
func GetCampaignByID(c *gin.Context) {
	campaignID := c.Param("id")

	var campaign models.Campaign
	if err := db.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		utils.LogError(err, "Error fetching campaign "+campaignID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching campaign"})
		return
	}

	c.JSON(http.StatusOK, campaign)
}

// @Summary Create a campaign
// @Description Create a campaign for the connected, verified student
// @Tags campaigns
// @Accept json
// @Produce json
// @Param campaign body models.CampaignCreate true "Campaign information"
// @Security BearerAuth
// @Success 201 {object} models.Campaign
// @Failure 400 {object} map[string]string "error: Invalid input"
// @Failure 403 {object} map[string]string "error: Only verified students can create campaigns"
// @Router /campaigns [post]
func CreateCampaign(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var input models.CampaignCreate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	category := models.CampaignCategory(input.Category)
	if !validCategories[category] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid campaign category"})
		return
	}

	var student models.User
	if err := db.DB.First(&student, "id = ?", userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if student.Role != models.StudentRole || student.VerificationStatus != models.VerificationVerified {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only verified students can create campaigns"})
		return
	}

	campaign := models.Campaign{
		StudentID:    student.ID,
		Title:        input.Title,
		Story:        input.Story,
		Category:     category,
		TargetAmount: input.TargetAmount,
		Timeline:     input.Timeline,
		Status:       models.CampaignActive,
	}

	if err := db.DB.Create(&campaign).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error creating campaign")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating the campaign"})
		return
	}

	utils.LogSuccessWithUser(userID, "Campaign created successfully")
	c.JSON(http.StatusCreated, campaign)
}

// @Summary List my campaigns
// @Description Return the campaigns of the connected student
// @Tags campaigns
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.Campaign
// @Failure 401 {object} map[string]string "error: Unauthorized"
// @Router /campaigns/my [get]
func GetMyCampaigns(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not found in token"})
		return
	}

	var campaigns []models.Campaign
	if err := db.DB.Where("student_id = ?", userID).Order("created_at DESC").Find(&campaigns).Error; err != nil {
		utils.LogErrorWithUser(userID, err, "Error fetching campaigns")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching campaigns"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

var adminStatusTransitions = map[models.CampaignStatus]bool{
	models.CampaignActive:    true,
	models.CampaignCancelled: true,
	models.CampaignSuspended: true,
}

// UpdateCampaignStatus lets an admin suspend, cancel or reactivate a
// campaign. COMPLETED is never set here: it is owned by the webhook
// processor.
// @Summary Update a campaign status
// @Description Suspend, cancel or reactivate a campaign with a reason
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Campaign id"
// @Param status body models.CampaignStatusUpdate true "New status and reason"
// @Security BearerAuth
// @Success 200 {object} map[string]string "message: Campaign status updated"
// @Failure 400 {object} map[string]string "error: Invalid status"
// @Failure 404 {object} map[string]string "error: Campaign not found"
// @Router /admin/campaigns/{id}/status [put]
func UpdateCampaignStatus(c *gin.Context) {
	campaignID := c.Param("id")

	var input models.CampaignStatusUpdate
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}

	status := models.CampaignStatus(input.Status)
	if !adminStatusTransitions[status] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		return
	}

	var campaign models.Campaign
	if err := db.DB.First(&campaign, "id = ?", campaignID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Campaign not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching the campaign"})
		return
	}

	if err := db.DB.Model(&campaign).Updates(map[string]interface{}{
		"status":        status,
		"status_reason": input.Reason,
	}).Error; err != nil {
		utils.LogError(err, "Error updating status for campaign "+campaignID)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error updating the campaign status"})
		return
	}

	utils.LogSuccess("Campaign " + campaignID + " status set to " + string(status))
	c.JSON(http.StatusOK, gin.H{"message": "Campaign status updated"})
}

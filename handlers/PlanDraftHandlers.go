package handlers

import (
	"backend/models"
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Plan drafts persist a planner's block layout across sessions. The draft
// stores the serialized plan as JSON; reopening a draft seeds a fresh planner
// session with it.

// SaveErectionPlanDraft godoc
// @Summary      Save a named erection plan draft
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        project_id  path  int  true  "Project ID"
// @Param        body        body  models.PlanDraftRequest  true  "Draft name and plan"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/erection_planner/draft/{project_id} [post]
func SaveErectionPlanDraft(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, userName, userID, ok := plannerAuth(c, db)
		if !ok {
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var req models.PlanDraftRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		planJSON, err := json.Marshal(req.Plan)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Plan is not serializable", "details": err.Error()})
			return
		}

		draft := models.PlanDraftGorm{
			ProjectID: projectID,
			UserID:    userID,
			Name:      req.Name,
			Plan:      string(planJSON),
			CreatedAt: time.Now(),
			UpdatedAt: time.Now(),
		}

		if err := gormDB.Create(&draft).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save draft", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Draft saved", "draft": draft})

		logPlannerActivity(db, session, userName, "POST", "Saved erection plan draft", projectID)
	}
}

// ListErectionPlanDrafts godoc
// @Summary      List plan drafts for a project
// @Tags         planner
// @Produce      json
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/draft/{project_id} [get]
func ListErectionPlanDrafts(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		var drafts []models.PlanDraftGorm
		if err := gormDB.Where("project_id = ?", projectID).
			Order("updated_at DESC").
			Find(&drafts).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list drafts", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, drafts)
	}
}

// GetErectionPlanDraft godoc
// @Summary      Fetch a single plan draft
// @Tags         planner
// @Produce      json
// @Param        draft_id  path  int  true  "Draft ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/erection_planner/draft/plan/{draft_id} [get]
func GetErectionPlanDraft(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}

		draftID, err := strconv.Atoi(c.Param("draft_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID"})
			return
		}

		var draft models.PlanDraftGorm
		if err := gormDB.First(&draft, draftID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch draft", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, draft)
	}
}

// DeleteErectionPlanDraft godoc
// @Summary      Delete a plan draft
// @Tags         planner
// @Produce      json
// @Param        draft_id  path  int  true  "Draft ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/erection_planner/draft/plan/{draft_id} [delete]
func DeleteErectionPlanDraft(db *sql.DB, gormDB *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, userName, _, ok := plannerAuth(c, db)
		if !ok {
			return
		}

		draftID, err := strconv.Atoi(c.Param("draft_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid draft ID"})
			return
		}

		var draft models.PlanDraftGorm
		if err := gormDB.First(&draft, draftID).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				c.JSON(http.StatusNotFound, gin.H{"error": "Draft not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch draft", "details": err.Error()})
			return
		}

		if err := gormDB.Delete(&draft).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete draft", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Draft deleted"})

		logPlannerActivity(db, session, userName, "DELETE", "Deleted erection plan draft", draft.ProjectID)
	}
}

// PurgeStaleDrafts removes soft-deleted drafts and drafts untouched for the
// retention window. Called from the scheduled cleanup job.
func PurgeStaleDrafts(gormDB *gorm.DB, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	result := gormDB.Unscoped().
		Where("updated_at < ? OR deleted_at IS NOT NULL", cutoff).
		Delete(&models.PlanDraftGorm{})
	return result.RowsAffected, result.Error
}

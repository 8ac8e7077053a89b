package handlers

import (
	"backend/models"
	"backend/planner"
	"backend/repository"
	"backend/services"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// Planner handlers host the interactive erection planning sessions: a user
// opens a planner against a project's stockyard snapshot, edits a multi-block
// plan and finally submits it as a stock erection request.

// plannerAuth resolves the caller's session the same way every other handler
// does. Returns ok=false after writing the error response.
func plannerAuth(c *gin.Context, db *sql.DB) (models.Session, string, int, bool) {
	sessionID := c.GetHeader("Authorization")
	if sessionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
		return models.Session{}, "", 0, false
	}
	session, userName, err := GetSessionDetails(db, sessionID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
		return models.Session{}, "", 0, false
	}

	var userID int
	err = db.QueryRow(`SELECT user_id FROM session WHERE session_id = $1`, sessionID).Scan(&userID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
		return models.Session{}, "", 0, false
	}

	return session, userName, userID, true
}

// findPlannerSession looks up the planning session named by the plan_id route
// parameter. Returns nil after writing the error response.
func findPlannerSession(c *gin.Context, store *planner.SessionStore) *planner.Session {
	planID := c.Param("plan_id")
	session, err := store.Get(planID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Planner session not found", "details": err.Error()})
		return nil
	}
	return session
}

func logPlannerActivity(db *sql.DB, session models.Session, userName, eventName, description string, projectID int) {
	activityLog := models.ActivityLog{
		EventContext: "Erection Planner",
		EventName:    eventName,
		Description:  description,
		UserName:     userName,
		HostName:     session.HostName,
		IPAddress:    session.IPAddress,
		CreatedAt:    time.Now(),
		ProjectID:    projectID,
	}
	if err := SaveActivityLog(db, activityLog); err != nil {
		log.Printf("Failed to log planner activity: %v", err)
	}
}

// planState is the response body shared by every plan mutation: the full plan,
// the per-type allocation totals and the category choices still open to each
// row of the active block.
func planState(ps *planner.Session) gin.H {
	rowCategories := make(map[string][]string)
	for _, row := range ps.Plan.ActiveBlock().Selections {
		rowCategories[row.ID] = ps.Plan.AvailableCategories(ps.Catalog, row.ID)
	}

	return gin.H{
		"plan_id":           ps.ID,
		"status":            ps.Status,
		"message":           ps.Message,
		"plan":              ps.Plan,
		"allocation_totals": ps.Plan.AllocationTotals(),
		"towers":            ps.Catalog.Towers(),
		"floors":            ps.Catalog.Floors(ps.Plan.ActiveBlock().Tower),
		"row_categories":    rowCategories,
	}
}

// OpenErectionPlanner godoc
// @Summary      Open an erection planning session for a project
// @Tags         planner
// @Produce      json
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/erection_planner/{project_id} [post]
func OpenErectionPlanner(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
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

		ps, err := store.Open(c.Request.Context(), projectID, userID, StockSnapshotFetcher(db))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open planner session", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"plan_id": ps.ID,
			"status":  ps.Status,
			"message": ps.Message,
			"catalog": ps.Catalog,
			"plan":    ps.Plan,
		})

		logPlannerActivity(db, session, userName, "POST", "Opened erection planner session", projectID)
	}
}

// GetPlannerState godoc
// @Summary      Current plan and allocation totals of a planning session
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Failure      404  {object}  models.ErrorResponse
// @Router       /api/erection_planner/plan/{plan_id} [get]
func GetPlannerState(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		ps.Lock()
		defer ps.Unlock()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// RefreshPlannerCatalog godoc
// @Summary      Re-fetch the stockyard snapshot for a planning session
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/refresh [post]
func RefreshPlannerCatalog(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, userName, _, ok := plannerAuth(c, db)
		if !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		if err := store.Reload(c.Request.Context(), ps, StockSnapshotFetcher(db)); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to refresh catalog", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		c.JSON(http.StatusOK, planState(ps))

		logPlannerActivity(db, session, userName, "POST", "Refreshed planner catalog", ps.ProjectID)
	}
}

// CloseErectionPlanner godoc
// @Summary      Discard a planning session
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id} [delete]
func CloseErectionPlanner(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, userName, _, ok := plannerAuth(c, db)
		if !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		store.Delete(ps.ID)
		c.JSON(http.StatusOK, gin.H{"message": "Planner session closed"})

		logPlannerActivity(db, session, userName, "DELETE", "Closed erection planner session", ps.ProjectID)
	}
}

// SelectPlannerTower godoc
// @Summary      Set the active block's tower
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        body     body  models.SelectTowerRequest  true  "Tower selection"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/tower [put]
func SelectPlannerTower(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.SelectTowerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		ps.Plan.SelectTower(req.Tower)
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// SelectPlannerFloor godoc
// @Summary      Set the active block's floor, keeping the tower
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        body     body  models.SelectFloorRequest  true  "Floor selection"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/floor [put]
func SelectPlannerFloor(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.SelectFloorRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		ps.Plan.SelectFloor(req.Floor)
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// AddPlannerRow godoc
// @Summary      Add a selection row to the active block
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/rows [post]
func AddPlannerRow(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		ps.Lock()
		defer ps.Unlock()
		rowID := ps.Plan.AddRow()
		ps.Touch()

		state := planState(ps)
		state["row_id"] = rowID
		c.JSON(http.StatusOK, state)
	}
}

// RemovePlannerRow godoc
// @Summary      Remove a selection row from the active block
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        row_id   path  string  true  "Row ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/rows/{row_id} [delete]
func RemovePlannerRow(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		ps.Lock()
		defer ps.Unlock()
		if err := ps.Plan.RemoveRow(c.Param("row_id")); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Row not found", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// SetPlannerRowCategory godoc
// @Summary      Scope a row to an element category
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        row_id   path  string  true  "Row ID"
// @Param        body     body  models.SetCategoryRequest  true  "Category"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/rows/{row_id}/category [put]
func SetPlannerRowCategory(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.SetCategoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()

		rowID := c.Param("row_id")
		offered := ps.Plan.AvailableCategories(ps.Catalog, rowID)
		found := false
		for _, category := range offered {
			if category == req.Category {
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Category not available for this row"})
			return
		}

		if err := ps.Plan.SetRowCategory(rowID, req.Category); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Row not found", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// TogglePlannerItem godoc
// @Summary      Select or deselect an element type in a row
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        row_id   path  string  true  "Row ID"
// @Param        body     body  models.ToggleItemRequest  true  "Element type"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/rows/{row_id}/toggle [post]
func TogglePlannerItem(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.ToggleItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()

		block := ps.Plan.ActiveBlock()
		var record planner.ElementTypeRecord
		found := false
		for _, candidate := range ps.Catalog[block.Tower][block.Floor] {
			if candidate.ElementTypeID == req.ElementTypeID {
				record = candidate
				found = true
				break
			}
		}
		if !found {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Element type not available on the selected floor"})
			return
		}

		if err := ps.Plan.ToggleItem(c.Param("row_id"), record); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Row not found", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// SetPlannerQuantity godoc
// @Summary      Set the requested quantity for a selected item
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        row_id   path  string  true  "Row ID"
// @Param        body     body  models.SetQuantityRequest  true  "Item index and quantity"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/rows/{row_id}/quantity [put]
func SetPlannerQuantity(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.SetQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		if err := ps.Plan.SetQuantity(c.Param("row_id"), req.ItemIndex, req.Quantity); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Selection not found", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// AddPlannerBlock godoc
// @Summary      Add a destination block to the plan
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        body     body  models.AddBlockRequest  true  "Duplication mode"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/blocks [post]
func AddPlannerBlock(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.AddBlockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		if err := ps.Plan.AddBlock(req.Mode); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block mode", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// RemovePlannerBlock godoc
// @Summary      Remove a destination block from the plan
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        index    path  int     true  "Block index"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/blocks/{index} [delete]
func RemovePlannerBlock(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block index"})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		if err := ps.Plan.RemoveBlock(index); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block index", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// SetActivePlannerBlock godoc
// @Summary      Switch which block is open for editing
// @Tags         planner
// @Accept       json
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Param        body     body  models.SetActiveBlockRequest  true  "Block index"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/active [put]
func SetActivePlannerBlock(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		var req models.SetActiveBlockRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		ps.Lock()
		defer ps.Unlock()
		if err := ps.Plan.SetActive(req.Block); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid block index", "details": err.Error()})
			return
		}
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// ResetPlanner godoc
// @Summary      Discard all blocks and start over
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/reset [post]
func ResetPlanner(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		ps.Lock()
		defer ps.Unlock()
		ps.Plan.Reset()
		ps.Touch()
		c.JSON(http.StatusOK, planState(ps))
	}
}

// ReviewErectionPlan godoc
// @Summary      Dry-run assembly of the plan into a request payload
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Router       /api/erection_planner/plan/{plan_id}/review [get]
func ReviewErectionPlan(db *sql.DB, store *planner.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, _, _, ok := plannerAuth(c, db); !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		ps.Lock()
		defer ps.Unlock()

		payload, reasons := planner.Assemble(ps.Plan)
		summary := planner.Summarize(ps.Plan)
		if len(reasons) > 0 {
			c.JSON(http.StatusOK, gin.H{
				"submittable": false,
				"reasons":     reasons,
				"summary":     summary,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"submittable": true,
			"payload":     payload,
			"summary":     summary,
		})
	}
}

// SubmitErectionPlan godoc
// @Summary      Submit the plan as a stock erection request
// @Tags         planner
// @Produce      json
// @Param        plan_id  path  string  true  "Planner session ID"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Router       /api/erection_planner/plan/{plan_id}/submit [post]
func SubmitErectionPlan(db *sql.DB, store *planner.SessionStore, fcmService *services.FCMService, emailService *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, userName, userID, ok := plannerAuth(c, db)
		if !ok {
			return
		}
		ps := findPlannerSession(c, store)
		if ps == nil {
			return
		}

		ps.Lock()
		defer ps.Unlock()

		payload, reasons := planner.Assemble(ps.Plan)
		if len(reasons) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Plan cannot be submitted",
				"reasons": reasons,
			})
			return
		}

		projectIDs, err := processErectionRequest(db, userID, payload)
		if err != nil {
			// The plan is left untouched so the user can retry
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process erection request", "details": err.Error()})
			return
		}

		summary := planner.Summarize(ps.Plan)
		towerName := ps.Plan.ActiveBlock().Tower
		requestNumber := repository.GenerateRequestCode()
		ps.Plan.Reset()
		ps.Touch()

		c.JSON(http.StatusOK, gin.H{
			"message":        "Stock erection request successfully processed",
			"request_number": requestNumber,
			"payload":        payload,
			"summary":        summary,
		})

		notifyErectionRequest(db, userID, projectIDs)

		for projectID := range projectIDs {
			var projectName string
			if err := db.QueryRow("SELECT name FROM project WHERE project_id = $1", projectID).Scan(&projectName); err != nil {
				projectName = fmt.Sprintf("Project %d", projectID)
			}

			if fcmService != nil {
				pushErr := fcmService.SendNotificationWithDB(c.Request.Context(), userID,
					"Erection request submitted",
					fmt.Sprintf("Stock erection request created for project: %s", projectName),
					map[string]string{"action": fmt.Sprintf("/project/%d/elementinerectionsite", projectID)},
					fmt.Sprintf("/project/%d/elementinerectionsite", projectID))
				if pushErr != nil {
					log.Printf("Failed to push submission notification: %v", pushErr)
				}
			}

			if emailService != nil {
				user, userErr := getUserByID(db, userID)
				if userErr != nil {
					log.Printf("Failed to load user for submission email: %v", userErr)
					continue
				}
				emailErr := emailService.SendErectionRequestEmail(*user, projectName, requestNumber,
					towerName, summary.TotalUnits)
				if emailErr != nil {
					log.Printf("Failed to send submission email: %v", emailErr)
				}
			}
		}

		logPlannerActivity(db, session, userName, "POST", "Erection plan submitted", ps.ProjectID)
	}
}

func getUserByID(db *sql.DB, userID int) (*models.User, error) {
	var user models.User
	err := db.QueryRow(`SELECT id, email, first_name, last_name FROM users WHERE id = $1`, userID).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

package handlers

import (
	"backend/models"
	"backend/planner"
	"backend/utils"
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

type StockErectionRequest map[string][]struct {
	ElementTypeID int `json:"element_type_id" binding:"required"`
	Quantity      int `json:"quantity" binding:"required"`
}

// stockSnapshotQuery aggregates stockyard counts per tower, floor and element
// type. Balance counts exclude elements already ordered for erection, which
// are reported separately as left elements.
const stockSnapshotQuery = `
SELECT
    ps.element_type,
    ps.element_type_id,
    et.element_type_name,
    COALESCE(pp.name, 'Unknown Tower') AS tower_name,
    COALESCE(p.name, 'Unknown Floor') AS floor_name,
    COALESCE(p.id, -1) AS floor_id,
    COUNT(*) AS total_elements,
    COALESCE(erection_count.total_erection_elements, 0) AS total_erection_elements
FROM precast_stock ps
JOIN precast p ON ps.target_location = p.id
LEFT JOIN precast pp ON p.parent_id = pp.id
LEFT JOIN element_type et ON ps.element_type_id = et.element_type_id
LEFT JOIN element e ON ps.element_id = e.id
LEFT JOIN (
    SELECT ps2.element_type_id, ps2.target_location, COUNT(*) AS total_erection_elements
    FROM precast_stock ps2
    JOIN element e2 ON ps2.element_id = e2.id
    WHERE ps2.project_id = $1
        AND ps2.stockyard = 'true'
        AND ps2.order_by_erection = 'true'
        AND e2.disable = 'false'
    GROUP BY ps2.element_type_id, ps2.target_location
) erection_count ON ps.element_type_id = erection_count.element_type_id
                AND ps.target_location = erection_count.target_location
WHERE ps.project_id = $1
    AND ps.stockyard = 'true'
    AND ps.order_by_erection = 'false'
    AND e.disable = 'false'
GROUP BY ps.element_type, ps.element_type_id, et.element_type_name, pp.name, p.name, p.id, erection_count.total_erection_elements
ORDER BY pp.name, p.name, et.element_type_name;
`

// queryStockSnapshot runs the stockyard aggregation and shapes the result as
// tower -> floor -> element_type, the same layout served to older clients.
func queryStockSnapshot(ctx context.Context, db *sql.DB, projectID int) (planner.RawStockSnapshot, error) {
	ctx, cancel := utils.GetSlowQueryContext(ctx)
	defer cancel()

	rows, err := db.QueryContext(ctx, stockSnapshotQuery, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshot := make(planner.RawStockSnapshot)
	for rows.Next() {
		var elementType, elementTypeName, towerName, floorName string
		var elementTypeID, totalElements, totalErectionElements, floorID int

		if err := rows.Scan(
			&elementType, &elementTypeID, &elementTypeName, &towerName, &floorName, &floorID,
			&totalElements, &totalErectionElements); err != nil {
			return nil, err
		}

		if _, exists := snapshot[towerName]; !exists {
			snapshot[towerName] = make(map[string]map[string]planner.RawStockRecord)
		}
		if _, exists := snapshot[towerName][floorName]; !exists {
			snapshot[towerName][floorName] = make(map[string]planner.RawStockRecord)
		}

		snapshot[towerName][floorName][elementType] = planner.RawStockRecord{
			"element_type":      elementType,
			"element_type_id":   elementTypeID,
			"element_type_name": elementTypeName,
			"Balance_elements":  totalElements,
			"left _elements":    totalErectionElements,
			"floor_id":          floorID,
			"disable":           false,
		}
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return snapshot, nil
}

// StockSnapshotFetcher adapts the stockyard query into the fetcher the
// planner session store expects.
func StockSnapshotFetcher(db *sql.DB) planner.CatalogFetcher {
	return func(ctx context.Context, projectID int) (planner.RawStockSnapshot, error) {
		return queryStockSnapshot(ctx, db, projectID)
	}
}

// GetElementlistFromStockYard godoc
// @Summary      Stockyard element counts grouped by tower and floor
// @Tags         stockyard
// @Produce      json
// @Param        project_id  path  int  true  "Project ID"
// @Success      200  {object}  object
// @Failure      400  {object}  models.ErrorResponse
// @Failure      401  {object}  models.ErrorResponse
// @Router       /api/stockyard_elements/{project_id} [get]
func GetElementlistFromStockYard(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		projectID, err := strconv.Atoi(c.Param("project_id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		snapshot, err := queryStockSnapshot(c.Request.Context(), db, projectID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("Failed to execute query: %v", err)})
			return
		}

		if len(snapshot) == 0 {
			c.JSON(http.StatusOK, gin.H{})
			return
		}

		c.JSON(http.StatusOK, snapshot)

		log := models.ActivityLog{
			EventContext: "Stockyard",
			EventName:    "Get",
			Description:  "Get Element List from Stockyard",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    projectID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Request served but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

// processErectionRequest claims the oldest unordered stock rows for each
// requested element type and floor, marks them ordered and writes the pending
// log entries. Returns the set of project IDs touched by the request.
func processErectionRequest(db *sql.DB, userID int, req planner.SubmissionPayload) (map[int]bool, error) {
	projectIDs := make(map[int]bool)

	for floorID, elements := range req {
		for _, element := range elements {
			query := `SELECT id, element_type, element_id, project_id
                      FROM precast_stock
                      WHERE element_type_id = $1 AND target_location = $2 AND order_by_erection = FALSE
                      ORDER BY id ASC LIMIT $3`

			rows, err := db.Query(query, element.ElementTypeID, floorID, element.Quantity)
			if err != nil {
				return nil, fmt.Errorf("failed to fetch elements: %v", err)
			}

			type claimedStock struct {
				id, elementID, projectID int
			}
			var claimed []claimedStock
			for rows.Next() {
				var cs claimedStock
				var elementType string
				if err := rows.Scan(&cs.id, &elementType, &cs.elementID, &cs.projectID); err != nil {
					rows.Close()
					return nil, fmt.Errorf("failed to scan element: %v", err)
				}
				claimed = append(claimed, cs)
			}
			if err := rows.Err(); err != nil {
				rows.Close()
				return nil, err
			}
			rows.Close()

			for _, cs := range claimed {
				projectIDs[cs.projectID] = true
				orderAt := time.Now()

				tx, err := db.Begin()
				if err != nil {
					return nil, fmt.Errorf("failed to start transaction: %v", err)
				}

				var stockErectedID int
				err = tx.QueryRow(`
					INSERT INTO stock_erected (precast_stock_id, element_id, project_id, order_at)
					VALUES ($1, $2, $3, $4)
					RETURNING id`, cs.id, cs.elementID, cs.projectID, orderAt).Scan(&stockErectedID)
				if err != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to insert stock erection: %v", err)
				}

				_, err = tx.Exec(`
					INSERT INTO stock_erected_logs
					(stock_erected_id, element_id, status, acted_by, comments)
					VALUES ($1, $2, $3, $4, $5)`,
					stockErectedID,
					cs.elementID,
					"Pending",
					userID,
					"Initial erection request",
				)
				if err != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to insert log entry: %v", err)
				}

				_, err = tx.Exec(`
					UPDATE precast_stock
					SET order_by_erection = TRUE
					WHERE id = $1`, cs.id)
				if err != nil {
					tx.Rollback()
					return nil, fmt.Errorf("failed to update precast stock: %v", err)
				}

				if err = tx.Commit(); err != nil {
					return nil, fmt.Errorf("failed to commit transaction: %v", err)
				}
			}
		}
	}

	return projectIDs, nil
}

// notifyErectionRequest fans out notifications for every project touched by
// an erection request.
func notifyErectionRequest(db *sql.DB, userID int, projectIDs map[int]bool) {
	for projectID := range projectIDs {
		var projectName string
		err := db.QueryRow("SELECT name FROM project WHERE project_id = $1", projectID).Scan(&projectName)
		if err != nil {
			log.Printf("Failed to fetch project name: %v", err)
			projectName = fmt.Sprintf("Project %d", projectID)
		}

		message := fmt.Sprintf("Stock erection request created for project: %s", projectName)
		actionURL := fmt.Sprintf("https://precastezy.blueinvent.com/project/%d/elementinerectionsite", projectID)

		_, err = db.Exec(`
			INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
			VALUES ($1, $2, 'unread', $3, NOW(), NOW())
		`, userID, message, actionURL)
		if err != nil {
			log.Printf("Failed to insert notification: %v", err)
		}

		sendProjectNotifications(db, projectID, message, actionURL)
	}
}

// RageStockRequestByErection godoc
// @Summary      Stock erection request
// @Tags         erection
// @Accept       json
// @Produce      json
// @Param        body  body      object  true  "Stock erection request (map of floor_id to element type quantities)"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Failure      401   {object}  models.ErrorResponse
// @Router       /api/stock_erection [post]
func RageStockRequestByErection(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var req StockErectionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
			return
		}

		var userID int
		err = db.QueryRow(`
			SELECT user_id
			FROM session
			WHERE session_id = $1`, sessionID).Scan(&userID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		payload := make(planner.SubmissionPayload, len(req))
		for floorID, elements := range req {
			for _, element := range elements {
				payload[floorID] = append(payload[floorID], planner.SubmissionItem{
					ElementTypeID: element.ElementTypeID,
					Quantity:      element.Quantity,
				})
			}
		}

		projectIDs, err := processErectionRequest(db, userID, payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process erection request", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Stock erection request successfully processed"})

		notifyErectionRequest(db, userID, projectIDs)

		activityLog := models.ActivityLog{
			EventContext: "Erection",
			EventName:    "POST",
			Description:  "Stock Erection Request processed",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    0,
		}
		if logErr := SaveActivityLog(db, activityLog); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Request processed but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

func GetErectionOrderData(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		projectIDStr := c.Param("project_id")
		projectID, err := strconv.Atoi(projectIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		query := `
            SELECT
    se.precast_stock_id,
    se.element_id,
    ps.element_type_id,
    et.element_type_name,
    ps.element_type,
    e.element_id,
    COALESCE(p.name, 'Unknown Floor') AS floor_name,
    COALESCE(pp.name, 'Unknown Tower') AS tower_name,
    COALESCE(p.id, -1) AS floor_id,
    BOOL_OR(e.disable) AS disable
FROM stock_erected se
JOIN precast_stock ps ON se.element_id = ps.element_id
JOIN element_type et ON ps.element_type_id = et.element_type_id
JOIN precast p ON ps.target_location = p.id
LEFT JOIN precast pp ON p.parent_id = pp.id
LEFT JOIN element e ON se.element_id = e.id
WHERE se.erected = 'false' AND se.recieve_in_erection = 'false' AND se.approved_status = 'false' AND ps.project_id = $1 AND e.disable = 'false'
GROUP BY
    se.precast_stock_id,
    se.element_id,
    ps.element_type_id,
    et.element_type_name,
    ps.element_type,
    e.element_id,
    p.name,
    pp.name,
    p.id;
        `

		rows, err := db.Query(query, projectID)
		if err != nil {
			log.Printf("Query error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch erection order data"})
			return
		}
		defer rows.Close()

		items := make([]models.ErectionOrderResponce, 0)
		for rows.Next() {
			var item models.ErectionOrderResponce
			var disable bool
			if err := rows.Scan(
				&item.PrecastStockID,
				&item.ElementID,
				&item.ElementTypeID,
				&item.ElementTypeName,
				&item.ElementType,
				&item.ElementName,
				&item.FloorName,
				&item.TowerName,
				&item.FloorID,
				&disable,
			); err != nil {
				log.Printf("Scan error: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse result"})
				return
			}
			item.Disable = disable
			items = append(items, item)
		}

		if err := rows.Err(); err != nil {
			log.Printf("Row iteration error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading data"})
			return
		}

		c.JSON(http.StatusOK, items)

		log := models.ActivityLog{
			EventContext: "Erection",
			EventName:    "Get",
			Description:  "Get Erection Order Data",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    projectID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Request served but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

func GetApprovedErectionOrderData(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		projectIDStr := c.Param("project_id")
		projectID, err := strconv.Atoi(projectIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project ID"})
			return
		}

		query := `
            SELECT
    se.precast_stock_id,
    se.element_id,
    ps.element_type_id,
    et.element_type_name,
    ps.element_type,
    COALESCE(ps.weight, 0) AS element_type_weight,
    e.element_id,
    COALESCE(p.name, 'Unknown Floor') AS floor_name,
    COALESCE(pp.name, 'Unknown Tower') AS tower_name,
    COALESCE(p.id, -1) AS floor_id,
    BOOL_OR(e.disable) AS disable,
    latest_log.status
FROM stock_erected se
JOIN precast_stock ps ON se.element_id = ps.element_id
JOIN element_type et ON ps.element_type_id = et.element_type_id
JOIN precast p ON ps.target_location = p.id
LEFT JOIN precast pp ON p.parent_id = pp.id
LEFT JOIN element e ON se.element_id = e.id
LEFT JOIN LATERAL (
    SELECT status
    FROM stock_erected_logs
    WHERE stock_erected_id = se.id
    AND status IN ('Approved', 'Rejected','Erected','Received')
    ORDER BY action_timestamp DESC
    LIMIT 1
) latest_log ON true
WHERE se.approved_status = 'true'
    AND ps.project_id = $1
    AND e.disable = 'false'
    AND latest_log.status IS NOT NULL
GROUP BY
    se.precast_stock_id,
    se.element_id,
    ps.element_type_id,
    et.element_type_name,
    ps.element_type,
    ps.weight,
    e.element_id,
    p.name,
    pp.name,
    p.id,
    latest_log.status;
        `

		rows, err := db.Query(query, projectID)
		if err != nil {
			log.Printf("Query error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch approved erection order data"})
			return
		}
		defer rows.Close()

		items := make([]models.ErectionOrderResponce, 0)
		for rows.Next() {
			var item models.ErectionOrderResponce
			var disable bool
			var status sql.NullString
			if err := rows.Scan(
				&item.PrecastStockID,
				&item.ElementID,
				&item.ElementTypeID,
				&item.ElementTypeName,
				&item.ElementType,
				&item.ElementTypeWeight,
				&item.ElementName,
				&item.FloorName,
				&item.TowerName,
				&item.FloorID,
				&disable,
				&status,
			); err != nil {
				log.Printf("Scan error: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to parse result"})
				return
			}
			item.Disable = disable
			if status.Valid {
				item.Status = status.String
			}
			items = append(items, item)
		}

		if err := rows.Err(); err != nil {
			log.Printf("Row iteration error: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error reading data"})
			return
		}

		c.JSON(http.StatusOK, items)

		log := models.ActivityLog{
			EventContext: "Erection",
			EventName:    "Get",
			Description:  "Get Approved Erection Order Data",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    projectID,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Request served but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

// UpdateStockByPlaning godoc
// @Summary      Approve or reject requested erection stock
// @Tags         erection
// @Accept       json
// @Produce      json
// @Param        body  body  array   true  "Update stock requests"
// @Success      200   {object}  object
// @Failure      400   {object}  models.ErrorResponse
// @Router       /api/update_stock [put]
func UpdateStockByPlaning(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req []models.UpdateStockRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			log.Printf("JSON binding error: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		if len(req) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Request body cannot be empty"})
			return
		}

		for _, item := range req {
			if !item.ApprovedStatus && item.Comments == "" {
				c.JSON(http.StatusBadRequest, gin.H{
					"error":      "Comments are required when rejecting an item",
					"element_id": item.ElementID,
				})
				return
			}
		}

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ID is required"})
			return
		}

		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var userID int
		var firstName, lastName string
		err = db.QueryRow(`
			SELECT u.id, u.first_name, u.last_name
			FROM session s
			JOIN users u ON s.user_id = u.id
			WHERE s.session_id = $1`, sessionID).Scan(&userID, &firstName, &lastName)
		if err != nil {
			log.Printf("Error fetching user details: %v", err)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}
		fullName := strings.TrimSpace(firstName + " " + lastName)

		// Only act on element IDs that actually have a pending erection record
		var elementIDs []interface{}
		placeholders := make([]string, len(req))
		for i, item := range req {
			elementIDs = append(elementIDs, item.ElementID)
			placeholders[i] = fmt.Sprintf("$%d", i+1)
		}

		checkQuery := fmt.Sprintf("SELECT element_id FROM stock_erected WHERE element_id IN (%s)",
			strings.Join(placeholders, ", "))
		rows, err := db.Query(checkQuery, elementIDs...)
		if err != nil {
			log.Printf("Database error while checking element IDs: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database check failed", "details": err.Error()})
			return
		}
		existingIDs := make(map[int]bool)
		for rows.Next() {
			var elementID int
			if err := rows.Scan(&elementID); err != nil {
				log.Printf("Error scanning element_id: %v", err)
				continue
			}
			existingIDs[elementID] = true
		}
		rows.Close()

		var validUpdates []models.UpdateStockRequest
		var missingIDs []int
		for _, item := range req {
			if existingIDs[item.ElementID] {
				validUpdates = append(validUpdates, item)
			} else {
				missingIDs = append(missingIDs, item.ElementID)
			}
		}

		if len(validUpdates) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No valid element IDs found", "missing_ids": missingIDs})
			return
		}

		for _, item := range validUpdates {
			comments := item.Comments
			if item.ApprovedStatus {
				comments = "Approved"
			}
			_, err = db.Exec(`
				UPDATE stock_erected
				SET approved_status = $1,
					comments = $2,
					action_approve_or_reject = CURRENT_TIMESTAMP
				WHERE element_id = $3`,
				item.ApprovedStatus, comments, item.ElementID)
			if err != nil {
				log.Printf("Database error while updating stock: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Database update failed", "details": err.Error()})
				return
			}
		}

		for _, item := range validUpdates {
			if item.ApprovedStatus {
				_, err = db.Exec(`UPDATE precast_stock SET order_by_erection = TRUE WHERE element_id = $1`, item.ElementID)
				if err != nil {
					log.Printf("Error updating precast_stock for approved item: %v", err)
					continue
				}
			}
		}

		for _, item := range validUpdates {
			var stockErectedID int
			err := db.QueryRow("SELECT id FROM stock_erected WHERE element_id = $1", item.ElementID).Scan(&stockErectedID)
			if err != nil {
				log.Printf("Error getting stock_erected_id: %v", err)
				continue
			}

			if item.ApprovedStatus {
				_, err = db.Exec(`
					UPDATE stock_erected_logs
					SET status = 'Approved',
						acted_by = $1,
						comments = 'Approved',
						action_timestamp = CURRENT_TIMESTAMP
					WHERE stock_erected_id = $2
					AND element_id = $3
					AND status = 'Pending'`,
					userID,
					stockErectedID,
					item.ElementID,
				)
			} else {
				_, err = db.Exec(`
					INSERT INTO stock_erected_logs
					(stock_erected_id, element_id, status, acted_by, comments)
					VALUES ($1, $2, 'Rejected', $3, $4)`,
					stockErectedID,
					item.ElementID,
					userID,
					item.Comments,
				)
			}
			if err != nil {
				log.Printf("Error writing approval log: %v", err)
				continue
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message":       "Stock status updated successfully",
			"updated_count": len(validUpdates),
			"missing_ids":   missingIDs,
			"acted_by":      fullName,
		})

		projectIDs := make(map[int]bool)
		for _, item := range validUpdates {
			var projectID int
			err = db.QueryRow("SELECT project_id FROM stock_erected WHERE element_id = $1", item.ElementID).Scan(&projectID)
			if err == nil {
				projectIDs[projectID] = true
			}
		}

		for projectID := range projectIDs {
			var projectName string
			err = db.QueryRow("SELECT name FROM project WHERE project_id = $1", projectID).Scan(&projectName)
			if err != nil {
				log.Printf("Failed to fetch project name: %v", err)
				projectName = fmt.Sprintf("Project %d", projectID)
			}

			message := fmt.Sprintf("Stock erection approval status updated for project: %s", projectName)
			actionURL := fmt.Sprintf("https://precastezy.blueinvent.com/project/%d/elementinerectionsite", projectID)

			_, err = db.Exec(`
				INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
				VALUES ($1, $2, 'unread', $3, NOW(), NOW())
			`, userID, message, actionURL)
			if err != nil {
				log.Printf("Failed to insert notification: %v", err)
			}

			sendProjectNotifications(db, projectID, message, actionURL)
		}

		activityLog := models.ActivityLog{
			EventContext: "Stock",
			EventName:    "PUT",
			Description:  "Update Stock By Planning",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    0,
		}
		if logErr := SaveActivityLog(db, activityLog); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Stock updated but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

func GetStockErectedLogs(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "session_id header is missing"})
			return
		}
		session, userName, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		projectID := c.Param("project_id")
		if projectID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "project_id parameter is required"})
			return
		}

		projectIDInt, err := strconv.Atoi(projectID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id format"})
			return
		}

		query := `
			SELECT
				sel.id,
				sel.stock_erected_id,
				sel.element_id,
				sel.status,
				sel.acted_by,
				sel.comments,
				sel.action_timestamp,
				u.first_name,
				u.last_name,
				ps.element_type_id,
				et.element_type_name,
				COALESCE(e.element_id, '') AS element_name,
				COALESCE(NULLIF(substring(ps.dimensions FROM 'Thickness: ([0-9\.]+)mm'), '')::NUMERIC, 0) AS thickness,
				COALESCE(NULLIF(substring(ps.dimensions FROM 'Length: ([0-9\.]+)mm'), '')::NUMERIC, 0) AS length,
				COALESCE(ps.weight, 0) AS weight,
				COALESCE(pp.name, 'Unknown Tower') AS tower_name,
				COALESCE(p.name, 'Unknown Floor') AS floor_name
			FROM
				stock_erected_logs sel
			JOIN
				users u ON sel.acted_by = u.id
			JOIN
				stock_erected se ON sel.stock_erected_id = se.id
			JOIN
				precast_stock ps ON se.precast_stock_id = ps.id
			LEFT JOIN
				element e ON se.element_id = e.id
			LEFT JOIN
				element_type et ON ps.element_type_id = et.element_type_id
			LEFT JOIN
				precast p ON ps.target_location = p.id
			LEFT JOIN
				precast pp ON p.parent_id = pp.id
			WHERE ps.project_id = $1
			ORDER BY
				sel.action_timestamp DESC`

		rows, err := db.QueryContext(c.Request.Context(), query, projectIDInt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch logs"})
			return
		}
		defer rows.Close()

		var logs []models.StockErectedLog
		for rows.Next() {
			var stockLog models.StockErectedLog
			var firstName, lastName string
			var elementTypeID sql.NullInt64
			var elementTypeName sql.NullString
			var towerName, floorName sql.NullString

			if err := rows.Scan(
				&stockLog.ID,
				&stockLog.StockErectedID,
				&stockLog.ElementID,
				&stockLog.Status,
				&stockLog.ActedBy,
				&stockLog.Comments,
				&stockLog.CreatedAt,
				&firstName,
				&lastName,
				&elementTypeID,
				&elementTypeName,
				&stockLog.ElementName,
				&stockLog.Thickness,
				&stockLog.Length,
				&stockLog.Weight,
				&towerName,
				&floorName,
			); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan log data"})
				return
			}

			if elementTypeID.Valid {
				stockLog.ElementTypeID = int(elementTypeID.Int64)
			}
			if elementTypeName.Valid {
				stockLog.ElementTypeName = elementTypeName.String
			}
			if towerName.Valid {
				stockLog.TowerName = towerName.String
			}
			if floorName.Valid {
				stockLog.FloorName = floorName.String
			}

			stockLog.ActedByName = strings.TrimSpace(firstName + " " + lastName)
			logs = append(logs, stockLog)
		}

		if err = rows.Err(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error iterating log rows"})
			return
		}

		c.JSON(http.StatusOK, logs)

		log := models.ActivityLog{
			EventContext: "Erection",
			EventName:    "Get",
			Description:  "Get Stock Erected Logs",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    projectIDInt,
		}
		if logErr := SaveActivityLog(db, log); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Request served but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

// UpdateErectedStatus godoc
// @Summary      Mark elements as received in erection site
// @Tags         erection
// @Accept       json
// @Produce      json
// @Param        body  body  object  true  "Erection status update"
// @Success      200   {object}  object
// @Router       /api/erection_stock/update [post]
func UpdateErectedStatus(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UpdateErectedStatusRequest

		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload", "details": err.Error()})
			return
		}

		if len(req.ElementIDs) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Element IDs array cannot be empty"})
			return
		}

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ID is required"})
			return
		}

		session, _, err := GetSessionDetails(db, sessionID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "details": err.Error()})
			return
		}

		var userID int
		var userName string
		err = db.QueryRow(`
			SELECT u.id, u.first_name || ' ' || u.last_name AS full_name
			FROM users u
			JOIN session s ON u.id = s.user_id
			WHERE s.session_id = $1`, sessionID).Scan(&userID, &userName)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
			return
		}

		tx, err := db.Begin()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
			return
		}
		defer tx.Rollback()

		for _, elementID := range req.ElementIDs {
			_, err = tx.Exec(`
				UPDATE stock_erected
				SET recieve_in_erection = true
				WHERE element_id = $1
				AND project_id = $2
				AND approved_status = true`,
				elementID,
				req.ProjectID,
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update erection status"})
				return
			}

			_, err = tx.Exec(`
				INSERT INTO stock_erected_logs
				(stock_erected_id, element_id, status, acted_by)
				SELECT
					id,
					$1,
					'Received',
					$2
				FROM stock_erected
				WHERE element_id = $1
				AND project_id = $3`,
				elementID,
				userID,
				req.ProjectID,
			)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to insert log entry"})
				return
			}
		}

		if err = tx.Commit(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit transaction"})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "Erection status updated successfully",
			"count":   len(req.ElementIDs),
		})

		var projectName string
		err = db.QueryRow("SELECT name FROM project WHERE project_id = $1", req.ProjectID).Scan(&projectName)
		if err != nil {
			log.Printf("Failed to fetch project name: %v", err)
			projectName = fmt.Sprintf("Project %d", req.ProjectID)
		}

		message := fmt.Sprintf("Elements received in erection site for project: %s", projectName)
		actionURL := fmt.Sprintf("https://precastezy.blueinvent.com/project/%d/elementinerectionsite", req.ProjectID)

		_, err = db.Exec(`
			INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
			VALUES ($1, $2, 'unread', $3, NOW(), NOW())
		`, userID, message, actionURL)
		if err != nil {
			log.Printf("Failed to insert notification: %v", err)
		}

		sendProjectNotifications(db, req.ProjectID, message, actionURL)

		activityLog := models.ActivityLog{
			EventContext: "Erection",
			EventName:    "PUT",
			Description:  "Update Erected Status",
			UserName:     userName,
			HostName:     session.HostName,
			IPAddress:    session.IPAddress,
			CreatedAt:    time.Now(),
			ProjectID:    req.ProjectID,
		}
		if logErr := SaveActivityLog(db, activityLog); logErr != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Status updated but failed to log activity",
				"details": logErr.Error(),
			})
			return
		}
	}
}

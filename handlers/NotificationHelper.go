package handlers

import (
	"backend/models"
	"backend/services"
	"database/sql"
	"log"
	"time"
)

// Global FCM service - will be set from main.go
var GlobalFCMService *services.FCMService

// SetFCMService sets the global FCM service
func SetFCMService(fcmService *services.FCMService) {
	GlobalFCMService = fcmService
}

// SendNotificationHelper is a convenience function to send push notifications
// This can be called from any handler without needing to pass fcmService
func SendNotificationHelper(db *sql.DB, userID int, title, body string, data map[string]string, action string) {
	SendPushNotification(db, GlobalFCMService, userID, title, body, data, action)
}

// SendNotificationToUsersHelper sends notifications to multiple users
func SendNotificationToUsersHelper(db *sql.DB, userIDs []int, title, body string, data map[string]string) {
	SendPushNotificationToUsers(db, GlobalFCMService, userIDs, title, body, data)
}

// SendNotificationToProjectMembers sends notifications to all members of a project
func SendNotificationToProjectMembers(db *sql.DB, projectID int, title, body string, data map[string]string) {
	rows, err := db.Query(`SELECT user_id FROM project_members WHERE project_id = $1`, projectID)
	if err != nil {
		log.Printf("Error fetching project members for notification: %v", err)
		return
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			log.Printf("Error scanning user ID: %v", err)
			continue
		}
		userIDs = append(userIDs, userID)
	}

	if len(userIDs) > 0 {
		SendNotificationToUsersHelper(db, userIDs, title, body, data)
	}
}

// sendProjectNotifications writes an in-app notification for every project
// stakeholder: members plus client users linked through the end client.
func sendProjectNotifications(db *sql.DB, projectID int, message string, action string) {
	query := `
		SELECT DISTINCT u.id
		FROM users u
		WHERE u.id IN (
			SELECT pm.user_id
			FROM project_members pm
			WHERE pm.project_id = $1

			UNION

			SELECT cl.user_id
			FROM project p
			JOIN end_client ec ON p.client_id = ec.id
			JOIN client cl ON ec.client_id = cl.client_id
			WHERE p.project_id = $1 AND cl.user_id IS NOT NULL
		)
	`

	rows, err := db.Query(query, projectID)
	if err != nil {
		log.Printf("Failed to fetch project stakeholders: %v", err)
		return
	}
	defer rows.Close()

	var userIDs []int
	for rows.Next() {
		var userID int
		if err := rows.Scan(&userID); err != nil {
			log.Printf("Failed to scan user ID: %v", err)
			continue
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		log.Printf("Error iterating over user IDs: %v", err)
		return
	}

	now := time.Now()
	for _, userID := range userIDs {
		notif := models.Notification{
			UserID:    userID,
			Message:   message,
			Status:    "unread",
			Action:    action,
			CreatedAt: now,
			UpdatedAt: now,
		}

		_, err = db.Exec(`
			INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, notif.UserID, notif.Message, notif.Status, notif.Action, notif.CreatedAt, notif.UpdatedAt)

		if err != nil {
			log.Printf("Failed to insert notification for user %d: %v", userID, err)
		}
	}
}

package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/jwt"
)

// FCMService handles Firebase Cloud Messaging operations using the HTTP v1 API
type FCMService struct {
	projectID   string
	db          *sql.DB
	httpClient  *http.Client
	tokenSource oauth2.TokenSource
}

// ServiceAccountCredentials represents the structure of a Firebase service account JSON
type ServiceAccountCredentials struct {
	Type         string `json:"type"`
	ProjectID    string `json:"project_id"`
	PrivateKeyID string `json:"private_key_id"`
	PrivateKey   string `json:"private_key"`
	ClientEmail  string `json:"client_email"`
	TokenURI     string `json:"token_uri"`
}

// NewFCMService initializes an FCM service from a service account JSON file
func NewFCMService(credentialsPath string, db *sql.DB) (*FCMService, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("credentials path is required")
	}

	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("error reading credentials file: %v", err)
	}

	var creds ServiceAccountCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("error parsing credentials: %v", err)
	}

	// Keys exported from the Firebase console sometimes carry escaped newlines
	privateKey := []byte(strings.ReplaceAll(creds.PrivateKey, "\\n", "\n"))

	config := &jwt.Config{
		Email:      creds.ClientEmail,
		PrivateKey: privateKey,
		Scopes:     []string{"https://www.googleapis.com/auth/firebase.messaging"},
		TokenURL:   creds.TokenURI,
	}

	return &FCMService{
		projectID:   creds.ProjectID,
		db:          db,
		httpClient:  &http.Client{},
		tokenSource: config.TokenSource(context.Background()),
	}, nil
}

// SendNotification sends a push notification to a single FCM token
func (f *FCMService) SendNotification(ctx context.Context, token, title, body string, data map[string]string) error {
	if token == "" {
		return fmt.Errorf("FCM token cannot be empty")
	}

	oauthToken, err := f.tokenSource.Token()
	if err != nil {
		return fmt.Errorf("error getting OAuth token: %v", err)
	}

	if data == nil {
		data = map[string]string{}
	}

	message := map[string]interface{}{
		"message": map[string]interface{}{
			"token": token,
			"notification": map[string]string{
				"title": title,
				"body":  body,
			},
			"data": data,
			"webpush": map[string]interface{}{
				"notification": map[string]interface{}{
					"title": title,
					"body":  body,
				},
				"fcm_options": map[string]interface{}{
					"link": data["action"],
				},
			},
		},
	}

	endpoint := fmt.Sprintf("https://fcm.googleapis.com/v1/projects/%s/messages:send", f.projectID)
	return f.sendHTTPv1Request(ctx, endpoint, oauthToken.AccessToken, message)
}

// SendNotificationToUser sends a push notification to a user by their user ID
func (f *FCMService) SendNotificationToUser(ctx context.Context, userID int, title, body string, data map[string]string) error {
	var fcmToken string
	err := f.db.QueryRow(`SELECT fcm_token FROM users WHERE id = $1 AND fcm_token IS NOT NULL AND fcm_token != ''`, userID).Scan(&fcmToken)
	if err != nil {
		if err == sql.ErrNoRows {
			// User has no registered device, nothing to do
			return nil
		}
		return fmt.Errorf("error fetching FCM token for user %d: %v", userID, err)
	}

	return f.SendNotification(ctx, fcmToken, title, body, data)
}

// SendNotificationToUsers sends push notifications to multiple users by their user IDs
func (f *FCMService) SendNotificationToUsers(ctx context.Context, userIDs []int, title, body string, data map[string]string) error {
	if len(userIDs) == 0 {
		return nil
	}

	placeholders := make([]string, len(userIDs))
	args := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = id
	}

	query := fmt.Sprintf(`SELECT fcm_token FROM users WHERE id IN (%s) AND fcm_token IS NOT NULL AND fcm_token != ''`, strings.Join(placeholders, ","))
	rows, err := f.db.Query(query, args...)
	if err != nil {
		return fmt.Errorf("error fetching FCM tokens: %v", err)
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			log.Printf("Error scanning FCM token: %v", err)
			continue
		}
		if token != "" {
			tokens = append(tokens, token)
		}
	}

	failureCount := 0
	for _, token := range tokens {
		if err := f.SendNotification(ctx, token, title, body, data); err != nil {
			failureCount++
			log.Printf("Failed to send to token %s: %v", token, err)
		}
	}
	if failureCount > 0 {
		log.Printf("Failed to send %d notifications out of %d", failureCount, len(tokens))
	}

	return nil
}

// SaveFCMToken saves or updates the FCM token for a user
func (f *FCMService) SaveFCMToken(userID int, token string) error {
	_, err := f.db.Exec(`UPDATE users SET fcm_token = $1 WHERE id = $2`, token, userID)
	if err != nil {
		return fmt.Errorf("error saving FCM token: %v", err)
	}
	return nil
}

// RemoveFCMToken removes the FCM token for a user
func (f *FCMService) RemoveFCMToken(userID int) error {
	_, err := f.db.Exec(`UPDATE users SET fcm_token = NULL WHERE id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error removing FCM token: %v", err)
	}
	return nil
}

// sendHTTPv1Request sends an HTTP POST request to the FCM HTTP v1 API
func (f *FCMService) sendHTTPv1Request(ctx context.Context, endpoint, accessToken string, payload map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshaling payload: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("error creating request: %v", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", accessToken))

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error sending request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		log.Printf("FCM API error: status code %d, body: %s", resp.StatusCode, respBody)
		return fmt.Errorf("FCM API error: status code %d, body: %s", resp.StatusCode, respBody)
	}

	return nil
}

// SendNotificationWithDB sends a push notification and also saves it to the database
func (f *FCMService) SendNotificationWithDB(ctx context.Context, userID int, title, body string, data map[string]string, action string) error {
	if err := f.SendNotificationToUser(ctx, userID, title, body, data); err != nil {
		// Still record the notification even when the push fails
		log.Printf("Error sending push notification to user %d: %v", userID, err)
	}

	_, err := f.db.Exec(`
		INSERT INTO notifications (user_id, message, status, action, created_at, updated_at)
		VALUES ($1, $2, 'unread', $3, NOW(), NOW())
	`, userID, body, action)
	if err != nil {
		return fmt.Errorf("error saving notification to database: %v", err)
	}

	return nil
}

package models

import (
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

type User struct {
	ID             int       `json:"id" example:"1"`
	EmployeeId     string    `json:"employee_id" example:"EMP001"`
	Email          string    `json:"email" example:"user@example.com"`
	Password       string    `json:"password" example:""`
	FirstName      string    `json:"first_name" example:"John"`
	LastName       string    `json:"last_name" example:"Doe"`
	CreatedAt      time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt      time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	FirstAccess    time.Time `json:"first_access,omitempty" example:"2024-01-15T10:30:00Z"`
	LastAccess     time.Time `json:"last_access,omitempty" example:"2024-01-15T10:30:00Z"`
	ProfilePic     string    `json:"profile_picture" example:""`
	IsAdmin        bool      `json:"is_admin" example:"false"`
	PhoneNo        string    `json:"phone_no" example:"9876543210"`
	RoleID         int       `json:"role_id" example:"1"`
	RoleName       string    `json:"role_name" example:"Manager"`
	Suspended      bool      `json:"suspended" example:"false"`
	ProjectSuspend bool      `json:"project_suspend" example:"false"`
}

type Session struct {
	UserID                int       `json:"user_id"`
	SessionID             string    `json:"session_id"`
	HostName              string    `json:"host_name"`
	IPAddress             string    `json:"ip_address"`
	Timestamp             time.Time `json:"timestp"`
	ExpiresAt             time.Time `json:"expires_at"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at,omitempty"`
}

func GetSessionBySessionID(db *sql.DB, sessionID string) (*Session, error) {
	query := `SELECT session_id, user_id, host_name, timestp FROM session WHERE session_id = $1`

	var session Session

	err := db.QueryRow(query, sessionID).Scan(&session.SessionID, &session.UserID, &session.HostName, &session.Timestamp)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.New("session not found")
		}
		return nil, err
	}

	return &session, nil
}

type Notification struct {
	ID        int       `json:"id" example:"1"`
	UserID    int       `json:"user_id" example:"1"`
	Message   string    `json:"message" example:"Erection request submitted"`
	Status    string    `json:"status" example:"unread"`
	Action    string    `json:"action" example:"view"`
	CreatedAt time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt time.Time `json:"updated_at" example:"2024-01-15T10:30:00Z"`
}

type ActivityLog struct {
	ID                int       `json:"id" example:"1"`
	CreatedAt         time.Time `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UserName          string    `json:"user_name" example:"John Doe"`
	HostName          string    `json:"host_name" example:"workstation-01"`
	EventContext      string    `json:"event_context" example:"erection"`
	IPAddress         string    `json:"ip_address" example:"192.168.1.1"`
	Description       string    `json:"description" example:"Erection request placed"`
	EventName         string    `json:"event_name" example:"erection_request"`
	AffectedUserName  string    `json:"affected_user_name"`
	AffectedUserEmail string    `json:"affected_user_email"`
	ProjectID         int       `json:"project_id" example:"1"`
}

type StockErected struct {
	ID             int `json:"id"`
	PrecastStockID int `json:"precast_stock_id"`
	ProjectID      int `json:"project_id"`
}

type UpdateStockRequest struct {
	ElementID      int    `json:"element_id"`
	ApprovedStatus bool   `json:"approved_status"`
	Comments       string `json:"comments" binding:"required_if=ApprovedStatus false"`
}

type UpdateErectedStatusRequest struct {
	ElementIDs []int `json:"element_ids" binding:"required"`
	ProjectID  int   `json:"project_id" binding:"required"`
}

// StockErectedLog represents a log entry for stock erected actions
type StockErectedLog struct {
	ID             int       `json:"id"`
	StockErectedID int       `json:"stock_erected_id"`
	ElementID      int       `json:"element_id"`
	Status         string    `json:"status"` // "Approved", "Rejected", or "Pending"
	ActedBy        int       `json:"acted_by"`
	ActedByName    string    `json:"acted_by_name"` // Combined first_name and last_name
	Comments       string    `json:"comments"`
	CreatedAt      time.Time `json:"Action_at"`
	// Additional fields for element details
	ElementTypeID   int     `json:"element_type_id"`
	ElementTypeName string  `json:"element_type_name"`
	ElementName     string  `json:"element_name"` // Element code/name from element table
	Thickness       float64 `json:"thickness"`    // From precast_stock dimensions (mm)
	Length          float64 `json:"length"`       // From precast_stock dimensions (mm)
	Weight          float64 `json:"weight"`       // From precast_stock (kg)
	TowerName       string  `json:"tower_name"`
	FloorName       string  `json:"floor_name"`
}

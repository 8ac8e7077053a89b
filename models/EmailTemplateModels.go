package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// EmailTemplate represents the email_templates table
type EmailTemplate struct {
	ID           int             `json:"id" example:"1"`
	Name         string          `json:"name" example:"Erection Request"`
	Subject      string          `json:"subject" example:"New erection request"`
	Body         string          `json:"body" example:"Hello {{user_name}}"`
	TemplateType string          `json:"template_type" example:"erection_request"`
	IsDefault    bool            `json:"is_default" example:"false"`
	IsActive     bool            `json:"is_active" example:"true"`
	Variables    json.RawMessage `json:"variables"`
	CC           []string        `json:"cc,omitempty"`
	BCC          []string        `json:"bcc,omitempty"`
	CreatedBy    *int            `json:"created_by"`
	CreatedAt    time.Time       `json:"created_at" example:"2024-01-15T10:30:00Z"`
	UpdatedAt    time.Time       `json:"updated_at" example:"2024-01-15T10:30:00Z"`
	UpdatedBy    *int            `json:"updated_by"`
}

// EmailData represents the data structure for email sending with template variables
type EmailData struct {
	ProjectName   string `json:"project_name"`
	UserName      string `json:"user_name"`
	Email         string `json:"email"`
	RequestNumber string `json:"request_number"`
	ElementCount  string `json:"element_count"`
	TowerName     string `json:"tower_name"`
	LoginURL      string `json:"login_url"`
	SupportEmail  string `json:"support_email"`
}

// TemplateVariableMap represents a map of template variables for easy lookup
type TemplateVariableMap map[string]string

// GetDefaultTemplate retrieves the default template for a given type
func GetDefaultTemplate(db *sql.DB, templateType string) (*EmailTemplate, error) {
	var template EmailTemplate
	query := `
		SELECT id, name, subject, body, template_type, is_default, is_active,
		       variables, created_by, created_at, updated_at, updated_by
		FROM email_templates
		WHERE template_type = $1 AND is_default = true AND is_active = true
		ORDER BY created_at DESC
		LIMIT 1`

	var variables sql.NullString

	err := db.QueryRow(query, templateType).Scan(
		&template.ID, &template.Name, &template.Subject, &template.Body,
		&template.TemplateType, &template.IsDefault, &template.IsActive,
		&variables, &template.CreatedBy, &template.CreatedAt,
		&template.UpdatedAt, &template.UpdatedBy,
	)
	if err != nil {
		return nil, err
	}

	if variables.Valid {
		template.Variables = json.RawMessage(variables.String)
	}

	return &template, nil
}

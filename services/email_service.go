package services

import (
	"database/sql"
	"fmt"
	"net/smtp"
	"os"
	"strings"

	"backend/models"

	"golang.org/x/net/html"
)

// EmailService handles email operations with template support
type EmailService struct {
	db *sql.DB
}

// NewEmailService creates a new email service instance
func NewEmailService(db *sql.DB) *EmailService {
	return &EmailService{db: db}
}

// convertHTMLToText converts HTML content to plain text for email sending
func convertHTMLToText(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return htmlContent
	}

	var text strings.Builder
	var extractText func(*html.Node)
	extractText = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			text.WriteString(n.Data)
		case html.ElementNode:
			switch n.Data {
			case "p", "div", "br", "h1", "h2", "h3", "h4", "h5", "h6", "table", "tr":
				text.WriteString("\n")
			case "li":
				text.WriteString("- ")
			case "td", "th":
				text.WriteString(" | ")
			}
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			extractText(child)
		}
	}

	extractText(doc)

	result := text.String()
	result = strings.ReplaceAll(result, "\n\n\n", "\n\n")
	result = strings.TrimSpace(result)

	return result
}

// SendTemplatedEmail sends an email using the default template of the given
// type with variable substitution.
func (es *EmailService) SendTemplatedEmail(templateType string, emailData models.EmailData) error {
	emailTemplate, err := models.GetDefaultTemplate(es.db, templateType)
	if err != nil {
		return fmt.Errorf("failed to get default template for type '%s': %v", templateType, err)
	}

	subject := es.processTemplate(emailTemplate.Subject, emailData)
	body := es.processTemplate(emailTemplate.Body, emailData)

	plainTextBody := convertHTMLToText(body)

	return es.sendEmail(emailData.Email, subject, plainTextBody, emailTemplate.CC, emailTemplate.BCC)
}

// processTemplate replaces {{variable}} placeholders in a template string
func (es *EmailService) processTemplate(templateStr string, data models.EmailData) string {
	variables := map[string]string{
		"project_name":   data.ProjectName,
		"user_name":      data.UserName,
		"email":          data.Email,
		"request_number": data.RequestNumber,
		"element_count":  data.ElementCount,
		"tower_name":     data.TowerName,
		"login_url":      data.LoginURL,
		"support_email":  data.SupportEmail,
	}

	result := templateStr
	for key, value := range variables {
		placeholder := fmt.Sprintf("{{%s}}", key)
		result = strings.ReplaceAll(result, placeholder, value)
	}

	return result
}

// sendEmail sends an email using SMTP with optional CC and BCC
func (es *EmailService) sendEmail(to, subject, body string, cc, bcc []string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	from := os.Getenv("SMTP_FROM")

	auth := smtp.PlainAuth(
		"",
		os.Getenv("SMTP_USER"),
		os.Getenv("SMTP_PASSWORD"),
		host,
	)

	toList := []string{to}
	toList = append(toList, cc...)
	toList = append(toList, bcc...)

	headers := []string{
		"From: " + from,
		"To: " + to,
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers,
		"Subject: "+subject,
		"",
		body,
	)

	msg := []byte(strings.Join(headers, "\r\n") + "\r\n")

	return smtp.SendMail(host+":"+port, auth, from, toList, msg)
}

// SendErectionRequestEmail notifies a project member that a new erection
// request was placed.
func (es *EmailService) SendErectionRequestEmail(user models.User, projectName, requestNumber, towerName string, elementCount int) error {
	emailData := models.EmailData{
		ProjectName:   projectName,
		UserName:      user.FirstName + " " + user.LastName,
		Email:         user.Email,
		RequestNumber: requestNumber,
		ElementCount:  fmt.Sprintf("%d", elementCount),
		TowerName:     towerName,
		LoginURL:      os.Getenv("APP_LOGIN_URL"),
		SupportEmail:  os.Getenv("SUPPORT_EMAIL"),
	}

	return es.SendTemplatedEmail("erection_request", emailData)
}

package email

import (
	"context"
	"time"
)

// Data carries the finding context rendered into an outbound email.
type Data struct {
	RecipientEmail  string    `json:"recipient_email"`
	RecipientName   string    `json:"recipient_name"`
	FindingTitle    string    `json:"finding_title"`
	FindingID       string    `json:"finding_id"`
	DueDate         time.Time `json:"due_date"`
	Severity        string    `json:"severity"`
	ProjectName     string    `json:"project_name"`
	EscalationLevel int       `json:"escalation_level"`
}

// Message is one email dispatch request.
type Message struct {
	Type    string `json:"type"`
	Data    Data   `json:"email_data"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// Mailer sends escalation emails. Delivery is best effort: callers log
// failures and keep the notification row as the durable record.
type Mailer interface {
	// Send dispatches one email. Implementations should respect
	// context cancellation.
	Send(ctx context.Context, msg Message) error

	// Name returns the mailer type for logging.
	Name() string
}

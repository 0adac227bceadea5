package security

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"regexp"

	"audittrack/escalation-runner/internal/config"
	"audittrack/escalation-runner/internal/model"
)

var uuidRegex = regexp.MustCompile(
	`^[a-fA-F0-9-]{36}$`,
)

// ValidateConfig rejects configurations that would start an unusable
// runner.
func ValidateConfig(cfg *config.Config) error {
	if _, _, err := net.SplitHostPort(cfg.ListenAddr); err != nil {
		return fmt.Errorf("invalid listen_addr: %w", err)
	}
	if cfg.DatabasePath == "" {
		return errors.New("database_path must not be empty")
	}
	if cfg.PassTimeoutSec <= 0 || cfg.PassTimeoutSec > 3600 {
		return errors.New("invalid pass_timeout_sec")
	}
	if cfg.DedupWindowHours <= 0 {
		return errors.New("invalid dedup_window_hours")
	}

	if cfg.EmailWebhookURL != "" {
		u, err := url.ParseRequestURI(cfg.EmailWebhookURL)
		if err != nil {
			return fmt.Errorf("invalid email_webhook_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("email_webhook_url must be http or https")
		}
	}

	return nil
}

// ValidateFinding rejects ingested findings with missing or malformed
// fields.
func ValidateFinding(f model.Finding) error {
	if f.Title == "" {
		return errors.New("empty title")
	}
	if !uuidRegex.MatchString(f.ProjectID) {
		return errors.New("invalid project_id")
	}
	if f.DueDate.IsZero() {
		return errors.New("missing due_date")
	}

	switch f.Severity {
	case model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical:
	default:
		return errors.New("invalid severity")
	}

	switch f.Status {
	case "", model.StatusOpen, model.StatusAssigned, model.StatusInProgress,
		model.StatusCompletedPendingApproval, model.StatusClosed:
	default:
		return errors.New("invalid status")
	}

	return nil
}

package email

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer records outbound emails to the logger instead of sending
// them. Used when no email endpoint is configured.
type LogMailer struct {
	log *zap.Logger
}

func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.log.Info("email dispatch (log only)",
		zap.String("type", msg.Type),
		zap.String("recipient", msg.Data.RecipientEmail),
		zap.Int("escalation_level", msg.Data.EscalationLevel),
		zap.String("title", msg.Title))
	return nil
}

// Name returns "log".
func (m *LogMailer) Name() string {
	return "log"
}

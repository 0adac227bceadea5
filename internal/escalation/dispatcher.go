package escalation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"audittrack/escalation-runner/internal/email"
	"audittrack/escalation-runner/internal/model"
	"audittrack/escalation-runner/internal/store"
)

// Escalation describes one escalation to deliver for a finding.
type Escalation struct {
	Finding      model.Finding
	Rule         Rule
	HoursOverdue int
	ProjectName  string
}

// Dispatcher persists escalation notifications and fans out emails.
// The notification row is the durable record; email delivery is best
// effort and never rolls an insert back.
type Dispatcher struct {
	notifs store.NotificationStore
	mailer email.Mailer
	log    *zap.Logger
	now    func() time.Time
}

func NewDispatcher(notifs store.NotificationStore, mailer email.Mailer, log *zap.Logger) *Dispatcher {
	return &Dispatcher{
		notifs: notifs,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// Dispatch delivers one escalation to every recipient: a notification
// insert and an email attempt each. A failure for one recipient does
// not stop the others, and an insert failure does not stop that
// recipient's email attempt. Returns the number of rows inserted.
func (d *Dispatcher) Dispatch(ctx context.Context, esc Escalation, recipients []model.Profile) int {
	level := EscalationLevel(esc.HoursOverdue)
	title := EscalationTitle(level)
	message := EscalationMessage(esc.Finding.Title, esc.HoursOverdue)

	inserted := 0
	for _, rec := range recipients {
		n := model.Notification{
			ID:        uuid.New().String(),
			UserID:    rec.ID,
			FindingID: esc.Finding.ID,
			Type:      esc.Rule.Type,
			Title:     title,
			Message:   message,
			SentAt:    d.now().UTC(),
		}

		insertOK := true
		if err := d.notifs.CreateNotification(ctx, n); err != nil {
			insertOK = false
			d.log.Error("inserting escalation notification",
				zap.String("finding_id", esc.Finding.ID),
				zap.String("user_id", rec.ID),
				zap.Error(err))
		} else {
			inserted++
		}

		msg := email.Message{
			Type:    string(esc.Rule.Type),
			Title:   title,
			Message: message,
			Data: email.Data{
				RecipientEmail:  rec.Email,
				RecipientName:   rec.FullName(),
				FindingTitle:    esc.Finding.Title,
				FindingID:       esc.Finding.ID,
				DueDate:         esc.Finding.DueDate,
				Severity:        string(esc.Finding.Severity),
				ProjectName:     esc.ProjectName,
				EscalationLevel: level,
			},
		}
		if err := d.mailer.Send(ctx, msg); err != nil {
			d.log.Warn("sending escalation email",
				zap.String("mailer", d.mailer.Name()),
				zap.String("finding_id", esc.Finding.ID),
				zap.String("recipient", rec.Email),
				zap.Error(err))
			continue
		}

		if insertOK {
			if err := d.notifs.MarkEmailSent(ctx, n.ID); err != nil {
				d.log.Warn("marking email sent",
					zap.String("notification_id", n.ID),
					zap.Error(err))
			}
		}
	}
	return inserted
}

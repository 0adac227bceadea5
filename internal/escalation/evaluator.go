package escalation

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"audittrack/escalation-runner/internal/email"
	"audittrack/escalation-runner/internal/model"
	"audittrack/escalation-runner/internal/store"
)

// Summary reports the outcome of one escalation pass.
type Summary struct {
	Processed       int `json:"processed"`
	EscalationsSent int `json:"escalations_sent"`
	TotalOverdue    int `json:"total_overdue"`
}

// Evaluator walks all overdue findings and emits tiered escalations.
// One evaluator handles one pass at a time; overlapping passes are
// prevented by the scheduler, not here.
type Evaluator struct {
	findings    store.FindingStore
	members     store.MembershipStore
	notifs      store.NotificationStore
	resolver    *Resolver
	dispatcher  *Dispatcher
	log         *zap.Logger
	dedupWindow time.Duration
	now         func() time.Time
}

type Option func(*Evaluator)

// WithDedupWindow overrides the rolling deduplication window.
func WithDedupWindow(d time.Duration) Option {
	return func(e *Evaluator) { e.dedupWindow = d }
}

// WithClock overrides the evaluator's time source.
func WithClock(now func() time.Time) Option {
	return func(e *Evaluator) { e.now = now }
}

func New(findings store.FindingStore, members store.MembershipStore, notifs store.NotificationStore, mailer email.Mailer, log *zap.Logger, opts ...Option) *Evaluator {
	e := &Evaluator{
		findings:    findings,
		members:     members,
		notifs:      notifs,
		resolver:    NewResolver(members),
		dispatcher:  NewDispatcher(notifs, mailer, log),
		log:         log,
		dedupWindow: 24 * time.Hour,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.dispatcher.now = e.now
	return e
}

// Run executes one full escalation pass. Only a failure of the
// top-level overdue query aborts the pass; per-finding errors are
// logged and skipped.
func (e *Evaluator) Run(ctx context.Context) (Summary, error) {
	now := e.now().UTC()

	overdue, err := e.findings.OverdueFindings(ctx, now)
	if err != nil {
		return Summary{}, fmt.Errorf("fetching overdue findings: %w", err)
	}

	sum := Summary{TotalOverdue: len(overdue)}
	for _, f := range overdue {
		inserted, err := e.evaluate(ctx, f, now)
		if err != nil {
			e.log.Error("skipping finding",
				zap.String("finding_id", f.ID),
				zap.Error(err))
			continue
		}
		sum.Processed++
		if inserted > 0 {
			sum.EscalationsSent++
		}
	}

	e.log.Info("escalation pass complete",
		zap.Int("total_overdue", sum.TotalOverdue),
		zap.Int("processed", sum.Processed),
		zap.Int("escalations_sent", sum.EscalationsSent))
	return sum, nil
}

// evaluate runs the pipeline for a single finding: overdue hours, rule
// match, dedup check, recipient resolution, dispatch. The returned
// count is the number of notification rows inserted.
func (e *Evaluator) evaluate(ctx context.Context, f model.Finding, now time.Time) (int, error) {
	hours := int(now.Sub(f.DueDate) / time.Hour)

	rule := MatchRule(hours)
	if rule == nil {
		return 0, nil
	}

	// A dedup-check failure skips the finding rather than risk a
	// duplicate escalation.
	dup, err := e.notifs.HasRecentNotification(ctx, f.ID, rule.Type, now.Add(-e.dedupWindow))
	if err != nil {
		return 0, fmt.Errorf("dedup check for type %s: %w", rule.Type, err)
	}
	if dup {
		e.log.Debug("escalation already sent within window",
			zap.String("finding_id", f.ID),
			zap.String("type", string(rule.Type)))
		return 0, nil
	}

	// An unstaffed role is a no-op, not a fault.
	recipients, err := e.resolver.Recipients(ctx, f.ProjectID, rule.EscalateTo)
	if err != nil {
		e.log.Warn("resolving recipients",
			zap.String("finding_id", f.ID),
			zap.String("role", string(rule.EscalateTo)),
			zap.Error(err))
		return 0, nil
	}
	if len(recipients) == 0 {
		return 0, nil
	}

	projectName := ""
	if p, err := e.members.ProjectByID(ctx, f.ProjectID); err != nil {
		e.log.Warn("loading project name",
			zap.String("project_id", f.ProjectID),
			zap.Error(err))
	} else if p != nil {
		projectName = p.Name
	}

	esc := Escalation{
		Finding:      f,
		Rule:         *rule,
		HoursOverdue: hours,
		ProjectName:  projectName,
	}
	return e.dispatcher.Dispatch(ctx, esc, recipients), nil
}

package escalation

import (
	"fmt"

	"audittrack/escalation-runner/internal/model"
)

// Rule maps an hours-overdue threshold to the role that must be alerted
// and the notification type emitted at that tier.
type Rule struct {
	HoursOverdue int
	EscalateTo   model.Role
	Type         model.NotificationType
}

// DefaultRules is the escalation ladder, ordered by threshold ascending.
var DefaultRules = []Rule{
	{HoursOverdue: 24, EscalateTo: model.RoleGCProjectManager, Type: model.TypeDeadlineReminder},
	{HoursOverdue: 48, EscalateTo: model.RoleGCSiteDirector, Type: model.TypeOverdueAlert},
	{HoursOverdue: 72, EscalateTo: model.RoleClientProjectManager, Type: model.TypeEscalation},
}

// MatchRule returns the rule with the largest threshold not exceeding
// hoursOverdue, or nil when the finding is overdue by less than the
// lowest tier. The most severe applicable tier wins, not the first
// rule matched in iteration order.
func MatchRule(hoursOverdue int) *Rule {
	var matched *Rule
	for i := range DefaultRules {
		r := &DefaultRules[i]
		if hoursOverdue < r.HoursOverdue {
			continue
		}
		if matched == nil || r.HoursOverdue > matched.HoursOverdue {
			matched = r
		}
	}
	return matched
}

// EscalationLevel converts hours overdue into whole days, rounding up.
func EscalationLevel(hoursOverdue int) int {
	return (hoursOverdue + 23) / 24
}

// EscalationTitle renders the notification title for a level,
// e.g. "Overdue Finding Escalation - 3 Days".
func EscalationTitle(level int) string {
	unit := "Day"
	if level != 1 {
		unit = "Days"
	}
	return fmt.Sprintf("Overdue Finding Escalation - %d %s", level, unit)
}

// EscalationMessage renders the notification body for a finding.
func EscalationMessage(findingTitle string, hoursOverdue int) string {
	return fmt.Sprintf("ESCALATION: Finding %q is %d hours overdue and requires immediate attention.",
		findingTitle, hoursOverdue)
}

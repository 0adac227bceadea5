package escalation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"audittrack/escalation-runner/internal/email"
	"audittrack/escalation-runner/internal/model"
)

type fakeFindings struct {
	findings []model.Finding
	err      error
}

func (f *fakeFindings) OverdueFindings(_ context.Context, _ time.Time) ([]model.Finding, error) {
	return f.findings, f.err
}

type fakeMembers struct {
	members    map[string][]model.ProjectMember
	profiles   []model.Profile
	projects   map[string]*model.Project
	membersErr error
}

func (f *fakeMembers) ProjectMembers(_ context.Context, projectID string) ([]model.ProjectMember, error) {
	if f.membersErr != nil {
		return nil, f.membersErr
	}
	return f.members[projectID], nil
}

func (f *fakeMembers) ProfilesByRole(_ context.Context, userIDs []string, role model.Role) ([]model.Profile, error) {
	ids := map[string]bool{}
	for _, id := range userIDs {
		ids[id] = true
	}
	var out []model.Profile
	for _, p := range f.profiles {
		if ids[p.ID] && p.Role == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakeMembers) ProjectByID(_ context.Context, id string) (*model.Project, error) {
	return f.projects[id], nil
}

type fakeNotifs struct {
	rows      []model.Notification
	createErr map[string]error // keyed by recipient user id
	recentErr error
}

func (f *fakeNotifs) CreateNotification(_ context.Context, n model.Notification) error {
	if err := f.createErr[n.UserID]; err != nil {
		return err
	}
	f.rows = append(f.rows, n)
	return nil
}

func (f *fakeNotifs) HasRecentNotification(_ context.Context, findingID string, typ model.NotificationType, since time.Time) (bool, error) {
	if f.recentErr != nil {
		return false, f.recentErr
	}
	for _, n := range f.rows {
		if n.FindingID == findingID && n.Type == typ && !n.SentAt.Before(since) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeNotifs) MarkEmailSent(_ context.Context, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id {
			f.rows[i].EmailSent = true
			return nil
		}
	}
	return errors.New("notification not found")
}

type fakeMailer struct {
	sent []email.Message
	err  error
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeMailer) Name() string { return "fake" }

// testFixture wires an evaluator over fakes with a fixed clock and one
// project staffed with all three escalation roles.
type testFixture struct {
	now      time.Time
	findings *fakeFindings
	members  *fakeMembers
	notifs   *fakeNotifs
	mailer   *fakeMailer
}

func newFixture() *testFixture {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	return &testFixture{
		now:      now,
		findings: &fakeFindings{},
		members: &fakeMembers{
			members: map[string][]model.ProjectMember{
				"proj-1": {
					{ProjectID: "proj-1", UserID: "u-pm", Role: model.RoleGCProjectManager},
					{ProjectID: "proj-1", UserID: "u-dir", Role: model.RoleGCSiteDirector},
					{ProjectID: "proj-1", UserID: "u-client", Role: model.RoleClientProjectManager},
				},
			},
			profiles: []model.Profile{
				{ID: "u-pm", FirstName: "Pat", LastName: "Miller", Email: "pm@x.com", Role: model.RoleGCProjectManager},
				{ID: "u-dir", FirstName: "Ada", LastName: "Stone", Email: "a@x.com", Role: model.RoleGCSiteDirector},
				{ID: "u-client", FirstName: "Cleo", LastName: "Park", Email: "cp@x.com", Role: model.RoleClientProjectManager},
			},
			projects: map[string]*model.Project{
				"proj-1": {ID: "proj-1", Name: "Riverside Plant"},
			},
		},
		notifs: &fakeNotifs{createErr: map[string]error{}},
		mailer: &fakeMailer{},
	}
}

func (fx *testFixture) evaluator() *Evaluator {
	return New(fx.findings, fx.members, fx.notifs, fx.mailer, zap.NewNop(),
		WithClock(func() time.Time { return fx.now }))
}

func (fx *testFixture) addFinding(id string, overdueBy time.Duration) {
	fx.findings.findings = append(fx.findings.findings, model.Finding{
		ID:        id,
		Title:     "Blocked fire exit",
		Severity:  model.SeverityHigh,
		Status:    model.StatusOpen,
		DueDate:   fx.now.Add(-overdueBy),
		ProjectID: "proj-1",
	})
}

func TestRunNothingUnderLowestTier(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 10*time.Hour)

	sum, err := fx.evaluator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Processed: 1, EscalationsSent: 0, TotalOverdue: 1}, sum)
	assert.Empty(t, fx.notifs.rows)
	assert.Empty(t, fx.mailer.sent)
}

func TestRunFiftyHourEscalation(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 50*time.Hour)

	sum, err := fx.evaluator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, EscalationsSent: 1, TotalOverdue: 1}, sum)

	require.Len(t, fx.notifs.rows, 1)
	n := fx.notifs.rows[0]
	assert.Equal(t, model.TypeOverdueAlert, n.Type)
	assert.Equal(t, "u-dir", n.UserID)
	assert.Contains(t, n.Title, "3 Days")
	assert.Contains(t, n.Message, "50 hours overdue")
	assert.True(t, n.EmailSent)

	require.Len(t, fx.mailer.sent, 1)
	msg := fx.mailer.sent[0]
	assert.Equal(t, "overdue_alert", msg.Type)
	assert.Equal(t, "a@x.com", msg.Data.RecipientEmail)
	assert.Equal(t, "Ada Stone", msg.Data.RecipientName)
	assert.Equal(t, "Riverside Plant", msg.Data.ProjectName)
	assert.Equal(t, 3, msg.Data.EscalationLevel)
	assert.Equal(t, "high", msg.Data.Severity)
}

func TestRunEightyHoursHitsTopTier(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 80*time.Hour)

	_, err := fx.evaluator().Run(context.Background())
	require.NoError(t, err)

	require.Len(t, fx.notifs.rows, 1)
	assert.Equal(t, model.TypeEscalation, fx.notifs.rows[0].Type)
	assert.Equal(t, "u-client", fx.notifs.rows[0].UserID)
}

func TestRunSecondPassIsDeduplicated(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 80*time.Hour)
	ev := fx.evaluator()

	first, err := ev.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.EscalationsSent)

	fx.now = fx.now.Add(30 * time.Minute)
	second, err := ev.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Processed: 1, EscalationsSent: 0, TotalOverdue: 1}, second)
	assert.Len(t, fx.notifs.rows, 1)
	assert.Len(t, fx.mailer.sent, 1)
}

func TestRunDedupCheckErrorFailsClosed(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 50*time.Hour)
	fx.notifs.recentErr = errors.New("store unavailable")

	sum, err := fx.evaluator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Processed: 0, EscalationsSent: 0, TotalOverdue: 1}, sum)
	assert.Empty(t, fx.notifs.rows)
	assert.Empty(t, fx.mailer.sent)
}

func TestRunEmptyRecipientsIsNoOp(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 30*time.Hour)
	// Nobody on the project holds gc_project_manager anymore.
	fx.members.profiles = []model.Profile{
		{ID: "u-dir", Email: "a@x.com", Role: model.RoleGCSiteDirector},
	}

	sum, err := fx.evaluator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Summary{Processed: 1, EscalationsSent: 0, TotalOverdue: 1}, sum)
	assert.Empty(t, fx.notifs.rows)
}

func TestRunMembershipErrorSkipsQuietly(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-1", 30*time.Hour)
	fx.members.membersErr = errors.New("membership query failed")

	sum, err := fx.evaluator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 0, sum.EscalationsSent)
	assert.Empty(t, fx.notifs.rows)
}

func TestRunTopLevelFetchErrorAbortsPass(t *testing.T) {
	fx := newFixture()
	fx.findings.err = errors.New("db down")

	_, err := fx.evaluator().Run(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "fetching overdue findings"))
}

func TestRunBadFindingDoesNotAbortBatch(t *testing.T) {
	fx := newFixture()
	fx.addFinding("f-bad", 50*time.Hour)
	fx.addFinding("f-good", 80*time.Hour)
	// Fail only the dedup check for f-bad's tier by failing the first
	// lookup, then recovering. Simulated with a one-shot error.
	calls := 0
	fx.notifs.recentErr = nil
	wrapped := &oneShotRecentErr{inner: fx.notifs, calls: &calls}

	ev := New(fx.findings, fx.members, wrapped, fx.mailer, zap.NewNop(),
		WithClock(func() time.Time { return fx.now }))

	sum, err := ev.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Processed)
	assert.Equal(t, 1, sum.EscalationsSent)
	require.Len(t, fx.notifs.rows, 1)
	assert.Equal(t, "f-good", fx.notifs.rows[0].FindingID)
}

// oneShotRecentErr fails the first dedup check and delegates after that.
type oneShotRecentErr struct {
	inner *fakeNotifs
	calls *int
}

func (o *oneShotRecentErr) CreateNotification(ctx context.Context, n model.Notification) error {
	return o.inner.CreateNotification(ctx, n)
}

func (o *oneShotRecentErr) HasRecentNotification(ctx context.Context, findingID string, typ model.NotificationType, since time.Time) (bool, error) {
	*o.calls++
	if *o.calls == 1 {
		return false, errors.New("transient store error")
	}
	return o.inner.HasRecentNotification(ctx, findingID, typ, since)
}

func (o *oneShotRecentErr) MarkEmailSent(ctx context.Context, id string) error {
	return o.inner.MarkEmailSent(ctx, id)
}

func TestDispatchInsertFailureContinues(t *testing.T) {
	fx := newFixture()
	fx.notifs.createErr["u-1"] = errors.New("insert failed")

	d := NewDispatcher(fx.notifs, fx.mailer, zap.NewNop())
	esc := Escalation{
		Finding:      model.Finding{ID: "f-1", Title: "Missing guardrail", Severity: model.SeverityHigh},
		Rule:         DefaultRules[2],
		HoursOverdue: 80,
		ProjectName:  "Riverside Plant",
	}
	recipients := []model.Profile{
		{ID: "u-1", Email: "one@x.com", Role: model.RoleClientProjectManager},
		{ID: "u-2", Email: "two@x.com", Role: model.RoleClientProjectManager},
	}

	inserted := d.Dispatch(context.Background(), esc, recipients)

	assert.Equal(t, 1, inserted)
	require.Len(t, fx.notifs.rows, 1)
	assert.Equal(t, "u-2", fx.notifs.rows[0].UserID)
	// The insert failure must not suppress either email attempt.
	assert.Len(t, fx.mailer.sent, 2)
}

func TestDispatchEmailFailureKeepsNotification(t *testing.T) {
	fx := newFixture()
	fx.mailer.err = errors.New("smtp relay down")

	d := NewDispatcher(fx.notifs, fx.mailer, zap.NewNop())
	esc := Escalation{
		Finding:      model.Finding{ID: "f-1", Title: "Missing guardrail"},
		Rule:         DefaultRules[0],
		HoursOverdue: 30,
	}
	recipients := []model.Profile{{ID: "u-1", Email: "one@x.com"}}

	inserted := d.Dispatch(context.Background(), esc, recipients)

	assert.Equal(t, 1, inserted)
	require.Len(t, fx.notifs.rows, 1)
	assert.False(t, fx.notifs.rows[0].EmailSent)
}

package notifications

import (
	"context"
	"errors"
	"testing"

	"casedesk_backend/internal/events"
	"casedesk_backend/platform/logger"
)

type recordingSender struct {
	calls []string
}

func (r *recordingSender) SendEscalationAlert(_ context.Context, to, _, _ string) error {
	r.calls = append(r.calls, "escalation:"+to)
	return nil
}
func (r *recordingSender) SendProposalDispatched(_ context.Context, to, _ string) error {
	r.calls = append(r.calls, "proposal:"+to)
	return nil
}
func (r *recordingSender) SendContractDispatched(_ context.Context, to, _ string) error {
	r.calls = append(r.calls, "contract:"+to)
	return nil
}
func (r *recordingSender) SendClientConfirmed(_ context.Context, to, _ string) error {
	r.calls = append(r.calls, "confirmed:"+to)
	return nil
}
func (r *recordingSender) SendArchiveNotice(_ context.Context, to, _ string, _ bool) error {
	r.calls = append(r.calls, "archived:"+to)
	return nil
}

type testDirectory struct {
	addresses map[string]string
}

func (d testDirectory) EmailFor(_ context.Context, staffName string) (string, error) {
	if addr, ok := d.addresses[staffName]; ok {
		return addr, nil
	}
	return "", errors.New("unknown staff name")
}

type testNotificationConfig struct {
	alerts string
}

func (c testNotificationConfig) GetAppBaseURL() string         { return "http://localhost:4200" }
func (c testNotificationConfig) GetAlertsEmailAddress() string { return c.alerts }

func TestHandleRoutesProposalMailToLeadAddress(t *testing.T) {
	sender := &recordingSender{}
	m := &Module{sender: sender, cfg: testNotificationConfig{alerts: "ops@example.com"}, log: logger.New("test")}

	err := m.Handle(context.Background(), events.ProposalDispatched{
		BaseEvent: events.NewBaseEvent(), AccountID: "JB-1-0001",
		ContactName: "Huber GmbH", Email: "office@huber.example",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 1 || sender.calls[0] != "proposal:office@huber.example" {
		t.Errorf("proposal mail must go to the lead's address, got %v", sender.calls)
	}
}

func TestHandleSkipsMailWithoutRecipient(t *testing.T) {
	sender := &recordingSender{}
	m := &Module{sender: sender, cfg: testNotificationConfig{}, log: logger.New("test")}

	if err := m.Handle(context.Background(), events.ProposalDispatched{BaseEvent: events.NewBaseEvent()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := m.Handle(context.Background(), events.EscalationRaised{BaseEvent: events.NewBaseEvent()}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 0 {
		t.Errorf("no mail without a recipient, got %v", sender.calls)
	}
}

func TestHandleRoutesEscalationToAssignee(t *testing.T) {
	sender := &recordingSender{}
	m := &Module{
		sender:    sender,
		directory: testDirectory{addresses: map[string]string{"Julia Brandt": "julia.brandt@casedesk.local"}},
		cfg:       testNotificationConfig{alerts: "ops@example.com"},
		log:       logger.New("test"),
	}

	err := m.Handle(context.Background(), events.EscalationRaised{
		BaseEvent: events.NewBaseEvent(), AccountID: "JB-1-0001",
		Kind: "follow", Message: "follow up", ContactName: "Huber GmbH",
		AssignedTo: "Julia Brandt",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sender.calls) != 1 || sender.calls[0] != "escalation:julia.brandt@casedesk.local" {
		t.Errorf("escalation mail must go to the assignee, got %v", sender.calls)
	}
}

func TestHandleFallsBackToAlertsInbox(t *testing.T) {
	sender := &recordingSender{}
	m := &Module{
		sender:    sender,
		directory: testDirectory{},
		cfg:       testNotificationConfig{alerts: "ops@example.com"},
		log:       logger.New("test"),
	}

	// Unassigned account: no name to resolve.
	err := m.Handle(context.Background(), events.EscalationRaised{
		BaseEvent: events.NewBaseEvent(), AccountID: "JB-1-0001",
		Kind: "respond", Message: "respond", ContactName: "Huber GmbH",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Assignee with no login record.
	err = m.Handle(context.Background(), events.LeadArchived{
		BaseEvent: events.NewBaseEvent(), AccountID: "JB-1-0002",
		ContactName: "Maier KG", AssignedTo: "Former Employee", Automatic: true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"escalation:ops@example.com", "archived:ops@example.com"}
	if len(sender.calls) != 2 || sender.calls[0] != want[0] || sender.calls[1] != want[1] {
		t.Errorf("unresolvable assignees must fall back to the alerts inbox, got %v", sender.calls)
	}
}

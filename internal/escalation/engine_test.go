package escalation

import (
	"testing"
	"time"

	"casedesk_backend/internal/accounts/domain"
)

var base = time.Date(2026, 8, 1, 9, 0, 0, 0, time.UTC)

func lead(status string, changedAt time.Time, tracker domain.Tracker) domain.Account {
	return domain.Account{
		ID:          "JB-1722502800000-0001",
		ContactName: "Huber GmbH",
		Status:      status,
		Tracker:     tracker,
	}
}

func tracked(status string, changedAt time.Time) domain.Tracker {
	return domain.Tracker{TrackedStatus: status, TrackedStatusChangedAt: changedAt}
}

func TestStatusChangeResetsEscalationState(t *testing.T) {
	changed := base
	oldFollow := base.Add(-2 * time.Hour)
	tracker := domain.Tracker{
		TrackedStatus:          domain.StatusWaitingApproval,
		TrackedStatusChangedAt: base.Add(-48 * time.Hour),
		FollowupCount:          2,
		LastFollowupAt:         &oldFollow,
	}

	decision := Evaluate(lead(domain.StatusSendContract, changed, tracker), changed, base.Add(time.Hour))

	if !decision.Reset || !decision.TrackerChanged {
		t.Fatal("a status change must reset the tracker")
	}
	if decision.Tracker.FollowupCount != 0 || decision.Tracker.LastFollowupAt != nil {
		t.Errorf("counters must be cleared, got %+v", decision.Tracker)
	}
	if decision.Tracker.TrackedStatus != domain.StatusSendContract {
		t.Errorf("tracker must adopt the new status, got %s", decision.Tracker.TrackedStatus)
	}
	if decision.Archive {
		t.Error("a reset lead must not be archived in the same cycle")
	}
}

func TestFollowNotificationAfterInclusiveThreshold(t *testing.T) {
	changed := base
	tracker := tracked(domain.StatusWaitingApproval, changed)

	// Exactly at the threshold: inclusive comparison fires.
	now := changed.Add(24 * time.Hour)
	decision := Evaluate(lead(domain.StatusWaitingApproval, changed, tracker), changed, now)

	if len(decision.Notifications) != 1 || decision.Notifications[0].Kind != KindFollow {
		t.Fatalf("expected one follow notification, got %+v", decision.Notifications)
	}
	if decision.Tracker.FollowupCount != 1 {
		t.Errorf("follow-up count must increment, got %d", decision.Tracker.FollowupCount)
	}
	if decision.Tracker.LastFollowupAt == nil || !decision.Tracker.LastFollowupAt.Equal(now) {
		t.Error("last follow-up timestamp must be set to the evaluation instant")
	}
}

func TestFollowNotificationSuppressedBeforeThreshold(t *testing.T) {
	changed := base
	tracker := tracked(domain.StatusWaitingApproval, changed)

	decision := Evaluate(lead(domain.StatusWaitingApproval, changed, tracker), changed, changed.Add(23*time.Hour))
	if len(decision.Notifications) != 0 {
		t.Errorf("no notification before the threshold, got %+v", decision.Notifications)
	}
}

func TestFollowNotificationRespectsRepeatInterval(t *testing.T) {
	changed := base
	lastFollow := base.Add(30 * time.Hour)
	tracker := tracked(domain.StatusWaitingApproval, changed)
	tracker.FollowupCount = 1
	tracker.LastFollowupAt = &lastFollow

	// 12h after the last follow-up: elapsed-since-change passes but
	// elapsed-since-last does not.
	decision := Evaluate(lead(domain.StatusWaitingApproval, changed, tracker), changed, lastFollow.Add(12*time.Hour))
	if len(decision.Notifications) != 0 {
		t.Errorf("follow-ups must be spaced by the class threshold, got %+v", decision.Notifications)
	}

	decision = Evaluate(lead(domain.StatusWaitingApproval, changed, tracker), changed, lastFollow.Add(24*time.Hour))
	if len(decision.Notifications) != 1 {
		t.Fatalf("expected a second follow-up after the interval, got %+v", decision.Notifications)
	}
	if decision.Tracker.FollowupCount != 2 {
		t.Errorf("count must reach 2, got %d", decision.Tracker.FollowupCount)
	}
}

func TestDiscussingStatusUsesLongThreshold(t *testing.T) {
	changed := base
	tracker := tracked(domain.StatusDiscussingQ, changed)

	decision := Evaluate(lead(domain.StatusDiscussingQ, changed, tracker), changed, changed.Add(48*time.Hour))
	if len(decision.Notifications) != 0 {
		t.Errorf("72h class must not fire at 48h, got %+v", decision.Notifications)
	}

	decision = Evaluate(lead(domain.StatusDiscussingQ, changed, tracker), changed, changed.Add(72*time.Hour))
	if len(decision.Notifications) != 1 {
		t.Errorf("72h class must fire at 72h, got %+v", decision.Notifications)
	}
}

func TestRespondNotificationHasNoCap(t *testing.T) {
	changed := base
	tracker := tracked(domain.StatusIntake, changed)

	now := changed.Add(24 * time.Hour)
	decision := Evaluate(lead(domain.StatusIntake, changed, tracker), changed, now)
	if len(decision.Notifications) != 1 || decision.Notifications[0].Kind != KindRespond {
		t.Fatalf("expected one respond notification, got %+v", decision.Notifications)
	}

	// Respond reminders keep firing every interval while the status holds.
	tracker = decision.Tracker
	for i := 0; i < 5; i++ {
		now = now.Add(24 * time.Hour)
		decision = Evaluate(lead(domain.StatusIntake, changed, tracker), changed, now)
		if len(decision.Notifications) != 1 {
			t.Fatalf("respond reminder %d missing, got %+v", i+2, decision.Notifications)
		}
		tracker = decision.Tracker
	}
	if tracker.FollowupCount != 0 {
		t.Error("respond reminders must not consume the follow-up cap")
	}
}

func TestArchiveAfterCapAndGrace(t *testing.T) {
	changed := base
	lastFollow := base.Add(96 * time.Hour)
	tracker := tracked(domain.StatusWaitingApproval, changed)
	tracker.FollowupCount = 3
	tracker.LastFollowupAt = &lastFollow

	// Inside the grace period: neither archive nor a fourth follow-up.
	decision := Evaluate(lead(domain.StatusWaitingApproval, changed, tracker), changed, lastFollow.Add(12*time.Hour))
	if decision.Archive {
		t.Error("archive must wait for the grace period")
	}
	if len(decision.Notifications) != 0 {
		t.Errorf("the cap must suppress further follow-ups, got %+v", decision.Notifications)
	}

	decision = Evaluate(lead(domain.StatusWaitingApproval, changed, tracker), changed, lastFollow.Add(24*time.Hour))
	if !decision.Archive {
		t.Fatal("three ignored follow-ups past the grace period must archive the lead")
	}
	if len(decision.Notifications) != 0 {
		t.Error("an archived lead must not receive notifications in the same cycle")
	}
}

func TestStatusChangeWinsOverPendingArchive(t *testing.T) {
	oldChange := base.Add(-200 * time.Hour)
	lastFollow := base.Add(-48 * time.Hour)
	tracker := domain.Tracker{
		TrackedStatus:          domain.StatusWaitingApproval,
		TrackedStatusChangedAt: oldChange,
		FollowupCount:          3,
		LastFollowupAt:         &lastFollow,
	}

	// The lead moved to SEND_CONTRACT since the last sweep; the reset
	// fires before the archive rule can.
	decision := Evaluate(lead(domain.StatusSendContract, base, tracker), base, base.Add(time.Hour))
	if decision.Archive {
		t.Error("a mid-cycle status change must cancel the pending archive")
	}
	if decision.Tracker.FollowupCount != 0 {
		t.Error("the reset must clear the exhausted follow-up count")
	}
}

func TestOnHoldPastDueFiresOncePerDateValue(t *testing.T) {
	changed := base
	due := base.Add(24 * time.Hour)

	l := lead(domain.StatusOnHold, changed, tracked(domain.StatusOnHold, changed))
	l.FollowUpAt = &due

	decision := Evaluate(l, changed, due)
	if len(decision.Notifications) != 1 || decision.Notifications[0].Kind != KindFollow {
		t.Fatalf("past-due on-hold lead must get one follow notification, got %+v", decision.Notifications)
	}

	// Same date value again: already notified.
	l.Tracker = decision.Tracker
	decision = Evaluate(l, changed, due.Add(6*time.Hour))
	if len(decision.Notifications) != 0 {
		t.Errorf("the same follow-up date must not fire twice, got %+v", decision.Notifications)
	}

	// A rescheduled date fires again.
	newDue := due.Add(72 * time.Hour)
	l.FollowUpAt = &newDue
	decision = Evaluate(l, changed, newDue)
	if len(decision.Notifications) != 1 {
		t.Errorf("a new follow-up date must fire once more, got %+v", decision.Notifications)
	}
}

func TestClientStatusNeverEscalates(t *testing.T) {
	changed := base
	decision := Evaluate(lead(domain.StatusClient, changed, tracked(domain.StatusClient, changed)), changed, changed.Add(500*time.Hour))
	if len(decision.Notifications) != 0 || decision.Archive {
		t.Errorf("confirmed clients are outside escalation, got %+v", decision)
	}
}

// Package escalation computes time-driven follow-up decisions for leads.
// The engine is pure: it inspects a lead, its escalation tracker, and the
// clock, and returns what to do. Persistence, notification storage, and
// archival are carried out by the scheduler worker.
package escalation

import (
	"fmt"
	"time"

	"casedesk_backend/internal/accounts/domain"
)

const (
	KindFollow  = "follow"
	KindRespond = "respond"

	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityUrgent  = "urgent"

	// A lead that has ignored this many follow-ups is archived once the
	// last one is at least archiveGrace old.
	maxFollowups = 3
	archiveGrace = 24 * time.Hour

	followShortThreshold = 24 * time.Hour
	followLongThreshold  = 72 * time.Hour
	respondThreshold     = 24 * time.Hour
)

// followThresholds maps statuses waiting on the counterparty to the
// interval between follow-up notifications.
var followThresholds = map[string]time.Duration{
	domain.StatusWaitingApproval:   followShortThreshold,
	domain.StatusWaitingAcceptance: followShortThreshold,
	domain.StatusDiscussingQ:       followLongThreshold,
}

// respondStatuses are statuses waiting on our own staff; they generate
// "respond" reminders with no count cap.
var respondStatuses = map[string]struct{}{
	domain.StatusIntake:       {},
	domain.StatusSendProposal: {},
	domain.StatusSendContract: {},
}

// Notification is one escalation message to store and deliver.
type Notification struct {
	Kind     string
	Severity string
	Message  string
}

// Decision is the engine's output for one lead and one evaluation instant.
type Decision struct {
	// Tracker is the updated escalation state to persist.
	Tracker domain.Tracker
	// TrackerChanged reports whether Tracker differs from the input.
	TrackerChanged bool
	// Reset reports that the status changed since the last evaluation;
	// existing notifications for the lead are stale and must be replaced.
	Reset bool
	// Archive requests snapshot-and-delete of the lead. When set, no
	// notifications are emitted.
	Archive bool
	// Notifications are new messages to store for the lead.
	Notifications []Notification
}

// Evaluate computes the escalation decision for a lead. lastStatusChange
// is the timestamp of the latest lifecycle history entry, or the creation
// time when none exists. All thresholds are inclusive.
func Evaluate(lead domain.Account, lastStatusChange time.Time, now time.Time) Decision {
	tracker := lead.Tracker
	decision := Decision{}

	// A status change always clears prior escalation state before any
	// threshold is considered.
	if tracker.TrackedStatus != lead.Status || !tracker.TrackedStatusChangedAt.Equal(lastStatusChange) {
		tracker.Reset(lead.Status, lastStatusChange)
		decision.Reset = true
		decision.TrackerChanged = true
	}

	// Exhausted follow-ups: archive once the last one has aged past the
	// grace period. Nothing else runs for this lead this cycle.
	if tracker.FollowupCount >= maxFollowups && tracker.LastFollowupAt != nil &&
		now.Sub(*tracker.LastFollowupAt) >= archiveGrace {
		decision.Tracker = tracker
		decision.Archive = true
		return decision
	}

	if threshold, ok := followThresholds[lead.Status]; ok && tracker.FollowupCount < maxFollowups {
		sinceChange := now.Sub(tracker.TrackedStatusChangedAt)
		sinceLast := threshold
		if tracker.LastFollowupAt != nil {
			sinceLast = now.Sub(*tracker.LastFollowupAt)
		}
		if sinceChange >= threshold && sinceLast >= threshold {
			tracker.FollowupCount++
			at := now
			tracker.LastFollowupAt = &at
			decision.TrackerChanged = true
			decision.Notifications = append(decision.Notifications, Notification{
				Kind:     KindFollow,
				Severity: SeverityWarning,
				Message: fmt.Sprintf("%s has been waiting in %s for over %s (follow-up %d of %d)",
					lead.ContactName, lead.Status, formatThreshold(threshold), tracker.FollowupCount, maxFollowups),
			})
		}
	}

	if _, ok := respondStatuses[lead.Status]; ok {
		sinceChange := now.Sub(tracker.TrackedStatusChangedAt)
		sinceLast := respondThreshold
		if tracker.LastRespondAt != nil {
			sinceLast = now.Sub(*tracker.LastRespondAt)
		}
		if sinceChange >= respondThreshold && sinceLast >= respondThreshold {
			at := now
			tracker.LastRespondAt = &at
			decision.TrackerChanged = true
			decision.Notifications = append(decision.Notifications, Notification{
				Kind:     KindRespond,
				Severity: SeverityUrgent,
				Message: fmt.Sprintf("%s requires action: no progress in %s for over %s",
					lead.ContactName, lead.Status, formatThreshold(respondThreshold)),
			})
		}
	}

	// An ON_HOLD lead with a past-due follow-up date fires one reminder
	// per distinct date value.
	if lead.Status == domain.StatusOnHold && lead.FollowUpAt != nil && !now.Before(*lead.FollowUpAt) {
		if tracker.OnHoldNotifiedFor == nil || !tracker.OnHoldNotifiedFor.Equal(*lead.FollowUpAt) {
			tracker.OnHoldNotifiedFor = lead.FollowUpAt
			decision.TrackerChanged = true
			decision.Notifications = append(decision.Notifications, Notification{
				Kind:     KindFollow,
				Severity: SeverityInfo,
				Message:  fmt.Sprintf("%s is on hold and due for follow-up since %s", lead.ContactName, lead.FollowUpAt.Format("2006-01-02")),
			})
		}
	}

	decision.Tracker = tracker
	return decision
}

func formatThreshold(d time.Duration) string {
	return fmt.Sprintf("%dh", int(d.Hours()))
}

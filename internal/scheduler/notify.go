package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/smallbiznis/ledgerview/internal/alert/domain"
	auditdomain "github.com/smallbiznis/ledgerview/internal/audit/domain"
	"go.uber.org/zap"
)

type firedEvent struct {
	ID          snowflake.ID
	OrgID       snowflake.ID
	Kind        string
	AccountID   snowflake.ID
	Observed    int64
	Threshold   int64
	TriggeredAt time.Time
}

// AlertNotificationJob fans out alert events recorded since the previous
// pass to the configured channels. Delivery is best effort; a failed send
// is retried implicitly because lastNotified only advances on success.
func (s *Scheduler) AlertNotificationJob(ctx context.Context) error {
	now := s.clock.Now()

	var events []firedEvent
	err := s.db.WithContext(ctx).Raw(
		`SELECT id, org_id, kind, account_id, observed, threshold, triggered_at
		 FROM alert_events
		 WHERE triggered_at > ? AND triggered_at <= ?
		 ORDER BY triggered_at ASC`,
		s.lastNotified, now,
	).Scan(&events).Error
	if err != nil {
		return err
	}
	if len(events) == 0 {
		s.lastNotified = now
		return nil
	}

	recipients, err := s.ownerEmails(ctx)
	if err != nil {
		return err
	}

	var lines []string
	for _, ev := range events {
		lines = append(lines, describeEvent(ev))
	}
	body := strings.Join(lines, "\n")

	if s.slack != nil {
		if err := s.slack.PostMessage(ctx, body); err != nil {
			s.log.Warn("slack notification", zap.Error(err))
			return err
		}
	}
	if s.email != nil && len(recipients) > 0 {
		subject := fmt.Sprintf("LedgerView: %d alert(s) fired", len(events))
		html := "<p>" + strings.Join(lines, "</p><p>") + "</p>"
		if err := s.email.Send(ctx, recipients, subject, html); err != nil {
			s.log.Warn("email notification", zap.Error(err))
			return err
		}
	}

	for _, ev := range events {
		orgID := ev.OrgID
		actorID := "scheduler"
		_ = s.auditSvc.AuditLog(ctx, &orgID, string(auditdomain.ActorTypeScheduler), &actorID,
			"alert.notified", "alert_event", ptr(ev.ID.String()), map[string]any{
				"kind":      ev.Kind,
				"observed":  ev.Observed,
				"threshold": ev.Threshold,
			})
	}

	s.lastNotified = now
	s.log.Info("alerts notified", zap.Int("count", len(events)))
	return nil
}

func (s *Scheduler) ownerEmails(ctx context.Context) ([]string, error) {
	var emails []string
	err := s.db.WithContext(ctx).Raw(
		`SELECT DISTINCT u.email
		 FROM users u
		 JOIN organization_members m ON m.user_id = u.id
		 WHERE m.role IN ('owner', 'admin')
		 ORDER BY u.email`,
	).Scan(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func describeEvent(ev firedEvent) string {
	switch alertdomain.RuleKind(ev.Kind) {
	case alertdomain.RuleLowBalance:
		return fmt.Sprintf("Low balance on account %s: %s is below the %s floor",
			ev.AccountID, formatAmount(ev.Observed), formatAmount(ev.Threshold))
	case alertdomain.RuleLargeTransaction:
		return fmt.Sprintf("Large transaction on account %s: %s exceeds the %s threshold",
			ev.AccountID, formatAmount(ev.Observed), formatAmount(ev.Threshold))
	default:
		return fmt.Sprintf("Alert %s on account %s: observed %s, threshold %s",
			ev.Kind, ev.AccountID, formatAmount(ev.Observed), formatAmount(ev.Threshold))
	}
}

// formatAmount renders minor units as a decimal amount.
func formatAmount(v int64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

func ptr[T any](v T) *T { return &v }

// Package scheduler runs the periodic background jobs: alert evaluation,
// alert notification fan-out, and expired session cleanup.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	alertdomain "github.com/smallbiznis/ledgerview/internal/alert/domain"
	auditdomain "github.com/smallbiznis/ledgerview/internal/audit/domain"
	"github.com/smallbiznis/ledgerview/internal/clock"
	"github.com/smallbiznis/ledgerview/internal/config"
	obsContext "github.com/smallbiznis/ledgerview/internal/observability/context"
	"github.com/smallbiznis/ledgerview/internal/providers/email"
	"github.com/smallbiznis/ledgerview/internal/providers/slack"
	"github.com/smallbiznis/ledgerview/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrInvalidConfig = errors.New("scheduler configuration is incomplete")

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Clock    clock.Clock
	AlertSvc alertdomain.Service
	AuditSvc auditdomain.Service
	Email    email.Provider
	Slack    slack.Provider
	Limiter  *ratelimit.APILimiter
	Holder   *config.AlertingConfigHolder
	Config   Config `optional:"true"`
}

type Scheduler struct {
	db       *gorm.DB
	log      *zap.Logger
	cfg      Config
	clock    clock.Clock
	alertSvc alertdomain.Service
	auditSvc auditdomain.Service
	email    email.Provider
	slack    slack.Provider
	locker   *ratelimit.Locker
	holder   *config.AlertingConfigHolder

	lastNotified time.Time
}

func New(p Params) (*Scheduler, error) {
	if p.DB == nil || p.Log == nil || p.Clock == nil || p.AlertSvc == nil || p.AuditSvc == nil || p.Holder == nil {
		return nil, ErrInvalidConfig
	}
	var locker *ratelimit.Locker
	if p.Limiter != nil {
		locker = p.Limiter.Locker()
	}
	return &Scheduler{
		db:           p.DB,
		log:          p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:          p.Config.withDefaults(),
		clock:        p.Clock,
		alertSvc:     p.AlertSvc,
		auditSvc:     p.AuditSvc,
		email:        p.Email,
		slack:        p.Slack,
		locker:       locker,
		holder:       p.Holder,
		lastNotified: p.Clock.Now(),
	}, nil
}

// runJob wraps a job with a timeout, the scheduler actor identity, and a
// cross-replica leader lock when Redis is configured.
func (s *Scheduler) runJob(parent context.Context, name string, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, s.cfg.JobTimeout)
	defer cancel()

	ctx = obsContext.WithActor(ctx, string(auditdomain.ActorTypeScheduler), "scheduler")

	if s.locker != nil {
		key := fmt.Sprintf("lv:job:%s", name)
		token, acquired, err := s.locker.TryLock(ctx, key, s.cfg.LockTTL)
		if err != nil {
			s.log.Warn("job lock", zap.String("job", name), zap.Error(err))
		} else if !acquired {
			return nil
		} else {
			defer func() {
				if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
					s.log.Warn("job unlock", zap.String("job", name), zap.Error(err))
				}
			}()
		}
	}

	start := s.clock.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	log := s.log.With(zap.String("job", name), zap.Duration("elapsed", elapsed))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			log.Warn("job timed out", zap.Error(err))
			return nil
		}
		log.Error("job failed", zap.Error(err))
		return fmt.Errorf("%s: %w", name, err)
	}
	log.Debug("job finished")
	return nil
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	jobs := []struct {
		Name string
		Run  func(context.Context) error
	}{
		{"alert_evaluation", s.AlertEvaluationJob},
		{"alert_notification", s.AlertNotificationJob},
		{"session_sweep", s.SessionSweepJob},
	}

	var err error
	for _, job := range jobs {
		if !s.isJobEnabled(job.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, job.Name, job.Run))
	}
	return err
}

// RunForever loops RunOnce on the evaluation interval from the alerting
// config. The interval is re-read every pass so hot reloads take effect
// without a restart.
func (s *Scheduler) RunForever(ctx context.Context) {
	for {
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}

		interval := time.Duration(s.holder.Get().EvaluationInterval) * time.Second
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(interval):
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

func (s *Scheduler) AlertEvaluationJob(ctx context.Context) error {
	fired, err := s.alertSvc.Evaluate(ctx)
	if err != nil {
		return err
	}
	if fired > 0 {
		s.log.Info("alerts fired", zap.Int("count", fired))
	}
	return nil
}

// SessionSweepJob deletes sessions that expired or were revoked longer ago
// than the retention window.
func (s *Scheduler) SessionSweepJob(ctx context.Context) error {
	horizon := s.clock.Now().Add(-s.cfg.SessionRetention)
	result := s.db.WithContext(ctx).Exec(
		`DELETE FROM sessions WHERE expires_at < ? OR (revoked_at IS NOT NULL AND revoked_at < ?)`,
		horizon, horizon,
	)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		s.log.Info("sessions swept", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

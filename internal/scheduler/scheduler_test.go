package scheduler

import (
	"testing"
	"time"

	alertdomain "github.com/smallbiznis/ledgerview/internal/alert/domain"
	"github.com/stretchr/testify/assert"
)

func TestConfigWithDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 30*time.Second, cfg.JobTimeout)
	assert.Equal(t, 2*time.Minute, cfg.LockTTL)
	assert.Equal(t, 7*24*time.Hour, cfg.SessionRetention)

	custom := Config{JobTimeout: time.Minute}.withDefaults()
	assert.Equal(t, time.Minute, custom.JobTimeout)
	assert.Equal(t, 2*time.Minute, custom.LockTTL)
}

func TestIsJobEnabled(t *testing.T) {
	s := &Scheduler{cfg: Config{}}
	assert.True(t, s.isJobEnabled("alert_evaluation"))

	s.cfg.EnabledJobs = []string{"session_sweep"}
	assert.True(t, s.isJobEnabled("session_sweep"))
	assert.True(t, s.isJobEnabled("SESSION_SWEEP"))
	assert.False(t, s.isJobEnabled("alert_evaluation"))
}

func TestDescribeEvent(t *testing.T) {
	low := firedEvent{Kind: string(alertdomain.RuleLowBalance), Observed: 4200, Threshold: 10000}
	assert.Contains(t, describeEvent(low), "42.00")
	assert.Contains(t, describeEvent(low), "100.00 floor")

	large := firedEvent{Kind: string(alertdomain.RuleLargeTransaction), Observed: -750050, Threshold: 500000}
	assert.Contains(t, describeEvent(large), "-7500.50")
	assert.Contains(t, describeEvent(large), "5000.00 threshold")
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "0.00", formatAmount(0))
	assert.Equal(t, "1.05", formatAmount(105))
	assert.Equal(t, "-12.34", formatAmount(-1234))
}

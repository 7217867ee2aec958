package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// AlertingConfig tunes the alert evaluation job. It is hot-reloadable so
// operators can adjust thresholds without a restart.
type AlertingConfig struct {
	LowBalanceFloor    int64 `mapstructure:"lowBalanceFloor"`    // minor units
	LargeTxnThreshold  int64 `mapstructure:"largeTxnThreshold"`  // minor units, absolute value
	EvaluationInterval int   `mapstructure:"evaluationInterval"` // seconds
}

func DefaultAlertingConfig() AlertingConfig {
	return AlertingConfig{
		LowBalanceFloor:    10_000,
		LargeTxnThreshold:  500_000,
		EvaluationInterval: 300,
	}
}

type AlertingConfigHolder struct {
	current atomic.Value // holds AlertingConfig
}

func NewAlertingConfigHolder() (*AlertingConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("alerting")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/ledgerview/config") // Volume-mounted config
	v.AddConfigPath("/etc/ledgerview")            // System config
	v.AddConfigPath(".")                          // Current directory (dev mode)

	// env hanya untuk path override (optional)
	v.SetEnvPrefix("LEDGERVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// if config file not found, use defaults
		defaults := DefaultAlertingConfig()
		v.SetDefault("alerting.lowBalanceFloor", defaults.LowBalanceFloor)
		v.SetDefault("alerting.largeTxnThreshold", defaults.LargeTxnThreshold)
		v.SetDefault("alerting.evaluationInterval", defaults.EvaluationInterval)
	}

	var cfg AlertingConfig
	if err := v.UnmarshalKey("alerting", &cfg); err != nil {
		return nil, err
	}
	if err := validateAlertingConfig(cfg); err != nil {
		return nil, err
	}

	holder := &AlertingConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated AlertingConfig
		if err := v.UnmarshalKey("alerting", &updated); err != nil {
			log.Printf("[alerting-config] reload failed: %v", err)
			return
		}
		if err := validateAlertingConfig(updated); err != nil {
			log.Printf("[alerting-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[alerting-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticAlertingConfigHolder wraps a fixed config with no file watching.
func NewStaticAlertingConfigHolder(cfg AlertingConfig) *AlertingConfigHolder {
	holder := &AlertingConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *AlertingConfigHolder) Get() AlertingConfig {
	return h.current.Load().(AlertingConfig)
}

func validateAlertingConfig(cfg AlertingConfig) error {
	if cfg.LargeTxnThreshold <= 0 {
		return errors.New("alerting.largeTxnThreshold must be positive")
	}
	if cfg.EvaluationInterval <= 0 {
		return errors.New("alerting.evaluationInterval must be positive")
	}
	return nil
}

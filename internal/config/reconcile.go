package config

import (
	"errors"
	"log"
	"strings"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// ReconcileConfig tunes duplicate detection without a redeploy.
type ReconcileConfig struct {
	DuplicateThreshold float64 `mapstructure:"duplicateThreshold"`
	ContainmentScore   float64 `mapstructure:"containmentScore"`
	MaxGroupSize       int     `mapstructure:"maxGroupSize"`
}

func DefaultReconcileConfig() ReconcileConfig {
	return ReconcileConfig{
		DuplicateThreshold: 0.7,
		ContainmentScore:   0.8,
		MaxGroupSize:       50,
	}
}

type ReconcileConfigHolder struct {
	current atomic.Value // holds ReconcileConfig
}

func NewReconcileConfigHolder() (*ReconcileConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("reconcile")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/marketplace/config")
	v.AddConfigPath("/etc/marketplace")
	v.AddConfigPath(".")

	v.SetEnvPrefix("MARKETPLACE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultReconcileConfig()
	v.SetDefault("reconcile.duplicateThreshold", defaults.DuplicateThreshold)
	v.SetDefault("reconcile.containmentScore", defaults.ContainmentScore)
	v.SetDefault("reconcile.maxGroupSize", defaults.MaxGroupSize)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg ReconcileConfig
	if err := v.UnmarshalKey("reconcile", &cfg); err != nil {
		return nil, err
	}
	if err := validateReconcileConfig(cfg); err != nil {
		return nil, err
	}

	holder := &ReconcileConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated ReconcileConfig
		if err := v.UnmarshalKey("reconcile", &updated); err != nil {
			log.Printf("[reconcile-config] reload failed: %v", err)
			return
		}
		if err := validateReconcileConfig(updated); err != nil {
			log.Printf("[reconcile-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[reconcile-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

func (h *ReconcileConfigHolder) Get() ReconcileConfig {
	return h.current.Load().(ReconcileConfig)
}

func validateReconcileConfig(cfg ReconcileConfig) error {
	if cfg.DuplicateThreshold <= 0 || cfg.DuplicateThreshold > 1 {
		return errors.New("reconcile.duplicateThreshold must be in (0, 1]")
	}
	if cfg.ContainmentScore <= 0 || cfg.ContainmentScore > 1 {
		return errors.New("reconcile.containmentScore must be in (0, 1]")
	}
	if cfg.MaxGroupSize <= 0 {
		return errors.New("reconcile.maxGroupSize must be positive")
	}
	return nil
}

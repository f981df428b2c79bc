// Package seed loads the default channel and event catalog into an empty
// store. A store that already has channels is left untouched, so applying the
// same fixture on every startup is safe.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"onboarding-hub/internal/common/logger"
	"onboarding-hub/internal/models"
	"onboarding-hub/internal/store"
)

// Fixture is the parsed contents of a seed file.
type Fixture struct {
	Channels []models.Channel
	Events   []models.OnboardingEvent
}

// Load parses a YAML seed file.
func Load(path string) (*Fixture, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read seed file %s: %w", path, err)
	}

	var f Fixture
	if err := v.UnmarshalKey("channels", &f.Channels); err != nil {
		return nil, fmt.Errorf("parse seed channels: %w", err)
	}
	if err := v.UnmarshalKey("events", &f.Events); err != nil {
		return nil, fmt.Errorf("parse seed events: %w", err)
	}
	return &f, nil
}

// Apply inserts the fixture into st unless channels already exist.
func Apply(ctx context.Context, st store.Store, f *Fixture, log logger.Logger) error {
	existing, err := st.Channels().List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		log.Debug("store already populated, skipping seed", map[string]interface{}{
			"channels": len(existing),
		})
		return nil
	}

	for _, ch := range f.Channels {
		if err := st.Channels().Create(ctx, ch); err != nil {
			return fmt.Errorf("seed channel %s: %w", ch.ID, err)
		}
	}
	now := time.Now().UTC()
	for _, ev := range f.Events {
		if ev.CreatedAt.IsZero() {
			ev.CreatedAt = now
		}
		if err := st.Events().Create(ctx, ev); err != nil {
			return fmt.Errorf("seed event %s: %w", ev.Code, err)
		}
	}

	log.Info("store seeded with default catalog", map[string]interface{}{
		"channels": len(f.Channels),
		"events":   len(f.Events),
	})
	return nil
}

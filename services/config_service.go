package services

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// ConfigService exposes the tunable economy constants as a flat key/value
// set. Defaults below are the production values; any key can be overridden
// through the environment, e.g. SONAR_STAR_BASE_PRICE=250.
type ConfigService struct {
	v *viper.Viper
}

// NewConfigService builds the provider with defaults and env overrides.
func NewConfigService() *ConfigService {
	v := viper.New()
	v.SetEnvPrefix("sonar")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("points.first_encounter", 100.0)
	v.SetDefault("points.re_encounter_diff_day", 40.0)
	v.SetDefault("points.re_encounter_same_day", 10.0)
	v.SetDefault("score.decay_window_days", 30)
	v.SetDefault("score.antifarm_cap", 2)

	v.SetDefault("relation.ttl_hours", 24)
	v.SetDefault("relation.digital_ttl_minutes", 60)
	v.SetDefault("relation.connect_request_ttl_minutes", 10)

	v.SetDefault("sonic.slot_count", 20)
	v.SetDefault("sonic.base_frequency_hz", 18000)
	v.SetDefault("sonic.step_hz", 50)
	v.SetDefault("sonic.visitor_ttl_seconds", 60)
	v.SetDefault("sonic.operator_ttl_seconds", 600)
	v.SetDefault("sonic.sweep_seconds", 20)

	v.SetDefault("streak.star_interval_days", 5)
	v.SetDefault("milestone.partner_interval", 100)
	v.SetDefault("star.base_price", 100.0)
	v.SetDefault("star.price_multiplier", 1.15)
	v.SetDefault("star.max_gifts_per_pair", 10)

	v.SetDefault("sweep.relation_seconds", 60)
	v.SetDefault("sweep.points_hours", 24)
	v.SetDefault("flush.interval_seconds", 30)

	return &ConfigService{v: v}
}

func (c *ConfigService) FirstEncounterPoints() float64 { return c.v.GetFloat64("points.first_encounter") }
func (c *ConfigService) ReEncounterDiffDayPoints() float64 {
	return c.v.GetFloat64("points.re_encounter_diff_day")
}
func (c *ConfigService) ReEncounterSameDayPoints() float64 {
	return c.v.GetFloat64("points.re_encounter_same_day")
}
func (c *ConfigService) AntiFarmCap() int { return c.v.GetInt("score.antifarm_cap") }

func (c *ConfigService) DecayWindow() time.Duration {
	return time.Duration(c.v.GetInt("score.decay_window_days")) * 24 * time.Hour
}

func (c *ConfigService) RelationTTL() time.Duration {
	return time.Duration(c.v.GetInt("relation.ttl_hours")) * time.Hour
}
func (c *ConfigService) DigitalRelationTTL() time.Duration {
	return time.Duration(c.v.GetInt("relation.digital_ttl_minutes")) * time.Minute
}
func (c *ConfigService) ConnectRequestTTL() time.Duration {
	return time.Duration(c.v.GetInt("relation.connect_request_ttl_minutes")) * time.Minute
}

func (c *ConfigService) SlotCount() int { return c.v.GetInt("sonic.slot_count") }
func (c *ConfigService) BaseFrequencyHz() int { return c.v.GetInt("sonic.base_frequency_hz") }
func (c *ConfigService) FrequencyStepHz() int { return c.v.GetInt("sonic.step_hz") }
func (c *ConfigService) VisitorQueueTTL() time.Duration {
	return time.Duration(c.v.GetInt("sonic.visitor_ttl_seconds")) * time.Second
}
func (c *ConfigService) OperatorQueueTTL() time.Duration {
	return time.Duration(c.v.GetInt("sonic.operator_ttl_seconds")) * time.Second
}
func (c *ConfigService) SonicSweepInterval() time.Duration {
	return time.Duration(c.v.GetInt("sonic.sweep_seconds")) * time.Second
}

func (c *ConfigService) StreakStarInterval() int { return c.v.GetInt("streak.star_interval_days") }
func (c *ConfigService) MilestoneInterval() int { return c.v.GetInt("milestone.partner_interval") }
func (c *ConfigService) StarBasePrice() float64 { return c.v.GetFloat64("star.base_price") }
func (c *ConfigService) StarPriceMultiplier() float64 {
	return c.v.GetFloat64("star.price_multiplier")
}
func (c *ConfigService) MaxGiftsPerPair() int { return c.v.GetInt("star.max_gifts_per_pair") }

func (c *ConfigService) RelationSweepInterval() time.Duration {
	return time.Duration(c.v.GetInt("sweep.relation_seconds")) * time.Second
}
func (c *ConfigService) PointsSweepInterval() time.Duration {
	return time.Duration(c.v.GetInt("sweep.points_hours")) * time.Hour
}
func (c *ConfigService) FlushInterval() time.Duration {
	return time.Duration(c.v.GetInt("flush.interval_seconds")) * time.Second
}

// Set overrides a key at runtime. Used by tests to pin economy constants.
func (c *ConfigService) Set(key string, value interface{}) {
	c.v.Set(key, value)
}

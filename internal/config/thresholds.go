package config

import (
	"fmt"
	"time"
)

// Default rule thresholds.
const (
	DefaultTitleMinLength           = 30
	DefaultTitleMaxLength           = 60
	DefaultMetaDescriptionMinLength = 120
	DefaultMetaDescriptionMaxLength = 160
	DefaultSlowLoadTime             = 3000 * time.Millisecond
	DefaultMaxStylesheets           = 5

	// DefaultNominalTestCount is the fixed test count that "passed" is derived
	// from. It is not the number of rules.
	DefaultNominalTestCount = 25

	DefaultCriticalWeight     = 10
	DefaultWarningWeight      = 5
	DefaultOptimizationWeight = 2

	DefaultActionPlanWarningCap      = 3
	DefaultActionPlanOptimizationCap = 3

	// DefaultPlatformAnalyticsMarker is the inline script snippet installed by
	// the storefront platform's own analytics.
	DefaultPlatformAnalyticsMarker = "Shopify.analytics"
)

// Thresholds holds every tunable constant of the rule set, the scorer and
// the action plan builder.
type Thresholds struct {
	TitleMinLength           int           `yaml:"titleMinLength"`
	TitleMaxLength           int           `yaml:"titleMaxLength"`
	MetaDescriptionMinLength int           `yaml:"metaDescriptionMinLength"`
	MetaDescriptionMaxLength int           `yaml:"metaDescriptionMaxLength"`
	SlowLoadTime             time.Duration `yaml:"slowLoadTime"`
	MaxStylesheets           int           `yaml:"maxStylesheets"`

	NominalTestCount   int `yaml:"nominalTestCount"`
	CriticalWeight     int `yaml:"criticalWeight"`
	WarningWeight      int `yaml:"warningWeight"`
	OptimizationWeight int `yaml:"optimizationWeight"`

	ActionPlanWarningCap      int `yaml:"actionPlanWarningCap"`
	ActionPlanOptimizationCap int `yaml:"actionPlanOptimizationCap"`

	PlatformAnalyticsMarker string `yaml:"platformAnalyticsMarker"`
}

// DefaultThresholds returns the thresholds the audit engine ships with.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TitleMinLength:            DefaultTitleMinLength,
		TitleMaxLength:            DefaultTitleMaxLength,
		MetaDescriptionMinLength:  DefaultMetaDescriptionMinLength,
		MetaDescriptionMaxLength:  DefaultMetaDescriptionMaxLength,
		SlowLoadTime:              DefaultSlowLoadTime,
		MaxStylesheets:            DefaultMaxStylesheets,
		NominalTestCount:          DefaultNominalTestCount,
		CriticalWeight:            DefaultCriticalWeight,
		WarningWeight:             DefaultWarningWeight,
		OptimizationWeight:        DefaultOptimizationWeight,
		ActionPlanWarningCap:      DefaultActionPlanWarningCap,
		ActionPlanOptimizationCap: DefaultActionPlanOptimizationCap,
		PlatformAnalyticsMarker:   DefaultPlatformAnalyticsMarker,
	}
}

// Validate checks that the thresholds are usable.
func (t Thresholds) Validate() error {
	switch {
	case t.TitleMinLength < 0 || t.TitleMaxLength < t.TitleMinLength:
		return fmt.Errorf("%w: title bounds %d..%d", ErrInvalidThreshold, t.TitleMinLength, t.TitleMaxLength)
	case t.MetaDescriptionMinLength < 0 || t.MetaDescriptionMaxLength < t.MetaDescriptionMinLength:
		return fmt.Errorf("%w: meta description bounds %d..%d",
			ErrInvalidThreshold, t.MetaDescriptionMinLength, t.MetaDescriptionMaxLength)
	case t.SlowLoadTime <= 0:
		return fmt.Errorf("%w: slow load time must be positive", ErrInvalidThreshold)
	case t.MaxStylesheets < 0:
		return fmt.Errorf("%w: max stylesheets must be non-negative", ErrInvalidThreshold)
	case t.NominalTestCount < 0:
		return fmt.Errorf("%w: nominal test count must be non-negative", ErrInvalidThreshold)
	case t.CriticalWeight < 0 || t.WarningWeight < 0 || t.OptimizationWeight < 0:
		return fmt.Errorf("%w: score weights must be non-negative", ErrInvalidThreshold)
	case t.ActionPlanWarningCap < 0 || t.ActionPlanOptimizationCap < 0:
		return fmt.Errorf("%w: action plan caps must be non-negative", ErrInvalidThreshold)
	case t.PlatformAnalyticsMarker == "":
		return fmt.Errorf("%w: platform analytics marker must not be empty", ErrInvalidThreshold)
	}
	return nil
}

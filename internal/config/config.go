// Package config defines the engine's configuration record: enumerated
// fields with struct-tag validation and environment-variable overrides
// under a NARS_ prefix, mirroring the teacher's UT_-prefixed loader
// (internal/config/config.go) and 2lar-b2's struct-tag validation style
// (spec.md §6.5, §9: "Dynamic configuration objects" re-architecture note).
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
)

// ForgetPolicy selects which concept the forgetting strategy evicts.
type ForgetPolicy string

const (
	ForgetPriority ForgetPolicy = "priority"
	ForgetLRU      ForgetPolicy = "lru"
	ForgetFIFO     ForgetPolicy = "fifo"
)

// Config groups the engine's recognized options (spec.md §6.5) into
// Memory, Strategy, and Logging sub-structs.
type Config struct {
	Memory   MemoryConfig   `json:"memory" validate:"required"`
	Strategy StrategyConfig `json:"strategy" validate:"required"`
	Logging  LoggingConfig  `json:"logging" validate:"required"`
}

// MemoryConfig groups memory/forgetting/consolidation knobs.
type MemoryConfig struct {
	MaxConcepts              int          `json:"maxConcepts" validate:"required,gt=0"`
	MaxTasksPerConcept        int          `json:"maxTasksPerConcept" validate:"required,gt=0"`
	PriorityThreshold         float64      `json:"priorityThreshold" validate:"gte=0,lte=1"`
	PriorityDecayRate         float64      `json:"priorityDecayRate" validate:"gte=0,lte=1"`
	ActivationDecayRate       float64      `json:"activationDecayRate" validate:"gte=0,lte=1"`
	ConsolidationInterval     int          `json:"consolidationInterval" validate:"required,gt=0"`
	ForgetPolicy              ForgetPolicy `json:"forgetPolicy" validate:"required,oneof=priority lru fifo"`
	MemoryPressureThreshold   float64      `json:"memoryPressureThreshold" validate:"gte=0,lte=1"`
	EnableAdaptiveForgetting  bool         `json:"enableAdaptiveForgetting"`
	ScoringWeights            ScoringWeights `json:"scoringWeights" validate:"required"`
}

// ScoringWeights resolves spec.md §9's ambiguity over which type owns
// the composite `get_most_active_concepts` weights: Memory's config is
// authoritative, and any scorer takes weights as a constructor argument.
type ScoringWeights struct {
	Activation float64 `json:"activation" validate:"gte=0"`
	UseCount   float64 `json:"useCount" validate:"gte=0"`
	TaskCount  float64 `json:"taskCount" validate:"gte=0"`
	Quality    float64 `json:"quality" validate:"gte=0"`
	Complexity float64 `json:"complexity" validate:"gte=0"`
	Diversity  float64 `json:"diversity" validate:"gte=0"`
}

// StrategyConfig groups premise-formation strategy knobs (spec.md §6.5
// "Strategy knobs").
type StrategyConfig struct {
	SubjectPriority         float64 `json:"subjectPriority" validate:"gte=0,lte=1"`
	PredicatePriority       float64 `json:"predicatePriority" validate:"gte=0,lte=1"`
	ComponentPriority       float64 `json:"componentPriority" validate:"gte=0,lte=1"`
	MaxLinks                int     `json:"maxLinks" validate:"gte=0"`
	MinLinkPriority         float64 `json:"minLinkPriority" validate:"gte=0,lte=1"`
	MaxTasks                int     `json:"maxTasks" validate:"gte=0"`
	HighCompatibilityScore  float64 `json:"highCompatibilityScore" validate:"gte=0,lte=1"`
	MediumCompatibilityScore float64 `json:"mediumCompatibilityScore" validate:"gte=0,lte=1"`
	LowCompatibilityScore   float64 `json:"lowCompatibilityScore" validate:"gte=0,lte=1"`
	MaxPlanDepth            int     `json:"maxPlanDepth" validate:"gte=0"`
}

// LoggingConfig controls the injected structured logger (spec.md §6.6).
type LoggingConfig struct {
	Level string `json:"level" validate:"required,oneof=debug info warn error"`
}

// Default returns the spec.md §6.5-documented defaults.
func Default() *Config {
	return &Config{
		Memory: MemoryConfig{
			MaxConcepts:             1000,
			MaxTasksPerConcept:      100,
			PriorityThreshold:       0.5,
			PriorityDecayRate:       0.01,
			ActivationDecayRate:     0.005,
			ConsolidationInterval:   10,
			ForgetPolicy:            ForgetPriority,
			MemoryPressureThreshold: 0.8,
			EnableAdaptiveForgetting: true,
			ScoringWeights: ScoringWeights{
				Activation: 0.3,
				UseCount:   0.2,
				TaskCount:  0.15,
				Quality:    0.2,
				Complexity: 0.05,
				Diversity:  0.1,
			},
		},
		Strategy: StrategyConfig{
			SubjectPriority:          0.85,
			PredicatePriority:        0.85,
			ComponentPriority:        0.7,
			MaxLinks:                 20,
			MinLinkPriority:          0.1,
			MaxTasks:                 200,
			HighCompatibilityScore:   0.95,
			MediumCompatibilityScore: 0.7,
			LowCompatibilityScore:    0.3,
			MaxPlanDepth:             10,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads JSON configuration from data, rejecting unknown fields,
// applies NARS_-prefixed environment overrides, and validates the
// result.
func Load(data []byte) (*Config, error) {
	cfg := Default()
	if len(data) > 0 {
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(cfg); err != nil {
			return nil, fmt.Errorf("config: decode: %w", err)
		}
	}
	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg against its struct tags.
func Validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}
	return nil
}

// applyEnvOverrides mirrors the teacher's UT_<SECTION>_<KEY> pattern
// under a NARS_ prefix.
func applyEnvOverrides(cfg *Config) {
	if v, ok := intEnv("NARS_MEMORY_MAX_CONCEPTS"); ok {
		cfg.Memory.MaxConcepts = v
	}
	if v, ok := intEnv("NARS_MEMORY_MAX_TASKS_PER_CONCEPT"); ok {
		cfg.Memory.MaxTasksPerConcept = v
	}
	if v, ok := floatEnv("NARS_MEMORY_PRIORITY_THRESHOLD"); ok {
		cfg.Memory.PriorityThreshold = v
	}
	if v, ok := floatEnv("NARS_MEMORY_PRIORITY_DECAY_RATE"); ok {
		cfg.Memory.PriorityDecayRate = v
	}
	if v, ok := floatEnv("NARS_MEMORY_ACTIVATION_DECAY_RATE"); ok {
		cfg.Memory.ActivationDecayRate = v
	}
	if v, ok := intEnv("NARS_MEMORY_CONSOLIDATION_INTERVAL"); ok {
		cfg.Memory.ConsolidationInterval = v
	}
	if v := os.Getenv("NARS_MEMORY_FORGET_POLICY"); v != "" {
		cfg.Memory.ForgetPolicy = ForgetPolicy(v)
	}
	if v, ok := floatEnv("NARS_MEMORY_PRESSURE_THRESHOLD"); ok {
		cfg.Memory.MemoryPressureThreshold = v
	}
	if v, ok := boolEnv("NARS_MEMORY_ENABLE_ADAPTIVE_FORGETTING"); ok {
		cfg.Memory.EnableAdaptiveForgetting = v
	}
	if v := os.Getenv("NARS_LOGGING_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

func intEnv(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func floatEnv(key string) (float64, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

func boolEnv(key string) (bool, bool) {
	v := os.Getenv(key)
	if v == "" {
		return false, false
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, false
	}
	return b, true
}

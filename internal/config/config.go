// Package config loads and validates named run-configuration targets from a
// YAML file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"rsbench/internal/domain"
)

// Environment types for the backing Redshift deployment.
const (
	EnvProvisioned = "provisioned"
	EnvServerless  = "serverless"
)

// Scheduling modes for repeated attempts.
const (
	ModeSynchronous  = "synchronous"
	ModeAsynchronous = "asynchronous"
)

// Bounds and defaults for optional options.
const (
	DefaultAttempts      = 1
	MaxAttempts          = 200
	DefaultWaitCycles    = 5
	DefaultSleepInterval = 5 // seconds
)

// Target is one named run configuration.
type Target struct {
	ClusterOrWorkgroup string  `yaml:"clusterOrWorkgroup"`
	EnvironmentType    string  `yaml:"environmentType"`
	DatabaseName       string  `yaml:"databaseName"`
	CredentialsRef     string  `yaml:"credentialsRef"`
	Attempts           int     `yaml:"attempts"`
	WaitCycles         int     `yaml:"waitCycles"`
	SleepInterval      int     `yaml:"sleepInterval"`
	Mode               string  `yaml:"mode"`
	VerboseLogging     bool    `yaml:"verboseLogging"`
	ResultCache        bool    `yaml:"resultCache"`
	MvRewrite          bool    `yaml:"mvRewrite"`
	Region             string  `yaml:"region"`
	AccessKeyID        string  `yaml:"accessKeyID"`
	SecretAccessKey    string  `yaml:"secretAccessKey"`
	APIRateLimit       float64 `yaml:"apiRateLimit"`
}

// SleepDuration returns the poll sleep interval as a duration.
func (t *Target) SleepDuration() time.Duration {
	return time.Duration(t.SleepInterval) * time.Second
}

// Load reads the config file and returns the named target with defaults
// applied. Missing files, unknown targets, and invalid options all yield a
// ConfigError.
func Load(path, target string) (*Target, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.ErrConfig("read config %s: %v", path, err)
	}

	var targets map[string]*Target
	if err := yaml.Unmarshal(data, &targets); err != nil {
		return nil, domain.ErrConfig("parse config %s: %v", path, err)
	}

	t, ok := targets[target]
	if !ok || t == nil {
		return nil, domain.ErrConfig("missing target %q in %s", target, path)
	}

	t.applyDefaults()
	if err := t.validate(); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *Target) applyDefaults() {
	if t.Attempts == 0 {
		t.Attempts = DefaultAttempts
	}
	if t.WaitCycles == 0 {
		t.WaitCycles = DefaultWaitCycles
	}
	if t.SleepInterval == 0 {
		t.SleepInterval = DefaultSleepInterval
	}
	if t.Mode == "" {
		t.Mode = ModeSynchronous
	}
}

func (t *Target) validate() error {
	if t.ClusterOrWorkgroup == "" {
		return domain.ErrConfig("clusterOrWorkgroup is required")
	}
	if t.EnvironmentType != EnvProvisioned && t.EnvironmentType != EnvServerless {
		return domain.ErrConfig("environmentType must be %q or %q, got %q",
			EnvProvisioned, EnvServerless, t.EnvironmentType)
	}
	if t.DatabaseName == "" {
		return domain.ErrConfig("databaseName is required")
	}
	if t.CredentialsRef == "" {
		return domain.ErrConfig("credentialsRef is required")
	}
	if t.Attempts < 1 || t.Attempts > MaxAttempts {
		return domain.ErrConfig("attempts must be between 1 and %d, got %d", MaxAttempts, t.Attempts)
	}
	if t.WaitCycles < 1 {
		return domain.ErrConfig("waitCycles must be greater than 0, got %d", t.WaitCycles)
	}
	if t.SleepInterval < 1 {
		return domain.ErrConfig("sleepInterval must be greater than 0, got %d", t.SleepInterval)
	}
	if t.Mode != ModeSynchronous && t.Mode != ModeAsynchronous {
		return domain.ErrConfig("mode must be %q or %q, got %q",
			ModeSynchronous, ModeAsynchronous, t.Mode)
	}
	if t.APIRateLimit < 0 {
		return domain.ErrConfig("apiRateLimit must not be negative, got %v", t.APIRateLimit)
	}
	if (t.AccessKeyID == "") != (t.SecretAccessKey == "") {
		return domain.ErrConfig("accessKeyID and secretAccessKey must be set together")
	}
	return nil
}

// String renders the target for the run header log, one option per line.
func (t *Target) String() string {
	return fmt.Sprintf(
		"clusterOrWorkgroup=%s environmentType=%s databaseName=%s attempts=%d waitCycles=%d sleepInterval=%ds mode=%s resultCache=%t mvRewrite=%t",
		t.ClusterOrWorkgroup, t.EnvironmentType, t.DatabaseName,
		t.Attempts, t.WaitCycles, t.SleepInterval, t.Mode, t.ResultCache, t.MvRewrite)
}

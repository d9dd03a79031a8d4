package entities

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	logger "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	defaultConcurrency            = 4
	defaultSizeNormalizer         = 200
	defaultCoverageThreshold      = 85
	defaultRegressionThreshold    = 5
	defaultHealthCheckRetries     = 3
	defaultRollbackTimeout        = 5 * time.Minute
	defaultNotificationTimeout    = 10 * time.Second
	defaultNotificationRetries    = 3
	defaultDatabaseDriver         = "sqlite"
	defaultDatabaseDSN            = "portetrack.db"
	defaultBaseBranch             = "main"
	defaultBranchPrefix           = "porte/upgrade-"
	defaultAutoApproveMax         = 3.0
	defaultConditionalApproveMax  = 6.0
	defaultRejectAbove            = 8.0
	defaultGitHubRequestPerSecond = 5
)

// Settings is the top-level configuration for portetrack.
type Settings struct {
	GitHub        GitHubSettings           `yaml:"github"`
	Portes        map[string]PorteSettings `yaml:"portes"        validate:"required,min=1,dive"`
	Notifications NotificationSettings     `yaml:"notifications"`
	Database      DatabaseSettings         `yaml:"database"`
	Monitoring    MonitoringSettings       `yaml:"monitoring"`
	Analysis      AnalysisSettings         `yaml:"analysis"`
	Pipeline      PipelineSettings         `yaml:"pipeline"`
}

// GitHubSettings configures access to the upstream release source.
type GitHubSettings struct {
	Token             string  `yaml:"token"`               // Inline, ${ENV_VAR}, or file path
	BaseURL           string  `yaml:"base_url"            validate:"omitempty,url"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
}

// PorteSettings describes one tracked component.
type PorteSettings struct {
	ComponentName  string             `yaml:"component_name"         validate:"required"`
	UpstreamRepo   string             `yaml:"upstream_repo"          validate:"required,contains=/"`
	AutoApproval   ApprovalThresholds `yaml:"auto_approval_settings"`
	CurrentVersion string             `yaml:"current_version"`
	Author         string             `yaml:"author"`
	Workspace      string             `yaml:"workspace"`  // local checkout of the porte
	Repository     string             `yaml:"repository"` // "owner/name" of the porte, for pull requests
}

// ApprovalThresholds are the per-component decision thresholds.
type ApprovalThresholds struct {
	AutoApproveMax        float64 `yaml:"autoApproveMax"        validate:"gte=0,lte=10"`
	ConditionalApproveMax float64 `yaml:"conditionalApproveMax" validate:"gte=0,lte=10,gtefield=AutoApproveMax"`
	ManualReviewRequired  bool    `yaml:"manualReviewRequired"`
	RejectAbove           float64 `yaml:"rejectAbove"           validate:"gte=0,lte=10"`
}

// DefaultApprovalThresholds returns the thresholds used when a porte sets none.
func DefaultApprovalThresholds() ApprovalThresholds {
	return ApprovalThresholds{
		AutoApproveMax:        defaultAutoApproveMax,
		ConditionalApproveMax: defaultConditionalApproveMax,
		RejectAbove:           defaultRejectAbove,
	}
}

// UnmarshalYAML fills omitted keys with the default thresholds.
func (t *ApprovalThresholds) UnmarshalYAML(value *yaml.Node) error {
	type plain ApprovalThresholds
	decoded := plain(DefaultApprovalThresholds())
	if err := value.Decode(&decoded); err != nil {
		return err
	}
	*t = ApprovalThresholds(decoded)
	return nil
}

// NotificationSettings configures alert delivery.
type NotificationSettings struct {
	WebhookURL string        `yaml:"webhook_url" validate:"omitempty,url"`
	Channel    string        `yaml:"channel"`
	Timeout    time.Duration `yaml:"timeout"`
	Retries    int           `yaml:"retries"     validate:"gte=0"`
}

// DatabaseSettings selects the persistence backend.
type DatabaseSettings struct {
	Driver string `yaml:"driver" validate:"omitempty,oneof=sqlite postgres mysql"`
	DSN    string `yaml:"dsn"`
}

// MonitoringSettings configures the monitoring run.
type MonitoringSettings struct {
	IncludePrereleases bool `yaml:"include_prereleases"`
	Concurrency        int  `yaml:"concurrency" validate:"gte=0"`
}

// AnalysisSettings configures the change analyzer and the risk scorer.
type AnalysisSettings struct {
	SizeNormalizer   float64  `yaml:"size_normalizer"   validate:"gte=0"`
	BreakingPatterns []string `yaml:"breaking_patterns"`
	Manifests        []string `yaml:"manifests"` // ecosystems to diff; empty means all
}

// PipelineSettings configures the implementation pipeline.
type PipelineSettings struct {
	TestCoverageThreshold          float64                  `yaml:"test_coverage_threshold"          validate:"gte=0,lte=100"`
	PerformanceRegressionThreshold float64                  `yaml:"performance_regression_threshold" validate:"gte=0"`
	HealthCheckRetries             int                      `yaml:"health_check_retries"             validate:"gte=0"`
	RollbackTimeout                time.Duration            `yaml:"rollback_timeout"`
	RollbackKeywords               []string                 `yaml:"rollback_keywords"`
	StageTimeouts                  map[string]time.Duration `yaml:"stage_timeouts"`
	Commands                       map[string]string        `yaml:"commands"`
	MetricPatterns                 map[string]string        `yaml:"metric_patterns"`
	BaseBranch                     string                   `yaml:"base_branch"`
	BranchPrefix                   string                   `yaml:"branch_prefix"`
}

// DefaultBreakingPatterns are the release-note patterns that mark a breaking change.
func DefaultBreakingPatterns() []string {
	return []string{
		`BREAKING[ -]CHANGE`,
		`\bremoved\b`,
		`\bincompatible\b`,
		`\bdeprecated\b.*\bremoved\b`,
	}
}

// DefaultRollbackKeywords are the error fragments that trigger a rollback
// outside the deployment stage.
func DefaultRollbackKeywords() []string {
	return []string{"deployment failed", "health check failed", "critical error"}
}

// DefaultStageTimeouts returns the per-stage time budget.
func DefaultStageTimeouts() map[string]time.Duration {
	return map[string]time.Duration{
		StagePreparation: 5 * time.Minute,
		StageApplication: 15 * time.Minute,
		StageValidation:  30 * time.Minute,
		StageDeployment:  10 * time.Minute,
	}
}

// envVarPattern matches ${VAR_NAME} placeholders.
var envVarPattern = regexp.MustCompile(`\$\{([^}]+)}`)

// NewSettings reads, resolves, defaults and validates a configuration file.
// Every failure is reported as a ConfigurationError.
func NewSettings(path string) (*Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: fmt.Errorf("failed to read config file: %w", err)}
	}

	settings, err := ParseSettings(data)
	if err != nil {
		return nil, &ConfigurationError{Path: path, Err: err}
	}
	return settings, nil
}

// ParseSettings decodes raw YAML into validated settings.
func ParseSettings(data []byte) (*Settings, error) {
	var settings Settings
	if unmarshalErr := yaml.Unmarshal(data, &settings); unmarshalErr != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", unmarshalErr)
	}

	settings.GitHub.Token = resolveToken(settings.GitHub.Token)
	settings.Notifications.WebhookURL = expandEnv(settings.Notifications.WebhookURL)
	settings.Database.DSN = expandEnv(settings.Database.DSN)
	settings.applyDefaults()

	if validateErr := validateSettings(&settings); validateErr != nil {
		return nil, validateErr
	}
	return &settings, nil
}

// Porte returns the settings of the porte tracking the given component.
func (s *Settings) Porte(componentName string) (PorteSettings, bool) {
	for _, p := range s.Portes {
		if p.ComponentName == componentName {
			return p, true
		}
	}
	return PorteSettings{}, false
}

// StageTimeout returns the time budget of a stage.
func (p *PipelineSettings) StageTimeout(stage string) time.Duration {
	if timeout, ok := p.StageTimeouts[stage]; ok && timeout > 0 {
		return timeout
	}
	return DefaultStageTimeouts()[stage]
}

func (s *Settings) applyDefaults() {
	for name, porte := range s.Portes {
		if porte.ComponentName == "" {
			porte.ComponentName = name
		}
		if porte.AutoApproval == (ApprovalThresholds{}) {
			porte.AutoApproval = DefaultApprovalThresholds()
		}
		s.Portes[name] = porte
	}

	if s.GitHub.RequestsPerSecond == 0 {
		s.GitHub.RequestsPerSecond = defaultGitHubRequestPerSecond
	}
	if s.Notifications.Timeout == 0 {
		s.Notifications.Timeout = defaultNotificationTimeout
	}
	if s.Notifications.Retries == 0 {
		s.Notifications.Retries = defaultNotificationRetries
	}
	if s.Database.Driver == "" {
		s.Database.Driver = defaultDatabaseDriver
	}
	if s.Database.DSN == "" {
		s.Database.DSN = defaultDatabaseDSN
	}
	if s.Monitoring.Concurrency == 0 {
		s.Monitoring.Concurrency = defaultConcurrency
	}
	if s.Analysis.SizeNormalizer == 0 {
		s.Analysis.SizeNormalizer = defaultSizeNormalizer
	}
	if len(s.Analysis.BreakingPatterns) == 0 {
		s.Analysis.BreakingPatterns = DefaultBreakingPatterns()
	}
	s.Pipeline.applyDefaults()
}

func (p *PipelineSettings) applyDefaults() {
	if p.TestCoverageThreshold == 0 {
		p.TestCoverageThreshold = defaultCoverageThreshold
	}
	if p.PerformanceRegressionThreshold == 0 {
		p.PerformanceRegressionThreshold = defaultRegressionThreshold
	}
	if p.HealthCheckRetries == 0 {
		p.HealthCheckRetries = defaultHealthCheckRetries
	}
	if p.RollbackTimeout == 0 {
		p.RollbackTimeout = defaultRollbackTimeout
	}
	if len(p.RollbackKeywords) == 0 {
		p.RollbackKeywords = DefaultRollbackKeywords()
	}
	if p.BaseBranch == "" {
		p.BaseBranch = defaultBaseBranch
	}
	if p.BranchPrefix == "" {
		p.BranchPrefix = defaultBranchPrefix
	}
}

// DefaultPipelineSettings returns pipeline settings with every default applied.
func DefaultPipelineSettings() PipelineSettings {
	var p PipelineSettings
	p.applyDefaults()
	return p
}

// FindConfigFile searches for a configuration file in standard locations.
// Returns the path to the first file found or an error if none is found.
func FindConfigFile() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = ""
	}

	locations := []string{
		".",
		".config",
		"configs",
	}
	if homeDir != "" {
		locations = append(
			locations,
			homeDir,
			filepath.Join(homeDir, ".config"),
		)
	}

	patterns := []string{
		".portetrack.yaml",
		".portetrack.yml",
		"portetrack.yaml",
		"portetrack.yml",
	}

	for _, loc := range locations {
		for _, pat := range patterns {
			p := filepath.Join(loc, pat)
			if _, statErr := os.Stat(p); statErr == nil {
				return p, nil
			}
		}
	}

	return "", &ConfigurationError{Err: errors.New("config file not found in default locations")}
}

// resolveToken expands environment variable references (${VAR}) and, if the
// resulting string is a path to an existing file, reads the value from the file.
func resolveToken(raw string) string {
	if raw == "" {
		return raw
	}

	resolved := expandEnv(raw)
	if info, statErr := os.Stat(resolved); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(resolved)
		if readErr != nil {
			logger.Warnf("Failed to read secret file %q: %v", resolved, readErr)
			return resolved
		}
		logger.Debugf("Read secret from file %q", resolved)
		return strings.TrimSpace(string(data))
	}

	return resolved
}

// expandEnv replaces ${VAR} references with their environment values.
func expandEnv(raw string) string {
	return envVarPattern.ReplaceAllStringFunc(raw, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		if val := os.Getenv(varName); val != "" {
			return val
		}
		logger.Warnf("Environment variable %q is not set", varName)
		return ""
	})
}

// validateSettings checks struct constraints and cross-field rules.
func validateSettings(settings *Settings) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(settings); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			first := fieldErrs[0]
			return fmt.Errorf("invalid value for %s (rule %q)", first.Namespace(), first.Tag())
		}
		return err
	}

	seen := make(map[string]string, len(settings.Portes))
	for name, porte := range settings.Portes {
		if other, ok := seen[porte.ComponentName]; ok {
			return fmt.Errorf("portes %q and %q track the same component %q", other, name, porte.ComponentName)
		}
		seen[porte.ComponentName] = name
	}

	for _, pattern := range settings.Analysis.BreakingPatterns {
		if _, err := regexp.Compile("(?i)" + pattern); err != nil {
			return fmt.Errorf("invalid breaking pattern %q: %w", pattern, err)
		}
	}
	for key, pattern := range settings.Pipeline.MetricPatterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("invalid metric pattern for %q: %w", key, err)
		}
	}
	return nil
}

package steps

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"sort"
	"strconv"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/evaluation"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
)

// RollbackCommand is the key of the rollback command in pipeline.commands.
const RollbackCommand = "rollback"

const maxOutputInError = 2048

// DefaultMetricPatterns extract the gate metrics from command output. The
// first capture group is the value; the last match in the output wins.
func DefaultMetricPatterns() map[string]string {
	return map[string]string{
		entities.MetricCoverage:                `(?i)coverage[:\s]+([0-9]+(?:\.[0-9]+)?)\s*%`,
		entities.MetricCriticalVulnerabilities: `(?i)\bcritical[:\s]+([0-9]+)`,
		entities.MetricHighVulnerabilities:     `(?i)\bhigh[:\s]+([0-9]+)`,
		entities.MetricPerformanceRegression:   `(?i)regression[:\s]+(-?[0-9]+(?:\.[0-9]+)?)\s*%`,
	}
}

// commandSteps are the step types that may be backed by a shell command.
var commandSteps = map[string]bool{
	pipeline.StepApplyChanges:        true,
	pipeline.StepRunUnitTests:        true,
	pipeline.StepSecurityScan:        true,
	pipeline.StepPerformanceCheck:    true,
	pipeline.StepRunIntegrationTests: true,
	pipeline.StepDeploy:              true,
	pipeline.StepHealthCheck:         true,
}

// CommandStepRepository runs the configured shell command of a step with
// bash, in the porte workspace, and reads metrics out of its output.
type CommandStepRepository struct {
	commands map[string]string
	patterns map[string]*regexp.Regexp
}

// NewCommandStepRepository compiles the metric patterns; configured patterns
// override the defaults key by key.
func NewCommandStepRepository(settings entities.PipelineSettings) (*CommandStepRepository, error) {
	raw := DefaultMetricPatterns()
	for key, pattern := range settings.MetricPatterns {
		raw[key] = pattern
	}
	patterns := make(map[string]*regexp.Regexp, len(raw))
	for key, pattern := range raw {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid metric pattern for %q: %w", key, err)
		}
		patterns[key] = re
	}

	commands := make(map[string]string, len(settings.Commands))
	for step, command := range settings.Commands {
		if strings.TrimSpace(command) != "" {
			commands[step] = command
		}
	}
	return &CommandStepRepository{commands: commands, patterns: patterns}, nil
}

// StepTypes returns only the steps with a configured command, so that the
// others are reported as skipped (or fail their gate) by the pipeline.
func (it *CommandStepRepository) StepTypes() []string {
	var types []string
	for step := range it.commands {
		if commandSteps[step] {
			types = append(types, step)
		}
	}
	sort.Strings(types)
	return types
}

func (it *CommandStepRepository) Execute(ctx context.Context, sc entities.StepContext) (entities.StepOutput, error) {
	command, ok := it.commands[sc.StepType]
	if !ok {
		return skipped("no command configured"), nil
	}
	if sc.DryRun {
		return entities.StepOutput{Result: map[string]any{"command": command, "dry_run": true}}, nil
	}

	output, err := it.run(ctx, sc, command)
	if err != nil {
		return entities.StepOutput{}, err
	}
	return entities.StepOutput{
		Result:  map[string]any{"command": command},
		Metrics: it.ExtractMetrics(output),
	}, nil
}

// HasRollback reports whether a rollback command is configured.
func (it *CommandStepRepository) HasRollback() bool {
	_, ok := it.commands[RollbackCommand]
	return ok
}

// RunRollback runs the rollback command, if any.
func (it *CommandStepRepository) RunRollback(ctx context.Context, sc entities.StepContext) error {
	command, ok := it.commands[RollbackCommand]
	if !ok {
		return nil
	}
	_, err := it.run(ctx, sc, command)
	return err
}

func (it *CommandStepRepository) run(ctx context.Context, sc entities.StepContext, command string) (string, error) {
	cmd := exec.CommandContext(ctx, "bash", "-c", command)
	if sc.Porte.Workspace != "" {
		cmd.Dir = sc.Porte.Workspace
	}
	cmd.Env = append(os.Environ(), CommandEnv(sc)...)

	logger.Debugf("[command] %s: %s", sc.StepType, command)
	raw, err := cmd.CombinedOutput()
	output := string(raw)
	logger.Tracef("[command] %s output:\n%s", sc.StepType, output)
	if err != nil {
		return output, fmt.Errorf("%s command failed: %w\nOutput:\n%s", sc.StepType, err, tail(output, maxOutputInError))
	}
	return output, nil
}

// ExtractMetrics applies every metric pattern to the output.
func (it *CommandStepRepository) ExtractMetrics(output string) map[string]float64 {
	metrics := map[string]float64{}
	for key, re := range it.patterns {
		matches := re.FindAllStringSubmatch(output, -1)
		if len(matches) == 0 || len(matches[len(matches)-1]) < 2 {
			continue
		}
		value, err := strconv.ParseFloat(matches[len(matches)-1][1], 64)
		if err != nil {
			continue
		}
		metrics[key] = value
	}
	return metrics
}

// CommandEnv exposes the upgrade to the command through PORTETRACK_* variables.
func CommandEnv(sc entities.StepContext) []string {
	env := []string{
		"PORTETRACK_COMPONENT=" + sc.Porte.ComponentName,
		"PORTETRACK_UPSTREAM_REPO=" + sc.Porte.UpstreamRepo,
		"PORTETRACK_EXECUTION_ID=" + sc.ExecutionID,
		"PORTETRACK_STAGE=" + sc.Stage,
		"PORTETRACK_STEP=" + sc.StepType,
		"PORTETRACK_BRANCH=" + sc.BranchName,
		"PORTETRACK_BASE_BRANCH=" + sc.BaseBranch,
	}
	if ev := sc.Evaluation; ev != nil {
		env = append(env,
			"PORTETRACK_EVALUATION_ID="+ev.ID,
			"PORTETRACK_FROM_VERSION="+evaluation.PortedVersion(ev.CurrentVersion),
			"PORTETRACK_TO_VERSION="+evaluation.PortedVersion(ev.UpstreamVersion),
			"PORTETRACK_UPSTREAM_TAG="+ev.UpstreamVersion,
		)
	}
	return env
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

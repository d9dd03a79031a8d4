package steps

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	logger "github.com/sirupsen/logrus"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
	"github.com/rios0rios0/portetrack/internal/domain/evaluation"
	"github.com/rios0rios0/portetrack/internal/domain/pipeline"
)

const (
	defaultAuthorName  = "portetrack"
	defaultAuthorEmail = "portetrack@localhost"
	backupTagPrefix    = "backup/"
	shortIDLength      = 8
)

// GitStepRepository works on the local checkout of the porte: it tags a
// backup, creates the upgrade branch and commits the applied changes.
type GitStepRepository struct {
	now func() time.Time
}

// NewGitStepRepository creates the git workspace steps.
func NewGitStepRepository() *GitStepRepository {
	return &GitStepRepository{now: time.Now}
}

func (it *GitStepRepository) StepTypes() []string {
	return []string{pipeline.StepCreateBackup, pipeline.StepCreateBranch, pipeline.StepCommitChanges}
}

func (it *GitStepRepository) Execute(ctx context.Context, sc entities.StepContext) (entities.StepOutput, error) {
	if sc.Porte.Workspace == "" {
		return skipped("no workspace configured"), nil
	}
	if err := ctx.Err(); err != nil {
		return entities.StepOutput{}, err
	}

	repo, err := git.PlainOpen(sc.Porte.Workspace)
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to open workspace %s: %w", sc.Porte.Workspace, err)
	}

	switch sc.StepType {
	case pipeline.StepCreateBackup:
		return it.createBackup(repo, sc)
	case pipeline.StepCreateBranch:
		return it.createBranch(repo, sc)
	case pipeline.StepCommitChanges:
		return it.commitChanges(repo, sc)
	default:
		return entities.StepOutput{}, fmt.Errorf("unsupported git step %q", sc.StepType)
	}
}

func (it *GitStepRepository) createBackup(repo *git.Repository, sc entities.StepContext) (entities.StepOutput, error) {
	head, err := repo.Head()
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to resolve HEAD: %w", err)
	}

	tag := BackupTagName(sc)
	result := map[string]any{"tag": tag, "commit": head.Hash().String()}
	if sc.DryRun {
		result["dry_run"] = true
		return entities.StepOutput{Result: result}, nil
	}

	if _, err = repo.CreateTag(tag, head.Hash(), nil); err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to create backup tag %s: %w", tag, err)
	}
	logger.Debugf("[git] Backup tag %s at %s", tag, head.Hash())
	return entities.StepOutput{Result: result}, nil
}

func (it *GitStepRepository) createBranch(repo *git.Repository, sc entities.StepContext) (entities.StepOutput, error) {
	branch := plumbing.NewBranchReferenceName(sc.BranchName)
	result := map[string]any{"branch": sc.BranchName}

	_, refErr := repo.Reference(branch, true)
	exists := refErr == nil
	if refErr != nil && !errors.Is(refErr, plumbing.ErrReferenceNotFound) {
		return entities.StepOutput{}, fmt.Errorf("failed to look up branch %s: %w", sc.BranchName, refErr)
	}
	result["existed"] = exists

	if sc.DryRun {
		result["dry_run"] = true
		return entities.StepOutput{Result: result}, nil
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to open worktree: %w", err)
	}
	if err = worktree.Checkout(&git.CheckoutOptions{Branch: branch, Create: !exists, Keep: true}); err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to check out %s: %w", sc.BranchName, err)
	}
	logger.Infof("[git] Checked out %s in %s", sc.BranchName, sc.Porte.Workspace)
	return entities.StepOutput{Result: result}, nil
}

func (it *GitStepRepository) commitChanges(repo *git.Repository, sc entities.StepContext) (entities.StepOutput, error) {
	worktree, err := repo.Worktree()
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to open worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to read worktree status: %w", err)
	}
	if status.IsClean() {
		return entities.StepOutput{Result: map[string]any{"changes": false}}, nil
	}

	message := CommitMessage(sc)
	if sc.DryRun {
		return entities.StepOutput{Result: map[string]any{
			"changes": true, "message": message, "dry_run": true,
		}}, nil
	}

	if err = worktree.AddWithOptions(&git.AddOptions{All: true}); err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to stage changes: %w", err)
	}
	name, email := ParseAuthor(sc.Porte.Author)
	hash, err := worktree.Commit(message, &git.CommitOptions{
		Author: &object.Signature{Name: name, Email: email, When: it.now()},
	})
	if err != nil {
		return entities.StepOutput{}, fmt.Errorf("failed to commit: %w", err)
	}
	logger.Infof("[git] Committed %s on %s", hash.String()[:shortIDLength], sc.BranchName)
	return entities.StepOutput{Result: map[string]any{
		"changes": true, "message": message, "commit": hash.String(),
	}}, nil
}

// DeleteBranch checks out the base branch, discarding local changes, and
// removes the upgrade branch. A branch that does not exist is not an error.
func (it *GitStepRepository) DeleteBranch(ctx context.Context, sc entities.StepContext) error {
	if sc.Porte.Workspace == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	repo, err := git.PlainOpen(sc.Porte.Workspace)
	if err != nil {
		return fmt.Errorf("failed to open workspace %s: %w", sc.Porte.Workspace, err)
	}
	worktree, err := repo.Worktree()
	if err != nil {
		return fmt.Errorf("failed to open worktree: %w", err)
	}

	base := plumbing.NewBranchReferenceName(sc.BaseBranch)
	if err = worktree.Checkout(&git.CheckoutOptions{Branch: base, Force: true}); err != nil {
		return fmt.Errorf("failed to check out %s: %w", sc.BaseBranch, err)
	}

	branch := plumbing.NewBranchReferenceName(sc.BranchName)
	if _, err = repo.Reference(branch, true); errors.Is(err, plumbing.ErrReferenceNotFound) {
		return nil
	}
	if err = repo.Storer.RemoveReference(branch); err != nil {
		return fmt.Errorf("failed to delete branch %s: %w", sc.BranchName, err)
	}
	logger.Infof("[git] Deleted branch %s", sc.BranchName)
	return nil
}

// BackupTagName is the lightweight tag marking the commit the pipeline started from.
func BackupTagName(sc entities.StepContext) string {
	id := sc.ExecutionID
	if len(id) > shortIDLength {
		id = id[:shortIDLength]
	}
	return backupTagPrefix + sc.Porte.ComponentName + "-" + id
}

// CommitMessage describes the upgrade in conventional-commit form.
func CommitMessage(sc entities.StepContext) string {
	ev := sc.Evaluation
	if ev == nil {
		return "chore(porte): upgrade " + sc.Porte.ComponentName
	}
	return fmt.Sprintf("chore(porte): upgrade `%s` to upstream `%s`",
		ev.ComponentName, evaluation.PortedVersion(ev.UpstreamVersion))
}

// ParseAuthor splits "Name <email>" into its parts, falling back to the
// tool identity for whatever is missing.
func ParseAuthor(author string) (string, string) {
	author = strings.TrimSpace(author)
	if author == "" {
		return defaultAuthorName, defaultAuthorEmail
	}
	name, rest, found := strings.Cut(author, "<")
	if !found {
		return author, defaultAuthorEmail
	}
	name = strings.TrimSpace(name)
	email := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(rest), ">"))
	if name == "" {
		name = defaultAuthorName
	}
	if email == "" {
		email = defaultAuthorEmail
	}
	return name, email
}

func skipped(reason string) entities.StepOutput {
	return entities.StepOutput{Result: map[string]any{"reason": reason}, Skipped: true}
}

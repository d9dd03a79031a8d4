package pipeline

import (
	"strings"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

// ShouldRollback reports whether a failure qualifies for automatic rollback:
// any failure of the deployment stage, or an error message containing one of
// the keywords (case-insensitive).
func ShouldRollback(stage string, failure error, keywords []string) bool {
	if failure == nil {
		return false
	}
	if stage == entities.StageDeployment {
		return true
	}
	message := strings.ToLower(failure.Error())
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(message, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

package pipeline

import (
	"fmt"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

func completedAlert(execution *entities.PipelineExecution, prURL string) entities.Alert {
	alert := entities.Alert{
		Type:     entities.AlertPipelineCompleted,
		Title:    fmt.Sprintf("%s upgraded to %s", execution.ComponentName, execution.ToVersion),
		Subtitle: "Implementation pipeline completed",
		Urgency:  entities.UrgencyNormal,
	}
	alert.AddField("Component", execution.ComponentName).
		AddField("From", execution.FromVersion).
		AddField("To", execution.ToVersion).
		AddField("Execution", execution.ID)
	if prURL != "" {
		alert.Actions = append(alert.Actions, entities.AlertAction{Name: "View pull request", URL: prURL})
	}
	return alert
}

func failedAlert(execution *entities.PipelineExecution, failure error) entities.Alert {
	alert := entities.Alert{
		Type:     entities.AlertPipelineFailed,
		Title:    fmt.Sprintf("Upgrade of %s to %s failed", execution.ComponentName, execution.ToVersion),
		Subtitle: string(execution.Status),
		Urgency:  entities.UrgencyMedium,
	}
	alert.AddField("Component", execution.ComponentName).
		AddField("Execution", execution.ID).
		AddField("Error", failure.Error())
	if execution.Rollback != nil && execution.Rollback.Attempted {
		alert.AddField("Rollback", fmt.Sprintf("succeeded=%t", execution.Rollback.Succeeded))
	}
	return alert
}

func rollbackFailedAlert(execution *entities.PipelineExecution, failure error) entities.Alert {
	alert := entities.Alert{
		Type:     entities.AlertRollbackFailed,
		Title:    fmt.Sprintf("Rollback of %s failed: manual intervention required", execution.ComponentName),
		Subtitle: fmt.Sprintf("%s -> %s", execution.FromVersion, execution.ToVersion),
		Urgency:  entities.UrgencyHigh,
	}
	alert.AddField("Execution", execution.ID).AddField("Error", failure.Error())
	return alert
}

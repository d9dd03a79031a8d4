package commands

import (
	"fmt"
	"strings"
	"time"

	"github.com/rios0rios0/portetrack/internal/domain/entities"
)

func nowUTC() time.Time {
	return time.Now().UTC()
}

// newVersionAlert reports a decided evaluation. Security patches are escalated.
func newVersionAlert(ev *entities.VersionEvaluation, release entities.Release) entities.Alert {
	alert := entities.Alert{
		Type:     entities.AlertNewVersion,
		Title:    fmt.Sprintf("%s %s is available", ev.ComponentName, ev.UpstreamVersion),
		Subtitle: string(ev.Decision),
		Urgency:  entities.UrgencyNormal,
	}
	if ev.Decision == entities.DecisionSecurityPatch {
		alert.Type = entities.AlertSecurityPatch
		alert.Urgency = entities.UrgencyHigh
	}

	alert.AddField("Component", ev.ComponentName).
		AddField("Current", ev.CurrentVersion).
		AddField("Upstream", ev.UpstreamVersion).
		AddField("Decision", string(ev.Decision)).
		AddField("Reason", ev.DecisionReason)
	if ev.RiskAssessment != nil {
		alert.AddField("Risk", fmt.Sprintf("%.2f", ev.RiskAssessment.TotalRisk))
		if len(ev.RiskAssessment.Flags) > 0 {
			alert.AddField("Flags", strings.Join(ev.RiskAssessment.Flags, ", "))
		}
	}
	alert.AddField("Evaluation", ev.ID)
	if release.URL != "" {
		alert.Actions = append(alert.Actions, entities.AlertAction{Name: "Release notes", URL: release.URL})
	}
	return alert
}

func securityAlert(porte entities.PorteSettings, current string, adv entities.Advisory) entities.Alert {
	alert := entities.Alert{
		Type:     entities.AlertSecurityAlert,
		Title:    fmt.Sprintf("%s %s is affected by %s", porte.ComponentName, current, adv.ID),
		Subtitle: adv.Summary,
		Urgency:  entities.UrgencyHigh,
	}
	alert.AddField("Component", porte.ComponentName).
		AddField("Version", current).
		AddField("Severity", adv.Severity).
		AddField("Vulnerable", strings.Join(adv.VulnerableRanges, "; "))
	if len(adv.PatchedVersions) > 0 {
		alert.AddField("Patched", strings.Join(adv.PatchedVersions, ", "))
	}
	if adv.URL != "" {
		alert.Actions = append(alert.Actions, entities.AlertAction{Name: "Advisory", URL: adv.URL})
	}
	return alert
}

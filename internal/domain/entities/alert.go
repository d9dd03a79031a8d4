package entities

// Urgency controls which channel an alert is escalated to.
type Urgency string

const (
	UrgencyNormal Urgency = "NORMAL"
	UrgencyMedium Urgency = "MEDIUM"
	UrgencyHigh   Urgency = "HIGH"
)

// AlertType names the event an alert reports.
type AlertType string

const (
	AlertNewVersion        AlertType = "new_version"
	AlertSecurityPatch     AlertType = "security_patch"
	AlertSecurityAlert     AlertType = "security_alert"
	AlertPipelineCompleted AlertType = "pipeline_completed"
	AlertPipelineFailed    AlertType = "pipeline_failed"
	AlertRollbackFailed    AlertType = "rollback_failed"
)

// AlertField is one key/value line of an alert.
type AlertField struct {
	Title string `json:"title"`
	Value string `json:"value"`
}

// AlertAction is a link offered with an alert.
type AlertAction struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Alert is the payload handed to notification sinks.
type Alert struct {
	Type     AlertType     `json:"type"`
	Title    string        `json:"title"`
	Subtitle string        `json:"subtitle,omitempty"`
	Urgency  Urgency       `json:"urgency"`
	Fields   []AlertField  `json:"fields"`
	Actions  []AlertAction `json:"actions,omitempty"`
}

// AddField appends a field and returns the alert for chaining.
func (a *Alert) AddField(title, value string) *Alert {
	a.Fields = append(a.Fields, AlertField{Title: title, Value: value})
	return a
}

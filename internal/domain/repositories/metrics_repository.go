package repositories

import "time"

// MetricsRepository records run and pipeline metrics.
type MetricsRepository interface {
	ObserveComponent(outcome string)
	ObserveDecision(decision string)
	ObservePipeline(status string)
	ObserveStage(stage, status string, duration time.Duration)

	// WriteTextfile dumps every metric in the text exposition format.
	WriteTextfile(path string) error
}

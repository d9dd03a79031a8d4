// Package transport builds the HTTP clients shared by the GitHub and webhook
// repositories.
package transport

import (
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	logger "github.com/sirupsen/logrus"
)

const (
	retryWaitMin = 500 * time.Millisecond
	retryWaitMax = 10 * time.Second
)

// NewRetryClient returns a retrying client; retries is the number of retries
// after the first attempt.
func NewRetryClient(retries int, timeout time.Duration) *retryablehttp.Client {
	client := retryablehttp.NewClient()
	client.RetryMax = retries
	client.RetryWaitMin = retryWaitMin
	client.RetryWaitMax = retryWaitMax
	client.HTTPClient.Timeout = timeout
	client.Logger = &leveledLogger{}
	return client
}

// NewStandardClient is NewRetryClient exposed as a plain *http.Client.
func NewStandardClient(retries int, timeout time.Duration) *http.Client {
	return NewRetryClient(retries, timeout).StandardClient()
}

// leveledLogger routes retryablehttp logs to logrus, one level down.
type leveledLogger struct{}

func (l *leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Warn("[http] " + msg)
}

func (l *leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Debug("[http] " + msg)
}

func (l *leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Trace("[http] " + msg)
}

func (l *leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	logger.WithFields(fields(keysAndValues)).Warn("[http] " + msg)
}

func fields(keysAndValues []interface{}) logger.Fields {
	out := logger.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			out[key] = keysAndValues[i+1]
		}
	}
	return out
}

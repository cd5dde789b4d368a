package services

import (
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/genify/internal/shared"
	"github.com/hashicorp/go-retryablehttp"
)

// newRetryClient returns the base HTTP client used for both token and API requests.
//
// Exhausted retries hand the last response back untouched so the Spotify client can decode the error body.
func newRetryClient(cfg shared.SpotifyAPIConfig, logger *log.Logger) *http.Client {
	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.MaxRetries
	rc.Logger = retryLogger{logger}
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	if t := cfg.Timeout(); t > 0 {
		rc.HTTPClient.Timeout = t
	}
	return rc.StandardClient()
}

// retryLogger adapts [log.Logger] to [retryablehttp.LeveledLogger].
//
// Per-request chatter is demoted to debug.
type retryLogger struct {
	l *log.Logger
}

var _ retryablehttp.LeveledLogger = retryLogger{}

func (r retryLogger) Error(msg string, kv ...any) { r.l.Error(msg, kv...) }
func (r retryLogger) Warn(msg string, kv ...any)  { r.l.Warn(msg, kv...) }
func (r retryLogger) Info(msg string, kv ...any)  { r.l.Debug(msg, kv...) }
func (r retryLogger) Debug(msg string, kv ...any) { r.l.Debug(msg, kv...) }

package trigger

import (
	"net/url"

	"go.uber.org/zap"

	"github.com/hanjob/resume-api/pkg/httpclient"
	"github.com/hanjob/resume-api/pkg/logger"
)

// CallAsync notifies triggerURL that recordID changed by issuing a GET to
// triggerURL with the escaped id appended. Failures are logged and never
// reach the caller. The returned channel is closed once the call finished;
// it is closed immediately when no URL is configured.
func CallAsync(triggerURL, recordID string, httpClient httpclient.Client) <-chan struct{} {
	done := make(chan struct{})
	if triggerURL == "" {
		close(done)
		return done
	}

	go func() {
		defer close(done)
		targetURL := triggerURL + url.QueryEscape(recordID)

		logger.Info("Calling trigger URL",
			zap.String("url", targetURL),
			zap.String("record_id", recordID))

		resp, err := httpClient.Get(targetURL)
		if err != nil {
			logger.Error("Failed to call trigger URL",
				zap.Error(err),
				zap.String("url", targetURL),
				zap.String("record_id", recordID))
			return
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			logger.Info("Trigger URL called successfully",
				zap.String("record_id", recordID),
				zap.Int("status_code", resp.StatusCode))
		} else {
			logger.Warn("Trigger URL returned non-success status",
				zap.String("url", targetURL),
				zap.String("record_id", recordID),
				zap.Int("status_code", resp.StatusCode))
		}
	}()
	return done
}

package vision

import (
	azlog "github.com/Azure/azure-sdk-for-go/sdk/azcore/log"
	"github.com/sirupsen/logrus"
)

// ForwardSDKLogs routes Azure SDK pipeline events to logger at debug level.
// The SDK listener is process-wide.
func ForwardSDKLogs(logger *logrus.Logger) {
	azlog.SetEvents(azlog.EventRequest, azlog.EventResponse, azlog.EventResponseError, azlog.EventRetryPolicy)
	azlog.SetListener(func(event azlog.Event, msg string) {
		logger.WithFields(logrus.Fields{
			"component": "azure_sdk",
			"event":     string(event),
		}).Debug(msg)
	})
}

// file: websocket/metrics.go
package websocket

import (
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"

	"go-type-race/logger"
)

// Namespace for all TypeRace metrics
var metricsNamespace = "TypeRace"

// Metrics are opt-in so local runs and unit tests never talk to AWS.
var metricsEnabled = os.Getenv("CLOUDWATCH_METRICS") == "on"

// Reuse a single CloudWatch client for all metrics calls, created on first use.
var (
	cwClient *cloudwatch.CloudWatch
	cwOnce   sync.Once
)

// PublishConnectionCount pushes the current WebSocket connection count.
func PublishConnectionCount(count int) {
	putMetric("Connections", float64(count), "Count", nil)
}

// PublishRaceDuration pushes the elapsed time of the slowest finisher once a
// round completes, dimensioned by room.
func PublishRaceDuration(ms float64, roomID string) {
	putMetric("RaceDurationMs", ms, "Milliseconds", &cloudwatch.Dimension{
		Name:  aws.String("RoomId"),
		Value: aws.String(roomID),
	})
}

// PublishBroadcastBacklog pushes a gauge for a send-buffer depth whenever a
// broadcast message has to be dropped.
func PublishBroadcastBacklog(depth int) {
	putMetric("BroadcastQueueDepth", float64(depth), "Count", nil)
}

// -----------------------------------------------------------
// internal helper function to package up CloudWatch calls
// -----------------------------------------------------------
func putMetric(metricName string, value float64, unit string, dim *cloudwatch.Dimension) {
	if !metricsEnabled {
		return
	}
	cwOnce.Do(func() {
		cwClient = cloudwatch.New(session.Must(session.NewSession()))
	})

	datum := &cloudwatch.MetricDatum{
		MetricName: aws.String(metricName),
		Timestamp:  aws.Time(time.Now()),
		Value:      aws.Float64(value),
		Unit:       aws.String(unit),
	}
	if dim != nil {
		datum.Dimensions = []*cloudwatch.Dimension{dim}
	}

	_, err := cwClient.PutMetricData(&cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(metricsNamespace),
		MetricData: []*cloudwatch.MetricDatum{datum},
	})
	if err != nil {
		logger.Error.Printf("[putMetric] CloudWatch metric failed (%s): %v", metricName, err)
	}
}

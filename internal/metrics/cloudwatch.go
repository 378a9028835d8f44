package metrics

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

const (
	namespace         = "ReSonata/API"
	cloudwatchTimeout = 5 * time.Second
)

// Client sends custom metrics to CloudWatch. Every Record call is
// fire-and-forget; a disabled client drops everything.
type Client struct {
	client      *cloudwatch.Client
	enabled     bool
	environment string
}

// NewClient creates a CloudWatch client; it only sends data in production with enabled set
func NewClient(ctx context.Context, environment string, enabled bool) (*Client, error) {
	if environment != "production" || !enabled {
		log.Printf("📊 CloudWatch Metrics: DISABLED (environment: %s)", environment)
		return &Client{environment: environment}, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		log.Printf("⚠️  Failed to load AWS config for CloudWatch: %v", err)
		return &Client{environment: environment}, nil
	}

	log.Printf("📊 CloudWatch Metrics: ✅ ENABLED (namespace: %s)", namespace)
	return &Client{
		client:      cloudwatch.NewFromConfig(cfg),
		enabled:     true,
		environment: environment,
	}, nil
}

// RecordAPIRequest counts the request (or the error) and its latency per endpoint
func (m *Client) RecordAPIRequest(endpoint string, statusCode int, duration time.Duration) {
	name := "APIRequests"
	if statusCode >= 500 {
		name = "APIErrors"
	}
	dims := m.dimensions("Endpoint", endpoint)
	m.send(
		datum(name, 1, types.StandardUnitCount, dims),
		datum("APILatency", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims),
	)
}

// RecordTokenUsage records guidance token usage per model
func (m *Client) RecordTokenUsage(model string, inputTokens, outputTokens int64) {
	dims := m.dimensions("Model", model)
	m.send(
		datum("GuidanceTokens/Input", float64(inputTokens), types.StandardUnitCount, dims),
		datum("GuidanceTokens/Output", float64(outputTokens), types.StandardUnitCount, dims),
	)
}

// RecordGenerationDuration records how long a composition took
func (m *Client) RecordGenerationDuration(duration time.Duration, planSource string, success bool) {
	dims := append(m.dimensions("Success", strconv.FormatBool(success)), dimension("PlanSource", planSource))
	m.send(datum("GenerationDuration", float64(duration.Milliseconds()), types.StandardUnitMilliseconds, dims))
}

// RecordCount records one occurrence of a pipeline event (cache hit, fallback)
func (m *Client) RecordCount(metricName, reason string) {
	m.send(datum(metricName, 1, types.StandardUnitCount, m.dimensions("Reason", reason)))
}

func (m *Client) dimensions(name, value string) []types.Dimension {
	return []types.Dimension{dimension(name, value), dimension("Environment", m.environment)}
}

func dimension(name, value string) types.Dimension {
	return types.Dimension{Name: aws.String(name), Value: aws.String(value)}
}

func datum(name string, value float64, unit types.StandardUnit, dims []types.Dimension) types.MetricDatum {
	return types.MetricDatum{
		MetricName: aws.String(name),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(time.Now()),
		Dimensions: dims,
	}
}

// send puts the datums in one PutMetricData call off the request path
func (m *Client) send(data ...types.MetricDatum) {
	if m == nil || !m.enabled {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cloudwatchTimeout)
		defer cancel()
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(namespace),
			MetricData: data,
		})
		if err != nil {
			log.Printf("Failed to record %s metric: %v", aws.ToString(data[0].MetricName), err)
		}
	}()
}

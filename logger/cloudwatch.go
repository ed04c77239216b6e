package logger

import (
	"context"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

var (
	cwClient    *cloudwatch.Client
	cwNamespace = "PairDiscovery"
)

// InitCloudWatch loads the default AWS config and creates a CloudWatch
// client. Failures are logged as warnings and leave metric publishing
// disabled; this is a best-effort ambient integration, never a hard
// dependency of the pipeline.
func InitCloudWatch(region, namespace string) {
	log := GetLogger().WithComponent("cloudwatch")

	if region == "" {
		region = os.Getenv("AWS_REGION")
	}

	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	cfg, err := config.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS configuration; CloudWatch metrics disabled")
		return
	}

	cwClient = cloudwatch.NewFromConfig(cfg)
	if namespace != "" {
		cwNamespace = namespace
	}
	log.WithFields(Fields{"region": region, "namespace": cwNamespace}).Info("initialized CloudWatch client")
}

// PublishRunMetrics sends one-shot gauges for a completed run: per-source
// fetch success/failure and validation valid/invalid counts.
func PublishRunMetrics(ctx context.Context, perSourceFetchOK map[string]bool, perSourceValidCounts, perSourceInvalidCounts map[string]int) {
	if cwClient == nil {
		return
	}

	var data []cwtypes.MetricDatum
	for source, ok := range perSourceFetchOK {
		v := 0.0
		if ok {
			v = 1.0
		}
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String("FetchSuccess"),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{{Name: aws.String("source"), Value: aws.String(source)}},
			Value:      aws.Float64(v),
		})
	}
	for source, count := range perSourceValidCounts {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String("ValidationValid"),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{{Name: aws.String("source"), Value: aws.String(source)}},
			Value:      aws.Float64(float64(count)),
		})
	}
	for source, count := range perSourceInvalidCounts {
		data = append(data, cwtypes.MetricDatum{
			MetricName: aws.String("ValidationInvalid"),
			Unit:       cwtypes.StandardUnitCount,
			Dimensions: []cwtypes.Dimension{{Name: aws.String("source"), Value: aws.String(source)}},
			Value:      aws.Float64(float64(count)),
		})
	}

	if len(data) == 0 {
		return
	}

	const maxBatch = 20
	log := GetLogger().WithComponent("cloudwatch")
	for i := 0; i < len(data); i += maxBatch {
		end := i + maxBatch
		if end > len(data) {
			end = len(data)
		}
		if _, err := cwClient.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(cwNamespace),
			MetricData: data[i:end],
		}); err != nil {
			log.WithError(err).Warn("failed to publish CloudWatch metrics")
			return
		}
	}
}

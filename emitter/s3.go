package emitter

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appconfig "pairdiscovery/config"
	"pairdiscovery/logger"
)

// mirrorToS3 uploads the given named buffers under cfg.Prefix, best-effort:
// a failure is logged and does not fail the run. The local artifacts remain
// the contract; S3 is an optional mirror using the aws-sdk-go-v2/service/s3
// client.
func mirrorToS3(ctx context.Context, cfg appconfig.S3MirrorConfig, files map[string][]byte) {
	if !cfg.Enabled {
		return
	}
	log := logger.GetLogger().WithComponent("s3_mirror")

	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		log.WithError(err).Warn("failed to load AWS configuration; skipping S3 mirror")
		return
	}

	client := s3.NewFromConfig(awsCfg)
	for name, data := range files {
		key := name
		if cfg.Prefix != "" {
			key = fmt.Sprintf("%s/%s", cfg.Prefix, name)
		}
		_, err := client.PutObject(ctx, &s3.PutObjectInput{
			Bucket: aws.String(cfg.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(data),
		})
		if err != nil {
			log.WithError(err).WithFields(logger.Fields{"key": key}).Warn("failed to mirror artifact to S3")
			continue
		}
		log.WithFields(logger.Fields{"key": key}).Info("mirrored artifact to S3")
	}
}

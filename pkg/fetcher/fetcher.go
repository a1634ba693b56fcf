// Package fetcher polls the fleet cars endpoint on an interval and
// archives each JSON snapshot to S3, named so the capture datetime is
// recoverable from the key downstream.
package fetcher

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
)

const snapshotKeyDatetimeLayout = "20060102_150405"

type Fetcher struct {
	Endpoint  string
	Bucket    string
	KeyPrefix string

	s3Client *s3.S3
}

func NewFetcher(endpoint string, region string, bucket string, keyPrefix string) *Fetcher {
	sess := session.Must(session.NewSession(&aws.Config{
		Region: aws.String(region),
	}))

	return &Fetcher{
		Endpoint:  endpoint,
		Bucket:    bucket,
		KeyPrefix: keyPrefix,
		s3Client:  s3.New(sess),
	}
}

// FetchSnapshot downloads the current fleet state and uploads it as
// <prefix>/cars_<YYYYMMDD_HHMMSS>.json. The upload is retried with
// exponential backoff; a final failure only fails this snapshot.
func (fetcher *Fetcher) FetchSnapshot() error {
	response, err := http.Get(fetcher.Endpoint)
	if err != nil {
		return fmt.Errorf("failed to fetch fleet state: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("fleet endpoint returned %s", response.Status)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return fmt.Errorf("failed to read fleet state: %w", err)
	}

	key := fmt.Sprintf("%s/cars_%s.json", fetcher.KeyPrefix, time.Now().Format(snapshotKeyDatetimeLayout))

	upload := func() error {
		_, err := fetcher.s3Client.PutObject(&s3.PutObjectInput{
			Bucket: aws.String(fetcher.Bucket),
			Key:    aws.String(key),
			Body:   bytes.NewReader(body),
		})

		return err
	}

	err = backoff.Retry(upload, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4))
	if err != nil {
		return fmt.Errorf("failed to upload snapshot: %w", err)
	}

	log.Info().Str("bucket", fetcher.Bucket).Str("key", key).Int("bytes", len(body)).Msg("Uploaded snapshot")

	return nil
}

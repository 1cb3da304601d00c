package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"cellcommdb/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrS3NotConfigured wird geliefert, wenn eine s3://-Quelle ohne S3-Client geöffnet wird.
var ErrS3NotConfigured = errors.New("s3 source requested but no s3 client is configured")

// ObjectGetter ist der Ausschnitt des S3-Clients, den Sources brauchen.
type ObjectGetter interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// Sources öffnet Eingabedateien aus dem lokalen Dateisystem oder aus S3.
type Sources struct {
	S3 ObjectGetter
}

// NewSources erstellt Sources; getter darf nil sein.
func NewSources(getter ObjectGetter) *Sources {
	return &Sources{S3: getter}
}

// SourcesFromConfig verbindet Sources mit dem S3-Endpunkt aus cfg, falls konfiguriert.
func SourcesFromConfig(ctx context.Context, cfg *config.Config) (*Sources, error) {
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}
	if client == nil {
		return NewSources(nil), nil
	}
	return NewSources(client), nil
}

// Open öffnet ref. "s3://bucket/key" wird aus S3 gelesen, alles andere lokal.
func (s *Sources) Open(ctx context.Context, ref string) (io.ReadCloser, error) {
	bucket, key, ok := ParseS3URI(ref)
	if !ok {
		f, err := os.Open(ref)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", ref, err)
		}
		return f, nil
	}
	if s.S3 == nil {
		return nil, fmt.Errorf("%w: %s", ErrS3NotConfigured, ref)
	}
	out, err := s.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", ref, err)
	}
	return out.Body, nil
}

// ParseS3URI zerlegt "s3://bucket/key". ok ist false für alle anderen Referenzen.
func ParseS3URI(ref string) (bucket, key string, ok bool) {
	rest, found := strings.CutPrefix(ref, "s3://")
	if !found {
		return "", "", false
	}
	bucket, key, found = strings.Cut(rest, "/")
	if !found || bucket == "" || key == "" {
		return "", "", false
	}
	return bucket, key, true
}

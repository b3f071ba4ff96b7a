// Package helper wraps Alibaba Cloud OSS for the few objects the API stores.
package helper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

// ErrNotConfigured is returned when the ALI_OSS_* variables are incomplete.
var ErrNotConfigured = errors.New("object storage is not configured")

// ObjectStore is what upload handlers depend on; OSSService implements it.
type ObjectStore interface {
	PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error)
	DeleteObject(ctx context.Context, key string) error
}

type OSSService struct {
	Client     *oss.Client
	Bucket     *oss.Bucket
	Endpoint   string
	BucketName string
	PublicBase string
}

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

// NewOSSServiceFromEnv reads ALI_OSS_ENDPOINT, ALI_OSS_ACCESS_KEY,
// ALI_OSS_SECRET_KEY, ALI_OSS_BUCKET and the optional ALI_OSS_SECURITY_TOKEN
// and ALI_OSS_PUBLIC_BASE.
func NewOSSServiceFromEnv() (*OSSService, error) {
	endpoint := getEnv("ALI_OSS_ENDPOINT")
	ak := getEnv("ALI_OSS_ACCESS_KEY")
	sk := getEnv("ALI_OSS_SECRET_KEY")
	bucketName := getEnv("ALI_OSS_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, ErrNotConfigured
	}

	var opts []oss.ClientOption
	if sts := getEnv("ALI_OSS_SECURITY_TOKEN"); sts != "" {
		opts = append(opts, oss.SecurityToken(sts))
	}
	client, err := oss.New(endpoint, ak, sk, opts...)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}
	bkt, err := client.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return &OSSService{
		Client:     client,
		Bucket:     bkt,
		Endpoint:   endpoint,
		BucketName: bucketName,
		PublicBase: strings.TrimRight(getEnv("ALI_OSS_PUBLIC_BASE"), "/"),
	}, nil
}

var (
	defaultOnce  sync.Once
	defaultStore *OSSService
	defaultErr   error
)

// Default returns the process-wide store built from the environment.
func Default() (ObjectStore, error) {
	defaultOnce.Do(func() {
		defaultStore, defaultErr = NewOSSServiceFromEnv()
		if defaultErr != nil && !errors.Is(defaultErr, ErrNotConfigured) {
			log.Printf("[WARN] OSS init failed: %v", defaultErr)
		}
	})
	if defaultErr != nil {
		return nil, defaultErr
	}
	return defaultStore, nil
}

// PutObject uploads data under key with long-lived public caching and
// returns the object's public URL.
func (s *OSSService) PutObject(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	err := s.Bucket.PutObject(key, bytes.NewReader(data),
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	)
	if err != nil {
		return "", err
	}
	return s.PublicURL(key), nil
}

func (s *OSSService) DeleteObject(ctx context.Context, key string) error {
	return s.Bucket.DeleteObject(key, oss.WithContext(ctx))
}

func (s *OSSService) PublicURL(key string) string {
	if key == "" {
		return ""
	}
	if s.PublicBase != "" {
		return s.PublicBase + "/" + key
	}
	end := strings.TrimPrefix(strings.TrimPrefix(s.Endpoint, "https://"), "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.BucketName, end, key)
}

// KeyFromPublicURL strips scheme and host (or publicBase) from a URL built by PublicURL.
func KeyFromPublicURL(publicURL, publicBase string) (string, error) {
	if publicURL == "" {
		return "", errors.New("empty url")
	}
	if publicBase != "" {
		base := strings.TrimRight(publicBase, "/") + "/"
		if strings.HasPrefix(publicURL, base) {
			return strings.TrimPrefix(publicURL, base), nil
		}
	}
	u := publicURL
	if i := strings.Index(u, "://"); i >= 0 {
		u = u[i+3:]
	}
	if i := strings.Index(u, "/"); i >= 0 && i+1 < len(u) {
		return u[i+1:], nil
	}
	return "", fmt.Errorf("cannot extract key from url: %s", publicURL)
}

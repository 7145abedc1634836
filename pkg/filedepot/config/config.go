// Package config loads server configuration from the environment and
// builds the per-category stores from it.
package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ilyakaznacheev/cleanenv"

	"github.com/filedepot/filedepot/pkg/filedepot"
	fsstorage "github.com/filedepot/filedepot/pkg/filedepot/storage/fs"
	memorystorage "github.com/filedepot/filedepot/pkg/filedepot/storage/memory"
	s3storage "github.com/filedepot/filedepot/pkg/filedepot/storage/s3"
)

// Config represents server configuration for the filedepot service.
type Config struct {
	Port             string `env:"PORT" env-default:"8080"`
	Environment      string `env:"ENVIRONMENT" env-default:"development"`
	DataDir          string `env:"DATA_DIR" env-default:"./data"`
	StorageBackend   string `env:"STORAGE_BACKEND" env-default:"fs"`
	SnapshotCompress bool   `env:"SNAPSHOT_COMPRESS" env-default:"false"`

	S3 S3Config
}

// S3Config holds the settings for the optional S3 blob backend.
type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:""`
	Bucket          string `env:"AWS_S3_BUCKET" env-default:""`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:""`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:""`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"false"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
}

// Load reads configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "fs", "memory":
	case "s3":
		if c.S3.Bucket == "" {
			return fmt.Errorf("AWS_S3_BUCKET is required when STORAGE_BACKEND=s3")
		}
	default:
		return fmt.Errorf("unknown storage backend %q (use fs, memory or s3)", c.StorageBackend)
	}
	return nil
}

// BuildStores constructs and opens one store per category. Categories get
// disjoint blob roots (or key prefixes) so their filenames never collide.
func (c *Config) BuildStores(ctx context.Context) (map[filedepot.Category]*filedepot.Store, error) {
	stores := make(map[filedepot.Category]*filedepot.Store)

	for _, category := range filedepot.Categories() {
		blobs, err := c.buildBlobStore(category)
		if err != nil {
			return nil, fmt.Errorf("building %s blob store: %w", category, err)
		}

		snapshot := filedepot.NewSnapshotFile(
			filepath.Join(c.DataDir, string(category), "index.json"),
			filedepot.WithCompression(c.SnapshotCompress),
		)

		store, err := filedepot.New(category,
			filedepot.WithBlobStore(blobs),
			filedepot.WithSnapshot(snapshot),
		)
		if err != nil {
			return nil, fmt.Errorf("building %s store: %w", category, err)
		}
		if err := store.Open(ctx); err != nil {
			return nil, fmt.Errorf("opening %s store: %w", category, err)
		}

		stores[category] = store
	}

	return stores, nil
}

func (c *Config) buildBlobStore(category filedepot.Category) (filedepot.BlobStore, error) {
	switch c.StorageBackend {
	case "fs":
		return fsstorage.New(fsstorage.Config{
			BaseDir: filepath.Join(c.DataDir, string(category), "blobs"),
		})
	case "memory":
		return memorystorage.New(), nil
	case "s3":
		return s3storage.New(s3storage.Config{
			Region:                 c.S3.Region,
			Bucket:                 c.S3.Bucket,
			AccessKeyID:            c.S3.AccessKeyID,
			SecretAccessKey:        c.S3.SecretAccessKey,
			Endpoint:               c.S3.Endpoint,
			UsePathStyle:           c.S3.UsePathStyle,
			KeyPrefix:              string(category) + "/",
			CreateBucketIfNotExist: c.S3.CreateBucket,
		})
	}
	return nil, fmt.Errorf("unknown storage backend %q", c.StorageBackend)
}

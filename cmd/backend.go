package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"putgetbench/benchmark"
	"putgetbench/config"
	"putgetbench/storage"
)

const (
	backendS3     = "s3"
	backendOCI    = "oci"
	backendMemory = "memory"
)

// newStorage builds the backend selected by fv.backend.
func newStorage(ctx context.Context, fv *flagValues, params benchmark.BenchmarkParams, log *zap.Logger) (storage.Storage, error) {
	if fv.backend == backendMemory {
		log.Info("using in-memory storage", zap.Duration("latency", fv.memoryLatency))
		return storage.NewMemory(fv.memoryLatency), nil
	}

	httpClient, err := storage.NewHTTPClient(params.PutWorkers+params.GetWorkers, 0)
	if err != nil {
		return nil, err
	}

	switch fv.backend {
	case backendS3:
		cfg, err := config.LoadAWSConfig(ctx, config.AWSOptions{
			Region:     fv.region,
			AccessKey:  fv.accessKey,
			SecretKey:  fv.secretKey,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		log.Info("using S3 storage", zap.String("endpoint", params.Endpoint), zap.String("region", cfg.Region))
		return storage.NewS3(cfg, params.Endpoint), nil

	case backendOCI:
		provider, err := config.LoadOCIConfig(fv.ociConfig, fv.ociProfile)
		if err != nil {
			return nil, err
		}
		store, err := storage.NewOCI(ctx, provider, storage.OCIOptions{
			Host:       params.Endpoint,
			Namespace:  fv.ociNamespace,
			HTTPClient: httpClient,
		})
		if err != nil {
			return nil, err
		}
		log.Info("using OCI object storage", zap.String("host", params.Endpoint), zap.String("namespace", store.Namespace()))
		return store, nil
	}

	return nil, &benchmark.ConfigError{Field: "backend", Reason: fmt.Sprintf("unknown backend %q", fv.backend)}
}

package config

import (
	"sync"
)

var (
	storageOnce   sync.Once
	storageConfig *StorageConfig
)

type StorageConfig struct {
	Type string // "minio" or "s3"
}

func GetStorageConfig() *StorageConfig {
	storageOnce.Do(func() {
		loadEnv()

		storageConfig = &StorageConfig{
			Type: getEnv("STORAGE_TYPE", "minio"),
		}
	})
	return storageConfig
}

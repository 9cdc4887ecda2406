package filestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	dErrors "dealdesk/pkg/domain-errors"
)

const keyPrefix = "dealdesk:files:"

// Redis stores blobs in one hash per owning entity: the hash key is derived
// from the owner id, fields are the opaque stored names.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func containerKey(ownerID string) string {
	return keyPrefix + ownerID
}

func (r *Redis) Upload(ctx context.Context, ownerID, storedName string, data []byte) error {
	if err := r.client.HSet(ctx, containerKey(ownerID), storedName, data).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeRemoteStorageSave,
			fmt.Sprintf("upload %s for entity %s", storedName, ownerID))
	}
	return nil
}

func (r *Redis) Download(ctx context.Context, ownerID, storedName string) ([]byte, error) {
	data, err := r.client.HGet(ctx, containerKey(ownerID), storedName).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			exists, existsErr := r.client.Exists(ctx, containerKey(ownerID)).Result()
			if existsErr == nil && exists == 0 {
				return nil, dErrors.New(dErrors.CodeBlobContainerNotFound, "no files stored for entity")
			}
			return nil, dErrors.New(dErrors.CodeNotFound, "stored file not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeRemoteStorageDownload,
			fmt.Sprintf("download %s for entity %s", storedName, ownerID))
	}
	return data, nil
}

func (r *Redis) Delete(ctx context.Context, ownerID, storedName string) error {
	if err := r.client.HDel(ctx, containerKey(ownerID), storedName).Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeRemoteStorageDelete,
			fmt.Sprintf("delete %s for entity %s", storedName, ownerID))
	}
	return nil
}

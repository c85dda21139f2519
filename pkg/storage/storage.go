// Package storage keeps season reports as blobs, in Azure Blob Storage or in
// process memory when no account is configured.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/blockblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/container"

	"github.com/JaimeStill/cliprank/pkg/lifecycle"
)

// System stores small documents by key.
type System interface {
	// Start creates the container during startup and registers readiness.
	Start(lc *lifecycle.Coordinator) error
	// Ready reports whether the backing container is usable.
	Ready() bool

	// Put writes data at key, replacing any existing blob.
	Put(ctx context.Context, key string, data []byte, contentType string) error
	// Get returns the blob at key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Delete removes the blob at key, or returns ErrNotFound.
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	// List returns the keys under prefix in lexical order.
	List(ctx context.Context, prefix string) ([]string, error)
}

type azure struct {
	container *container.Client
	name      string
	logger    *slog.Logger
	ready     atomic.Bool
}

// New parses the connection string and builds the container client. Nothing
// is contacted until Start.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	client, err := container.NewClientFromConnectionString(cfg.ConnectionString, cfg.ContainerName, nil)
	if err != nil {
		return nil, fmt.Errorf("create storage client: %w", err)
	}

	return &azure{
		container: client,
		name:      cfg.ContainerName,
		logger:    logger.With("system", "storage"),
	}, nil
}

func (a *azure) Start(lc *lifecycle.Coordinator) error {
	a.logger.Info("starting storage system", "container", a.name)
	lc.Check("storage", a)

	lc.OnStartup(func() {
		_, err := a.container.Create(lc.Context(), nil)
		if err != nil && !bloberror.HasCode(err, bloberror.ContainerAlreadyExists) {
			a.logger.Error("storage container unavailable", "container", a.name, "error", err)
			return
		}

		a.ready.Store(true)
		a.logger.Info("storage container ready", "container", a.name)
	})

	return nil
}

func (a *azure) Ready() bool {
	return a.ready.Load()
}

func (a *azure) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.container.NewBlockBlobClient(key).UploadBuffer(ctx, data, &blockblob.UploadBufferOptions{
		HTTPHeaders: &blob.HTTPHeaders{BlobContentType: &contentType},
	})
	return wrap("put", key, err)
}

func (a *azure) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	resp, err := a.container.NewBlobClient(key).DownloadStream(ctx, nil)
	if err != nil {
		return nil, wrap("get", key, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read blob %s: %w", key, err)
	}
	return data, nil
}

func (a *azure) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	_, err := a.container.NewBlobClient(key).Delete(ctx, nil)
	return wrap("delete", key, err)
}

func (a *azure) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := a.container.NewBlobClient(key).GetProperties(ctx, nil)
	switch {
	case err == nil:
		return true, nil
	case bloberror.HasCode(err, bloberror.BlobNotFound):
		return false, nil
	default:
		return false, wrap("stat", key, err)
	}
}

func (a *azure) List(ctx context.Context, prefix string) ([]string, error) {
	pager := a.container.NewListBlobsFlatPager(&container.ListBlobsFlatOptions{Prefix: &prefix})

	var keys []string
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list blobs %s: %w", prefix, err)
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				keys = append(keys, *item.Name)
			}
		}
	}

	slices.Sort(keys)
	return keys, nil
}

// wrap maps a missing blob to ErrNotFound and annotates other failures.
func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	if bloberror.HasCode(err, bloberror.BlobNotFound) {
		return ErrNotFound
	}
	return fmt.Errorf("%s blob %s: %w", op, key, err)
}

func validateKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	if strings.Contains(key, "..") {
		return ErrInvalidKey
	}
	return nil
}

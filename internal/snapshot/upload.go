package snapshot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"sync"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/askiada/pipeline-publish/pkg/pipeline/model"
)

// The domain suffix for Azure Blob storage.
const azureBlobHostSuffix = ".blob.core.windows.net"

// ConnectionStringEnv overrides credential based access to the storage account.
const ConnectionStringEnv = "AZURE_STORAGE_CONNECTION_STRING"

// Uploader stores an archive on a datastore and returns its path on the datastore.
type Uploader interface {
	Upload(ctx context.Context, datastore *model.Datastore, archive *Archive) (string, error)
}

// BlobPath is where an archive is stored relative to the datastore container.
func BlobPath(archive *Archive) string {
	return path.Join("snapshots", archive.ID+".tar.gz")
}

// AzureBlobUploader uploads archives to the container behind a blob datastore.
type AzureBlobUploader struct {
	cred   azcore.TokenCredential
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*azblob.Client
}

// NewAzureBlobUploader creates an uploader authenticating with cred, unless
// AZURE_STORAGE_CONNECTION_STRING is set.
func NewAzureBlobUploader(l *slog.Logger, cred azcore.TokenCredential) *AzureBlobUploader {
	if l == nil {
		l = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &AzureBlobUploader{
		cred:    cred,
		logger:  l,
		clients: make(map[string]*azblob.Client),
	}
}

func (u *AzureBlobUploader) client(accountName string) (*azblob.Client, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	if c, ok := u.clients[accountName]; ok {
		return c, nil
	}

	var (
		c   *azblob.Client
		err error
	)

	if connStr := os.Getenv(ConnectionStringEnv); connStr != "" {
		u.logger.Debug("connecting to blob storage using connection string")
		c, err = azblob.NewClientFromConnectionString(connStr, nil)
	} else {
		u.logger.Debug("connecting to blob storage using credential", slog.String("account", accountName))
		c, err = azblob.NewClient(fmt.Sprintf("https://%s%s/", accountName, azureBlobHostSuffix), u.cred, nil)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "creating blob client for account %s", accountName)
	}

	u.clients[accountName] = c

	return c, nil
}

// Upload stores the archive under snapshots/<id>.tar.gz in the datastore container.
func (u *AzureBlobUploader) Upload(ctx context.Context, datastore *model.Datastore, archive *Archive) (string, error) {
	if datastore.Kind != model.AzureBlobDatastore {
		return "", errors.Errorf("datastore %s is %s, snapshots need a blob datastore", datastore.Name, datastore.Kind)
	}

	c, err := u.client(datastore.AccountName)
	if err != nil {
		return "", err
	}

	blobName := BlobPath(archive)
	u.logger.Info("uploading source snapshot",
		slog.String("datastore", datastore.Name),
		slog.String("blob", blobName),
		slog.String("size", humanize.Bytes(uint64(archive.Size))),
		slog.Int("files", len(archive.Files)),
	)

	_, err = c.UploadBuffer(ctx, datastore.ContainerName, blobName, archive.Data, nil)
	if err != nil {
		return "", errors.Wrapf(err, "unable to upload snapshot to %s/%s", datastore.ContainerName, blobName)
	}

	return blobName, nil
}

var _ Uploader = (*AzureBlobUploader)(nil)

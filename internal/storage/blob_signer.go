package storage

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/sas"
)

// URLSigner makes image URLs readable by the vision provider
type URLSigner interface {
	// SignURL returns imageURL with read access granted, or imageURL unchanged
	// when it does not need signing.
	SignURL(ctx context.Context, imageURL string) (string, error)
}

// clock skew tolerance for the SAS start time
const sasStartSkew = 5 * time.Minute

type azureBlobSigner struct {
	client     *azblob.Client
	credential *azblob.SharedKeyCredential
	host       string
	containers map[string]struct{}
	expiry     time.Duration
	now        func() time.Time
}

// NewAzureBlobSigner creates a signer for blobs of one storage account. Only
// URLs on that account's blob endpoint are signed; an empty containers list
// allows every container.
func NewAzureBlobSigner(accountName, accountKey string, containers []string, expiry time.Duration) (URLSigner, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, fmt.Errorf("invalid storage credentials: %w", err)
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net/", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob client: %w", err)
	}

	serviceURL, err := url.Parse(client.URL())
	if err != nil {
		return nil, fmt.Errorf("invalid blob service URL: %w", err)
	}

	allowed := make(map[string]struct{}, len(containers))
	for _, c := range containers {
		allowed[c] = struct{}{}
	}

	return &azureBlobSigner{
		client:     client,
		credential: credential,
		host:       strings.ToLower(serviceURL.Host),
		containers: allowed,
		expiry:     expiry,
		now:        time.Now,
	}, nil
}

func (s *azureBlobSigner) SignURL(ctx context.Context, imageURL string) (string, error) {
	parts, err := azblob.ParseURL(imageURL)
	if err != nil {
		// Not ours to judge; the provider reports malformed URLs
		return imageURL, nil
	}

	if !s.eligible(parts) {
		return imageURL, nil
	}

	now := s.now().UTC()
	values := sas.BlobSignatureValues{
		Protocol:      sas.ProtocolHTTPS,
		StartTime:     now.Add(-sasStartSkew),
		ExpiryTime:    now.Add(s.expiry),
		Permissions:   (&sas.BlobPermissions{Read: true}).String(),
		ContainerName: parts.ContainerName,
		BlobName:      parts.BlobName,
	}

	queryParams, err := values.SignWithSharedKey(s.credential)
	if err != nil {
		return "", fmt.Errorf("failed to sign blob URL: %w", err)
	}

	parts.SAS = queryParams
	return parts.String(), nil
}

func (s *azureBlobSigner) eligible(parts azblob.URLParts) bool {
	if !strings.EqualFold(parts.Host, s.host) {
		return false
	}
	if parts.ContainerName == "" || parts.BlobName == "" {
		return false
	}
	if len(s.containers) > 0 {
		if _, ok := s.containers[parts.ContainerName]; !ok {
			return false
		}
	}
	// already carries a SAS
	return parts.SAS.Signature() == ""
}

type passthroughSigner struct{}

// NewPassthroughSigner returns a signer that never rewrites URLs
func NewPassthroughSigner() URLSigner {
	return passthroughSigner{}
}

func (passthroughSigner) SignURL(_ context.Context, imageURL string) (string, error) {
	return imageURL, nil
}

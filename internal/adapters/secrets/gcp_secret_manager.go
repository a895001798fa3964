package secrets

import (
	"context"
	"fmt"
	"hash/crc32"
	"strings"
	"time"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/googleapis/gax-go/v2"
	"google.golang.org/api/option"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
)

// GCPSecretManagerConfig contains configuration for Google Cloud Secret Manager
type GCPSecretManagerConfig struct {
	ProjectID string // e.g., "finance-prod-123"

	// Optional: custom endpoint (for emulators)
	Endpoint string
}

// secretVersionAccessor is the part of the Secret Manager client this adapter uses
type secretVersionAccessor interface {
	AccessSecretVersion(ctx context.Context, req *secretmanagerpb.AccessSecretVersionRequest, opts ...gax.CallOption) (*secretmanagerpb.AccessSecretVersionResponse, error)
	Close() error
}

// gcpSecretManager reads secrets from Google Cloud Secret Manager.
// Credentials come from Application Default Credentials
// (GOOGLE_APPLICATION_CREDENTIALS, workload identity, or gcloud login).
type gcpSecretManager struct {
	client    secretVersionAccessor
	projectID string
	logger    ports.Logger
}

// NewGCPSecretManager creates a new GCP Secret Manager adapter.
// The returned manager holds a connection; callers close it through io.Closer.
func NewGCPSecretManager(ctx context.Context, cfg GCPSecretManagerConfig, logger ports.Logger) (ports.SecretManager, error) {
	var opts []option.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(cfg.Endpoint))
	}

	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSecretUnavailable, "failed to create GCP Secret Manager client", err)
	}

	logger.Debug("GCP Secret Manager adapter initialized",
		ports.String("project_id", cfg.ProjectID),
	)

	return newGCPSecretManager(client, cfg.ProjectID, logger), nil
}

func newGCPSecretManager(client secretVersionAccessor, projectID string, logger ports.Logger) *gcpSecretManager {
	return &gcpSecretManager{
		client:    client,
		projectID: projectID,
		logger:    logger,
	}
}

// Close releases the client connection
func (m *gcpSecretManager) Close() error {
	return m.client.Close()
}

// GetSecret retrieves a secret by short name, which resolves to its latest
// version in the configured project, or by full resource name.
func (m *gcpSecretManager) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	name, err := m.versionName(path)
	if err != nil {
		return nil, err
	}

	m.logger.Info("Retrieving secret from GCP Secret Manager", ports.String("name", name))

	startTime := time.Now()
	result, err := m.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: name,
	})
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSecretUnavailable,
			fmt.Sprintf("failed to access GCP secret %s", path), err)
	}

	m.logger.Debug("Secret retrieved",
		ports.String("name", name),
		ports.String("elapsed", time.Since(startTime).String()),
	)

	payload := result.GetPayload()
	data := payload.GetData()
	if payload.DataCrc32C != nil {
		checksum := int64(crc32.Checksum(data, crc32.MakeTable(crc32.Castagnoli)))
		if checksum != payload.GetDataCrc32C() {
			return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "secret payload failed checksum").
				WithDetail("name", name)
		}
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "secret has no value").
			WithDetail("name", name)
	}

	return &ports.Secret{
		Value:   value,
		Version: versionFromName(result.GetName()),
		Metadata: map[string]string{
			"gcp_project_id": m.projectID,
			"gcp_secret":     path,
		},
	}, nil
}

// versionName expands a short secret name to
// projects/{project}/secrets/{name}/versions/latest
func (m *gcpSecretManager) versionName(path string) (string, error) {
	if strings.HasPrefix(path, "projects/") {
		if strings.Contains(path, "/versions/") {
			return path, nil
		}
		return path + "/versions/latest", nil
	}
	if m.projectID == "" {
		return "", domain.NewDomainError(domain.ErrorCodeConfigInvalid, "GCP project ID is required for short secret names").
			WithDetail("path", path)
	}
	return fmt.Sprintf("projects/%s/secrets/%s/versions/latest", m.projectID, path), nil
}

func versionFromName(name string) string {
	if i := strings.LastIndex(name, "/versions/"); i >= 0 {
		return name[i+len("/versions/"):]
	}
	return ""
}

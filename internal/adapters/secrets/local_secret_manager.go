package secrets

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
)

// localSecretManager reads secrets from files under basePath.
// A file holds either the bare value or JSON {"value": ..., "tags": {...}}.
type localSecretManager struct {
	basePath string
	logger   ports.Logger
}

// NewLocalSecretManager creates a filesystem secret manager
func NewLocalSecretManager(basePath string, logger ports.Logger) ports.SecretManager {
	return &localSecretManager{
		basePath: basePath,
		logger:   logger,
	}
}

// GetSecret reads the secret at secretPath; absolute paths ignore basePath
func (m *localSecretManager) GetSecret(_ context.Context, secretPath string) (*ports.Secret, error) {
	filePath := secretPath
	if !filepath.IsAbs(secretPath) {
		filePath = filepath.Join(m.basePath, secretPath)
	}

	m.logger.Debug("Reading secret from filesystem",
		ports.String("path", filePath),
	)

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSecretUnavailable, "failed to read secret file", err).
			WithDetail("path", filePath)
	}

	var secretData struct {
		Value     string            `json:"value"`
		Tags      map[string]string `json:"tags"`
		CreatedAt string            `json:"created_at"`
	}
	if err := json.Unmarshal(data, &secretData); err == nil && secretData.Value != "" {
		return &ports.Secret{
			Value:     secretData.Value,
			Version:   "v1",
			Metadata:  secretData.Tags,
			CreatedAt: secretData.CreatedAt,
		}, nil
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "secret file is empty").
			WithDetail("path", filePath)
	}

	return &ports.Secret{
		Value:   value,
		Version: "v1",
	}, nil
}

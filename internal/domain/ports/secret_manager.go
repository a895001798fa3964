package ports

import (
	"context"
)

// Secret represents a retrieved secret with metadata
type Secret struct {
	Value     string            // The secret value (e.g., processor API key)
	Version   string            // Secret version identifier
	Metadata  map[string]string // Additional secret metadata
	CreatedAt string            // When this version was created
}

// SecretManager defines the port for retrieving secrets from a secret store
// Supports multiple backends: local file, AWS Secrets Manager, HashiCorp Vault
type SecretManager interface {
	// GetSecret retrieves a secret by its path/name
	// Path format depends on implementation:
	//   - Local: path relative to the base directory
	//   - AWS: "settlement-reconciler/processor-api-key" or full ARN
	//   - Vault: "settlement-reconciler/processor" (field "value")
	GetSecret(ctx context.Context, path string) (*Secret, error)
}

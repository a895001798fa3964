package secrets

import (
	"context"
	"os"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
)

// envSecretManager treats the secret path as an environment variable name
type envSecretManager struct {
	lookup func(string) (string, bool)
}

// NewEnvSecretManager creates a secret manager backed by the process environment
func NewEnvSecretManager() ports.SecretManager {
	return &envSecretManager{lookup: os.LookupEnv}
}

func (m *envSecretManager) GetSecret(_ context.Context, name string) (*ports.Secret, error) {
	value, ok := m.lookup(name)
	if !ok || value == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "environment variable is not set").
			WithDetail("name", name)
	}
	return &ports.Secret{Value: value, Version: "env"}, nil
}

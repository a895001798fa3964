package secrets

import (
	"context"
	"fmt"
	"io"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
)

// Secret sources
const (
	SourceEnv   = "env"
	SourceFile  = "file"
	SourceAWS   = "aws"
	SourceVault = "vault"
	SourceGCP   = "gcp"
)

// SourceConfig selects and configures a secret backend
type SourceConfig struct {
	Source string
	// Path is the env var name, file path, AWS secret id, Vault KV path,
	// or GCP secret name
	Path string

	AWS   AWSSecretsManagerConfig
	Vault VaultConfig
	GCP   GCPSecretManagerConfig
}

// NewSecretManager builds the backend named by cfg.Source
func NewSecretManager(ctx context.Context, cfg SourceConfig, logger ports.Logger) (ports.SecretManager, error) {
	switch cfg.Source {
	case SourceEnv, "":
		return NewEnvSecretManager(), nil
	case SourceFile:
		return NewLocalSecretManager("", logger), nil
	case SourceAWS:
		return NewAWSSecretsManagerAdapter(ctx, cfg.AWS, logger)
	case SourceVault:
		return NewVaultAdapter(ctx, cfg.Vault, logger)
	case SourceGCP:
		return NewGCPSecretManager(ctx, cfg.GCP, logger)
	default:
		return nil, domain.NewDomainError(domain.ErrorCodeConfigInvalid,
			fmt.Sprintf("unknown secret source %q", cfg.Source))
	}
}

// Resolve fetches the secret described by cfg
func Resolve(ctx context.Context, cfg SourceConfig, logger ports.Logger) (string, error) {
	manager, err := NewSecretManager(ctx, cfg, logger)
	if err != nil {
		return "", err
	}
	if closer, ok := manager.(io.Closer); ok {
		defer closer.Close()
	}
	secret, err := manager.GetSecret(ctx, cfg.Path)
	if err != nil {
		return "", err
	}
	return secret.Value, nil
}

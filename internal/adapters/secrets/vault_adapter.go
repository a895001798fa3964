package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	vault "github.com/hashicorp/vault/api"

	"github.com/kevin07696/settlement-reconciler/internal/domain"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
)

// VaultConfig contains configuration for HashiCorp Vault adapter
type VaultConfig struct {
	// Vault server address (e.g., "https://vault.example.com:8200")
	Address string

	// Authentication method: "token" or "approle"
	AuthMethod string
	Token      string
	RoleID     string
	SecretID   string

	// Vault namespace (Vault Enterprise)
	Namespace string

	// KV secrets engine mount path (default: "secret")
	MountPath string
	// KV version: "v1" or "v2" (default: "v2")
	KVVersion string
	// Field holding the secret inside the KV entry (default: "value")
	Field string
}

// DefaultVaultConfig returns default configuration for Vault adapter
func DefaultVaultConfig(address string) VaultConfig {
	return VaultConfig{
		Address:    address,
		AuthMethod: "token",
		MountPath:  "secret",
		KVVersion:  "v2",
		Field:      "value",
	}
}

// vaultAdapter reads secrets from a Vault KV engine
type vaultAdapter struct {
	client *vault.Client
	config VaultConfig
	logger ports.Logger
}

// NewVaultAdapter creates a new HashiCorp Vault adapter
func NewVaultAdapter(ctx context.Context, cfg VaultConfig, logger ports.Logger) (ports.SecretManager, error) {
	defaults := DefaultVaultConfig(cfg.Address)
	if cfg.AuthMethod == "" {
		cfg.AuthMethod = defaults.AuthMethod
	}
	if cfg.MountPath == "" {
		cfg.MountPath = defaults.MountPath
	}
	if cfg.KVVersion == "" {
		cfg.KVVersion = defaults.KVVersion
	}
	if cfg.Field == "" {
		cfg.Field = defaults.Field
	}

	vaultConfig := vault.DefaultConfig()
	if cfg.Address != "" {
		vaultConfig.Address = cfg.Address
	}

	client, err := vault.NewClient(vaultConfig)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSecretUnavailable, "failed to create Vault client", err)
	}
	if cfg.Namespace != "" {
		client.SetNamespace(cfg.Namespace)
	}

	if err := authenticateVault(ctx, client, cfg); err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSecretUnavailable, "failed to authenticate with Vault", err)
	}

	logger.Debug("Vault adapter initialized",
		ports.String("address", vaultConfig.Address),
		ports.String("auth_method", cfg.AuthMethod),
		ports.String("mount_path", cfg.MountPath),
	)

	return &vaultAdapter{
		client: client,
		config: cfg,
		logger: logger,
	}, nil
}

func authenticateVault(ctx context.Context, client *vault.Client, cfg VaultConfig) error {
	switch cfg.AuthMethod {
	case "token":
		if cfg.Token == "" {
			return fmt.Errorf("token is required for token auth")
		}
		client.SetToken(cfg.Token)
		return nil

	case "approle":
		if cfg.RoleID == "" || cfg.SecretID == "" {
			return fmt.Errorf("role_id and secret_id are required for AppRole auth")
		}
		resp, err := client.Logical().WriteWithContext(ctx, "auth/approle/login", map[string]interface{}{
			"role_id":   cfg.RoleID,
			"secret_id": cfg.SecretID,
		})
		if err != nil {
			return fmt.Errorf("AppRole login failed: %w", err)
		}
		if resp == nil || resp.Auth == nil {
			return fmt.Errorf("AppRole login returned no auth info")
		}
		client.SetToken(resp.Auth.ClientToken)
		return nil

	default:
		return fmt.Errorf("unsupported auth method: %s", cfg.AuthMethod)
	}
}

// GetSecret reads the configured field of the KV entry at path
func (a *vaultAdapter) GetSecret(ctx context.Context, path string) (*ports.Secret, error) {
	a.logger.Info("Retrieving secret from Vault", ports.String("path", path))

	fullPath := fmt.Sprintf("%s/%s", a.config.MountPath, path)
	if a.config.KVVersion == "v2" {
		fullPath = fmt.Sprintf("%s/data/%s", a.config.MountPath, path)
	}

	startTime := time.Now()
	secret, err := a.client.Logical().ReadWithContext(ctx, fullPath)
	if err != nil {
		return nil, domain.WrapError(domain.ErrorCodeSecretUnavailable, "failed to read secret from Vault", err).
			WithDetail("path", path)
	}
	if secret == nil {
		return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "secret not found in Vault").
			WithDetail("path", path)
	}

	a.logger.Debug("Secret retrieved",
		ports.String("path", path),
		ports.String("elapsed", time.Since(startTime).String()),
	)

	secretData := secret.Data
	version := "1"
	var createdTime string

	if a.config.KVVersion == "v2" {
		data, ok := secret.Data["data"].(map[string]interface{})
		if !ok {
			return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "invalid secret format from Vault").
				WithDetail("path", path)
		}
		secretData = data

		if metadata, ok := secret.Data["metadata"].(map[string]interface{}); ok {
			if v, ok := metadata["version"].(json.Number); ok {
				version = v.String()
			}
			if ct, ok := metadata["created_time"].(string); ok {
				createdTime = ct
			}
		}
	}

	value, ok := secretData[a.config.Field].(string)
	if !ok || value == "" {
		return nil, domain.NewDomainError(domain.ErrorCodeSecretUnavailable, "secret field missing").
			WithDetail("path", path).
			WithDetail("field", a.config.Field)
	}

	return &ports.Secret{
		Value:     value,
		Version:   version,
		CreatedAt: createdTime,
	}, nil
}

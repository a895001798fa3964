package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kevin07696/settlement-reconciler/internal/adapters/processor"
	"github.com/kevin07696/settlement-reconciler/internal/adapters/report"
	"github.com/kevin07696/settlement-reconciler/internal/adapters/secrets"
	"github.com/kevin07696/settlement-reconciler/internal/config"
	"github.com/kevin07696/settlement-reconciler/internal/domain/ports"
	"github.com/kevin07696/settlement-reconciler/internal/render"
	"github.com/kevin07696/settlement-reconciler/internal/services/reconciliation"
	httpclient "github.com/kevin07696/settlement-reconciler/pkg/http"
	"github.com/kevin07696/settlement-reconciler/pkg/logging"
	"github.com/kevin07696/settlement-reconciler/pkg/observability"
	"github.com/kevin07696/settlement-reconciler/pkg/shutdown"
)

type runOptions struct {
	reportPath         string
	encoding           string
	excludedProductID  string
	exclusionCustomers []string
	suppressionMarkers []string
	baseURL            string
	apiKeySource       string
	apiKeyPath         string
	requestsPerSecond  float64
	maxRetries         int
	timeout            time.Duration
	xlsxPath           string
	pdfPath            string
	metricsPath        string
	trace              bool
	noInput            bool
	noSave             bool
}

func (c *cli) newRunCmd() *cobra.Command {
	var ro runOptions

	cmd := &cobra.Command{
		Use:   "run [report]",
		Short: "Reconcile a settlement report",
		Long: `Reads the settlement report (use "-" for stdin), classifies every record,
looks up invoices for platform and exclusion-list customers, and prints the
figures. Settings of a successful run are saved and offered next time.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				if err := cmd.Flags().Set("report", args[0]); err != nil {
					return err
				}
			}
			return c.run(cmd, ro)
		},
	}

	f := cmd.Flags()
	f.StringVar(&ro.reportPath, "report", "", "Settlement report CSV path")
	f.StringVar(&ro.encoding, "encoding", "", "Report encoding: utf-8, utf-16, windows-1252, iso-8859-1")
	f.StringVar(&ro.excludedProductID, "excluded-product", "", "Product id whose sales are not platform gross")
	f.StringSliceVar(&ro.exclusionCustomers, "exclusion-customers", nil, "Customer ids reported as a separate channel")
	f.StringSliceVar(&ro.suppressionMarkers, "suppression-markers", nil, "Email substrings of internal accounts")
	f.StringVar(&ro.baseURL, "base-url", "", "Processor API base URL")
	f.StringVar(&ro.apiKeySource, "api-key-source", "", "Where the API key lives: env, file, aws, vault, gcp")
	f.StringVar(&ro.apiKeyPath, "api-key-path", "", "Env var name, file path, AWS secret id, Vault path or GCP secret name of the API key")
	f.Float64Var(&ro.requestsPerSecond, "rps", 0, "Invoice lookups per second")
	f.IntVar(&ro.maxRetries, "max-retries", 0, "Retries of a failed invoice lookup")
	f.DurationVar(&ro.timeout, "timeout", 0, "Timeout of one processor request")
	f.StringVar(&ro.xlsxPath, "xlsx", "", "Write an XLSX workbook to this path")
	f.StringVar(&ro.pdfPath, "pdf", "", "Write a PDF summary to this path")
	f.StringVar(&ro.metricsPath, "metrics-file", "", "Write Prometheus metrics in textfile format to this path")
	f.BoolVar(&ro.trace, "trace", false, "Print how every record was treated")
	f.BoolVar(&ro.noInput, "no-input", false, "Never prompt; fail on missing settings")
	f.BoolVar(&ro.noSave, "no-save", false, "Do not save settings for the next run")

	return cmd
}

// applyFlags overrides cfg with flags the user actually set
func applyFlags(cmd *cobra.Command, ro runOptions, cfg *config.Config) {
	changed := cmd.Flags().Changed
	if changed("report") {
		cfg.ReportPath = ro.reportPath
	}
	if changed("encoding") {
		cfg.ReportEncoding = ro.encoding
	}
	if changed("excluded-product") {
		cfg.ExcludedProductID = ro.excludedProductID
	}
	if changed("exclusion-customers") {
		cfg.ExclusionCustomerIDs = ro.exclusionCustomers
	}
	if changed("suppression-markers") {
		cfg.SuppressionMarkers = ro.suppressionMarkers
	}
	if changed("base-url") {
		cfg.Processor.BaseURL = ro.baseURL
	}
	if changed("api-key-source") {
		cfg.APIKey.Source = ro.apiKeySource
	}
	if changed("api-key-path") {
		cfg.APIKey.Path = ro.apiKeyPath
	}
	if changed("rps") {
		cfg.Processor.RequestsPerSecond = ro.requestsPerSecond
	}
	if changed("max-retries") {
		cfg.Processor.MaxRetries = ro.maxRetries
	}
	if changed("timeout") {
		cfg.Processor.Timeout = ro.timeout
	}
	if changed("xlsx") {
		cfg.Output.XLSXPath = ro.xlsxPath
	}
	if changed("pdf") {
		cfg.Output.PDFPath = ro.pdfPath
	}
	if changed("metrics-file") {
		cfg.Output.MetricsPath = ro.metricsPath
	}
}

func (c *cli) run(cmd *cobra.Command, ro runOptions) error {
	ctx := cmd.Context()

	cfg, store, err := c.loadConfig(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, ro, cfg)

	// a report piped on stdin leaves nothing to prompt from
	interactive := !ro.noInput && cfg.ReportPath != report.StdinPath && c.interactive()
	var ask *prompter
	if interactive {
		ask = newPrompter(c.in, c.errOut)
		if err := ask.fillMissing(cfg); err != nil {
			return fmt.Errorf("read settings: %w", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	runID := uuid.New().String()
	zapLogger, err := logging.New(logging.Options{Level: cfg.Log.Level, Development: cfg.Log.Development})
	if err != nil {
		return err
	}
	logger := zapLogger.With(ports.String("run_id", runID))

	cleanup := shutdown.NewManager(logger, 10*time.Second)
	defer func() { _ = cleanup.Shutdown() }()
	cleanup.RegisterNoErr("logger", func() { _ = zapLogger.Sync() })
	if path := cfg.Output.MetricsPath; path != "" {
		// runs on failure too
		cleanup.RegisterFunc("metrics", func() error {
			return observability.WriteTextfile(path)
		})
	}

	apiKey, err := resolveAPIKey(ctx, cfg, logger, ask)
	if err != nil {
		return err
	}

	adapter := processor.NewInvoiceAdapter(processor.Config{
		BaseURL:           cfg.Processor.BaseURL,
		APIKey:            apiKey,
		RequestsPerSecond: cfg.Processor.RequestsPerSecond,
		MaxRetries:        cfg.Processor.MaxRetries,
		CircuitBreaker:    processor.DefaultCircuitBreakerConfig(),
	}, httpclient.NewHTTPClient(httpclient.ProcessorClientConfig(), cfg.Processor.Timeout), logger)

	reportReader, err := report.Reader(cfg.ReportPath, cfg.ReportEncoding, c.in)
	if err != nil {
		return err
	}

	svc := reconciliation.NewService(reconciliation.Config{
		ExcludedProductID:    cfg.ExcludedProductID,
		ExclusionCustomerIDs: cfg.ExclusionCustomerIDs,
		SuppressionMarkers:   cfg.SuppressionMarkers,
	}, adapter, logger)

	result, err := svc.ReconcileReport(ctx, reportReader)
	if err != nil {
		return err
	}

	rep := render.Report{
		RunID:       runID,
		ReportPath:  cfg.ReportPath,
		GeneratedAt: time.Now().UTC(),
		Result:      result,
	}
	if err := render.Console(c.out, rep, ro.trace); err != nil {
		return err
	}
	if err := writeExports(cfg.Output, rep, logger); err != nil {
		return err
	}

	if !ro.noSave && cfg.ReportPath != report.StdinPath {
		if err := store.Save(cfg); err != nil {
			logger.Warn("Failed to save settings", ports.Err(err))
		}
	}
	return nil
}

// resolveAPIKey reads the key from its configured source, falling back to a
// hidden prompt when interactive
func resolveAPIKey(ctx context.Context, cfg *config.Config, logger ports.Logger, ask *prompter) (string, error) {
	if cfg.APIKey.Value != "" {
		return cfg.APIKey.Value, nil
	}

	key, err := secrets.Resolve(ctx, secretSource(cfg.APIKey), logger)
	if err == nil {
		return key, nil
	}
	if ask == nil {
		return "", err
	}

	logger.Warn("API key unavailable from configured source; prompting",
		ports.String("source", cfg.APIKey.Source),
		ports.Err(err),
	)
	key, promptErr := ask.askSecret("Processor API key")
	if promptErr != nil || key == "" {
		return "", err
	}
	cfg.APIKey.Value = key
	return key, nil
}

func secretSource(k config.APIKeyConfig) secrets.SourceConfig {
	vault := secrets.DefaultVaultConfig(k.VaultAddress)
	if k.VaultAuthMethod != "" {
		vault.AuthMethod = k.VaultAuthMethod
	}
	if k.VaultMount != "" {
		vault.MountPath = k.VaultMount
	}
	if k.VaultKVVersion != "" {
		vault.KVVersion = k.VaultKVVersion
	}
	if k.VaultField != "" {
		vault.Field = k.VaultField
	}
	vault.Token = k.VaultToken
	vault.RoleID = k.VaultRoleID
	vault.SecretID = k.VaultSecretID
	vault.Namespace = k.VaultNamespace

	return secrets.SourceConfig{
		Source: k.Source,
		Path:   k.Path,
		AWS: secrets.AWSSecretsManagerConfig{
			Region:   k.AWSRegion,
			Profile:  k.AWSProfile,
			Endpoint: k.AWSEndpoint,
		},
		Vault: vault,
		GCP: secrets.GCPSecretManagerConfig{
			ProjectID: k.GCPProjectID,
			Endpoint:  k.GCPEndpoint,
		},
	}
}

func writeExports(out config.OutputConfig, rep render.Report, logger ports.Logger) error {
	if out.XLSXPath != "" {
		data, err := render.XLSX(rep)
		if err != nil {
			return fmt.Errorf("render workbook: %w", err)
		}
		if err := render.WriteFile(out.XLSXPath, data); err != nil {
			return fmt.Errorf("write workbook: %w", err)
		}
		logger.Info("Workbook written", ports.String("path", out.XLSXPath))
	}
	if out.PDFPath != "" {
		data, err := render.PDF(rep)
		if err != nil {
			return fmt.Errorf("render pdf: %w", err)
		}
		if err := render.WriteFile(out.PDFPath, data); err != nil {
			return fmt.Errorf("write pdf: %w", err)
		}
		logger.Info("PDF written", ports.String("path", out.PDFPath))
	}
	return nil
}

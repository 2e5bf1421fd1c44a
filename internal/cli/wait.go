package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vvka-141/retrier/internal/config"
	"github.com/vvka-141/retrier/internal/db"
	"github.com/vvka-141/retrier/internal/probe"
	"github.com/vvka-141/retrier/pkg/retrier"
)

// EnvConnectionString is checked after the argument and the config file.
const EnvConnectionString = "RETRIER_CONNECTION_STRING"

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait until a dependency is ready",
	Long: `Wait until a dependency is ready, retrying with backoff.

Failures that cannot heal stop the wait early: unknown hosts, authentication
errors and HTTP 4xx responses other than 408 and 429.`,
}

type waitFlagValues struct {
	timeout string

	authMethod     string
	awsRegion      string
	azureTenantID  string
	azureClientID  string
	googleInstance string

	jsonPath string
	expect   string
}

var waitFlags waitFlagValues

var waitPostgresCmd = &cobra.Command{
	Use:   "postgres [CONNECTION_STRING]",
	Short: "Wait until PostgreSQL accepts connections",
	Long: `Wait until PostgreSQL accepts a connection and answers a ping.

The connection string comes from the argument, probe.connection_string in
retrier.yaml, $RETRIER_CONNECTION_STRING or $DATABASE_URL, in that order.
Standard PG* variables and ~/.pgpass are honored.`,
	Example: `  retrier wait postgres postgres://app@localhost:5432/app
  retrier wait postgres --auth-method aws --aws-region eu-west-1 postgres://iam_user@db.xyz.rds.amazonaws.com/app`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWaitPostgres,
}

var waitTCPCmd = &cobra.Command{
	Use:     "tcp HOST:PORT",
	Short:   "Wait until a TCP port accepts connections",
	Example: `  retrier wait tcp localhost:6379`,
	Args:    cobra.ExactArgs(1),
	RunE:    runWaitTCP,
}

var waitHTTPCmd = &cobra.Command{
	Use:   "http URL",
	Short: "Wait until an HTTP endpoint answers 2xx",
	Example: `  retrier wait http http://localhost:8080/health
  retrier wait http --json-path status --expect ok http://localhost:8080/health`,
	Args: cobra.ExactArgs(1),
	RunE: runWaitHTTP,
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.AddCommand(waitPostgresCmd, waitTCPCmd, waitHTTPCmd)

	waitCmd.PersistentFlags().StringVar(&waitFlags.timeout, "timeout", "", "Deadline for each attempt (default 5s or probe.timeout)")

	pf := waitPostgresCmd.Flags()
	pf.StringVar(&waitFlags.authMethod, "auth-method", "", "standard, aws, azure or google")
	pf.StringVar(&waitFlags.awsRegion, "aws-region", "", "AWS region for RDS IAM auth ($AWS_REGION)")
	pf.StringVar(&waitFlags.azureTenantID, "azure-tenant-id", "", "Entra ID tenant ($AZURE_TENANT_ID)")
	pf.StringVar(&waitFlags.azureClientID, "azure-client-id", "", "Entra ID client ($AZURE_CLIENT_ID)")
	pf.StringVar(&waitFlags.googleInstance, "google-instance", "", "Cloud SQL instance connection name (project:region:instance)")

	hf := waitHTTPCmd.Flags()
	hf.StringVar(&waitFlags.jsonPath, "json-path", "", "gjson path that must exist in the response body")
	hf.StringVar(&waitFlags.expect, "expect", "", "Value the --json-path result must equal")
}

func resetWaitFlags() {
	waitFlags = waitFlagValues{}
}

func runWaitPostgres(cmd *cobra.Command, args []string) error {
	cfg, fileCfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	target, err := resolveTarget(args, fileCfg.Probe)
	if err != nil {
		return err
	}

	connector, err := db.NewConnector(target)
	if err != nil {
		return err
	}

	return waitFor(cmd, probe.NewPostgresProbe(connector), cfg, fileCfg)
}

func runWaitTCP(cmd *cobra.Command, args []string) error {
	cfg, fileCfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	p, err := probe.NewTCPProbe(args[0])
	if err != nil {
		return err
	}
	return waitFor(cmd, p, cfg, fileCfg)
}

func runWaitHTTP(cmd *cobra.Command, args []string) error {
	cfg, fileCfg, err := resolveSettings(cmd)
	if err != nil {
		return err
	}

	p, err := probe.NewHTTPProbe(args[0], waitFlags.jsonPath, waitFlags.expect)
	if err != nil {
		return err
	}
	return waitFor(cmd, p, cfg, fileCfg)
}

func waitFor(cmd *cobra.Command, p probe.Probe, cfg retrier.Config, fileCfg *config.FileConfig) error {
	attemptTimeout, err := resolveAttemptTimeout(fileCfg.Probe)
	if err != nil {
		return err
	}

	logger := newLogger(cmd)
	logVerboseConfig(logger, cfg)
	logger.Verbose("waiting for %s (attempt timeout %s)", p.Name(), attemptTimeout)

	return runWithProgress(cmd, logger, "waiting for "+p.Name(), cfg.MaxAttempts(),
		func(ctx context.Context, onRetry func(int, error, time.Duration)) error {
			_, err := probe.Wait(ctx, p, cfg, probe.WaitOptions{
				AttemptTimeout: attemptTimeout,
				Logger:         logger,
				OnRetry:        onRetry,
			})
			return err
		})
}

// resolveAttemptTimeout gives --timeout precedence over probe.timeout.
func resolveAttemptTimeout(probeCfg config.ProbeConfig) (time.Duration, error) {
	if waitFlags.timeout != "" {
		probeCfg.Timeout = waitFlags.timeout
	}
	return probeCfg.ProbeTimeout()
}

// resolveTarget combines the argument, flags, file and environment into a db.Target.
func resolveTarget(args []string, probeCfg config.ProbeConfig) (*db.Target, error) {
	connString := firstNonEmpty(
		argAt(args, 0),
		probeCfg.ConnectionString,
		os.Getenv(EnvConnectionString),
		os.Getenv("DATABASE_URL"),
	)

	method, err := db.ParseAuthMethod(firstNonEmpty(waitFlags.authMethod, probeCfg.AuthMethod))
	if err != nil {
		return nil, err
	}

	target := &db.Target{
		ConnString:        connString,
		AuthMethod:        method,
		AWSRegion:         firstNonEmpty(waitFlags.awsRegion, probeCfg.AWSRegion, os.Getenv("AWS_REGION"), os.Getenv("AWS_DEFAULT_REGION")),
		AzureTenantID:     firstNonEmpty(waitFlags.azureTenantID, probeCfg.AzureTenantID, os.Getenv("AZURE_TENANT_ID")),
		AzureClientID:     firstNonEmpty(waitFlags.azureClientID, probeCfg.AzureClientID, os.Getenv("AZURE_CLIENT_ID")),
		AzureClientSecret: os.Getenv("AZURE_CLIENT_SECRET"),
		GoogleInstance:    firstNonEmpty(waitFlags.googleInstance, probeCfg.GoogleInstance),
	}

	// An empty string is valid for pgx (PG* variables), so only reject it
	// when nothing at all points at a server.
	if connString == "" && os.Getenv("PGHOST") == "" {
		return nil, fmt.Errorf("no connection string: pass one as argument or set %s, DATABASE_URL or PGHOST", EnvConnectionString)
	}
	return target, nil
}

func argAt(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

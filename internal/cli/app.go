package cli

import (
	"fmt"
	"time"

	"latexify/internal/backend"
	"latexify/internal/common"
	"latexify/internal/config"
	"latexify/internal/errors"
	"latexify/internal/observability"
	"latexify/internal/profile"
	"latexify/internal/templates"
	"latexify/internal/types"
	"latexify/internal/workflow"

	"github.com/spf13/cobra"
)

// app wires the session store, backend client, and workflow engine for one
// command invocation
type app struct {
	cfg     *config.Config
	logger  *errors.Logger
	metrics *observability.Metrics

	store    *workflow.Store
	session  *types.Session
	client   *backend.Client
	notifier *workflow.Notifier
	engine   *workflow.Engine
	output   *common.OutputHandler
}

// newApp builds the application wiring from the command context
func newApp(cmd *cobra.Command) (*app, error) {
	ctx := cmd.Context()
	cfg := getConfigFromContext(ctx)
	logger := getLoggerFromContext(ctx)
	metrics := getMetricsFromContext(ctx)

	store := workflow.NewStore(sessionPath(cfg), logger)
	session, err := store.Load()
	if err != nil {
		return nil, err
	}

	client, err := backend.New(cfg, logger,
		backend.WithRateLimitCallback(func(operation string) {
			metrics.RecordRateLimitWait(ctx, operation)
		}),
		backend.WithCertReloadCallback(func() {
			metrics.RecordCertReload(ctx)
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create backend client: %w", err)
	}

	notifier := workflow.NewNotifier(cfg.App.NotificationTTL)
	notifier.Subscribe(func(note workflow.Notification) {
		if note.Kind == workflow.NotifyError {
			cmd.PrintErrf("Error: %s\n", note.Message)
		} else {
			cmd.Printf("%s\n", note.Message)
		}
	})

	engine := workflow.NewEngine(session, client, cfg.DefaultCompilerOptions(), notifier, logger,
		workflow.WithObserver(func(operation string, duration time.Duration, err error) {
			metrics.RecordWorkflowOperation(ctx, operation, duration, err)
		}),
	)

	return &app{
		cfg:      cfg,
		logger:   logger,
		metrics:  metrics,
		store:    store,
		session:  session,
		client:   client,
		notifier: notifier,
		engine:   engine,
		output:   common.NewOutputHandler(logger),
	}, nil
}

// close releases client resources
func (a *app) close() {
	a.client.Close()
}

// saveSession persists the session snapshot; call after every mutating
// command, including failed ones, so the recorded state survives
func (a *app) saveSession() error {
	return a.store.Save(a.session)
}

// analyzer builds the ATS analyzer over this app's backend client
func (a *app) analyzer() *workflow.Analyzer {
	ctx := rootCmd.Context()
	return workflow.NewAnalyzer(a.client, a.logger,
		workflow.WithAnalyzerObserver(func(operation string, duration time.Duration, err error) {
			a.metrics.RecordWorkflowOperation(ctx, operation, duration, err)
		}),
	)
}

// profiles builds the persistence manager for the configured identity
func (a *app) profiles() *profile.Manager {
	return profile.NewManager(a.client, a.cfg.User.Identity(), a.logger)
}

// catalog builds the template catalog with the configured cache TTL
func (a *app) catalog() *templates.Catalog {
	return templates.NewCatalog(a.client, a.cfg.App.TemplateCacheTTL, a.logger)
}

// sessionPath resolves the session file location, flag over config
func sessionPath(cfg *config.Config) string {
	if sessionFlag != "" {
		return sessionFlag
	}
	return cfg.App.SessionFile
}

// validateFormatFlag builds a PreRunE that applies the default output format
// and validates it against the configured supported formats
func validateFormatFlag(cc *common.CommandConfig) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		if cc.OutputFormat == "" {
			cc.OutputFormat = cfg.App.DefaultFormat
		}
		return common.ValidateOutputFormat(cc.OutputFormat, cfg.App.SupportedFormats)
	}
}

// printSummary writes the session status projection
func (a *app) printSummary(cmdCfg common.CommandConfig) error {
	return a.output.HandleOutput(a.session.Summarize(), cmdCfg)
}

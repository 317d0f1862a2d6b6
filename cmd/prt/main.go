package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prtriage/prtriage/internal/adapter/browser"
	"github.com/prtriage/prtriage/internal/adapter/cli"
	"github.com/prtriage/prtriage/internal/adapter/editor"
	gitadapter "github.com/prtriage/prtriage/internal/adapter/git"
	githubadapter "github.com/prtriage/prtriage/internal/adapter/github"
	"github.com/prtriage/prtriage/internal/adapter/llm/anthropic"
	llmhttp "github.com/prtriage/prtriage/internal/adapter/llm/http"
	"github.com/prtriage/prtriage/internal/adapter/llm/openai"
	"github.com/prtriage/prtriage/internal/adapter/observability"
	"github.com/prtriage/prtriage/internal/adapter/output/markdown"
	"github.com/prtriage/prtriage/internal/adapter/store/sqlite"
	"github.com/prtriage/prtriage/internal/config"
	"github.com/prtriage/prtriage/internal/store"
	"github.com/prtriage/prtriage/internal/usecase/review"
	"github.com/prtriage/prtriage/internal/usecase/skip"
	"github.com/prtriage/prtriage/internal/usecase/triage"
	"github.com/prtriage/prtriage/internal/version"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "prt",
		EnvPrefix:   "PRT",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	logger := observability.NewEventLogger(
		llmhttp.ParseLogLevel(cfg.Logging.Level),
		llmhttp.ParseLogFormat(cfg.Logging.Format),
	)

	retryConf := buildRetryConfig(cfg.HTTP)

	provider, err := buildProvider(cfg, retryConf)
	if err != nil {
		return err
	}
	reviewer := review.NewReviewer(provider, logger, cfg.AI.MaxTokens)

	ghClient := githubadapter.NewClient(cfg.GitHub.Token)
	ghClient.SetRetryConfig(retryConf)
	if cfg.GitHub.BaseURL != "" {
		ghClient.SetBaseURL(cfg.GitHub.BaseURL)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.IgnoreFile), 0o755); err != nil {
		return fmt.Errorf("create ignore file directory: %w", err)
	}
	ignores := store.NewFileIgnoreSet(cfg.IgnoreFile)

	var decisions triage.DecisionStore
	if cfg.Store.Enabled {
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o755); err != nil {
			logger.Warn("could not create decision store directory", map[string]any{"error": err.Error()})
		} else {
			decisionStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				logger.Warn("decision store unavailable, continuing without history", map[string]any{"error": err.Error()})
			} else {
				defer decisionStore.Close()
				decisions = decisionStore
			}
		}
	}

	driver := triage.NewDriver(triage.DriverConfig{
		GitHub:    ghClient,
		Reviewer:  reviewer,
		Skip:      skip.NewDetector(),
		Ignores:   ignores,
		Decisions: decisions,
		Editor:    editor.New(cfg.Editor),
		Opener:    browser.New(),
		Logger:    logger,
		Criteria: triage.Criteria{
			MaxAdditions:    cfg.Criteria.MaxAdditions,
			MaxDeletions:    cfg.Criteria.MaxDeletions,
			MaxChangedFiles: cfg.Criteria.MaxChangedFiles,
			MaxLinesChanged: cfg.Criteria.MaxLinesChanged,
		},
		Input:  os.Stdin,
		Output: os.Stdout,
	})

	var report *markdown.Writer
	if cfg.Output.Enabled {
		report = markdown.NewWriter(cfg.Output.Directory, func() string {
			return time.Now().UTC().Format("20060102T150405Z")
		})
	}

	owner, repo := cfg.GitHub.Owner, cfg.GitHub.Repo
	if owner == "" || repo == "" {
		if origin, err := gitadapter.DetectOrigin("."); err == nil {
			if owner == "" {
				owner = origin.Owner
			}
			if repo == "" {
				repo = origin.Repo
			}
		}
	}

	root := cli.NewRootCommand(cli.Dependencies{
		Runner: &triageRunner{
			driver: driver,
			report: report,
			logger: logger,
		},
		DefaultOwner:    owner,
		DefaultRepo:     repo,
		DefaultAssignee: cfg.GitHub.Assignee,
		Version:         version.Value(),
	})

	return root.ExecuteContext(ctx)
}

// triageRunner adapts the session driver to the CLI, adding the optional
// session report.
type triageRunner struct {
	driver *triage.Driver
	report *markdown.Writer
	logger *observability.EventLogger
}

func (r *triageRunner) Run(ctx context.Context, owner, repo, assignee string) (triage.Summary, error) {
	if !triage.IsInteractive() {
		r.logger.Warn("stdin is not a terminal; the session will end at the first prompt", nil)
	}

	summary, err := r.driver.Run(ctx, owner, repo, assignee)
	if err != nil {
		return summary, err
	}

	if r.report != nil {
		path, werr := r.report.Write(summary)
		if werr != nil {
			r.logger.Warn("could not write session report", map[string]any{"error": werr.Error()})
		} else {
			fmt.Printf("Session report written to %s\n", path)
		}
	}

	return summary, nil
}

func buildProvider(cfg config.Config, retryConf llmhttp.RetryConfig) (review.Provider, error) {
	providerCfg, ok := cfg.Providers[cfg.AI.Provider]
	if !ok || !providerCfg.Enabled {
		return nil, fmt.Errorf("AI provider %q is not configured or not enabled", cfg.AI.Provider)
	}

	timeout := parseDuration(cfg.HTTP.Timeout, 60*time.Second)
	httpLogger := llmhttp.NewDefaultLogger(
		llmhttp.ParseLogLevel(cfg.Logging.Level),
		llmhttp.ParseLogFormat(cfg.Logging.Format),
		cfg.Logging.RedactAPIKeys,
	)

	switch cfg.AI.Provider {
	case "anthropic":
		client := anthropic.NewHTTPClient(providerCfg.APIKey, providerCfg.Model)
		client.SetTimeout(timeout)
		client.SetRetryConfig(retryConf)
		client.SetLogger(httpLogger)
		return anthropic.NewProvider(client), nil
	case "openai":
		client := openai.NewHTTPClient(providerCfg.APIKey, providerCfg.Model)
		client.SetTimeout(timeout)
		client.SetRetryConfig(retryConf)
		client.SetLogger(httpLogger)
		return openai.NewProvider(client), nil
	default:
		return nil, fmt.Errorf("unknown AI provider %q", cfg.AI.Provider)
	}
}

func buildRetryConfig(httpCfg config.HTTPConfig) llmhttp.RetryConfig {
	conf := llmhttp.DefaultRetryConfig()
	if httpCfg.MaxRetries > 0 {
		conf.MaxRetries = httpCfg.MaxRetries
	}
	conf.InitialBackoff = parseDuration(httpCfg.InitialBackoff, conf.InitialBackoff)
	conf.MaxBackoff = parseDuration(httpCfg.MaxBackoff, conf.MaxBackoff)
	if httpCfg.BackoffMultiplier > 0 {
		conf.Multiplier = httpCfg.BackoffMultiplier
	}
	return conf
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func defaultConfigPaths() []string {
	paths := []string{}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "prt"))
	}
	return paths
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/andywolf/ytcomments/internal/cloud/gcp"
	"github.com/andywolf/ytcomments/internal/comments"
	"github.com/andywolf/ytcomments/internal/config"
	"github.com/andywolf/ytcomments/internal/export"
	"github.com/andywolf/ytcomments/internal/render"
	"github.com/andywolf/ytcomments/internal/security"
	"github.com/andywolf/ytcomments/internal/youtube"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// redactedError carries an error whose message has been scrubbed of
// credentials while keeping the original for errors.Is.
type redactedError struct {
	msg string
	err error
}

func (e *redactedError) Error() string { return e.msg }
func (e *redactedError) Unwrap() error { return e.err }

func redact(s *security.Scrubber, err error) error {
	if err == nil {
		return nil
	}
	return &redactedError{msg: s.ScrubError(err), err: err}
}

func runFetch(cmd *cobra.Command, args []string) (err error) {
	videoID := args[0]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			fmt.Fprintln(cmd.ErrOrStderr(), "\nReceived interrupt signal, stopping...")
			cancel()
		case <-ctx.Done():
		}
	}()

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	scrubber := security.NewScrubber()
	defer func() { err = redact(scrubber, err) }()

	apiKey, err := resolveAPIKey(ctx, cfg)
	if err != nil {
		return err
	}
	scrubber.AddSecret(apiKey)

	logger, err := gcp.NewLogger(ctx, gcp.LoggerConfig{
		Format:     cfg.Logging.Format,
		GCPProject: cfg.Logging.GCPProject,
		LogName:    cfg.Logging.LogName,
		RunID:      newRunID(),
		Labels:     map[string]string{"video_id": videoID},
		Writer:     cmd.ErrOrStderr(),
		Redactor:   scrubber,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() {
		if closeErr := logger.Close(); closeErr != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "Warning:", scrubber.ScrubError(closeErr))
		}
	}()

	client, err := youtube.NewClient(ctx, youtube.Options{
		APIKey:     apiKey,
		Part:       cfg.Part,
		MaxResults: cfg.MaxResults,
		Order:      cfg.Order,
		Timeout:    cfg.Timeout(),
	})
	if err != nil {
		return fmt.Errorf("failed to create YouTube client: %w", err)
	}

	p := &pipeline{
		cfg:    cfg,
		source: client,
		logger: logger,
		out:    cmd.OutOrStdout(),
	}
	return p.run(ctx, videoID)
}

// resolveAPIKey returns the configured key, reading it from Secret Manager
// when only api_key_secret is set.
func resolveAPIKey(ctx context.Context, cfg *config.Config) (string, error) {
	if cfg.APIKey != "" {
		return cfg.APIKey, nil
	}

	client, err := gcp.NewSecretManagerClient(ctx, cfg.Logging.GCPProject)
	if err != nil {
		return "", err
	}
	defer client.Close()

	return gcp.ResolveAPIKey(ctx, client, "", cfg.APIKeySecret)
}

func newRunID() string {
	return "ytc-" + uuid.New().String()[:8]
}

// pipeline fetches, optionally associates replies, and saves the result.
type pipeline struct {
	cfg    *config.Config
	source comments.Source
	logger gcp.Logger
	out    io.Writer
}

func (p *pipeline) fetcher() *comments.Fetcher {
	opts := []comments.Option{
		comments.WithLogger(p.logger),
		comments.WithMaxPages(p.cfg.MaxPages),
		comments.WithReplyConcurrency(p.cfg.ReplyConcurrency),
	}
	if p.cfg.StripMarkup {
		opts = append(opts, comments.WithTextTransform(render.PlainText))
	}
	return comments.NewFetcher(p.source, opts...)
}

func (p *pipeline) run(ctx context.Context, videoID string) error {
	p.logger.Infof("Fetching comments for video %s", videoID)

	list, err := p.fetcher().Run(ctx, videoID, p.cfg.IncludeReplies)
	if err != nil {
		switch {
		case youtube.IsQuotaExceeded(err):
			p.logger.Error("YouTube API quota exceeded, retry after the daily quota resets")
		case youtube.IsCommentsDisabled(err):
			p.logger.Errorf("Comments are disabled for video %s", videoID)
		}
		return err
	}
	p.logger.Infof("Fetched %d comments", len(list))

	path, err := export.Save(p.cfg.OutputDir, videoID, p.cfg.SaveFormat, list)
	if errors.Is(err, export.ErrUnsupportedFormat) {
		p.logger.Warningf("unsupported save format %q, nothing written", p.cfg.SaveFormat)
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to save comments: %w", err)
	}

	fmt.Fprintf(p.out, "Comments saved to %s\n", path)
	return nil
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	videosummary "summary-stack/services/video-summary"
	"summary-stack/services/video-summary/youtube"
	"summary-stack/shared/config"
	"summary-stack/shared/email"
	"summary-stack/shared/monitoring"
	"summary-stack/shared/scheduler"
	"summary-stack/shared/storage"

	"github.com/spf13/cobra"
)

var (
	sendEmail  bool
	noCache    bool
	jsonOutput bool
	clearAll   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "ytsum",
		Short:        "Summarize YouTube videos from their transcripts",
		SilenceUsage: true,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server and the cache sweeper",
		Long: `Start the HTTP API server.

Endpoints:
  GET  /health, /status          - Monitor health and counters
  GET  /api/v1/health            - API health check
  GET  /api/v1/info              - API information
  POST /api/v1/summarize         - Summarize a video {"url": "..."}
  GET  /api/v1/video/{id}        - Video metadata
  GET  /api/v1/cache/stats       - Cache statistics
  POST /api/v1/cache/clear       - Clear expired (or all) cache records`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	summarizeCmd := &cobra.Command{
		Use:   "summarize <youtube-url>",
		Short: "Fetch the transcript and summarize a video",
		Args:  cobra.ExactArgs(1),
		RunE:  runSummarize,
	}
	summarizeCmd.Flags().BoolVar(&sendEmail, "email", false, "Email the summary to the configured recipient")
	summarizeCmd.Flags().BoolVar(&noCache, "no-cache", false, "Ignore any cached summary")
	summarizeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full response as JSON")

	transcriptCmd := &cobra.Command{
		Use:   "transcript <youtube-url>",
		Short: "Fetch and print the cleaned transcript only",
		Args:  cobra.ExactArgs(1),
		RunE:  runTranscript,
	}

	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the summary cache",
	}
	cacheStatsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show cache statistics",
		Args:  cobra.NoArgs,
		RunE:  runCacheStats,
	}
	cacheClearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove expired cache records",
		Args:  cobra.NoArgs,
		RunE:  runCacheClear,
	}
	cacheClearCmd.Flags().BoolVar(&clearAll, "all", false, "Remove every record, not only expired ones")
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)

	authCmd := &cobra.Command{
		Use:   "auth",
		Short: "Authorize YouTube Data API access with the OAuth device flow",
		Args:  cobra.NoArgs,
		RunE:  runAuth,
	}

	rootCmd.AddCommand(serveCmd, summarizeCmd, transcriptCmd, cacheCmd, authCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	service, err := videosummary.Build(ctx, cfg)
	if err != nil {
		return err
	}

	monitor := monitoring.NewMonitor()
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           videosummary.NewServer(service, monitor, &cfg.Server).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if cache := service.Cache(); cache != nil {
		sweeper := scheduler.New(cfg.Cache.SweepSchedule, videosummary.NewCacheSweeper(cache), monitor)
		go func() {
			if err := sweeper.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("Warning: cache sweeper stopped: %v", err)
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Listening on %s", server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

func runSummarize(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if sendEmail && !cfg.Email.Enabled {
		return fmt.Errorf("email is not enabled in the configuration")
	}

	ctx := cmd.Context()
	service, err := videosummary.Build(ctx, cfg)
	if err != nil {
		return err
	}

	var resp *videosummary.SummaryResponse
	if noCache {
		resp, err = service.SummarizeFresh(ctx, args[0])
	} else {
		resp, err = service.Summarize(ctx, args[0])
	}
	if err != nil {
		return fmt.Errorf("failed to summarize %s: %w", args[0], err)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(resp); err != nil {
			return err
		}
	} else {
		printSummary(resp)
	}

	if sendEmail {
		if err := email.NewSender(&cfg.Email).SendSummary(resp.Email()); err != nil {
			return err
		}
		log.Printf("Summary emailed to %s", cfg.Email.ToEmail)
	}
	return nil
}

func printSummary(resp *videosummary.SummaryResponse) {
	video := resp.VideoInfo
	fmt.Printf("%s\n%s", video.Title, video.Channel)
	if video.Duration != "" {
		fmt.Printf(" · %s", video.Duration)
	}
	fmt.Printf("\n%s\n\n", strings.Repeat("=", 80))
	fmt.Println(resp.Summary.Content)

	if len(resp.Summary.Keywords) > 0 {
		fmt.Printf("\nKeywords: %s\n", strings.Join(resp.Summary.Keywords, ", "))
	}
	if len(resp.KeyMoments) > 0 {
		fmt.Println("\nKey moments:")
		for _, moment := range resp.KeyMoments {
			fmt.Printf("  - %s\n", moment)
		}
	}

	source := resp.Summary.Tier.String()
	if resp.Cached {
		source += ", cached"
	}
	fmt.Printf("\n[%s", source)
	if resp.ContentType != "" {
		fmt.Printf(", %s", resp.ContentType)
	}
	if stats := resp.Statistics; stats != nil {
		fmt.Printf(", %d → %d words, %d min read", stats.OriginalWordCount, stats.SummaryWordCount, stats.EstimatedReadingTime)
	}
	fmt.Println("]")
}

func runTranscript(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	service, err := videosummary.Build(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	transcript, meta, err := service.Transcript(cmd.Context(), args[0])
	if err != nil {
		return err
	}

	log.Printf("%s (%s): %d characters", meta.Title, meta.Channel, utf8.RuneCountInString(transcript))
	fmt.Println(transcript)
	return nil
}

func openCache(cfg *config.Config) (*storage.CacheStore, error) {
	if !cfg.Cache.CacheEnabled() {
		return nil, videosummary.ErrCacheDisabled
	}
	return storage.NewCacheStore(cfg.Cache.Dir, cfg.Cache.TTL())
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache, err := openCache(cfg)
	if err != nil {
		return err
	}

	stats := cache.Stats()
	fmt.Printf("Cache directory: %s (TTL %v)\n", cache.Dir(), cache.TTL())
	fmt.Printf("Records: %d total, %d valid, %d expired\n", stats.Total, stats.Valid, stats.Expired)
	fmt.Printf("Size: %.2f MB\n", stats.TotalSizeMB())
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cache, err := openCache(cfg)
	if err != nil {
		return err
	}

	if clearAll {
		fmt.Printf("Cleared all cache entries (%d removed)\n", cache.EvictAll())
	} else {
		fmt.Printf("Cleared expired cache entries (%d removed)\n", cache.EvictExpired())
	}
	return nil
}

func runAuth(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := youtube.Authorize(ctx, &cfg.YouTube); err != nil {
		return err
	}
	fmt.Printf("Token stored in %s\n", cfg.YouTube.TokenFile)
	return nil
}

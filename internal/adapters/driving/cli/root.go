// Package cli provides the learnbox-search command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/learnbox/learnbox-search/internal/core/ports/driving"
	"github.com/learnbox/learnbox-search/internal/logger"
)

const (
	// annotationNoServices marks commands that run without the service graph.
	annotationNoServices = "learnbox.no-services"

	// shutdownTimeout bounds draining queued work on exit.
	shutdownTimeout = 30 * time.Second
)

var (
	version = "dev"

	verbose   bool
	configDir string
	dataDir   string

	searchService   driving.SearchService
	settingsService driving.SettingsService
	resourceService driving.ResourceService
	maintenance     driving.Maintenance
	documentEvents  driving.DocumentEvents

	builder  Builder
	shutdown func(context.Context) error
)

// Options carries the global flags into a Builder.
type Options struct {
	ConfigDir string
	DataDir   string
}

// Services groups the driving ports used by the commands.
type Services struct {
	Search      driving.SearchService
	Settings    driving.SettingsService
	Resources   driving.ResourceService
	Maintenance driving.Maintenance
	Events      driving.DocumentEvents

	// Close drains queued work and releases storage. Optional.
	Close func(ctx context.Context) error
}

// Builder constructs the service graph once global flags are parsed.
type Builder func(opts Options) (*Services, error)

var rootCmd = &cobra.Command{
	Use:   "learnbox-search",
	Short: "Semantic search over learning resources",
	Long: `learnbox-search vectorizes uploaded learning resources and answers
natural-language queries with the most relevant documents.

Resources are extracted, chunked, embedded and stored in a vector store.
Queries are embedded the same way and ranked by blended chunk similarity.`,
	SilenceUsage:      true,
	PersistentPreRunE: setupServices,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.learnbox)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default ~/.learnbox/data)")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBuilder registers the function that constructs services.
func SetBuilder(b Builder) {
	builder = b
}

// SetServices injects services directly.
func SetServices(s *Services) {
	searchService = s.Search
	settingsService = s.Settings
	resourceService = s.Resources
	maintenance = s.Maintenance
	documentEvents = s.Events
	shutdown = s.Close
}

// Execute runs the root command, then drains and closes the services it built.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	return errors.Join(err, teardownServices(ctx))
}

func setupServices(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationNoServices] != "" {
		return nil
	}
	if searchService != nil || builder == nil {
		return nil
	}

	services, err := builder(Options{ConfigDir: configDir, DataDir: dataDir})
	if err != nil {
		return fmt.Errorf("initialising services: %w", err)
	}
	SetServices(services)
	return nil
}

// teardownServices runs even after an interrupt, bounded by shutdownTimeout.
func teardownServices(ctx context.Context) error {
	if shutdown == nil {
		return nil
	}
	closeFn := shutdown
	shutdown = nil

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := closeFn(ctx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}

var (
	errSearchNotConfigured   = errors.New("search service not configured")
	errSettingsNotConfigured = errors.New("settings service not configured")
	errResourceNotConfigured = errors.New("resource service not configured")
)

// runBackground runs maintenance until ctx is done. It is a no-op without
// a maintenance service.
func runBackground(ctx context.Context) {
	if maintenance == nil {
		return
	}
	go func() {
		if err := maintenance.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("maintenance: %v", err)
		}
	}()
}

package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// settingsInput is where interactive prompts read from.
var settingsInput io.Reader = os.Stdin

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the embedding provider, vector store and tuning options.

Settings live in config.toml under the config directory.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Configure the embedding provider used to vectorize resources and queries.

Changing provider or model changes the vector space; run "learnbox-search reindex" afterwards.`,
	RunE: runSettingsEmbedding,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	rootCmd.AddCommand(settingsCmd)
}

// settingsSection is one titled block of "settings show" output.
type settingsSection struct {
	title string
	rows  [][2]string
}

func (s *settingsSection) add(key, format string, args ...any) {
	s.rows = append(s.rows, [2]string{key, fmt.Sprintf(format, args...)})
}

func describeSettings(settings *domain.AppSettings) []settingsSection {
	emb := settings.Embedding
	embedding := settingsSection{title: "Embedding"}
	embedding.add("Provider", "%s", emb.Provider.Description())
	embedding.add("Model", "%s", emb.Model)
	if emb.BaseURL != "" {
		embedding.add("Base URL", "%s", emb.BaseURL)
	}
	if emb.Provider.RequiresAPIKey() {
		key := "(not set)"
		if emb.APIKey != "" {
			key = maskAPIKey(emb.APIKey)
		}
		embedding.add("API Key", "%s", key)
	}
	if emb.Dimensions > 0 {
		embedding.add("Dimensions", "%d", emb.Dimensions)
	}
	if emb.RequestsPerSecond > 0 {
		embedding.add("Rate limit", "%.1f req/s", emb.RequestsPerSecond)
	}
	if emb.IsConfigured() {
		embedding.add("Status", "configured")
	} else {
		embedding.add("Status", "not configured")
	}

	vs := settings.VectorStore
	store := settingsSection{title: "Vector Store"}
	store.add("Backend", "%s", vs.Backend)
	switch {
	case vs.Backend == domain.VectorBackendQdrant:
		store.add("Address", "%s:%d", vs.QdrantHost, vs.QdrantPort)
		store.add("Collection", "%s", vs.QdrantCollection)
	case vs.Backend == domain.VectorBackendSQLite && vs.Path != "":
		store.add("Path", "%s", vs.Path)
	}

	chunking := settingsSection{title: "Chunking"}
	chunking.add("Size", "%d", settings.Chunking.Size)
	chunking.add("Overlap", "%d", settings.Chunking.Overlap)

	v := settings.Vectorization
	vectorization := settingsSection{title: "Vectorization"}
	vectorization.add("Min content length", "%d", v.MinContentLength)
	vectorization.add("Workers", "%d", v.Workers)
	vectorization.add("Queue size", "%d", v.QueueSize)
	vectorization.add("Task timeout", "%s", v.TaskTimeout)

	search := settingsSection{title: "Search"}
	search.add("Default limit", "%d", settings.Search.DefaultLimit)
	search.add("Oversample", "%d", settings.Search.Oversample)
	search.add("Average weight", "%.2f", settings.Search.AverageWeight)

	reconcile := settingsSection{title: "Reconcile"}
	if settings.Reconcile.Enabled {
		reconcile.add("Enabled", "yes")
		reconcile.add("Interval", "%s", settings.Reconcile.Interval)
	} else {
		reconcile.add("Enabled", "no")
	}

	return []settingsSection{embedding, store, chunking, vectorization, search, reconcile}
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println(titleStyle.Render("Current Settings"))
	cmd.Println()
	for _, section := range describeSettings(settings) {
		cmd.Println(subtitleStyle.Render("[" + section.title + "]"))
		for _, row := range section.rows {
			cmd.Printf("  %s: %s\n", row[0], row[1])
		}
		cmd.Println()
	}

	if err := settingsService.Validate(); err != nil {
		cmd.Println(warningStyle.Render(fmt.Sprintf("Warning: %v", err)))
		cmd.Println("Run 'learnbox-search settings embedding' to fix configuration issues.")
		return nil
	}
	cmd.Println(successStyle.Render("Configuration is valid."))
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsNotConfigured
	}

	reader := bufio.NewReader(settingsInput)
	return configureEmbeddingProvider(cmd, reader)
}

func configureEmbeddingProvider(cmd *cobra.Command, reader *bufio.Reader) error {
	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	input := readLine(reader)
	idx := parseChoice(input, len(providers), 1)
	selectedProvider := providers[idx-1]

	// Get model
	defaults := domain.DefaultEmbeddingModels()
	defaultModel := defaults[selectedProvider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	// Get API key if needed
	var apiKey string
	if selectedProvider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword(reader)
		cmd.Println()
		if apiKey == "" {
			return fmt.Errorf("%w: API key is required for this provider", domain.ErrConfig)
		}
	}

	if err := settingsService.SetEmbeddingProvider(selectedProvider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure embedding provider: %w", err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := settingsService.ProbeEmbedding(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n\n", selectedProvider.Description(), model)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		password, err := term.ReadPassword(int(f.Fd()))
		if err == nil {
			return string(password)
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

package cli

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsCmd_NoServiceConfigured(t *testing.T) {
	SetServices(&Services{})

	_, err := execute(t, "settings", "show")
	assert.ErrorIs(t, err, errSettingsNotConfigured)
}

func TestSettingsShow_Defaults(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "Model: hashing-v1")
	assert.Contains(t, out, "Backend: sqlite")
	assert.Contains(t, out, "Size: 1000")
	assert.Contains(t, out, "Overlap: 200")
	assert.Contains(t, out, "Workers: 4")
	assert.Contains(t, out, "Average weight: 0.50")
	assert.Contains(t, out, "Interval: 1h0m0s")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_MasksAPIKey(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	_ = testServices.settings.Set("embedding.provider", "openai")
	_ = testServices.settings.Set("embedding.api_key", "sk-1234567890abcdef")
	_ = testServices.settings.Set("vector_store.backend", "qdrant")

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: sk-1...cdef")
	assert.NotContains(t, out, "sk-1234567890abcdef")
	assert.Contains(t, out, "Address: localhost:6334")
	assert.Contains(t, out, "Collection: learnbox_resources")
}

func TestSettingsShow_WarnsWhenInvalid(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	_ = testServices.settings.Set("embedding.provider", "openai")

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "API Key: (not set)")
	assert.Contains(t, out, "Status: not configured")
	assert.Contains(t, out, "Warning:")
}

func TestSettingsEmbedding_Interactive(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	original := settingsInput
	defer func() { settingsInput = original }()

	t.Run("ollama with default model", func(t *testing.T) {
		settingsInput = strings.NewReader("2\n\n")

		out, err := execute(t, "settings", "embedding")

		require.NoError(t, err)
		assert.Contains(t, out, "Validating configuration... OK")

		settings, err := settingsService.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOllama, settings.Embedding.Provider)
		assert.Equal(t, "nomic-embed-text", settings.Embedding.Model)
		assert.Equal(t, 768, settings.Embedding.Dimensions)
	})

	t.Run("openai with key", func(t *testing.T) {
		settingsInput = strings.NewReader("3\ntext-embedding-3-large\nsk-test-000000000\n")

		_, err := execute(t, "settings", "embedding")

		require.NoError(t, err)
		settings, err := settingsService.Get()
		require.NoError(t, err)
		assert.Equal(t, domain.AIProviderOpenAI, settings.Embedding.Provider)
		assert.Equal(t, "text-embedding-3-large", settings.Embedding.Model)
		assert.Equal(t, "sk-test-000000000", settings.Embedding.APIKey)
	})

	t.Run("openai without key fails", func(t *testing.T) {
		settingsInput = strings.NewReader("3\n\n\n")

		_, err := execute(t, "settings", "embedding")
		assert.ErrorIs(t, err, domain.ErrConfig)
	})
}

func TestDescribeSettings_Sections(t *testing.T) {
	settings := domain.DefaultAppSettings()
	settings.Reconcile.Enabled = false
	settings.VectorStore.Path = "/var/lib/learnbox/index.db"

	sections := describeSettings(&settings)

	var titles []string
	rows := map[string]string{}
	for _, s := range sections {
		titles = append(titles, s.title)
		for _, r := range s.rows {
			rows[s.title+"."+r[0]] = r[1]
		}
	}
	assert.Equal(t, []string{"Embedding", "Vector Store", "Chunking", "Vectorization", "Search", "Reconcile"}, titles)
	assert.Equal(t, "/var/lib/learnbox/index.db", rows["Vector Store.Path"])
	assert.Equal(t, "no", rows["Reconcile.Enabled"])
	assert.NotContains(t, rows, "Reconcile.Interval")
	assert.NotContains(t, rows, "Embedding.API Key", "local provider needs no key")
}

package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/learnbox/learnbox-search/internal/adapters/driven/embedding/local"
	"github.com/learnbox/learnbox-search/internal/adapters/driven/storage/memory"
	"github.com/learnbox/learnbox-search/internal/core/domain"
	"github.com/learnbox/learnbox-search/internal/core/services"
	"github.com/learnbox/learnbox-search/internal/normalisers"
	"github.com/learnbox/learnbox-search/internal/postprocessors/chunker"
)

// testServices exposes the in-memory graph behind setupTestServices.
var testServices struct {
	catalogue  *memory.Catalogue
	store      *memory.VectorStore
	dispatcher *services.Dispatcher
	settings   *memory.ConfigStore
}

// setupTestServices wires real services over in-memory adapters.
func setupTestServices() func() {
	catalogue := memory.NewCatalogue()
	store := memory.NewVectorStore()
	index := memory.NewVectorIndex()
	configStore := memory.NewConfigStore()
	embedder := local.NewEmbeddingService(64)

	chunk, err := chunker.New(chunker.WithChunkSize(200), chunker.WithOverlap(40))
	if err != nil {
		panic(err)
	}
	extractor := normalisers.NewDefaultRegistry(normalisers.NewLoader())

	manager := services.NewVectorizationManager(extractor, chunk, embedder, store, index, 20)
	dispatcher := services.NewDispatcher(manager, domain.VectorizationSettings{Workers: 2, QueueSize: 64})

	search := services.NewSearchService(embedder, store, catalogue, domain.QuerySettings{})
	search.SetVectorIndex(index)
	search.SetPendingCounter(dispatcher)

	SetServices(&Services{
		Search:    search,
		Settings:  services.NewSettingsService(configStore, nil),
		Resources: services.NewResourceService(catalogue, dispatcher),
		Events:    dispatcher,
	})

	testServices.catalogue = catalogue
	testServices.store = store
	testServices.dispatcher = dispatcher
	testServices.settings = configStore

	return func() {
		_ = dispatcher.Close(context.Background())
		SetServices(&Services{})
		resetFlags()
	}
}

// resetFlags restores flag variables between executions of rootCmd.
func resetFlags() {
	searchLimit = 10
	searchJSON = false
	searchFaculty = ""
	searchYear = ""
	searchModule = ""
	addFlags.reset()
	updateFlags.reset()
	resourceJSON = false
	reconcileHistory = 0
	mcpListen = ""
	tuiLimit = 10
	tuiQuery = ""
	versionBuild = false
	verbose = false
	_ = tuiCmd.Flags().Set("limit", "10")
}

// execute runs rootCmd with args and returns combined output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		resetFlags()
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

// writeResource writes a text file and returns its path.
func writeResource(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// waitVectorized blocks until n documents are indexed.
func waitVectorized(t *testing.T, n int) {
	t.Helper()
	require.Eventually(t, func() bool {
		status, err := searchService.Status(context.Background())
		return err == nil && status.DocumentCount == n && status.PendingTasks == 0
	}, 5*time.Second, 10*time.Millisecond)
}

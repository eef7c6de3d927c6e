// Package testutil provides shared test helpers: temporary sites and history
// databases, and in-memory fakes of the external services.
package testutil

import (
	"context"
	"os"
	"sync"
	"testing"

	"github.com/starford/sitewright/internal/assets"
	"github.com/starford/sitewright/internal/history"
	"github.com/starford/sitewright/internal/storage"
)

// TestDB creates a temporary history database that is automatically cleaned up.
func TestDB(t *testing.T) *history.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "sitewright-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := history.Open(dbFile.Name(), 0)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSite creates a temporary site directory with a storage.Provider.
func TestSite(t *testing.T) (string, storage.Provider) {
	t.Helper()
	siteDir := t.TempDir()
	store, err := storage.NewFS(siteDir)
	if err != nil {
		t.Fatal(err)
	}
	return siteDir, store
}

// PixelPNG is a base64 encoded 1x1 PNG.
const PixelPNG = "iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="

// Generator is a scripted text generator. Each call pops the next response;
// the last one repeats.
type Generator struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	Prompts   []string
	// Block, when set, is waited on before answering.
	Block chan struct{}
}

// Generate implements rebuild.Generator.
func (g *Generator) Generate(ctx context.Context, prompt, _ string) (string, error) {
	if g.Block != nil {
		select {
		case <-g.Block:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	if len(g.Responses) == 0 {
		return "", nil
	}
	out := g.Responses[0]
	if len(g.Responses) > 1 {
		g.Responses = g.Responses[1:]
	}
	return out, nil
}

// Photos is a fixed photo searcher.
type Photos struct {
	Hits []assets.Photo
	Err  error
}

// Search implements assets.PhotoSearcher.
func (p Photos) Search(context.Context, string) ([]assets.Photo, error) {
	return p.Hits, p.Err
}

// Images is an image generator returning PixelPNG.
type Images struct {
	Err error
}

// Generate implements assets.ImageGenerator.
func (i Images) Generate(context.Context, string, string) (string, error) {
	if i.Err != nil {
		return "", i.Err
	}
	return PixelPNG, nil
}

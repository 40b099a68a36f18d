package testutil

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"linkstate/linkstate/internal/db"
	"linkstate/linkstate/internal/model"
	"linkstate/linkstate/internal/repo"
	"linkstate/linkstate/internal/util"
)

// LinkBuilder creates test links with optional overrides
type LinkBuilder struct {
	link model.Link
}

// NewLinkBuilder creates a builder with a fresh id and token
func NewLinkBuilder() *LinkBuilder {
	return &LinkBuilder{link: model.Link{
		ID:          uuid.NewString(),
		Token:       util.GenerateToken(util.DefaultTokenLength),
		OriginalURL: "https://example.com/test",
		CreatedAt:   time.Now().UTC().Truncate(time.Millisecond),
	}}
}

func (b *LinkBuilder) WithToken(token string) *LinkBuilder {
	b.link.Token = token
	return b
}

func (b *LinkBuilder) WithURL(u string) *LinkBuilder {
	b.link.OriginalURL = u
	return b
}

func (b *LinkBuilder) WithClicks(n int64) *LinkBuilder {
	b.link.ClickCount = n
	return b
}

func (b *LinkBuilder) WithOwner(tag string) *LinkBuilder {
	b.link.OwnerTag = tag
	return b
}

func (b *LinkBuilder) Build() model.Link { return b.link }

// RandomURL generates a random URL for testing
func RandomURL() string {
	domains := []string{"example.com", "test.org", "sample.net", "demo.io"}
	paths := []string{"path", "resource", "page", "item", "content"}

	return fmt.Sprintf("https://%s/%s/%d",
		domains[rand.Intn(len(domains))], paths[rand.Intn(len(paths))], rand.Intn(10000))
}

// ValidURLs returns URLs the service accepts
func ValidURLs() []string {
	return []string{
		"https://example.com",
		"http://example.com",
		"https://subdomain.example.com/path",
		"http://example.com:8080/path?query=value",
		"https://example.com/path/to/resource#fragment",
		"https://192.168.1.1:8080/api",
		"http://localhost:3000/development",
		"https://cdn.jsdelivr.net/npm/package@1.0.0/dist/file.min.js",
	}
}

// InvalidURLs returns URLs the service rejects
func InvalidURLs() []string {
	return []string{
		"not-a-url",
		"example.com",
		"ftp://example.com",
		"file:///etc/passwd",
		"javascript:alert('xss')",
		"mailto:user@example.com",
		"",
		"   ",
	}
}

// SQLiteRepo opens a migrated SQLite store in a temp dir, closed on cleanup.
func SQLiteRepo(t testing.TB) repo.LinkRepo {
	t.Helper()

	ctx := context.Background()
	conn, err := db.Open(ctx, "file:"+filepath.Join(t.TempDir(), "links.db"), "")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close(ctx) })

	r, err := repo.New(conn)
	if err != nil {
		t.Fatalf("repo: %v", err)
	}
	if err := r.Migrate(ctx); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return r
}

// Seed inserts links directly through the store.
func Seed(t testing.TB, r repo.LinkRepo, links ...model.Link) {
	t.Helper()

	for _, l := range links {
		if _, err := r.Insert(context.Background(), l); err != nil {
			t.Fatalf("seed %s: %v", l.Token, err)
		}
	}
}

package catalog

import (
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/config"
	"github.com/mrlokans/bookshelf/internal/database"
	auditrepo "github.com/mrlokans/bookshelf/internal/database/audit"
	"github.com/mrlokans/bookshelf/internal/database/books"
	"github.com/mrlokans/bookshelf/internal/database/favourites"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// setupAuditedService wires the catalog over the production SQLite settings
// with asynchronous audit writes racing every catalog write.
func setupAuditedService(t *testing.T) (*database.Database, *Service, *audit.Service) {
	db, err := database.NewDatabase(config.Database{
		Driver:   config.DriverSQLite,
		Path:     filepath.Join(t.TempDir(), "audited.db"),
		LogLevel: "silent",
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	auditService := audit.NewService(auditrepo.NewRepository(db.DB))
	t.Cleanup(auditService.Wait)

	svc := NewService(
		books.NewRepository(db.DB, books.Limits{}),
		favourites.NewRepository(db.DB),
		auditService,
		0,
	)
	return db, svc, auditService
}

func TestService_WritesAlongsideAuditInserts(t *testing.T) {
	db, svc, auditService := setupAuditedService(t)

	const (
		readers    = 3
		iterations = 25
	)

	userIDs := make([]uint, readers)
	for i := range userIDs {
		user := &entities.User{Email: fmt.Sprintf("reader%d@x.com", i), Name: "Reader", PasswordHash: "hash"}
		require.NoError(t, db.DB.Create(user).Error)
		userIDs[i] = user.ID
	}

	var wg sync.WaitGroup
	errs := make(chan error, readers*iterations*4)

	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			for i := 0; i < iterations; i++ {
				book, err := svc.CreateBook(userID, books.BookInput{
					Title:       fmt.Sprintf("Book %d-%d", userID, i),
					Author:      "Frank Herbert",
					Description: "Desert planet",
					PublishDate: "1965-08-01",
				})
				if err != nil {
					errs <- fmt.Errorf("create: %w", err)
					continue
				}
				if err := svc.SetFavorite(userID, book.ID, true); err != nil {
					errs <- fmt.Errorf("favorite: %w", err)
				}
				title := fmt.Sprintf("Renamed %d-%d", userID, i)
				if _, err := svc.UpdateBook(book.ID, userID, books.BookPatch{Title: &title}); err != nil {
					errs <- fmt.Errorf("update: %w", err)
				}
				if err := svc.DeleteBook(book.ID, userID); err != nil {
					errs <- fmt.Errorf("delete: %w", err)
				}
			}
		}(userID)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NotErrorIs(t, err, apperr.ErrStorage)
		assert.NoError(t, err)
	}

	auditService.Wait()

	result, err := svc.ListAll(1, 0)
	require.NoError(t, err)
	assert.Zero(t, result.Total)

	for _, userID := range userIDs {
		_, total, err := auditService.GetEvents(userID, "", 1, 0)
		require.NoError(t, err)
		assert.Equal(t, int64(iterations*4), total)
	}
}

func TestService_SearchFoldsUnicode(t *testing.T) {
	db, svc, _ := setupAuditedService(t)

	user := &entities.User{Email: "ann@x.com", Name: "Ann", PasswordHash: "hash"}
	require.NoError(t, db.DB.Create(user).Error)

	for _, title := range []string{"Émile ou de l'éducation", "ДЮНА", "Dune"} {
		_, err := svc.CreateBook(user.ID, books.BookInput{
			Title:       title,
			Author:      "Author",
			Description: "Description",
			PublishDate: "1965-08-01",
		})
		require.NoError(t, err)
	}

	tests := []struct {
		query string
		want  []string
	}{
		{"émile", []string{"Émile ou de l'éducation"}},
		{"ÉMILE", []string{"Émile ou de l'éducation"}},
		{"дюна", []string{"ДЮНА"}},
		{"dune", []string{"Dune"}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			items, err := svc.Search(tt.query)
			require.NoError(t, err)
			titles := make([]string, len(items))
			for i, item := range items {
				titles[i] = item.Title
			}
			assert.Equal(t, tt.want, titles)
		})
	}
}

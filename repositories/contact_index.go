//go:generate go run go.uber.org/mock/mockgen -source=contact_index.go -destination=../mocks/mock_contact_index.go -package=mocks
package repositories

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"dm-server/domain"

	"github.com/blugelabs/bluge"
	"github.com/blugelabs/bluge/index"
)

type IContactIndex interface {
	Index(user domain.User) error
	Flush() error
	Search(ctx context.Context, term string) ([]string, error)
}

// ContactIndex is the Bluge-backed full-text index used by contact search.
// Documents are batched and only become searchable after Flush; a periodic
// worker flushes in the background so signups show up in search within a
// couple of seconds without paying a segment write per request.
type ContactIndex struct {
	mu     sync.Mutex
	writer *bluge.Writer
	batch  *index.Batch
	log    *slog.Logger
}

func NewContactIndex(writer *bluge.Writer, log *slog.Logger) *ContactIndex {
	return &ContactIndex{writer: writer, batch: bluge.NewBatch(), log: log}
}

// Index queues the searchable projection of a user. Update semantics: the
// document ID is the user ID, so re-indexing after a profile change
// replaces the previous document.
func (c *ContactIndex) Index(user domain.User) error {
	doc := bluge.NewDocument(user.ID).
		AddField(bluge.NewTextField("firstName", user.FirstName)).
		AddField(bluge.NewTextField("lastName", user.LastName)).
		AddField(bluge.NewTextField("email", user.Email))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.batch.Update(doc.ID(), doc)
	return nil
}

// Flush writes the pending batch to the index.
func (c *ContactIndex) Flush() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.writer.Batch(c.batch); err != nil {
		return err
	}
	c.batch.Reset()
	return nil
}

// Search returns the IDs of users whose first name, last name or email
// matches the term, best score first.
func (c *ContactIndex) Search(ctx context.Context, term string) ([]string, error) {
	reader, err := c.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := reader.Close(); err != nil {
			c.log.Warn("failed to close index reader", "error", err)
		}
	}()

	term = strings.TrimSpace(term)
	query := bluge.NewBooleanQuery().SetMinShould(1)
	for _, field := range []string{"firstName", "lastName", "email"} {
		query.AddShould(bluge.NewMatchQuery(term).SetField(field))
		query.AddShould(bluge.NewPrefixQuery(strings.ToLower(term)).SetField(field))
	}

	it, err := reader.Search(ctx, bluge.NewTopNSearch(50, query))
	if err != nil {
		return nil, err
	}

	var ids []string
	match, err := it.Next()
	for err == nil && match != nil {
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			if field == "_id" {
				ids = append(ids, string(value))
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		match, err = it.Next()
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

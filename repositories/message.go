//go:generate go run go.uber.org/mock/mockgen -source=message.go -destination=../mocks/mock_message_repository.go -package=mocks
package repositories

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"dm-server/domain"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/samber/lo"
)

type IMessageRepository interface {
	Store(message domain.Message) error
	GetConversation(userA, userB string, limit *int) ([]domain.Message, error)
	DeleteConversation(userA, userB string) (int, error)
	Partners(userID string) ([]string, error)
}

type MessageRepository struct {
	db  *badger.DB
	log *slog.Logger
}

func NewMessageRepository(db *badger.DB, log *slog.Logger) MessageRepository {
	return MessageRepository{db: db, log: log}
}

// conversationPrefix builds the shared key prefix for the unordered pair
// (userA, userB). Sorting the two IDs lexicographically means both
// directions of a conversation land under the same prefix, so membership
// is order-independent by construction.
func conversationPrefix(userA, userB string) string {
	if strings.Compare(userA, userB) > 0 {
		userA, userB = userB, userA
	}
	return fmt.Sprintf("dm:%s:%s:", userA, userB)
}

// Store persists a message in BadgerDB.
// The key is formatted as "dm:{low_id}:{high_id}:{timestamp_padded}:{uuid}" to:
//  1. Ensure chronological sorting using 19-digit zero padding
//     (lexicographical order).
//  2. Prevent data loss by using the message UUID as a collision
//     disambiguator if two messages arrive at the same nanosecond.
func (m MessageRepository) Store(message domain.Message) error {
	key := fmt.Sprintf("%s%019d:%s",
		conversationPrefix(message.SenderID, message.RecipientID),
		message.At.UnixNano(),
		message.ID,
	)
	bytes, err := cbor.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), bytes)
	})
}

// GetConversation retrieves every message between the two users using a
// prefix scan, oldest first. Thanks to the padded timestamp in the key the
// iteration order is already chronological. A non-nil limit caps the number
// of returned messages.
func (m MessageRepository) GetConversation(userA, userB string, limit *int) ([]domain.Message, error) {
	prefix := []byte(conversationPrefix(userA, userB))

	var raw [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			if limit != nil && len(raw) == *limit {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *limit))
				break
			}
			err := it.Item().Value(func(value []byte) error {
				raw = append(raw, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	messages := make([]domain.Message, 0, len(raw))
	for _, b := range raw {
		var message domain.Message
		if err = cbor.Unmarshal(b, &message); err != nil {
			return nil, err
		}
		messages = append(messages, message)
	}
	return messages, nil
}

// Partners returns the IDs of every user the given user has exchanged at
// least one message with, most recent conversation first. It walks the
// whole dm keyspace; conversation keys embed both participant IDs and the
// message timestamp, so no value needs to be read.
func (m MessageRepository) Partners(userID string) ([]string, error) {
	prefix := []byte("dm:")
	latest := make(map[string]string) // partner -> newest padded timestamp seen

	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			// Key layout: dm:{low_id}:{high_id}:{ts}:{uuid}; IDs are UUIDs
			// and never contain a colon.
			parts := strings.Split(string(it.Item().Key()), ":")
			if len(parts) != 5 {
				continue
			}
			low, high, ts := parts[1], parts[2], parts[3]

			var partner string
			switch userID {
			case low:
				partner = high
			case high:
				partner = low
			default:
				continue
			}
			if ts > latest[partner] {
				latest[partner] = ts
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	partners := lo.Keys(latest)
	sort.Slice(partners, func(i, j int) bool {
		return latest[partners[i]] > latest[partners[j]]
	})
	return partners, nil
}

// DeleteConversation removes every message between the two users, in either
// direction, and returns the exact count removed (0 if none existed).
func (m MessageRepository) DeleteConversation(userA, userB string) (int, error) {
	prefix := []byte(conversationPrefix(userA, userB))

	var keys [][]byte
	err := m.db.View(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	// Batched deletes stay under badger's transaction size ceiling.
	wb := m.db.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err = wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err = wb.Flush(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

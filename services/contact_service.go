package services

import (
	"context"
	"log/slog"

	"dm-server/domain"
	"dm-server/repositories"

	"github.com/samber/lo"
)

type IContactService interface {
	Search(ctx context.Context, term string) ([]domain.PublicUser, error)
	AllContacts() ([]domain.PublicUser, error)
	ContactsForList(userID string) ([]domain.PublicUser, error)
	DeleteDirectMessages(userID, contactID string) (int, error)
}

type ContactService struct {
	log      *slog.Logger
	users    repositories.IUserRepository
	messages repositories.IMessageRepository
	index    repositories.IContactIndex
}

func NewContactService(log *slog.Logger, users repositories.IUserRepository,
	messages repositories.IMessageRepository, index repositories.IContactIndex) *ContactService {
	return &ContactService{log: log, users: users, messages: messages, index: index}
}

// Search resolves the full-text matches from the contact index back into
// user records. An ID the index knows but the store no longer has is
// skipped rather than failing the whole search.
func (s *ContactService) Search(ctx context.Context, term string) ([]domain.PublicUser, error) {
	ids, err := s.index.Search(ctx, term)
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.PublicUser, 0, len(ids))
	for _, id := range ids {
		user, err := s.users.GetByID(id)
		if err != nil {
			s.log.Debug("indexed contact no longer in store", "user_id", id)
			continue
		}
		contacts = append(contacts, user.Public())
	}
	return contacts, nil
}

func (s *ContactService) AllContacts() ([]domain.PublicUser, error) {
	users, err := s.users.All()
	if err != nil {
		return nil, err
	}
	return lo.Map(users, func(u domain.User, _ int) domain.PublicUser {
		return u.Public()
	}), nil
}

// ContactsForList returns the distinct users the caller has a conversation
// with, most recent first.
func (s *ContactService) ContactsForList(userID string) ([]domain.PublicUser, error) {
	partnerIDs, err := s.messages.Partners(userID)
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.PublicUser, 0, len(partnerIDs))
	for _, id := range partnerIDs {
		user, err := s.users.GetByID(id)
		if err != nil {
			continue
		}
		contacts = append(contacts, user.Public())
	}
	return contacts, nil
}

// DeleteDirectMessages wipes the whole conversation between the caller and
// the given contact, both directions, and returns the number removed.
func (s *ContactService) DeleteDirectMessages(userID, contactID string) (int, error) {
	count, err := s.messages.DeleteConversation(userID, contactID)
	if err != nil {
		return 0, err
	}
	s.log.Info("direct messages deleted", "user_id", userID, "contact_id", contactID, "count", count)
	return count, nil
}

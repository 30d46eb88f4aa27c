package services

import (
	"dm-server/domain"
	"dm-server/repositories"
)

type IMessageService interface {
	GetConversation(userID, contactID string) ([]domain.Message, error)
}

type MessageService struct {
	messages repositories.IMessageRepository
	limit    *int
}

func NewMessageService(messages repositories.IMessageRepository, limit *int) *MessageService {
	return &MessageService{messages: messages, limit: limit}
}

// GetConversation returns the history between two users, oldest first.
// The pair is unordered: (A,B) and (B,A) yield the same sequence.
func (s *MessageService) GetConversation(userID, contactID string) ([]domain.Message, error) {
	return s.messages.GetConversation(userID, contactID, s.limit)
}

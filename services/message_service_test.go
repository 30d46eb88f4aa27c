package services

import (
	"testing"
	"time"

	"dm-server/domain"
	"dm-server/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestMessageService_GetConversation_Passes_The_Configured_Limit(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mocks.NewMockIMessageRepository(ctrl)
	limit := 50
	svc := NewMessageService(mockMessages, &limit)

	history := []domain.Message{{
		ID:          uuid.New(),
		SenderID:    "alice",
		RecipientID: "bob",
		Content:     "hello",
		MessageType: domain.DefaultMessageType,
		At:          time.Now().UTC(),
	}}

	mockMessages.EXPECT().
		GetConversation("alice", "bob", &limit).
		Return(history, nil).
		Times(1)

	messages, err := svc.GetConversation("alice", "bob")

	req.NoError(err)
	req.Equal(history, messages)
}

func TestMessageService_No_Limit_Means_Full_History(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockMessages := mocks.NewMockIMessageRepository(ctrl)
	svc := NewMessageService(mockMessages, nil)

	mockMessages.EXPECT().
		GetConversation("alice", "bob", (*int)(nil)).
		Return(nil, nil).
		Times(1)

	_, err := svc.GetConversation("alice", "bob")
	req.NoError(err)
}

package telegram

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomock "go.uber.org/mock/gomock"
)

func NewMock(t *testing.T, channel string) (*Client, *MockBotAPI) {
	ctrl := gomock.NewController(t)
	bot := NewMockBotAPI(ctrl)
	client, err := NewWithBot(bot, channel, 0, 0)
	require.NoError(t, err)
	return client, bot
}

func TestParseChannel(t *testing.T) {
	tests := []struct {
		name     string
		channel  string
		expected tgbotapi.ChatConfigWithUser
		err      bool
	}{
		{name: "Username", channel: "@refchannel", expected: tgbotapi.ChatConfigWithUser{SuperGroupUsername: "@refchannel"}},
		{name: "Numeric id", channel: "-1001234567890", expected: tgbotapi.ChatConfigWithUser{ChatID: -1001234567890}},
		{name: "Empty", channel: "", err: true},
		{name: "Bare at sign", channel: "@", err: true},
		{name: "Garbage", channel: "refchannel", err: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chat, err := parseChannel(tt.channel)
			if tt.err {
				assert.ErrorIs(t, err, ErrInvalidChannel)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, chat)
		})
	}
}

func TestClient_IsMember(t *testing.T) {
	tests := []struct {
		name      string
		member    tgbotapi.ChatMember
		botErr    error
		expected  bool
		expectErr bool
	}{
		{name: "Creator", member: tgbotapi.ChatMember{Status: "creator"}, expected: true},
		{name: "Administrator", member: tgbotapi.ChatMember{Status: "administrator"}, expected: true},
		{name: "Member", member: tgbotapi.ChatMember{Status: "member"}, expected: true},
		{name: "Restricted but still in chat", member: tgbotapi.ChatMember{Status: "restricted", IsMember: true}, expected: true},
		{name: "Restricted and gone", member: tgbotapi.ChatMember{Status: "restricted"}, expected: false},
		{name: "Left", member: tgbotapi.ChatMember{Status: "left"}, expected: false},
		{name: "Kicked", member: tgbotapi.ChatMember{Status: "kicked"}, expected: false},
		{name: "Api error", botErr: errors.New("Bad Request: user not found"), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, bot := NewMock(t, "@refchannel")
			bot.EXPECT().GetChatMember(tgbotapi.GetChatMemberConfig{
				ChatConfigWithUser: tgbotapi.ChatConfigWithUser{SuperGroupUsername: "@refchannel", UserID: 42},
			}).Return(tt.member, tt.botErr)

			member, err := client.IsMember(context.Background(), 42)
			if tt.expectErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, member)
		})
	}
}

func TestClient_IsMemberPaced(t *testing.T) {
	ctrl := gomock.NewController(t)
	bot := NewMockBotAPI(ctrl)
	client, err := NewWithBot(bot, "-100", time.Hour, 0)
	require.NoError(t, err)

	bot.EXPECT().GetChatMember(gomock.Any()).Return(tgbotapi.ChatMember{Status: "member"}, nil).Times(1)

	member, err := client.IsMember(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, member)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.IsMember(ctx, 2)
	assert.Error(t, err)
}

func TestClient_SendMessage(t *testing.T) {
	client, bot := NewMock(t, "@refchannel")

	bot.EXPECT().Send(tgbotapi.NewMessage(42, "hello")).Return(tgbotapi.Message{MessageID: 1}, nil)
	assert.NoError(t, client.SendMessage(context.Background(), 42, "hello"))

	bot.EXPECT().Send(gomock.Any()).Return(tgbotapi.Message{}, errors.New("Forbidden: bot was blocked by the user"))
	assert.Error(t, client.SendMessage(context.Background(), 42, "hello"))
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
	"go.uber.org/zap"

	"github.com/GlebRadaev/refledger/internal/config"
)

var ErrInvalidChannel = errors.New("channel must be @username or numeric chat id")

type BotAPI interface {
	GetChatMember(config tgbotapi.GetChatMemberConfig) (tgbotapi.ChatMember, error)
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Client is the membership oracle and outbound messenger. Each direction
// has its own limiter so sweep checks and notifications are paced
// independently.
type Client struct {
	bot          BotAPI
	channel      tgbotapi.ChatConfigWithUser
	checkLimiter *rate.Limiter
	sendLimiter  *rate.Limiter
}

func New(cfg *config.Config, httpClient tgbotapi.HTTPClient) (*Client, error) {
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.BotToken, tgbotapi.APIEndpoint, httpClient)
	if err != nil {
		return nil, fmt.Errorf("can't create bot api: %w", err)
	}
	zap.L().Info("authorized on telegram", zap.String("bot", bot.Self.UserName))
	return NewWithBot(bot, cfg.ChannelID, cfg.SweepCheckInterval, cfg.NotifySendInterval)
}

func NewWithBot(bot BotAPI, channel string, checkEvery, sendEvery time.Duration) (*Client, error) {
	chat, err := parseChannel(channel)
	if err != nil {
		return nil, err
	}
	return &Client{
		bot:          bot,
		channel:      chat,
		checkLimiter: newLimiter(checkEvery),
		sendLimiter:  newLimiter(sendEvery),
	}, nil
}

func newLimiter(every time.Duration) *rate.Limiter {
	if every <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(every), 1)
}

func parseChannel(channel string) (tgbotapi.ChatConfigWithUser, error) {
	channel = strings.TrimSpace(channel)
	if strings.HasPrefix(channel, "@") && len(channel) > 1 {
		return tgbotapi.ChatConfigWithUser{SuperGroupUsername: channel}, nil
	}
	id, err := strconv.ParseInt(channel, 10, 64)
	if err != nil {
		return tgbotapi.ChatConfigWithUser{}, fmt.Errorf("%w: %q", ErrInvalidChannel, channel)
	}
	return tgbotapi.ChatConfigWithUser{ChatID: id}, nil
}

// IsMember reports whether the user currently belongs to the channel.
// Errors are returned as is; callers pick their own default.
func (c *Client) IsMember(ctx context.Context, telegramID int64) (bool, error) {
	if err := c.checkLimiter.Wait(ctx); err != nil {
		return false, err
	}

	chat := c.channel
	chat.UserID = telegramID
	member, err := c.bot.GetChatMember(tgbotapi.GetChatMemberConfig{ChatConfigWithUser: chat})
	if err != nil {
		return false, fmt.Errorf("get chat member %d: %w", telegramID, err)
	}

	switch member.Status {
	case "creator", "administrator", "member":
		return true, nil
	case "restricted":
		return member.IsMember, nil
	default:
		return false, nil
	}
}

func (c *Client) SendMessage(ctx context.Context, telegramID int64, text string) error {
	if err := c.sendLimiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := c.bot.Send(tgbotapi.NewMessage(telegramID, text)); err != nil {
		return fmt.Errorf("send message to %d: %w", telegramID, err)
	}
	return nil
}

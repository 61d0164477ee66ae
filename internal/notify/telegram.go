package notify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/example/habitbot/internal/logger"
)

// sendTimeout bounds every delivery attempt. There is no retry here; a
// failed reminder is simply reattempted on the next day's matching tick.
const sendTimeout = 10 * time.Second

// ErrorKind classifies a failed send. The scheduler tallies every kind the
// same way but logs it for diagnosis.
type ErrorKind string

const (
	KindUnauthenticated ErrorKind = "unauthenticated"
	KindTimeout         ErrorKind = "timeout"
	KindRequestFailed   ErrorKind = "request_failed"
	KindUnknown         ErrorKind = "unknown"
)

// SendError is a classified transport failure.
type SendError struct {
	Kind ErrorKind
	Code int    // HTTP/API status for request_failed
	Body string // API error description, if any
	Err  error  // underlying error, if any
}

func (e *SendError) Error() string {
	switch e.Kind {
	case KindRequestFailed:
		return fmt.Sprintf("telegram send failed: %d - %s", e.Code, e.Body)
	case KindUnauthenticated:
		return "telegram transport is not authenticated"
	case KindTimeout:
		return "telegram send timed out"
	default:
		if e.Err != nil {
			return fmt.Sprintf("telegram send failed: %v", e.Err)
		}
		return "telegram send failed"
	}
}

func (e *SendError) Unwrap() error {
	return e.Err
}

// KindOf extracts the classification from a send error, for logging.
func KindOf(err error) ErrorKind {
	var sendErr *SendError
	if errors.As(err, &sendErr) {
		return sendErr.Kind
	}
	return KindUnknown
}

// TelegramTransport delivers formatted text to a Telegram chat. The
// credential is injected at construction; a missing or rejected token is
// reported once here, and every subsequent Send fails with
// KindUnauthenticated without touching the network.
type TelegramTransport struct {
	api *tgbotapi.BotAPI
}

// NewTelegramTransport builds the transport. An empty token is a
// misconfiguration, not a fatal error: the process keeps running and the
// scheduler tallies the failures.
func NewTelegramTransport(token string) *TelegramTransport {
	if token == "" {
		logger.Error("telegram bot token not configured, all sends will fail")
		return &TelegramTransport{}
	}

	api, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, &http.Client{Timeout: sendTimeout})
	if err != nil {
		logger.Error("telegram authentication failed, all sends will fail", "error", err)
		return &TelegramTransport{}
	}
	return &TelegramTransport{api: api}
}

// Send delivers text to the chat identified by addr. The attempt is bounded
// by sendTimeout through the underlying HTTP client.
func (t *TelegramTransport) Send(ctx context.Context, addr, text string) error {
	if t.api == nil {
		return &SendError{Kind: KindUnauthenticated}
	}
	if err := ctx.Err(); err != nil {
		return &SendError{Kind: KindTimeout, Err: err}
	}

	chatID, err := strconv.ParseInt(addr, 10, 64)
	if err != nil {
		return &SendError{Kind: KindUnknown, Err: fmt.Errorf("invalid chat ID %q: %v", addr, err)}
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = t.api.Send(msg)
	return classify(err)
}

// classify maps an error from the Telegram client onto a SendError kind.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized {
			return &SendError{Kind: KindUnauthenticated, Code: apiErr.Code, Body: apiErr.Message, Err: err}
		}
		return &SendError{Kind: KindRequestFailed, Code: apiErr.Code, Body: apiErr.Message, Err: err}
	}

	var urlErr *url.Error
	if errors.Is(err, context.DeadlineExceeded) || os.IsTimeout(err) ||
		(errors.As(err, &urlErr) && urlErr.Timeout()) {
		return &SendError{Kind: KindTimeout, Err: err}
	}

	return &SendError{Kind: KindUnknown, Err: err}
}

package notify

import (
	"context"
	"errors"
	"net/url"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

func TestUnconfiguredTransportFailsUnauthenticated(t *testing.T) {
	transport := NewTelegramTransport("")

	err := transport.Send(context.Background(), "12345", "hello")
	require.Error(t, err)

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, KindUnauthenticated, sendErr.Kind)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	cases := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"api error", &tgbotapi.Error{Code: 400, Message: "Bad Request: chat not found"}, KindRequestFailed},
		{"unauthorized", &tgbotapi.Error{Code: 401, Message: "Unauthorized"}, KindUnauthenticated},
		{"deadline", context.DeadlineExceeded, KindTimeout},
		{"url timeout", &url.Error{Op: "Post", URL: "https://api.telegram.org", Err: timeoutError{}}, KindTimeout},
		{"anything else", errors.New("connection refused"), KindUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := classify(tc.err)
			var sendErr *SendError
			require.ErrorAs(t, err, &sendErr)
			assert.Equal(t, tc.want, sendErr.Kind)
		})
	}
}

func TestClassifyKeepsStatusAndBody(t *testing.T) {
	err := classify(&tgbotapi.Error{Code: 403, Message: "Forbidden: bot was blocked by the user"})

	var sendErr *SendError
	require.ErrorAs(t, err, &sendErr)
	assert.Equal(t, 403, sendErr.Code)
	assert.Contains(t, sendErr.Body, "blocked")
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindTimeout, KindOf(&SendError{Kind: KindTimeout}))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

package notify

import (
	"errors"
	"strings"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	args := m.Called(c)
	return tgbotapi.Message{}, args.Error(0)
}

func TestTelegramNotify(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.MatchedBy(func(c tgbotapi.Chattable) bool {
		msg, ok := c.(tgbotapi.MessageConfig)
		return ok && msg.ChatID == 42 && msg.Text == "Daily report 2025-03-14"
	})).Return(nil).Once()

	tg := NewTelegramWithSender(sender, 42)
	require.NoError(t, tg.Notify(t.Context(), "Daily report 2025-03-14"))
	sender.AssertExpectations(t)
}

func TestTelegramNotifyError(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(errors.New("forbidden"))

	err := NewTelegramWithSender(sender, 42).Notify(t.Context(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestTelegramNotifySplitsLongText(t *testing.T) {
	sender := &mockSender{}
	sender.On("Send", mock.Anything).Return(nil)

	text := strings.Repeat("line of report text\n", 400)
	require.NoError(t, NewTelegramWithSender(sender, 1).Notify(t.Context(), text))
	sender.AssertNumberOfCalls(t, "Send", 2)
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		n    int
		want []string
	}{
		{"empty", "", 10, nil},
		{"short", "abc", 10, []string{"abc"}},
		{"hard cut", "abcdefgh", 3, []string{"abc", "def", "gh"}},
		{"line break", "abcd\nefghij", 8, []string{"abcd\n", "efghij"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, split(tt.in, tt.n))
		})
	}
}

func TestNewTelegramRequiresToken(t *testing.T) {
	_, err := NewTelegram("", 1)
	assert.Error(t, err)
	_, err = NewTelegram("token", 0)
	assert.Error(t, err)
}

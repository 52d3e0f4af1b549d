package telegram

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier posts messages to a Telegram chat via the bot API. Delivery is
// best-effort: failures are logged and never surfaced to callers. Without a
// token and chat ID it degrades to a no-op.
type Notifier struct {
	token      string
	chatID     string
	baseURL    string
	httpClient *http.Client
	logger     *logrus.Logger
}

func NewNotifier(token, chatID string, logger *logrus.Logger) *Notifier {
	return &Notifier{
		token:      token,
		chatID:     chatID,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// Enabled reports whether credentials are configured.
func (n *Notifier) Enabled() bool {
	return n.token != "" && n.chatID != ""
}

// Notify sends a message, fire-and-forget.
func (n *Notifier) Notify(ctx context.Context, text string) {
	if !n.Enabled() {
		return
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.token)
	form := url.Values{
		"chat_id": {n.chatID},
		"text":    {text},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		n.logger.WithError(err).Error("Failed to build Telegram request")
		return
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logger.WithError(err).Error("Telegram delivery failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		n.logger.WithField("status", resp.StatusCode).Warn("Telegram responded with non-OK status")
	}
}

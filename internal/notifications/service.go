package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"dwfx2pdf/internal/config"
)

const userAgent = "dwfx2pdf/0.1.0"

// Service defines the notification surface exposed to conversion components.
type Service interface {
	NotifyBatchStarted(ctx context.Context, count int) error
	NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error
	NotifyConversionFailed(ctx context.Context, source string, err error) error
	NotifyWatchStarted(ctx context.Context, dir string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

// NewNop returns a service that drops every notification.
func NewNop() Service {
	return noopService{}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyBatchStarted(ctx context.Context, count int) error {
	data := payload{
		title:   "dwfx2pdf - Batch Started",
		message: fmt.Sprintf("Converting %d files", count),
		tags:    []string{"dwfx2pdf", "batch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyBatchCompleted(ctx context.Context, succeeded, failed int, duration time.Duration) error {
	duration = duration.Round(time.Second)
	if duration < 0 {
		duration = 0
	}
	durationText := duration.String()
	if duration == 0 {
		durationText = "0s"
	}

	var title, message string
	if failed == 0 {
		title = "dwfx2pdf - Batch Complete"
		message = fmt.Sprintf("Converted %d files in %s", succeeded, durationText)
	} else {
		title = "dwfx2pdf - Batch Complete (with errors)"
		message = fmt.Sprintf("%d succeeded, %d failed in %s", succeeded, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"dwfx2pdf", "batch", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyConversionFailed(ctx context.Context, source string, err error) error {
	source = strings.TrimSpace(source)

	var builder strings.Builder
	builder.WriteString("Conversion failed")
	if source != "" {
		builder.WriteString(": ")
		builder.WriteString(source)
	}
	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(strings.TrimSpace(err.Error()))
	}

	data := payload{
		title:    "dwfx2pdf - Error",
		message:  builder.String(),
		tags:     []string{"dwfx2pdf", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyWatchStarted(ctx context.Context, dir string) error {
	data := payload{
		title:   "dwfx2pdf - Watching",
		message: fmt.Sprintf("Watching %s for new drawings", strings.TrimSpace(dir)),
		tags:    []string{"dwfx2pdf", "watch", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "dwfx2pdf - Test",
		message:  "Notification system test",
		tags:     []string{"dwfx2pdf", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyBatchStarted(context.Context, int) error { return nil }
func (noopService) NotifyBatchCompleted(context.Context, int, int, time.Duration) error {
	return nil
}
func (noopService) NotifyConversionFailed(context.Context, string, error) error { return nil }
func (noopService) NotifyWatchStarted(context.Context, string) error            { return nil }
func (noopService) TestNotification(context.Context) error                      { return nil }

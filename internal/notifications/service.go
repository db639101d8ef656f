package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/config"
)

const userAgent = "Storyreel/0.1.0"

// Service defines the notification surface exposed to pipeline components.
type Service interface {
	NotifySynthesisComplete(ctx context.Context, storyTitle string, audioSeconds float64) error
	NotifyRenderComplete(ctx context.Context, storyTitle, finalFile string) error
	NotifySegmentsComplete(ctx context.Context, storyTitle string, created, failed int) error
	NotifyQueueStarted(ctx context.Context, count int) error
	NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
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
		enabled:  cfg.Notifications,
	}
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
	enabled  config.Notifications
}

func (n *ntfyService) NotifySynthesisComplete(ctx context.Context, storyTitle string, audioSeconds float64) error {
	if !n.enabled.Synthesis {
		return nil
	}
	storyTitle = strings.TrimSpace(storyTitle)
	data := payload{
		title:   "Storyreel - Narration Ready",
		message: fmt.Sprintf("Narration synthesized: %s (%.0fs)", storyTitle, audioSeconds),
		tags:    []string{"storyreel", "synthesis", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRenderComplete(ctx context.Context, storyTitle, finalFile string) error {
	if !n.enabled.Render {
		return nil
	}
	storyTitle = strings.TrimSpace(storyTitle)
	finalFile = strings.TrimSpace(finalFile)
	message := fmt.Sprintf("Video rendered: %s", storyTitle)
	if finalFile != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, finalFile)
	}
	data := payload{
		title:    "Storyreel - Render Complete",
		message:  message,
		tags:     []string{"storyreel", "render", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifySegmentsComplete(ctx context.Context, storyTitle string, created, failed int) error {
	if !n.enabled.Segmenting {
		return nil
	}
	storyTitle = strings.TrimSpace(storyTitle)
	var message string
	if failed == 0 {
		message = fmt.Sprintf("Cut %d clips from %s", created, storyTitle)
	} else {
		message = fmt.Sprintf("Cut %d clips from %s (%d failed)", created, storyTitle, failed)
	}
	data := payload{
		title:   "Storyreel - Clips Ready",
		message: message,
		tags:    []string{"storyreel", "segments", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueStarted(ctx context.Context, count int) error {
	if !n.enabled.Queue {
		return nil
	}
	data := payload{
		title:   "Storyreel - Queue Started",
		message: fmt.Sprintf("Started processing queue with %d items", count),
		tags:    []string{"storyreel", "queue", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyQueueCompleted(ctx context.Context, processed, failed int, duration time.Duration) error {
	if !n.enabled.Queue {
		return nil
	}
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
		title = "Storyreel - Queue Complete"
		message = fmt.Sprintf("Queue processing complete: %d items processed in %s", processed, durationText)
	} else {
		title = "Storyreel - Queue Complete (with errors)"
		message = fmt.Sprintf("Queue processing complete: %d succeeded, %d failed in %s", processed, failed, durationText)
	}

	data := payload{
		title:   title,
		message: message,
		tags:    []string{"storyreel", "queue", "completed"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.enabled.Errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Storyreel - Error",
		message:  builder.String(),
		tags:     []string{"storyreel", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Storyreel - Test",
		message:  "Notification system test",
		tags:     []string{"storyreel", "test"},
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

func (noopService) NotifySynthesisComplete(context.Context, string, float64) error      { return nil }
func (noopService) NotifyRenderComplete(context.Context, string, string) error          { return nil }
func (noopService) NotifySegmentsComplete(context.Context, string, int, int) error      { return nil }
func (noopService) NotifyQueueStarted(context.Context, int) error                       { return nil }
func (noopService) NotifyQueueCompleted(context.Context, int, int, time.Duration) error { return nil }
func (noopService) NotifyError(context.Context, error, string) error                    { return nil }
func (noopService) TestNotification(context.Context) error                              { return nil }

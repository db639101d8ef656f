package notifications_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"storyreel/internal/config"
	"storyreel/internal/notifications"
)

func TestNewServiceReturnsNoopWhenTopicMissing(t *testing.T) {
	cfg := config.Default()
	cfg.Notifications.NtfyTopic = ""
	svc := notifications.NewService(&cfg)
	if err := svc.NotifyRenderComplete(context.Background(), "Example", "example.mp4"); err != nil {
		t.Fatalf("expected noop notifier to return nil, got %v", err)
	}
}

func TestNtfyServiceFormatsPayloads(t *testing.T) {
	tests := []struct {
		name           string
		notify         func(svc notifications.Service) error
		expectTitle    string
		expectMessage  string
		expectTags     string
		expectPriority string
	}{
		{
			name: "synthesis complete",
			notify: func(svc notifications.Service) error {
				return svc.NotifySynthesisComplete(context.Background(), "The Lost City", 95)
			},
			expectTitle:   "Storyreel - Narration Ready",
			expectMessage: "Narration synthesized: The Lost City (95s)",
			expectTags:    "storyreel,synthesis,completed",
		},
		{
			name: "render complete",
			notify: func(svc notifications.Service) error {
				return svc.NotifyRenderComplete(context.Background(), "The Lost City", "the_lost_city.mp4")
			},
			expectTitle:    "Storyreel - Render Complete",
			expectMessage:  "Video rendered: The Lost City\nFile: the_lost_city.mp4",
			expectTags:     "storyreel,render,completed",
			expectPriority: "high",
		},
		{
			name: "segments complete with failures",
			notify: func(svc notifications.Service) error {
				return svc.NotifySegmentsComplete(context.Background(), "The Lost City", 3, 1)
			},
			expectTitle:   "Storyreel - Clips Ready",
			expectMessage: "Cut 3 clips from The Lost City (1 failed)",
			expectTags:    "storyreel,segments,completed",
		},
		{
			name: "queue started",
			notify: func(svc notifications.Service) error {
				return svc.NotifyQueueStarted(context.Background(), 4)
			},
			expectTitle:   "Storyreel - Queue Started",
			expectMessage: "Started processing queue with 4 items",
			expectTags:    "storyreel,queue,started",
		},
		{
			name: "error",
			notify: func(svc notifications.Service) error {
				return svc.NotifyError(context.Background(), errors.New("synthesis produced no audio"), "synthesis")
			},
			expectTitle:    "Storyreel - Error",
			expectMessage:  "Error with synthesis: synthesis produced no audio",
			expectTags:     "storyreel,error,alert",
			expectPriority: "high",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var captured struct {
				title    string
				tags     string
				priority string
				body     string
			}

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Fatalf("unexpected method: %s", r.Method)
				}
				captured.title = r.Header.Get("Title")
				captured.tags = r.Header.Get("Tags")
				captured.priority = r.Header.Get("Priority")
				body, err := io.ReadAll(r.Body)
				if err != nil {
					t.Fatalf("read body: %v", err)
				}
				captured.body = string(body)
				_ = r.Body.Close()
				w.WriteHeader(http.StatusOK)
			}))
			defer server.Close()

			cfg := config.Default()
			cfg.Notifications.NtfyTopic = server.URL
			cfg.Notifications.RequestTimeout = 5

			svc := notifications.NewService(&cfg)
			if err := tc.notify(svc); err != nil {
				t.Fatalf("notification returned error: %v", err)
			}

			if captured.title != tc.expectTitle {
				t.Fatalf("expected title %q, got %q", tc.expectTitle, captured.title)
			}
			if captured.body != tc.expectMessage {
				t.Fatalf("expected message %q, got %q", tc.expectMessage, captured.body)
			}
			if captured.tags != tc.expectTags {
				t.Fatalf("expected tags %q, got %q", tc.expectTags, captured.tags)
			}
			if captured.priority != tc.expectPriority {
				t.Fatalf("expected priority %q, got %q", tc.expectPriority, captured.priority)
			}
		})
	}
}

func TestNtfyServiceHonorsCategoryToggles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("unexpected call for disabled category: %s", r.URL.String())
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL
	cfg.Notifications.Synthesis = false
	cfg.Notifications.Render = false
	cfg.Notifications.Segmenting = false
	cfg.Notifications.Queue = false
	cfg.Notifications.Errors = false

	svc := notifications.NewService(&cfg)
	ctx := context.Background()
	if err := svc.NotifySynthesisComplete(ctx, "Story", 10); err != nil {
		t.Fatalf("expected nil for disabled synthesis notification, got %v", err)
	}
	if err := svc.NotifyRenderComplete(ctx, "Story", "out.mp4"); err != nil {
		t.Fatalf("expected nil for disabled render notification, got %v", err)
	}
	if err := svc.NotifySegmentsComplete(ctx, "Story", 3, 0); err != nil {
		t.Fatalf("expected nil for disabled segment notification, got %v", err)
	}
	if err := svc.NotifyQueueStarted(ctx, 1); err != nil {
		t.Fatalf("expected nil for disabled queue notification, got %v", err)
	}
	if err := svc.NotifyError(ctx, errors.New("boom"), "render"); err != nil {
		t.Fatalf("expected nil for disabled error notification, got %v", err)
	}
}

func TestNtfyServiceReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer server.Close()

	cfg := config.Default()
	cfg.Notifications.NtfyTopic = server.URL

	svc := notifications.NewService(&cfg)
	if err := svc.TestNotification(context.Background()); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

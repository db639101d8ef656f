package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"storyreel/internal/timeline"
)

func TestRenderArgsLoopsBackgroundAndCutsToAudio(t *testing.T) {
	args, err := renderArgs(RenderRequest{
		BackgroundPath: "/media/bg.mp4",
		AudioPath:      "/work/story.wav",
		OutputPath:     "/out/story.mp4",
		AudioSeconds:   95.5,
	})
	if err != nil {
		t.Fatalf("renderArgs returned error: %v", err)
	}
	for _, want := range [][]string{
		{"-stream_loop", "-1"},
		{"-i", "/media/bg.mp4"},
		{"-i", "/work/story.wav"},
		{"-t", "95.500"},
	} {
		if !containsSequence(args, want) {
			t.Fatalf("args missing %v: %v", want, args)
		}
	}
	if args[len(args)-1] != "/out/story.mp4" {
		t.Fatalf("expected output path last, got %v", args)
	}
	if slices.Contains(args, "-vf") {
		t.Fatalf("expected no filter without cues: %v", args)
	}
}

func TestRenderArgsValidation(t *testing.T) {
	base := RenderRequest{
		BackgroundPath: "/media/bg.mp4",
		AudioPath:      "/work/story.wav",
		OutputPath:     "/out/story.mp4",
		AudioSeconds:   10,
	}
	cases := []struct {
		name   string
		mutate func(*RenderRequest)
	}{
		{"missing background", func(r *RenderRequest) { r.BackgroundPath = "" }},
		{"missing audio", func(r *RenderRequest) { r.AudioPath = "" }},
		{"missing output", func(r *RenderRequest) { r.OutputPath = "" }},
		{"zero duration", func(r *RenderRequest) { r.AudioSeconds = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base
			tc.mutate(&req)
			if _, err := renderArgs(req); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestCaptionFilterWindowsEachCue(t *testing.T) {
	cues := []timeline.Cue{
		{Chunk: timeline.Chunk{Content: "First line."}, Start: 0, End: 4},
		{Chunk: timeline.Chunk{Content: "Second line."}, Start: 4, End: 9.5},
	}
	filter := captionFilter(cues, CaptionStyle{FontSize: 40, BottomMargin: 60, VideoWidth: 1280})
	if got := strings.Count(filter, "drawtext="); got != 2 {
		t.Fatalf("expected 2 drawtext filters, got %d: %s", got, filter)
	}
	for _, want := range []string{
		"enable='between(t,0.000,4.000)'",
		"enable='between(t,4.000,9.500)'",
		"fontsize=40",
		"y=h-text_h-60",
		"x=(w-text_w)/2",
	} {
		if !strings.Contains(filter, want) {
			t.Fatalf("filter missing %q: %s", want, filter)
		}
	}
}

func TestCaptionFilterEscapesSpecialCharacters(t *testing.T) {
	cues := []timeline.Cue{
		{Chunk: timeline.Chunk{Content: "It's 100% done: yes, really."}, Start: 0, End: 3},
	}
	filter := captionFilter(cues, CaptionStyle{})
	for _, want := range []string{`\\\'`, `\%`, `\:`, `\,`} {
		if !strings.Contains(filter, want) {
			t.Fatalf("filter missing escape %q: %s", want, filter)
		}
	}
}

func TestClipArgsRejectsEmptyRange(t *testing.T) {
	if _, err := clipArgs("/out/story.mp4", 30, 30, "/out/clip.mp4"); err == nil {
		t.Fatal("expected error for empty range")
	}
	if _, err := clipArgs("/out/story.mp4", 30, 20, "/out/clip.mp4"); err == nil {
		t.Fatal("expected error for inverted range")
	}
}

func TestSegmentPathNaming(t *testing.T) {
	video := filepath.Join("/out", "my_story.mp4")
	if got, want := SegmentsDir(video), filepath.Join("/out", "my_story_segments"); got != want {
		t.Fatalf("SegmentsDir = %q, want %q", got, want)
	}
	if got, want := SegmentPath(video, 1), filepath.Join("/out", "my_story_segments", "my_story_segment_01.mp4"); got != want {
		t.Fatalf("SegmentPath(1) = %q, want %q", got, want)
	}
	if got, want := SegmentPath(video, 12), filepath.Join("/out", "my_story_segments", "my_story_segment_12.mp4"); got != want {
		t.Fatalf("SegmentPath(12) = %q, want %q", got, want)
	}
}

type fakeClient struct {
	failRanges map[int]bool
	extracted  []string
}

func (f *fakeClient) RenderWithCaptions(ctx context.Context, req RenderRequest) error {
	return nil
}

func (f *fakeClient) ExtractClip(ctx context.Context, videoPath string, start, end float64, outputPath string) error {
	for index, fail := range f.failRanges {
		if strings.Contains(outputPath, fmt.Sprintf("_segment_%02d", index)) && fail {
			return fmt.Errorf("clip %d failed", index)
		}
	}
	f.extracted = append(f.extracted, outputPath)
	return nil
}

func TestExtractSegmentsKeepsSiblingsOnFailure(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "story.mp4")
	plan, err := timeline.PlanSegments(95, 30, 3)
	if err != nil {
		t.Fatalf("PlanSegments returned error: %v", err)
	}

	client := &fakeClient{failRanges: map[int]bool{2: true}}
	result, err := ExtractSegments(context.Background(), client, video, plan)
	if err != nil {
		t.Fatalf("ExtractSegments returned error: %v", err)
	}
	if result.Complete() {
		t.Fatal("expected incomplete result")
	}
	if len(result.Created) != 3 {
		t.Fatalf("expected 3 created clips, got %v", result.Created)
	}
	if len(result.Failures) != 1 {
		t.Fatalf("expected 1 failure, got %v", result.Failures)
	}
	failure := result.Failures[0]
	if failure.Range.Index != 2 {
		t.Fatalf("expected failure on segment 2, got %d", failure.Range.Index)
	}
	if !strings.Contains(failure.Reason, "clip 2 failed") {
		t.Fatalf("unexpected failure reason %q", failure.Reason)
	}
	if _, err := os.Stat(result.Dir); err != nil {
		t.Fatalf("segments directory not created: %v", err)
	}
}

func TestExtractSegmentsEmptyPlan(t *testing.T) {
	client := &fakeClient{}
	result, err := ExtractSegments(context.Background(), client, "/out/story.mp4", nil)
	if err != nil {
		t.Fatalf("ExtractSegments returned error: %v", err)
	}
	if len(result.Created) != 0 || len(result.Failures) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
	if len(client.extracted) != 0 {
		t.Fatalf("expected no extraction calls, got %v", client.extracted)
	}
}

func containsSequence(args, want []string) bool {
	for i := 0; i+len(want) <= len(args); i++ {
		if slices.Equal(args[i:i+len(want)], want) {
			return true
		}
	}
	return false
}

package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"storyreel/internal/timeline"
)

// SegmentFailure records one clip that could not be produced.
type SegmentFailure struct {
	Range  timeline.SegmentRange
	Path   string
	Reason string
}

// SegmentResult reports the outcome of a segment extraction run. Clips
// that succeeded are kept even when siblings fail.
type SegmentResult struct {
	Dir      string
	Created  []string
	Failures []SegmentFailure
}

// Complete reports whether every planned clip was produced.
func (r SegmentResult) Complete() bool {
	return len(r.Failures) == 0
}

// SegmentsDir returns the directory that holds clips extracted from
// videoPath: a sibling directory named after the video file.
func SegmentsDir(videoPath string) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	return filepath.Join(filepath.Dir(videoPath), stem+"_segments")
}

// SegmentPath returns the output path for the clip with the given
// one-based index.
func SegmentPath(videoPath string, index int) string {
	stem := strings.TrimSuffix(filepath.Base(videoPath), filepath.Ext(videoPath))
	name := fmt.Sprintf("%s_segment_%02d%s", stem, index, filepath.Ext(videoPath))
	return filepath.Join(SegmentsDir(videoPath), name)
}

// ExtractSegments cuts videoPath into the planned ranges. Each clip is
// attempted independently; a failed clip is recorded and extraction
// continues with the remaining ranges.
func ExtractSegments(ctx context.Context, client Client, videoPath string, plan []timeline.SegmentRange) (SegmentResult, error) {
	result := SegmentResult{Dir: SegmentsDir(videoPath)}
	if len(plan) == 0 {
		return result, nil
	}
	if err := os.MkdirAll(result.Dir, 0o755); err != nil {
		return result, fmt.Errorf("create segments directory: %w", err)
	}
	for _, rng := range plan {
		outputPath := SegmentPath(videoPath, rng.Index)
		if err := client.ExtractClip(ctx, videoPath, rng.Start, rng.End, outputPath); err != nil {
			result.Failures = append(result.Failures, SegmentFailure{
				Range:  rng,
				Path:   outputPath,
				Reason: err.Error(),
			})
			continue
		}
		result.Created = append(result.Created, outputPath)
	}
	return result, nil
}

package stage

import (
	"os"
	"strings"

	"storyreel/internal/services"
)

// ReadStoryText loads the story file backing a queue item. Missing or empty
// files return a services.ErrValidation suitable for stage Execute methods.
func ReadStoryText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", services.Wrap(
			services.ErrValidation, "stage", "read story",
			"Story file missing or unreadable; check the stories directory", err)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", services.Wrap(
			services.ErrValidation, "stage", "read story",
			"Story file is empty; add narration text before queueing", nil)
	}
	return text, nil
}

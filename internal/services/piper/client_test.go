package piper

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
)

func stubCommand(t *testing.T, script string) *[][]string {
	t.Helper()

	dir := t.TempDir()
	stub := filepath.Join(dir, "piper-stub")
	if err := os.WriteFile(stub, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	var calls [][]string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		calls = append(calls, append([]string{name}, args...))
		return exec.CommandContext(ctx, stub, args...)
	}
	t.Cleanup(func() {
		commandContext = original
	})
	return &calls
}

func TestNewCLIOptions(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/piper/piper"), WithVoiceModel("/voices/en.onnx"), WithCUDA(true))
	if cli.binary != "/opt/piper/piper" {
		t.Fatalf("binary override not applied: %q", cli.binary)
	}
	if cli.voiceModel != "/voices/en.onnx" {
		t.Fatalf("voice model not applied: %q", cli.voiceModel)
	}
	if !cli.tryCUDA {
		t.Fatal("CUDA flag not applied")
	}
}

func TestSynthesizeRequiresTextAndOutput(t *testing.T) {
	cli := NewCLI()
	if err := cli.Synthesize(context.Background(), "", "/tmp/out.wav"); err == nil {
		t.Fatal("expected error for empty text")
	}
	if err := cli.Synthesize(context.Background(), "hello", ""); err == nil {
		t.Fatal("expected error for empty output path")
	}
}

func TestSynthesizeWritesOutput(t *testing.T) {
	// Stub emulates piper: writes the -f argument file and exits 0.
	script := `#!/bin/sh
while [ $# -gt 0 ]; do
  if [ "$1" = "-f" ]; then out="$2"; fi
  shift
done
cat > /dev/null
printf 'RIFF' > "$out"
`
	calls := stubCommand(t, script)

	out := filepath.Join(t.TempDir(), "story.wav")
	cli := NewCLI(WithVoiceModel("/voices/en.onnx"))
	if err := cli.Synthesize(context.Background(), "A quiet night.", out); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("expected output file: %v", err)
	}

	if len(*calls) != 1 {
		t.Fatalf("expected 1 invocation, got %d", len(*calls))
	}
	args := (*calls)[0]
	joined := ""
	for _, a := range args {
		joined += a + " "
	}
	for _, want := range []string{"-m", "/voices/en.onnx", "-f", out} {
		found := false
		for _, a := range args {
			if a == want {
				found = true
			}
		}
		if !found {
			t.Fatalf("missing arg %q in %q", want, joined)
		}
	}
}

func TestSynthesizeFallsBackToCPU(t *testing.T) {
	// Stub fails when --cuda is present, succeeds otherwise.
	script := `#!/bin/sh
out=""
cuda=0
while [ $# -gt 0 ]; do
  if [ "$1" = "-f" ]; then out="$2"; fi
  if [ "$1" = "--cuda" ]; then cuda=1; fi
  shift
done
cat > /dev/null
if [ "$cuda" = "1" ]; then exit 1; fi
printf 'RIFF' > "$out"
`
	calls := stubCommand(t, script)

	out := filepath.Join(t.TempDir(), "story.wav")
	cli := NewCLI(WithCUDA(true))
	if err := cli.Synthesize(context.Background(), "A quiet night.", out); err != nil {
		t.Fatalf("Synthesize with fallback: %v", err)
	}

	if len(*calls) != 2 {
		t.Fatalf("expected GPU then CPU attempts, got %d calls", len(*calls))
	}
	firstHasCUDA := false
	for _, a := range (*calls)[0] {
		if a == "--cuda" {
			firstHasCUDA = true
		}
	}
	if !firstHasCUDA {
		t.Fatalf("first attempt should request CUDA: %v", (*calls)[0])
	}
	for _, a := range (*calls)[1] {
		if a == "--cuda" {
			t.Fatalf("fallback attempt should not request CUDA: %v", (*calls)[1])
		}
	}
}

func TestSynthesizeReportsFailure(t *testing.T) {
	script := `#!/bin/sh
cat > /dev/null
echo "no voice model" >&2
exit 3
`
	stubCommand(t, script)

	cli := NewCLI()
	err := cli.Synthesize(context.Background(), "A quiet night.", filepath.Join(t.TempDir(), "out.wav"))
	if err == nil {
		t.Fatal("expected synthesis failure")
	}
}

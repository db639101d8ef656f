package main

import (
	"testing"
)

func TestRootShowsHelp(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, nil, env.configPath)
	if err != nil {
		t.Fatalf("root help: %v", err)
	}
	requireContains(t, out, "storyreel")
	requireContains(t, out, "Available Commands")
}

func TestUnknownCommandFails(t *testing.T) {
	env := setupCLITestEnv(t)

	if _, _, err := runCLI(t, []string{"frobnicate"}, env.configPath); err == nil {
		t.Fatal("expected error for unknown command")
	}
}

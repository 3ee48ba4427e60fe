package proto

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hailam/stackplay/internal/engine"
)

// runScript feeds commands to a handler and returns the response lines.
func runScript(t *testing.T, script string) []string {
	t.Helper()
	var out bytes.Buffer
	h := New(engine.NewEngine(engine.DefaultScoreParams()), strings.NewReader(script), &out)
	h.Run()
	h.Wait()

	var lines []string
	for _, l := range strings.Split(out.String(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func TestRuleset(t *testing.T) {
	lines := runScript(t, "ruleset\nquit\n")
	if len(lines) != 1 || lines[0] != "ruleset srs" {
		t.Fatalf("Unexpected response %v", lines)
	}
}

func TestPositionErrors(t *testing.T) {
	cases := map[string]string{
		"position queue LTJI\nquit\n": "error position needs rows",
		"position rows x..|..\nquit\n": "error ragged rows",
		"position rows ... queue LA\nquit\n": "error unknown piece A",
		"position rows ... hold Q\nquit\n": "error unknown piece Q",
		"bogus\nquit\n": `error unknown command "bogus"`,
	}
	for script, want := range cases {
		lines := runScript(t, script)
		if len(lines) != 1 || lines[0] != want {
			t.Errorf("Script %q: got %v, want %q", script, lines, want)
		}
	}
}

func TestPositionAndGo(t *testing.T) {
	script := "position rows xxxx.|xxxx. queue I\ngo depth 1\nquit\n"
	lines := runScript(t, script)

	if len(lines) < 3 {
		t.Fatalf("Expected ok, suggestion(s), done; got %v", lines)
	}
	if lines[0] != "ok" {
		t.Errorf("First response %q, want ok", lines[0])
	}
	if lines[len(lines)-1] != "done" {
		t.Errorf("Last response %q, want done", lines[len(lines)-1])
	}

	sawSuggestion := false
	for _, l := range lines {
		if strings.HasPrefix(l, "suggestion ") {
			sawSuggestion = true
		}
	}
	if !sawSuggestion {
		t.Errorf("No suggestion in %v", lines)
	}
}

func TestShow(t *testing.T) {
	lines := runScript(t, "position rows x..|.x. queue T\nshow\nquit\n")
	if len(lines) != 3 || lines[0] != "ok" || lines[1] != "x.." || lines[2] != ".x." {
		t.Fatalf("Unexpected response %v", lines)
	}
}

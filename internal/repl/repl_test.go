package repl

import (
	"bytes"
	"strings"
	"testing"
)

func TestUCIHandshake(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)
	r.Run(strings.NewReader("uci\nisready\nquit\n"))

	got := out.String()
	for _, want := range []string{"uciok", "readyok"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q: %s", want, got)
		}
	}
}

func TestPositionAndPerft(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)
	r.Run(strings.NewReader("position startpos\ngo perft depth 3 speed\nquit\n"))

	got := out.String()
	if !strings.Contains(got, "Nodes: 8902") {
		t.Errorf("expected perft depth 3 to report 8902 nodes, got: %s", got)
	}
}

func TestPositionWithMoves(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)
	r.Run(strings.NewReader("position startpos moves e2e4 e7e5\nprint\nquit\n"))

	got := out.String()
	if !strings.Contains(got, "Side to move: White") {
		t.Errorf("expected side to move White after e2e4 e7e5, got: %s", got)
	}
}

func TestQuitReturnsZero(t *testing.T) {
	var out bytes.Buffer
	r := New(&out)
	code := r.Run(strings.NewReader("quit\n"))
	if code != 0 {
		t.Errorf("expected exit code 0, got %d", code)
	}
}

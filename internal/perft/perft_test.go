package perft

import (
	"bytes"
	"strings"
	"testing"

	"github.com/hailam/corechess/internal/board"
)

func TestRunStartingPosition(t *testing.T) {
	pos := board.NewPosition()
	result := Run(pos, 4)
	if result.Got != 197281 {
		t.Errorf("Run(depth 4) = %d, want 197281", result.Got)
	}
	if !result.Passed() {
		t.Error("Result.Passed() should be true when Expected == Got")
	}
}

func TestDivideSumsToTotal(t *testing.T) {
	pos := board.NewPosition()
	breakdown, total := Divide(pos, 3)

	var sum int64
	for _, mc := range breakdown {
		sum += mc.Nodes
	}
	if sum != total {
		t.Errorf("breakdown sums to %d, total is %d", sum, total)
	}
	if total != 8902 {
		t.Errorf("Divide(depth 3) total = %d, want 8902", total)
	}
}

func TestRunSuitePassAndFail(t *testing.T) {
	epd := strings.Join([]string{
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 ;D1 20 ;D2 400",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 ;D1 21",
	}, "\n")

	var out bytes.Buffer
	summary := RunSuite(strings.NewReader(epd), &out)

	if summary.Total != 3 {
		t.Fatalf("expected 3 cases, got %d", summary.Total)
	}
	if summary.Passes != 2 {
		t.Errorf("expected 2 passes, got %d", summary.Passes)
	}
	if summary.Fails != 1 {
		t.Errorf("expected 1 fail, got %d", summary.Fails)
	}
}

func TestRunSuiteSkipsMalformedLines(t *testing.T) {
	epd := strings.Join([]string{
		"not a valid line at all",
		"rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1 ;D1 20",
	}, "\n")

	var out bytes.Buffer
	summary := RunSuite(strings.NewReader(epd), &out)

	if summary.Total != 1 {
		t.Errorf("expected the malformed line to be skipped, got %d total cases", summary.Total)
	}
	if summary.Passes != 1 {
		t.Errorf("expected 1 pass, got %d", summary.Passes)
	}
}

// Package perft implements recursive legal-move subtree counting and an
// EPD-driven correctness/performance suite runner.
package perft

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/op/go-logging"

	"github.com/hailam/corechess/internal/board"
)

// ANSI color codes for suite PASS/FAIL lines, matching the raw escape
// sequences the reference perft suite driver writes directly (it has no
// color library dependency of its own).
const (
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiReset = "\033[0m"
)

var log = logging.MustGetLogger("perft")

// Divide runs perft to the given depth and returns the per-root-move node
// counts alongside the total, mirroring the "speed=false" per-move breakdown
// of the reference suite driver.
func Divide(pos *board.Position, depth int) (breakdown []MoveCount, total int64) {
	moves := pos.GenerateLegalMoves()
	if depth <= 1 {
		breakdown = make([]MoveCount, moves.Len())
		for i := 0; i < moves.Len(); i++ {
			breakdown[i] = MoveCount{Move: moves.Get(i), Nodes: 1}
		}
		return breakdown, int64(moves.Len())
	}

	breakdown = make([]MoveCount, 0, moves.Len())
	for i := 0; i < moves.Len(); i++ {
		m := moves.Get(i)
		undo := pos.MakeMove(m)
		nodes := pos.PerftCount(depth - 1)
		pos.UnmakeMove(m, undo)
		breakdown = append(breakdown, MoveCount{Move: m, Nodes: nodes})
		total += nodes
	}
	return breakdown, total
}

// MoveCount pairs a root move with the size of its perft subtree.
type MoveCount struct {
	Move  board.Move
	Nodes int64
}

// Result is the outcome of running perft on a single position to a single depth.
type Result struct {
	FEN      string
	Depth    int
	Expected int64
	Got      int64
	Elapsed  time.Duration
}

// Passed reports whether the observed node count matched the expected one.
func (r Result) Passed() bool {
	return r.Got == r.Expected
}

// NPS returns nodes searched per second for this result.
func (r Result) NPS() float64 {
	seconds := r.Elapsed.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(r.Got) / seconds
}

// Run executes perft for a single FEN/depth pair, without any expected count
// to compare against (used by the "go perft depth <n>" REPL command).
func Run(pos *board.Position, depth int) Result {
	start := time.Now()
	nodes := pos.PerftCount(depth)
	elapsed := time.Since(start)
	return Result{FEN: pos.ToFEN(), Depth: depth, Expected: nodes, Got: nodes, Elapsed: elapsed}
}

// epdCase is one FEN plus the depth/node-count pairs parsed from a single
// EPD suite line: "FEN ;D1 n1 ;D2 n2 ;..."
type epdCase struct {
	fen    string
	depths []int
	counts []int64
}

// parseEPDLine parses a single non-empty EPD suite line. Malformed lines are
// reported to the caller so the suite runner can log and skip them instead
// of aborting the whole file.
func parseEPDLine(line string) (epdCase, error) {
	fields := strings.Split(line, ";")
	if len(fields) < 2 {
		return epdCase{}, fmt.Errorf("missing depth fields")
	}

	var c epdCase
	c.fen = strings.TrimSpace(fields[0])
	if c.fen == "" {
		return epdCase{}, fmt.Errorf("empty FEN")
	}

	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		parts := strings.Fields(f)
		if len(parts) != 2 || !strings.HasPrefix(parts[0], "D") {
			return epdCase{}, fmt.Errorf("malformed depth field: %q", f)
		}
		depth, err := strconv.Atoi(parts[0][1:])
		if err != nil {
			return epdCase{}, fmt.Errorf("invalid depth in %q: %w", f, err)
		}
		nodes, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return epdCase{}, fmt.Errorf("invalid node count in %q: %w", f, err)
		}
		c.depths = append(c.depths, depth)
		c.counts = append(c.counts, nodes)
	}

	if len(c.depths) == 0 {
		return epdCase{}, fmt.Errorf("no depth fields parsed")
	}
	return c, nil
}

// SuiteSummary totals the outcome of an EPD suite run.
type SuiteSummary struct {
	Total      int
	Passes     int
	Fails      int
	TotalTime  time.Duration
	TotalNodes int64
}

// AverageNPS returns the suite-wide average nodes-per-second.
func (s SuiteSummary) AverageNPS() float64 {
	seconds := s.TotalTime.Seconds()
	if seconds <= 0 {
		return 0
	}
	return float64(s.TotalNodes) / seconds
}

// RunSuite reads an EPD perft suite from r and runs every depth/node-count
// case it contains, writing PASS/FAIL lines (colorized to match the
// reference perftsuite driver) to w. Lines that fail to parse are logged
// and skipped rather than aborting the run.
func RunSuite(r io.Reader, w io.Writer) SuiteSummary {
	var summary SuiteSummary
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		c, err := parseEPDLine(line)
		if err != nil {
			log.Warningf("skipping malformed EPD line: %v", err)
			continue
		}

		pos, err := board.ParseFEN(c.fen)
		if err != nil {
			log.Warningf("skipping EPD line with invalid FEN %q: %v", c.fen, err)
			continue
		}

		for i, depth := range c.depths {
			expected := c.counts[i]
			summary.Total++

			start := time.Now()
			nodes := pos.PerftCount(depth)
			elapsed := time.Since(start)

			result := Result{FEN: c.fen, Depth: depth, Expected: expected, Got: nodes, Elapsed: elapsed}
			summary.TotalTime += elapsed
			summary.TotalNodes += nodes

			if result.Passed() {
				summary.Passes++
				fmt.Fprintf(w, "%s#%d D%d Passed: [%s] Expected: %d Got: %d Speed: %.0f NPS%s\n",
					ansiGreen, summary.Total, depth, c.fen, expected, nodes, result.NPS(), ansiReset)
			} else {
				summary.Fails++
				fmt.Fprintf(w, "%s#%d D%d Failed: [%s] Expected: %d Got: %d Speed: %.0f NPS%s\n",
					ansiRed, summary.Total, depth, c.fen, expected, nodes, result.NPS(), ansiReset)
			}
		}
	}

	fmt.Fprintf(w, "Total tests: %d\n", summary.Total)
	fmt.Fprintf(w, "Total passes: %d\n", summary.Passes)
	fmt.Fprintf(w, "Total fails: %d\n", summary.Fails)
	fmt.Fprintf(w, "Total time: %s\n", summary.TotalTime)
	fmt.Fprintf(w, "Average speed: %.0f NPS\n", summary.AverageNPS())

	return summary
}

// RunSuiteFile opens path and runs RunSuite against it, logging and
// returning a zero summary if the file cannot be opened.
func RunSuiteFile(path string, w io.Writer) SuiteSummary {
	f, err := os.Open(path)
	if err != nil {
		log.Errorf("failed to open perft suite %s: %v", path, err)
		fmt.Fprintf(w, "Failed to open file: %s\n", path)
		return SuiteSummary{}
	}
	defer f.Close()

	fmt.Fprintf(w, "Starting perft suite: %s\n", path)
	summary := RunSuite(f, w)
	fmt.Fprintf(w, "Finished perft suite: %s\n", path)
	return summary
}

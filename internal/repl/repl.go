// Package repl implements the minimal text command loop that drives the
// perft engine from stdin, in place of the full UCI search protocol the
// reference program speaks.
package repl

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
	"github.com/hailam/corechess/internal/perft"
)

var log = logging.MustGetLogger("repl")

// REPL is the perft driver's command loop: it owns the current position and
// dispatches the tokens listed in the command surface (uci, isready,
// ucinewgame, position, go perft/perftsuite, print, quit/exit).
type REPL struct {
	position *board.Position
	out      io.Writer
}

// New creates a REPL starting from the standard starting position.
func New(out io.Writer) *REPL {
	return &REPL{
		position: board.NewPosition(),
		out:      out,
	}
}

// Run reads commands from in until EOF or a quit/exit token, then returns
// the process exit code (always 0 on a clean exit per the command surface).
func (r *REPL) Run(in io.Reader) int {
	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]

		switch cmd {
		case "uci":
			r.handleUCI()
		case "isready":
			fmt.Fprintln(r.out, "readyok")
		case "ucinewgame":
			r.position = board.NewPosition()
		case "position":
			r.handlePosition(args)
		case "go":
			r.handleGo(args)
		case "print":
			fmt.Fprintln(r.out, r.position.String())
		case "quit", "exit":
			return 0
		default:
			log.Warningf("unrecognized command: %s", cmd)
		}
	}

	return 0
}

func (r *REPL) handleUCI() {
	fmt.Fprintln(r.out, "id name corechess-perft")
	fmt.Fprintln(r.out, "id author corechess")
	fmt.Fprintln(r.out, "uciok")
}

// handlePosition implements "position startpos|fen <FEN> [moves m1 m2 ...]".
func (r *REPL) handlePosition(args []string) {
	if len(args) == 0 {
		return
	}

	var moveStart int

	switch args[0] {
	case "startpos":
		r.position = board.NewPosition()
		moveStart = 1
	case "fen":
		fenEnd := len(args)
		for i := 1; i < len(args); i++ {
			if args[i] == "moves" {
				fenEnd = i
				break
			}
		}
		pos, err := board.ParseFEN(strings.Join(args[1:fenEnd], " "))
		if err != nil {
			log.Errorf("invalid FEN: %v", err)
			return
		}
		r.position = pos
		moveStart = fenEnd
	default:
		log.Warningf("unrecognized position subcommand: %s", args[0])
		return
	}

	for i := moveStart; i < len(args); i++ {
		if args[i] == "moves" {
			continue
		}
		m, err := board.ParseMove(args[i], r.position)
		if err != nil {
			log.Errorf("invalid move %q: %v", args[i], err)
			return
		}
		r.position.MakeMove(m)
	}
}

// handleGo implements "go perft depth <n> [speed]" and "go perftsuite <path>".
func (r *REPL) handleGo(args []string) {
	if len(args) == 0 {
		return
	}

	switch args[0] {
	case "perft":
		r.handleGoPerft(args[1:])
	case "perftsuite":
		if len(args) < 2 {
			log.Error("go perftsuite requires a file path")
			return
		}
		perft.RunSuiteFile(args[1], r.out)
	default:
		log.Warningf("unrecognized go subcommand: %s", args[0])
	}
}

func (r *REPL) handleGoPerft(args []string) {
	depth := 1
	speed := false

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				d, err := strconv.Atoi(args[i+1])
				if err != nil {
					log.Errorf("invalid perft depth: %v", err)
					return
				}
				depth = d
				i++
			}
		case "speed":
			speed = true
		}
	}

	if speed {
		result := perft.Run(r.position, depth)
		fmt.Fprintf(r.out, "Nodes: %d\n", result.Got)
		fmt.Fprintf(r.out, "Time: %s\n", result.Elapsed)
		fmt.Fprintf(r.out, "NPS: %.0f\n", result.NPS())
		return
	}

	start := time.Now()
	breakdown, total := perft.Divide(r.position, depth)
	elapsed := time.Since(start)

	for _, mc := range breakdown {
		fmt.Fprintf(r.out, "%s: %d\n", mc.Move, mc.Nodes)
	}
	fmt.Fprintf(r.out, "Nodes: %d\n", total)
	fmt.Fprintf(r.out, "Time: %s\n", elapsed)
	if elapsed > 0 {
		fmt.Fprintf(r.out, "NPS: %.0f\n", float64(total)/elapsed.Seconds())
	}
}

// RunStdin runs the REPL against os.Stdin/os.Stdout and returns the process
// exit code.
func RunStdin() int {
	return New(os.Stdout).Run(os.Stdin)
}

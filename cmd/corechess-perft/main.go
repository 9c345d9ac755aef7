// Command corechess-perft runs the perft command loop: a minimal text REPL
// over stdin that drives legal move generation and the EPD perft suite.
package main

import (
	"flag"
	"log"
	"os"
	"runtime/pprof"

	"github.com/hailam/corechess/internal/repl"
)

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to file")

func main() {
	flag.Parse()

	profilePath := *cpuprofile
	if profilePath == "" {
		profilePath = os.Getenv("CPUPROFILE")
	}

	var profileFile *os.File
	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		profileFile = f
		log.Printf("CPU profiling enabled, writing to %s", profilePath)
	}

	code := repl.RunStdin()

	if profileFile != nil {
		pprof.StopCPUProfile()
		profileFile.Close()
	}

	os.Exit(code)
}

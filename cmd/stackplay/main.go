package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"time"

	"github.com/hailam/stackplay/internal/board"
	"github.com/hailam/stackplay/internal/engine"
	"github.com/hailam/stackplay/internal/proto"
	"github.com/hailam/stackplay/internal/storage"
)

var (
	snapshotPath = flag.String("snapshot", "", "analyze a JSON snapshot file and exit")
	protoMode    = flag.Bool("proto", false, "run the line protocol on stdin/stdout")
	depth        = flag.Int("depth", 0, "maximum lookahead depth (0 = preference)")
	moveTime     = flag.Int("movetime", 0, "analysis budget in milliseconds (0 = preference)")
	multi        = flag.Int("multi", 0, "number of suggestions (0 = preference)")
	preset       = flag.String("preset", "", "scoring preset name to load")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to file")
)

// snapshotFile is the on-disk snapshot format: rows are visual, top row
// first, 'x' for occupied cells.
type snapshotFile struct {
	Rows  []string `json:"rows"`
	Queue string   `json:"queue"`
	Hold  string   `json:"hold"`
}

func main() {
	flag.Parse()

	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer pprof.StopCPUProfile()
		log.Printf("CPU profiling enabled, writing to %s", *cpuprofile)
	}

	store, err := storage.New()
	if err != nil {
		log.Printf("Warning: storage unavailable: %v", err)
		store = nil
	} else {
		defer store.Close()
	}

	params := engine.DefaultScoreParams()
	if *preset != "" && store != nil {
		p, found, err := store.LoadPreset(*preset)
		if err != nil {
			log.Fatalf("could not load preset %q: %v", *preset, err)
		}
		if !found {
			log.Printf("Warning: preset %q not found, using defaults", *preset)
		}
		params = p
	}
	eng := engine.NewEngine(params)

	if *protoMode {
		proto.New(eng, os.Stdin, os.Stdout).Run()
		return
	}

	if *snapshotPath == "" {
		fmt.Fprintln(os.Stderr, "usage: stackplay -snapshot file.json | stackplay -proto")
		flag.PrintDefaults()
		os.Exit(2)
	}

	ss, err := loadSnapshot(*snapshotPath)
	if err != nil {
		log.Fatalf("could not load snapshot: %v", err)
	}

	limits := resolveLimits(store)
	start := time.Now()
	suggestions := eng.Analyze(ss, limits)
	elapsed := time.Since(start)

	if len(suggestions) == 0 {
		fmt.Println("no placements available")
		return
	}
	for i, sg := range suggestions {
		fmt.Printf("%d: rating %d depth %d trace %v\n", i+1, sg.Rating, sg.Depth, sg.Trace)
	}

	if store != nil {
		best := suggestions[0]
		err := store.RecordRun(storage.RunResult{
			Nodes:     eng.Nodes(),
			Depth:     best.Depth,
			FoundGoal: best.Rating < 0,
			Duration:  elapsed,
		})
		if err != nil {
			log.Printf("Warning: could not record run: %v", err)
		}
	}
}

// resolveLimits merges the command-line flags over stored preferences.
func resolveLimits(store *storage.Storage) engine.Limits {
	prefs := storage.DefaultPreferences()
	if store != nil {
		p, err := store.LoadPreferences()
		if err == nil {
			prefs = p
		}
	}

	limits := engine.Limits{
		Depth:    prefs.DefaultDepth,
		MoveTime: prefs.DefaultMoveTime,
		Multi:    prefs.MultiPV,
	}
	if *depth > 0 {
		limits.Depth = *depth
	}
	if *moveTime > 0 {
		limits.MoveTime = time.Duration(*moveTime) * time.Millisecond
	}
	if *multi > 0 {
		limits.Multi = *multi
	}
	return limits
}

func loadSnapshot(path string) (engine.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return engine.Snapshot{}, err
	}

	var sf snapshotFile
	if err := json.Unmarshal(data, &sf); err != nil {
		return engine.Snapshot{}, err
	}
	if len(sf.Rows) == 0 {
		return engine.Snapshot{}, fmt.Errorf("snapshot has no rows")
	}
	for _, r := range sf.Rows {
		if len(r) != len(sf.Rows[0]) {
			return engine.Snapshot{}, fmt.Errorf("snapshot rows are ragged")
		}
	}

	ss := engine.Snapshot{
		Matrix: board.ParseMatrix(sf.Rows...),
		Queue:  board.ParseQueue(sf.Queue),
	}
	for _, p := range ss.Queue {
		if !p.Playable() {
			return engine.Snapshot{}, fmt.Errorf("unknown piece %s in queue", p)
		}
	}
	if sf.Hold != "" {
		hold := board.PieceType(sf.Hold[0])
		if !hold.Playable() {
			return engine.Snapshot{}, fmt.Errorf("unknown hold piece %s", hold)
		}
		ss.Hold = hold
	}
	return ss, nil
}

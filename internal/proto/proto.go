// Package proto implements the line protocol frontends use to drive the
// analyzer: plain text commands on stdin, plain text responses on stdout.
package proto

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/hailam/stackplay/internal/board"
	"github.com/hailam/stackplay/internal/engine"
)

// Handler runs the analyzer line protocol. Commands:
//
//	ruleset                          report the active rotation system
//	position rows <r1|r2|...> [queue <pieces>] [hold <p>]
//	go [depth N] [movetime MS] [nodes N] [multi K]
//	stop
//	show
//	quit
//
// Rows are given visually, top row first, 'x' for occupied cells.
// Responses are "ok", "info ...", "suggestion <rating> <depth> <trace>",
// "done", or "error <message>"; ruleset answers "ruleset srs" and show
// prints the matrix rows, top row first.
type Handler struct {
	engine   *engine.Engine
	snapshot engine.Snapshot

	searching  bool
	searchDone chan struct{}

	in  io.Reader
	out io.Writer
}

// New creates a protocol handler reading commands from in and writing
// responses to out.
func New(eng *engine.Engine, in io.Reader, out io.Writer) *Handler {
	return &Handler{
		engine:   eng,
		snapshot: engine.Snapshot{Matrix: board.WithCols(10)},
		in:       in,
		out:      out,
	}
}

// Run processes commands until quit or EOF. It blocks; the caller owns the
// goroutine.
func (h *Handler) Run() {
	scanner := bufio.NewScanner(h.in)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Fields(line)
		cmd := parts[0]
		args := parts[1:]

		switch cmd {
		case "ruleset":
			fmt.Fprintln(h.out, "ruleset srs")
		case "position":
			h.handlePosition(args)
		case "go":
			h.handleGo(args)
		case "stop":
			h.handleStop()
		case "show":
			fmt.Fprintln(h.out, h.snapshot.Matrix.String())
		case "quit":
			h.handleStop()
			return
		default:
			fmt.Fprintf(h.out, "error unknown command %q\n", cmd)
		}
	}
}

// handlePosition parses and sets up a snapshot.
// Format: position rows x..|.x. [queue LTJI] [hold S]
func (h *Handler) handlePosition(args []string) {
	if h.searching {
		fmt.Fprintln(h.out, "error search in progress")
		return
	}

	ss := engine.Snapshot{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "rows":
			if i+1 >= len(args) {
				fmt.Fprintln(h.out, "error rows needs a value")
				return
			}
			rows := strings.Split(args[i+1], "|")
			for _, r := range rows {
				if len(r) != len(rows[0]) {
					fmt.Fprintln(h.out, "error ragged rows")
					return
				}
			}
			ss.Matrix = board.ParseMatrix(rows...)
			i++
		case "queue":
			if i+1 >= len(args) {
				fmt.Fprintln(h.out, "error queue needs a value")
				return
			}
			ss.Queue = board.ParseQueue(args[i+1])
			for _, p := range ss.Queue {
				if !p.Playable() {
					fmt.Fprintf(h.out, "error unknown piece %s\n", p)
					return
				}
			}
			i++
		case "hold":
			if i+1 >= len(args) {
				fmt.Fprintln(h.out, "error hold needs a value")
				return
			}
			hold := board.PieceType(args[i+1][0])
			if !hold.Playable() {
				fmt.Fprintf(h.out, "error unknown piece %s\n", hold)
				return
			}
			ss.Hold = hold
			i++
		default:
			fmt.Fprintf(h.out, "error unknown position field %q\n", args[i])
			return
		}
	}

	if ss.Matrix == nil {
		fmt.Fprintln(h.out, "error position needs rows")
		return
	}
	h.snapshot = ss
	fmt.Fprintln(h.out, "ok")
}

// handleGo starts an analysis in a goroutine and streams the results.
func (h *Handler) handleGo(args []string) {
	if h.searching {
		fmt.Fprintln(h.out, "error search in progress")
		return
	}

	limits := h.parseLimits(args)
	ss := h.snapshot

	h.engine.OnInfo = func(info engine.Info) {
		fmt.Fprintf(h.out, "info depth %d rating %d nodes %d time %d\n",
			info.Depth, info.Rating, info.Nodes, info.Time.Milliseconds())
	}

	h.searching = true
	h.searchDone = make(chan struct{})

	go func() {
		defer close(h.searchDone)

		suggestions := h.engine.Analyze(ss, limits)
		for _, sg := range suggestions {
			fmt.Fprintf(h.out, "suggestion %d %d %s\n", sg.Rating, sg.Depth, traceString(sg.Trace))
		}
		fmt.Fprintln(h.out, "done")
		h.searching = false
	}()
}

// handleStop aborts a running analysis and waits for it to drain.
func (h *Handler) handleStop() {
	if !h.searching {
		return
	}
	h.engine.Stop()
	<-h.searchDone
}

// Wait blocks until any running analysis finishes. Tests use this to read
// complete output.
func (h *Handler) Wait() {
	if h.searchDone != nil {
		<-h.searchDone
	}
}

func (h *Handler) parseLimits(args []string) engine.Limits {
	limits := engine.Limits{}
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "depth":
			if i+1 < len(args) {
				limits.Depth, _ = strconv.Atoi(args[i+1])
				i++
			}
		case "movetime":
			if i+1 < len(args) {
				ms, _ := strconv.Atoi(args[i+1])
				limits.MoveTime = time.Duration(ms) * time.Millisecond
				i++
			}
		case "nodes":
			if i+1 < len(args) {
				limits.Nodes, _ = strconv.ParseUint(args[i+1], 10, 64)
				i++
			}
		case "multi":
			if i+1 < len(args) {
				limits.Multi, _ = strconv.Atoi(args[i+1])
				i++
			}
		}
	}
	return limits
}

func traceString(trace []int) string {
	parts := make([]string, len(trace))
	for i, idx := range trace {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, " ")
}

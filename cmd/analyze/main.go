// Command analyze validates board configurations and reports what a player
// can actually do on them: the shortest route to the pot, whether the pot is
// reachable at all, and which question cells the bear can get to.
//
//	analyze                      # every board in ./configs
//	analyze --config-dir boards  # another directory
//	analyze configs/meadow.yaml  # specific files
//	analyze --builtin            # the built-in classic board
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/honeybear/game/config"
	"github.com/wricardo/mcp-training/honeybear/game/engine"
)

// Report is the analysis of one board
type Report struct {
	File     string   `json:"file"`
	Name     string   `json:"name,omitempty"`
	Valid    bool     `json:"valid"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`

	TimeLimit     int             `json:"time_limit,omitempty"`
	Questions     int             `json:"questions,omitempty"`
	QuestionCells int             `json:"question_cells,omitempty"`
	Rocks         int             `json:"rocks,omitempty"`
	Start         engine.Position `json:"start"`
	Pot           engine.Position `json:"pot"`

	PotReachable       bool              `json:"pot_reachable"`
	Route              []string          `json:"route,omitempty"`
	ReachableQuestions []engine.Position `json:"reachable_questions,omitempty"`
}

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Usage:     "validate honey bear boards and check that they can be won",
		ArgsUsage: "[file ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config-dir",
				Value:   "configs",
				Usage:   "directory scanned when no files are given",
				Sources: cli.EnvVars("CONFIG_DIR"),
			},
			&cli.BoolFlag{
				Name:  "builtin",
				Usage: "analyze the built-in classic board",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "print reports as JSON",
			},
			&cli.BoolFlag{
				Name:  "strict",
				Usage: "treat an unreachable pot as an error",
			},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	var reports []Report
	if cmd.Bool("builtin") {
		reports = append(reports, analyzeConfig("(builtin)", engine.DefaultConfig()))
	}

	files := cmd.Args().Slice()
	if len(files) == 0 && !cmd.Bool("builtin") {
		var err error
		files, err = configFiles(cmd.String("config-dir"))
		if err != nil {
			return err
		}
		if len(files) == 0 {
			return fmt.Errorf("no board configs in %s", cmd.String("config-dir"))
		}
	}
	for _, f := range files {
		reports = append(reports, analyzeFile(f))
	}

	if cmd.Bool("json") {
		enc := json.NewEncoder(cmd.Writer)
		enc.SetIndent("", "  ")
		if err := enc.Encode(reports); err != nil {
			return err
		}
	} else {
		for _, r := range reports {
			printReport(cmd.Writer, r)
		}
	}

	failed := 0
	for _, r := range reports {
		if !r.Valid || (cmd.Bool("strict") && !r.PotReachable) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d boards failed", failed, len(reports))
	}
	return nil
}

func configFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read config dir: %w", err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".json", ".yaml", ".yml":
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func analyzeFile(path string) Report {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{File: filepath.Base(path), Errors: []string{err.Error()}}
	}
	cfg, err := config.Decode(filepath.Ext(path), data)
	if err != nil {
		return Report{File: filepath.Base(path), Errors: []string{err.Error()}}
	}
	return analyzeConfig(filepath.Base(path), cfg)
}

// analyzeConfig assumes cfg already passed validation
func analyzeConfig(file string, cfg *engine.GameConfig) Report {
	board, start := engine.ParseLayout(cfg.Layout)
	pot, _ := engine.FindKind(board, engine.Pot)

	r := Report{
		File:          file,
		Name:          cfg.Name,
		Valid:         true,
		TimeLimit:     cfg.TimeLimit,
		Questions:     len(cfg.Questions),
		QuestionCells: engine.CountKind(board, engine.Question),
		Rocks:         engine.CountKind(board, engine.Rock),
		Start:         start,
		Pot:           pot,
	}

	route, ok := engine.ShortestPath(board, start, pot)
	r.PotReachable = ok
	for _, d := range route {
		r.Route = append(r.Route, string(d))
	}
	r.ReachableQuestions = engine.ReachableQuestions(board, start)

	if !ok {
		r.Warnings = append(r.Warnings, "the pot cannot be reached from the start; this board cannot be won")
	}
	if len(r.ReachableQuestions) > r.Questions {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"%d question cells are reachable but only %d questions exist; later cells repeat the first question",
			len(r.ReachableQuestions), r.Questions))
	}
	if ok && len(route) > cfg.TimeLimit {
		r.Warnings = append(r.Warnings, fmt.Sprintf(
			"the shortest route needs %d moves but the clock only has %d seconds", len(route), cfg.TimeLimit))
	}
	return r
}

func printReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "\n=== %s ===\n", r.File)
	if !r.Valid {
		fmt.Fprintln(w, "INVALID")
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		return
	}

	fmt.Fprintf(w, "Name: %s\n", r.Name)
	fmt.Fprintf(w, "Time limit: %s\n", engine.FormatClock(r.TimeLimit))
	fmt.Fprintf(w, "Questions: %d in pool, %d cells on the board\n", r.Questions, r.QuestionCells)
	fmt.Fprintf(w, "Rocks: %d\n", r.Rocks)
	fmt.Fprintf(w, "Bear starts at %s, pot at %s\n", r.Start, r.Pot)

	if r.PotReachable {
		fmt.Fprintf(w, "Shortest route (%d moves): %s\n", len(r.Route), strings.Join(r.Route, " "))
	} else {
		fmt.Fprintln(w, "Pot: NOT reachable")
	}

	qs := make([]string, 0, len(r.ReachableQuestions))
	for _, p := range r.ReachableQuestions {
		qs = append(qs, p.String())
	}
	fmt.Fprintf(w, "Reachable questions (%d): %s\n", len(qs), strings.Join(qs, " "))

	for _, warn := range r.Warnings {
		fmt.Fprintf(w, "  warning: %s\n", warn)
	}
}

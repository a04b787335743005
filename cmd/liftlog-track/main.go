package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/claude/liftlog/internal/models"
	"github.com/claude/liftlog/internal/session"
	"github.com/google/uuid"
)

// Version is set at build time via -ldflags.
var Version = "dev"

const usage = `Usage: liftlog-track -server <URL> <command> [args]

Commands:
  routines                      list your routines
  start <routine-id>            begin a workout
  status                        show the running workout and its sets
  add <exercise> <reps> <weight> [kg|lbs]
                                log a set
  drop <set-number>             delete a set by its global number
  pause | resume                control the workout clock
  complete [notes]              finish the workout
  cancel                        discard the workout
`

func main() {
	serverURL := flag.String("server", "", "LiftLog server URL (e.g. https://liftlog.tail1234.ts.net)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("liftlog-track", Version)
		return
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	args := flag.Args()
	if *serverURL == "" || len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	cache, err := session.OpenCache(filepath.Join(homeDir, ".liftlog"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer cache.Close()

	client := session.NewClient(strings.TrimRight(*serverURL, "/"))
	tracker := session.NewTracker(client, cache, log)
	defer tracker.Close()

	ctx := context.Background()
	if err := run(ctx, client, tracker, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, client *session.Client, tracker *session.Tracker, args []string) error {
	cmd, rest := args[0], args[1:]

	// Every command except start and routines operates on the current workout.
	if cmd != "start" && cmd != "routines" {
		found, err := tracker.Restore(ctx)
		if err != nil {
			return err
		}
		if !found {
			return fmt.Errorf("no workout in progress")
		}
	}

	switch cmd {
	case "routines":
		return listRoutines(ctx, client)
	case "start":
		return start(ctx, tracker, rest)
	case "status":
		printStatus(tracker)
		return nil
	case "add":
		return addSet(ctx, tracker, rest)
	case "drop":
		return dropSet(ctx, tracker, rest)
	case "pause":
		return tracker.Pause(ctx)
	case "resume":
		return tracker.Resume(ctx)
	case "complete":
		var notes *string
		if len(rest) > 0 {
			n := strings.Join(rest, " ")
			notes = &n
		}
		detail, err := tracker.Complete(ctx, notes)
		if err != nil {
			return err
		}
		fmt.Printf("Workout complete: %d sets in %s\n",
			len(detail.Sets), detail.ActiveDuration(time.Now()).Round(time.Second))
		return nil
	case "cancel":
		return tracker.Cancel(ctx)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func listRoutines(ctx context.Context, client *session.Client) error {
	routines, err := client.ListRoutines(ctx)
	if err != nil {
		return err
	}
	for _, r := range routines {
		fmt.Printf("%s  %s (%d exercises, performed %d times)\n",
			r.ID, r.Name, len(r.Exercises), r.TimesPerformed)
	}
	return nil
}

func start(ctx context.Context, tracker *session.Tracker, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: start <routine-id>")
	}
	routineID, err := uuid.Parse(args[0])
	if err != nil {
		return fmt.Errorf("invalid routine id: %w", err)
	}
	if err := tracker.Start(ctx, routineID, nil, nil); err != nil {
		return err
	}
	fmt.Println("Workout started.")
	return nil
}

func addSet(ctx context.Context, tracker *session.Tracker, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("usage: add <exercise> <reps> <weight> [kg|lbs]")
	}
	reps, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("invalid reps: %w", err)
	}
	weight, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("invalid weight: %w", err)
	}
	unit := models.UnitLbs
	if len(args) > 3 {
		if unit, err = models.ParseWeightUnit(args[3]); err != nil {
			return err
		}
	}

	input := models.SetInput{
		ExerciseID: args[0],
		Reps:       reps,
		Weight:     weight,
		WeightUnit: unit,
	}
	if _, err := tracker.AddSet(ctx, input); err != nil {
		return err
	}
	printStatus(tracker)
	return nil
}

func dropSet(ctx context.Context, tracker *session.Tracker, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: drop <set-number>")
	}
	num, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid set number: %w", err)
	}
	for _, s := range tracker.Sets() {
		if s.SetNumber == num {
			return tracker.RemoveSet(ctx, s.LocalID)
		}
	}
	return fmt.Errorf("no set numbered %d", num)
}

func printStatus(tracker *session.Tracker) {
	fmt.Printf("Status: %s, elapsed %s\n",
		tracker.Status(), tracker.Elapsed().Round(time.Second))
	for _, s := range tracker.Sets() {
		saved := " "
		if !s.SavedToDB {
			saved = "*"
		}
		fmt.Printf("%s #%-3d %-20s set %d: %d × %.1f %s\n",
			saved, s.SetNumber, s.ExerciseID, s.ExerciseSetNumber,
			s.Reps, s.Weight, s.WeightUnit)
	}
}

package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/sirupsen/logrus"
	"golang.org/x/image/bmp"

	"github.com/Garsondee/Temptress/internal/game"
	"github.com/Garsondee/Temptress/internal/logger"
	"github.com/Garsondee/Temptress/internal/view"
)

type runStats struct {
	runIndex int
	seed     int64
	ticks    int

	firstWalkTick    int
	firstBumpTick    int
	firstBlockedTick int
	firstTravelTick  int

	paths      int
	walks      int
	retries    int
	blocked    int
	approaches int
	bumpPauses int
	redirects  int
	stuck      int
	rooms      int
	messages   int

	pathCalls    []int
	frames       int
	unevenFrames int
	entityCells  int
	affected     map[string]struct{}

	report string
}

var scenarios = map[string]func(seed int64, log logrus.FieldLogger) (*game.World, func(tick int)){
	"demo":  demoScenario,
	"crowd": crowdScenario,
}

func main() {
	var runs int
	var ticks int
	var seedBase int64
	var seedStep int64
	var scenario string
	var renderEvery int
	var bmpPath string
	var copyReport bool
	var reportID int

	flag.IntVar(&runs, "runs", 3, "number of headless runs")
	flag.IntVar(&ticks, "ticks", 3000, "ticks per run")
	flag.Int64Var(&seedBase, "seed-base", 42, "base RNG seed for run 1")
	flag.Int64Var(&seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&scenario, "scenario", "demo", "scenario name ("+strings.Join(scenarioNames(), ", ")+")")
	flag.IntVar(&renderEvery, "render-every", 10, "compose a frame every n ticks (0 disables)")
	flag.StringVar(&bmpPath, "bmp", "", "write the final frame of the last run as a BMP")
	flag.BoolVar(&copyReport, "copy", false, "copy the report to the clipboard")
	flag.IntVar(&reportID, "hotspot", int(game.PlayerID), "hotspot whose debug report ends the output")
	flag.Parse()

	if runs <= 0 {
		fmt.Println("error: -runs must be > 0")
		return
	}
	if ticks <= 0 {
		fmt.Println("error: -ticks must be > 0")
		return
	}
	if _, ok := scenarios[scenario]; !ok {
		fmt.Printf("error: unsupported scenario %q (supported: %s)\n", scenario, strings.Join(scenarioNames(), ", "))
		return
	}

	log := logger.FromEnv("warn", "text")
	var buf bytes.Buffer
	out := io.MultiWriter(os.Stdout, &buf)

	fmt.Fprintf(out, "=== Headless Engine Report ===\n")
	fmt.Fprintf(out, "scenario=%s runs=%d ticks=%d seed_base=%d seed_step=%d\n\n", scenario, runs, ticks, seedBase, seedStep)

	all := make([]runStats, 0, runs)
	var last *game.World
	for i := 0; i < runs; i++ {
		seed := seedBase + int64(i)*seedStep
		var stats runStats
		stats, last = runScenario(scenario, i+1, seed, ticks, renderEvery, game.HotspotID(reportID), log)
		all = append(all, stats)
		printRun(out, stats)
	}
	printAggregate(out, all)
	fmt.Fprint(out, all[len(all)-1].report)

	if bmpPath != "" {
		if err := writeBMP(bmpPath, last); err != nil {
			log.WithError(err).Error("bmp dump failed")
		} else {
			log.WithField("path", bmpPath).Info("frame written")
		}
	}
	if copyReport {
		if err := clipboard.WriteAll(buf.String()); err != nil {
			log.WithError(err).Warn("clipboard copy failed")
		}
	}
}

func scenarioNames() []string {
	names := make([]string, 0, len(scenarios))
	for n := range scenarios {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// demoScenario is the built-in demo with the player crossing the hall every
// few seconds while the porter does the rounds.
func demoScenario(seed int64, log logrus.FieldLogger) (*game.World, func(int)) {
	w, err := game.NewDemoWorld(game.Deps{Seed: seed, Log: log})
	if err != nil {
		panic(err)
	}
	targets := []game.Point{{X: 250, Y: 180}, {X: 60, Y: 100}, {X: 280, Y: 120}, {X: 150, Y: 190}}
	return w, func(tick int) {
		if tick%200 != 0 || w.Room() != 1 {
			return
		}
		p := targets[(tick/200)%len(targets)]
		if err := w.RequestWalk(game.PlayerID, p.X, p.Y, 0); err != nil {
			log.WithError(err).Warn("walk request failed")
		}
	}
}

const crowdRoom = `
........................................
........................................
........................................
........................................
........................................
........................................
........................................
........................................
........................................
........................................
........................................
........................................
...................####.................
...................####.................
...................####.................
...................####.................
...................####.................
...................####.................
...................####.................
........................................
........................................
........................................
........................................
........................................
........................................`

// crowdScenario packs four wandering characters around a pillar while the
// player walks back and forth through them.
func crowdScenario(seed int64, log logrus.FieldLogger) (*game.World, func(int)) {
	tw := game.NewTestWorld(
		game.WithSeed(seed),
		game.WithLog(log),
		game.WithRoom(1, crowdRoom),
		game.WithPlayer(1, 20, 150),
		game.WithNPC(1001, 1, 100, 120, 0),
		game.WithNPC(1002, 1, 220, 120, 0),
		game.WithNPC(1003, 1, 100, 180, 0),
		game.WithNPC(1004, 1, 220, 180, 0),
	)
	return tw.World, func(tick int) {
		if tick%150 != 0 {
			return
		}
		x := 20
		if (tick/150)%2 == 0 {
			x = 280
		}
		if err := tw.RequestWalk(game.PlayerID, x, 150, 0); err != nil {
			log.WithError(err).Warn("walk request failed")
		}
	}
}

func runScenario(name string, runIndex int, seed int64, ticks, renderEvery int, reportID game.HotspotID, log logrus.FieldLogger) (runStats, *game.World) {
	w, drive := scenarios[name](seed, log)
	rs := runStats{runIndex: runIndex, seed: seed, ticks: ticks, affected: map[string]struct{}{}}
	blit := game.NewRecordingBlitter()
	for i := 0; i < ticks; i++ {
		drive(i)
		w.Tick()
		if renderEvery > 0 && i%renderEvery == 0 {
			blit.Reset()
			fs := w.Render(blit)
			rs.frames++
			rs.entityCells += fs.EntityCells
			if !fs.AllWrittenOnce() {
				rs.unevenFrames++
			}
		}
	}

	events := w.Events()
	entries := events.Entries()
	for _, e := range entries {
		switch e.Category + "/" + e.Key {
		case "path/result":
			rs.pathCalls = append(rs.pathCalls, int(e.NumVal))
		case "walk/blocked", "bump/stuck":
			if d := w.Data(e.Hotspot); d != nil {
				rs.affected[d.Name] = struct{}{}
			}
		}
	}
	rs.firstWalkTick = firstTick(entries, "walk", "start", "")
	rs.firstBumpTick = firstTick(entries, "bump", "", "")
	rs.firstBlockedTick = firstTick(entries, "walk", "blocked", "")
	rs.firstTravelTick = firstTick(entries, "room", "travel", "")
	rs.paths = events.CountCategory("path", "result")
	rs.walks = events.CountCategory("walk", "start")
	rs.retries = events.CountCategory("walk", "retry")
	rs.blocked = events.CountCategory("walk", "blocked")
	rs.approaches = events.CountCategory("walk", "approach")
	rs.bumpPauses = events.CountCategory("bump", "pause")
	rs.redirects = events.CountCategory("bump", "redirect")
	rs.stuck = events.CountCategory("bump", "stuck")
	rs.rooms = events.CountCategory("room", "change")
	rs.messages = events.CountCategory("action", "message")
	rs.report = w.HotspotDebugReport(reportID, 200)
	return rs, w
}

func firstTick(entries []game.EventLogEntry, category, key, contains string) int {
	for _, e := range entries {
		if e.Category != category || (key != "" && e.Key != key) {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(out io.Writer, rs runStats) {
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(out, "phase_markers: first_walk=%d first_bump=%d first_blocked=%d first_travel=%d\n",
		rs.firstWalkTick, rs.firstBumpTick, rs.firstBlockedTick, rs.firstTravelTick)
	fmt.Fprintf(out, "walk_totals: paths=%d walks=%d retries=%d blocked=%d approaches=%d\n",
		rs.paths, rs.walks, rs.retries, rs.blocked, rs.approaches)
	fmt.Fprintf(out, "bump_totals: pauses=%d redirects=%d stuck=%d\n", rs.bumpPauses, rs.redirects, rs.stuck)
	fmt.Fprintf(out, "room_changes=%d messages=%d\n", rs.rooms, rs.messages)
	fmt.Fprintf(out, "path_calls: avg=%s max=%d\n", avgString(rs.pathCalls), maxOf(rs.pathCalls))
	fmt.Fprintf(out, "frames=%d uneven=%d avg_entity_cells=%.1f\n", rs.frames, rs.unevenFrames, avg(rs.entityCells, rs.frames))
	fmt.Fprintf(out, "affected_labels: %s\n\n", joinSet(rs.affected))
}

func printAggregate(out io.Writer, all []runStats) {
	totalWalks := 0
	totalBlocked := 0
	totalBumps := 0
	totalStuck := 0
	totalUneven := 0
	var bumpTicks, blockedTicks, calls []int
	affected := map[string]struct{}{}
	for _, rs := range all {
		totalWalks += rs.walks
		totalBlocked += rs.blocked
		totalBumps += rs.bumpPauses + rs.redirects + rs.stuck
		totalStuck += rs.stuck
		totalUneven += rs.unevenFrames
		if rs.firstBumpTick >= 0 {
			bumpTicks = append(bumpTicks, rs.firstBumpTick)
		}
		if rs.firstBlockedTick >= 0 {
			blockedTicks = append(blockedTicks, rs.firstBlockedTick)
		}
		calls = append(calls, rs.pathCalls...)
		for l := range rs.affected {
			affected[l] = struct{}{}
		}
	}

	fmt.Fprintln(out, "=== Aggregate ===")
	fmt.Fprintf(out, "runs=%d\n", len(all))
	fmt.Fprintf(out, "avg_per_run: walks=%.1f blocked=%.1f bumps=%.1f stuck=%.1f\n",
		avg(totalWalks, len(all)), avg(totalBlocked, len(all)), avg(totalBumps, len(all)), avg(totalStuck, len(all)))
	fmt.Fprintf(out, "phase_marker_avg_ticks: first_bump=%s first_blocked=%s\n", avgString(bumpTicks), avgString(blockedTicks))
	fmt.Fprintf(out, "path_calls: avg=%s max=%d\n", avgString(calls), maxOf(calls))
	fmt.Fprintf(out, "uneven_frames=%d\n", totalUneven)
	fmt.Fprintf(out, "unique_affected_labels=%d [%s]\n\n", len(affected), joinSet(affected))
}

// writeBMP composes the current frame of w and writes it as an 8-bit BMP.
func writeBMP(path string, w *game.World) error {
	f := view.NewFrame(view.DefaultPalette())
	w.Render(f)
	file, err := os.Create(path) // #nosec G304 -- path comes from the command line
	if err != nil {
		return fmt.Errorf("bmp: %w", err)
	}
	if err := bmp.Encode(file, f.Img); err != nil {
		file.Close()
		return fmt.Errorf("bmp: %w", err)
	}
	return file.Close()
}

func avg(sum int, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func avgString(vals []int) string {
	if len(vals) == 0 {
		return "n/a"
	}
	sum := 0
	for _, v := range vals {
		sum += v
	}
	return fmt.Sprintf("%.1f", float64(sum)/float64(len(vals)))
}

func maxOf(vals []int) int {
	m := 0
	for _, v := range vals {
		m = max(m, v)
	}
	return m
}

func joinSet(s map[string]struct{}) string {
	if len(s) == 0 {
		return "none"
	}
	labels := make([]string, 0, len(s))
	for k := range s {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	return strings.Join(labels, ",")
}

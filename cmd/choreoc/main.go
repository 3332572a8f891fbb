// Command choreoc converts drone show sequences into firmware files and
// plans collision free transitions between formations.
package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/npillmayer/choreo"
	"github.com/npillmayer/choreo/bezier"
	"github.com/npillmayer/choreo/export"
	"github.com/npillmayer/choreo/formation"
	"github.com/npillmayer/choreo/keyframe"
	"github.com/npillmayer/choreo/planner"
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'choreoc'
func tracer() tracing.Trace {
	return tracing.Select("choreoc")
}

var traceKeys = []string{"choreoc", "choreo", "bezier", "keyframe", "polyn", "export", "planner"}

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}
	command, args := flag.Arg(0), flag.Args()[1:]
	var err error
	switch command {
	case "export":
		err = handleExport(args)
	case "plan":
		err = handlePlan(args)
	case "import":
		err = handleImport(args)
	case "inspect":
		err = handleInspect(args, os.Stdout)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "choreoc %s: %v\n", command, err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`choreoc - drone show sequence compiler

Usage: choreoc <command> [options]

Commands:
  export     Write firmware trajectory and color files for every track
  plan       Plan collision free paths from agent positions to targets
  import     Convert firmware polynomial segments back into a sequence
  inspect    Print the contents of a .traj or .color file
  help       Show this help message

Examples:
  choreoc export -in show.json -out firmware/
  choreoc plan -in swarm.json -config planner.json -out transition.json
  choreoc inspect firmware/cf1.traj`)
}

// setTraceLevel applies a level given on the command line to all packages.
func setTraceLevel(level string) error {
	var l tracing.TraceLevel
	switch strings.ToLower(level) {
	case "error":
		l = tracing.LevelError
	case "info":
		l = tracing.LevelInfo
	case "debug":
		l = tracing.LevelDebug
	default:
		return fmt.Errorf("unknown trace level %q", level)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(l)
	}
	return nil
}

// --- export ----------------------------------------------------------------

func handleExport(args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	in := fs.String("in", "", "Sequence collection JSON (required)")
	out := fs.String("out", ".", "Output directory")
	trace := fs.String("trace", "error", "Trace level: error, info or debug")
	fs.Parse(args)
	if err := setTraceLevel(*trace); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}
	c, err := readCollection(*in)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*out, 0o755); err != nil {
		return err
	}
	return exportCollection(c, *out)
}

func readCollection(path string) (*keyframe.Collection, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return keyframe.ReadCollection(f)
}

func exportCollection(c *keyframe.Collection, dir string) error {
	for i, t := range c.Tracks {
		name := fileName(t.Name, i)
		traj, err := export.EncodeTrajectory(t.Waypoints)
		if err != nil {
			return fmt.Errorf("track %q: %w", t.Name, err)
		}
		if err := os.WriteFile(filepath.Join(dir, name+".traj"), traj, 0o644); err != nil {
			return err
		}
		if len(t.Colors) == 0 {
			tracer().Infof("track %q has no colors", t.Name)
		} else {
			colors, err := export.EncodeColors(t.Colors)
			if err != nil {
				return fmt.Errorf("track %q: %w", t.Name, err)
			}
			if err := os.WriteFile(filepath.Join(dir, name+".color"), colors, 0o644); err != nil {
				return err
			}
		}
		tracer().Debugf("exported track %q as %s", t.Name, name)
	}
	tracer().Infof("exported %d tracks to %s", len(c.Tracks), dir)
	return nil
}

// fileName derives a file name from a track name, falling back to the
// track index.
func fileName(track string, index int) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r < ' ':
			return '_'
		}
		return r
	}, strings.TrimSpace(track))
	if name == "" || name == "." || name == ".." {
		return fmt.Sprintf("track%d", index)
	}
	return name
}

// --- plan ------------------------------------------------------------------

type vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// swarm is the input of the plan command: agent positions and either
// explicit targets or a formation.
type swarm struct {
	Agents    []vec           `json:"agents"`
	Targets   []vec           `json:"targets,omitempty"`
	Formation *formation.Spec `json:"formation,omitempty"`
}

func parseSwarm(r io.Reader) (starts, targets []choreo.Vec3, err error) {
	var s swarm
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, nil, fmt.Errorf("decoding swarm: %w", err)
	}
	for _, a := range s.Agents {
		starts = append(starts, choreo.V(a.X, a.Y, a.Z))
	}
	switch {
	case s.Formation != nil && len(s.Targets) > 0:
		return nil, nil, errors.New("swarm has both targets and a formation")
	case s.Formation != nil:
		if targets, err = s.Formation.Points(); err != nil {
			return nil, nil, err
		}
	default:
		for _, t := range s.Targets {
			targets = append(targets, choreo.V(t.X, t.Y, t.Z))
		}
	}
	return starts, targets, nil
}

func handlePlan(args []string) error {
	fs := flag.NewFlagSet("plan", flag.ExitOnError)
	in := fs.String("in", "", "Swarm JSON with agents and targets or formation (required)")
	out := fs.String("out", "", "Output sequence collection, stdout if empty")
	config := fs.String("config", "", "Planner configuration JSON")
	greedy := fs.Bool("greedy", false, "Use greedy instead of optimal matching")
	simplify := fs.Bool("simplify", false, "Drop path nodes on constant speed lines")
	trace := fs.String("trace", "error", "Trace level: error, info or debug")
	fs.Parse(args)
	if err := setTraceLevel(*trace); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}
	cfg := planner.DefaultConfig()
	if *config != "" {
		var err error
		if cfg, err = planner.LoadConfig(*config); err != nil {
			return err
		}
	}
	if *greedy {
		cfg.Strategy = planner.Greedy
	}
	cfg.Simplify = cfg.Simplify || *simplify
	f, err := os.Open(filepath.Clean(*in))
	if err != nil {
		return err
	}
	starts, targets, err := parseSwarm(f)
	f.Close()
	if err != nil {
		return err
	}
	c, err := plan(cfg, starts, targets)
	if err != nil {
		return err
	}
	return writeCollection(c, *out)
}

// plan solves a transition and converts every path into a track.
func plan(cfg planner.Config, starts, targets []choreo.Vec3) (*keyframe.Collection, error) {
	res, err := planner.Solve(cfg, starts, targets)
	if err != nil {
		return nil, err
	}
	if conflicts := planner.Conflicts(res.Paths, cfg.Timestep); len(conflicts) > 0 {
		return nil, fmt.Errorf("planned paths conflict: %v", conflicts[0])
	}
	if res.Complete < res.Total {
		fmt.Fprintf(os.Stderr, "warning: %d of %d agents did not reach their target within %d steps\n",
			res.Total-res.Complete, res.Total, res.Steps)
	}
	tracks := make([]*keyframe.Track, 0, len(res.Paths))
	for _, p := range res.Paths {
		t := keyframe.NewTrack(fmt.Sprintf("agent%d", p.Agent)).Add(keyframe.FromCurves(p.Curves)...)
		tracks = append(tracks, t.End())
	}
	tracer().P("run", res.RunID.String()).Infof("planned %d tracks in %d steps", len(tracks), res.Steps)
	return keyframe.NewCollection(tracks...), nil
}

func writeCollection(c *keyframe.Collection, path string) error {
	if path == "" {
		return c.Write(os.Stdout)
	}
	var buf bytes.Buffer
	if err := c.Write(&buf); err != nil {
		return err
	}
	return os.WriteFile(filepath.Clean(path), buf.Bytes(), 0o644)
}

// --- import ----------------------------------------------------------------

func handleImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	in := fs.String("in", "", "Polynomial trajectory JSON (required)")
	out := fs.String("out", "", "Output sequence collection, stdout if empty")
	trace := fs.String("trace", "error", "Trace level: error, info or debug")
	fs.Parse(args)
	if err := setTraceLevel(*trace); err != nil {
		return err
	}
	if *in == "" {
		fs.Usage()
		return errors.New("-in is required")
	}
	f, err := os.Open(filepath.Clean(*in))
	if err != nil {
		return err
	}
	defer f.Close()
	c, err := importCollection(f)
	if err != nil {
		return err
	}
	return writeCollection(c, *out)
}

func importCollection(r io.Reader) (*keyframe.Collection, error) {
	drones, err := export.ReadImport(r)
	if err != nil {
		return nil, err
	}
	tracks := make([]*keyframe.Track, 0, len(drones))
	for i, segments := range drones {
		curves := make([]bezier.Cubic, 0, len(segments))
		t := 0.0
		for j, s := range segments {
			c, ok := s.Cubic(t)
			if !ok {
				return nil, fmt.Errorf("drone %d, segment %d: degree %d is not representable as a cubic",
					i, j, s.Degree)
			}
			curves = append(curves, c)
			t = c.End
		}
		tracks = append(tracks, keyframe.NewTrack(fmt.Sprintf("cf%d", i+1)).Add(keyframe.FromCurves(curves)...).End())
	}
	return keyframe.NewCollection(tracks...), nil
}

// --- inspect ---------------------------------------------------------------

func handleInspect(args []string, w io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() == 0 {
		return errors.New("no file given")
	}
	for _, path := range fs.Args() {
		data, err := os.ReadFile(filepath.Clean(path))
		if err != nil {
			return err
		}
		if err := inspect(filepath.Ext(path), data, w); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return nil
}

func inspect(ext string, data []byte, w io.Writer) error {
	switch ext {
	case ".traj":
		traj, err := export.DecodeTrajectory(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "start %v\n", traj.Start)
		for i, s := range traj.Segments {
			fmt.Fprintf(w, "%3d %6.3fs x=%v y=%v z=%v -> %v\n", i, s.Duration,
				s.Degrees[0], s.Degrees[1], s.Degrees[2], s.Points[3])
		}
	case ".color":
		colors, err := export.DecodeColors(data)
		if err != nil {
			return err
		}
		for _, k := range colors {
			fmt.Fprintf(w, "%7.2fs %v\n", k.Time, k.Color)
		}
	default:
		return fmt.Errorf("unknown file type %q", ext)
	}
	return nil
}

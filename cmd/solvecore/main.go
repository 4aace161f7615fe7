// Command solvecore loads a scenario configuration, builds a sketch from
// its profile, drives a regeneration pass, and writes an SVG render plus a
// JSON solve report. It is grounded on cmd/dungeongen/main.go's flag
// parsing, verbose-logging, and direct-error-return structure, generalized
// from dungeon-artifact export to sketch regeneration and rendering; unlike
// dungeongen's -seed override flag defaulting to "0 means use config seed"
// (which only works because dungeon.LoadConfig auto-generates one), solvecore's
// config never carries an implicit seed, so the equivalent flag here
// overrides an already-valid seed rather than filling in a missing one.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/solvecore/solvecore/pkg/config"
	"github.com/solvecore/solvecore/pkg/handle"
	"github.com/solvecore/solvecore/pkg/regen"
	"github.com/solvecore/solvecore/pkg/render"
	"github.com/solvecore/solvecore/pkg/sketch"
)

const version = "0.1.0"

var (
	configPath = flag.String("config", "", "Path to YAML scenario configuration file (required)")
	outputDir  = flag.String("output", ".", "Output directory for generated files")
	format     = flag.String("format", "all", "Export format: svg, json, or all")
	seedFlag   = flag.Uint64("seed", 0, "Override the seed from config (0 = use config seed)")
	verbose    = flag.Bool("verbose", false, "Enable verbose output")
	versionF   = flag.Bool("version", false, "Print version and exit")
	help       = flag.Bool("help", false, "Show help message")
)

func main() {
	flag.Parse()

	if *versionF {
		fmt.Printf("solvecore version %s\n", version)
		os.Exit(0)
	}
	if *help {
		printHelp()
		os.Exit(0)
	}
	if *configPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -config flag is required")
		printUsage()
		os.Exit(1)
	}

	validFormats := map[string]bool{"svg": true, "json": true, "all": true}
	if !validFormats[*format] {
		fmt.Fprintf(os.Stderr, "Error: invalid format %q, must be one of: svg, json, all\n", *format)
		os.Exit(1)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if *verbose {
		fmt.Printf("Loading configuration from %s\n", *configPath)
	}
	cfg, err := config.LoadConfigFile(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if *seedFlag != 0 {
		if *verbose {
			fmt.Printf("Overriding seed from %d to %d\n", cfg.Seed, *seedFlag)
		}
		cfg.Seed = *seedFlag
	}

	if *verbose {
		fmt.Printf("Using seed: %d\n", cfg.Seed)
		fmt.Printf("Profile corners: %d\n", len(cfg.Profile.Points))
		fmt.Printf("Extrude vector: %v\n", cfg.Extrude.Vector)
	}

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	s := buildSketch(cfg)

	start := time.Now()
	if *verbose {
		fmt.Println("Regenerating sketch...")
	}
	rep, err := regen.All(ctx, s)
	if err != nil {
		return fmt.Errorf("regeneration failed: %w", err)
	}
	elapsed := time.Since(start)
	if *verbose {
		fmt.Printf("Regeneration completed in %v (%d groups regenerated, %d errors)\n",
			elapsed, len(rep.Regenerated), len(rep.Errors))
	}

	baseName := fmt.Sprintf("solvecore_%d", cfg.Seed)

	if *format == "svg" || *format == "all" {
		if err := exportSVG(s, cfg, baseName); err != nil {
			return err
		}
	}
	if *format == "json" || *format == "all" {
		if err := exportReport(s, rep, baseName); err != nil {
			return err
		}
	}

	fmt.Printf("Successfully regenerated sketch (seed=%d) in %v\n", cfg.Seed, elapsed)
	return nil
}

// buildSketch expands a scenario's closed profile polygon into a drawing
// workplane Group of shared-handle line segments (the same construction
// pkg/regen's own scenario tests use to guarantee a closed loop without
// routing through PointsCoincident constraints), then chains an Extrude
// Group with the configured vector.
func buildSketch(cfg *config.Config) *sketch.Sketch {
	s := sketch.New()
	src := buildProfileGroup(s, cfg.Profile.Points)

	eg := s.NewGroup(sketch.GroupExtrude, src)
	eg.SourceGroup = src
	base := handle.GroupBase(uint32(eg.H))
	for i, v := range cfg.Extrude.Vector {
		p := handle.Param(handle.Derive(base, uint32(i)))
		s.AddParam(p, eg.H, v)
		eg.ExtrudeVector[i] = p
	}
	return s
}

// buildProfileGroup draws corners as a closed loop of line segments on the
// XY workplane inside a fresh drawing-workplane Group.
func buildProfileGroup(s *sketch.Sketch, corners [][2]float64) handle.Group {
	g := s.NewGroup(sketch.GroupDrawingWorkplane, handle.Group(handle.GroupReferences))
	wp := handle.Entity(handle.EntityXY)
	base := handle.GroupBase(uint32(g.H))

	newPoint := func(local uint32, u, v float64) handle.Entity {
		pu := handle.Param(handle.Derive(base, local*2))
		pv := handle.Param(handle.Derive(base, local*2+1))
		s.AddParam(pu, g.H, u)
		s.AddParam(pv, g.H, v)
		eh := handle.Entity(handle.Derive(base, 0x1000+local))
		s.AddEntity(&sketch.Entity{H: eh, Kind: sketch.EntityPoint2D, Group: g.H, Workplane: wp, Params: []handle.Param{pu, pv}})
		return eh
	}

	pts := make([]handle.Entity, len(corners))
	for i, c := range corners {
		pts[i] = newPoint(uint32(i), c[0], c[1])
	}
	for i := range pts {
		j := (i + 1) % len(pts)
		eh := handle.Entity(handle.Derive(base, 0x2000+uint32(i)))
		s.AddEntity(&sketch.Entity{H: eh, Kind: sketch.EntityLineSegment, Group: g.H, Workplane: wp, Points: []handle.Entity{pts[i], pts[j]}})
	}
	return g.H
}

func exportSVG(s *sketch.Sketch, cfg *config.Config, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".svg")
	if *verbose {
		fmt.Printf("Exporting SVG to %s\n", filename)
	}
	opts := render.DefaultOptions()
	opts.Width = cfg.Render.Width
	opts.Height = cfg.Render.Height
	opts.Margin = cfg.Render.Margin
	opts.Title = cfg.Render.Title
	opts.ShowWireframe = cfg.Render.ShowWireframe
	opts.ShowMesh = cfg.Render.ShowMesh
	opts.ShowDimensions = cfg.Render.ShowDimensions

	sink := render.NewSVGSink(opts)
	if err := sink.Save(s, filename); err != nil {
		return fmt.Errorf("failed to export SVG: %w", err)
	}
	if *verbose {
		info, _ := os.Stat(filename)
		fmt.Printf("  Wrote %d bytes\n", info.Size())
	}
	return nil
}

// solveReport is the JSON-serializable summary of a regeneration pass,
// since regen.Report carries raw error values that json.Marshal cannot
// encode directly.
type solveReport struct {
	Regenerated []string          `json:"regenerated"`
	Errors      map[string]string `json:"errors,omitempty"`
	Groups      []groupStatus     `json:"groups"`
}

type groupStatus struct {
	Group          string   `json:"group"`
	Status         string   `json:"status"`
	Dof            int      `json:"dof"`
	BadConstraints []string `json:"badConstraints,omitempty"`
}

func exportReport(s *sketch.Sketch, rep regen.Report, baseName string) error {
	filename := filepath.Join(*outputDir, baseName+".json")
	if *verbose {
		fmt.Printf("Exporting solve report to %s\n", filename)
	}

	out := solveReport{}
	for _, h := range rep.Regenerated {
		out.Regenerated = append(out.Regenerated, h.String())
	}
	if len(rep.Errors) > 0 {
		out.Errors = make(map[string]string, len(rep.Errors))
		for h, err := range rep.Errors {
			out.Errors[h.String()] = err.Error()
		}
	}
	for _, h := range s.GroupOrder() {
		g := s.Groups.MustFind(h)
		gs := groupStatus{Group: h.String(), Status: g.Status.String(), Dof: g.Dof}
		for _, bc := range g.BadConstraints {
			gs.BadConstraints = append(gs.BadConstraints, bc.String())
		}
		out.Groups = append(out.Groups, gs)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode solve report: %w", err)
	}
	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write solve report: %w", err)
	}
	if *verbose {
		fmt.Printf("  Wrote %d bytes\n", len(data))
	}
	return nil
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "\nUsage: solvecore -config <scenario.yaml> [options]")
	fmt.Fprintln(os.Stderr, "\nRun 'solvecore -help' for detailed help")
}

func printHelp() {
	fmt.Printf("solvecore version %s\n\n", version)
	fmt.Println("A command-line tool for regenerating and rendering parametric sketches.")
	fmt.Println("\nUsage:")
	fmt.Println("  solvecore -config <scenario.yaml> [options]")
	fmt.Println("\nRequired Flags:")
	fmt.Println("  -config string")
	fmt.Println("        Path to YAML scenario configuration file")
	fmt.Println("\nOptional Flags:")
	fmt.Println("  -output string")
	fmt.Println("        Output directory for generated files (default: current directory)")
	fmt.Println("  -format string")
	fmt.Println("        Export format: svg, json, or all (default: all)")
	fmt.Println("  -seed uint")
	fmt.Println("        Override the seed from config (0 = use config seed)")
	fmt.Println("  -verbose")
	fmt.Println("        Enable verbose output")
	fmt.Println("  -version")
	fmt.Println("        Print version and exit")
	fmt.Println("  -help")
	fmt.Println("        Show this help message")
	fmt.Println("\nExamples:")
	fmt.Println("  solvecore -config scenario.yaml")
	fmt.Println("  solvecore -config scenario.yaml -seed 12345 -format svg -output ./out")
}

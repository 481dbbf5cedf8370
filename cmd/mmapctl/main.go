// Command mmapctl loads navigation regions and tiles from a data directory,
// reports what is resident and writes config templates and test fixtures.
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/protobuf/encoding/protojson"

	"github.com/gorustyt/mmaps/common/logger"
	"github.com/gorustyt/mmaps/config"
	"github.com/gorustyt/mmaps/detour"
	"github.com/gorustyt/mmaps/mmap"
)

const usage = `usage: mmapctl [-config path] <command> [flags]

commands:
  load      load a region and tiles, then print the resident set
  gen       write a region file and synthetic tiles into the data dir
  template  write a config template
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "mmapctl:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout io.Writer) error {
	global := flag.NewFlagSet("mmapctl", flag.ContinueOnError)
	configPath := global.String("config", "", "config file (default ./mmaps.toml)")
	global.Usage = func() { fmt.Fprint(global.Output(), usage) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		global.Usage()
		return errors.New("missing command")
	}

	cmd, rest := global.Arg(0), global.Args()[1:]
	if cmd == "template" {
		return runTemplate(rest, stdout)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	log, err := logger.New("mmapctl", cfg.Logger())
	if err != nil {
		return err
	}
	defer log.Sync()

	switch cmd {
	case "load":
		return runLoad(rest, cfg, log, stdout)
	case "gen":
		return runGen(rest, cfg, log)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runTemplate(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	output := fs.String("o", "", "output path (default stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *output == "" {
		return config.WriteTemplate(stdout, config.Default())
	}
	return config.WriteTemplateFile(*output, config.Default())
}

func runLoad(args []string, cfg config.Config, log *zap.Logger, stdout io.Writer) error {
	fs := flag.NewFlagSet("load", flag.ContinueOnError)
	var region regionFlag
	fs.Var(&region, "region", "region id")
	tiles := fs.String("tiles", "", "tiles to load, e.g. \"31,32 32,32\"")
	unload := fs.String("unload", "", "tiles to unload after loading")
	instances := fs.Int("instances", 0, "query handles to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	load, err := parseTiles(*tiles)
	if err != nil {
		return err
	}
	drop, err := parseTiles(*unload)
	if err != nil {
		return err
	}

	m := mmap.NewManager(
		mmap.WithDataDir(cfg.DataDir),
		mmap.WithLogger(log),
		mmap.WithMaxQueryNodes(cfg.Query.MaxNodes),
	)
	defer m.Close()

	id := mmap.RegionID(region)
	if err := m.EnsureRegionLoaded(id); err != nil {
		return err
	}
	for _, c := range load {
		if err := m.LoadTile(id, c.X, c.Y); err != nil && !errors.Is(err, mmap.ErrTileAlreadyLoaded) {
			return err
		}
	}
	for i := 0; i < *instances; i++ {
		if _, ok := m.GetNavMeshQuery(id, mmap.InstanceID(i)); !ok {
			return fmt.Errorf("could not create query handle %d", i)
		}
	}
	for _, c := range drop {
		if err := m.UnloadTile(id, c.X, c.Y); err != nil {
			return err
		}
	}

	snap, err := m.Snapshot()
	if err != nil {
		return err
	}
	out, err := protojson.MarshalOptions{Multiline: true}.Marshal(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(stdout, string(out))
	return err
}

func runGen(args []string, cfg config.Config, log *zap.Logger) error {
	fs := flag.NewFlagSet("gen", flag.ContinueOnError)
	var region regionFlag
	fs.Var(&region, "region", "region id")
	tiles := fs.String("tiles", "", "tiles to write, e.g. \"31,32 32,32\"")
	tileSize := fs.Float64("tile-size", 533.3333, "tile edge length")
	maxTiles := fs.Int("max-tiles", 4096, "mesh tile capacity")
	if err := fs.Parse(args); err != nil {
		return err
	}
	coords, err := parseTiles(*tiles)
	if err != nil {
		return err
	}

	paths := mmap.DefaultPaths{DataDir: cfg.DataDir}
	id := mmap.RegionID(region)
	params := detour.NavMeshParams{
		TileWidth:  float32(*tileSize),
		TileHeight: float32(*tileSize),
		MaxTiles:   int32(*maxTiles),
		MaxPolys:   1 << 10,
	}
	var buf bytes.Buffer
	if err := mmap.WriteMeshParams(&buf, params); err != nil {
		return err
	}
	if err := writeFile(paths.MeshPath(id), buf.Bytes()); err != nil {
		return err
	}
	log.Info("wrote mmap", zap.Uint32("region", uint32(id)), zap.String("path", paths.MeshPath(id)))

	for _, c := range coords {
		size := float32(*tileSize)
		payload := detour.CreateTileData(detour.DtMeshHeader{
			X:         c.X,
			Y:         c.Y,
			PolyCount: 1,
			Bmin:      [3]float32{float32(c.X) * size, 0, float32(c.Y) * size},
			Bmax:      [3]float32{float32(c.X+1) * size, 0, float32(c.Y+1) * size},
		}, nil)
		buf.Reset()
		if err := mmap.EncodeTile(&buf, payload); err != nil {
			return err
		}
		path := paths.TilePath(id, c)
		if err := writeFile(path, buf.Bytes()); err != nil {
			return err
		}
		log.Info("wrote mmtile", zap.Uint32("region", uint32(id)), zap.Int32("x", c.X), zap.Int32("y", c.Y))
	}
	return nil
}

// regionFlag is a region id; values that do not fit 32 bits are rejected.
type regionFlag mmap.RegionID

func (r *regionFlag) String() string { return strconv.FormatUint(uint64(*r), 10) }

func (r *regionFlag) Set(s string) error {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return fmt.Errorf("region %q: %w", s, err)
	}
	*r = regionFlag(v)
	return nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// parseTiles reads space or semicolon separated "x,y" pairs.
func parseTiles(s string) ([]mmap.TileCoord, error) {
	var out []mmap.TileCoord
	for _, pair := range strings.FieldsFunc(s, func(r rune) bool { return r == ' ' || r == ';' }) {
		xs, ys, ok := strings.Cut(pair, ",")
		if !ok {
			return nil, fmt.Errorf("tile %q: want x,y", pair)
		}
		x, err := strconv.ParseInt(strings.TrimSpace(xs), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", pair, err)
		}
		y, err := strconv.ParseInt(strings.TrimSpace(ys), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("tile %q: %w", pair, err)
		}
		out = append(out, mmap.TileCoord{X: int32(x), Y: int32(y)})
	}
	return out, nil
}

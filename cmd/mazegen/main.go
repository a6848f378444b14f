package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/tychio/da-rmmv-plugins/internal/dungeon"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/maze"
)

func main() {
	width := flag.Int("width", 10, "Maze width in cells")
	height := flag.Int("height", 10, "Maze height in cells")
	seed := flag.Int64("seed", 0, "Seed for random generation (default: current time)")
	roof := flag.Int("roof", 1536, "Roof tile id")
	wall := flag.Int("wall", 2048, "Wall tile id")
	ground := flag.Int("ground", 2816, "Ground tile id")
	zone := flag.Int("zone", 1, "Free-zone marker written under walkable tiles")
	output := flag.String("output", "", "YAML output file (empty for stdout)")
	hostDir := flag.String("host", "", "Also write the layout as a host map into this data directory")
	mapID := flag.Int("id", 1, "Map id used with -host")
	flag.Parse()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(*seed))

	m, err := maze.Generate(*width, *height, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	tiles := dungeon.TileIDs{Roof: *roof, Wall: *wall, Ground: *ground}
	grid := dungeon.Rasterize(m, tiles, *zone)

	spawn, err := dungeon.PickSpawn(grid, *zone, rng)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	doc := newLayoutYAML(m, grid, tiles, spawn, *seed)

	out := os.Stdout
	if *output != "" {
		f, err := os.Create(*output)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		out = f
	}
	if err := doc.write(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing YAML: %v\n", err)
		os.Exit(1)
	}

	if *hostDir != "" {
		if err := hostmap.NewFileStore(*hostDir).SaveMap(*mapID, grid); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing host map: %v\n", err)
			os.Exit(1)
		}
	}

	if *output != "" || *hostDir != "" {
		fmt.Fprintf(os.Stderr, "Generated %dx%d maze (seed %d): %d passages, %dx%d tiles\n",
			m.Width, m.Height, *seed, m.Passages(), grid.Width, grid.Height)
	}
}

package main

import (
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tychio/da-rmmv-plugins/internal/config"
	"github.com/tychio/da-rmmv-plugins/internal/hostmap"
	"github.com/tychio/da-rmmv-plugins/internal/names"
	"github.com/tychio/da-rmmv-plugins/internal/party"
	"github.com/tychio/da-rmmv-plugins/internal/quest"
)

// batchYAML is the printed result.
type batchYAML struct {
	Seed       int64          `yaml:"seed"`
	PartyLevel int            `yaml:"party_level"`
	Grade      quest.Grade    `yaml:"grade"`
	Quests     []*quest.Quest `yaml:"quests"`
}

func main() {
	configFile := flag.String("config", "data/plugins.yaml", "Path to plugin config YAML file")
	dataDir := flag.String("data", "data", "Path to the game's data directory (MapInfos.json, Names.json)")
	level := flag.Int("level", 1, "Mean party level")
	count := flag.Int("count", 5, "Number of quests to generate")
	credits := flag.Int("credits", 0, "Party credits used to compute the grade")
	seed := flag.Int64("seed", 0, "Seed for random generation (default: current time)")
	nameList := flag.String("names", "", "Comma-separated target names (overrides the names file)")
	format := flag.String("format", "yaml", "Output format: yaml or table")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	store := hostmap.NewFileStore(*dataDir)
	maps := quest.NewMapRegistry(cfg.Task.MapMark)
	if err := maps.LoadFromStore(store); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading map index: %v\n", err)
		os.Exit(1)
	}

	var lib *names.Library
	if *nameList != "" {
		parts := strings.Split(*nameList, ",")
		for i, p := range parts {
			parts[i] = strings.TrimSpace(p)
		}
		lib = names.New(parts...)
	} else {
		lib, err = names.Load(names.ResolvePath(*dataDir, cfg.Task.NamesFile))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading names: %v\n", err)
			os.Exit(1)
		}
	}

	p := party.New(party.Member{Name: "party", Level: *level})
	engine := quest.NewEngine(cfg.Task, maps, lib, p, rand.New(rand.NewSource(*seed)))
	if err := engine.Tracker().Restore(quest.ProgressState{Credits: *credits}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	quests, err := engine.Generate(*count)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating quests: %v\n", err)
		os.Exit(1)
	}

	if *format == "table" {
		fmt.Printf("seed %d, party level %d, grade %s\n\n", *seed, *level, engine.Grade().Label)
		if err := writeTable(os.Stdout, quests); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing table: %v\n", err)
			os.Exit(1)
		}
		return
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(batchYAML{
		Seed:       *seed,
		PartyLevel: *level,
		Grade:      engine.Grade(),
		Quests:     quests,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing YAML: %v\n", err)
		os.Exit(1)
	}
}

// Command megacity runs the city simulation kernel with its HTTP API.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dzautner/megacity/internal/api"
	"github.com/dzautner/megacity/internal/engine"
	"github.com/dzautner/megacity/internal/save"
	"github.com/dzautner/megacity/internal/weather"
)

var (
	flagSeed    int64
	flagSize    int
	flagClimate string
	flagDB      string
	flagPort    int
	flagTickHz  float64
	flagFresh   bool
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "megacity",
		Short: "City simulation kernel",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if flagVerbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	root.PersistentFlags().StringVar(&flagDB, "db", "data/megacity.db", "save database path")
	root.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the simulation, resuming from the save when one exists",
		RunE:  runSimulation,
	}
	runCmd.Flags().Int64Var(&flagSeed, "seed", 1, "terrain generation seed")
	runCmd.Flags().IntVar(&flagSize, "size", 256, "world side length in cells")
	runCmd.Flags().StringVar(&flagClimate, "climate", "temperate", "climate zone (tropical, desert, mediterranean, temperate, continental, oceanic, subarctic)")
	runCmd.Flags().IntVar(&flagPort, "port", 8080, "HTTP API port")
	runCmd.Flags().Float64Var(&flagTickHz, "tick-hz", 10, "simulation ticks per second")
	runCmd.Flags().BoolVar(&flagFresh, "fresh", false, "discard any existing save and generate a new world")

	newCmd := &cobra.Command{
		Use:   "newworld",
		Short: "Generate a fresh world and save it without running",
		RunE:  newWorld,
	}
	newCmd.Flags().Int64Var(&flagSeed, "seed", 1, "terrain generation seed")
	newCmd.Flags().IntVar(&flagSize, "size", 256, "world side length in cells")
	newCmd.Flags().StringVar(&flagClimate, "climate", "temperate", "climate zone (tropical, desert, mediterranean, temperate, continental, oceanic, subarctic)")

	inspectCmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print a summary of the save database",
		RunE:  inspectSave,
	}

	root.AddCommand(runCmd, newCmd, inspectCmd)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	os.MkdirAll("data", 0755)
	db, err := save.Open(flagDB)
	if err != nil {
		return fmt.Errorf("open save database: %w", err)
	}
	defer db.Close()
	slog.Info("database opened", "path", flagDB)

	var w *engine.World
	if db.HasSave() && !flagFresh {
		slog.Info("found saved city, loading")
		w, err = engine.LoadWorld(db)
		if err != nil {
			return fmt.Errorf("load world: %w", err)
		}
	} else {
		p := engine.DefaultParams()
		p.Seed = flagSeed
		p.Width = flagSize
		p.Height = flagSize
		p.TickHz = flagTickHz
		p.Climate = climateFromName(flagClimate)
		slog.Info("generating new city", "seed", p.Seed, "size", p.Width, "climate", flagClimate)
		w = engine.NewWorld(p)
	}

	eng := engine.New(w)
	eng.OnAutosave = func(w *engine.World) {
		if err := engine.SaveWorld(w, db); err != nil {
			slog.Error("autosave failed", "error", err)
		}
	}

	adminKey := os.Getenv("MEGACITY_ADMIN_KEY")
	if adminKey == "" {
		slog.Warn("MEGACITY_ADMIN_KEY not set, admin POST endpoints disabled")
	}
	server := &api.Server{
		World:    w,
		Eng:      eng,
		DB:       db,
		Port:     flagPort,
		AdminKey: adminKey,
	}
	server.Start()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		eng.Stop()
	}()

	fmt.Printf("City running: %s, population %d.\n", engine.SimTime(&w.Clock), w.Citizens.Count())
	fmt.Printf("API: http://localhost:%d/api/v1/status (Ctrl+C to stop)\n", flagPort)

	eng.Run()

	slog.Info("final save")
	if err := engine.SaveWorld(w, db); err != nil {
		slog.Error("final save failed", "error", err)
	}
	fmt.Println("Simulation stopped. City saved.")
	return nil
}

func newWorld(cmd *cobra.Command, args []string) error {
	os.MkdirAll("data", 0755)
	db, err := save.Open(flagDB)
	if err != nil {
		return fmt.Errorf("open save database: %w", err)
	}
	defer db.Close()

	p := engine.DefaultParams()
	p.Seed = flagSeed
	p.Width = flagSize
	p.Height = flagSize
	p.Climate = climateFromName(flagClimate)

	slog.Info("generating world", "seed", p.Seed, "size", p.Width, "climate", flagClimate)
	w := engine.NewWorld(p)
	if err := engine.SaveWorld(w, db); err != nil {
		return fmt.Errorf("save new world: %w", err)
	}
	fmt.Printf("New %dx%d world saved to %s (seed %d).\n", p.Width, p.Height, flagDB, p.Seed)
	return nil
}

func inspectSave(cmd *cobra.Command, args []string) error {
	db, err := save.Open(flagDB)
	if err != nil {
		return fmt.Errorf("open save database: %w", err)
	}
	defer db.Close()

	if !db.HasSave() {
		fmt.Println("no save present")
		return nil
	}

	w, err := engine.LoadWorld(db)
	if err != nil {
		return fmt.Errorf("load world: %w", err)
	}

	fmt.Printf("save:        %s\n", flagDB)
	fmt.Printf("sim time:    %s (tick %d)\n", engine.SimTime(&w.Clock), w.Clock.Ticks)
	fmt.Printf("world:       %dx%d, seed %d\n", w.Grid.Width, w.Grid.Height, w.Params.Seed)
	fmt.Printf("population:  %d full + %d abstract\n", w.Citizens.Count(), w.Virtual.Total)
	fmt.Printf("buildings:   %d zone, %d service, %d utility\n",
		w.Buildings.Count(), w.Services.Count(), w.Utilities.Count())
	fmt.Printf("roads:       %d segments\n", len(w.Roads.Segments))
	fmt.Printf("treasury:    %.0f (debt %.0f)\n", w.Budget.Treasury, w.Budget.Debt)
	if tick, err := db.GetMeta("saved_at_tick"); err == nil {
		fmt.Printf("last saved:  tick %s\n", tick)
	}
	return nil
}

func climateFromName(name string) weather.ClimateZone {
	switch name {
	case "tropical":
		return weather.ClimateTropical
	case "desert":
		return weather.ClimateDesert
	case "mediterranean":
		return weather.ClimateMediterranean
	case "continental":
		return weather.ClimateContinental
	case "oceanic":
		return weather.ClimateOceanic
	case "subarctic":
		return weather.ClimateSubarctic
	}
	return weather.ClimateTemperate
}

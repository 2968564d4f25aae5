package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ming-00/elonpet"
	"github.com/ming-00/elonpet/config"
	"github.com/ming-00/elonpet/memento"
	"github.com/ming-00/elonpet/tui"
)

type options struct {
	ConfigPath string   `short:"c" long:"config"   default:"elonpet.yaml" description:"Path to the YAML config"`
	Headless   int      `long:"headless"           description:"Run N ticks without a terminal and exit"`
	Seed       int64    `long:"seed"               description:"Seed of the random source"`
	Spawn      []string `short:"s" long:"spawn"    description:"Spawn a pet, type:color:name (repeatable)"`
	Export     string   `short:"e" long:"export"   description:"Export the saved pet list to this directory and exit"`
	Import     string   `short:"i" long:"import"   description:"Spawn the pets of an exported list"`
	Scale      float64  `long:"scale" default:"10" description:"Surface units per terminal column"`
}

func parseCmd() options {
	var opts options
	var cmdParser = flags.NewParser(&opts, flags.Default)

	if _, err := cmdParser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
	return opts
}

// parseSpec parses type:color:name. Missing parts are left empty.
func parseSpec(s string) elonpet.PetSpec {
	parts := strings.SplitN(s, ":", 3)
	var spec elonpet.PetSpec
	if len(parts) > 0 {
		spec.Type = elonpet.PetType(parts[0])
	}
	if len(parts) > 1 {
		spec.Color = elonpet.Color(parts[1])
	}
	if len(parts) > 2 {
		spec.Name = parts[2]
	}
	return spec
}

func spawnAll(pg *elonpet.Playground, specs []elonpet.PetSpec) {
	for _, spec := range specs {
		if _, err := pg.Spawn(spec); err != nil {
			log.WithError(err).Warn("Can't spawn pet")
		}
	}
}

func initialSpecs(opts options, store *memento.Store) ([]elonpet.PetSpec, error) {
	specs, err := store.Load()
	if err != nil {
		return nil, err
	}
	if opts.Import != "" {
		imported, err := memento.Import(opts.Import)
		if err != nil {
			return nil, err
		}
		specs = append(specs, imported...)
	}
	for _, s := range opts.Spawn {
		specs = append(specs, parseSpec(s))
	}
	if len(specs) == 0 {
		specs = append(specs, elonpet.PetSpec{})
	}
	return specs, nil
}

func main() {
	opts := parseCmd()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(cfg.LogLevel())
	if opts.Seed != 0 {
		cfg.Seed = opts.Seed
	}
	if err := cfg.LoadSpecies(); err != nil {
		log.Fatal(err)
	}

	store := memento.NewStore(cfg.Memento.Path)
	if opts.Export != "" {
		specs, err := store.Load()
		if err != nil {
			log.Fatal(err)
		}
		path, err := memento.Export(opts.Export, specs)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(path)
		return
	}

	specs, err := initialSpecs(opts, store)
	if err != nil {
		log.Fatal(err)
	}

	if opts.Headless > 0 {
		runHeadless(cfg, store, specs, opts.Headless)
		return
	}
	if err := runTerminal(cfg, store, specs, opts.Scale); err != nil {
		log.Fatal(err)
	}
}

func runHeadless(cfg *config.Config, store *memento.Store, specs []elonpet.PetSpec, ticks int) {
	pg := elonpet.NewPlayground(cfg.PlaygroundOptions(), nil)
	spawnAll(pg, specs)

	for i := 0; i < ticks; i++ {
		for _, m := range pg.Advance() {
			log.Info(m)
		}
	}
	for _, p := range pg.Pets() {
		log.WithFields(log.Fields{
			"pet":    p.Name(),
			"state":  p.CurrentState(),
			"left":   p.Left(),
			"friend": p.Friend(),
		}).Info("Final state")
	}
	save(store, pg)
}

func save(store *memento.Store, pg *elonpet.Playground) {
	if err := store.Save(pg.List()); err != nil {
		log.WithError(err).Error("Can't save pets")
	}
}

type command rune

func runTerminal(cfg *config.Config, store *memento.Store, specs []elonpet.PetSpec, scale float64) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()

	// log lines would corrupt the screen
	log.SetOutput(io.Discard)

	renderer := tui.NewRenderer(screen, scale)
	pgOpts := cfg.PlaygroundOptions()
	pgOpts.Surface.Width = renderer.SurfaceWidth()
	pg := elonpet.NewPlayground(pgOpts, renderer)
	spawnAll(pg, specs)

	commands := make(chan command, 16)
	g, ctx := errgroup.WithContext(context.Background())

	g.Go(func() error {
		defer close(commands)
		for {
			switch ev := screen.PollEvent().(type) {
			case nil:
				return nil
			case *tcell.EventResize:
				select {
				case commands <- 'R':
				case <-ctx.Done():
					return nil
				}
			case *tcell.EventKey:
				c := command(ev.Rune())
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
					c = 'q'
				}
				select {
				case commands <- c:
				case <-ctx.Done():
					return nil
				}
				if c == 'q' {
					return nil
				}
			}
		}
	})

	g.Go(func() error {
		// Fini makes PollEvent return nil, which stops the input goroutine
		defer screen.Fini()
		ticker := time.NewTicker(cfg.TickInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case c, ok := <-commands:
				if !ok || c == 'q' {
					save(store, pg)
					return nil
				}
				handleCommand(pg, renderer, c)
			case <-ticker.C:
				pg.Advance()
				ball, hasBall := pg.Ball()
				renderer.Draw(ball, hasBall)
			}
		}
	})

	return g.Wait()
}

func handleCommand(pg *elonpet.Playground, renderer *tui.Renderer, c command) {
	switch c {
	case 's':
		spawnAll(pg, []elonpet.PetSpec{{}})
	case 'b':
		w := pg.Surface().Width
		pg.ThrowBall(w * 0.25 * float64(1+int(pg.Tick())%3))
	case 'w':
		pg.SwipeAll()
	case 'r':
		pg.RollCall()
	case 'd':
		if pets := pg.Pets(); len(pets) > 0 {
			pg.Remove(pets[len(pets)-1].Name())
		}
	case 'x':
		pg.Reset()
	case 'R':
		pg.Resize(renderer.SurfaceWidth())
	}
}

package boot

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/bringup"
	"github.com/clktmr/cheshire/machine"
	"github.com/clktmr/cheshire/platform"
	"github.com/clktmr/cheshire/sim"
)

const usageString = `Boot all harts of a simulated board.

Usage: %s [flags]

`

var (
	flags = flag.NewFlagSet("boot", flag.ExitOnError)

	boardName = flags.String("board", "cheshire", "Built-in board name or YAML board file")
	verbose   = flags.Bool("v", false, "Log every bring-up step")
	devmem    = flags.Bool("devmem", false, "Boot the real board through /dev/mem instead of the simulator")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "boot")
	flags.PrintDefaults()
}

// Up boots the board called name on a new simulated SoC.
func Up(ctx context.Context, name string, log *logrus.Logger) (*sim.SoC, *bringup.Platform, error) {
	b, err := board.Lookup(name)
	if err != nil {
		return nil, nil, err
	}
	soc, err := sim.New(b)
	if err != nil {
		return nil, nil, err
	}
	p := bringup.New(soc.Bus(), b, bringup.WithLogger(log))
	err = machine.New(p, p.Console(), log).BootAll(ctx, b.Topology)
	return soc, p, err
}

// Logger returns the logger of the tools, at debug level if verbose.
func Logger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}
	return log
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log := Logger(*verbose)
	if *devmem {
		if err := UpDevMem(ctx, *boardName, log); err != nil {
			log.WithField("code", platform.Code(err)).Fatalln(err)
		}
		return
	}
	soc, _, err := Up(ctx, *boardName, log)
	if soc != nil {
		fmt.Print(soc.Console())
	}
	if err != nil {
		log.WithField("code", platform.Code(err)).Fatalln(err)
	}
}

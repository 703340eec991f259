package monitor

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"

	pty "github.com/aymanbagabas/go-pty"
	"github.com/buildkite/shellwords"
	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/bringup"
	"github.com/clktmr/cheshire/sim"
	"github.com/clktmr/cheshire/tools/boot"
)

const usageString = `Boot a simulated board and inspect its interrupts interactively.

Usage: %s [flags]

Type 'help' at the prompt for the list of commands.

`

const prompt = "> "

var (
	flags = flag.NewFlagSet("monitor", flag.ExitOnError)

	boardName = flags.String("board", "cheshire", "Built-in board name or YAML board file")
	verbose   = flags.Bool("v", false, "Log every bring-up step")
	usePty    = flags.Bool("pty", false, "Serve the monitor on a new pseudo terminal")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "monitor")
	flags.PrintDefaults()
}

var errQuit = errors.New("quit")

// Monitor executes commands against a booted SoC.
type Monitor struct {
	soc *sim.SoC
	p   *bringup.Platform
	out io.Writer
}

func New(soc *sim.SoC, p *bringup.Platform, out io.Writer) *Monitor {
	return &Monitor{soc: soc, p: p, out: out}
}

// Exec runs a single command line. Arguments are numbers in Go syntax.
func (m *Monitor) Exec(line string) error {
	args, err := shellwords.Split(line)
	if err != nil {
		return err
	}
	if len(args) == 0 {
		return nil
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return fmt.Errorf("unknown command: %s", args[0])
	}
	if len(args)-1 != len(cmd.args) {
		return fmt.Errorf("usage: %s", cmd.usage(args[0]))
	}
	nums := make([]uint64, len(cmd.args))
	for i, arg := range args[1:] {
		nums[i], err = strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", cmd.args[i], err)
		}
	}
	return cmd.run(m, nums)
}

// Serve executes command lines read from r until EOF or quit.
func (m *Monitor) Serve(r io.Reader) error {
	sc := bufio.NewScanner(r)
	fmt.Fprint(m.out, prompt)
	for sc.Scan() {
		err := m.Exec(sc.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintln(m.out, "error:", err)
		}
		fmt.Fprint(m.out, prompt)
	}
	return sc.Err()
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

	log := boot.Logger(*verbose)
	soc, p, err := boot.Up(ctx, *boardName, log)
	if err != nil {
		if soc != nil {
			fmt.Print(soc.Console())
		}
		logrus.Fatalln(err)
	}

	var rw io.ReadWriter = struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}
	if *usePty {
		t, err := pty.New()
		if err != nil {
			logrus.Fatalln(err)
		}
		defer t.Close()
		log.Infof("monitor listening on %s", t.Name())
		rw = t
	}

	if err := New(soc, p, rw).Serve(rw); err != nil {
		logrus.Fatalln(err)
	}
}

package image

import (
	"bufio"
	"debug/elf"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"time"

	"github.com/buildkite/shellwords"
	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
)

const usageString = `Firmware ELF to boot image converter.

Usage: %s [flags] <elffile>

`

var (
	flags = flag.NewFlagSet("image", flag.ExitOnError)

	boardName = flags.String("board", "cheshire", "Built-in board name or YAML board file")
	outfile   = flags.String("o", "", "Output file, defaults to the ELF name with .img suffix")
	run       = flags.String("run", "", "Run the image with command")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "image")
	flags.PrintDefaults()
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 1 {
		flags.Usage()
		os.Exit(1)
	}
	infile := flags.Arg(0)
	if *outfile == "" {
		name, _ := strings.CutSuffix(infile, ".elf")
		*outfile = name + ".img"
	}

	b, err := board.Lookup(*boardName)
	if err != nil {
		logrus.Fatalln(err)
	}

	f, err := elf.Open(infile)
	if err != nil {
		logrus.Fatalln(err)
	}
	defer f.Close()
	segs, err := Segments(f)
	if err != nil {
		logrus.Fatalln(infile+":", err)
	}

	out, err := os.Create(*outfile)
	if err != nil {
		logrus.Fatalln(err)
	}
	d := b.Descriptor()
	err = Build(out, &d, f.Entry, segs)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		logrus.Fatalln("build image:", err)
	}

	if *run != "" {
		os.Exit(runImage(*run, *outfile))
	}
}

// runImage runs cmdline with the image appended and follows its output
// until the firmware reports ready or failed.
func runImage(cmdline, path string) int {
	args, err := shellwords.Split(cmdline)
	if err != nil || len(args) == 0 {
		logrus.Fatalln("run:", cmdline, err)
	}
	args = append(args, path)
	cmd := exec.Command(args[0], args[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr
	setProcessGroup(cmd)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		logrus.Fatalln("open stdout:", err)
	}

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt)

	if err := cmd.Start(); err != nil {
		logrus.Fatalln("start command:", err)
	}

	stop := func() {
		stdout.Close()
		if err := killProcessGroup(cmd); err != nil {
			logrus.Warnln(err)
		}
	}
	go func() {
		<-sigintr
		stop()
	}()

	scanner := bufio.NewScanner(stdout)
	exiting := false
	code := 0
	for scanner.Scan() {
		line := scanner.Text()
		fmt.Println(line)
		if exiting {
			continue
		}
		switch {
		case strings.HasPrefix(line, "panic:"), strings.Contains(line, "boot failed"):
			code = 1
			fallthrough
		case strings.Contains(line, "msg=ready"):
			exiting = true
			go func() {
				// let the firmware finish printing
				time.Sleep(500 * time.Millisecond)
				stop()
			}()
		}
	}
	cmd.Wait()
	return code
}

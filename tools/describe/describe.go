package describe

import (
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/clktmr/cheshire/board"
	"github.com/clktmr/cheshire/machine"
	"github.com/clktmr/cheshire/platform"
)

const usageString = `Print, encode or decode a platform descriptor.

Usage: %s [flags]

Without -o or -d the descriptor of the board is printed.

`

var (
	flags = flag.NewFlagSet("describe", flag.ExitOnError)

	boardName = flags.String("board", "cheshire", "Built-in board name or YAML board file")
	outfile   = flags.String("o", "", "Write the binary descriptor to file")
	infile    = flags.String("d", "", "Decode and print the binary descriptor in file")
	asYAML    = flags.Bool("yaml", false, "Print the whole board as YAML")
)

func usage() {
	fmt.Fprintf(flags.Output(), usageString, "describe")
	flags.PrintDefaults()
}

// Decode reads a binary descriptor from r.
func Decode(r io.Reader) (*platform.Descriptor, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var d platform.Descriptor
	if err := d.UnmarshalBinary(data); err != nil {
		return nil, err
	}
	return &d, nil
}

func Main(args []string) {
	flags.Usage = usage
	flags.Parse(args[1:])

	if flags.NArg() != 0 {
		flags.Usage()
		os.Exit(1)
	}

	if *infile != "" {
		f, err := os.Open(*infile)
		if err != nil {
			logrus.Fatalln(err)
		}
		defer f.Close()
		d, err := Decode(f)
		if err != nil {
			logrus.Fatalln(*infile+":", err)
		}
		machine.Banner(os.Stdout, *d)
		return
	}

	b, err := board.Lookup(*boardName)
	if err != nil {
		logrus.Fatalln(err)
	}

	switch {
	case *asYAML:
		data, err := board.Marshal(b)
		if err != nil {
			logrus.Fatalln(err)
		}
		os.Stdout.Write(data)
	case *outfile != "":
		d := b.Descriptor()
		data, err := d.MarshalBinary()
		if err != nil {
			logrus.Fatalln("encode descriptor:", err)
		}
		if err := os.WriteFile(*outfile, data, 0o644); err != nil {
			logrus.Fatalln(err)
		}
	default:
		machine.Banner(os.Stdout, b.Descriptor())
	}
}

package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/clktmr/cheshire/tools/boot"
	"github.com/clktmr/cheshire/tools/describe"
	"github.com/clktmr/cheshire/tools/image"
	"github.com/clktmr/cheshire/tools/monitor"
)

const usageString = `cheshire-sim runs the Cheshire platform bring-up against a simulated SoC.

Usage:

	%s <command> [arguments]

The commands are:

	boot     boot all harts and print the console output
	describe print, encode or decode the platform descriptor
	image    pack a firmware ELF into a boot image and run it
	monitor  boot and inspect interrupts interactively
`

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	switch flag.Arg(0) {
	case "boot":
		boot.Main(flag.Args())
	case "describe":
		describe.Main(flag.Args())
	case "image":
		image.Main(flag.Args())
	case "monitor":
		monitor.Main(flag.Args())
	default:
		fmt.Fprintf(flag.CommandLine.Output(), "unknown command: %s\n", flag.Arg(0))
		flag.Usage()
		os.Exit(1)
	}
}

package monitor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/clktmr/cheshire/soc/riscv"
)

type command struct {
	args []string
	help string
	run  func(m *Monitor, a []uint64) error
}

func (c command) usage(name string) string {
	return strings.Join(append([]string{name}, c.args...), " ")
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"help": {nil, "list commands", help},
		"quit": {nil, "leave the monitor", func(*Monitor, []uint64) error { return errQuit }},
		"ipi": {[]string{"hart"}, "send a software interrupt", func(m *Monitor, a []uint64) error {
			return m.p.IPI().Send(riscv.HartID(a[0]))
		}},
		"clear": {[]string{"hart"}, "withdraw a software interrupt", func(m *Monitor, a []uint64) error {
			return m.p.IPI().Clear(riscv.HartID(a[0]))
		}},
		"now": {nil, "print the timer counter", func(m *Monitor, _ []uint64) error {
			fmt.Fprintln(m.out, m.p.Timer().Value())
			return nil
		}},
		"advance": {[]string{"ticks"}, "advance the timer counter", func(m *Monitor, a []uint64) error {
			m.soc.Advance(a[0])
			fmt.Fprintln(m.out, m.soc.Now())
			return nil
		}},
		"timer": {[]string{"hart", "ticks"}, "fire the timer of hart after ticks", func(m *Monitor, a []uint64) error {
			t := m.p.Timer()
			return t.Start(riscv.HartID(a[0]), t.Value()+a[1])
		}},
		"fires": {[]string{"hart"}, "print how often the timer of hart fired", func(m *Monitor, a []uint64) error {
			fmt.Fprintln(m.out, m.soc.TimerFires(riscv.HartID(a[0])))
			return nil
		}},
		"delegate": {[]string{"irq"}, "route irq through the distributor", func(m *Monitor, a []uint64) error {
			return m.p.IrqctlDelegate(riscv.IRQ(a[0]))
		}},
		"reclaim": {[]string{"irq"}, "terminate irq at the CLIC", func(m *Monitor, a []uint64) error {
			return m.p.Router().Reclaim(riscv.IRQ(a[0]))
		}},
		"layer": {[]string{"hart", "irq"}, "print where irq terminates", func(m *Monitor, a []uint64) error {
			l, err := m.p.Router().Layer(riscv.HartID(a[0]), riscv.IRQ(a[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, l)
			return nil
		}},
		"pending": {[]string{"hart", "irq"}, "print whether irq is pending", func(m *Monitor, a []uint64) error {
			v, err := m.p.Irqchip().Local().Pending(riscv.HartID(a[0]), riscv.IRQ(a[1]))
			if err != nil {
				return err
			}
			fmt.Fprintln(m.out, v)
			return nil
		}},
		"console": {nil, "print the console output", func(m *Monitor, _ []uint64) error {
			fmt.Fprint(m.out, m.soc.Console())
			return nil
		}},
	}
}

func help(m *Monitor, _ []uint64) error {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(m.out, "%-16s %s\n", c.usage(name), c.help)
	}
	return nil
}

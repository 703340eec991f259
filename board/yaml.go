package board

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Parse decodes and validates a board description. Unknown keys are an
// error, so typos don't silently fall back to zero values.
func Parse(data []byte) (*Board, error) {
	var b Board
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("board: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Load reads a board description from a YAML file.
func Load(name string) (*Board, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, err
	}
	b, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

// Marshal encodes b as YAML, in the format read by Parse.
func Marshal(b *Board) ([]byte, error) {
	return yaml.Marshal(b)
}

var builtin = map[string]*Board{
	"cheshire": &Cheshire,
}

// Lookup returns a copy of the built-in board called name, or else loads
// name as a YAML file.
func Lookup(name string) (*Board, error) {
	if b, ok := builtin[name]; ok {
		c := *b
		return &c, nil
	}
	return Load(name)
}

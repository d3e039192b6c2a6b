// Package delimiter defines the four configurable symbols that compose the
// RangeLink notation and the rules that keep them unambiguous.
package delimiter

import (
	"strings"
)

// ReservedChars lists characters that no delimiter may contain. They are used
// by the portable metadata suffix, by path quoting, or commonly appear in paths.
const ReservedChars = "~|/\\:,@"

// Slot names one of the four delimiter positions in a Config.
type Slot string

const (
	SlotLine     Slot = "line"
	SlotPosition Slot = "position"
	SlotHash     Slot = "hash"
	SlotRange    Slot = "range"
)

// Config holds the delimiter symbols used to build and read links.
//
// A Config is a plain value; once validated it is treated as immutable and may
// be shared between formatters, parsers and scanners without synchronization.
type Config struct {
	Line     string `yaml:"line" json:"line"`
	Position string `yaml:"position" json:"position"`
	Hash     string `yaml:"hash" json:"hash"`
	Range    string `yaml:"range" json:"range"`
}

// Default returns the built-in delimiter set: L, C, # and -.
func Default() Config {
	return Config{
		Line:     "L",
		Position: "C",
		Hash:     "#",
		Range:    "-",
	}
}

// SlotValue pairs a slot with its configured symbol.
type SlotValue struct {
	Slot  Slot
	Value string
}

// Slots returns the delimiters in canonical order (line, position, hash, range).
func (c Config) Slots() []SlotValue {
	return []SlotValue{
		{Slot: SlotLine, Value: c.Line},
		{Slot: SlotPosition, Value: c.Position},
		{Slot: SlotHash, Value: c.Hash},
		{Slot: SlotRange, Value: c.Range},
	}
}

// Get returns the symbol stored in slot.
func (c Config) Get(slot Slot) string {
	switch slot {
	case SlotLine:
		return c.Line
	case SlotPosition:
		return c.Position
	case SlotHash:
		return c.Hash
	case SlotRange:
		return c.Range
	default:
		return ""
	}
}

// With returns a copy of c with slot set to value.
func (c Config) With(slot Slot, value string) Config {
	switch slot {
	case SlotLine:
		c.Line = value
	case SlotPosition:
		c.Position = value
	case SlotHash:
		c.Hash = value
	case SlotRange:
		c.Range = value
	}
	return c
}

// Validate checks every slot and the cross-slot invariants.
//
// Per-slot failures are reported first, one error per offending slot. The
// uniqueness and substring checks only run once every slot is individually
// valid, since they are meaningless on empty or malformed symbols.
func (c Config) Validate() Errors {
	var errs Errors
	for _, sv := range c.Slots() {
		if _, err := ValidateDelimiter(sv.Value, sv.Slot == SlotHash); err != nil {
			err.Slot = sv.Slot
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs
	}

	if !AreDelimitersUnique(c) {
		return Errors{{Kind: KindNotUnique, Value: c.String()}}
	}
	if HaveSubstringConflicts(c) {
		return Errors{{Kind: KindSubstringConflict, Value: c.String()}}
	}
	return nil
}

// IsValid reports whether Validate finds no problems.
func (c Config) IsValid() bool {
	return len(c.Validate()) == 0
}

// Resolve returns c when it is valid. Otherwise it returns Default together
// with the errors that caused the fallback.
func Resolve(c Config) (Config, Errors) {
	if errs := c.Validate(); len(errs) > 0 {
		return Default(), errs
	}
	return c, nil
}

// String renders the config in slot order, e.g. "line=L position=C hash=# range=-".
func (c Config) String() string {
	var b strings.Builder
	for i, sv := range c.Slots() {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(string(sv.Slot))
		b.WriteByte('=')
		b.WriteString(sv.Value)
	}
	return b.String()
}

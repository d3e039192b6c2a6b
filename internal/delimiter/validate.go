package delimiter

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ValidationKind classifies why a delimiter was rejected.
type ValidationKind string

const (
	KindEmpty                ValidationKind = "empty"
	KindContainsDigits       ValidationKind = "contains_digits"
	KindContainsWhitespace   ValidationKind = "contains_whitespace"
	KindContainsReservedChar ValidationKind = "contains_reserved_char"
	KindHashNotSingleChar    ValidationKind = "hash_not_single_char"
	KindNotUnique            ValidationKind = "not_unique"
	KindSubstringConflict    ValidationKind = "substring_conflict"
)

// ValidationError describes a single rejected delimiter. Slot is empty for
// the cross-slot kinds (KindNotUnique, KindSubstringConflict).
type ValidationError struct {
	Kind  ValidationKind
	Slot  Slot
	Value string
	// Char is the offending reserved character for KindContainsReservedChar.
	Char string
}

func (e *ValidationError) Error() string {
	var msg string
	switch e.Kind {
	case KindEmpty:
		msg = "must not be empty"
	case KindContainsDigits:
		msg = "must not contain digits"
	case KindContainsWhitespace:
		msg = "must not contain whitespace"
	case KindContainsReservedChar:
		msg = fmt.Sprintf("must not contain reserved character %q", e.Char)
	case KindHashNotSingleChar:
		msg = "must be exactly one character"
	case KindNotUnique:
		return fmt.Sprintf("delimiters must be unique (case-insensitive): %s", e.Value)
	case KindSubstringConflict:
		return fmt.Sprintf("no delimiter may contain another: %s", e.Value)
	default:
		msg = string(e.Kind)
	}
	if e.Slot != "" {
		return fmt.Sprintf("%s delimiter %q %s", e.Slot, e.Value, msg)
	}
	return fmt.Sprintf("delimiter %q %s", e.Value, msg)
}

// Errors is the list of problems found in a Config.
type Errors []*ValidationError

func (es Errors) Error() string {
	msgs := make([]string, 0, len(es))
	for _, e := range es {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Err returns es as an error, or nil when es is empty.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// ValidateDelimiter checks a single symbol. isHash enables the
// single-character rule, since the hash is doubled to mark rectangular links.
func ValidateDelimiter(value string, isHash bool) (string, *ValidationError) {
	if value == "" {
		return "", &ValidationError{Kind: KindEmpty, Value: value}
	}
	if strings.IndexFunc(value, unicode.IsSpace) >= 0 {
		return "", &ValidationError{Kind: KindContainsWhitespace, Value: value}
	}
	if strings.IndexFunc(value, unicode.IsDigit) >= 0 {
		return "", &ValidationError{Kind: KindContainsDigits, Value: value}
	}
	if i := strings.IndexAny(value, ReservedChars); i >= 0 {
		r, _ := utf8.DecodeRuneInString(value[i:])
		return "", &ValidationError{Kind: KindContainsReservedChar, Value: value, Char: string(r)}
	}
	if isHash && utf8.RuneCountInString(value) != 1 {
		return "", &ValidationError{Kind: KindHashNotSingleChar, Value: value}
	}
	return value, nil
}

// AreDelimitersUnique reports whether all four symbols differ under
// case-insensitive comparison.
func AreDelimitersUnique(c Config) bool {
	seen := make(map[string]struct{}, 4)
	for _, sv := range c.Slots() {
		key := strings.ToLower(sv.Value)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
	}
	return true
}

// HaveSubstringConflicts reports whether any symbol contains another one
// (case-insensitive). Equal symbols count as a conflict.
func HaveSubstringConflicts(c Config) bool {
	slots := c.Slots()
	for i := range slots {
		a := strings.ToLower(slots[i].Value)
		for j := range slots {
			if i == j {
				continue
			}
			b := strings.ToLower(slots[j].Value)
			if b != "" && strings.Contains(a, b) {
				return true
			}
		}
	}
	return false
}

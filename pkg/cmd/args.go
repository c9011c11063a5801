package cmd

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

// ValueType is the type an argument is coerced to.
type ValueType int

const (
	String ValueType = iota
	Number
)

func (t ValueType) String() string {
	switch t {
	case String:
		return "string"
	case Number:
		return "number"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// DefaultDelimiter separates arguments that do not set their own delimiter.
const DefaultDelimiter = " "

// Arg describes a single positional argument of a unit.
//
// Only the last argument of a unit may leave its delimiter unset and rely on
// consuming the remainder of the text; any other argument without a delimiter
// is split on DefaultDelimiter.
type Arg struct {
	Name      string
	Mandatory bool
	Delimiter string
	Type      ValueType
}

func (a Arg) delimiter() string {
	if a.Delimiter == "" {
		return DefaultDelimiter
	}
	return a.Delimiter
}

// Validate checks the shape of the descriptor.
func (a Arg) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("argument name is empty")
	}
	if a.Type != String && a.Type != Number {
		return fmt.Errorf("argument %q: unknown value type %s", a.Name, a.Type)
	}
	return nil
}

// Usage renders <name> for mandatory and [name] for optional arguments.
func (a Arg) Usage() string {
	if a.Mandatory {
		return "<" + a.Name + ">"
	}
	return "[" + a.Name + "]"
}

// MandatoryCount returns how many descriptors are mandatory.
func MandatoryCount(descs []Arg) int {
	n := 0
	for _, d := range descs {
		if d.Mandatory {
			n++
		}
	}
	return n
}

// argWarnings lists design smells in a descriptor list. They are reported at
// startup and never fail registration.
func argWarnings(descs []Arg) []string {
	var out []string
	for i, d := range descs {
		last := i == len(descs)-1
		if last && d.Delimiter != "" {
			out = append(out, fmt.Sprintf("argument %q is last but sets delimiter %q, it will be ignored", d.Name, d.Delimiter))
			continue
		}
		if len([]rune(d.Delimiter)) > 1 {
			out = append(out, fmt.Sprintf("argument %q uses multi-character delimiter %q, prefer a single character", d.Name, d.Delimiter))
		}
	}
	return out
}

// Value is one parsed argument.
type Value struct {
	Text string
	Num  int
	Type ValueType
}

// Empty reports whether nothing was captured for the slot.
func (v Value) Empty() bool { return v.Text == "" }

// Args is the ordered result of ParseArgs, one slot per descriptor.
type Args []Value

// Count returns the number of non-empty slots.
func (a Args) Count() int {
	n := 0
	for _, v := range a {
		if !v.Empty() {
			n++
		}
	}
	return n
}

// Has reports whether slot i exists and is non-empty.
func (a Args) Has(i int) bool {
	return i >= 0 && i < len(a) && !a[i].Empty()
}

// String returns the text of slot i, or "" when absent.
func (a Args) String(i int) string {
	if i < 0 || i >= len(a) {
		return ""
	}
	return a[i].Text
}

// Int returns the number in slot i, or 0 when absent.
func (a Args) Int(i int) int {
	if i < 0 || i >= len(a) {
		return 0
	}
	return a[i].Num
}

// Strings returns the text of every slot.
func (a Args) Strings() []string {
	out := make([]string, len(a))
	for i, v := range a {
		out[i] = v.Text
	}
	return out
}

// ParseArgs splits raw into one value per descriptor.
//
// Each descriptor except the last collects text up to the first occurrence of
// its delimiter, which is consumed. The last descriptor always takes the rest of
// the string. A descriptor whose delimiter never appears takes the rest of the
// string too, leaving later slots empty. Number descriptors are coerced with a
// leading-integer parse; a non-numeric value fails the whole call with ok=false.
//
// ParseArgs does not enforce mandatory descriptors: compare Args.Count with
// MandatoryCount.
func ParseArgs(descs []Arg, raw string) (args Args, ok bool) {
	args = make(Args, len(descs))
	rest := raw

	for i, d := range descs {
		var text string
		if i == len(descs)-1 {
			text, rest = rest, ""
		} else if idx := strings.Index(rest, d.delimiter()); idx >= 0 {
			text, rest = rest[:idx], rest[idx+len(d.delimiter()):]
		} else {
			text, rest = rest, ""
		}

		v := Value{Text: text, Type: d.Type}
		if d.Type == Number && text != "" {
			n, ok := parseLeadingInt(text)
			if !ok {
				return nil, false
			}
			v.Num = n
		}
		args[i] = v
	}

	return args, true
}

// parseLeadingInt parses an optional sign and the leading run of digits,
// ignoring leading whitespace and anything after the digits.
func parseLeadingInt(s string) (int, bool) {
	s = strings.TrimLeftFunc(s, unicode.IsSpace)

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

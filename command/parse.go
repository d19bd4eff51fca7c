package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/QuangTung97/buddymem"
	"github.com/pkg/errors"
)

// ErrParse indicates a malformed command line.
var ErrParse = errors.New("command: parse error")

// ParseError describes why a line could not be parsed.
type ParseError struct {
	Line   string
	Reason string
}

func (e *ParseError) Error() string {
	return "parse error: " + e.Reason
}

// Unwrap ...
func (e *ParseError) Unwrap() error {
	return ErrParse
}

// Verb ...
type Verb int

const (
	// VerbNone is returned for blank lines and comments.
	VerbNone Verb = iota
	VerbInsert
	VerbRead
	VerbUpdate
	VerbDelete
	VerbDump
	VerbStats
	VerbExit
)

var verbNames = map[string]Verb{
	"INSERT": VerbInsert,
	"READ":   VerbRead,
	"UPDATE": VerbUpdate,
	"DELETE": VerbDelete,
	"DUMP":   VerbDump,
	"STATS":  VerbStats,
	"EXIT":   VerbExit,
}

func (v Verb) String() string {
	for name, verb := range verbNames {
		if verb == v {
			return name
		}
	}
	return "NONE"
}

// Command is one parsed protocol line.
type Command struct {
	Verb Verb
	Size int
	ID   buddymem.ID
	Data []byte
}

func cutField(s string) (string, string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

// Parse reads one command line. Verbs are case-insensitive and a trailing ';'
// is ignored. Blank lines and lines starting with '#' parse to VerbNone.
func Parse(line string) (Command, error) {
	text := strings.TrimSpace(line)
	text = strings.TrimSpace(strings.TrimSuffix(text, ";"))
	if text == "" || strings.HasPrefix(text, "#") {
		return Command{Verb: VerbNone}, nil
	}

	name, rest := cutField(text)
	verb, ok := verbNames[strings.ToUpper(name)]
	if !ok {
		return Command{}, &ParseError{Line: line, Reason: fmt.Sprintf("unknown command %q", name)}
	}

	cmd := Command{Verb: verb}
	switch verb {
	case VerbInsert:
		sizeText, data := cutField(rest)
		size, err := strconv.Atoi(sizeText)
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: fmt.Sprintf("invalid size %q", sizeText)}
		}
		if data == "" {
			return Command{}, &ParseError{Line: line, Reason: "missing data"}
		}
		payload, err := ParseData(data)
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		cmd.Size = size
		cmd.Data = payload

	case VerbUpdate:
		idText, data := cutField(rest)
		id, err := parseID(idText)
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		if data == "" {
			return Command{}, &ParseError{Line: line, Reason: "missing data"}
		}
		payload, err := ParseData(data)
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		cmd.ID = id
		cmd.Data = payload

	case VerbRead, VerbDelete:
		idText, extra := cutField(rest)
		if extra != "" {
			return Command{}, &ParseError{Line: line, Reason: "unexpected arguments"}
		}
		id, err := parseID(idText)
		if err != nil {
			return Command{}, &ParseError{Line: line, Reason: err.Error()}
		}
		cmd.ID = id

	default:
		if rest != "" {
			return Command{}, &ParseError{Line: line, Reason: "unexpected arguments"}
		}
	}
	return cmd, nil
}

func parseID(s string) (buddymem.ID, error) {
	if s == "" {
		return 0, errors.New("missing id")
	}
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, errors.Errorf("invalid id %q", s)
	}
	return buddymem.ID(id), nil
}

// ParseData decodes a payload. Text prefixed with 0x or 0X is a
// whitespace-separated list of hex bytes, each optionally prefixed with 0x
// itself; anything else is taken as raw bytes.
func ParseData(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return []byte(s), nil
	}

	fields := strings.Fields(s[2:])
	if len(fields) == 0 {
		return nil, errors.New("empty hex payload")
	}

	result := make([]byte, 0, len(fields))
	for _, f := range fields {
		digits := strings.TrimPrefix(strings.TrimPrefix(f, "0x"), "0X")
		b, err := strconv.ParseUint(digits, 16, 8)
		if err != nil {
			return nil, errors.Errorf("invalid hex byte %q", f)
		}
		result = append(result, byte(b))
	}
	return result, nil
}

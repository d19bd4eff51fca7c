package command

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/QuangTung97/buddymem"
	"github.com/pkg/errors"
)

// Interpreter executes protocol lines against a Manager and writes the
// responses to an io.Writer. Failures are reported on the output and never
// stop the loop; only EXIT or the end of input does.
type Interpreter struct {
	manager *buddymem.Manager
	out     io.Writer
	logger  *slog.Logger
	label   LabelFunc
	line    int
}

// Option ...
type Option func(it *Interpreter)

// WithLogger ...
func WithLogger(logger *slog.Logger) Option {
	return func(it *Interpreter) {
		it.logger = logger
	}
}

// WithLabel sets the function decorating ALLOCATED/FREE labels.
func WithLabel(label LabelFunc) Option {
	return func(it *Interpreter) {
		it.label = label
	}
}

// NewInterpreter ...
func NewInterpreter(manager *buddymem.Manager, out io.Writer, opts ...Option) *Interpreter {
	it := &Interpreter{
		manager: manager,
		out:     out,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		label:   plainLabel,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

func (it *Interpreter) printf(format string, args ...interface{}) {
	fmt.Fprintf(it.out, format, args...)
}

// Execute runs one line and reports whether it was EXIT.
func (it *Interpreter) Execute(line string) bool {
	it.line++

	cmd, err := Parse(line)
	if err != nil {
		it.fail(err)
		return false
	}

	switch cmd.Verb {
	case VerbNone:
	case VerbExit:
		return true

	case VerbInsert:
		id, err := it.manager.Insert(cmd.Size, cmd.Data)
		if err != nil {
			it.fail(errors.Wrap(err, "INSERT"))
			return false
		}
		it.printf("INSERT success: ID = %d\n", id)

	case VerbRead:
		view, err := it.manager.Read(cmd.ID)
		if err != nil {
			it.fail(errors.Wrap(err, "READ"))
			return false
		}
		it.printf("%s\n", FormatRead(view, it.label))

	case VerbUpdate:
		id, err := it.manager.Update(cmd.ID, cmd.Data)
		if err != nil {
			it.fail(errors.Wrap(err, "UPDATE"))
			return false
		}
		if id != cmd.ID {
			it.printf("UPDATE success: ID = %d (reallocated from %d)\n", id, cmd.ID)
		} else {
			it.printf("UPDATE success: ID = %d\n", id)
		}

	case VerbDelete:
		if err := it.manager.Delete(cmd.ID); err != nil {
			it.fail(errors.Wrap(err, "DELETE"))
			return false
		}
		it.printf("DELETE success: ID = %d\n", cmd.ID)

	case VerbDump:
		for _, d := range it.manager.Dump() {
			it.printf("%s\n", FormatDescriptor(d, it.label))
		}

	case VerbStats:
		it.printf("%s\n", FormatStats(it.manager.Stats()))
	}
	return false
}

func (it *Interpreter) fail(err error) {
	it.logger.Debug("command rejected",
		slog.Int("line", it.line),
		slog.String("error", err.Error()),
	)
	it.printf("Error: %v\n", err)
}

// Run executes lines from r until EXIT or end of input.
// Lines have no length limit: a payload may be as large as the arena.
func (it *Interpreter) Run(r io.Reader) error {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if err != nil && err != io.EOF {
			return errors.Wrap(err, "read commands")
		}
		if line != "" {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if it.Execute(line) {
				return nil
			}
		}
		if err == io.EOF {
			return nil
		}
	}
}

// Package cli contains the small command-line scaffolding shared by the casl2 and comet2
// binaries. Unlike a multi-command tool, each binary here runs exactly one Command, so the
// dispatch logic is a Runner rather than the teacher's multi-command Commander.
package cli

import (
	"flag"
	"io"
	"os"

	"github.com/omzn/casl2/internal/log"
)

// Command is a single command-line entry point. It owns its flags and its exit behavior.
type Command interface {
	// FlagSet returns the flags the command accepts.
	FlagSet() *flag.FlagSet

	// Usage prints detailed documentation for the command.
	Usage(out io.Writer) error

	// Run executes the command with the remaining, non-flag arguments. It returns a process
	// exit code.
	Run(args []string, out io.Writer, logger *log.Logger) int
}

// Runner drives a single Command's life cycle: parse flags, bind a logger, run, exit.
type Runner struct {
	log *log.Logger
	cmd Command
}

// New creates a Runner for the given command.
func New(cmd Command) *Runner {
	return &Runner{cmd: cmd}
}

// Execute parses argv (excluding the program name) and runs the command.
func (r *Runner) Execute(argv []string) int {
	fs := r.cmd.FlagSet()
	fs.Usage = func() { _ = r.cmd.Usage(os.Stderr) }

	if err := fs.Parse(argv); err != nil {
		return 2
	}

	logger := r.log
	if logger == nil {
		logger = log.DefaultLogger()
	}

	return r.cmd.Run(fs.Args(), os.Stdout, logger)
}

// WithLogger overrides the logger passed to the command.
func (r *Runner) WithLogger(logger *log.Logger) *Runner {
	r.log = logger
	return r
}

// Type aliases from the standard library, kept so commands need not import "flag" directly.
type (
	Flag    = flag.Flag
	FlagSet = flag.FlagSet
)

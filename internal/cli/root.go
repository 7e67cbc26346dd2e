// Package cli implements the offline tabsplit command: parse a receipt and
// split it without running the server.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/tabsplit/internal/parser"
	"github.com/mmynk/tabsplit/pkg/logging"
)

// Options configures the CLI streams.
type Options struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type rootCmd struct {
	opts     Options
	symbol   string
	logLevel string
}

// NewRootCmd builds the tabsplit command tree.
func NewRootCmd(opts Options) *cobra.Command {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}
	rc := &rootCmd{opts: opts}

	cmd := &cobra.Command{
		Use:           "tabsplit",
		Short:         "Split a restaurant receipt between diners",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup(rc.logLevel, "text")
		},
	}
	cmd.SetIn(opts.In)
	cmd.SetOut(opts.Out)
	cmd.SetErr(opts.Err)

	cmd.PersistentFlags().StringVar(&rc.symbol, "currency-symbol", parser.DefaultSymbol, "Currency symbol prefixing receipt amounts")
	cmd.PersistentFlags().StringVar(&rc.logLevel, "log-level", "warn", "Log level: debug, info, warn, error")

	cmd.AddCommand(newParseCmd(rc), newSplitCmd(rc))
	return cmd
}

func (rc *rootCmd) newParser() *parser.Parser {
	return parser.New(rc.symbol)
}

// readReceipt reads the receipt text from the named file, or from stdin when
// no file or "-" is given.
func (rc *rootCmd) readReceipt(args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(rc.opts.In)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return "", fmt.Errorf("failed to read receipt: %w", err)
	}
	return string(data), nil
}

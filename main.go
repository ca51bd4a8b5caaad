// Command calcdeck is a terminal calculus workbench: type a function, pick
// an operation and get the symbolic result with a plot.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"calcdeck/internal/calc"
	"calcdeck/internal/plot"
	"calcdeck/internal/symbolic"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	logPath string
	samples int
	window  string
}

// dispatcher wires the engine, plot settings and logger together. The
// returned closer releases the log file.
func (o *options) dispatcher() (*calc.Dispatcher, func() error, error) {
	cfg, err := plotConfig(o.samples, o.window)
	if err != nil {
		return nil, nil, err
	}
	logger, closer, err := o.logger()
	if err != nil {
		return nil, nil, err
	}
	return calc.NewDispatcher(symbolic.NewEngine(), cfg, logger), closer, nil
}

// logger writes to --log through tea.LogToFile so nothing reaches the
// terminal while the TUI owns it. Without --log, records are discarded.
func (o *options) logger() (*slog.Logger, func() error, error) {
	if o.logPath == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}
	f, err := tea.LogToFile(o.logPath, "calcdeck")
	if err != nil {
		return nil, nil, fmt.Errorf("open log: %w", err)
	}
	h := slog.NewTextHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h), f.Close, nil
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	defaults := plot.DefaultConfig()

	cmd := &cobra.Command{
		Use:          "calcdeck",
		Short:        "Terminal calculus workbench",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, closeLog, err := opts.dispatcher()
			if err != nil {
				return err
			}
			defer closeLog()

			p := tea.NewProgram(initialModel(d), tea.WithAltScreen())
			_, err = p.Run()
			return err
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logPath, "log", "", "write debug logs to `file`")
	flags.IntVar(&opts.samples, "samples", defaults.Samples, "samples per plotted curve")
	flags.StringVar(&opts.window, "window", formatParam(defaults.Window), "half-width of the default plot window, e.g. 2*pi")

	cmd.AddCommand(newEvalCmd(opts))
	return cmd
}

// evalFlags mirror the TUI form fields.
type evalFlags struct {
	op      string
	values  map[calc.Field]*string
	pngPath string
}

func newEvalCmd(opts *options) *cobra.Command {
	ef := evalFlags{values: map[calc.Field]*string{}}
	for f := calc.FieldFunction; f <= calc.FieldInner; f++ {
		ef.values[f] = new(string)
	}

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run one calculation and print the result",
		Example: `  calcdeck eval --op area --f x --lower 0 --upper 2
  calcdeck eval --op chain --outer "u**2" --inner "sin(x)" --png chain.png`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			op, err := calc.ParseOperation(ef.op)
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return err
			}
			d, closeLog, err := opts.dispatcher()
			if err != nil {
				cmd.PrintErrln("Error:", err)
				return err
			}
			defer closeLog()
			return runEval(cmd.OutOrStdout(), d, ef.request(op), ef.pngPath)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&ef.op, "op", "", "operation, e.g. integral, area, limit, partial, chain")
	fl.StringVar(ef.values[calc.FieldFunction], "f", "", "function f")
	fl.StringVar(ef.values[calc.FieldVariable], "var", "x", "variable")
	fl.StringVar(ef.values[calc.FieldVariable2], "var2", "y", "second variable (partial derivative)")
	fl.StringVar(ef.values[calc.FieldLower], "lower", "", "lower bound")
	fl.StringVar(ef.values[calc.FieldUpper], "upper", "", "upper bound")
	fl.StringVar(ef.values[calc.FieldLimitPoint], "point", "", "limit point; oo and -oo are allowed")
	fl.StringVar(ef.values[calc.FieldOuter], "outer", "", "outer function of u (chain rule)")
	fl.StringVar(ef.values[calc.FieldInner], "inner", "", "inner function (chain rule)")
	fl.StringVar(&ef.pngPath, "png", "", "also save the plot to `file`")
	return cmd
}

func (ef evalFlags) request(op calc.Operation) calc.Request {
	req := calc.NewRequest(op)
	for _, f := range op.Required() {
		req = req.With(f, *ef.values[f])
	}
	return req
}

// runEval prints the result line, or the error message the TUI would show.
func runEval(w io.Writer, d *calc.Dispatcher, req calc.Request, pngPath string) error {
	res, err := d.Calculate(req)
	if err != nil {
		fmt.Fprintln(w, calc.Message(req.Operation, err))
		return err
	}
	fmt.Fprintln(w, res.Text)
	if res.Gaps > 0 {
		fmt.Fprintf(w, "(%d samples outside the domain left as gaps)\n", res.Gaps)
	}
	if pngPath == "" {
		return nil
	}
	if err := plot.ExportPNG(res.Plot, pngPath, pngW, pngH); err != nil {
		fmt.Fprintf(w, "Save error: %v\n", err)
		return fmt.Errorf("save %s: %w", pngPath, err)
	}
	fmt.Fprintf(w, "Saved %s\n", pngPath)
	return nil
}

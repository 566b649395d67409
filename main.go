package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"covlang/internal/logging"
	"covlang/pkg/config"
	"covlang/pkg/context"
)

var (
	evalExpr    string
	runtimePath string
	configPath  string
	verbose     bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "covlang [file]",
		Short: "covlang runs the reference-counted scripting language",
		Long: "covlang compiles and runs programs written against the cell package's\n" +
			"reference-counted, copy-on-write value model. It runs the -e expression or\n" +
			"the file argument if given; otherwise it reads stdin, then falls back to an\n" +
			"interactive REPL.",
		Args:         cobra.MaximumNArgs(1),
		SilenceUsage: true,
		RunE:         runDefault,
	}
	root.PersistentFlags().StringVarP(&evalExpr, "eval", "e", "", "evaluate an expression from the command line")
	root.PersistentFlags().StringVar(&runtimePath, "runtime", "", "path to the SDK/runtime directory (overrides LANG_SDK_PATH)")
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose diagnostic logging")

	root.AddCommand(newRunCmd())
	root.AddCommand(newEvalCmd())
	return root
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "compile and run a program from a file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			return runSource(cmd, string(data))
		},
	}
}

func newEvalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval",
		Short: "evaluate an expression given with -e",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(evalExpr) == "" {
				return fmt.Errorf("eval: -e/--eval is required")
			}
			return runSource(cmd, evalExpr)
		},
	}
	return cmd
}

// runDefault implements the teacher's three-mode dispatch: -e expression,
// a file argument, or stdin — falling back to the REPL when none yields
// non-blank input.
func runDefault(cmd *cobra.Command, args []string) error {
	if strings.TrimSpace(evalExpr) != "" {
		return runSource(cmd, evalExpr)
	}
	if len(args) > 0 {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading %s: %w", args[0], err)
		}
		return runSource(cmd, string(data))
	}

	if stat, err := os.Stdin.Stat(); err == nil && (stat.Mode()&os.ModeCharDevice) == 0 {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return runSource(cmd, string(data))
		}
	}

	return runREPL(cmd)
}

func buildContext() (*context.Context, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if runtimePath != "" {
		os.Setenv("LANG_SDK_PATH", runtimePath)
	} else if cfg.SDKPath != "" {
		os.Setenv("LANG_SDK_PATH", cfg.SDKPath)
	}
	return context.New(os.Args), nil
}

func runSource(cmd *cobra.Command, source string) error {
	log := logging.New(os.Stderr, verbose)
	ctx, err := buildContext()
	if err != nil {
		return err
	}
	log.Debug().Str("sdk_path", ctx.SDKPath).Msg("resolved runtime")

	v, err := ctx.Eval(source)
	if err != nil {
		return err
	}
	if v != nil && v.Usable() {
		fmt.Fprintln(cmd.OutOrStdout(), v.ToString())
	}
	return nil
}

func runREPL(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "covlang REPL — type 'exit' or press Ctrl-D to quit")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	prompt := cfg.Prompt
	if prompt == "" {
		prompt = ">>> "
	}

	ctx, err := buildContext()
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return nil
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		v, err := ctx.Eval(line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		if v != nil && v.Usable() {
			fmt.Fprintln(out, v.ToString())
		}
	}
}

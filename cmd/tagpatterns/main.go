// Package main provides the CLI entry point for tagpatterns.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"tagpatterns/internal/logging"
	"tagpatterns/internal/output"
)

var version = "dev"

// app carries state shared by every command of one invocation.
type app struct {
	v       *viper.Viper
	cfgFile string
	stdout  io.Writer
	stderr  io.Writer
	out     *output.Output
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{
		v:      viper.New(),
		stdout: stdout,
		stderr: stderr,
	}

	root := &cobra.Command{
		Use:   "tagpatterns",
		Short: "Discover shared prefixes and suffixes in customer tags",
		Long: `tagpatterns finds the prefixes and suffixes shared by at least a
threshold number of one customer's tags, then annotates every tag with its
longest matching prefix and suffix pattern.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.initialize,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (YAML or JSON)")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", logging.FormatConsole, "log format (console, json)")
	flags.BoolP("verbose", "v", false, "show detailed output")

	_ = a.v.BindPFlag("log.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("log.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	a.v.SetEnvPrefix("TAGPATTERNS")
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	a.v.AutomaticEnv()

	root.AddCommand(a.runCmd())
	root.AddCommand(a.watchCmd())
	root.AddCommand(a.statusCmd())
	root.AddCommand(a.historyCmd())
	root.AddCommand(a.versionCmd())

	return root
}

func (a *app) initialize(_ *cobra.Command, _ []string) error {
	if err := logging.SetupWriter(a.stderr, a.v.GetString("log.level"), a.v.GetString("log.format")); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	a.out = output.New(output.Config{
		Verbose:   a.v.GetBool("verbose"),
		Writer:    a.stdout,
		ErrWriter: a.stderr,
		IsTTY:     isTerminal(a.stderr),
	})
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (a *app) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			a.out.Info("tagpatterns %s", version)
			return nil
		},
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/keshon/botframe/internal/console"
	"github.com/keshon/botframe/internal/discord"
	"github.com/keshon/botframe/internal/status"
	"github.com/keshon/botframe/pkg/handler"
)

const appName = "botframe"

var version = "dev"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "A prefix-command chat bot",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newRunCommand(), newConsoleCommand(), newUnitsCommand())
	return root
}

func newRunCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect to Discord and serve until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.cfg.RequireToken(); err != nil {
				return err
			}

			client, err := discord.NewClient(a.cfg.DiscordToken, a.cfg.DiscordProxy, a.log)
			if err != nil {
				return err
			}
			core, err := a.newCore(client)
			if err != nil {
				return err
			}
			defer core.Close()

			return serve(c.Context(), a, core, discord.NewBot(client, core, a.cfg.EditableCommands).Run)
		},
	}
}

func newConsoleCommand() *cobra.Command {
	var history string
	command := &cobra.Command{
		Use:   "console",
		Short: "Talk to the bot from the terminal",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			out := c.OutOrStdout()
			client := console.NewClient(out)
			core, err := a.newCore(client)
			if err != nil {
				return err
			}
			defer core.Close()

			repl := console.New(client, core, out, a.log)
			return serve(c.Context(), a, core, func(ctx context.Context) error {
				return repl.Run(ctx, history)
			})
		},
	}
	command.Flags().StringVar(&history, "history", filepath.Join(os.TempDir(), ".botframe_history"), "readline history file")
	return command
}

func newUnitsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "units",
		Short: "Print the info string of every bundled unit",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			a, err := newApp(c.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.Close()

			core, err := a.newCore(console.NewClient(c.OutOrStdout()))
			if err != nil {
				return err
			}
			defer core.Close()

			for _, u := range status.Units(core) {
				fmt.Fprintf(c.OutOrStdout(), "%-8s %s\n", u.Kind, u.Info)
			}
			return nil
		},
	}
}

// serve runs fn, and the status endpoint when configured, until fn returns
// or a termination signal arrives.
func serve(parent context.Context, a *app, core *handler.Core, fn func(context.Context) error) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr := a.cfg.StatusAddr; addr != "" {
		go func() {
			if err := status.Serve(ctx, addr, core, a.store, a.log); err != nil {
				a.log.Error().Err(err).Msg("status endpoint stopped")
			}
		}()
	}

	a.log.Info().Str("version", version).Msg("starting " + appName)
	err := fn(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.log.Error().Err(err).Msg("bot stopped")
		return err
	}
	if err := a.store.Flush(); err != nil {
		a.log.Warn().Err(err).Msg("failed to flush storage")
	}
	a.log.Info().Msg(appName + " exited cleanly")
	return nil
}

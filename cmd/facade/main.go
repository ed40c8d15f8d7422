package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/snjsomnath/threejsEditor-sub001/internal/building"
	"github.com/snjsomnath/threejsEditor-sub001/internal/config"
)

func init() {
	// OpenGL contexts are tied to specific OS threads - let's pin to just one.
	runtime.LockOSThread()
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

// options are the flags shared by every command.
type options struct {
	configPath string
	scenePath  string
	verbose    bool
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:          "facade",
		Short:        "Lay out and draw building facade windows",
		Long:         `facade places windows along building footprints to meet a window-to-wall ratio and draws them with instanced rendering.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if opts.verbose {
				level = charmlog.DebugLevel
			}
			logger := newLogger(os.Stderr, level)
			charmlog.SetDefault(logger)
			cmd.SetContext(withLogger(cmd.Context(), logger))
		},
	}

	flags := root.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable verbose logging")
	flags.StringVarP(&opts.configPath, "config", "c", "", "window configuration TOML file (defaults when empty)")
	flags.StringVarP(&opts.scenePath, "scene", "s", "", "building scene YAML file (a demo block when empty)")

	root.AddCommand(newViewCmd(opts))
	root.AddCommand(newLayoutCmd(opts))
	return root
}

// load reads the configuration and scene named by the flags.
func (o *options) load() (config.WindowConfig, *building.Scene, error) {
	cfg := config.Default()
	if o.configPath != "" {
		var err error
		if cfg, err = config.Load(o.configPath); err != nil {
			return config.WindowConfig{}, nil, err
		}
	}

	if o.scenePath == "" {
		return cfg, demoScene(), nil
	}
	scene, err := building.Load(o.scenePath)
	if err != nil {
		return config.WindowConfig{}, nil, fmt.Errorf("loading scene %s: %w", o.scenePath, err)
	}
	return cfg, scene, nil
}

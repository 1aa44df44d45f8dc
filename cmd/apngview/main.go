// Package main provides the CLI entry point for apngview.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/apngview/pkg/adapters/filesink"
	"github.com/user/apngview/pkg/adapters/ggrenderer"
	"github.com/user/apngview/pkg/adapters/logger"
	"github.com/user/apngview/pkg/adapters/nullsink"
	"github.com/user/apngview/pkg/adapters/osfilesystem"
	"github.com/user/apngview/pkg/adapters/pngdecoder"
	"github.com/user/apngview/pkg/apng"
	"github.com/user/apngview/pkg/config"
	"github.com/user/apngview/pkg/orchestrator"
	"github.com/user/apngview/pkg/player"
	"github.com/user/apngview/pkg/ports"
	"github.com/user/apngview/pkg/stages/export"
	"github.com/user/apngview/pkg/stages/sheet"
	"github.com/user/apngview/pkg/summarizer"
)

var version = "dev"

// Exit codes
const (
	exitDecode = 1
	exitUsage  = 2
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, l10n.T("Interrupted, shutting down..."))
		cancel()
	}()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitDecode)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "apngview",
		Usage:   l10n.T("Decode, inspect and play animated PNG files"),
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: l10n.T("YAML configuration file"), Category: l10n.T("Input")},
			&cli.IntFlag{Name: "max-dimension", Usage: l10n.T("Largest accepted canvas width or height"), Category: l10n.T("Decoding")},
			&cli.StringFlag{Name: "log-level", Aliases: []string{"l"}, Usage: l10n.T("Log level (debug, info, warn, error)"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "quiet", Aliases: []string{"Q"}, Usage: l10n.T("Suppress all log output"), Category: l10n.T("Logging")},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: l10n.T("Save raw and composed frames while decoding"), Category: l10n.T("Debug")},
			&cli.StringFlag{Name: "debug-dir", Usage: l10n.T("Directory for debug output"), Category: l10n.T("Debug")},
		},
		Commands: []*cli.Command{
			infoCommand(),
			extractCommand(),
			sheetCommand(),
			playCommand(),
		},
	}
}

func streamFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{Name: "stream", Usage: l10n.T("Decode on demand through a bounded frame window"), Category: l10n.T("Decoding")},
		&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Usage: l10n.T("Frames kept in memory while streaming (0 = all)"), Category: l10n.T("Decoding")},
	}
}

func infoCommand() *cli.Command {
	return &cli.Command{
		Name:      "info",
		Usage:     l10n.T("Show canvas, frame and timing information"),
		ArgsUsage: "<file.png>",
		Flags: append(streamFlags(),
			&cli.StringFlag{Name: "summary", Aliases: []string{"s"}, Usage: l10n.T("Write a Markdown summary to this file"), Category: l10n.T("Output")},
		),
		Action: func(c *cli.Context) error {
			e, err := setup(c, nil)
			if err != nil {
				return err
			}
			path := c.Args().First()

			start := time.Now()
			img, size, err := e.decode(c.Context, path)
			if err != nil {
				return err
			}
			defer img.Close()

			// Frames are summarized as they are pulled, so a stream only
			// holds its window.
			builder := summarizer.NewBuilder().
				WithSource(path, size).
				WithMetadata(img.Metadata)
			for i, n := 0, img.FrameCount(); i < n; i++ {
				f, err := img.Frame(c.Context, i)
				if err != nil {
					e.log.Error(l10n.F("Failed to decode frame %d: %s", i, err))
					return cli.Exit("", exitCode(err))
				}
				builder.AddFrame(f)
			}

			summary := builder.WithDecode(summarizer.DecodeInfo{
				Streaming:  img.Streaming(),
				WindowSize: e.cfg.WindowSize,
				PeakFrames: img.PeakFrames(),
				Restarts:   img.Restarts(),
				ElapsedMs:  int(time.Since(start).Milliseconds()),
			}).Build()

			if out := c.String("summary"); out != "" {
				w := summarizer.NewWriter(summarizer.NewMarkdownFormatter(
					summarizer.WithTranslator(l10n.T),
					summarizer.WithVersion(version),
				), e.fs)
				if err := w.Write(out, summary); err != nil {
					return cli.Exit(l10n.F("Failed to write summary: %s", err), exitDecode)
				}
				e.log.Info(l10n.F("Summary saved to %s", out))
				return nil
			}

			return summarizer.NewWriter(summarizer.NewTextFormatter(), e.fs).WriteTo(c.App.Writer, summary)
		},
	}
}

func extractCommand() *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Usage:     l10n.T("Write every composited frame as an image file"),
		ArgsUsage: "<file.png>",
		Flags: append(streamFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: l10n.T("Output directory"), Category: l10n.T("Output")},
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: l10n.T("Image format (png, jpeg)"), Category: l10n.T("Output")},
			&cli.IntFlag{Name: "quality", Aliases: []string{"q"}, Usage: l10n.T("JPEG quality (1-100)"), Category: l10n.T("Output")},
			&cli.Float64Flag{Name: "scale", Usage: l10n.T("Output scale factor"), Category: l10n.T("Output")},
			&cli.BoolFlag{Name: "keep-hidden", Usage: l10n.T("Also write the hidden default image"), Category: l10n.T("Output")},
			&cli.IntFlag{Name: "workers", Usage: l10n.T("Parallel encoders (0 = number of CPUs)"), Category: l10n.T("Output")},
		),
		Action: func(c *cli.Context) error {
			e, err := setup(c, func(cfg *config.Config) {
				if c.IsSet("output") {
					cfg.OutputDir = c.String("output")
				}
				if c.IsSet("format") {
					cfg.Format = c.String("format")
				}
				if c.IsSet("quality") {
					cfg.Quality = c.Int("quality")
				}
				if c.IsSet("scale") {
					cfg.ExportScale = c.Float64("scale")
				}
				if c.IsSet("keep-hidden") {
					cfg.KeepHidden = c.Bool("keep-hidden")
				}
				if c.IsSet("workers") {
					cfg.Workers = c.Int("workers")
				}
			})
			if err != nil {
				return err
			}

			img, _, err := e.decode(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			defer img.Close()

			input := e.cfg.ToExportInput()
			input.Source = img
			input.FirstFrameHidden = img.Metadata.FirstFrameHidden

			result, err := export.NewStage(e.renderer, e.fs, e.log, e.cfg.Workers).Execute(c.Context, input)
			if err != nil {
				return cli.Exit(l10n.F("Failed to export frames: %s", err), exitCode(err))
			}

			e.log.Info(l10n.F("Wrote %d frames to %s", len(result.Frames), input.OutputDir))
			e.logStream(img)
			return nil
		},
	}
}

func sheetCommand() *cli.Command {
	return &cli.Command{
		Name:      "sheet",
		Usage:     l10n.T("Render all frames onto one contact sheet image"),
		ArgsUsage: "<file.png>",
		Flags: append(streamFlags(),
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Value: "sheet.png", Usage: l10n.T("Output image path (.png or .jpg)"), Category: l10n.T("Output")},
			&cli.IntFlag{Name: "columns", Usage: l10n.T("Tiles per row"), Category: l10n.T("Contact sheet")},
			&cli.IntFlag{Name: "tile-width", Usage: l10n.T("Tile width in pixels (0 = frame width)"), Category: l10n.T("Contact sheet")},
			&cli.StringFlag{Name: "background", Usage: l10n.T("Background color (hex, e.g., #ffffff)"), Category: l10n.T("Contact sheet")},
			&cli.BoolFlag{Name: "no-labels", Usage: l10n.T("Hide frame index and delay labels"), Category: l10n.T("Contact sheet")},
		),
		Action: func(c *cli.Context) error {
			e, err := setup(c, func(cfg *config.Config) {
				if c.IsSet("columns") {
					cfg.Sheet.Columns = c.Int("columns")
				}
				if c.IsSet("tile-width") {
					cfg.Sheet.TileWidth = c.Int("tile-width")
				}
				if c.IsSet("background") {
					cfg.Sheet.Background = c.String("background")
				}
				if c.Bool("no-labels") {
					cfg.Sheet.LabelSize = 0
				}
			})
			if err != nil {
				return err
			}

			out := c.String("output")
			format, ok := ports.ParseImageFormat(filepath.Ext(out))
			if !ok {
				return cli.Exit(l10n.F("Invalid configuration: %s", "unsupported output extension "+filepath.Ext(out)), exitUsage)
			}

			img, _, err := e.decode(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			defer img.Close()

			input := e.cfg.ToSheetInput()
			input.Source = img
			input.FirstFrameHidden = img.Metadata.FirstFrameHidden

			result, err := sheet.NewStage(e.renderer, e.log).Execute(c.Context, input)
			if err != nil {
				return cli.Exit(l10n.F("Failed to render contact sheet: %s", err), exitCode(err))
			}

			data, err := e.renderer.EncodeImage(result.Image, format, e.cfg.Quality)
			if err != nil {
				return cli.Exit(l10n.F("Failed to render contact sheet: %s", err), exitDecode)
			}
			if err := e.fs.WriteFile(out, data); err != nil {
				return cli.Exit(l10n.F("Failed to render contact sheet: %s", err), exitDecode)
			}

			e.log.Info(l10n.F("Contact sheet saved to %s", out))
			e.logStream(img)
			return nil
		},
	}
}

func playCommand() *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     l10n.T("Play the animation headless, logging each frame"),
		ArgsUsage: "<file.png>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "window", Aliases: []string{"w"}, Usage: l10n.T("Frames kept in memory while streaming (0 = all)"), Category: l10n.T("Decoding")},
			&cli.IntFlag{Name: "repeat", Usage: l10n.T("Override the repeat count (-1 = forever)"), Category: l10n.T("Playback")},
			&cli.IntFlag{Name: "max-frames", Usage: l10n.T("Stop after this many frames (0 = no limit)"), Category: l10n.T("Playback")},
		},
		Action: func(c *cli.Context) error {
			e, err := setup(c, func(cfg *config.Config) {
				cfg.Stream = true
				if c.IsSet("repeat") {
					repeat := c.Int("repeat")
					cfg.Playback.Repeat = &repeat
				}
				if c.IsSet("max-frames") {
					cfg.Playback.MaxFrames = c.Int("max-frames")
				}
			})
			if err != nil {
				return err
			}

			img, _, err := e.decode(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			defer img.Close()

			log := e.log.WithComponent("play")
			p := player.New(img, img.Metadata, player.RealClock(), e.log, e.cfg.ToPlayerOptions())
			stats, err := p.Run(c.Context, func(f *apng.Frame) error {
				log.Debug("Presenting frame %d for %s", f.Index, formatDuration(f))
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				e.log.Error(l10n.F("Playback stopped: %s", err))
				return cli.Exit("", exitDecode)
			}

			e.log.Info(l10n.F("Played %d frames (%d loops) in %s", stats.Presented, stats.Loops, stats.Elapsed.Round(time.Millisecond)))
			return nil
		},
	}
}

func formatDuration(f *apng.Frame) string {
	if f.Infinite() {
		return "forever"
	}
	return f.Duration.String()
}

// env holds the adapters shared by all commands.
type env struct {
	cfg      config.Config
	log      ports.Logger
	fs       ports.FileSystem
	renderer ports.Renderer
	orch     *orchestrator.Orchestrator
}

// setup loads configuration, applies flag overrides and wires adapters.
func setup(c *cli.Context, apply func(*config.Config)) (*env, error) {
	if c.NArg() != 1 {
		return nil, cli.Exit(l10n.T("Exactly one input file is required"), exitUsage)
	}

	cfg := config.Defaults()
	if path := c.String("config"); path != "" {
		loaded, err := config.LoadFromFile(path)
		if err != nil {
			return nil, cli.Exit(l10n.F("Failed to load config: %s", err), exitUsage)
		}
		cfg = loaded
	}

	if c.IsSet("max-dimension") {
		cfg.MaxDimension = c.Int("max-dimension")
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("debug") {
		cfg.Debug = c.Bool("debug")
	}
	if c.IsSet("debug-dir") {
		cfg.DebugDir = c.String("debug-dir")
	}
	if c.IsSet("stream") {
		cfg.Stream = c.Bool("stream")
	}
	if c.IsSet("window") {
		cfg.WindowSize = c.Int("window")
	}
	if apply != nil {
		apply(&cfg)
	}

	if err := cfg.Validate(); err != nil {
		return nil, cli.Exit(l10n.F("Invalid configuration: %s", err), exitUsage)
	}

	// Create logger
	var log ports.Logger
	if c.Bool("quiet") {
		log = logger.NewNoop()
	} else {
		level, _ := config.ParseLogLevel(cfg.LogLevel)
		if c.App.Writer == os.Stdout {
			log = logger.NewConsole(level)
		} else {
			// Embedded apps and tests redirect output; logs follow it.
			log = logger.NewWriter(level, c.App.Writer, c.App.ErrWriter)
		}
	}

	// Create adapters
	fs := osfilesystem.New()
	renderer := ggrenderer.New(log)

	var sink ports.FrameSink
	if cfg.Debug {
		sink = filesink.New(cfg.DebugDir, fs, renderer)
	} else {
		sink = nullsink.New()
	}

	return &env{
		cfg:      cfg,
		log:      log,
		fs:       fs,
		renderer: renderer,
		orch:     orchestrator.New(pngdecoder.New(), sink, log),
	}, nil
}

// decode reads path and decodes it in the configured mode. It also returns
// the file size.
func (e *env) decode(ctx context.Context, path string) (*orchestrator.Image, int64, error) {
	data, err := e.fs.ReadFile(path)
	if err != nil {
		return nil, 0, cli.Exit(l10n.F("Failed to read %s: %s", path, err), exitDecode)
	}

	decode := e.orch.DecodeAll
	if e.cfg.Stream {
		decode = e.orch.DecodeStream
	}
	img, err := decode(ctx, data, e.cfg.ToOrchestratorConfig())
	if err != nil {
		// The orchestrator has already logged the cause.
		return nil, 0, cli.Exit("", exitCode(err))
	}
	return img, int64(len(data)), nil
}

func exitCode(err error) int {
	if errors.Is(err, context.Canceled) {
		return 130
	}
	return exitDecode
}

// logStream reports how much of the animation a stream kept in memory.
func (e *env) logStream(img *orchestrator.Image) {
	if !img.Streaming() {
		return
	}
	e.log.Info(l10n.F("Stream window %d held at most %d frames (%d restarts)",
		e.cfg.WindowSize, img.PeakFrames(), img.Restarts()))
}

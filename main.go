package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
	"golang.org/x/sync/errgroup"

	"go-pianoroll/clip"
	"go-pianoroll/config"
	"go-pianoroll/debug"
	"go-pianoroll/geometry"
	"go-pianoroll/midi"
	"go-pianoroll/pianoroll"
	"go-pianoroll/theme"
	"go-pianoroll/tui"
)

func run(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("debug") {
		if err := debug.Enable(cmd.String("log")); err != nil {
			return err
		}
		defer debug.Disable()
	}

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cmd.Bool("write-config") {
		return cfg.Save(cmd.String("config"))
	}

	gridCfg, err := cfg.Grid.Editor()
	if err != nil {
		return err
	}
	palette, err := theme.Load(cfg.View.Palette)
	if err != nil {
		return fmt.Errorf("load palette: %w", err)
	}

	path := cmd.Args().First()
	c, err := openClip(path)
	if err != nil {
		return err
	}

	g := pianoroll.New(c, gridCfg)
	if cfg.Audition.PortName != "" {
		out, err := midi.OpenOutput(cfg.Audition.PortName, cfg.Audition.Channel)
		if err != nil {
			// Editing works without audition
			fmt.Fprintf(os.Stderr, "audition disabled: %v\n", err)
			debug.Log("main", "audition disabled: %v", err)
		} else {
			defer out.Close()
			g.SetAudition(out)
		}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, egCtx := errgroup.WithContext(ctx)

	m := tui.NewModel(g, c, theme.New(palette), path, cfg.View.CellWidth)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(egCtx))

	if path != "" {
		eg.Go(func() error {
			err := clip.Watch(egCtx, c, path, func(kind string) {
				p.Send(tui.ReloadMsg{Kind: kind})
			})
			if err != nil {
				debug.Log("main", "watch %s: %v", path, err)
			}
			return nil
		})
	}

	eg.Go(func() error {
		defer cancel()
		final, err := p.Run()
		if err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		if fm, ok := final.(tui.Model); ok && fm.Dirty() {
			fmt.Fprintln(os.Stderr, "quit with unsaved changes")
		}
		return nil
	})

	return eg.Wait()
}

// applyFlags lets command line flags override the config file.
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if q := cmd.String("quantize"); q != "" {
		cfg.Grid.Quantize = q
	}
	if port := cmd.String("port"); port != "" {
		cfg.Audition.PortName = port
	}
	if ch := cmd.Int("channel"); ch != 0 {
		cfg.Audition.Channel = int(ch)
	}
	if pal := cmd.String("palette"); pal != "" {
		cfg.View.Palette = pal
	}
}

// openClip loads path, or starts an empty clip that ctrl+s will create.
func openClip(path string) (*clip.Clip, error) {
	if path == "" {
		return clip.New("untitled", geometry.CommonTime), nil
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	c := clip.New(name, geometry.CommonTime)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c, nil
	}
	if err := c.LoadSMF(path); err != nil {
		return nil, err
	}
	return c, nil
}

func main() {
	cmd := &cli.Command{
		Name:      "go-pianoroll",
		Usage:     "Terminal piano-roll editor for MIDI clips",
		ArgsUsage: "[file.mid]",
		Action:    run,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (default ~/.config/go-pianoroll/config.json)",
				Sources: cli.EnvVars("PIANOROLL_CONFIG"),
			},
			&cli.StringFlag{
				Name:    "quantize",
				Aliases: []string{"q"},
				Usage:   "Snap grid: 1/1 1/2 1/4 1/8 1/16 1/32 1/4T 1/8T 1/16T",
			},
			&cli.StringFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "MIDI output port for auditioning notes (substring match)",
				Sources: cli.EnvVars("PIANOROLL_PORT"),
			},
			&cli.IntFlag{
				Name:  "channel",
				Usage: "MIDI channel 1-16 for auditioning",
			},
			&cli.StringFlag{
				Name:  "palette",
				Usage: "GIMP .gpl palette file",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "Write a debug log",
			},
			&cli.StringFlag{
				Name:  "log",
				Usage: "Debug log path (default ~/.config/go-pianoroll/debug.log)",
			},
			&cli.BoolFlag{
				Name:  "write-config",
				Usage: "Save the effective config and exit",
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

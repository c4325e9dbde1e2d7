package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v3"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"go-pianoroll/clip"
	"go-pianoroll/geometry"
	"go-pianoroll/midi"
	"go-pianoroll/pianoroll"
	"go-pianoroll/widgets"
)

func main() {
	cmd := &cli.Command{
		Name:  "cliptool",
		Usage: "MIDI clip and port utilities",
		Commands: []*cli.Command{
			{
				Name:   "ports",
				Usage:  "List MIDI output ports",
				Action: listPorts,
			},
			{
				Name:      "dump",
				Usage:     "Print the notes of a MIDI file",
				ArgsUsage: "FILE",
				Action:    dump,
			},
			{
				Name:      "quantize",
				Usage:     "Snap note starts and lengths of a MIDI file",
				ArgsUsage: "FILE",
				Action:    quantize,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "unit", Aliases: []string{"u"}, Value: "1/16", Usage: "snap grid"},
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default: overwrite FILE)"},
				},
			},
			{
				Name:      "play",
				Usage:     "Sound one pitch on a MIDI output",
				ArgsUsage: "PITCH",
				Action:    play,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "port", Aliases: []string{"p"}, Required: true, Usage: "output port (substring match)"},
					&cli.IntFlag{Name: "channel", Value: 1, Usage: "MIDI channel 1-16"},
					&cli.IntFlag{Name: "velocity", Value: 100},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listPorts(ctx context.Context, cmd *cli.Command) error {
	fmt.Println("=== MIDI Output Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")
	names, err := midi.Ports()
	if err != nil {
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return err
	}
	for i, name := range names {
		fmt.Printf("  %d: %s\n", i, name)
	}
	return nil
}

func dump(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("dump: missing FILE")
	}
	ts, notes, err := clip.ReadSMF(path)
	if err != nil {
		return err
	}

	bar := ts.TicksPerBar()
	beat := geometry.TicksPerQuarter * 4 / ts.BeatUnit
	fmt.Printf("%s: %d notes, %d/%d\n", path, len(notes), ts.BeatsPerBar, ts.BeatUnit)
	for _, n := range notes {
		fmt.Printf("  %3d.%d.%03d  %-4s %3d  vel %3d  len %d\n",
			n.Start/bar+1, n.Start%bar/beat+1, n.Start%beat,
			widgets.PitchName(n.Pitch), n.Pitch, n.Velocity, n.Length)
	}
	return nil
}

// quantize runs the file through the editor grid so the result matches
// what the quantize key does interactively.
func quantize(ctx context.Context, cmd *cli.Command) error {
	path := cmd.Args().First()
	if path == "" {
		return fmt.Errorf("quantize: missing FILE")
	}
	out := cmd.String("out")
	if out == "" {
		out = path
	}

	c := clip.New(path, geometry.CommonTime)
	if err := c.LoadSMF(path); err != nil {
		return err
	}

	g := pianoroll.New(c, pianoroll.DefaultConfig())
	if err := g.SetQuantizationID(cmd.String("unit")); err != nil {
		return err
	}
	changed := 0
	g.OnEdit(func(ev pianoroll.Event) {
		if ev.Kind == pianoroll.Quantize {
			changed = len(ev.Notes)
		}
	})
	g.SelectAll()
	g.QuantizeSelected()

	if err := c.WriteSMF(out); err != nil {
		return err
	}
	fmt.Printf("quantized %d of %d notes to %s, wrote %s\n", changed, g.Len(), g.Quantization(), out)
	return nil
}

func play(ctx context.Context, cmd *cli.Command) error {
	pitch, err := strconv.Atoi(cmd.Args().First())
	if err != nil || pitch < 0 || pitch > 127 {
		return fmt.Errorf("play: PITCH must be 0-127")
	}

	out, err := midi.OpenOutput(cmd.String("port"), int(cmd.Int("channel")))
	if err != nil {
		return err
	}
	defer out.Close()

	vel := cmd.Int("velocity")
	fmt.Printf("%s velocity %d\n", widgets.PitchName(pitch), vel)
	if err := out.Send(midi.Event{Type: midi.NoteOn, Note: uint8(pitch), Velocity: uint8(vel)}); err != nil {
		return err
	}
	select {
	case <-time.After(500 * time.Millisecond):
	case <-ctx.Done():
	}
	return out.Send(midi.Event{Type: midi.NoteOff, Note: uint8(pitch)})
}

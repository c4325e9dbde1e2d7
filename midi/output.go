package midi

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-pianoroll/debug"
)

// Port enumeration can hang on some CoreMIDI setups
const portScanTimeout = 3 * time.Second

// Ports lists output port names. A driver must be registered by the
// caller (blank import of a gomidi driver).
func Ports() ([]string, error) {
	ch := make(chan []drivers.Out, 1)
	go func() {
		ch <- gomidi.GetOutPorts()
	}()

	select {
	case outs := <-ch:
		names := make([]string, len(outs))
		for i, p := range outs {
			names[i] = p.String()
		}
		return names, nil
	case <-time.After(portScanTimeout):
		return nil, fmt.Errorf("midi port scan timed out after %s", portScanTimeout)
	}
}

// Output sends audition events to a MIDI output port, forcing every
// event onto one channel.
type Output struct {
	mu      sync.Mutex
	port    drivers.Out
	send    func(gomidi.Message) error
	channel uint8
	held    map[uint8]bool
}

// OpenOutput opens the first output port whose name contains portName
// (case-insensitive). channel is 1-16.
func OpenOutput(portName string, channel int) (*Output, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("midi channel %d out of range 1-16", channel)
	}

	var port drivers.Out
	want := strings.ToLower(portName)
	for _, p := range gomidi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), want) {
			port = p
			break
		}
	}
	if port == nil {
		return nil, fmt.Errorf("no midi output port matching %q", portName)
	}

	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", port.String(), err)
	}
	debug.Log("midi", "opened output %s on channel %d", port.String(), channel)

	return newOutput(port, send, uint8(channel-1)), nil
}

func newOutput(port drivers.Out, send func(gomidi.Message) error, channel uint8) *Output {
	return &Output{
		port:    port,
		send:    send,
		channel: channel,
		held:    make(map[uint8]bool),
	}
}

func (o *Output) Send(e Event) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	e.Channel = o.channel
	msg := e.Message()
	if msg == nil {
		return fmt.Errorf("unsupported event type 0x%02x", e.Type)
	}
	switch e.Type {
	case NoteOn:
		o.held[e.Note] = true
	case NoteOff:
		delete(o.held, e.Note)
	}
	return o.send(msg)
}

// Close releases held notes and closes the port.
func (o *Output) Close() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	var errs []error
	for n := range o.held {
		if err := o.send(gomidi.NoteOff(o.channel, n)); err != nil {
			debug.Log("midi", "release note %d: %v", n, err)
			errs = append(errs, fmt.Errorf("release note %d: %w", n, err))
		}
	}
	o.held = make(map[uint8]bool)
	if o.port != nil {
		errs = append(errs, o.port.Close())
	}
	return errors.Join(errs...)
}

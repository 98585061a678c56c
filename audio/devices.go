package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Device describes an audio device visible to the host.
type Device struct {
	ID                int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	DefaultInput      bool
	DefaultOutput     bool
}

// IsInput reports whether the device can capture.
func (d Device) IsInput() bool { return d.MaxInputChannels > 0 }

// IsOutput reports whether the device can play.
func (d Device) IsOutput() bool { return d.MaxOutputChannels > 0 }

func (d Device) String() string {
	role := ""
	switch {
	case d.IsInput() && d.IsOutput():
		role = "in/out"
	case d.IsInput():
		role = "in"
	case d.IsOutput():
		role = "out"
	}
	marks := ""
	if d.DefaultInput {
		marks += " *default-input"
	}
	if d.DefaultOutput {
		marks += " *default-output"
	}
	return fmt.Sprintf("[%d] %s (%s, %s, %.0f Hz)%s",
		d.ID, d.Name, d.HostAPI, role, d.DefaultSampleRate, marks)
}

// ListDevices enumerates the host's audio devices. It initializes and
// terminates PortAudio itself, so it must not overlap a running Handler.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("initializing PortAudio: %w", err)
	}
	defer func() { _ = portaudio.Terminate() }()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defaultIn, _ := portaudio.DefaultInputDevice()
	defaultOut, _ := portaudio.DefaultOutputDevice()

	devices := make([]Device, 0, len(infos))
	for i, info := range infos {
		hostAPI := "unknown"
		if info.HostApi != nil {
			hostAPI = info.HostApi.Name
		}
		devices = append(devices, Device{
			ID:                i,
			Name:              info.Name,
			HostAPI:           hostAPI,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			DefaultInput:      defaultIn != nil && info == defaultIn,
			DefaultOutput:     defaultOut != nil && info == defaultOut,
		})
	}
	return devices, nil
}

package visual

import "context"

// ControlCommandType represents types of control instructions from the UI.
type ControlCommandType string

const (
	CommandNone   ControlCommandType = "none"
	CommandPause  ControlCommandType = "pause"
	CommandResume ControlCommandType = "resume"
	CommandReset  ControlCommandType = "reset"
	CommandStep   ControlCommandType = "step"
)

// ParseCommand maps a command name onto its type.
func ParseCommand(name string) (ControlCommandType, bool) {
	switch t := ControlCommandType(name); t {
	case CommandPause, CommandResume, CommandReset, CommandStep:
		return t, true
	}
	return CommandNone, false
}

// ControlCommand captures a control instruction for the simulator.
type ControlCommand struct {
	Type ControlCommandType `json:"type"`
	// Steps is the number of cycles a step command advances (default 1).
	Steps int `json:"steps,omitempty"`
}

// Visualizer receives frames and hands out control commands.
type Visualizer interface {
	IsHeadless() bool
	PublishFrame(frame Frame)
	NextCommand() (ControlCommand, bool)
	WaitCommand(ctx context.Context) (ControlCommand, bool)
}

// NullVisualizer is a no-op implementation used for headless runs.
type NullVisualizer struct{}

func (NullVisualizer) IsHeadless() bool { return true }

func (NullVisualizer) PublishFrame(Frame) {}

func (NullVisualizer) NextCommand() (ControlCommand, bool) {
	return ControlCommand{Type: CommandNone}, false
}

// WaitCommand never yields a command; it returns once ctx is done.
func (NullVisualizer) WaitCommand(ctx context.Context) (ControlCommand, bool) {
	<-ctx.Done()
	return ControlCommand{Type: CommandNone}, false
}

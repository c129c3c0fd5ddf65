package visualization

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Readm/tring_sim/hooks"
	"github.com/Readm/tring_sim/visual"
)

type recorder struct {
	visual.NullVisualizer
	frames int
}

func (r *recorder) IsHeadless() bool { return false }
func (r *recorder) PublishFrame(visual.Frame) { r.frames++ }
func (r *recorder) WaitCommand(context.Context) (visual.ControlCommand, bool) {
	return visual.ControlCommand{}, false
}

func TestRegisterAndSelect(t *testing.T) {
	reg := hooks.NewRegistry(nil)
	var active visual.Visualizer
	rec := &recorder{}
	require.NoError(t, Register(reg, Options{
		Factories: map[string]Factory{
			"web":    func() (visual.Visualizer, error) { return rec, nil },
			"broken": func() (visual.Visualizer, error) { return nil, errors.New("no port") },
		},
		SetVisualizer: func(v visual.Visualizer) { active = v },
	}))
	assert.Equal(t, []string{"visualization/broken", "visualization/headless", "visualization/web"}, reg.Names())

	require.NoError(t, reg.Load([]string{PluginName(Headless)}))
	assert.True(t, active.IsHeadless())

	require.NoError(t, reg.Load([]string{PluginName("web")}))
	assert.Same(t, rec, active)

	assert.Error(t, reg.Load([]string{PluginName("broken")}))
	assert.Len(t, reg.Broker().ListPlugins(hooks.PluginCategoryVisualization), 2)
}

func TestRegisterNeedsCallback(t *testing.T) {
	assert.Error(t, Register(hooks.NewRegistry(nil), Options{}))
	assert.Error(t, Register(nil, Options{SetVisualizer: func(visual.Visualizer) {}}))
}

package simulator

import (
	"context"
	"time"

	"github.com/Readm/tring_sim/visual"
)

// visualBridge forwards frames to a visualizer unless it is headless,
// thinning them to one every `every` cycles and pausing `delay` after each
// so a browser can keep up.
type visualBridge struct {
	target visual.Visualizer
	every  int
	delay  time.Duration
}

func (v *visualBridge) enabled() bool {
	return v != nil && v.target != nil && !v.target.IsHeadless()
}

// publish sends frame when its cycle is due or force is set.
func (v *visualBridge) publish(ctx context.Context, frame visual.Frame, force bool) {
	if !v.enabled() {
		return
	}
	if !force && v.every > 1 && frame.Cycle%v.every != 0 {
		return
	}
	v.target.PublishFrame(frame)
	if v.delay <= 0 || force {
		return
	}
	t := time.NewTimer(v.delay)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

package logic

import (
	"context"
	"time"
)

// TickGenerator raises the report flag once per period.
type TickGenerator struct {
	tick *Flag
	wake wakeup
}

// HandleTick is called on every timer period.
func (t *TickGenerator) HandleTick() {
	t.tick.Set()
	t.wake.post()
}

// Run calls HandleTick for every value received on tick until ctx is
// cancelled or tick is closed.
func (t *TickGenerator) Run(ctx context.Context, tick <-chan time.Time) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-tick:
			if !ok {
				return
			}
			t.HandleTick()
		}
	}
}

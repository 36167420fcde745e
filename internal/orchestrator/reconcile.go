package orchestrator

import "time"

// ReconcileReport summarizes one Reconcile pass.
type ReconcileReport struct {
	// Forced counts removals finished because their transition stalled.
	Forced int
	// StaleDarkeners counts darkeners dropped because their viewer was gone
	// or no longer fullscreen.
	StaleDarkeners int
	Live           int
}

// Reconcile repairs state a lost completion would leave behind. Removals
// pending for longer than RemovalTimeout are finished, and darkeners whose
// viewer is gone or no longer fullscreen are dropped.
func (c *Controller) Reconcile(now time.Time) ReconcileReport {
	var rep ReconcileReport

	timeout := c.settings.RemovalTimeout
	if timeout <= 0 {
		timeout = DefaultSettings().RemovalTimeout
	}
	for _, id := range c.sortedRemovalIDs() {
		r, ok := c.removals[id]
		if !ok || now.Sub(r.started) < timeout {
			continue
		}
		r.forced = true
		c.log.Warn("forcing stalled viewer removal", "id", id, "type", r.v.Type(), "pending", now.Sub(r.started).Round(time.Millisecond))
		r.v.Panel().CompleteTweens()
		if _, still := c.removals[id]; still {
			c.removeViewer(r.v)
			// A viewer already detached elsewhere leaves its entry behind.
			delete(c.removals, id)
		}
		rep.Forced++
	}

	for _, id := range c.sortedDarkenerIDs() {
		d := c.darkeners[id]
		v := c.find(id)
		if v != nil && v.Fullscreen() && !v.AboutToBeRemoved() {
			continue
		}
		c.log.Warn("dropping stale darkener", "viewer", id)
		c.dropDarkener(d)
		rep.StaleDarkeners++
	}

	rep.Live = len(c.viewers)
	return rep
}

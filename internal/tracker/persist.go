package tracker

import (
	"fmt"

	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/snapshot"
)

// Save is the manual save action. It grants XP first so the reward is persisted.
// The snapshot is taken while holding saveMu so no older write can land after it.
func (t *Tracker) Save() error {
	t.saveMu.Lock()

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		t.saveMu.Unlock()
		return ErrClosed
	}
	before := t.engine.Level()
	t.engine.AddExperience(game.XPSave)
	t.announceLocked(before, nil)
	t.dirty.Store(false)
	snap := snapshot.Capture(t.engine)
	t.mu.Unlock()

	err := t.writeLocked(snap)
	t.saveMu.Unlock()
	if err != nil {
		return err
	}
	return t.flushPending()
}

// AutoSave persists the current state without any reward. If another save is
// running, the change is marked pending and that writer stores it before it
// lets go of the store.
func (t *Tracker) AutoSave() error {
	t.mu.Lock()
	closed := t.closed
	t.mu.Unlock()
	if closed {
		return ErrClosed
	}

	t.dirty.Store(true)
	return t.flushPending()
}

// flushPending writes until no change is pending or another writer owns the
// store. dirty is set before TryLock, and the owner re-checks it after
// unlocking, so a pending change is never dropped.
func (t *Tracker) flushPending() error {
	for t.dirty.Load() {
		if !t.saveMu.TryLock() {
			t.log.Debug("save in progress, autosave deferred to it")
			return nil
		}
		err := t.flushLocked()
		t.saveMu.Unlock()
		if err != nil {
			return err
		}
	}
	return nil
}

// flushLocked captures and writes once if a change is pending. Callers hold
// saveMu. After Close the final save already covers everything.
func (t *Tracker) flushLocked() error {
	if !t.dirty.Swap(false) {
		return nil
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	snap := snapshot.Capture(t.engine)
	t.mu.Unlock()

	return t.writeLocked(snap)
}

// autoSaveAfter runs AutoSave after a mutation. Failures are only reported.
func (t *Tracker) autoSaveAfter(action string) {
	if err := t.AutoSave(); err != nil {
		t.log.Error("autosave failed", "after", action, "error", err)
		t.notifier.NotifyError("autosave", err)
	}
}

func (t *Tracker) writeLocked(snap *snapshot.Snapshot) error {
	if err := t.store.Save(snap); err != nil {
		return fmt.Errorf("save portfolio: %w", err)
	}
	t.log.Debug("portfolio saved", "holdings", len(snap.Holdings), "level", snap.Level)
	return nil
}

package cmd

import (
	"fmt"
	"sync"
	"time"

	"github.com/samber/mo"

	"github.com/keshon/botframe/pkg/platform"
)

// DefaultAwaitTimeout applies when an Await has no timeout.
const DefaultAwaitTimeout = 30 * time.Second

// AwaitState is the lifecycle state of an Await.
type AwaitState int

const (
	AwaitUnarmed AwaitState = iota
	AwaitArmed
	AwaitCleared
)

func (s AwaitState) String() string {
	switch s {
	case AwaitUnarmed:
		return "unarmed"
	case AwaitArmed:
		return "armed"
	case AwaitCleared:
		return "cleared"
	default:
		return fmt.Sprintf("AwaitState(%d)", int(s))
	}
}

// AwaitKey identifies the conversation an Await listens to.
type AwaitKey struct {
	ChannelID string
	UserID    string
}

// Await is a timed continuation waiting for a follow-up message from one user
// in one channel. It is not registered by name; an action returns it in
// Options.Awaits and the handler arms it after the response is delivered.
type Await struct {
	// ChannelID and UserID override the defaults taken from the triggering
	// invocation.
	ChannelID string
	UserID    string

	Timeout time.Duration
	// OneTime clears the await on the first message that does not match.
	OneTime bool
	// RefreshOnUse keeps the await alive and restarts its timer after each use.
	RefreshOnUse bool
	// RequirePrefix only matches messages starting with the command prefix.
	RequirePrefix bool
	// Shift drops that many leading words before arguments are parsed.
	Shift int

	// Trigger filters messages; nil accepts every message.
	Trigger func(*platform.Message) bool
	Args    []Arg
	Action  Action

	mu      sync.Mutex
	state   AwaitState
	key     AwaitKey
	timer   *time.Timer
	gen     uint64
	trigger mo.Option[*platform.Message]
}

// State returns the current lifecycle state.
func (a *Await) State() AwaitState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Key returns the key the await was armed with.
func (a *Await) Key() AwaitKey {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.key
}

// TriggerResponse is the delivered message that armed the await.
func (a *Await) TriggerResponse() mo.Option[*platform.Message] {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.trigger
}

// Matches runs the trigger predicate.
func (a *Await) Matches(msg *platform.Message) bool {
	if a.Trigger == nil {
		return true
	}
	return a.Trigger(msg)
}

func (a *Await) timeout() time.Duration {
	if a.Timeout <= 0 {
		return DefaultAwaitTimeout
	}
	return a.Timeout
}

type awaitEvent int

const (
	evArm awaitEvent = iota
	evExpire
	evClear
	evRefresh
)

// AwaitTable holds at most one armed Await per key and owns every state
// transition and timer of the awaits it holds.
type AwaitTable struct {
	mu    sync.Mutex
	slots map[AwaitKey]*Await
	// OnExpire, when set, is called after an await times out.
	OnExpire func(*Await)
}

func NewAwaitTable() *AwaitTable {
	return &AwaitTable{slots: make(map[AwaitKey]*Await)}
}

// Arm starts aw's timer and registers it. The key comes from aw's explicit
// ChannelID/UserID, falling back to def. An await already armed for the key is
// cleared first.
func (t *AwaitTable) Arm(aw *Await, def AwaitKey, trigger *platform.Message) error {
	key := AwaitKey{ChannelID: aw.ChannelID, UserID: aw.UserID}
	if key.ChannelID == "" {
		key.ChannelID = def.ChannelID
	}
	if key.UserID == "" {
		key.UserID = def.UserID
	}
	if key.ChannelID == "" || key.UserID == "" {
		return ErrNoTarget
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	aw.mu.Lock()
	if aw.state != AwaitUnarmed {
		aw.mu.Unlock()
		return ErrAlreadyStarted
	}
	aw.key = key
	if trigger != nil {
		aw.trigger = mo.Some(trigger)
	}
	aw.mu.Unlock()

	if old := t.slots[key]; old != nil && old != aw {
		_ = t.transitionLocked(old, evClear, 0)
	}
	return t.transitionLocked(aw, evArm, 0)
}

// Lookup returns the armed await for key, or nil.
func (t *AwaitTable) Lookup(key AwaitKey) *Await {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.slots[key]
}

// Clear cancels aw's timer and removes it. Clearing a cleared await is a no-op.
func (t *AwaitTable) Clear(aw *Await) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitionLocked(aw, evClear, 0)
}

// Refresh restarts aw's timer with its original timeout.
func (t *AwaitTable) Refresh(aw *Await) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transitionLocked(aw, evRefresh, 0)
}

// Len returns the number of armed awaits.
func (t *AwaitTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.slots)
}

// Close clears every armed await.
func (t *AwaitTable) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, aw := range t.slots {
		_ = t.transitionLocked(aw, evClear, 0)
	}
}

func (t *AwaitTable) expire(aw *Await, gen uint64) {
	t.mu.Lock()
	err := t.transitionLocked(aw, evExpire, gen)
	onExpire := t.OnExpire
	t.mu.Unlock()

	if err == nil && onExpire != nil {
		onExpire(aw)
	}
}

// transitionLocked is the only place an await changes state. gen is only used
// by evExpire to drop timers superseded by a refresh.
func (t *AwaitTable) transitionLocked(aw *Await, ev awaitEvent, gen uint64) error {
	aw.mu.Lock()
	defer aw.mu.Unlock()

	switch ev {
	case evArm:
		if aw.state != AwaitUnarmed {
			return ErrAlreadyStarted
		}
		aw.state = AwaitArmed
		t.slots[aw.key] = aw
		t.startTimerLocked(aw)
		return nil

	case evRefresh:
		switch aw.state {
		case AwaitUnarmed:
			return ErrNotStarted
		case AwaitCleared:
			return ErrAwaitCleared
		}
		aw.timer.Stop()
		t.startTimerLocked(aw)
		return nil

	case evClear, evExpire:
		switch aw.state {
		case AwaitUnarmed:
			return ErrNotStarted
		case AwaitCleared:
			if ev == evExpire {
				return ErrAwaitCleared
			}
			return nil
		}
		if ev == evExpire && gen != aw.gen {
			return ErrAwaitCleared
		}
		aw.timer.Stop()
		aw.state = AwaitCleared
		if t.slots[aw.key] == aw {
			delete(t.slots, aw.key)
		}
		return nil
	}

	return fmt.Errorf("await: unknown event %d", ev)
}

func (t *AwaitTable) startTimerLocked(aw *Await) {
	aw.gen++
	gen := aw.gen
	aw.timer = time.AfterFunc(aw.timeout(), func() { t.expire(aw, gen) })
}

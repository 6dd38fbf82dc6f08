// Package input implements the 16-key hexadecimal keypad state for the
// CHIP-8 machine. Host key mapping is the poller's concern; this package
// only holds the pressed/not-pressed vector it supplies.
package input

import "log"

// NumKeys is the number of keys on the CHIP-8 keypad (hex digits 0-F)
const NumKeys = 16

// Keypad represents the externally refreshed pressed-key vector
type Keypad struct {
	keys [NumKeys]bool

	debugEnabled bool
}

// New creates a new keypad with no keys pressed
func New() *Keypad {
	return &Keypad{}
}

// SetKey sets the pressed state of a single key. Key indices outside 0-F
// are ignored.
func (k *Keypad) SetKey(key uint8, pressed bool) {
	if key >= NumKeys {
		return
	}
	if k.debugEnabled && k.keys[key] != pressed {
		log.Printf("[KEYPAD] key %X pressed=%t", key, pressed)
	}
	k.keys[key] = pressed
}

// SetKeys replaces the whole vector at once, the way the host poller
// refreshes it once per polling interval.
func (k *Keypad) SetKeys(keys [NumKeys]bool) {
	k.keys = keys
}

// IsPressed returns whether the given key is currently down. Key indices
// outside 0-F always read as not pressed.
func (k *Keypad) IsPressed(key uint8) bool {
	if key >= NumKeys {
		return false
	}
	return k.keys[key]
}

// FirstPressed returns the lowest-indexed pressed key, used to resolve the
// interpreter's wait-for-key latch.
func (k *Keypad) FirstPressed() (uint8, bool) {
	for i := uint8(0); i < NumKeys; i++ {
		if k.keys[i] {
			return i, true
		}
	}
	return 0, false
}

// AnyPressed returns whether at least one key is down
func (k *Keypad) AnyPressed() bool {
	_, ok := k.FirstPressed()
	return ok
}

// Reset releases every key
func (k *Keypad) Reset() {
	k.keys = [NumKeys]bool{}
}

// EnableDebug enables change logging for this keypad
func (k *Keypad) EnableDebug(enable bool) {
	k.debugEnabled = enable
}

package input

import "testing"

func TestNew_ShouldCreateKeypadWithNoKeysPressed(t *testing.T) {
	keypad := New()

	for key := uint8(0); key < NumKeys; key++ {
		if keypad.IsPressed(key) {
			t.Errorf("Key %X should not be pressed initially", key)
		}
	}
	if keypad.AnyPressed() {
		t.Error("AnyPressed should be false initially")
	}
}

func TestSetKey_ShouldUpdatePressedState(t *testing.T) {
	keypad := New()

	for key := uint8(0); key < NumKeys; key++ {
		keypad.SetKey(key, true)
		if !keypad.IsPressed(key) {
			t.Errorf("Key %X should be pressed after SetKey(true)", key)
		}

		keypad.SetKey(key, false)
		if keypad.IsPressed(key) {
			t.Errorf("Key %X should not be pressed after SetKey(false)", key)
		}
	}
}

func TestSetKey_OutOfRange_ShouldBeIgnored(t *testing.T) {
	keypad := New()

	keypad.SetKey(16, true)
	keypad.SetKey(0xFF, true)

	if keypad.AnyPressed() {
		t.Error("Out-of-range keys must not affect the vector")
	}
	if keypad.IsPressed(16) {
		t.Error("Out-of-range key must read as not pressed")
	}
}

func TestSetKeys_ShouldReplaceWholeVector(t *testing.T) {
	keypad := New()
	keypad.SetKey(0x3, true)

	var keys [NumKeys]bool
	keys[0xA] = true
	keys[0xF] = true
	keypad.SetKeys(keys)

	if keypad.IsPressed(0x3) {
		t.Error("SetKeys must clear keys not in the new vector")
	}
	if !keypad.IsPressed(0xA) || !keypad.IsPressed(0xF) {
		t.Error("SetKeys must set keys in the new vector")
	}
}

func TestFirstPressed_ShouldReturnLowestIndex(t *testing.T) {
	keypad := New()

	if _, ok := keypad.FirstPressed(); ok {
		t.Fatal("FirstPressed should report no key on an idle keypad")
	}

	keypad.SetKey(0xC, true)
	keypad.SetKey(0x5, true)
	keypad.SetKey(0x9, true)

	key, ok := keypad.FirstPressed()
	if !ok {
		t.Fatal("Expected a pressed key")
	}
	if key != 0x5 {
		t.Errorf("Expected lowest pressed key 0x5, got 0x%X", key)
	}
}

func TestReset_ShouldReleaseAllKeys(t *testing.T) {
	keypad := New()
	keypad.SetKey(0x0, true)
	keypad.SetKey(0xF, true)

	keypad.Reset()

	if keypad.AnyPressed() {
		t.Error("Expected no keys pressed after reset")
	}
}

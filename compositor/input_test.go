package compositor

import (
	"errors"
	"testing"

	"github.com/mstarongithub/tilewl/border"
	"github.com/mstarongithub/tilewl/toolkit"
	"github.com/mstarongithub/tilewl/toolkit/toolkittest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyboardSetup(t *testing.T) {
	backend := toolkittest.NewBackend()
	options := DefaultOptions()
	options.Keymap = toolkit.XKBRules{Layout: "de"}
	options.RepeatRate, options.RepeatDelay = 40, 300
	rec := &recorder{}
	server, err := NewServer(backend, rec.callbacks(), options)
	require.NoError(t, err)

	assert.Equal(t, toolkit.SeatCapabilityPointer, backend.FakeSeat.Caps, "a pointer is advertised before any device")
	kb := addKeyboard(server, "kb")
	assert.Equal(t, "de", kb.Kb.Rules.Layout)
	assert.EqualValues(t, 40, kb.Kb.RepeatRate)
	assert.EqualValues(t, 300, kb.Kb.RepeatDelay)
	assert.Equal(t, toolkit.SeatCapabilityPointer|toolkit.SeatCapabilityKeyboard, backend.FakeSeat.Caps)
	assert.Equal(t, 1, rec.devices)
	assert.Equal(t, []toolkit.InputDevice{kb}, server.InputDevices())
}

func TestKeyBindings(t *testing.T) {
	server, backend, rec := newTestServer(t)
	kb := addKeyboard(server, "kb")
	kb.Kb.Keymap[36] = []uint32{0xff0d}
	kb.Kb.Keymap[38] = []uint32{0x61, 0x41}
	rec.consumeKeys[0xff0d] = true

	server.HandleKey(kb, 0, 36, true)
	assert.Equal(t, []uint32{0xff0d}, rec.keys)
	assert.Empty(t, backend.FakeSeat.Keys, "consumed keys are not forwarded")

	server.HandleKey(kb, 0, 38, true)
	assert.Equal(t, []uint32{0xff0d, 0x61, 0x41}, rec.keys, "every keysym is offered")
	assert.Equal(t, []toolkittest.Button{{Button: 38, Pressed: true}}, backend.FakeSeat.Keys)

	server.HandleKey(kb, 0, 38, false)
	assert.Len(t, rec.keys, 3, "releases are never offered")
	assert.Len(t, backend.FakeSeat.Keys, 2)

	kb.Kb.Mods = toolkit.ModShift
	server.HandleModifiers(kb)
	assert.Equal(t, []toolkit.Modifiers{toolkit.ModShift}, backend.FakeSeat.ModifierSends)
}

func TestKeysymsFromCode(t *testing.T) {
	server, _, _ := newTestServer(t)
	assert.Nil(t, server.KeysymsFromCode(36), "no keyboard")

	first := addKeyboard(server, "first")
	first.Kb.Keymap[36] = []uint32{0xff0d}
	second := addKeyboard(server, "second")
	second.Kb.Keymap[36] = []uint32{0x20}
	assert.Equal(t, []uint32{0x20}, server.KeysymsFromCode(36), "the newest keyboard is active")

	server.HandleKey(first, 0, 10, true)
	assert.Equal(t, []uint32{0xff0d}, server.KeysymsFromCode(36), "typing switches the active keyboard")

	server.HandleInputDestroy(first)
	assert.Equal(t, []uint32{0x20}, server.KeysymsFromCode(36))
	assert.Len(t, server.InputDevices(), 1)
}

func TestSetKeymapAndRepeat(t *testing.T) {
	server, _, _ := newTestServer(t)
	good := addKeyboard(server, "good")
	bad := addKeyboard(server, "bad")
	bad.Kb.KeymapErr = errors.New("no such layout")

	err := server.SetKeymap(toolkit.XKBRules{Layout: "us", Variant: "dvorak"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.Equal(t, "dvorak", good.Kb.Rules.Variant)

	later := addKeyboard(server, "later")
	assert.Equal(t, "dvorak", later.Kb.Rules.Variant, "new keyboards get the current keymap")

	server.SetRepeatInfo(50, 200)
	for _, kb := range []*toolkittest.InputDevice{good, bad, later} {
		assert.EqualValues(t, 50, kb.Kb.RepeatRate)
		assert.EqualValues(t, 200, kb.Kb.RepeatDelay)
	}
}

func TestConfigureInput(t *testing.T) {
	server, _, _ := newTestServer(t)
	touchpad := toolkittest.NewPointerDevice("touchpad")
	touchpad.Li = &toolkittest.Libinput{TapFingers: 3, NaturalScroll: true}
	server.HandleNewInput(touchpad)
	mouse := toolkittest.NewPointerDevice("mouse")
	mouse.Li = &toolkittest.Libinput{Accel: true, LeftHanded: true}
	server.HandleNewInput(mouse)
	addKeyboard(server, "kb")

	enable := true
	speed := 0.5
	opts := InputOptions{Tap: &enable, NaturalScroll: &enable, AccelSpeed: &speed}

	assert.Equal(t, 1, server.ConfigureInput("touchpad", opts))
	require.NotNil(t, touchpad.Li.Tap)
	assert.True(t, *touchpad.Li.Tap)
	require.NotNil(t, touchpad.Li.Natural)
	assert.Nil(t, touchpad.Li.AccelSpeed, "unsupported options are skipped")
	assert.Nil(t, mouse.Li.AccelSpeed, "other devices are left alone")

	assert.Equal(t, 2, server.ConfigureInput("", InputOptions{LeftHanded: &enable}), "keyboards without libinput are skipped")
	require.NotNil(t, mouse.Li.Left)
	assert.Nil(t, touchpad.Li.Left)

	assert.Zero(t, server.ConfigureInput("missing", opts))
}

func TestPointerDevicesAttachToCursor(t *testing.T) {
	server, backend, _ := newTestServer(t)
	ptr := addPointer(server)
	touch := &toolkittest.InputDevice{DeviceName: "screen", DeviceType: toolkit.InputDeviceTouch}
	server.HandleNewInput(touch)
	assert.Len(t, backend.FakeCursor.Devices, 2)
	assert.Equal(t, toolkit.SeatCapabilityPointer|toolkit.SeatCapabilityTouch, backend.FakeSeat.Caps)

	server.HandleInputDestroy(ptr)
	server.HandleInputDestroy(touch)
	assert.Empty(t, backend.FakeCursor.Devices)
	assert.Equal(t, toolkit.SeatCapabilityPointer, backend.FakeSeat.Caps)
}

func TestSwipeGesture(t *testing.T) {
	server, _, rec := newTestServer(t)
	touchpad := addPointer(server)

	server.HandleSwipeBegin(touchpad, 0, 3)
	server.HandleSwipeUpdate(touchpad, 0, 10, 0)
	server.HandleSwipeUpdate(touchpad, 0, 12, 1)
	server.HandleSwipeUpdate(touchpad, 0, 0, 10)
	server.HandleSwipeUpdate(touchpad, 0, -10, 0)
	server.HandleSwipeUpdate(touchpad, 0, 1, 1)
	server.HandleSwipeEnd(touchpad, 0, false)
	assert.Equal(t, []string{"RDL"}, rec.swipes)

	server.HandleSwipeBegin(touchpad, 0, 3)
	server.HandleSwipeUpdate(touchpad, 0, 10, 0)
	server.HandleSwipeEnd(touchpad, 0, true)
	assert.Len(t, rec.swipes, 1, "cancelled swipes are dropped")

	server.HandleSwipeBegin(touchpad, 0, 3)
	server.HandleSwipeUpdate(touchpad, 0, 1, 0)
	server.HandleSwipeEnd(touchpad, 0, false)
	assert.Len(t, rec.swipes, 1, "empty swipes are dropped")
}

func TestPinchGesture(t *testing.T) {
	server, _, rec := newTestServer(t)
	touchpad := addPointer(server)

	server.HandlePinchBegin(touchpad, 0, 2)
	server.HandlePinchUpdate(touchpad, 0, 0, 0, 0.5, 4)
	server.HandlePinchUpdate(touchpad, 0, 0, 0, 0.4, 3)
	server.HandlePinchEnd(touchpad, 0, false)
	assert.Equal(t, [][2]bool{{true, true}}, rec.pinches)

	server.HandlePinchBegin(touchpad, 0, 2)
	server.HandlePinchUpdate(touchpad, 0, 0, 0, 2, -4)
	server.HandlePinchEnd(touchpad, 0, false)
	assert.Equal(t, [][2]bool{{true, true}, {false, false}}, rec.pinches)

	server.HandleHoldBegin(touchpad, 0, 3)
	assert.True(t, server.deviceFor(touchpad).holding)
	server.HandleHoldEnd(touchpad, 0, false)
	assert.False(t, server.deviceFor(touchpad).holding)
}

func TestGesturesIgnoredWhileLocked(t *testing.T) {
	server, _, rec := newTestServer(t)
	touchpad := addPointer(server)
	server.HandleNewLock(&toolkittest.SessionLock{})

	server.HandleSwipeBegin(touchpad, 0, 3)
	server.HandleSwipeUpdate(touchpad, 0, 10, 0)
	server.HandleSwipeEnd(touchpad, 0, false)
	server.HandlePinchBegin(touchpad, 0, 2)
	server.HandlePinchUpdate(touchpad, 0, 0, 0, 0.5, 0)
	server.HandlePinchEnd(touchpad, 0, false)
	assert.Empty(t, rec.swipes)
	assert.Empty(t, rec.pinches)
}

func TestTouch(t *testing.T) {
	server, backend, _ := newTestServer(t)
	addOutput(t, server, "A", 1000, 500)
	screen := &toolkittest.InputDevice{DeviceName: "screen", DeviceType: toolkit.InputDeviceTouch}
	server.HandleNewInput(screen)
	top, view := mapToplevel(t, server, 400, 300)
	view.Place(100, 50, 400, 300, border.Spec{}, false)

	server.HandleTouchDown(screen, 0, 7, 0.2, 0.2)
	server.HandleTouchMotion(screen, 0, 7, 0.3, 0.4)
	server.HandleTouchFrame()
	server.HandleTouchUp(screen, 0, 7)
	assert.Equal(t, []toolkittest.Touch{
		{Kind: "down", ID: 7, Surface: top.Surf, SX: 100, SY: 50},
		{Kind: "motion", ID: 7, SX: 200, SY: 150},
		{Kind: "frame"},
		{Kind: "up", ID: 7},
	}, backend.FakeSeat.Touches)

	// Touches outside any surface and unknown ids are ignored
	backend.FakeSeat.Touches = nil
	server.HandleTouchDown(screen, 0, 8, 0.9, 0.9)
	server.HandleTouchMotion(screen, 0, 8, 0.5, 0.5)
	server.HandleTouchUp(screen, 0, 8)
	assert.Empty(t, backend.FakeSeat.Touches)

	server.HandleTouchDown(screen, 0, 9, 0.2, 0.2)
	server.HandleTouchCancel(screen, 0, 9)
	assert.Equal(t, toolkittest.Touch{Kind: "cancel", Surface: top.Surf}, backend.FakeSeat.Touches[1])
}

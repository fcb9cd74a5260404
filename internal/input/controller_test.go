package input

import "testing"

func TestNewControllerStartsWithZeroedState(t *testing.T) {
	c := New(1)
	if c.buttons != 0 || c.status != 0 || c.index != 0 || c.strobe {
		t.Fatal("new controller should start fully zeroed")
	}
}

func TestSetButtonSetsAndClearsIndividualBits(t *testing.T) {
	c := New(1)
	c.SetButton(ButtonA, true)
	if !c.IsPressed(ButtonA) {
		t.Error("ButtonA should be pressed after SetButton(true)")
	}
	c.SetButton(ButtonA, false)
	if c.IsPressed(ButtonA) {
		t.Error("ButtonA should be released after SetButton(false)")
	}
}

func TestSetButtonsAppliesFullMaskInOrder(t *testing.T) {
	c := New(1)
	c.SetButtons([8]bool{true, false, false, false, false, false, false, true})
	if !c.IsPressed(ButtonA) || !c.IsPressed(ButtonRight) {
		t.Error("A and Right should be pressed")
	}
	if c.IsPressed(ButtonB) || c.IsPressed(ButtonSelect) {
		t.Error("unset buttons should read as released")
	}
}

func TestStrobeHighLatchesStatusAndResetsIndex(t *testing.T) {
	c := New(1)
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonStart, true)
	c.Strobe(true)

	if c.status != uint8(ButtonA|ButtonStart) {
		t.Errorf("status = %#02x, want latched button mask", c.status)
	}
	if c.index != 0 {
		t.Error("strobe high should reset the read index")
	}
}

func TestReadSequenceShiftsOutMSBFirstThenReadsAsOpenBus(t *testing.T) {
	c := New(1)
	c.SetButton(ButtonA, true)
	c.SetButton(ButtonLeft, true)
	c.Strobe(true)
	c.Strobe(false) // reads now advance the index

	want := []uint8{1, 0, 0, 0, 0, 0, 1, 0} // A, B, Select, Start, Up, Down, Left, Right
	for i, w := range want {
		if got := c.Read(); got != w {
			t.Errorf("Read() #%d = %d, want %d", i, got, w)
		}
	}
	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("Read() past bit 7 = %d, want 1 (open bus)", got)
		}
	}
}

func TestStrobeHighKeepsReturningBitZero(t *testing.T) {
	c := New(1)
	c.SetButton(ButtonA, true)
	c.Strobe(true) // strobe stays high

	for i := 0; i < 3; i++ {
		if got := c.Read(); got != 1 {
			t.Errorf("Read() under strobe = %d, want 1 (button A held)", got)
		}
	}
}

func TestResetClearsLatchedAndLiveState(t *testing.T) {
	c := New(1)
	c.SetButton(ButtonA, true)
	c.Strobe(true)
	c.Reset()
	if c.buttons != 0 || c.status != 0 || c.index != 0 || c.strobe {
		t.Fatal("Reset should clear all controller state")
	}
}

func TestInputStateResetClearsBothControllers(t *testing.T) {
	is := NewInputState()
	is.Controller1.SetButton(ButtonA, true)
	is.Controller1.Strobe(true)
	is.Controller2.SetButton(ButtonB, true)
	is.Controller2.Strobe(true)

	is.Reset()

	if is.Controller1.status != 0 || is.Controller2.status != 0 {
		t.Error("Reset should clear both controllers' latched status")
	}
}

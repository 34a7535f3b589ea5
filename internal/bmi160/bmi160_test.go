// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmi160

import (
	"errors"
	"math"
	"testing"

	"periph.io/x/conn/v3/physic"
)

// fakeBus is a register-file I2C fake. Reads return the stored register
// bytes; writes update them. Writes to CMD are recorded but 0xB6 (soft
// reset) restores the power-on defaults like the real part.
type fakeBus struct {
	regs   [0x80]byte
	writes []byte // registers written, in order
}

func newFakeBus() *fakeBus {
	b := &fakeBus{}
	b.reset()
	return b
}

func (b *fakeBus) reset() {
	for i := range b.regs {
		b.regs[i] = 0
	}
	b.regs[regChipID] = chipID
	b.regs[regAccelConf] = 0x28  // power-on default: odr 100 Hz, bwp normal
	b.regs[regAccelRange] = 0x03 // ±2g
	b.regs[regGyroConf] = 0x28
	b.regs[regGyroRange] = 0x00 // ±2000 °/s
}

func (b *fakeBus) Tx(addr uint16, w, r []byte) error {
	if addr != DefaultAddr {
		return errors.New("fakeBus: unexpected address")
	}
	reg := w[0]
	if len(w) == 2 { // register write
		b.writes = append(b.writes, reg)
		if reg == regCmd {
			switch w[1] {
			case cmdSoftReset:
				b.reset()
			case byte(AccelNormal):
				b.regs[regPMUStatus] = encodeField(b.regs[regPMUStatus], fieldPMUAccel, 0b01)
			case byte(AccelSuspend):
				b.regs[regPMUStatus] = encodeField(b.regs[regPMUStatus], fieldPMUAccel, 0b00)
			case byte(AccelLowPower):
				b.regs[regPMUStatus] = encodeField(b.regs[regPMUStatus], fieldPMUAccel, 0b10)
			case byte(GyroNormal):
				b.regs[regPMUStatus] = encodeField(b.regs[regPMUStatus], fieldPMUGyro, 0b01)
			case byte(GyroSuspend):
				b.regs[regPMUStatus] = encodeField(b.regs[regPMUStatus], fieldPMUGyro, 0b00)
			case byte(GyroFastStartUp):
				b.regs[regPMUStatus] = encodeField(b.regs[regPMUStatus], fieldPMUGyro, 0b11)
			}
		} else {
			b.regs[reg] = w[1]
		}
		return nil
	}
	for i := range r {
		r[i] = b.regs[int(reg)+i]
	}
	return nil
}

func (b *fakeBus) String() string                    { return "fake" }
func (b *fakeBus) SetSpeed(f physic.Frequency) error { return nil }

func (b *fakeBus) setAxes(reg byte, x, y, z int16) {
	b.regs[reg] = byte(x)
	b.regs[reg+1] = byte(uint16(x) >> 8)
	b.regs[reg+2] = byte(y)
	b.regs[reg+3] = byte(uint16(y) >> 8)
	b.regs[reg+4] = byte(z)
	b.regs[reg+5] = byte(uint16(z) >> 8)
}

func mustNew(t *testing.T, bus *fakeBus) *Dev {
	t.Helper()
	d, err := New(bus, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return d
}

func TestNewRejectsWrongChipID(t *testing.T) {
	bus := newFakeBus()
	bus.regs[regChipID] = 0x68 // an MPU on the same address, say

	_, err := New(bus, nil)
	if !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("expected ErrDeviceNotFound, got %v", err)
	}
	if len(bus.writes) != 0 {
		t.Fatalf("expected no writes after identity mismatch, got %d", len(bus.writes))
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	r, err := d.AccelRangeValue()
	if err != nil {
		t.Fatal(err)
	}
	if r != AccelRange4G {
		t.Errorf("accel range = 0b%04b, want 0b%04b", byte(r), byte(AccelRange4G))
	}
	st, err := d.PowerModeStatus()
	if err != nil {
		t.Fatal(err)
	}
	if st.Accel != PowerNormal || st.Gyro != PowerNormal {
		t.Errorf("power status = %+v, want accel/gyro normal", st)
	}
	if st.Mag != PowerSuspend {
		t.Errorf("mag status = %v, want suspend", st.Mag)
	}
}

func TestDataRateHz(t *testing.T) {
	for code := byte(odrMin); code <= odrMax; code++ {
		want := 100.0 / math.Pow(2, 8-float64(code))
		if got := DataRateHz(code); got != want {
			t.Errorf("DataRateHz(0b%04b) = %v, want %v", code, got, want)
		}
	}
	if got := DataRateHz(ODR100); got != 100.0 {
		t.Errorf("DataRateHz(ODR100) = %v, want 100", got)
	}
}

func TestDataRateRoundTrip(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	for code := byte(odrMin); code <= odrMax; code++ {
		if err := d.SetAccelDataRate(code); err != nil {
			t.Fatalf("SetAccelDataRate(0b%04b): %v", code, err)
		}
		got, err := d.AccelDataRate()
		if err != nil {
			t.Fatal(err)
		}
		if got != code {
			t.Errorf("accel ODR round trip: wrote 0b%04b, read 0b%04b", code, got)
		}
		if err := d.SetGyroDataRate(code); err != nil {
			t.Fatalf("SetGyroDataRate(0b%04b): %v", code, err)
		}
		got, err = d.GyroDataRate()
		if err != nil {
			t.Fatal(err)
		}
		if got != code {
			t.Errorf("gyro ODR round trip: wrote 0b%04b, read 0b%04b", code, got)
		}
	}

	for _, bad := range []byte{0, 0b1101, 0b1111} {
		if err := d.SetAccelDataRate(bad); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("SetAccelDataRate(0b%04b) = %v, want ErrInvalidValue", bad, err)
		}
		if err := d.SetGyroDataRate(bad); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("SetGyroDataRate(0b%04b) = %v, want ErrInvalidValue", bad, err)
		}
	}
}

func TestRangeRoundTripAndScale(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	for r, lsb := range accelLSBPerG {
		if err := d.SetAccelRange(r); err != nil {
			t.Fatalf("SetAccelRange(0b%04b): %v", byte(r), err)
		}
		got, err := d.AccelRangeValue()
		if err != nil {
			t.Fatal(err)
		}
		if got != r {
			t.Errorf("accel range round trip: wrote 0b%04b, read 0b%04b", byte(r), byte(got))
		}
		if d.accelLSBPerG != lsb {
			t.Errorf("cached divisor for 0b%04b = %d, want %d", byte(r), d.accelLSBPerG, lsb)
		}
	}

	for r, lsb := range gyroLSBPerDps {
		if err := d.SetGyroRange(r); err != nil {
			t.Fatalf("SetGyroRange(%d): %v", byte(r), err)
		}
		got, err := d.GyroRangeValue()
		if err != nil {
			t.Fatal(err)
		}
		if got != r {
			t.Errorf("gyro range round trip: wrote %d, read %d", byte(r), byte(got))
		}
		if d.gyroLSBPerDps != lsb {
			t.Errorf("cached divisor for %d = %v, want %v", byte(r), d.gyroLSBPerDps, lsb)
		}
	}

	if err := d.SetAccelRange(AccelRange(0b0100)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetAccelRange(0b0100) = %v, want ErrInvalidValue", err)
	}
	if err := d.SetGyroRange(GyroRange(5)); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetGyroRange(5) = %v, want ErrInvalidValue", err)
	}
}

func TestSettersPreserveSiblingFields(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	// Set acc_us, then change the ODR, then check acc_us survived.
	if err := d.SetAccelUndersample(Undersample); err != nil {
		t.Fatal(err)
	}
	if err := d.SetAccelBandwidthParam(BWPAveraging); err != nil {
		t.Fatal(err)
	}
	if err := d.SetAccelDataRate(ODR1600); err != nil {
		t.Fatal(err)
	}
	us, err := d.AccelUndersample()
	if err != nil {
		t.Fatal(err)
	}
	if us != Undersample {
		t.Errorf("acc_us clobbered by ODR write: got %d", us)
	}
	bwp, err := d.AccelBandwidthParam()
	if err != nil {
		t.Fatal(err)
	}
	if bwp != BWPAveraging {
		t.Errorf("acc_bwp clobbered by ODR write: got %d", bwp)
	}
	odr, err := d.AccelDataRate()
	if err != nil {
		t.Fatal(err)
	}
	if odr != ODR1600 {
		t.Errorf("acc_odr = 0b%04b, want 0b%04b", odr, byte(ODR1600))
	}

	// Same on the gyro side.
	if err := d.SetGyroBandwidthParam(GyroBWPOSR2); err != nil {
		t.Fatal(err)
	}
	if err := d.SetGyroDataRate(ODR200); err != nil {
		t.Fatal(err)
	}
	gbwp, err := d.GyroBandwidthParam()
	if err != nil {
		t.Fatal(err)
	}
	if gbwp != GyroBWPOSR2 {
		t.Errorf("gyr_bwp clobbered by ODR write: got %d", gbwp)
	}
}

func TestGyroPowerModeValidation(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)
	writes := len(bus.writes)

	for _, bad := range []GyroPowerMode{0x00, 0x11, 0x16, 0x18} {
		if err := d.SetGyroPowerMode(bad); !errors.Is(err, ErrInvalidValue) {
			t.Errorf("SetGyroPowerMode(0x%02X) = %v, want ErrInvalidValue", byte(bad), err)
		}
	}
	if len(bus.writes) != writes {
		t.Fatalf("rejected power modes still reached the bus: %d extra writes", len(bus.writes)-writes)
	}
}

func TestAccelPowerModeValidation(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	if err := d.SetAccelPowerMode(0x15); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("SetAccelPowerMode(0x15) = %v, want ErrInvalidValue", err)
	}
	if err := d.SetAccelPowerMode(AccelLowPower); err != nil {
		t.Fatal(err)
	}
	st, err := d.PowerModeStatus()
	if err != nil {
		t.Fatal(err)
	}
	if st.Accel != PowerLowPower {
		t.Errorf("accel state = %v, want low-power", st.Accel)
	}
}

func TestAcceleration(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	// ±4g → 8192 LSB/g, so raw 8192 on every axis is exactly 1 g.
	bus.setAxes(regAccelData, 8192, 8192, 8192)
	x, y, z, err := d.Acceleration()
	if err != nil {
		t.Fatal(err)
	}
	if x != 1.0 || y != 1.0 || z != 1.0 {
		t.Errorf("Acceleration() = %v %v %v, want 1 1 1", x, y, z)
	}

	// Negative readings must sign-extend.
	bus.setAxes(regAccelData, -8192, 0, -16384)
	x, y, z, err = d.Acceleration()
	if err != nil {
		t.Fatal(err)
	}
	if x != -1.0 || y != 0 || z != -2.0 {
		t.Errorf("Acceleration() = %v %v %v, want -1 0 -2", x, y, z)
	}
}

func TestGyro(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	if err := d.SetGyroRange(GyroRange125); err != nil {
		t.Fatal(err)
	}
	bus.setAxes(regGyroData, 2624, -2624, 0)
	x, y, z, err := d.Gyro()
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(x-10.0) > 1e-9 || math.Abs(y+10.0) > 1e-9 || z != 0 {
		t.Errorf("Gyro() = %v %v %v, want 10 -10 0", x, y, z)
	}
}

func TestTemperature(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	cases := []struct {
		raw  int16
		want float64
	}{
		{0, 23.0},
		{512, 24.0},
		{-512, 22.0},
	}
	for _, tc := range cases {
		bus.regs[regTemp] = byte(tc.raw)
		bus.regs[regTemp+1] = byte(uint16(tc.raw) >> 8)
		got, err := d.Temperature()
		if err != nil {
			t.Fatal(err)
		}
		if got != tc.want {
			t.Errorf("Temperature(raw=%d) = %v, want %v", tc.raw, got, tc.want)
		}
	}
}

func TestErrorStatus(t *testing.T) {
	bus := newFakeBus()
	d := mustNew(t, bus)

	// drop_cmd_err set, err_code = 6 (ODR mismatch), fatal clear.
	bus.regs[regErr] = 1<<6 | 6<<1
	st, err := d.ErrorStatus()
	if err != nil {
		t.Fatal(err)
	}
	if !st.DroppedCommand || st.Code != ErrCodeODRMismatch || st.Fatal {
		t.Errorf("ErrorStatus = %+v", st)
	}

	// fatal flag alone.
	bus.regs[regErr] = 0x01
	st, err = d.ErrorStatus()
	if err != nil {
		t.Fatal(err)
	}
	if !st.Fatal || st.Code != ErrCodeNone || st.DroppedCommand {
		t.Errorf("ErrorStatus = %+v", st)
	}

	// Undocumented codes must surface as an error, not an index panic.
	for _, code := range []byte{4, 5, 9, 15} {
		bus.regs[regErr] = code << 1
		if _, err := d.ErrorStatus(); !errors.Is(err, ErrUnknownErrorCode) {
			t.Errorf("err_code=%d: got %v, want ErrUnknownErrorCode", code, err)
		}
	}
}

func TestFieldEncodeDecode(t *testing.T) {
	f := FieldSpec{Reg: regGyroConf, Width: 2, Offset: 4}
	b := encodeField(0xFF, f, 0b01)
	if b != 0b11011111 {
		t.Errorf("encodeField(0xFF) = 0b%08b", b)
	}
	if got := decodeField(b, f); got != 0b01 {
		t.Errorf("decodeField = 0b%02b, want 0b01", got)
	}
	// Oversized values must not leak into sibling bits.
	b = encodeField(0x00, f, 0xFF)
	if b != 0b00110000 {
		t.Errorf("encodeField masked = 0b%08b", b)
	}
}

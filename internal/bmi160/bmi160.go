// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package bmi160 drives a Bosch BMI160 accelerometer/gyroscope over I2C.
//
// The driver is synchronous and polled: every call is one or two bus
// transactions, optionally followed by a device-mandated settle delay.
// A Dev is not safe for concurrent use without external locking; the bus
// transaction must not interleave with another one.
package bmi160

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// Sentinel errors. Bus transport errors are propagated verbatim and are not
// wrapped in any of these.
var (
	// ErrDeviceNotFound means the chip identity register did not read 0xD1.
	ErrDeviceNotFound = errors.New("bmi160: device not found (bad chip ID)")
	// ErrInvalidValue means a setter argument is outside its legal encoding set.
	ErrInvalidValue = errors.New("bmi160: value outside legal set")
	// ErrUnknownErrorCode means the ERR register reported a code the
	// datasheet does not define.
	ErrUnknownErrorCode = errors.New("bmi160: undocumented error code")
)

// Device-mandated settle times. These are hard timing contracts from the
// datasheet, not tunables: reads issued earlier may hit uninitialized
// registers.
const (
	softResetSettle = 15 * time.Millisecond
	powerModeSettle = 100 * time.Millisecond
)

// Opts holds the initial configuration applied by New after reset.
type Opts struct {
	Addr       uint16
	AccelMode  AccelPowerMode
	GyroMode   GyroPowerMode
	AccelRange AccelRange
	GyroRange  GyroRange
	AccelODR   byte
	GyroODR    byte
}

// DefaultOpts is the recommended start-up configuration: both subsystems in
// normal mode, ±4g, ±2000 °/s, 100 Hz output data rate.
var DefaultOpts = Opts{
	Addr:       DefaultAddr,
	AccelMode:  AccelNormal,
	GyroMode:   GyroNormal,
	AccelRange: AccelRange4G,
	GyroRange:  GyroRange2000,
	AccelODR:   ODR100,
	GyroODR:    ODR100,
}

// Dev represents a BMI160 on an I2C bus.
type Dev struct {
	dev i2c.Dev

	// Divisors for the currently configured ranges, kept in sync by the
	// range setters so conversions do not need an extra bus read.
	accelLSBPerG  int
	gyroLSBPerDps float64
}

// New verifies the chip identity, soft-resets the device and applies opts.
// A nil opts selects DefaultOpts.
//
// If the identity register does not read 0xD1 the device is left untouched
// and ErrDeviceNotFound is returned.
func New(bus i2c.Bus, opts *Opts) (*Dev, error) {
	if opts == nil {
		o := DefaultOpts
		opts = &o
	}
	addr := opts.Addr
	if addr == 0 {
		addr = DefaultAddr
	}

	d := &Dev{dev: i2c.Dev{Bus: bus, Addr: addr}}

	id, err := d.readReg(regChipID)
	if err != nil {
		return nil, err
	}
	if id != chipID {
		return nil, fmt.Errorf("%w: got 0x%02X at address 0x%02X", ErrDeviceNotFound, id, addr)
	}

	if err := d.SoftReset(); err != nil {
		return nil, err
	}

	if err := d.SetAccelPowerMode(opts.AccelMode); err != nil {
		return nil, err
	}
	if err := d.SetGyroPowerMode(opts.GyroMode); err != nil {
		return nil, err
	}
	if err := d.SetAccelRange(opts.AccelRange); err != nil {
		return nil, err
	}
	if err := d.SetGyroRange(opts.GyroRange); err != nil {
		return nil, err
	}
	if err := d.SetAccelDataRate(opts.AccelODR); err != nil {
		return nil, err
	}
	if err := d.SetGyroDataRate(opts.GyroODR); err != nil {
		return nil, err
	}
	return d, nil
}

// SoftReset restores all registers to their defaults and waits out the
// mandatory settle time. The configured ranges revert to the device
// defaults, so callers normally reconfigure afterwards.
func (d *Dev) SoftReset() error {
	if err := d.writeReg(regCmd, cmdSoftReset); err != nil {
		return err
	}
	time.Sleep(softResetSettle)
	// Device defaults after reset: ±2g, ±2000 °/s.
	d.accelLSBPerG = accelLSBPerG[AccelRange2G]
	d.gyroLSBPerDps = gyroLSBPerDps[GyroRange2000]
	return nil
}

// SetAccelPowerMode requests an accelerometer power state transition and
// blocks for the mode-switch settle time.
func (d *Dev) SetAccelPowerMode(mode AccelPowerMode) error {
	switch mode {
	case AccelSuspend, AccelNormal, AccelLowPower:
	default:
		return fmt.Errorf("%w: accel power mode 0x%02X", ErrInvalidValue, byte(mode))
	}
	if err := d.writeReg(regCmd, byte(mode)); err != nil {
		return err
	}
	time.Sleep(powerModeSettle)
	return nil
}

// SetGyroPowerMode requests a gyroscope power state transition and blocks
// for the mode-switch settle time.
func (d *Dev) SetGyroPowerMode(mode GyroPowerMode) error {
	switch mode {
	case GyroSuspend, GyroNormal, GyroFastStartUp:
	default:
		return fmt.Errorf("%w: gyro power mode 0x%02X", ErrInvalidValue, byte(mode))
	}
	if err := d.writeReg(regCmd, byte(mode)); err != nil {
		return err
	}
	time.Sleep(powerModeSettle)
	return nil
}

// PowerStatus holds the decoded PMU_STATUS register.
//
// Mag is reported for completeness but this driver never controls it; with
// no magnetometer wired to the part it stays in suspend.
type PowerStatus struct {
	Accel PowerState
	Gyro  PowerState
	Mag   PowerState
}

// PowerModeStatus reads PMU_STATUS and decodes the three 2-bit sub-fields.
func (d *Dev) PowerModeStatus() (PowerStatus, error) {
	b, err := d.readReg(regPMUStatus)
	if err != nil {
		return PowerStatus{}, err
	}
	return PowerStatus{
		Accel: decodeAccelPMU(decodeField(b, fieldPMUAccel)),
		Gyro:  decodeGyroPMU(decodeField(b, fieldPMUGyro)),
		Mag:   decodeMagPMU(decodeField(b, fieldPMUMag)),
	}, nil
}

func decodeAccelPMU(v byte) PowerState {
	switch v {
	case 0b00:
		return PowerSuspend
	case 0b01:
		return PowerNormal
	case 0b10:
		return PowerLowPower
	}
	return PowerUnknown
}

func decodeGyroPMU(v byte) PowerState {
	switch v {
	case 0b00:
		return PowerSuspend
	case 0b01:
		return PowerNormal
	case 0b11:
		return PowerFastStartUp
	}
	return PowerUnknown
}

func decodeMagPMU(v byte) PowerState {
	switch v {
	case 0b00:
		return PowerSuspend
	case 0b01:
		return PowerNormal
	case 0b10:
		return PowerLowPower
	}
	return PowerUnknown
}

// AccelUndersample reads ACC_CONF acc_us (1 = undersampled, low-power use).
func (d *Dev) AccelUndersample() (byte, error) {
	return d.readField(fieldAccelUS)
}

// SetAccelUndersample writes ACC_CONF acc_us. Legal values are
// NoUndersample (0) and Undersample (1).
func (d *Dev) SetAccelUndersample(v byte) error {
	if v > 1 {
		return fmt.Errorf("%w: acc_us %d", ErrInvalidValue, v)
	}
	return d.writeField(fieldAccelUS, v)
}

// AccelBandwidthParam reads ACC_CONF acc_bwp.
func (d *Dev) AccelBandwidthParam() (byte, error) {
	return d.readField(fieldAccelBWP)
}

// SetAccelBandwidthParam writes ACC_CONF acc_bwp. Legal values are
// BWPFilter (0) and BWPAveraging (1).
func (d *Dev) SetAccelBandwidthParam(v byte) error {
	if v > 1 {
		return fmt.Errorf("%w: acc_bwp %d", ErrInvalidValue, v)
	}
	return d.writeField(fieldAccelBWP, v)
}

// AccelDataRate reads the 4-bit ACC_CONF acc_odr code.
func (d *Dev) AccelDataRate() (byte, error) {
	return d.readField(fieldAccelODR)
}

// SetAccelDataRate writes ACC_CONF acc_odr. Legal codes are
// ODR25_32..ODR1600; the rate in Hz is 100/2^(8-code).
func (d *Dev) SetAccelDataRate(code byte) error {
	if code < odrMin || code > odrMax {
		return fmt.Errorf("%w: accel ODR code 0b%04b", ErrInvalidValue, code)
	}
	return d.writeField(fieldAccelODR, code)
}

// AccelRangeValue reads the ACC_RANGE encoding.
func (d *Dev) AccelRangeValue() (AccelRange, error) {
	v, err := d.readField(fieldAccelRange)
	return AccelRange(v), err
}

// SetAccelRange writes ACC_RANGE. Only the four datasheet encodings are
// legal; anything else fails before touching the bus.
func (d *Dev) SetAccelRange(r AccelRange) error {
	lsb, ok := accelLSBPerG[r]
	if !ok {
		return fmt.Errorf("%w: accel range 0b%04b", ErrInvalidValue, byte(r))
	}
	if err := d.writeField(fieldAccelRange, byte(r)); err != nil {
		return err
	}
	d.accelLSBPerG = lsb
	return nil
}

// GyroBandwidthParam reads GYR_CONF gyr_bwp.
func (d *Dev) GyroBandwidthParam() (byte, error) {
	return d.readField(fieldGyroBWP)
}

// SetGyroBandwidthParam writes GYR_CONF gyr_bwp. Legal values are
// GyroBWPOSR4 (0b00), GyroBWPOSR2 (0b01) and GyroBWPNormal (0b10).
func (d *Dev) SetGyroBandwidthParam(v byte) error {
	switch v {
	case GyroBWPOSR4, GyroBWPOSR2, GyroBWPNormal:
	default:
		return fmt.Errorf("%w: gyr_bwp 0b%02b", ErrInvalidValue, v)
	}
	return d.writeField(fieldGyroBWP, v)
}

// GyroDataRate reads the 4-bit GYR_CONF gyr_odr code.
func (d *Dev) GyroDataRate() (byte, error) {
	return d.readField(fieldGyroODR)
}

// SetGyroDataRate writes GYR_CONF gyr_odr. Legal codes are
// ODR25_32..ODR1600. Codes below ODR25 are illegal for the gyro but only
// the device's error register reports that; they are not rejected here.
func (d *Dev) SetGyroDataRate(code byte) error {
	if code < odrMin || code > odrMax {
		return fmt.Errorf("%w: gyro ODR code 0b%04b", ErrInvalidValue, code)
	}
	return d.writeField(fieldGyroODR, code)
}

// GyroRangeValue reads the GYR_RANGE encoding.
func (d *Dev) GyroRangeValue() (GyroRange, error) {
	v, err := d.readField(fieldGyroRange)
	return GyroRange(v), err
}

// SetGyroRange writes GYR_RANGE. Only encodings 0..4 are legal.
func (d *Dev) SetGyroRange(r GyroRange) error {
	lsb, ok := gyroLSBPerDps[r]
	if !ok {
		return fmt.Errorf("%w: gyro range %d", ErrInvalidValue, byte(r))
	}
	if err := d.writeField(fieldGyroRange, byte(r)); err != nil {
		return err
	}
	d.gyroLSBPerDps = lsb
	return nil
}

// AccelerationRaw reads the three accelerometer axes as signed 16-bit counts.
func (d *Dev) AccelerationRaw() (x, y, z int16, err error) {
	return d.readAxes(regAccelData)
}

// Acceleration reads the three accelerometer axes in g, scaled by the
// currently configured range.
func (d *Dev) Acceleration() (x, y, z float64, err error) {
	rx, ry, rz, err := d.readAxes(regAccelData)
	if err != nil {
		return 0, 0, 0, err
	}
	div := float64(d.accelLSBPerG)
	return float64(rx) / div, float64(ry) / div, float64(rz) / div, nil
}

// GyroRaw reads the three gyroscope axes as signed 16-bit counts.
func (d *Dev) GyroRaw() (x, y, z int16, err error) {
	return d.readAxes(regGyroData)
}

// Gyro reads the three gyroscope axes in °/s, scaled by the currently
// configured range.
func (d *Dev) Gyro() (x, y, z float64, err error) {
	rx, ry, rz, err := d.readAxes(regGyroData)
	if err != nil {
		return 0, 0, 0, err
	}
	return float64(rx) / d.gyroLSBPerDps, float64(ry) / d.gyroLSBPerDps, float64(rz) / d.gyroLSBPerDps, nil
}

// Temperature reads the die temperature in °C. The value tracks the gyro
// sample timing and is stale if both subsystems are suspended.
func (d *Dev) Temperature() (float64, error) {
	buf := make([]byte, 2)
	if err := d.readRegBlock(regTemp, buf); err != nil {
		return 0, err
	}
	raw := int16(uint16(buf[1])<<8 | uint16(buf[0]))
	return float64(raw)/512.0 + 23.0, nil
}

// ErrorReason is the decoded err_code field of the ERR register.
type ErrorReason uint8

const (
	ErrCodeNone        ErrorReason = 0
	ErrCodeGeneric1    ErrorReason = 1
	ErrCodeGeneric2    ErrorReason = 2
	ErrCodeLPIFilter   ErrorReason = 3 // low-power mode with prefiltered data
	ErrCodeODRMismatch ErrorReason = 6 // ODRs of enabled sensors do not match
	ErrCodePrefiltered ErrorReason = 7 // prefiltered data read in suspend
)

func (r ErrorReason) String() string {
	switch r {
	case ErrCodeNone:
		return "none"
	case ErrCodeGeneric1, ErrCodeGeneric2:
		return "generic fault"
	case ErrCodeLPIFilter:
		return "prefiltered data in low-power mode"
	case ErrCodeODRMismatch:
		return "ODR mismatch between enabled sensors"
	case ErrCodePrefiltered:
		return "prefiltered data read in suspend"
	}
	return "undocumented"
}

// ErrorStatus holds one decoded read of the ERR register.
type ErrorStatus struct {
	DroppedCommand bool        `json:"dropped_command"`
	Code           ErrorReason `json:"code"`
	Fatal          bool        `json:"fatal"`
}

// ErrorStatus reads and decodes the ERR register.
//
// This is a consuming read: the device latches the error flags and clears
// them on read, so calling it changes device state. The fatal flag clears
// only on a full power-on reset. Codes 4, 5 and 8..15 are not defined by
// the datasheet and fail with ErrUnknownErrorCode.
func (d *Dev) ErrorStatus() (ErrorStatus, error) {
	b, err := d.readReg(regErr)
	if err != nil {
		return ErrorStatus{}, err
	}
	st := ErrorStatus{
		DroppedCommand: decodeField(b, fieldErrDropCmd) == 1,
		Code:           ErrorReason(decodeField(b, fieldErrCode)),
		Fatal:          decodeField(b, fieldErrFatal) == 1,
	}
	switch st.Code {
	case ErrCodeNone, ErrCodeGeneric1, ErrCodeGeneric2, ErrCodeLPIFilter, ErrCodeODRMismatch, ErrCodePrefiltered:
	default:
		return st, fmt.Errorf("%w: %d", ErrUnknownErrorCode, uint8(st.Code))
	}
	return st, nil
}

// ReadRegister exposes a raw register read for diagnostics tooling.
func (d *Dev) ReadRegister(reg byte) (byte, error) {
	return d.readReg(reg)
}

// WriteRegister exposes a raw register write for diagnostics tooling.
// It bypasses all validation; configuration set this way is not reflected
// in the cached conversion divisors.
func (d *Dev) WriteRegister(reg, value byte) error {
	return d.writeReg(reg, value)
}

// readAxes reads a 6-byte X/Y/Z block, LSB first per axis, and sign-extends
// each axis to int16.
func (d *Dev) readAxes(reg byte) (x, y, z int16, err error) {
	buf := make([]byte, 6)
	if err := d.readRegBlock(reg, buf); err != nil {
		return 0, 0, 0, err
	}
	x = int16(uint16(buf[1])<<8 | uint16(buf[0]))
	y = int16(uint16(buf[3])<<8 | uint16(buf[2]))
	z = int16(uint16(buf[5])<<8 | uint16(buf[4]))
	return x, y, z, nil
}

func (d *Dev) readField(f FieldSpec) (byte, error) {
	b, err := d.readReg(f.Reg)
	if err != nil {
		return 0, err
	}
	return decodeField(b, f), nil
}

// writeField performs the read-modify-write cycle: read the containing
// register, splice in the field, write back. Sibling fields survive.
func (d *Dev) writeField(f FieldSpec, value byte) error {
	b, err := d.readReg(f.Reg)
	if err != nil {
		return err
	}
	return d.writeReg(f.Reg, encodeField(b, f, value))
}

func (d *Dev) readReg(reg byte) (byte, error) {
	buf := make([]byte, 1)
	if err := d.readRegBlock(reg, buf); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func (d *Dev) readRegBlock(reg byte, out []byte) error {
	return d.dev.Tx([]byte{reg}, out)
}

func (d *Dev) writeReg(reg byte, val byte) error {
	return d.dev.Tx([]byte{reg, val}, nil)
}

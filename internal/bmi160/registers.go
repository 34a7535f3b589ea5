// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package bmi160

// I2C register map for the Bosch BMI160.
const (
	regChipID     = 0x00
	regErr        = 0x02
	regPMUStatus  = 0x03
	regGyroData   = 0x0C // X LSB, X MSB, Y LSB, Y MSB, Z LSB, Z MSB
	regAccelData  = 0x12 // X LSB, X MSB, Y LSB, Y MSB, Z LSB, Z MSB
	regTemp       = 0x20 // LSB, MSB
	regAccelConf  = 0x40
	regAccelRange = 0x41
	regGyroConf   = 0x42
	regGyroRange  = 0x43
	regCmd        = 0x7E
)

// Default I2C address (SDO pulled high; 0x68 with SDO low).
const DefaultAddr = 0x69

// chipID is the value REG 0x00 must read back for a BMI160.
const chipID = 0xD1

// CMD register command bytes.
const (
	cmdSoftReset = 0xB6
)

// AccelPowerMode selects the accelerometer power state. The values are the
// CMD register command bytes that request the transition.
type AccelPowerMode byte

const (
	AccelSuspend  AccelPowerMode = 0x10
	AccelNormal   AccelPowerMode = 0x11
	AccelLowPower AccelPowerMode = 0x12
)

// GyroPowerMode selects the gyroscope power state, encoded as CMD bytes.
type GyroPowerMode byte

const (
	GyroSuspend     GyroPowerMode = 0x14
	GyroNormal      GyroPowerMode = 0x15
	GyroFastStartUp GyroPowerMode = 0x17
)

// PowerState is a decoded PMU_STATUS sub-field.
type PowerState uint8

const (
	PowerSuspend PowerState = iota
	PowerNormal
	PowerLowPower
	PowerFastStartUp
	PowerUnknown
)

func (s PowerState) String() string {
	switch s {
	case PowerSuspend:
		return "suspend"
	case PowerNormal:
		return "normal"
	case PowerLowPower:
		return "low-power"
	case PowerFastStartUp:
		return "fast-start-up"
	}
	return "unknown"
}

// AccelRange is the ACC_RANGE register encoding of the full-scale range.
type AccelRange byte

const (
	AccelRange2G  AccelRange = 0b0011
	AccelRange4G  AccelRange = 0b0101
	AccelRange8G  AccelRange = 0b1000
	AccelRange16G AccelRange = 0b1100
)

// accelLSBPerG maps every legal ACC_RANGE encoding to its LSB/g divisor.
var accelLSBPerG = map[AccelRange]int{
	AccelRange2G:  16384,
	AccelRange4G:  8192,
	AccelRange8G:  4096,
	AccelRange16G: 2048,
}

// GyroRange is the GYR_RANGE register encoding of the full-scale range.
type GyroRange byte

const (
	GyroRange2000 GyroRange = 0 // ±2000 °/s
	GyroRange1000 GyroRange = 1
	GyroRange500  GyroRange = 2
	GyroRange250  GyroRange = 3
	GyroRange125  GyroRange = 4
)

// gyroLSBPerDps maps every legal GYR_RANGE encoding to its LSB/(°/s) divisor.
var gyroLSBPerDps = map[GyroRange]float64{
	GyroRange2000: 16.4,
	GyroRange1000: 32.8,
	GyroRange500:  65.6,
	GyroRange250:  131.2,
	GyroRange125:  262.4,
}

// Output data rate encodings, shared by ACC_CONF and GYR_CONF bits 3:0.
// rate = 100 / 2^(8-code) Hz. Codes outside odrMin..odrMax are illegal and
// rejected locally; the sub-25 Hz codes are additionally illegal for the
// gyro but only the device's error register reports that.
const (
	ODR25_32 = 0b0001 // 25/32 Hz
	ODR25_16 = 0b0010
	ODR25_8  = 0b0011
	ODR25_4  = 0b0100
	ODR25_2  = 0b0101
	ODR25    = 0b0110
	ODR50    = 0b0111
	ODR100   = 0b1000
	ODR200   = 0b1001
	ODR400   = 0b1010
	ODR800   = 0b1011
	ODR1600  = 0b1100

	odrMin = ODR25_32
	odrMax = ODR1600
)

// DataRateHz returns the output data rate in Hz for a 4-bit ODR code.
func DataRateHz(code byte) float64 {
	if code >= 8 {
		return 100.0 * float64(int(1)<<(uint(code)-8))
	}
	return 100.0 / float64(int(1)<<(8-uint(code)))
}

// ACC_CONF acc_us values.
const (
	NoUndersample = 0
	Undersample   = 1
)

// Bandwidth parameter values. For the accelerometer acc_bwp selects filter
// (0) or averaging (1); for the gyro gyr_bwp selects the oversampling mode.
const (
	BWPFilter    = 0 // accel
	BWPAveraging = 1 // accel

	GyroBWPOSR4   = 0b00
	GyroBWPOSR2   = 0b01
	GyroBWPNormal = 0b10
)

// FieldSpec describes a sub-byte configuration field.
type FieldSpec struct {
	Reg    byte
	Width  uint
	Offset uint
}

// Configuration fields of ACC_CONF/ACC_RANGE/GYR_CONF/GYR_RANGE, plus the
// PMU_STATUS read-only fields. One table so every decode shares the same
// bit positions.
var (
	fieldAccelUS    = FieldSpec{regAccelConf, 1, 7}
	fieldAccelBWP   = FieldSpec{regAccelConf, 1, 6}
	fieldAccelODR   = FieldSpec{regAccelConf, 4, 0}
	fieldAccelRange = FieldSpec{regAccelRange, 4, 0}
	fieldGyroBWP    = FieldSpec{regGyroConf, 2, 4}
	fieldGyroODR    = FieldSpec{regGyroConf, 4, 0}
	fieldGyroRange  = FieldSpec{regGyroRange, 3, 0}

	fieldPMUAccel = FieldSpec{regPMUStatus, 2, 4}
	fieldPMUGyro  = FieldSpec{regPMUStatus, 2, 2}
	fieldPMUMag   = FieldSpec{regPMUStatus, 2, 0}

	fieldErrDropCmd = FieldSpec{regErr, 1, 6}
	fieldErrCode    = FieldSpec{regErr, 4, 1}
	fieldErrFatal   = FieldSpec{regErr, 1, 0}
)

// decodeField extracts a field value from its register byte.
func decodeField(b byte, f FieldSpec) byte {
	return (b >> f.Offset) & byte(1<<f.Width-1)
}

// encodeField clears the field's bit span in b and ORs in value, leaving
// sibling fields untouched.
func encodeField(b byte, f FieldSpec, value byte) byte {
	mask := byte(1<<f.Width-1) << f.Offset
	return b&^mask | value<<f.Offset&mask
}

// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

// BitField describes one named bit span inside a register.
type BitField struct {
	Bits        string `json:"bits"` // e.g. "5:4" or "0"
	Name        string `json:"name"`
	Description string `json:"description"`
	Values      string `json:"values,omitempty"`
}

// RegisterInfo holds display metadata for one register, used by the
// register debug tooling.
type RegisterInfo struct {
	Address     string     `json:"address"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Access      string     `json:"access"` // "R", "W", "RW"
	Default     string     `json:"default,omitempty"`
	BitFields   []BitField `json:"bit_fields,omitempty"`
}

// GetBMI160RegisterMap returns metadata for the BMI160 registers this
// project touches. Register names, access types, and bit field definitions
// follow the Bosch datasheet.
func GetBMI160RegisterMap() []RegisterInfo {
	return []RegisterInfo{
		// Identification and Status
		{Address: "0x00", Name: "CHIP_ID", Description: "Device ID (should be 0xD1)", Access: "R", Default: "0xD1"},
		{Address: "0x02", Name: "ERR_REG", Description: "Error flags, latched, cleared on read", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7", Name: "mag_drdy_err", Description: "Magnetometer data ready error", Values: "unused on BMI160"},
				{Bits: "6", Name: "drop_cmd_err", Description: "Command dropped (CMD written while busy)", Values: "0=OK, 1=dropped"},
				{Bits: "4:1", Name: "err_code", Description: "Error code", Values: "0=none, 1/2=generic, 3=LPM prefiltered, 6=ODR mismatch, 7=prefiltered in suspend; 4,5 undefined"},
				{Bits: "0", Name: "fatal_err", Description: "Fatal chip error, cleared only by power-on reset", Values: "0=OK, 1=fatal"},
			}},
		{Address: "0x03", Name: "PMU_STATUS", Description: "Power mode of accel, gyro and mag interface", Access: "R", Default: "0x00",
			BitFields: []BitField{
				{Bits: "5:4", Name: "acc_pmu_status", Description: "Accelerometer power mode", Values: "0=Suspend, 1=Normal, 2=Low Power"},
				{Bits: "3:2", Name: "gyr_pmu_status", Description: "Gyroscope power mode", Values: "0=Suspend, 1=Normal, 3=Fast Start-Up"},
				{Bits: "1:0", Name: "mag_pmu_status", Description: "Magnetometer interface power mode", Values: "always Suspend on this part"},
			}},

		// Sensor Data Registers (Read-Only, LSB first)
		{Address: "0x0C", Name: "GYR_X_L", Description: "Gyroscope X-Axis Low Byte", Access: "R"},
		{Address: "0x0D", Name: "GYR_X_H", Description: "Gyroscope X-Axis High Byte", Access: "R"},
		{Address: "0x0E", Name: "GYR_Y_L", Description: "Gyroscope Y-Axis Low Byte", Access: "R"},
		{Address: "0x0F", Name: "GYR_Y_H", Description: "Gyroscope Y-Axis High Byte", Access: "R"},
		{Address: "0x10", Name: "GYR_Z_L", Description: "Gyroscope Z-Axis Low Byte", Access: "R"},
		{Address: "0x11", Name: "GYR_Z_H", Description: "Gyroscope Z-Axis High Byte", Access: "R"},
		{Address: "0x12", Name: "ACC_X_L", Description: "Accelerometer X-Axis Low Byte", Access: "R"},
		{Address: "0x13", Name: "ACC_X_H", Description: "Accelerometer X-Axis High Byte", Access: "R"},
		{Address: "0x14", Name: "ACC_Y_L", Description: "Accelerometer Y-Axis Low Byte", Access: "R"},
		{Address: "0x15", Name: "ACC_Y_H", Description: "Accelerometer Y-Axis High Byte", Access: "R"},
		{Address: "0x16", Name: "ACC_Z_L", Description: "Accelerometer Z-Axis Low Byte", Access: "R"},
		{Address: "0x17", Name: "ACC_Z_H", Description: "Accelerometer Z-Axis High Byte", Access: "R"},
		{Address: "0x20", Name: "TEMPERATURE_0", Description: "Temperature Low Byte", Access: "R"},
		{Address: "0x21", Name: "TEMPERATURE_1", Description: "Temperature High Byte (°C = raw/2⁹ + 23)", Access: "R"},

		// Configuration Registers
		{Address: "0x40", Name: "ACC_CONF", Description: "Accelerometer rate, bandwidth, read mode", Access: "RW", Default: "0x28",
			BitFields: []BitField{
				{Bits: "7", Name: "acc_us", Description: "Undersampling (low power mode)", Values: "0=No undersampling, 1=Undersampling"},
				{Bits: "6:4", Name: "acc_bwp", Description: "Bandwidth parameter", Values: "bit 6: 0=Filter, 1=Averaging"},
				{Bits: "3:0", Name: "acc_odr", Description: "Output data rate = 100/2^(8-val) Hz", Values: "1=25/32Hz ... 8=100Hz ... 12=1600Hz"},
			}},
		{Address: "0x41", Name: "ACC_RANGE", Description: "Accelerometer full scale range", Access: "RW", Default: "0x03",
			BitFields: []BitField{
				{Bits: "3:0", Name: "acc_range", Description: "Full scale range", Values: "3=±2g, 5=±4g, 8=±8g, 12=±16g"},
			}},
		{Address: "0x42", Name: "GYR_CONF", Description: "Gyroscope rate and bandwidth", Access: "RW", Default: "0x28",
			BitFields: []BitField{
				{Bits: "5:4", Name: "gyr_bwp", Description: "Bandwidth parameter", Values: "0=OSR4, 1=OSR2, 2=Normal"},
				{Bits: "3:0", Name: "gyr_odr", Description: "Output data rate = 100/2^(8-val) Hz", Values: "6=25Hz ... 12=1600Hz; below 6 illegal"},
			}},
		{Address: "0x43", Name: "GYR_RANGE", Description: "Gyroscope full scale range", Access: "RW", Default: "0x00",
			BitFields: []BitField{
				{Bits: "2:0", Name: "gyr_range", Description: "Full scale range", Values: "0=±2000°/s, 1=±1000°/s, 2=±500°/s, 3=±250°/s, 4=±125°/s"},
			}},

		// Command Register
		{Address: "0x7E", Name: "CMD", Description: "Command register (power modes, reset)", Access: "W", Default: "0x00",
			BitFields: []BitField{
				{Bits: "7:0", Name: "cmd", Description: "Command byte", Values: "0xB6=soft reset; 0x10/0x11/0x12=accel suspend/normal/low power; 0x14/0x15/0x17=gyro suspend/normal/fast start-up"},
			}},
	}
}

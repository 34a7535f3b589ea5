// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sensors

import (
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/relabs-tech/bmi160_computer/internal/bmi160"
	"github.com/relabs-tech/bmi160_computer/internal/config"
	"github.com/relabs-tech/bmi160_computer/internal/imu"
)

// IMUManager owns the single BMI160 on the I2C bus and serializes access to
// it. The driver itself is unsynchronized; every bus transaction goes
// through the manager's mutex.
type IMUManager struct {
	mu   sync.Mutex
	bus  i2c.BusCloser
	dev  *bmi160.Dev
	init bool
}

var (
	imuManager     *IMUManager
	imuManagerOnce sync.Once
)

// GetIMUManager returns the process-wide IMU manager.
func GetIMUManager() *IMUManager {
	imuManagerOnce.Do(func() {
		imuManager = &IMUManager{}
	})
	return imuManager
}

// Init opens the I2C bus and brings up the BMI160 with the configured
// ranges, data rates and power modes.
func (m *IMUManager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.init {
		return nil
	}

	cfg := config.Get()

	if _, err := host.Init(); err != nil {
		return fmt.Errorf("IMU: periph host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.IMUI2CBus)
	if err != nil {
		return fmt.Errorf("IMU: i2c open (%q): %w", cfg.IMUI2CBus, err)
	}

	opts := bmi160.Opts{
		Addr:       cfg.IMUI2CAddr,
		AccelMode:  bmi160.AccelNormal,
		GyroMode:   bmi160.GyroNormal,
		AccelRange: bmi160.AccelRange(cfg.IMUAccelRange),
		GyroRange:  bmi160.GyroRange(cfg.IMUGyroRange),
		AccelODR:   cfg.IMUAccelODR,
		GyroODR:    cfg.IMUGyroODR,
	}
	dev, err := bmi160.New(bus, &opts)
	if err != nil {
		bus.Close()
		return fmt.Errorf("IMU: device creation: %w", err)
	}

	if err := dev.SetAccelUndersample(cfg.IMUAccelUS); err != nil {
		bus.Close()
		return fmt.Errorf("IMU: set acc_us: %w", err)
	}
	if err := dev.SetAccelBandwidthParam(cfg.IMUAccelBWP); err != nil {
		bus.Close()
		return fmt.Errorf("IMU: set acc_bwp: %w", err)
	}
	if err := dev.SetGyroBandwidthParam(cfg.IMUGyroBWP); err != nil {
		bus.Close()
		return fmt.Errorf("IMU: set gyr_bwp: %w", err)
	}

	log.Printf("IMU: accelerometer range code %d (±%dg), ODR code %d (%.2f Hz)",
		cfg.IMUAccelRange, map[byte]int{3: 2, 5: 4, 8: 8, 12: 16}[cfg.IMUAccelRange],
		cfg.IMUAccelODR, bmi160.DataRateHz(cfg.IMUAccelODR))
	log.Printf("IMU: gyroscope range code %d (±%d°/s), ODR code %d (%.2f Hz)",
		cfg.IMUGyroRange, []int{2000, 1000, 500, 250, 125}[cfg.IMUGyroRange],
		cfg.IMUGyroODR, bmi160.DataRateHz(cfg.IMUGyroODR))

	// Report anything the device latched during bring-up. This read clears
	// the latched flags.
	if st, err := dev.ErrorStatus(); err != nil {
		log.Printf("IMU: warning: error register decode: %v", err)
	} else if st.Fatal || st.DroppedCommand || st.Code != bmi160.ErrCodeNone {
		log.Printf("IMU: warning: error register after bring-up: %+v", st)
	}

	m.bus = bus
	m.dev = dev
	m.init = true
	return nil
}

// IsAvailable reports whether Init completed successfully.
func (m *IMUManager) IsAvailable() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.init
}

// ReadSample reads one scaled accel+gyro+temperature sample.
func (m *IMUManager) ReadSample() (imu.Sample, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return imu.Sample{}, fmt.Errorf("IMU: not initialized")
	}

	ax, ay, az, err := m.dev.Acceleration()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU accel: %w", err)
	}
	gx, gy, gz, err := m.dev.Gyro()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU gyro: %w", err)
	}
	temp, err := m.dev.Temperature()
	if err != nil {
		return imu.Sample{}, fmt.Errorf("IMU temp: %w", err)
	}

	return imu.Sample{
		Ax: ax, Ay: ay, Az: az,
		Gx: gx, Gy: gy, Gz: gz,
		Temp: temp,
	}, nil
}

// ReadRaw reads one unscaled accel+gyro sample in sensor counts.
func (m *IMUManager) ReadRaw() (imu.Raw, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return imu.Raw{}, fmt.Errorf("IMU: not initialized")
	}

	ax, ay, az, err := m.dev.AccelerationRaw()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU accel: %w", err)
	}
	gx, gy, gz, err := m.dev.GyroRaw()
	if err != nil {
		return imu.Raw{}, fmt.Errorf("IMU gyro: %w", err)
	}
	return imu.Raw{Ax: ax, Ay: ay, Az: az, Gx: gx, Gy: gy, Gz: gz}, nil
}

// PowerModeStatus decodes the PMU_STATUS register.
func (m *IMUManager) PowerModeStatus() (bmi160.PowerStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return bmi160.PowerStatus{}, fmt.Errorf("IMU: not initialized")
	}
	return m.dev.PowerModeStatus()
}

// ErrorStatus reads and decodes the device error register. Reading clears
// the latched flags, so callers should log what they get.
func (m *IMUManager) ErrorStatus() (bmi160.ErrorStatus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return bmi160.ErrorStatus{}, fmt.Errorf("IMU: not initialized")
	}
	return m.dev.ErrorStatus()
}

// ReadRegister reads one raw register byte, for the debug tooling.
func (m *IMUManager) ReadRegister(reg byte) (byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return 0, fmt.Errorf("IMU: not initialized")
	}
	return m.dev.ReadRegister(reg)
}

// ReadAllRegisters reads every register named in the BMI160 register map
// and returns address → value. ERR_REG is among them; its latched flags
// clear on read.
func (m *IMUManager) ReadAllRegisters() (map[byte]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return nil, fmt.Errorf("IMU: not initialized")
	}

	out := make(map[byte]byte)
	for _, ri := range GetBMI160RegisterMap() {
		if ri.Access == "W" {
			continue // write-only, reads back zero
		}
		addr, err := strconv.ParseUint(strings.TrimPrefix(ri.Address, "0x"), 16, 8)
		if err != nil {
			return nil, fmt.Errorf("IMU: bad register map address %q: %w", ri.Address, err)
		}
		v, err := m.dev.ReadRegister(byte(addr))
		if err != nil {
			return nil, fmt.Errorf("IMU: read %s: %w", ri.Address, err)
		}
		out[byte(addr)] = v
	}
	return out, nil
}

// WriteRegister writes one raw register byte, for the debug tooling.
// No validation is applied.
func (m *IMUManager) WriteRegister(reg, value byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.init {
		return fmt.Errorf("IMU: not initialized")
	}
	return m.dev.WriteRegister(reg, value)
}

package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// MQTT
	MQTTBroker           string
	MQTTClientIDProducer string
	MQTTClientIDConsole  string
	MQTTClientIDDisplay  string

	// Topics
	TopicIMU  string
	TopicPose string
	TopicTemp string

	// IMU Hardware
	IMUI2CBus  string // i2creg bus name, empty selects the first available bus
	IMUI2CAddr uint16 // 0x69 with SDO high (default), 0x68 with SDO low

	// BMI160 register encodings, validated against the datasheet sets.
	// Accelerometer range: 3=±2g, 5=±4g, 8=±8g, 12=±16g
	IMUAccelRange byte
	// Gyroscope range: 0=±2000°/s, 1=±1000°/s, 2=±500°/s, 3=±250°/s, 4=±125°/s
	IMUGyroRange byte
	// Output data rate codes 1-12, rate = 100/2^(8-code) Hz
	IMUAccelODR byte
	IMUGyroODR  byte
	// Accelerometer undersampling (0/1) and bandwidth parameter (0=filter, 1=averaging)
	IMUAccelUS  byte
	IMUAccelBWP byte
	// Gyro bandwidth parameter: 0=OSR4, 1=OSR2, 2=normal
	IMUGyroBWP byte

	// Timing
	IMUSampleInterval  int // milliseconds
	ConsoleLogInterval int // milliseconds

	// Register debug web tool
	RegisterDebugPort int

	// Display
	DisplayUpdateInterval int // milliseconds
}

// Package-level unexported variables for singleton pattern:
//   - globalConfig: unexported (lowercase) so other packages cannot access it directly.
//     This enforces encapsulation and prevents external code from modifying config without proper locking.
//     Has package-level scope (visible to all functions in this package, persists for program lifetime).
//   - configOnce: ensures InitGlobal() only runs once, even if called multiple times.
//   - configMu: RWMutex protects concurrent access. Write lock (Lock) for initialization,
//     read lock (RLock) for Get() allows multiple concurrent readers without blocking each other.
//
// External code must use InitGlobal() to set and Get() to read, ensuring thread safety.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := defaults()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Validate required fields
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// defaults returns a Config preloaded with the BMI160 start-up encodings a
// config file only needs to override.
func defaults() *Config {
	return &Config{
		IMUI2CAddr:    0x69,
		IMUAccelRange: 5, // ±4g
		IMUGyroRange:  0, // ±2000°/s
		IMUAccelODR:   8, // 100 Hz
		IMUGyroODR:    8, // 100 Hz
		IMUAccelBWP:   0, // filter
		IMUGyroBWP:    2, // normal

		RegisterDebugPort:     8080,
		DisplayUpdateInterval: 500,
	}
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_PRODUCER":
		c.MQTTClientIDProducer = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_DISPLAY":
		c.MQTTClientIDDisplay = value

	// Topics
	case "TOPIC_IMU":
		c.TopicIMU = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_TEMP":
		c.TopicTemp = value

	// IMU Hardware
	case "IMU_I2C_BUS":
		c.IMUI2CBus = value
	case "IMU_I2C_ADDR":
		addr, err := strconv.ParseUint(value, 0, 16)
		if err != nil {
			return fmt.Errorf("invalid IMU_I2C_ADDR %q: %w", value, err)
		}
		if addr != 0x68 && addr != 0x69 {
			return fmt.Errorf("IMU_I2C_ADDR must be 0x68 or 0x69, got 0x%02X", addr)
		}
		c.IMUI2CAddr = uint16(addr)

	// BMI160 configuration
	case "IMU_ACCEL_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_RANGE %q: %w", value, err)
		}
		switch rangeVal {
		case 3, 5, 8, 12:
		default:
			return fmt.Errorf("IMU_ACCEL_RANGE must be one of 3 (±2g), 5 (±4g), 8 (±8g), 12 (±16g), got %d", rangeVal)
		}
		c.IMUAccelRange = byte(rangeVal)
	case "IMU_GYRO_RANGE":
		rangeVal, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_RANGE %q: %w", value, err)
		}
		if rangeVal < 0 || rangeVal > 4 {
			return fmt.Errorf("IMU_GYRO_RANGE must be 0-4 (0=±2000°/s ... 4=±125°/s), got %d", rangeVal)
		}
		c.IMUGyroRange = byte(rangeVal)
	case "IMU_ACCEL_ODR":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_ODR %q: %w", value, err)
		}
		if val < 1 || val > 12 {
			return fmt.Errorf("IMU_ACCEL_ODR must be 1-12 (rate = 100/2^(8-code) Hz), got %d", val)
		}
		c.IMUAccelODR = byte(val)
	case "IMU_GYRO_ODR":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_ODR %q: %w", value, err)
		}
		if val < 1 || val > 12 {
			return fmt.Errorf("IMU_GYRO_ODR must be 1-12 (rate = 100/2^(8-code) Hz), got %d", val)
		}
		c.IMUGyroODR = byte(val)
	case "IMU_ACCEL_US":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_US %q: %w", value, err)
		}
		if val < 0 || val > 1 {
			return fmt.Errorf("IMU_ACCEL_US must be 0 or 1, got %d", val)
		}
		c.IMUAccelUS = byte(val)
	case "IMU_ACCEL_BWP":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_ACCEL_BWP %q: %w", value, err)
		}
		if val < 0 || val > 1 {
			return fmt.Errorf("IMU_ACCEL_BWP must be 0 (filter) or 1 (averaging), got %d", val)
		}
		c.IMUAccelBWP = byte(val)
	case "IMU_GYRO_BWP":
		val, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_GYRO_BWP %q: %w", value, err)
		}
		if val < 0 || val > 2 {
			return fmt.Errorf("IMU_GYRO_BWP must be 0 (OSR4), 1 (OSR2) or 2 (normal), got %d", val)
		}
		c.IMUGyroBWP = byte(val)

	// Timing
	case "IMU_SAMPLE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid IMU_SAMPLE_INTERVAL %q: %w", value, err)
		}
		c.IMUSampleInterval = interval
	case "CONSOLE_LOG_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CONSOLE_LOG_INTERVAL %q: %w", value, err)
		}
		c.ConsoleLogInterval = interval

	// Register debug web tool
	case "REGISTER_DEBUG_PORT":
		port, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid REGISTER_DEBUG_PORT %q: %w", value, err)
		}
		c.RegisterDebugPort = port

	// Display
	case "DISPLAY_UPDATE_INTERVAL":
		interval, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid DISPLAY_UPDATE_INTERVAL %q: %w", value, err)
		}
		c.DisplayUpdateInterval = interval

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	if c.TopicIMU == "" {
		return fmt.Errorf("TOPIC_IMU is required")
	}
	if c.TopicPose == "" {
		return fmt.Errorf("TOPIC_POSE is required")
	}
	if c.IMUSampleInterval == 0 {
		return fmt.Errorf("IMU_SAMPLE_INTERVAL is required")
	}
	if c.ConsoleLogInterval == 0 {
		return fmt.Errorf("CONSOLE_LOG_INTERVAL is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file.
// Uses sync.Once to ensure this only runs once, even if called multiple times.
// Acquires write lock (configMu.Lock) during initialization to prevent concurrent access.
// This is the only function that can set globalConfig.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance.
// InitGlobal must be called first, or this will return nil.
// Uses read lock (configMu.RLock) to allow multiple concurrent readers without blocking.
// This is thread-safe and efficient for concurrent access across goroutines.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}

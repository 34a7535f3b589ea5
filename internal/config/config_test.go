package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bmi160_config.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

const minimalConfig = `
# comment and blank lines are ignored

MQTT_BROKER=tcp://localhost:1883
TOPIC_IMU=bmi160/imu
TOPIC_POSE=bmi160/pose
IMU_SAMPLE_INTERVAL=100
CONSOLE_LOG_INTERVAL=1000
`

func TestLoadMinimal(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MQTTBroker != "tcp://localhost:1883" {
		t.Errorf("MQTTBroker = %q", cfg.MQTTBroker)
	}
	// Defaults survive when the file does not override them.
	if cfg.IMUI2CAddr != 0x69 {
		t.Errorf("IMUI2CAddr = 0x%02X, want 0x69", cfg.IMUI2CAddr)
	}
	if cfg.IMUAccelRange != 5 || cfg.IMUGyroRange != 0 {
		t.Errorf("ranges = %d/%d, want 5/0", cfg.IMUAccelRange, cfg.IMUGyroRange)
	}
	if cfg.IMUAccelODR != 8 || cfg.IMUGyroODR != 8 {
		t.Errorf("ODRs = %d/%d, want 8/8", cfg.IMUAccelODR, cfg.IMUGyroODR)
	}
}

func TestLoadOverrides(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`
IMU_I2C_ADDR=0x68
IMU_ACCEL_RANGE=12
IMU_GYRO_RANGE=4
IMU_ACCEL_ODR=12
IMU_GYRO_BWP=1
`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.IMUI2CAddr != 0x68 {
		t.Errorf("IMUI2CAddr = 0x%02X", cfg.IMUI2CAddr)
	}
	if cfg.IMUAccelRange != 12 || cfg.IMUGyroRange != 4 {
		t.Errorf("ranges = %d/%d", cfg.IMUAccelRange, cfg.IMUGyroRange)
	}
	if cfg.IMUAccelODR != 12 {
		t.Errorf("IMUAccelODR = %d", cfg.IMUAccelODR)
	}
	if cfg.IMUGyroBWP != 1 {
		t.Errorf("IMUGyroBWP = %d", cfg.IMUGyroBWP)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		line string
		want string
	}{
		{"IMU_ACCEL_RANGE=4", "IMU_ACCEL_RANGE"},
		{"IMU_GYRO_RANGE=5", "IMU_GYRO_RANGE"},
		{"IMU_ACCEL_ODR=0", "IMU_ACCEL_ODR"},
		{"IMU_GYRO_ODR=13", "IMU_GYRO_ODR"},
		{"IMU_I2C_ADDR=0x42", "IMU_I2C_ADDR"},
		{"IMU_GYRO_BWP=3", "IMU_GYRO_BWP"},
		{"NO_SUCH_KEY=1", "unknown config key"},
	}
	for _, tc := range cases {
		_, err := Load(writeConfig(t, minimalConfig+tc.line+"\n"))
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Errorf("%s: err = %v, want mention of %q", tc.line, err, tc.want)
		}
	}
}

func TestLoadRequiresBroker(t *testing.T) {
	_, err := Load(writeConfig(t, "TOPIC_IMU=x\nTOPIC_POSE=y\nIMU_SAMPLE_INTERVAL=100\nCONSOLE_LOG_INTERVAL=1000\n"))
	if err == nil || !strings.Contains(err.Error(), "MQTT_BROKER") {
		t.Errorf("err = %v, want MQTT_BROKER required", err)
	}
}

package orientation

import (
	"fmt"
	"time"

	"github.com/relabs-tech/bmi160_computer/internal/imu"
)

// imuSource adapts any IMU sample source into an orientation.Source,
// integrating the gyro yaw rate between calls.
type imuSource struct {
	src  imu.SampleSource
	prev Pose
	last time.Time
}

// NewIMUSource wraps an IMU sample source (normally the BMI160 manager)
// into an orientation source. Roll/pitch come from the accelerometer tilt;
// yaw is gyro-integrated and drifts without a magnetometer.
func NewIMUSource(src imu.SampleSource) Source {
	return &imuSource{src: src}
}

func (s *imuSource) Next() (Pose, error) {
	sample, err := s.src.ReadSample()
	if err != nil {
		return Pose{}, fmt.Errorf("orientation: %w", err)
	}

	now := time.Now()
	dt := 0.0
	if !s.last.IsZero() {
		dt = now.Sub(s.last).Seconds()
	}
	s.last = now

	s.prev = ComputePoseWithGyro(sample.Ax, sample.Ay, sample.Az, sample.Gz, s.prev, dt)
	return s.prev, nil
}

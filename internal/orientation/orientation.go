package orientation

import (
	"math"
)

// Pose is the canonical representation of orientation for this app.
type Pose struct {
	Roll  float64 `json:"roll"`
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
}

// Source is anything that can provide poses over time: mock source, IMU
// source, maybe a replay source from file later.
type Source interface {
	Next() (Pose, error)
}

// ComputePoseFromAccel computes roll and pitch from accelerometer data only.
// Yaw is set to 0 (no magnetometer on this part).
//
// Uses simple tilt formulas:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(-ax, sqrt(ay² + az²))
//
// Units of the inputs do not matter, only their ratios.
func ComputePoseFromAccel(ax, ay, az float64) Pose {
	rollRad := math.Atan2(ay, az)
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))

	rollDeg := rollRad * 180.0 / math.Pi
	pitchDeg := pitchRad * 180.0 / math.Pi

	return Pose{
		Roll:  rollDeg,
		Pitch: pitchDeg,
		Yaw:   0,
	}
}

// ComputePoseWithGyro computes roll/pitch from the accelerometer and
// integrates the gyro Z rate (°/s) on top of the previous yaw. Without a
// magnetometer the yaw drifts; it is only useful for short-term relative
// heading.
func ComputePoseWithGyro(ax, ay, az, gz float64, prev Pose, dt float64) Pose {
	p := ComputePoseFromAccel(ax, ay, az)
	p.Yaw = math.Mod(prev.Yaw+gz*dt, 360)
	if p.Yaw < 0 {
		p.Yaw += 360
	}
	return p
}

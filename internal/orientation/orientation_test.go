package orientation

import (
	"math"
	"testing"
)

func TestComputePoseFromAccelLevel(t *testing.T) {
	// 1 g straight down the Z axis: level attitude.
	p := ComputePoseFromAccel(0, 0, 1)
	if math.Abs(p.Roll) > 1e-9 || math.Abs(p.Pitch) > 1e-9 || p.Yaw != 0 {
		t.Errorf("level pose = %+v, want zeros", p)
	}
}

func TestComputePoseFromAccelTilt(t *testing.T) {
	// Gravity entirely along Y: 90° roll.
	p := ComputePoseFromAccel(0, 1, 0)
	if math.Abs(p.Roll-90) > 1e-9 {
		t.Errorf("roll = %v, want 90", p.Roll)
	}
	// Gravity entirely along -X: 90° pitch.
	p = ComputePoseFromAccel(-1, 0, 0)
	if math.Abs(p.Pitch-90) > 1e-9 {
		t.Errorf("pitch = %v, want 90", p.Pitch)
	}
	// Units must not matter, only ratios.
	a := ComputePoseFromAccel(0.3, -0.2, 0.9)
	b := ComputePoseFromAccel(300, -200, 900)
	if math.Abs(a.Roll-b.Roll) > 1e-9 || math.Abs(a.Pitch-b.Pitch) > 1e-9 {
		t.Errorf("scale dependence: %+v vs %+v", a, b)
	}
}

func TestComputePoseWithGyroIntegratesYaw(t *testing.T) {
	p := Pose{Yaw: 350}
	// 30 °/s for one second wraps past 360.
	p = ComputePoseWithGyro(0, 0, 1, 30, p, 1.0)
	if math.Abs(p.Yaw-20) > 1e-9 {
		t.Errorf("yaw = %v, want 20", p.Yaw)
	}
	// Negative rates wrap the other way.
	p = ComputePoseWithGyro(0, 0, 1, -40, p, 1.0)
	if math.Abs(p.Yaw-340) > 1e-9 {
		t.Errorf("yaw = %v, want 340", p.Yaw)
	}
}

func TestMockSource(t *testing.T) {
	src := NewMockSource()
	p, err := src.Next()
	if err != nil {
		t.Fatal(err)
	}
	if p.Roll < -20 || p.Roll > 20 || p.Pitch < -15 || p.Pitch > 15 {
		t.Errorf("mock pose out of range: %+v", p)
	}
}

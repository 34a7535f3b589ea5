package imu

// Sample represents one scaled BMI160 reading.
type Sample struct {
	Ax float64 `json:"ax"` // accel, g
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`

	Gx float64 `json:"gx"` // gyro, °/s
	Gy float64 `json:"gy"`
	Gz float64 `json:"gz"`

	Temp float64 `json:"temp_c"` // die temperature, °C
}

// Raw represents one unscaled BMI160 reading in sensor counts.
type Raw struct {
	Ax int16 `json:"ax"`
	Ay int16 `json:"ay"`
	Az int16 `json:"az"`

	Gx int16 `json:"gx"`
	Gy int16 `json:"gy"`
	Gz int16 `json:"gz"`
}

// SampleSource is implemented by anything that can produce scaled samples,
// in particular the sensors IMU manager.
type SampleSource interface {
	ReadSample() (Sample, error)
}

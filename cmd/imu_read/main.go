// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/relabs-tech/bmi160_computer/internal/config"
	"github.com/relabs-tech/bmi160_computer/internal/orientation"
	"github.com/relabs-tech/bmi160_computer/internal/sensors"
)

// One-shot diagnostic: bring up the BMI160, dump its power and error
// state, then print a handful of samples.
func main() {
	configPath := flag.String("config", "./bmi160_config.txt", "path to configuration file")
	samples := flag.Int("n", 5, "number of samples to read")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Fatalf("IMU initialization failed: %v", err)
	}

	power, err := imuManager.PowerModeStatus()
	if err != nil {
		log.Fatalf("failed to read power status: %v", err)
	}
	fmt.Printf("power:  accel=%s gyro=%s mag=%s\n", power.Accel, power.Gyro, power.Mag)

	errStatus, err := imuManager.ErrorStatus()
	if err != nil {
		log.Fatalf("failed to read error register: %v", err)
	}
	fmt.Printf("error:  fatal=%v dropped_cmd=%v code=%s\n",
		errStatus.Fatal, errStatus.DroppedCommand, errStatus.Code)

	cfg := config.Get()
	poseSrc := orientation.NewIMUSource(imuManager)
	for i := 0; i < *samples; i++ {
		raw, err := imuManager.ReadRaw()
		if err != nil {
			log.Fatalf("failed to read raw sample: %v", err)
		}
		sample, err := imuManager.ReadSample()
		if err != nil {
			log.Fatalf("failed to read sample: %v", err)
		}
		pose, err := poseSrc.Next()
		if err != nil {
			log.Fatalf("failed to compute pose: %v", err)
		}
		fmt.Printf(
			"raw:    ax=%6d ay=%6d az=%6d  gx=%6d gy=%6d gz=%6d\n",
			raw.Ax, raw.Ay, raw.Az, raw.Gx, raw.Gy, raw.Gz,
		)
		fmt.Printf(
			"sample: ax=%7.3fg ay=%7.3fg az=%7.3fg  gx=%8.2f°/s gy=%8.2f°/s gz=%8.2f°/s  temp=%5.2f°C\n",
			sample.Ax, sample.Ay, sample.Az, sample.Gx, sample.Gy, sample.Gz, sample.Temp,
		)
		fmt.Printf("pose:   R=%6.2f P=%6.2f Y=%6.2f\n", pose.Roll, pose.Pitch, pose.Yaw)
		time.Sleep(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	}
}

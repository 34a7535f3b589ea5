// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/relabs-tech/bmi160_computer/internal/app"
	"github.com/relabs-tech/bmi160_computer/internal/config"
	"github.com/relabs-tech/bmi160_computer/internal/sensors"
)

func main() {
	log.Println("starting BMI160 register debug tool (standalone)")

	if err := config.InitGlobal("bmi160_config.txt"); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	log.Println("Initializing IMU manager...")
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Fatalf("IMU initialization failed: %v", err)
	}

	http.HandleFunc("/ws", app.HandleRegisterDebugWS)

	// API endpoint for live IMU data
	http.HandleFunc("/api/imu", app.HandleIMUData)

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		http.ServeFile(w, r, "web/register_debug.html")
	})

	addr := fmt.Sprintf(":%d", config.Get().RegisterDebugPort)
	log.Printf("Register debug tool listening on %s", addr)
	log.Printf("Open http://localhost%s in your browser", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

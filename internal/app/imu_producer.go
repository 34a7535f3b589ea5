package app

import (
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/bmi160_computer/internal/config"
	"github.com/relabs-tech/bmi160_computer/internal/orientation"
	"github.com/relabs-tech/bmi160_computer/internal/sensors"
)

// RunIMUProducer reads the BMI160 on a fixed interval and publishes scaled
// samples, derived pose and temperature to MQTT.
func RunIMUProducer() error {
	log.Println("starting bmi160-computer sample/pose producer")

	cfg := config.Get()

	// --- Initialize the IMU ---
	imuManager := sensors.GetIMUManager()
	if err := imuManager.Init(); err != nil {
		log.Printf("failed to initialize IMU: %v", err)
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDProducer)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Printf("MQTT connect error: %v", token.Error())
		return token.Error()
	}
	defer client.Disconnect(250)

	log.Println("connected to MQTT, starting publish loop")

	// Track previous pose and time for gyro yaw integration
	var prevPose orientation.Pose
	var lastTickTime time.Time

	logEvery := cfg.ConsoleLogInterval / cfg.IMUSampleInterval
	if logEvery < 1 {
		logEvery = 1
	}
	tickCount := 0

	// main tick
	ticker := time.NewTicker(time.Duration(cfg.IMUSampleInterval) * time.Millisecond)
	defer ticker.Stop()

	for t := range ticker.C {
		// Delta time for gyro integration
		var deltaTime float64
		if lastTickTime.IsZero() {
			deltaTime = float64(cfg.IMUSampleInterval) / 1000.0
		} else {
			deltaTime = t.Sub(lastTickTime).Seconds()
		}
		lastTickTime = t

		// 1) Read one scaled sample
		sample, err := imuManager.ReadSample()
		if err != nil {
			log.Printf("error reading IMU: %v", err)
			continue
		}

		// 2) Derive pose (tilt + gyro-integrated yaw)
		pose := orientation.ComputePoseWithGyro(
			sample.Ax, sample.Ay, sample.Az, sample.Gz, prevPose, deltaTime)
		prevPose = pose

		// 3) Publish sample
		if payload, err := json.Marshal(sample); err != nil {
			log.Printf("sample marshal error: %v", err)
		} else {
			if token := client.Publish(cfg.TopicIMU, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (imu): %v", token.Error())
				continue
			}
		}

		// 4) Publish pose
		if payload, err := json.Marshal(pose); err != nil {
			log.Printf("pose marshal error: %v", err)
		} else {
			if token := client.Publish(cfg.TopicPose, 0, true, payload); token.Wait() && token.Error() != nil {
				log.Printf("MQTT publish error (pose): %v", token.Error())
				continue
			}
		}

		// 5) Publish temperature on its own topic, if configured
		if cfg.TopicTemp != "" {
			tempPayload := struct {
				TempC float64 `json:"temp_c"`
				Time  string  `json:"time"`
			}{
				TempC: sample.Temp,
				Time:  t.Format(time.RFC3339),
			}
			if payload, err := json.Marshal(tempPayload); err != nil {
				log.Printf("temp marshal error: %v", err)
			} else {
				client.Publish(cfg.TopicTemp, 0, true, payload)
			}
		}

		tickCount++
		if tickCount%logEvery == 0 {
			log.Printf("%s tick: pose R=%.2f P=%.2f Y=%.2f | accel ax=%.3f ay=%.3f az=%.3f g | gyro gx=%.2f gy=%.2f gz=%.2f °/s | temp=%.2f°C",
				t.Format("15:04:05.000"),
				pose.Roll, pose.Pitch, pose.Yaw,
				sample.Ax, sample.Ay, sample.Az,
				sample.Gx, sample.Gy, sample.Gz,
				sample.Temp)
		}
	}

	return nil
}

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/bmi160_computer/internal/config"
	"github.com/relabs-tech/bmi160_computer/internal/imu"
	"github.com/relabs-tech/bmi160_computer/internal/orientation"
)

func RunConsoleMQTT() error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDConsole)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	log.Printf("console: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Subscribe to IMU samples
	imuToken := client.Subscribe(cfg.TopicIMU, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var s imu.Sample
		if err := json.Unmarshal(msg.Payload(), &s); err != nil {
			log.Printf("console: imu unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[IMU ]  ax=%7.3fg ay=%7.3fg az=%7.3fg  gx=%8.2f°/s gy=%8.2f°/s gz=%8.2f°/s\n",
			s.Ax, s.Ay, s.Az, s.Gx, s.Gy, s.Gz,
		)
	})
	imuToken.Wait()
	if imuToken.Error() != nil {
		return imuToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicIMU)

	// Subscribe to orientation
	poseToken := client.Subscribe(cfg.TopicPose, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("console: pose unmarshal error: %v", err)
			return
		}

		fmt.Printf(
			"[POSE]  ROLL=%6.2f  PITCH=%6.2f  YAW=%6.2f\n",
			p.Roll, p.Pitch, p.Yaw,
		)
	})
	poseToken.Wait()
	if poseToken.Error() != nil {
		return poseToken.Error()
	}
	log.Printf("console: subscribed to %s", cfg.TopicPose)

	// Subscribe to die temperature, if the producer publishes it
	if cfg.TopicTemp != "" {
		tempToken := client.Subscribe(cfg.TopicTemp, 0, func(_ mqtt.Client, msg mqtt.Message) {
			var t struct {
				TempC float64 `json:"temp_c"`
				Time  string  `json:"time"`
			}
			if err := json.Unmarshal(msg.Payload(), &t); err != nil {
				log.Printf("console: temperature unmarshal error: %v", err)
				return
			}

			fmt.Printf("[TEMP]  %6.2f°C\n", t.TempC)
		})
		tempToken.Wait()
		if tempToken.Error() != nil {
			return tempToken.Error()
		}
		log.Printf("console: subscribed to %s", cfg.TopicTemp)
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	client.Disconnect(250)
	return nil
}

package config

import "time"

// getDefaultConfig retorna uma configuração padrão
func getDefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Kinect: KinectConfig{
			Host:            "localhost",
			Port:            5045,
			SampleInterval:  200 * time.Millisecond,
			FrameRetryDelay: 500 * time.Millisecond,
			ReadTimeout:     5 * time.Second,
		},
		Motion: MotionConfig{
			Threshold:          1_000_000,
			DiffThreshold:      15,
			WindowCapacity:     30,
			EvalInterval:       5 * time.Second,
			DebounceInterval:   5 * time.Second,
			IdleTimeout:        4 * time.Minute,
			GraceEvaluations:   30,
			DoubleFalsePublish: true,
			RedundantDelay:     30 * time.Second,
			Quiet:              false,
			DisplayStats:       false,
		},
		Tilt: TiltConfig{
			Enabled:        true,
			Policy:         "direct",
			MinAngle:       -30,
			MaxAngle:       30,
			InitialAngle:   -15,
			JogStep:        5,
			Cooldown:       2 * time.Second,
			UpperZoneRatio: 0.30,
			LowerZoneRatio: 0.70,
		},
		MQTT: MQTTConfig{
			Broker:          "",
			Port:            1883,
			Topic:           "kinect/motion",
			ClientID:        "kinect-monitor",
			ConnectAttempts: 5,
			ConnectBackoff:  5 * time.Second,
			KeepAlive:       30 * time.Second,
			Discovery:       true,
			DiscoveryPrefix: "homeassistant",
		},
		Redis: RedisConfig{
			Host:     "localhost",
			Port:     6379,
			Password: "",
			DB:       0,
			Prefix:   "kinect_motion",
			Channel:  "kinect_motion:events",
			Enabled:  false,
		},
	}
}

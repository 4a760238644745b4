package config

import "time"

// Built-in values. Only the port is expected to vary between deployments.
const (
	DefaultPort              = 3001
	DefaultClientID          = "bot01"
	DefaultSessionRoot       = ".wwebjs_auth"
	DefaultDSN               = "wa-relay.db"
	DefaultStaticDir         = "public"
	DefaultAnswerAddress     = "http://127.0.0.1:8000"
	DefaultTransportURL      = "ws://127.0.0.1:3002/bridge"
	DefaultControlIssuer     = "go-wa-relay"
	DefaultInitRetryInterval = 1500 * time.Millisecond
	DefaultRecreateDelay     = 1000 * time.Millisecond
	DefaultSettleDelay       = 1200 * time.Millisecond
	DefaultEraseAttempts     = 10
	DefaultEraseInterval     = 400 * time.Millisecond
	DefaultEventBuffer       = 100
)

func defaults() *StructuredConfig {
	return &StructuredConfig{
		App: App{
			ClientID:             DefaultClientID,
			ControlTokenIssuer:   DefaultControlIssuer,
			ControlTokenDuration: time.Hour,
			LogLevel:             "debug",
		},
		Storage: Storage{
			Session: Session{Root: DefaultSessionRoot},
			DB:      DB{DSN: DefaultDSN},
		},
		Server: Server{
			RequestTimeout:  10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			StaticDir:       DefaultStaticDir,
		},
		Adapter: Adapter{
			AnswerAddress:    DefaultAnswerAddress,
			AnswerTimeout:    60 * time.Second,
			TransportURL:     DefaultTransportURL,
			TransportTimeout: 2 * time.Minute,
			RequestTimeout:   15 * time.Second,
		},
		Workers: Workers{
			InitRetryInterval: DefaultInitRetryInterval,
			RecreateDelay:     DefaultRecreateDelay,
			SettleDelay:       DefaultSettleDelay,
			EraseAttempts:     DefaultEraseAttempts,
			EraseInterval:     DefaultEraseInterval,
			EventBuffer:       DefaultEventBuffer,
		},
		Port: DefaultPort,
	}
}

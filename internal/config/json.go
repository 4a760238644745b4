package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	App struct {
		ClientID             string   `json:"client_id"`
		ControlTokenKey      string   `json:"control_token_key"`
		ControlTokenIssuer   string   `json:"control_token_issuer"`
		ControlTokenDuration Duration `json:"control_token_duration"`
		Version              string   `json:"version"`
		LogLevel             string   `json:"log_level"`
	} `json:"app,omitempty"`

	Storage struct {
		Session struct {
			Root string `json:"root"`
		} `json:"session,omitempty"`

		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		Host            string   `json:"host"`
		Port            int      `json:"port"`
		RequestTimeout  Duration `json:"request_timeout"`
		ShutdownTimeout Duration `json:"shutdown_timeout"`
		StaticDir       string   `json:"static_dir"`
	} `json:"server,omitempty"`

	Adapter struct {
		AnswerAddress    string   `json:"answer_address"`
		AnswerTimeout    Duration `json:"answer_timeout"`
		TransportURL     string   `json:"transport_url"`
		TransportTimeout Duration `json:"transport_timeout"`
		RelayAddress     string   `json:"relay_address"`
		RequestTimeout   Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		InitRetryInterval    Duration `json:"init_retry_interval"`
		InitMaxAttempts      int      `json:"init_max_attempts"`
		RecreateDelay        Duration `json:"recreate_delay"`
		SettleDelay          Duration `json:"settle_delay"`
		EraseAttempts        int      `json:"erase_attempts"`
		EraseInterval        Duration `json:"erase_interval"`
		DestroyTimeout       Duration `json:"destroy_timeout"`
		MaxConcurrentReplies int      `json:"max_concurrent_replies"`
		EventBuffer          int      `json:"event_buffer"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			ClientID:             jsonCfg.App.ClientID,
			ControlTokenKey:      jsonCfg.App.ControlTokenKey,
			ControlTokenIssuer:   jsonCfg.App.ControlTokenIssuer,
			ControlTokenDuration: time.Duration(jsonCfg.App.ControlTokenDuration),
			Version:              jsonCfg.App.Version,
			LogLevel:             jsonCfg.App.LogLevel,
		},
		Storage: Storage{
			Session: Session{Root: jsonCfg.Storage.Session.Root},
			DB:      DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Server: Server{
			Host:            jsonCfg.Server.Host,
			RequestTimeout:  time.Duration(jsonCfg.Server.RequestTimeout),
			ShutdownTimeout: time.Duration(jsonCfg.Server.ShutdownTimeout),
			StaticDir:       jsonCfg.Server.StaticDir,
		},
		Adapter: Adapter{
			AnswerAddress:    jsonCfg.Adapter.AnswerAddress,
			AnswerTimeout:    time.Duration(jsonCfg.Adapter.AnswerTimeout),
			TransportURL:     jsonCfg.Adapter.TransportURL,
			TransportTimeout: time.Duration(jsonCfg.Adapter.TransportTimeout),
			RelayAddress:     jsonCfg.Adapter.RelayAddress,
			RequestTimeout:   time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Workers: Workers{
			InitRetryInterval:    time.Duration(jsonCfg.Workers.InitRetryInterval),
			InitMaxAttempts:      jsonCfg.Workers.InitMaxAttempts,
			RecreateDelay:        time.Duration(jsonCfg.Workers.RecreateDelay),
			SettleDelay:          time.Duration(jsonCfg.Workers.SettleDelay),
			EraseAttempts:        jsonCfg.Workers.EraseAttempts,
			EraseInterval:        time.Duration(jsonCfg.Workers.EraseInterval),
			DestroyTimeout:       time.Duration(jsonCfg.Workers.DestroyTimeout),
			MaxConcurrentReplies: jsonCfg.Workers.MaxConcurrentReplies,
			EventBuffer:          jsonCfg.Workers.EventBuffer,
		},
		Port: jsonCfg.Server.Port,
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling from strings like "1h", "30s"
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

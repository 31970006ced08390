package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

type StructuredJSONConfig struct {
	Remote struct {
		BaseURL        string   `json:"base_url"`
		WSBaseURL      string   `json:"ws_base_url"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"remote,omitempty"`

	Storage struct {
		DB struct {
			Path string `json:"path"`
		} `json:"db,omitempty"`

		Snapshot struct {
			Path string `json:"path"`
		} `json:"snapshot,omitempty"`
	} `json:"storage,omitempty"`

	Sync struct {
		Debounce            Duration `json:"debounce"`
		ProbeInterval       Duration `json:"probe_interval"`
		PendingPollInterval Duration `json:"pending_poll_interval"`
	} `json:"sync,omitempty"`

	Calendar struct {
		BaseURL string `json:"base_url"`
	} `json:"calendar,omitempty"`
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
		Remote: Remote{
			BaseURL:        jsonCfg.Remote.BaseURL,
			WSBaseURL:      jsonCfg.Remote.WSBaseURL,
			RequestTimeout: time.Duration(jsonCfg.Remote.RequestTimeout),
		},
		Storage: Storage{
			DB:       DB{Path: jsonCfg.Storage.DB.Path},
			Snapshot: Snapshot{Path: jsonCfg.Storage.Snapshot.Path},
		},
		Sync: Sync{
			Debounce:            time.Duration(jsonCfg.Sync.Debounce),
			ProbeInterval:       time.Duration(jsonCfg.Sync.ProbeInterval),
			PendingPollInterval: time.Duration(jsonCfg.Sync.PendingPollInterval),
		},
		Calendar: Calendar{
			BaseURL: jsonCfg.Calendar.BaseURL,
		},
		JSONFilePath: "",
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

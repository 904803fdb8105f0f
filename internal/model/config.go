// Package model defines shared configuration structures used to initialize the ReelMonitor agent.
// It includes listener settings, logfile settings and the optional status server.
package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the root structure loaded from configs/config.yml.
type Config struct {
	ListenToReel    bool     `yaml:"listen_to_reel"`
	ReelDevice      string   `yaml:"reel_device"`
	ReelBaud        int      `yaml:"reel_baud"`
	ListenToTcpdump bool     `yaml:"listen_to_tcpdump"`
	TcpdumpCommand  []string `yaml:"tcpdump_command"`

	EnableMixing            bool `yaml:"enable_mixing"`
	MixingDelayMilliseconds int  `yaml:"mixing_delay_milliseconds"`

	RaddecFilterParameters FilterParameters `yaml:"raddec_filter_parameters"`
	UptimeBeaconSignature  string           `yaml:"uptime_beacon_signature"`

	IncludePacketsInLogfile  bool   `yaml:"include_packets_in_logfile"`
	LogfileNamePrefix        string `yaml:"logfile_name_prefix"`
	LogfileExtension         string `yaml:"logfile_extension"`
	LogfileDelimiter         string `yaml:"logfile_delimiter"`
	LogfileMinutesToRotation int    `yaml:"logfile_minutes_to_rotation"`
	StorageMountPoint        string `yaml:"storage_mount_point"`

	IsDebugMode bool   `yaml:"is_debug_mode"`
	HTTPAddr    string `yaml:"http_addr"` // status server address, empty disables
	StateDB     string `yaml:"state_db"`  // bbolt path, "auto" for the storage mount point, empty disables
}

// FilterParameters are the thresholds handed to the raddec filter.
type FilterParameters struct {
	MinRSSI             *int     `yaml:"min_rssi"`
	MaxRSSI             *int     `yaml:"max_rssi"`
	AcceptedReceiverIDs []string `yaml:"accepted_receiver_ids"`
}

// stateDBAuto selects the default state database location.
const stateDBAuto = "auto"

// DefaultConfig returns the configuration used when a key is absent from the file.
func DefaultConfig() Config {
	minRSSI := -99
	return Config{
		ListenToReel:             true,
		ReelDevice:               "/dev/ttyS0",
		ReelBaud:                 230400,
		ListenToTcpdump:          false,
		TcpdumpCommand:           []string{"tcpdump", "-l", "-i", "wlan0"},
		EnableMixing:             true,
		MixingDelayMilliseconds:  1000,
		RaddecFilterParameters:   FilterParameters{MinRSSI: &minRSSI},
		IncludePacketsInLogfile:  false,
		LogfileNamePrefix:        "monitor",
		LogfileExtension:         ".csv",
		LogfileDelimiter:         ",",
		LogfileMinutesToRotation: 60,
		StorageMountPoint:        "/mnt/sda1",
		IsDebugMode:              true,
	}
}

// LoadConfig reads the YAML file at path over the defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the logfile writer cannot work with.
func (c *Config) Validate() error {
	if c.LogfileMinutesToRotation <= 0 {
		return errors.New("logfile_minutes_to_rotation must be positive")
	}
	if c.LogfileDelimiter == "" {
		return errors.New("logfile_delimiter must not be empty")
	}
	if c.StorageMountPoint == "" {
		return errors.New("storage_mount_point must not be empty")
	}
	if c.ListenToReel && c.ReelDevice == "" {
		return errors.New("reel_device is required when listen_to_reel is set")
	}
	if c.ListenToTcpdump && len(c.TcpdumpCommand) == 0 {
		return errors.New("tcpdump_command is required when listen_to_tcpdump is set")
	}
	return nil
}

// RotationWindow is the maximum age of a logfile set.
func (c *Config) RotationWindow() time.Duration {
	return time.Duration(c.LogfileMinutesToRotation) * time.Minute
}

// MixingDelay is the delay handed to the mixer.
func (c *Config) MixingDelay() time.Duration {
	return time.Duration(c.MixingDelayMilliseconds) * time.Millisecond
}

// StateDBPath resolves the bbolt file location; "" means the store is disabled.
func (c *Config) StateDBPath() string {
	if c.StateDB == stateDBAuto {
		return filepath.Join(c.StorageMountPoint, c.LogfileNamePrefix+"-state.db")
	}
	return c.StateDB
}

package settings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	"github.com/jaennil/guide_helper/backend/maps/internal/repository/disk"
)

const configSize = 8

// Config is the user-tunable state persisted in config.dat.
type Config struct {
	DiskCacheCapacity int  `json:"disk_cache_capacity"`
	EffectsEnabled    bool `json:"effects_enabled"`
}

// MarshalBinary encodes c as a little-endian int32 capacity, one effects
// byte and three bytes of padding.
func (c Config) MarshalBinary() ([]byte, error) {
	buf := make([]byte, configSize)
	binary.LittleEndian.PutUint32(buf, uint32(int32(c.DiskCacheCapacity)))
	if c.EffectsEnabled {
		buf[4] = 1
	}
	return buf, nil
}

func (c *Config) UnmarshalBinary(data []byte) error {
	if len(data) < 5 {
		return fmt.Errorf("config record too short: %d bytes", len(data))
	}
	capacity := int32(binary.LittleEndian.Uint32(data))
	if capacity < 0 {
		return fmt.Errorf("negative disk cache capacity %d", capacity)
	}
	c.DiskCacheCapacity = int(capacity)
	c.EffectsEnabled = data[4] != 0
	return nil
}

// LoadConfig reads config.dat. A missing file yields defaults; an unreadable
// one yields defaults and the error.
func LoadConfig(path string, defaults Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaults, nil
		}
		return defaults, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := defaults
	if err := cfg.UnmarshalBinary(data); err != nil {
		return defaults, err
	}
	return cfg, nil
}

func SaveConfig(path string, cfg Config) error {
	data, err := cfg.MarshalBinary()
	if err != nil {
		return err
	}
	return disk.WriteFileAtomic(path, data)
}

// Package settings persists the handful of facts the runtime needs
// primed from disk before a real project snapshot arrives: the last
// Art-Net broadcast address used, and the last-applied endpoint
// configuration per universe. It deliberately does not persist
// projects, fixtures, scenes or effects.
package settings

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nightforge/lumen/internal/database/repositories"
	"github.com/nightforge/lumen/internal/dmx"
	"github.com/nightforge/lumen/internal/services/endpoint"
	"gorm.io/gorm"
)

const (
	keyArtNetBroadcast = "artnet_broadcast"
	keyEndpointConfig  = "endpoint_config"
)

// Store is a thin, JSON-encoding wrapper around the settings
// repository for the two shapes the runtime cares about.
type Store struct {
	repo *repositories.SettingRepository
}

// New builds a Store over db. It does not migrate: the settings table
// must already exist (database.Connect creates it).
func New(db *gorm.DB) *Store {
	return &Store{repo: repositories.NewSettingRepository(db)}
}

// SaveArtNetBroadcast persists the broadcast address last used to
// configure the Art-Net worker.
func (s *Store) SaveArtNetBroadcast(ctx context.Context, addr string) error {
	_, err := s.repo.Upsert(ctx, keyArtNetBroadcast, addr)
	return err
}

// LoadArtNetBroadcast returns the last saved broadcast address, or ""
// if none has been saved yet.
func (s *Store) LoadArtNetBroadcast(ctx context.Context) (string, error) {
	setting, err := s.repo.FindByKey(ctx, keyArtNetBroadcast)
	if err != nil {
		return "", fmt.Errorf("settings: loading artnet broadcast: %w", err)
	}
	if setting == nil {
		return "", nil
	}
	return setting.Value, nil
}

// SaveEndpointConfig persists the full per-universe endpoint
// configuration so it can prime the next process start's Adapt call.
func (s *Store) SaveEndpointConfig(ctx context.Context, cfg map[dmx.UniverseId][]endpoint.ConfigItem) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: encoding endpoint config: %w", err)
	}
	_, err = s.repo.Upsert(ctx, keyEndpointConfig, string(raw))
	return err
}

// LoadEndpointConfig returns the last saved per-universe endpoint
// configuration, or an empty map if none has been saved yet.
func (s *Store) LoadEndpointConfig(ctx context.Context) (map[dmx.UniverseId][]endpoint.ConfigItem, error) {
	setting, err := s.repo.FindByKey(ctx, keyEndpointConfig)
	if err != nil {
		return nil, fmt.Errorf("settings: loading endpoint config: %w", err)
	}
	if setting == nil {
		return map[dmx.UniverseId][]endpoint.ConfigItem{}, nil
	}

	var cfg map[dmx.UniverseId][]endpoint.ConfigItem
	if err := json.Unmarshal([]byte(setting.Value), &cfg); err != nil {
		return nil, fmt.Errorf("settings: decoding endpoint config: %w", err)
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/cbrunner/rentvsbuy/pkg/constants"
	"gopkg.in/yaml.v3"
)

// Snapshot is a persisted settings record: the scenario, break-even, and
// sweep sections a UI collaborator last used, with a version tag and
// timestamp.
type Snapshot struct {
	Version   string          `yaml:"version"`
	SavedAt   string          `yaml:"savedAt"`
	Single    ScenarioConfig  `yaml:"single"`
	Breakeven BreakevenConfig `yaml:"breakeven"`
	Sweep     SweepConfig     `yaml:"sweep"`
}

// NewSnapshot assembles a snapshot from the current configuration.
func NewSnapshot(conf *Configuration, now time.Time) Snapshot {
	return Snapshot{
		Version:   constants.SnapshotVersion,
		SavedAt:   now.UTC().Format(time.RFC3339),
		Single:    conf.Scenario,
		Breakeven: conf.Breakeven,
		Sweep:     conf.Sweep,
	}
}

// SaveSnapshot writes the snapshot as YAML.
func SaveSnapshot(path string, snapshot Snapshot) error {
	data, err := yaml.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write snapshot %s: %w", path, err)
	}
	return nil
}

// LoadSnapshot reads a snapshot written by SaveSnapshot.
func LoadSnapshot(path string) (Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read snapshot %s: %w", path, err)
	}
	var snapshot Snapshot
	if err := yaml.Unmarshal(data, &snapshot); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", path, err)
	}
	if snapshot.Version == "" {
		return Snapshot{}, fmt.Errorf("snapshot %s is missing a version tag", path)
	}
	return snapshot, nil
}

// Package memento persists the population as {type, color, name} triples
// so that it can be recreated on the next start.
package memento

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/ming-00/elonpet"
)

// Store saves the population in a JSON file
type Store struct {
	Path string
}

// NewStore creates new Store
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Load reads the saved population. A missing file is an empty population.
func (s *Store) Load() ([]elonpet.PetSpec, error) {
	specs, err := readSpecs(s.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return specs, nil
}

// Save writes the population atomically (write tmp, then rename)
func (s *Store) Save(specs []elonpet.PetSpec) error {
	return writeSpecs(s.Path, specs)
}

// Export writes the population to a new pets-<unix ms>.json file in dir
func Export(dir string, specs []elonpet.PetSpec) (string, error) {
	path := filepath.Join(dir, fmt.Sprintf("pets-%d.json", time.Now().UnixNano()/int64(time.Millisecond)))
	if err := writeSpecs(path, specs); err != nil {
		return "", err
	}
	return path, nil
}

// Import reads an exported pet list. Entries without a name or with an
// unknown type are dropped.
func Import(path string) ([]elonpet.PetSpec, error) {
	specs, err := readSpecs(path)
	if err != nil {
		return nil, err
	}

	valid := specs[:0]
	for _, spec := range specs {
		if strings.TrimSpace(spec.Name) == "" {
			log.Warn("Skipping imported pet without a name")
			continue
		}
		if _, err := elonpet.LookupSpecies(spec.Type); err != nil {
			log.WithField("pet", spec.Name).Warnf("Skipping imported pet: %v", err)
			continue
		}
		valid = append(valid, spec)
	}
	return valid, nil
}

func readSpecs(path string) ([]elonpet.PetSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var specs []elonpet.PetSpec
	if err := json.Unmarshal(data, &specs); err != nil {
		return nil, fmt.Errorf("unmarshal pets %s: %w", path, err)
	}
	return specs, nil
}

func writeSpecs(path string, specs []elonpet.PetSpec) error {
	if specs == nil {
		specs = []elonpet.PetSpec{}
	}
	data, err := json.MarshalIndent(specs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal pets: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write tmp pets: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename pets: %w", err)
	}
	return nil
}

package character

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"gopkg.in/yaml.v3"
)

const (
	rosterTTL     = 30 * time.Second
	rosterSweep   = time.Minute
	rosterFileExt = ".yaml"
)

// Roster loads validated fighter definitions from a directory of YAML files.
// Parsed files are memoized briefly so repeated match setups only hit the
// disk once the entry goes stale.
type Roster struct {
	dir   string
	cache *gocache.Cache
}

// NewRoster wraps a roster directory. The directory is not scanned eagerly;
// missing files surface on Load.
func NewRoster(dir string) *Roster {
	return &Roster{
		dir:   dir,
		cache: gocache.New(rosterTTL, rosterSweep),
	}
}

// Load reads, parses, and validates one fighter file by roster name
// (the file basename without extension).
func (r *Roster) Load(name string) (Definition, error) {
	if r == nil {
		return Definition{}, fmt.Errorf("roster not configured")
	}
	if cached, ok := r.cache.Get(name); ok {
		if def, ok := cached.(Definition); ok {
			return def, nil
		}
	}

	path := filepath.Join(r.dir, name+rosterFileExt)
	def, err := LoadFile(path)
	if err != nil {
		return Definition{}, err
	}
	r.cache.Set(name, def, gocache.DefaultExpiration)
	return def, nil
}

// LoadFile reads and validates a single definition file.
func LoadFile(path string) (Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Definition{}, fmt.Errorf("read character file: %w", err)
	}
	var def Definition
	if err := yaml.Unmarshal(raw, &def); err != nil {
		return Definition{}, fmt.Errorf("parse character file %s: %w", path, err)
	}
	if err := def.Validate(); err != nil {
		return Definition{}, fmt.Errorf("invalid character %s: %w", path, err)
	}
	return def, nil
}

// Names lists the roster entries available on disk, in directory order.
func (r *Roster) Names() ([]string, error) {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("scan roster dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != rosterFileExt {
			continue
		}
		names = append(names, entry.Name()[:len(entry.Name())-len(rosterFileExt)])
	}
	return names, nil
}

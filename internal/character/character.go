// Package character models the fighter definition format exchanged during the
// pre-match handshake and authored as YAML roster files. Definitions are
// validated here, before any of them reaches the simulation.
package character

import (
	"fmt"
	"regexp"
)

// SchemaVersion is the definition revision accepted by this build.
const SchemaVersion = 1

// Stat bounds shared by the validator and the schema generator.
const (
	StatMin    = 1
	StatMax    = 10
	StatBudget = 38
	MoveMin    = 1
	MoveMax    = 5
	NameMaxLen = 24
	TagMaxLen  = 64
	StatCount  = 7
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// StatBlock holds the seven primary attributes. Each is bounded to
// [StatMin, StatMax] and the block sum may not exceed StatBudget.
type StatBlock struct {
	Vitality int `yaml:"vitality" json:"vitality" jsonschema:"minimum=1,maximum=10"`
	Strength int `yaml:"strength" json:"strength" jsonschema:"minimum=1,maximum=10"`
	Guard    int `yaml:"guard" json:"guard" jsonschema:"minimum=1,maximum=10"`
	Agility  int `yaml:"agility" json:"agility" jsonschema:"minimum=1,maximum=10"`
	Leap     int `yaml:"leap" json:"leap" jsonschema:"minimum=1,maximum=10"`
	Focus    int `yaml:"focus" json:"focus" jsonschema:"minimum=1,maximum=10"`
	Reach    int `yaml:"reach" json:"reach" jsonschema:"minimum=1,maximum=10"`
}

// Sum returns the total spent stat budget.
func (s StatBlock) Sum() int {
	return s.Vitality + s.Strength + s.Guard + s.Agility + s.Leap + s.Focus + s.Reach
}

// MoveParams tune the special-move projectile.
type MoveParams struct {
	ProjectileSpeed int `yaml:"projectileSpeed" json:"projectileSpeed" jsonschema:"minimum=1,maximum=5"`
	ProjectileSize  int `yaml:"projectileSize" json:"projectileSize" jsonschema:"minimum=1,maximum=5"`
}

// Palette carries the two cosmetic colors rendered by the client.
type Palette struct {
	Primary   string `yaml:"primary" json:"primary" jsonschema:"pattern=^#[0-9a-fA-F]{6}$"`
	Secondary string `yaml:"secondary" json:"secondary" jsonschema:"pattern=^#[0-9a-fA-F]{6}$"`
}

// Definition is one complete fighter as authored on disk or received in the
// hello/start handshake. Immutable once a match starts.
type Definition struct {
	Version int        `yaml:"version" json:"version"`
	Name    string     `yaml:"name" json:"name"`
	Tagline string     `yaml:"tagline" json:"tagline,omitempty"`
	Palette Palette    `yaml:"palette" json:"palette"`
	Stats   StatBlock  `yaml:"stats" json:"stats"`
	Moves   MoveParams `yaml:"moves" json:"moves"`
}

// Validate enforces every definition constraint. The simulation core never
// sees a definition that has not passed through here.
func (d Definition) Validate() error {
	if d.Version != SchemaVersion {
		return fmt.Errorf("unsupported definition version %d (want %d)", d.Version, SchemaVersion)
	}
	if d.Name == "" || len(d.Name) > NameMaxLen {
		return fmt.Errorf("name must be 1-%d characters", NameMaxLen)
	}
	if len(d.Tagline) > TagMaxLen {
		return fmt.Errorf("tagline exceeds %d characters", TagMaxLen)
	}
	if !colorPattern.MatchString(d.Palette.Primary) {
		return fmt.Errorf("palette.primary %q is not a #rrggbb color", d.Palette.Primary)
	}
	if !colorPattern.MatchString(d.Palette.Secondary) {
		return fmt.Errorf("palette.secondary %q is not a #rrggbb color", d.Palette.Secondary)
	}
	for _, stat := range []struct {
		name  string
		value int
	}{
		{"vitality", d.Stats.Vitality},
		{"strength", d.Stats.Strength},
		{"guard", d.Stats.Guard},
		{"agility", d.Stats.Agility},
		{"leap", d.Stats.Leap},
		{"focus", d.Stats.Focus},
		{"reach", d.Stats.Reach},
	} {
		if stat.value < StatMin || stat.value > StatMax {
			return fmt.Errorf("stat %s=%d outside [%d,%d]", stat.name, stat.value, StatMin, StatMax)
		}
	}
	if sum := d.Stats.Sum(); sum > StatBudget {
		return fmt.Errorf("stat total %d exceeds budget %d", sum, StatBudget)
	}
	for _, move := range []struct {
		name  string
		value int
	}{
		{"projectileSpeed", d.Moves.ProjectileSpeed},
		{"projectileSize", d.Moves.ProjectileSize},
	} {
		if move.value < MoveMin || move.value > MoveMax {
			return fmt.Errorf("move parameter %s=%d outside [%d,%d]", move.name, move.value, MoveMin, MoveMax)
		}
	}
	return nil
}

// Default returns an even-budget baseline fighter, used for offline play and
// by the test suites.
func Default(name string) Definition {
	return Definition{
		Version: SchemaVersion,
		Name:    name,
		Tagline: "balanced contender",
		Palette: Palette{Primary: "#c0391b", Secondary: "#f2d8a7"},
		Stats: StatBlock{
			Vitality: 5,
			Strength: 5,
			Guard:    5,
			Agility:  5,
			Leap:     5,
			Focus:    5,
			Reach:    5,
		},
		Moves: MoveParams{ProjectileSpeed: 3, ProjectileSize: 3},
	}
}

package battle

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// --- Unit Templates ---

// UnitTemplate is an immutable unit archetype. Instantiate stamps out live
// units from it; per-mechanic pools (ammunition, intercepts, overwatch
// shots) come from MechanicsConfig at engine initialization, with the
// unlimited_ammo and quick_cooldown capabilities as the per-template
// modifiers.
type UnitTemplate struct {
	Name         string   `yaml:"name"`
	MaxHP        int      `yaml:"max_hp"`
	Attack       int      `yaml:"attack"`
	AttackCount  int      `yaml:"attack_count"`
	Armor        int      `yaml:"armor"`
	Speed        int      `yaml:"speed"`
	Initiative   int      `yaml:"initiative"`
	Dodge        float64  `yaml:"dodge"`
	Range        int      `yaml:"range"`
	MaxResolve   int      `yaml:"max_resolve"`
	Capabilities []string `yaml:"capabilities"`
}

// CapabilitySet resolves the template's capability names. Unknown names
// are dropped here; library construction rejects them up front.
func (t UnitTemplate) CapabilitySet() CapabilitySet {
	var s CapabilitySet
	for _, name := range t.Capabilities {
		if c, ok := ParseCapability(name); ok {
			s = s.With(c)
		}
	}
	return s
}

// Instantiate stamps out a live unit at full health and resolve.
func (t UnitTemplate) Instantiate(id UnitID, team Team, pos Position, facing Facing) BattleUnit {
	return BattleUnit{
		ID:     id,
		Name:   t.Name,
		Team:   team,
		Pos:    pos,
		Facing: facing,
		Stats: Stats{
			MaxHP:       t.MaxHP,
			Attack:      t.Attack,
			AttackCount: t.AttackCount,
			Armor:       t.Armor,
			Speed:       t.Speed,
			Initiative:  t.Initiative,
			Dodge:       t.Dodge,
			Range:       t.Range,
			MaxResolve:  t.MaxResolve,
		},
		HP:           t.MaxHP,
		Resolve:      t.MaxResolve,
		Alive:        true,
		Capabilities: t.CapabilitySet(),
	}
}

// TemplateLibrary is a named collection of templates in declaration order.
type TemplateLibrary struct {
	templates map[string]UnitTemplate
	order     []string
}

// NewTemplateLibrary validates and indexes a template list. Names must be
// present and unique, capability names known, and omitted attack_count and
// range default to 1.
func NewTemplateLibrary(templates []UnitTemplate) (*TemplateLibrary, error) {
	lib := &TemplateLibrary{templates: make(map[string]UnitTemplate, len(templates))}
	for i, t := range templates {
		if t.Name == "" {
			return nil, fmt.Errorf("template %d: missing name", i)
		}
		if _, dup := lib.templates[t.Name]; dup {
			return nil, fmt.Errorf("template %q: duplicate name", t.Name)
		}
		if t.MaxHP <= 0 {
			return nil, fmt.Errorf("template %q: max_hp must be positive", t.Name)
		}
		if t.Attack < 0 {
			return nil, fmt.Errorf("template %q: attack must not be negative", t.Name)
		}
		if t.AttackCount <= 0 {
			t.AttackCount = 1
		}
		if t.Range <= 0 {
			t.Range = 1
		}
		t.Dodge = clamp01(t.Dodge)
		for _, name := range t.Capabilities {
			if _, ok := ParseCapability(name); !ok {
				return nil, fmt.Errorf("template %q: unknown capability %q", t.Name, name)
			}
		}
		lib.templates[t.Name] = t
		lib.order = append(lib.order, t.Name)
	}
	return lib, nil
}

// Get returns the template registered under name.
func (lib *TemplateLibrary) Get(name string) (UnitTemplate, bool) {
	t, ok := lib.templates[name]
	return t, ok
}

// Names lists the registered templates in declaration order.
func (lib *TemplateLibrary) Names() []string {
	out := make([]string, len(lib.order))
	copy(out, lib.order)
	return out
}

func (lib *TemplateLibrary) Len() int {
	return len(lib.order)
}

type templateFile struct {
	Templates []UnitTemplate `yaml:"templates"`
}

// LoadTemplateLibrary reads a YAML template file.
func LoadTemplateLibrary(path string) (*TemplateLibrary, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read template library: %w", err)
	}
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse template library: %w", err)
	}
	lib, err := NewTemplateLibrary(file.Templates)
	if err != nil {
		return nil, fmt.Errorf("template library %s: %w", path, err)
	}
	return lib, nil
}

// DefaultLibrary is the built-in roster used when no template file is
// given. One archetype per mechanic, plus unadorned militia.
func DefaultLibrary() *TemplateLibrary {
	lib, err := NewTemplateLibrary([]UnitTemplate{
		{
			Name: "militia", MaxHP: 24, Attack: 5, AttackCount: 1, Armor: 1,
			Speed: 2, Initiative: 2, Dodge: 0.05, Range: 1, MaxResolve: 15,
		},
		{
			Name: "spearman", MaxHP: 30, Attack: 6, AttackCount: 1, Armor: 3,
			Speed: 2, Initiative: 3, Dodge: 0.05, Range: 1, MaxResolve: 20,
			Capabilities: []string{"spear_wall", "zone_of_control"},
		},
		{
			Name: "knight", MaxHP: 40, Attack: 8, AttackCount: 1, Armor: 5,
			Speed: 4, Initiative: 5, Dodge: 0.10, Range: 1, MaxResolve: 25,
			Capabilities: []string{"charge"},
		},
		{
			Name: "archer", MaxHP: 22, Attack: 7, AttackCount: 1, Armor: 1,
			Speed: 3, Initiative: 4, Dodge: 0.15, Range: 5, MaxResolve: 15,
			Capabilities: []string{"ranged"},
		},
		{
			Name: "crossbowman", MaxHP: 26, Attack: 9, AttackCount: 1, Armor: 2,
			Speed: 2, Initiative: 3, Dodge: 0.10, Range: 4, MaxResolve: 15,
			Capabilities: []string{"ranged", "arc_fire"},
		},
		{
			Name: "mage", MaxHP: 18, Attack: 10, AttackCount: 1, Armor: 0,
			Speed: 2, Initiative: 6, Dodge: 0.10, Range: 4, MaxResolve: 30,
			Capabilities: []string{"mage"},
		},
	})
	if err != nil {
		panic(err) // built-in roster is static; a failure here is a programming error
	}
	return lib
}

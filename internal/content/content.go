// Package content names the overlay codes that sit on cell centres of a
// tile map: the portal, collectibles, the player, monsters and markers.
package content

import (
	"fmt"
	"strings"

	"github.com/lawnchairsociety/mazeforge/internal/dice"
	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

// Kind is an overlay tile code.
type Kind int

const (
	Portal Kind = iota + Kind(tilemap.FirstOverlay)
	Heart
	Gem
	Ring
	Sword
	MagicSword
	Player
	Monster
	Bones
	Pebble
)

// Kinds lists every overlay kind in code order.
func Kinds() []Kind {
	return []Kind{Portal, Heart, Gem, Ring, Sword, MagicSword, Player, Monster, Bones, Pebble}
}

type kindInfo struct {
	name        string
	description string
	glyph       rune
	collectible bool
}

var kinds = map[Kind]kindInfo{
	Portal:     {"portal", "portal", '░', false},
	Heart:      {"heart", "health potion (+2 stamina)", '♥', true},
	Gem:        {"gem", "gem", '♦', true},
	Ring:       {"ring", "magic ring (+1 mana)", 'o', true},
	Sword:      {"sword", "sword (+1 damage)", '†', true},
	MagicSword: {"magic-sword", "magic sword (+3 damage)", '‡', true},
	Player:     {"player", "player", '@', false},
	Monster:    {"monster", "monster", '§', false},
	Bones:      {"bones", "bones", 'X', false},
	Pebble:     {"pebble", "pebble", '.', false},
}

// Valid reports whether k is a known overlay code.
func (k Kind) Valid() bool {
	_, ok := kinds[k]
	return ok
}

func (k Kind) String() string {
	if info, ok := kinds[k]; ok {
		return info.name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Description is the player-facing name of the kind.
func (k Kind) Description() string {
	return kinds[k].description
}

// IsCollectible reports whether the kind is something a player picks up.
func (k Kind) IsCollectible() bool {
	return kinds[k].collectible
}

// Glyph returns the rune a terminal draws for the kind, '?' if unknown.
func (k Kind) Glyph() rune {
	if info, ok := kinds[k]; ok {
		return info.glyph
	}
	return '?'
}

// Tile returns the kind as a map tile code.
func (k Kind) Tile() tilemap.Tile {
	return tilemap.Tile(k)
}

// FromTile converts a tile code back to a kind.
func FromTile(t tilemap.Tile) (Kind, bool) {
	k := Kind(t)
	return k, k.Valid()
}

// ParseKind accepts the names returned by String, case-insensitively.
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, k := range Kinds() {
		if kinds[k].name == name {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown content kind %q", s)
}

// Glyph draws any map tile: box drawing for walls and the kind glyph for
// overlays.
func Glyph(t tilemap.Tile) rune {
	if t.IsOverlay() {
		return Kind(t).Glyph()
	}
	return tilemap.Glyph(t)
}

// Entity is an overlay with a maze position.
type Entity struct {
	Kind Kind `json:"kind" yaml:"kind"`
	X    int  `json:"x" yaml:"x"`
	Y    int  `json:"y" yaml:"y"`
}

// MoveTo updates the entity's cell.
func (e *Entity) MoveTo(x, y int) {
	e.X = x
	e.Y = y
}

// Stats are the fighting attributes of living entities.
type Stats struct {
	Skill          int `json:"skill"`
	Stamina        int `json:"stamina"`
	InitialStamina int `json:"initial_stamina"`
}

// IsAlive reports whether any stamina is left.
func (s Stats) IsAlive() bool { return s.Stamina > 0 }

// RollPlayer rolls a fresh player: skill 1d4+8, stamina 1d6+18.
func RollPlayer(r dice.Roller) Stats {
	stamina := dice.RollWithBonus(r, 1, 6, 18)
	return Stats{
		Skill:          dice.RollWithBonus(r, 1, 4, 8),
		Stamina:        stamina,
		InitialStamina: stamina,
	}
}

// RollMonster rolls a monster: skill 1d6+4, stamina 1d6+6.
func RollMonster(r dice.Roller) Stats {
	stamina := dice.RollWithBonus(r, 1, 6, 6)
	return Stats{
		Skill:          dice.RollWithBonus(r, 1, 6, 4),
		Stamina:        stamina,
		InitialStamina: stamina,
	}
}

package content

import (
	"math/rand"
	"testing"

	"github.com/lawnchairsociety/mazeforge/internal/tilemap"
)

func TestKindCodes(t *testing.T) {
	tests := []struct {
		kind Kind
		code int
	}{
		{Portal, 18},
		{Heart, 19},
		{Gem, 20},
		{Ring, 21},
		{Sword, 22},
		{MagicSword, 23},
		{Player, 24},
		{Monster, 25},
		{Bones, 26},
		{Pebble, 27},
	}

	for _, tc := range tests {
		if int(tc.kind) != tc.code {
			t.Errorf("%s = %d, want %d", tc.kind, int(tc.kind), tc.code)
		}
		if !tc.kind.Tile().IsOverlay() {
			t.Errorf("%s tile is not an overlay", tc.kind)
		}
	}
}

func TestParseKindRoundTrip(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(k.String())
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, err)
		}
	}
	if _, err := ParseKind("dragon"); err == nil {
		t.Error("ParseKind(dragon) should fail")
	}
	if k, err := ParseKind(" Magic-Sword "); err != nil || k != MagicSword {
		t.Errorf("ParseKind is not case-insensitive: %v, %v", k, err)
	}
}

func TestCollectibles(t *testing.T) {
	want := map[Kind]bool{Heart: true, Gem: true, Ring: true, Sword: true, MagicSword: true}
	for _, k := range Kinds() {
		if k.IsCollectible() != want[k] {
			t.Errorf("%s.IsCollectible() = %v", k, k.IsCollectible())
		}
	}
	if Heart.Description() != "health potion (+2 stamina)" {
		t.Errorf("Heart description = %q", Heart.Description())
	}
}

func TestFromTile(t *testing.T) {
	if k, ok := FromTile(tilemap.Tile(24)); !ok || k != Player {
		t.Errorf("FromTile(24) = %v, %v", k, ok)
	}
	if _, ok := FromTile(tilemap.TileHorizontal); ok {
		t.Error("FromTile(17) should not be a kind")
	}
}

func TestGlyph(t *testing.T) {
	if Glyph(Player.Tile()) != '@' {
		t.Errorf("Glyph(player) = %q", Glyph(Player.Tile()))
	}
	if Glyph(tilemap.TileVertical) != '│' {
		t.Errorf("Glyph(16) = %q", Glyph(tilemap.TileVertical))
	}
	if Kind(99).Glyph() != '?' {
		t.Error("unknown kind should draw '?'")
	}
}

func TestEntityMoveTo(t *testing.T) {
	e := Entity{Kind: Player, X: 1, Y: 1}
	e.MoveTo(4, 2)
	if e.X != 4 || e.Y != 2 {
		t.Errorf("entity at (%d,%d), want (4,2)", e.X, e.Y)
	}
}

func TestRollStats(t *testing.T) {
	r := rand.New(rand.NewSource(3))
	for i := 0; i < 100; i++ {
		p := RollPlayer(r)
		if p.Skill < 9 || p.Skill > 12 || p.Stamina < 19 || p.Stamina > 24 {
			t.Fatalf("player stats out of range: %+v", p)
		}
		if p.InitialStamina != p.Stamina || !p.IsAlive() {
			t.Fatalf("player should start at full stamina: %+v", p)
		}

		m := RollMonster(r)
		if m.Skill < 5 || m.Skill > 10 || m.Stamina < 7 || m.Stamina > 12 {
			t.Fatalf("monster stats out of range: %+v", m)
		}
	}
}

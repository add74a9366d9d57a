package actor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/gambit/internal/game/geom"
)

func TestParseArchetype_RoundTrip(t *testing.T) {
	for _, a := range Archetypes {
		parsed, err := ParseArchetype(a.String())
		require.NoError(t, err)
		assert.Equal(t, a, parsed)
	}

	_, err := ParseArchetype("wizard")
	assert.Error(t, err)
}

func TestNewEnemy(t *testing.T) {
	tmpl := &Template{
		ID:        "rook-sentinel",
		Name:      "Rook Sentinel",
		Archetype: ArchetypeRook,
		MaxHP:     5,
		Attack:    2,
	}
	e := NewEnemy("e-1", tmpl, geom.Point{X: 3, Y: 4}, geom.Point{X: 1, Y: 1})

	assert.Equal(t, "e-1", e.UID)
	assert.Equal(t, "rook-sentinel", e.TemplateID)
	assert.Equal(t, 5, e.HP)
	assert.Equal(t, e.Pos, e.Prev)
	assert.True(t, e.Axis.IsZero(), "only pawns carry a walk axis")
}

func TestNewEnemy_PawnAxisFacesPlayer(t *testing.T) {
	tmpl := &Template{ID: "pawn-grunt", Name: "Pawn Grunt", Archetype: ArchetypePawn, MaxHP: 3, Attack: 1}

	tests := []struct {
		name   string
		pos    geom.Point
		facing geom.Point
		want   geom.Delta
	}{
		{name: "player east", pos: geom.Point{X: 2, Y: 5}, facing: geom.Point{X: 8, Y: 6}, want: geom.Delta{DX: 1, DY: 0}},
		{name: "player north", pos: geom.Point{X: 2, Y: 5}, facing: geom.Point{X: 3, Y: 1}, want: geom.Delta{DX: 0, DY: -1}},
		{name: "tie prefers x axis", pos: geom.Point{X: 2, Y: 2}, facing: geom.Point{X: 5, Y: 5}, want: geom.Delta{DX: 1, DY: 0}},
		{name: "player west", pos: geom.Point{X: 9, Y: 5}, facing: geom.Point{X: 1, Y: 5}, want: geom.Delta{DX: -1, DY: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEnemy("e", tmpl, tt.pos, tt.facing)
			assert.Equal(t, tt.want, e.Axis)
		})
	}
}

func TestEnemyMoveAndDamage(t *testing.T) {
	tmpl := &Template{ID: "king", Name: "King", Archetype: ArchetypeKing, MaxHP: 4, Attack: 2}
	e := NewEnemy("e", tmpl, geom.Point{X: 1, Y: 1}, geom.Point{X: 5, Y: 5})

	e.MoveTo(geom.Point{X: 2, Y: 1})
	assert.Equal(t, geom.Point{X: 1, Y: 1}, e.Prev)
	assert.Equal(t, geom.Point{X: 2, Y: 1}, e.Pos)

	e.TakeDamage(3)
	assert.Equal(t, 1, e.HP)
	assert.False(t, e.IsDead())
	e.TakeDamage(5)
	assert.Equal(t, 0, e.HP)
	assert.True(t, e.IsDead())
}

func TestPlayerDamageAndPosition(t *testing.T) {
	p := NewPlayer(geom.Point{X: 4, Y: 4}, 10, 2)

	p.SetPosition(geom.Point{X: 4, Y: 5})
	assert.Equal(t, geom.Point{X: 4, Y: 4}, p.Prev)

	p.TakeDamage(4)
	assert.Equal(t, 6, p.HP)
	assert.False(t, p.IsDead())
	p.TakeDamage(100)
	assert.Equal(t, 0, p.HP)
	assert.True(t, p.IsDead())
}

func TestLoadTemplateFromBytes(t *testing.T) {
	data := []byte(`
id: knight-raider
name: "Knight Raider"
archetype: knight
max_hp: 4
attack: 2
taunts:
  - "The horse bites."
`)
	tmpl, err := LoadTemplateFromBytes(data)
	require.NoError(t, err)
	assert.Equal(t, "knight-raider", tmpl.ID)
	assert.Equal(t, ArchetypeKnight, tmpl.Archetype)
	assert.Equal(t, 4, tmpl.MaxHP)
	assert.Len(t, tmpl.Taunts, 1)
}

func TestLoadTemplateFromBytes_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{name: "missing id", data: "name: X\narchetype: pawn\nmax_hp: 1\nattack: 1\n", want: "id must not be empty"},
		{name: "unknown archetype", data: "id: x\nname: X\narchetype: wizard\nmax_hp: 1\nattack: 1\n", want: "unknown archetype"},
		{name: "zero hp", data: "id: x\nname: X\narchetype: pawn\nmax_hp: 0\nattack: 1\n", want: "max_hp"},
		{name: "zero attack", data: "id: x\nname: X\narchetype: pawn\nmax_hp: 1\nattack: 0\n", want: "attack"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadTemplateFromBytes([]byte(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadTemplates(t *testing.T) {
	dir := t.TempDir()
	one := "id: pawn-grunt\nname: Pawn Grunt\narchetype: pawn\nmax_hp: 3\nattack: 1\n"
	two := "id: queen-widow\nname: Queen Widow\narchetype: queen\nmax_hp: 8\nattack: 3\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pawn.yaml"), []byte(one), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "queen.yaml"), []byte(two), 0644))

	templates, err := LoadTemplates(dir)
	require.NoError(t, err)
	assert.Len(t, templates, 2)
	assert.Equal(t, ArchetypeQueen, templates["queen-widow"].Archetype)
}

func TestLoadTemplates_DuplicateID(t *testing.T) {
	dir := t.TempDir()
	data := "id: pawn-grunt\nname: Pawn Grunt\narchetype: pawn\nmax_hp: 3\nattack: 1\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.yaml"), []byte(data), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.yaml"), []byte(data), 0644))

	_, err := LoadTemplates(dir)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate enemy template ID")
}

func TestLoadShippedTemplates(t *testing.T) {
	templates, err := LoadTemplates("../../../content/enemies")
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	covered := make(map[Archetype]bool)
	for _, tmpl := range templates {
		covered[tmpl.Archetype] = true
	}
	for _, a := range Archetypes {
		assert.True(t, covered[a], "no shipped template for archetype %s", a)
	}
}

package gameserver

import (
	lua "github.com/yuin/gopher-lua"

	"github.com/cory-johannsen/gambit/internal/game/actor"
	"github.com/cory-johannsen/gambit/internal/game/geom"
	"github.com/cory-johannsen/gambit/internal/scripting"
)

// ScriptHooks forwards battle notifications to board Lua scripts. It is the
// only place that knows both the battle types and the hook field names, so
// the scripting package stays free of game imports.
//
// Hook errors are logged and swallowed inside the scripting manager; a
// misbehaving script never reaches the battle.
type ScriptHooks struct {
	scripts *scripting.Manager
}

// NewScriptHooks creates the adapter.
//
// Precondition: scripts must not be nil.
func NewScriptHooks(scripts *scripting.Manager) *ScriptHooks {
	if scripts == nil {
		panic("gameserver.NewScriptHooks: scripts must not be nil")
	}
	return &ScriptHooks{scripts: scripts}
}

// OnEnemyAttack fires the on_attack hook after an enemy lands a hit.
func (s *ScriptHooks) OnEnemyAttack(boardID string, enemy *actor.Enemy, damage, playerHP int) {
	_, _ = s.scripts.CallHookTable(boardID, "on_attack", map[string]lua.LValue{
		"board_id":        lua.LString(boardID),
		"enemy_uid":       lua.LString(enemy.UID),
		"enemy_name":      lua.LString(enemy.Name),
		"enemy_archetype": lua.LString(enemy.Archetype.String()),
		"damage":          lua.LNumber(damage),
		"player_hp":       lua.LNumber(playerHP),
	})
}

// OnEnemyFell fires the on_enemy_fell hook after an enemy drops into a pit.
func (s *ScriptHooks) OnEnemyFell(boardID string, enemy *actor.Enemy, at geom.Point) {
	_, _ = s.scripts.CallHookTable(boardID, "on_enemy_fell", map[string]lua.LValue{
		"board_id":        lua.LString(boardID),
		"enemy_uid":       lua.LString(enemy.UID),
		"enemy_name":      lua.LString(enemy.Name),
		"enemy_archetype": lua.LString(enemy.Archetype.String()),
		"x":               lua.LNumber(at.X),
		"y":               lua.LNumber(at.Y),
	})
}

// OnKnockback fires the on_knockback hook after the player is displaced.
func (s *ScriptHooks) OnKnockback(boardID string, from, to geom.Point) {
	_, _ = s.scripts.CallHookTable(boardID, "on_knockback", map[string]lua.LValue{
		"board_id": lua.LString(boardID),
		"from_x":   lua.LNumber(from.X),
		"from_y":   lua.LNumber(from.Y),
		"to_x":     lua.LNumber(to.X),
		"to_y":     lua.LNumber(to.Y),
	})
}

// OnPlayerSlain fires the on_player_slain hook when the player falls.
func (s *ScriptHooks) OnPlayerSlain(boardID string) {
	_, _ = s.scripts.CallHookTable(boardID, "on_player_slain", map[string]lua.LValue{
		"board_id": lua.LString(boardID),
	})
}

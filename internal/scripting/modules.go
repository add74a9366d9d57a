package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers all arena.* Lua tables into L.
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: The arena global is defined in L with the log, enemy,
// board, and event submodules.
func (m *Manager) RegisterModules(L *lua.LState) {
	arena := L.NewTable()
	L.SetGlobal("arena", arena)
	L.SetField(arena, "log", m.logModule(L))
	L.SetField(arena, "enemy", m.enemyModule(L))
	L.SetField(arena, "board", m.boardModule(L))
	L.SetField(arena, "event", m.eventModule(L))
}

// logModule exposes the manager's zap logger to scripts. Script lines are
// tagged so operators can tell them from engine output.
func (m *Manager) logModule(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "debug", L.NewFunction(func(L *lua.LState) int {
		m.logger.Debug(L.CheckString(1), zap.String("source", "lua"))
		return 0
	}))
	L.SetField(tbl, "info", L.NewFunction(func(L *lua.LState) int {
		m.logger.Info(L.CheckString(1), zap.String("source", "lua"))
		return 0
	}))
	L.SetField(tbl, "warn", L.NewFunction(func(L *lua.LState) int {
		m.logger.Warn(L.CheckString(1), zap.String("source", "lua"))
		return 0
	}))
	L.SetField(tbl, "error", L.NewFunction(func(L *lua.LState) int {
		m.logger.Error(L.CheckString(1), zap.String("source", "lua"))
		return 0
	}))
	return tbl
}

// enemyModule exposes read-only enemy queries backed by the GetEnemy
// callback. Every function returns nil when the callback is absent or the
// UID is unknown.
func (m *Manager) enemyModule(L *lua.LState) *lua.LTable {
	resolve := func(L *lua.LState) *EnemyInfo {
		uid := L.CheckString(1)
		if m.GetEnemy == nil {
			return nil
		}
		return m.GetEnemy(uid)
	}

	tbl := L.NewTable()
	L.SetField(tbl, "get", L.NewFunction(func(L *lua.LState) int {
		info := resolve(L)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(enemyToTable(L, info))
		return 1
	}))
	L.SetField(tbl, "get_hp", L.NewFunction(func(L *lua.LState) int {
		info := resolve(L)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LNumber(info.HP))
		return 1
	}))
	L.SetField(tbl, "get_name", L.NewFunction(func(L *lua.LState) int {
		info := resolve(L)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(info.Name))
		return 1
	}))
	L.SetField(tbl, "get_archetype", L.NewFunction(func(L *lua.LState) int {
		info := resolve(L)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		L.Push(lua.LString(info.Archetype))
		return 1
	}))
	L.SetField(tbl, "get_pos", L.NewFunction(func(L *lua.LState) int {
		info := resolve(L)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		pos := L.NewTable()
		L.SetField(pos, "x", lua.LNumber(info.X))
		L.SetField(pos, "y", lua.LNumber(info.Y))
		L.Push(pos)
		return 1
	}))
	return tbl
}

// boardModule exposes board metadata and the broadcast channel.
func (m *Manager) boardModule(L *lua.LState) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "get", L.NewFunction(func(L *lua.LState) int {
		boardID := L.CheckString(1)
		if m.GetBoard == nil {
			L.Push(lua.LNil)
			return 1
		}
		info := m.GetBoard(boardID)
		if info == nil {
			L.Push(lua.LNil)
			return 1
		}
		out := L.NewTable()
		L.SetField(out, "id", lua.LString(info.ID))
		L.SetField(out, "name", lua.LString(info.Name))
		L.SetField(out, "width", lua.LNumber(info.Width))
		L.SetField(out, "height", lua.LNumber(info.Height))
		L.Push(out)
		return 1
	}))
	L.SetField(tbl, "broadcast", L.NewFunction(func(L *lua.LState) int {
		boardID := L.CheckString(1)
		msg := L.CheckString(2)
		if m.Broadcast != nil {
			m.Broadcast(boardID, msg)
		}
		return 0
	}))
	return tbl
}

// eventModule is a stub surface for a future event bus. The functions
// accept anything and do nothing, so scripts written against the richer
// API load cleanly today.
func (m *Manager) eventModule(L *lua.LState) *lua.LTable {
	stub := func(name string) *lua.LFunction {
		return L.NewFunction(func(L *lua.LState) int {
			m.logger.Debug("scripting: event stub invoked", zap.String("fn", name))
			return 0
		})
	}
	tbl := L.NewTable()
	L.SetField(tbl, "register_listener", stub("register_listener"))
	L.SetField(tbl, "emit", stub("emit"))
	L.SetField(tbl, "schedule", stub("schedule"))
	return tbl
}

// enemyToTable converts an EnemyInfo into a Lua table.
func enemyToTable(L *lua.LState, e *EnemyInfo) *lua.LTable {
	tbl := L.NewTable()
	L.SetField(tbl, "uid", lua.LString(e.UID))
	L.SetField(tbl, "name", lua.LString(e.Name))
	L.SetField(tbl, "archetype", lua.LString(e.Archetype))
	L.SetField(tbl, "hp", lua.LNumber(e.HP))
	L.SetField(tbl, "max_hp", lua.LNumber(e.MaxHP))
	L.SetField(tbl, "attack", lua.LNumber(e.Attack))
	L.SetField(tbl, "x", lua.LNumber(e.X))
	L.SetField(tbl, "y", lua.LNumber(e.Y))
	return tbl
}

package scripting

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// globalBoardID is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no board VM is found.
const globalBoardID = "__global__"

// EnemyInfo is a snapshot of an enemy's state passed to Lua callbacks.
type EnemyInfo struct {
	UID       string
	Name      string
	Archetype string
	HP        int
	MaxHP     int
	Attack    int
	X         int
	Y         int
}

// BoardInfo is a snapshot of a board passed to Lua callbacks.
type BoardInfo struct {
	ID     string
	Name   string
	Width  int
	Height int
}

// boardVM is one board's Lua VM. Its mutex serializes execution; mutating a
// shared LState from two goroutines corrupts it.
type boardVM struct {
	mu     sync.Mutex
	L      *lua.LState
	limit  int
	cancel context.CancelFunc
}

// armBudget installs a fresh opcode budget for the next execution.
// Precondition: vm.mu held.
func (vm *boardVM) armBudget() {
	if vm.cancel != nil {
		vm.cancel()
	}
	vm.cancel = ApplyInstructionLimit(vm.L, vm.limit)
}

// release cancels the budget and closes the VM.
// Precondition: vm.mu held.
func (vm *boardVM) release() {
	if vm.cancel != nil {
		vm.cancel()
	}
	vm.L.Close()
}

// Manager owns one sandboxed LState per board and exposes hook dispatch.
//
// Manager is safe for concurrent use after construction. Each board VM is
// single-threaded; a per-VM mutex serializes concurrent calls to the same
// board while different boards run concurrently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*boardVM
	logger *zap.Logger

	// Injected after construction. nil = no-op in arena.* modules.
	GetEnemy  func(uid string) *EnemyInfo
	GetBoard  func(boardID string) *BoardInfo
	Broadcast func(boardID, msg string)
}

// NewManager creates a Manager.
//
// Precondition: logger must not be nil.
// Postcondition: Returns a non-nil Manager with an empty board map.
func NewManager(logger *zap.Logger) *Manager {
	if logger == nil {
		panic("scripting.NewManager: logger must not be nil")
	}
	return &Manager{
		vms:    make(map[string]*boardVM),
		logger: logger,
	}
}

// LoadBoard creates a sandboxed VM for boardID, registers all arena.*
// modules, then executes every *.lua file in scriptDir in lexicographic
// order.
//
// Precondition: boardID must be non-empty; scriptDir must be a readable directory.
// Postcondition: Board VM is registered; returns error on Lua load failure.
func (m *Manager) LoadBoard(boardID, scriptDir string, instLimit int) error {
	return m.loadInto(boardID, scriptDir, instLimit)
}

// LoadGlobal creates the "__global__" VM for shared battle scripts
// accessible as a CallHook fallback from any board.
//
// Precondition: scriptDir must be a readable directory.
// Postcondition: Global VM is registered; returns error on Lua load failure.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalBoardID, scriptDir, instLimit)
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	limit := instLimit
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	L, cancel := NewSandboxedState(limit)
	vm := &boardVM{L: L, limit: limit, cancel: cancel}
	m.RegisterModules(L)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		vm.release()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		vm.armBudget()
		if err := L.DoFile(path); err != nil {
			vm.release()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	old := m.vms[key]
	m.vms[key] = vm
	m.mu.Unlock()
	if old != nil {
		old.mu.Lock()
		old.release()
		old.mu.Unlock()
	}
	m.logger.Info("scripts loaded",
		zap.String("board", key),
		zap.Int("files", len(luaFiles)),
		zap.Int("instruction_limit", limit))
	return nil
}

// lookup resolves boardID to its VM, falling back to the global VM.
func (m *Manager) lookup(boardID string) *boardVM {
	m.mu.RLock()
	defer m.mu.RUnlock()
	vm, ok := m.vms[boardID]
	if !ok {
		vm = m.vms[globalBoardID]
	}
	return vm
}

// CallHook calls the named Lua global function in boardID's VM. If the
// board has no VM, the __global__ VM is tried as a fallback. Returns
// (LNil, nil) if the hook is not defined or no VM exists. Lua runtime
// errors are logged at Warn level and never propagated; a misbehaving
// script must not decide a battle.
//
// Precondition: args must be valid lua.LValue instances.
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(boardID, hook string, args ...lua.LValue) (lua.LValue, error) {
	vm := m.lookup(boardID)
	if vm == nil {
		m.logger.Info("scripting: no VM for board",
			zap.String("board", boardID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	return m.call(vm, boardID, hook, args...)
}

// CallHookTable builds a table from fields and invokes hook with it as the
// single argument. Battle notifications use this so scripts read named
// fields instead of positional arguments.
func (m *Manager) CallHookTable(boardID, hook string, fields map[string]lua.LValue) (lua.LValue, error) {
	vm := m.lookup(boardID)
	if vm == nil {
		m.logger.Info("scripting: no VM for board",
			zap.String("board", boardID),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()
	tbl := vm.L.NewTable()
	for k, v := range fields {
		vm.L.SetField(tbl, k, v)
	}
	return m.call(vm, boardID, hook, tbl)
}

// call invokes hook on vm with a fresh opcode budget.
// Precondition: vm.mu held.
func (m *Manager) call(vm *boardVM, boardID, hook string, args ...lua.LValue) (lua.LValue, error) {
	fn := vm.L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	vm.armBudget()
	if err := vm.L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, args...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("board", boardID),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := vm.L.Get(-1)
	vm.L.Pop(1)
	return ret, nil
}

// Close releases every VM. CallHook on a closed Manager returns LNil.
func (m *Manager) Close() {
	m.mu.Lock()
	vms := m.vms
	m.vms = make(map[string]*boardVM)
	m.mu.Unlock()

	for _, vm := range vms {
		vm.mu.Lock()
		vm.release()
		vm.mu.Unlock()
	}
}

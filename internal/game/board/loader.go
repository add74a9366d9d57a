package board

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/gambit/internal/game/geom"
)

// yamlBoardFile is the top-level YAML structure for board files.
type yamlBoardFile struct {
	Board yamlBoard `yaml:"board"`
}

// yamlBoard is the YAML representation of a board.
type yamlBoard struct {
	ID          string            `yaml:"id"`
	Name        string            `yaml:"name"`
	Floor       int               `yaml:"floor"`
	Legend      map[string]string `yaml:"legend"`
	Rows        []string          `yaml:"rows"`
	PlayerStart geom.Point        `yaml:"player_start"`
	Signs       []yamlSign        `yaml:"signs"`
	Spawns      []yamlSpawn       `yaml:"spawns"`
}

// yamlSign attaches a message to a sign cell.
type yamlSign struct {
	At   geom.Point `yaml:"at"`
	Text string     `yaml:"text"`
}

// yamlSpawn is the YAML representation of an enemy placement.
type yamlSpawn struct {
	Template string     `yaml:"template"`
	At       geom.Point `yaml:"at"`
}

// LoadBoardFromFile reads and validates a single board YAML file.
//
// Precondition: path must point to a valid YAML board file.
// Postcondition: Returns a validated Board or a non-nil error.
func LoadBoardFromFile(path string) (*Board, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading board file %s: %w", path, err)
	}
	return LoadBoardFromBytes(data)
}

// LoadBoardFromBytes parses and validates a board from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the board schema.
// Postcondition: Returns a validated Board or a non-nil error.
func LoadBoardFromBytes(data []byte) (*Board, error) {
	var file yamlBoardFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing board YAML: %w", err)
	}

	board, err := convertYAMLBoard(file.Board)
	if err != nil {
		return nil, err
	}
	if err := board.Validate(); err != nil {
		return nil, fmt.Errorf("validating board: %w", err)
	}

	return board, nil
}

// LoadBoardsFromDir loads all YAML files in a directory as boards.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated boards or the first error encountered.
func LoadBoardsFromDir(dir string) ([]*Board, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading board directory %s: %w", dir, err)
	}

	var boards []*Board
	ids := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		board, err := LoadBoardFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading board from %s: %w", name, err)
		}
		if prev, ok := ids[board.ID]; ok {
			return nil, fmt.Errorf("duplicate board ID %q in %s and %s", board.ID, prev, name)
		}
		ids[board.ID] = name
		boards = append(boards, board)
	}

	if len(boards) == 0 {
		return nil, fmt.Errorf("no board files found in %s", dir)
	}

	return boards, nil
}

// convertYAMLBoard converts the parsed YAML structures into the domain type.
// Legend resolution and row geometry are checked here because the Board type
// cannot represent the violations; everything else is left to Validate.
func convertYAMLBoard(yb yamlBoard) (*Board, error) {
	legend := make(map[rune]TileKind, len(yb.Legend))
	for key, value := range yb.Legend {
		runes := []rune(key)
		if len(runes) != 1 {
			return nil, fmt.Errorf("board %q: legend key %q must be a single rune", yb.ID, key)
		}
		kind, err := ParseTileKind(value)
		if err != nil {
			return nil, fmt.Errorf("board %q: legend %q: %w", yb.ID, key, err)
		}
		legend[runes[0]] = kind
	}

	if len(yb.Rows) == 0 {
		return nil, fmt.Errorf("board %q: rows must not be empty", yb.ID)
	}
	width := len([]rune(yb.Rows[0]))
	floor := yb.Floor
	if floor == 0 {
		floor = 1
	}
	board := &Board{
		ID:          yb.ID,
		Name:        yb.Name,
		Floor:       floor,
		PlayerStart: yb.PlayerStart,
		width:       width,
		height:      len(yb.Rows),
		tiles:       make([]Tile, 0, width*len(yb.Rows)),
	}

	for y, row := range yb.Rows {
		runes := []rune(row)
		if len(runes) != width {
			return nil, fmt.Errorf("board %q: row %d has width %d, want %d", yb.ID, y, len(runes), width)
		}
		for x, r := range runes {
			kind, ok := legend[r]
			if !ok {
				return nil, fmt.Errorf("board %q: row %d col %d: rune %q not in legend", yb.ID, y, x, string(r))
			}
			board.tiles = append(board.tiles, Tile{Kind: kind})
		}
	}

	for _, ys := range yb.Signs {
		if !board.InBounds(ys.At) {
			return nil, fmt.Errorf("board %q: sign at %v is out of bounds", yb.ID, ys.At)
		}
		idx := ys.At.Y*width + ys.At.X
		if board.tiles[idx].Kind != TileSign {
			return nil, fmt.Errorf("board %q: sign text at %v placed on %s tile", yb.ID, ys.At, board.tiles[idx].Kind)
		}
		if strings.TrimSpace(ys.Text) == "" {
			return nil, fmt.Errorf("board %q: sign at %v has empty text", yb.ID, ys.At)
		}
		board.tiles[idx].SignText = strings.TrimSpace(ys.Text)
	}

	for _, sp := range yb.Spawns {
		board.Spawns = append(board.Spawns, Spawn{Template: sp.Template, At: sp.At})
	}

	return board, nil
}

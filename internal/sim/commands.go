package sim

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/vovakirdan/raid-kernel/internal/core"
)

// CommandType is the wire tag of a command.
type CommandType string

const (
	CmdMove    CommandType = "MOVE"
	CmdDash    CommandType = "DASH"
	CmdShoot   CommandType = "SHOOT"
	CmdReload  CommandType = "RELOAD"
	CmdHack    CommandType = "HACK"
	CmdUseItem CommandType = "USE_ITEM"
	CmdLoot    CommandType = "LOOT"
	CmdSeal    CommandType = "SEAL"
	CmdExtract CommandType = "EXTRACT"
)

// Command is one unit's order for a turn. The set of implementations is closed.
type Command interface {
	// Actor is the id of the unit that acts.
	Actor() string
	Type() CommandType
	command()
}

// MoveCommand walks along a path whose first tile is the unit's position.
type MoveCommand struct {
	UnitID string
	Path   []core.Vec2
}

// DashCommand is a longer, paid move.
type DashCommand struct {
	UnitID string
	Path   []core.Vec2
}

// ShootCommand fires the primary weapon (or the built-in weapon for enemies).
type ShootCommand struct {
	UnitID   string
	TargetID string
}

// ReloadCommand refills the primary weapon.
type ReloadCommand struct {
	UnitID string
}

// HackCommand opens a door or drains a console. Force only applies to doors.
type HackCommand struct {
	UnitID   string
	ObjectID string
	Force    bool
}

// UseItemCommand spends one charge of a consumable.
// TargetID and TargetPos are optional; empty means the user.
type UseItemCommand struct {
	UnitID    string
	ItemID    string
	TargetID  string
	TargetPos *core.Vec2
}

// LootCommand empties an adjacent crate into the backpack.
type LootCommand struct {
	UnitID  string
	CrateID string
}

// SealCommand moves a backpack item into the seal slot at the end of the turn.
type SealCommand struct {
	UnitID string
	ItemID string
}

// ExtractCommand ends the mission if the unit stands on the extraction tile.
type ExtractCommand struct {
	UnitID string
}

func (c MoveCommand) Actor() string    { return c.UnitID }
func (c DashCommand) Actor() string    { return c.UnitID }
func (c ShootCommand) Actor() string   { return c.UnitID }
func (c ReloadCommand) Actor() string  { return c.UnitID }
func (c HackCommand) Actor() string    { return c.UnitID }
func (c UseItemCommand) Actor() string { return c.UnitID }
func (c LootCommand) Actor() string    { return c.UnitID }
func (c SealCommand) Actor() string    { return c.UnitID }
func (c ExtractCommand) Actor() string { return c.UnitID }

func (MoveCommand) Type() CommandType    { return CmdMove }
func (DashCommand) Type() CommandType    { return CmdDash }
func (ShootCommand) Type() CommandType   { return CmdShoot }
func (ReloadCommand) Type() CommandType  { return CmdReload }
func (HackCommand) Type() CommandType    { return CmdHack }
func (UseItemCommand) Type() CommandType { return CmdUseItem }
func (LootCommand) Type() CommandType    { return CmdLoot }
func (SealCommand) Type() CommandType    { return CmdSeal }
func (ExtractCommand) Type() CommandType { return CmdExtract }

func (MoveCommand) command()    {}
func (DashCommand) command()    {}
func (ShootCommand) command()   {}
func (ReloadCommand) command()  {}
func (HackCommand) command()    {}
func (UseItemCommand) command() {}
func (LootCommand) command()    {}
func (SealCommand) command()    {}
func (ExtractCommand) command() {}

// movePath returns the path of a MOVE or DASH command.
func movePath(c Command) ([]core.Vec2, bool) {
	switch c := c.(type) {
	case MoveCommand:
		return c.Path, true
	case DashCommand:
		return c.Path, true
	}
	return nil, false
}

// sortByActor returns a copy of cmds stably ordered by unit id.
func sortByActor(cmds []Command) []Command {
	out := slices.Clone(cmds)
	slices.SortStableFunc(out, func(a, b Command) int {
		return strings.Compare(a.Actor(), b.Actor())
	})
	return out
}

// Wire format: {"droneId": ..., "type": ..., "params": {...}}.

type envelope struct {
	DroneID string          `json:"droneId"`
	Type    CommandType     `json:"type"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type pathParams struct {
	Path []core.Vec2 `json:"path"`
}

type shootParams struct {
	TargetID string `json:"targetId"`
}

type hackParams struct {
	ObjectID string `json:"objectId"`
	Force    bool   `json:"force,omitempty"`
}

type useItemParams struct {
	ItemID    string     `json:"itemId"`
	TargetID  string     `json:"targetId,omitempty"`
	TargetPos *core.Vec2 `json:"targetPos,omitempty"`
}

type lootParams struct {
	CrateID string `json:"crateId"`
}

type sealParams struct {
	ItemID string `json:"itemId"`
}

// EncodeCommand renders a command in its wire form.
func EncodeCommand(c Command) ([]byte, error) {
	var params any
	switch c := c.(type) {
	case MoveCommand:
		params = pathParams{Path: nonNilPath(c.Path)}
	case DashCommand:
		params = pathParams{Path: nonNilPath(c.Path)}
	case ShootCommand:
		params = shootParams{TargetID: c.TargetID}
	case HackCommand:
		params = hackParams{ObjectID: c.ObjectID, Force: c.Force}
	case UseItemCommand:
		params = useItemParams{ItemID: c.ItemID, TargetID: c.TargetID, TargetPos: c.TargetPos}
	case LootCommand:
		params = lootParams{CrateID: c.CrateID}
	case SealCommand:
		params = sealParams{ItemID: c.ItemID}
	case ReloadCommand, ExtractCommand:
	default:
		return nil, fmt.Errorf("sim: cannot encode command %T", c)
	}

	env := envelope{DroneID: c.Actor(), Type: c.Type()}
	if params != nil {
		raw, err := json.Marshal(params)
		if err != nil {
			return nil, err
		}
		env.Params = raw
	}
	return json.Marshal(env)
}

func nonNilPath(p []core.Vec2) []core.Vec2 {
	if p == nil {
		return []core.Vec2{}
	}
	return p
}

// DecodeCommand parses one command from its wire form.
func DecodeCommand(data []byte) (Command, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("sim: malformed command: %w", err)
	}
	if env.DroneID == "" {
		return nil, fmt.Errorf("sim: command %s has no droneId", env.Type)
	}

	params := func(dst any) error {
		if len(env.Params) == 0 {
			return fmt.Errorf("sim: command %s for %s has no params", env.Type, env.DroneID)
		}
		if err := json.Unmarshal(env.Params, dst); err != nil {
			return fmt.Errorf("sim: bad params for %s: %w", env.Type, err)
		}
		return nil
	}

	switch env.Type {
	case CmdMove, CmdDash:
		var p pathParams
		if err := params(&p); err != nil {
			return nil, err
		}
		if env.Type == CmdDash {
			return DashCommand{UnitID: env.DroneID, Path: p.Path}, nil
		}
		return MoveCommand{UnitID: env.DroneID, Path: p.Path}, nil
	case CmdShoot:
		var p shootParams
		if err := params(&p); err != nil {
			return nil, err
		}
		return ShootCommand{UnitID: env.DroneID, TargetID: p.TargetID}, nil
	case CmdReload:
		return ReloadCommand{UnitID: env.DroneID}, nil
	case CmdHack:
		var p hackParams
		if err := params(&p); err != nil {
			return nil, err
		}
		return HackCommand{UnitID: env.DroneID, ObjectID: p.ObjectID, Force: p.Force}, nil
	case CmdUseItem:
		var p useItemParams
		if err := params(&p); err != nil {
			return nil, err
		}
		return UseItemCommand{UnitID: env.DroneID, ItemID: p.ItemID, TargetID: p.TargetID, TargetPos: p.TargetPos}, nil
	case CmdLoot:
		var p lootParams
		if err := params(&p); err != nil {
			return nil, err
		}
		return LootCommand{UnitID: env.DroneID, CrateID: p.CrateID}, nil
	case CmdSeal:
		var p sealParams
		if err := params(&p); err != nil {
			return nil, err
		}
		return SealCommand{UnitID: env.DroneID, ItemID: p.ItemID}, nil
	case CmdExtract:
		return ExtractCommand{UnitID: env.DroneID}, nil
	default:
		return nil, fmt.Errorf("sim: unknown command type %q", env.Type)
	}
}

// Batch is one turn of commands with JSON support for the wire form.
type Batch []Command

// MarshalJSON encodes every command in wire form.
func (b Batch) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(b))
	for _, c := range b {
		raw, err := EncodeCommand(c)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a JSON array of wire commands.
func (b *Batch) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("sim: command batch must be an array: %w", err)
	}
	out := make(Batch, 0, len(raws))
	for i, raw := range raws {
		c, err := DecodeCommand(raw)
		if err != nil {
			return fmt.Errorf("command %d: %w", i, err)
		}
		out = append(out, c)
	}
	*b = out
	return nil
}

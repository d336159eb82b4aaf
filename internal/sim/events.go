package sim

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vovakirdan/raid-kernel/internal/catalog"
	"github.com/vovakirdan/raid-kernel/internal/core"
)

// EventType is the wire tag of an event.
type EventType string

const (
	EvMovementResolved  EventType = "MovementResolved"
	EvShotFired         EventType = "ShotFired"
	EvDamageApplied     EventType = "DamageApplied"
	EvStatusApplied     EventType = "StatusApplied"
	EvDoorOpened        EventType = "DoorOpened"
	EvHackSucceeded     EventType = "HackSucceeded"
	EvHackFailed        EventType = "HackFailed"
	EvLootPicked        EventType = "LootPicked"
	EvSealSucceeded     EventType = "SealSucceeded"
	EvSealFailed        EventType = "SealFailed"
	EvExtractionSuccess EventType = "ExtractionSuccess"
	EvMissionFailed     EventType = "MissionFailed"
	EvPowerConsumed     EventType = "PowerConsumed"
	EvCommandFailed     EventType = "CommandFailed"
	EvPowerLow          EventType = "PowerLow"
)

// Event is one entry of a turn's log. The set of implementations is closed.
type Event interface {
	Type() EventType
	event()
}

// MovementResolvedEvent reports the outcome of a MOVE or DASH.
type MovementResolvedEvent struct {
	UnitID  string    `json:"unitId"`
	From    core.Vec2 `json:"from"`
	To      core.Vec2 `json:"to"`
	Success bool      `json:"success"`
}

// ShotFiredEvent is emitted before damage is resolved. Damage is the weapon's base.
type ShotFiredEvent struct {
	AttackerID string `json:"attackerId"`
	TargetID   string `json:"targetId"`
	Damage     int    `json:"damage"`
}

// DamageAppliedEvent reports hp change. Heals carry a negative amount.
type DamageAppliedEvent struct {
	TargetID string `json:"targetId"`
	Amount   int    `json:"amount"`
	HPLeft   int    `json:"hpLeft"`
}

type StatusAppliedEvent struct {
	TargetID string           `json:"targetId"`
	StatusID catalog.StatusID `json:"statusId"`
	Turns    int              `json:"turns"`
}

// DoorOpenedEvent carries the method: "hack" or "force".
type DoorOpenedEvent struct {
	DoorID string `json:"doorId"`
	Method string `json:"method"`
}

type HackSucceededEvent struct {
	ObjectID string `json:"objectId"`
}

type HackFailedEvent struct {
	ObjectID string `json:"objectId"`
	Reason   string `json:"reason"`
}

type LootPickedEvent struct {
	UnitID  string   `json:"unitId"`
	CrateID string   `json:"crateId"`
	Items   []string `json:"items"`
}

type SealSucceededEvent struct {
	UnitID string `json:"unitId"`
	ItemID string `json:"itemId"`
}

type SealFailedEvent struct {
	UnitID string `json:"unitId"`
	Reason string `json:"reason"`
}

type ExtractionSuccessEvent struct {
	UnitID string `json:"unitId"`
}

type MissionFailedEvent struct {
	Reason string `json:"reason"`
}

// PowerConsumedEvent reports a change of the reserve. Restores are negative.
type PowerConsumedEvent struct {
	Amount int    `json:"amount"`
	Reason string `json:"reason"`
}

// CommandFailedEvent reports a rejected command with a reason code.
type CommandFailedEvent struct {
	UnitID string `json:"unitId"`
	Reason string `json:"reason"`
}

type PowerLowEvent struct {
	Turns int `json:"turns"`
}

func (MovementResolvedEvent) Type() EventType  { return EvMovementResolved }
func (ShotFiredEvent) Type() EventType         { return EvShotFired }
func (DamageAppliedEvent) Type() EventType     { return EvDamageApplied }
func (StatusAppliedEvent) Type() EventType     { return EvStatusApplied }
func (DoorOpenedEvent) Type() EventType        { return EvDoorOpened }
func (HackSucceededEvent) Type() EventType     { return EvHackSucceeded }
func (HackFailedEvent) Type() EventType        { return EvHackFailed }
func (LootPickedEvent) Type() EventType        { return EvLootPicked }
func (SealSucceededEvent) Type() EventType     { return EvSealSucceeded }
func (SealFailedEvent) Type() EventType        { return EvSealFailed }
func (ExtractionSuccessEvent) Type() EventType { return EvExtractionSuccess }
func (MissionFailedEvent) Type() EventType     { return EvMissionFailed }
func (PowerConsumedEvent) Type() EventType     { return EvPowerConsumed }
func (CommandFailedEvent) Type() EventType     { return EvCommandFailed }
func (PowerLowEvent) Type() EventType          { return EvPowerLow }

func (MovementResolvedEvent) event()  {}
func (ShotFiredEvent) event()         {}
func (DamageAppliedEvent) event()     {}
func (StatusAppliedEvent) event()     {}
func (DoorOpenedEvent) event()        {}
func (HackSucceededEvent) event()     {}
func (HackFailedEvent) event()        {}
func (LootPickedEvent) event()        {}
func (SealSucceededEvent) event()     {}
func (SealFailedEvent) event()        {}
func (ExtractionSuccessEvent) event() {}
func (MissionFailedEvent) event()     {}
func (PowerConsumedEvent) event()     {}
func (CommandFailedEvent) event()     {}
func (PowerLowEvent) event()          {}

// Events is an ordered event log.
type Events []Event

func (e *Events) emit(ev Event) {
	*e = append(*e, ev)
}

// OfType returns the events with the given tag, in order.
func (e Events) OfType(t EventType) Events {
	var out Events
	for _, ev := range e {
		if ev.Type() == t {
			out = append(out, ev)
		}
	}
	return out
}

// EncodeEvent renders an event as a JSON object with a leading "type" field.
func EncodeEvent(ev Event) ([]byte, error) {
	body, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	tag, err := json.Marshal(ev.Type())
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.WriteString(`{"type":`)
	buf.Write(tag)
	if len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}

// DecodeEvent parses an event written by EncodeEvent.
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Type EventType `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("sim: malformed event: %w", err)
	}

	var ev Event
	var err error
	switch head.Type {
	case EvMovementResolved:
		ev, err = decodeAs[MovementResolvedEvent](data)
	case EvShotFired:
		ev, err = decodeAs[ShotFiredEvent](data)
	case EvDamageApplied:
		ev, err = decodeAs[DamageAppliedEvent](data)
	case EvStatusApplied:
		ev, err = decodeAs[StatusAppliedEvent](data)
	case EvDoorOpened:
		ev, err = decodeAs[DoorOpenedEvent](data)
	case EvHackSucceeded:
		ev, err = decodeAs[HackSucceededEvent](data)
	case EvHackFailed:
		ev, err = decodeAs[HackFailedEvent](data)
	case EvLootPicked:
		ev, err = decodeAs[LootPickedEvent](data)
	case EvSealSucceeded:
		ev, err = decodeAs[SealSucceededEvent](data)
	case EvSealFailed:
		ev, err = decodeAs[SealFailedEvent](data)
	case EvExtractionSuccess:
		ev, err = decodeAs[ExtractionSuccessEvent](data)
	case EvMissionFailed:
		ev, err = decodeAs[MissionFailedEvent](data)
	case EvPowerConsumed:
		ev, err = decodeAs[PowerConsumedEvent](data)
	case EvCommandFailed:
		ev, err = decodeAs[CommandFailedEvent](data)
	case EvPowerLow:
		ev, err = decodeAs[PowerLowEvent](data)
	default:
		return nil, fmt.Errorf("sim: unknown event type %q", head.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("sim: bad %s event: %w", head.Type, err)
	}
	return ev, nil
}

func decodeAs[T Event](data []byte) (Event, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// MarshalJSON encodes every event with its type tag.
func (e Events) MarshalJSON() ([]byte, error) {
	out := make([]json.RawMessage, 0, len(e))
	for _, ev := range e {
		raw, err := EncodeEvent(ev)
		if err != nil {
			return nil, err
		}
		out = append(out, raw)
	}
	return json.Marshal(out)
}

// UnmarshalJSON decodes a JSON array of tagged events.
func (e *Events) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("sim: event log must be an array: %w", err)
	}
	out := make(Events, 0, len(raws))
	for i, raw := range raws {
		ev, err := DecodeEvent(raw)
		if err != nil {
			return fmt.Errorf("event %d: %w", i, err)
		}
		out = append(out, ev)
	}
	*e = out
	return nil
}

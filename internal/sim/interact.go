package sim

// Failure reason codes carried by CommandFailed, HackFailed and SealFailed.
const (
	ReasonDuplicateCommand  = "duplicate_command"
	ReasonInsufficientPower = "insufficient_power"
	ReasonEMP               = "emp"
	ReasonInvalidTarget     = "invalid_target"
	ReasonNoWeapon          = "no_weapon"
	ReasonEmptyAmmo         = "empty_ammo"
	ReasonNoLOS             = "no_los"
	ReasonNoItems           = "no_items"
	ReasonMissingItem       = "missing_item"
	ReasonNoLoadout         = "no_loadout"
	ReasonMissingCrate      = "missing_crate"
	ReasonNotAdjacent       = "not_adjacent"
	ReasonNothingFits       = "nothing_fits"
	ReasonNoInventory       = "no_inventory"
	ReasonNotOnExtraction   = "not_on_extraction"

	ReasonMissing     = "missing"
	ReasonAlreadyOpen = "already_open"
	ReasonUsed        = "used"
	ReasonLowPower    = "low_power"

	ReasonAlreadySealed = "already_sealed"
	ReasonTookDamage    = "took_damage"
)

// Door opening methods.
const (
	MethodHack  = "hack"
	MethodForce = "force"
)

// TryOpenDoor unlocks and opens a door next to the unit.
func TryOpenDoor(s *GameState, u *Unit, doorID, method string, events *Events) bool {
	d := s.Doors[doorID]
	switch {
	case d == nil:
		events.emit(HackFailedEvent{ObjectID: doorID, Reason: ReasonMissing})
		return false
	case !adjacent(u.Pos, d.Pos):
		events.emit(HackFailedEvent{ObjectID: doorID, Reason: ReasonNotAdjacent})
		return false
	case d.Open:
		events.emit(HackFailedEvent{ObjectID: doorID, Reason: ReasonAlreadyOpen})
		return false
	}
	d.Locked = false
	d.Open = true
	events.emit(DoorOpenedEvent{DoorID: doorID, Method: method})
	return true
}

// TryUseConsole drains a console next to the unit into the power reserve.
// An overdrawn reserve is forgiven first: the restore starts from zero.
func (e *Engine) TryUseConsole(s *GameState, u *Unit, consoleID string, events *Events) bool {
	c := s.Consoles[consoleID]
	switch {
	case c == nil:
		events.emit(HackFailedEvent{ObjectID: consoleID, Reason: ReasonMissing})
		return false
	case !adjacent(u.Pos, c.Pos):
		events.emit(HackFailedEvent{ObjectID: consoleID, Reason: ReasonNotAdjacent})
		return false
	case c.Used:
		events.emit(HackFailedEvent{ObjectID: consoleID, Reason: ReasonUsed})
		return false
	}
	restore := e.rules.Console.PowerRestore
	c.Used = true
	s.Power = max(0, s.Power) + restore
	events.emit(HackSucceededEvent{ObjectID: consoleID})
	events.emit(PowerConsumedEvent{Amount: -restore, Reason: PowerReasonConsole})
	return true
}

// TryLoot moves as many crate items as fit into the unit's backpack, in
// crate order. Items that do not fit stay in the crate.
func TryLoot(u *Unit, crate *Crate, events *Events) []ItemStack {
	if u.Inventory == nil {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNoInventory})
		return nil
	}
	if !adjacent(u.Pos, crate.Pos) {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNotAdjacent})
		return nil
	}

	var picked, remaining []ItemStack
	for _, it := range crate.Items {
		if u.Inventory.CanFit(it.Size) {
			u.Inventory.Backpack = append(u.Inventory.Backpack, it)
			picked = append(picked, it)
		} else {
			remaining = append(remaining, it)
		}
	}
	if len(picked) == 0 {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNothingFits})
		return nil
	}

	if remaining == nil {
		remaining = []ItemStack{}
	}
	crate.Items = remaining
	crate.Opened = true
	ids := make([]string, 0, len(picked))
	for _, it := range picked {
		ids = append(ids, it.ItemID)
	}
	events.emit(LootPickedEvent{UnitID: u.ID, CrateID: crate.ID, Items: ids})
	return picked
}

// TrySeal moves a backpack item into the empty seal slot.
func TrySeal(u *Unit, itemID string, events *Events) bool {
	if u.Inventory == nil {
		events.emit(SealFailedEvent{UnitID: u.ID, Reason: ReasonNoInventory})
		return false
	}
	if u.Inventory.SealedItem != nil {
		events.emit(SealFailedEvent{UnitID: u.ID, Reason: ReasonAlreadySealed})
		return false
	}
	idx := -1
	for i, it := range u.Inventory.Backpack {
		if it.ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		events.emit(SealFailedEvent{UnitID: u.ID, Reason: ReasonMissingItem})
		return false
	}
	item := u.Inventory.Backpack[idx]
	u.Inventory.Backpack = append(u.Inventory.Backpack[:idx], u.Inventory.Backpack[idx+1:]...)
	u.Inventory.SealedItem = &item
	events.emit(SealSucceededEvent{UnitID: u.ID, ItemID: itemID})
	return true
}

// ApplyExtraction ends the mission if the unit stands on an extraction tile.
func ApplyExtraction(s *GameState, u *Unit, events *Events) bool {
	t := s.Grid.Tile(u.Pos)
	if t == nil || !t.Extraction {
		events.emit(CommandFailedEvent{UnitID: u.ID, Reason: ReasonNotOnExtraction})
		return false
	}
	s.Mission.Status = MissionExtracted
	events.emit(ExtractionSuccessEvent{UnitID: u.ID})
	return true
}

package types

import "fmt"

// Slot is one of the three daily collection windows.
type Slot string

const (
	SlotMorning Slot = "pagi"
	SlotMidday  Slot = "siang"
	SlotNight   Slot = "malam"
)

var slotHours = []struct {
	hour int
	slot Slot
}{
	{8, SlotMorning},
	{12, SlotMidday},
	{20, SlotNight},
}

// Slots returns the slots in chronological order.
func Slots() []Slot {
	return []Slot{SlotMorning, SlotMidday, SlotNight}
}

// ResolveSlot maps a wall-clock hour to its collection slot. Only the exact
// collection hours (08, 12, 20) resolve; every other hour reports false.
func ResolveSlot(hour int) (Slot, bool) {
	for _, sh := range slotHours {
		if sh.hour == hour {
			return sh.slot, true
		}
	}
	return "", false
}

// NextSlotHour returns the next collection hour after hour and whether it
// falls on the following day.
func NextSlotHour(hour int) (next int, tomorrow bool) {
	for _, sh := range slotHours {
		if sh.hour > hour {
			return sh.hour, false
		}
	}
	return slotHours[0].hour, true
}

// ParseSlot accepts the stored names and their English labels.
func ParseSlot(s string) (Slot, error) {
	switch s {
	case "pagi", "morning":
		return SlotMorning, nil
	case "siang", "midday":
		return SlotMidday, nil
	case "malam", "night":
		return SlotNight, nil
	}
	return "", fmt.Errorf("unknown slot %q (allowed: pagi, siang, malam)", s)
}

func (s Slot) Valid() bool {
	return s == SlotMorning || s == SlotMidday || s == SlotNight
}

// Hour is the wall-clock collection hour of s, or -1 for an unknown slot.
func (s Slot) Hour() int {
	for _, sh := range slotHours {
		if sh.slot == s {
			return sh.hour
		}
	}
	return -1
}

// Label is the English display name.
func (s Slot) Label() string {
	switch s {
	case SlotMorning:
		return "morning"
	case SlotMidday:
		return "midday"
	case SlotNight:
		return "night"
	}
	return string(s)
}

package types

import "testing"

func TestResolveSlot_OffScheduleHours(t *testing.T) {
	for h := 0; h < 24; h++ {
		if h == 8 || h == 12 || h == 20 {
			continue
		}
		if got, ok := ResolveSlot(h); ok {
			t.Errorf("ResolveSlot(%d) = %q, true; want no slot", h, got)
		}
	}
}

func TestResolveSlot_CollectionHours(t *testing.T) {
	tests := []struct {
		hour int
		want Slot
	}{
		{8, SlotMorning},
		{12, SlotMidday},
		{20, SlotNight},
	}
	seen := make(map[Slot]bool)
	for _, tt := range tests {
		got, ok := ResolveSlot(tt.hour)
		if !ok {
			t.Fatalf("ResolveSlot(%d) reported no slot", tt.hour)
		}
		if got != tt.want {
			t.Errorf("ResolveSlot(%d) = %q; want %q", tt.hour, got, tt.want)
		}
		if seen[got] {
			t.Errorf("ResolveSlot(%d) = %q duplicates another hour", tt.hour, got)
		}
		seen[got] = true
	}
}

func TestSlotHour(t *testing.T) {
	for _, slot := range Slots() {
		got, ok := ResolveSlot(slot.Hour())
		if !ok || got != slot {
			t.Errorf("ResolveSlot(%q.Hour()=%d) = %q, %v; want %q", slot, slot.Hour(), got, ok, slot)
		}
	}
	if h := Slot("subuh").Hour(); h != -1 {
		t.Errorf("unknown slot Hour() = %d; want -1", h)
	}
}

func TestNextSlotHour(t *testing.T) {
	tests := []struct {
		hour         int
		wantHour     int
		wantTomorrow bool
	}{
		{0, 8, false},
		{8, 12, false},
		{13, 20, false},
		{20, 8, true},
		{23, 8, true},
	}
	for _, tt := range tests {
		got, tomorrow := NextSlotHour(tt.hour)
		if got != tt.wantHour || tomorrow != tt.wantTomorrow {
			t.Errorf("NextSlotHour(%d) = %d, %v; want %d, %v", tt.hour, got, tomorrow, tt.wantHour, tt.wantTomorrow)
		}
	}
}

func TestParseSlot(t *testing.T) {
	for in, want := range map[string]Slot{
		"pagi": SlotMorning, "morning": SlotMorning,
		"siang": SlotMidday, "midday": SlotMidday,
		"malam": SlotNight, "night": SlotNight,
	} {
		got, err := ParseSlot(in)
		if err != nil {
			t.Fatalf("ParseSlot(%q) error = %v", in, err)
		}
		if got != want {
			t.Errorf("ParseSlot(%q) = %q; want %q", in, got, want)
		}
	}
	if _, err := ParseSlot("sore"); err == nil {
		t.Error("ParseSlot(\"sore\") error = nil; want error")
	}
	if Slot("sore").Valid() {
		t.Error("Slot(\"sore\").Valid() = true")
	}
}

func TestRoundTemperature(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{22.53, 22.5},
		{25.46, 25.5},
		{22.549, 22.5},
		{30, 30},
	}
	for _, tt := range tests {
		if got := RoundTemperature(tt.in); got != tt.want {
			t.Errorf("RoundTemperature(%v) = %v; want %v", tt.in, got, tt.want)
		}
	}
}

func TestMonthName(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{in: 1, want: "Januari"},
		{in: 3, want: "Maret"},
		{in: 8, want: "Agustus"},
		{in: 12, want: "Desember"},
		{in: 0, want: "Unknown"},
		{in: 13, want: "Unknown"},
	}
	for _, tt := range tests {
		if got := MonthName(tt.in); got != tt.want {
			t.Errorf("MonthName(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

package types

// DayPivot is one date's readings reshaped into one column per slot. Absent
// slots are nil.
type DayPivot struct {
	Date    string   `json:"date"`
	Morning *float64 `json:"pagi"`
	Midday  *float64 `json:"siang"`
	Night   *float64 `json:"malam"`
}

// Value returns the column for slot.
func (p DayPivot) Value(slot Slot) *float64 {
	switch slot {
	case SlotMorning:
		return p.Morning
	case SlotMidday:
		return p.Midday
	case SlotNight:
		return p.Night
	}
	return nil
}

// Max is the highest present slot value, or nil when the day has none.
func (p DayPivot) Max() *float64 {
	var out *float64
	for _, v := range []*float64{p.Morning, p.Midday, p.Night} {
		if v == nil {
			continue
		}
		if out == nil || *v > *out {
			m := *v
			out = &m
		}
	}
	return out
}

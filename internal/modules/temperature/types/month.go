package types

var monthNames = [...]string{
	"Januari", "Februari", "Maret", "April", "Mei", "Juni",
	"Juli", "Agustus", "September", "Oktober", "November", "Desember",
}

// MonthName returns the Indonesian name of month 1-12, or "Unknown".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return monthNames[month-1]
}

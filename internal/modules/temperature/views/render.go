package views

import (
	"embed"
	"errors"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates
var viewsFS embed.FS

var dashboardTmpl *template.Template

// loadTemplatesFromFS loads dashboard templates from the given fs and dir.
// Tests use it to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	dashboardTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads the embedded templates. Call during startup before
// serving requests.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// SlotValue is one cell of the today panel.
type SlotValue struct {
	Slot    string
	Label   string
	Hour    string
	Display string
	Present bool
}

type TodayData struct {
	Date  string
	Slots []SlotValue
}

type MonthRow struct {
	Date    string
	Morning string
	Midday  string
	Night   string
	Highest string
}

// PaginationItem is one entry in the pagination bar: either a page number or an ellipsis.
type PaginationItem struct {
	Page     int
	Ellipsis bool
}

type MonthData struct {
	Year        int
	Month       int
	MonthName   string
	Rows        []MonthRow
	TotalRows   int
	CurrentPage int
	TotalPages  int
	HasPrev     bool
	HasNext     bool
	PrevPage    int
	NextPage    int
	PageItems   []PaginationItem
}

// MonthOption is an entry of the month selector.
type MonthOption struct {
	Value    int
	Name     string
	Selected bool
}

type DashboardData struct {
	Today      TodayData
	Month      MonthData
	Months     []MonthOption
	FeedSource string
	TempMin    string
	TempMax    string
	MaxDate    string
}

func RenderDashboard(w io.Writer, data *DashboardData) error {
	if dashboardTmpl == nil {
		return errors.New("dashboard template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "dashboard.html", data)
}

// RenderMonthPartial executes only the monthly table partial into w.
func RenderMonthPartial(w io.Writer, data *MonthData) error {
	if dashboardTmpl == nil {
		return errors.New("month template not loaded: call views.LoadTemplates during startup")
	}
	return dashboardTmpl.ExecuteTemplate(w, "partials/month.html", data)
}

package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/fortuna/rinkboard/internal/league"
	"github.com/fortuna/rinkboard/internal/schedule"
	"github.com/fortuna/rinkboard/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the HTML views.
type Renderer struct {
	tmpl *template.Template
}

// New parses the page templates
func New() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// TeamPage is everything the team view shows. Either section may be
// missing, with its error message shown in its place.
type TeamPage struct {
	Team          string
	Schedule      *service.TeamSchedule
	ScheduleError string
	Stats         *league.TeamStats
	StatsError    string
}

// Record returns the W-L-T line for the header, or "" without a schedule.
func (p TeamPage) Record() string {
	if p.Schedule == nil {
		return ""
	}
	w, l, t := p.Schedule.Record()
	return fmt.Sprintf("%d-%d-%d", w, l, t)
}

func (r *Renderer) Standings(w io.Writer, s *service.Standings) error {
	return r.tmpl.ExecuteTemplate(w, "standings.html", s)
}

func (r *Renderer) Team(w io.Writer, page TeamPage) error {
	return r.tmpl.ExecuteTemplate(w, "team.html", page)
}

var funcs = template.FuncMap{
	"slug": Slug,
	// candidates are fixed paths or the constant placeholder
	"logo": func(team string) template.URL {
		return template.URL(LogoCandidates(team)[0])
	},
	"logoFallback": func(team string) string {
		return strings.Join(LogoCandidates(team)[1:], " ")
	},
	"inc":      func(i int) int { return i + 1 },
	"date":     DateLabel,
	"score":    ScoreLabel,
	"result":   func(g schedule.GameRecord, team string) string { return g.Result(team) },
	"opponent": func(g schedule.GameRecord, team string) string { return g.Opponent(team) },
	"lower":    strings.ToLower,
	"stamp": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Local().Format("1/2/2006, 03:04 PM")
	},
	"pct": func(f float64) string {
		return fmt.Sprintf("%.1f%%", f)
	},
}

// DateLabel formats an ISO date as "May 4", or "TBD" when unknown.
func DateLabel(iso string) string {
	if iso == "" {
		return "TBD"
	}
	d, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return "TBD"
	}
	return d.Format("Jan 2")
}

// ScoreLabel formats a game's final score, with the overtime marker when
// present. Unplayed games read "TBD".
func ScoreLabel(g schedule.GameRecord) string {
	if g.Future() {
		return "TBD"
	}
	s := fmt.Sprintf("%d - %d", g.Team1.Final, g.Team2.Final)
	if g.Team1.OT != "" {
		s += " (" + g.Team1.OT + ")"
	}
	return s
}

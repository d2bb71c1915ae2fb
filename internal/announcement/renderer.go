// Package announcement renders the channel text for a game occurrence.
package announcement

import (
	"html"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/example/game-announcer/internal/persistence"
	"github.com/example/game-announcer/internal/roster"
)

const (
	KeyStandard   = "standard"
	KeyLeague     = "league"
	KeyTournament = "tournament"
	KeyCustom     = "custom"

	// DateLayout renders as "DD.MM (HH:MM)".
	DateLayout = "02.01 (15:04)"

	defaultHost      = "[Ведущий]"
	unknownPlayer    = "Неизвестный игрок"
	emptyRoster      = "Пока никто не записался 😔"
	reserveHeader    = "\n⏳ Резерв:"
	customRosterHead = "\n\n👥 Участники:\n"
)

const standardBody = `🏆 {title}

📝 {description}

📅 {date}
📍 {location}

👥 Участники ({current_players}/{max_players}):
{players_list}

🎯 Ведущий: {host}`

// rosterBlock starts at a marker line ending its heading with a colon and runs
// to the end of the text.
var rosterBlock = regexp.MustCompile(`\n👥 Участники[^\n]*?:(?:\n.*)*`)

// Template is a named announcement layout.
type Template struct {
	Key  string
	Name string
	Body string
}

var builtinTemplates = []Template{
	{Key: KeyStandard, Name: "Стандартная игра", Body: standardBody},
	{Key: KeyLeague, Name: "ЛИГА КЛУБОВ + ЛИГА МИТ", Body: standardBody},
	{Key: KeyTournament, Name: "Турнир", Body: standardBody},
}

// Data is everything needed to render one announcement.
type Data struct {
	TemplateKey string
	Title       string
	Description string
	StartsAt    time.Time
	Location    string
	Capacity    int
	Host        string
	CustomText  *string
	Roster      []persistence.RosterEntry
}

// DataFor assembles render input from a stored occurrence and its roster.
func DataFor(o persistence.Occurrence, entries []persistence.RosterEntry) Data {
	return Data{
		TemplateKey: o.TemplateKey,
		Title:       o.Title,
		Description: o.Description,
		StartsAt:    o.StartsAt,
		Location:    o.Location,
		Capacity:    o.Capacity,
		Host:        o.Host,
		CustomText:  o.CustomText,
		Roster:      entries,
	}
}

// Renderer turns Data into channel text. It holds no mutable state.
type Renderer struct {
	templates map[string]Template
	location  *time.Location
}

// NewRenderer constructs a renderer that formats dates in loc (UTC when nil).
func NewRenderer(loc *time.Location) *Renderer {
	if loc == nil {
		loc = time.UTC
	}
	templates := make(map[string]Template, len(builtinTemplates))
	for _, tmpl := range builtinTemplates {
		templates[tmpl.Key] = tmpl
	}
	return &Renderer{templates: templates, location: loc}
}

// Templates lists the built-in layouts ordered by key.
func (r *Renderer) Templates() []Template {
	out := make([]Template, 0, len(r.templates))
	for _, tmpl := range r.templates {
		out = append(out, tmpl)
	}
	slices.SortFunc(out, func(a, b Template) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// Render produces the announcement text. Unknown template keys fall back to
// the standard layout. The custom key renders free text with a live roster block.
func (r *Renderer) Render(data Data) string {
	if data.TemplateKey == KeyCustom {
		return r.renderCustom(data)
	}

	tmpl, ok := r.templates[data.TemplateKey]
	if !ok {
		tmpl = r.templates[KeyStandard]
	}

	host := data.Host
	if strings.TrimSpace(host) == "" {
		host = defaultHost
	}

	replacer := strings.NewReplacer(
		"{title}", html.EscapeString(data.Title),
		"{description}", html.EscapeString(data.Description),
		"{date}", data.StartsAt.In(r.location).Format(DateLayout),
		"{location}", html.EscapeString(data.Location),
		"{current_players}", strconv.Itoa(roster.MainCount(data.Roster)),
		"{max_players}", strconv.Itoa(data.Capacity),
		"{players_list}", PlayerList(data.Roster),
		"{host}", html.EscapeString(host),
	)
	return replacer.Replace(tmpl.Body)
}

func (r *Renderer) renderCustom(data Data) string {
	text := data.Description
	if data.CustomText != nil && *data.CustomText != "" {
		text = *data.CustomText
	}

	// The block runs to the end of the text, so replacing it keeps only the prefix.
	block := customRosterHead + PlayerList(data.Roster)
	if loc := rosterBlock.FindStringIndex(text); loc != nil {
		return strings.TrimRight(text[:loc[0]], "\n") + block
	}
	return text + block
}

// PlayerList renders the numbered main roster followed by the reserve section.
// Entries must already be ordered main first, each by registration time.
func PlayerList(entries []persistence.RosterEntry) string {
	var main, reserve []string
	for _, entry := range entries {
		name := entry.Nickname
		if name == "" {
			name = unknownPlayer
		}
		name = html.EscapeString(name)

		if entry.IsReserve {
			reserve = append(reserve, "R"+strconv.Itoa(len(reserve)+1)+". "+name)
		} else {
			main = append(main, strconv.Itoa(len(main)+1)+". "+name)
		}
	}

	if len(main) == 0 && len(reserve) == 0 {
		return emptyRoster
	}

	lines := main
	if len(reserve) > 0 {
		lines = append(lines, reserveHeader)
		lines = append(lines, reserve...)
	}
	return strings.Join(lines, "\n")
}

// Package html renders statistics, search results and memory lists as
// standalone HTML pages styled with Tailwind CSS v4 (CDN). Memory bodies go
// through goldmark + chroma and are sanitized with bluemonday.
package html

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"

	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"

	"github.com/sonnes/obsession/chart"
	"github.com/sonnes/obsession/config"
	"github.com/sonnes/obsession/memory"
	"github.com/sonnes/obsession/render"
	"github.com/sonnes/obsession/search"
	"github.com/sonnes/obsession/stats"
)

//go:embed templates/*.html
var content embed.FS

// Renderer renders standalone HTML pages.
type Renderer struct {
	md     goldmark.Markdown
	policy *bluemonday.Policy
	tmpl   *template.Template

	// UserColor and CharColor tint each side of the charts. They must be
	// validated hex colors.
	UserColor string
	CharColor string

	// Interactive adds the server's search box, links and memory forms.
	// Files written by the CLI leave it off.
	Interactive bool
}

// New creates an HTML Renderer with goldmark configured for GFM and syntax
// highlighting.
func New() *Renderer {
	md := goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,
			highlighting.NewHighlighting(
				highlighting.WithStyle("dracula"),
				highlighting.WithFormatOptions(
					chromahtml.WithClasses(false), // inline styles for standalone pages
				),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(), // collected memories are chat HTML
			gmhtml.WithHardWraps(),
		),
	)

	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("style").OnElements("span", "pre", "code")

	tmpl := template.Must(
		template.New("page.html").
			Funcs(funcMap()).
			ParseFS(content, "templates/*.html"),
	)

	return &Renderer{
		md:        md,
		policy:    policy,
		tmpl:      tmpl,
		UserColor: config.DefaultUserColor,
		CharColor: config.DefaultCharColor,
	}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"formatNumber":  render.FormatNumber,
		"formatPercent": render.FormatPercent,
		"pathEscape":    url.PathEscape,
		"memoryDate": func(m memory.Memory) string {
			d, _ := memory.Preview(m)
			return d
		},
	}
}

// pageData is the template data passed to page.html.
type pageData struct {
	Title       string
	Character   string
	Interactive bool
	Query       string
	Stats       *stats.Stats
	UserName    string
	CharName    string
	UserColor   template.CSS
	CharColor   template.CSS
	UserShare   float64
	CharShare   float64
	PeakHour    int
	HoursChart  template.HTML // empty when there is nothing to draw
	TrendChart  template.HTML
	TrendStart  string
	TrendEnd    string
}

// hitData is one search result in search.html.
type hitData struct {
	Index    int
	Name     string
	IsUser   bool
	SendDate string
	Body     template.HTML
}

type searchData struct {
	Title       string
	Character   string
	Interactive bool
	Query       string
	Hits        []hitData
	UserColor   template.CSS
	CharColor   template.CSS
}

// memoryData is one memory in memories.html.
type memoryData struct {
	memory.Memory
	Body template.HTML
}

type memoriesData struct {
	Title       string
	Character   string
	Interactive bool
	Query       string
	Fuzzy       bool
	Memories    []memoryData
}

type indexData struct {
	Title      string
	Characters []string
}

// Render writes the statistics page of s to w.
func (r *Renderer) Render(w io.Writer, s *stats.Stats) error {
	return r.RenderStats(w, s.CharName, s)
}

// RenderStats writes the statistics page. character is the route key of
// the page, which differs from s.CharName when a folder was renamed.
func (r *Renderer) RenderStats(w io.Writer, character string, s *stats.Stats) error {
	charts := render.BuildCharts(s, render.ChartHeight)
	user, char := s.Shares()

	data := pageData{
		Title:       render.Title(s.CharName),
		Character:   character,
		Interactive: r.Interactive,
		Stats:       s,
		UserName:    displayName(s.UserName, "User"),
		CharName:    displayName(s.CharName, "Char"),
		UserColor:   template.CSS(r.UserColor),
		CharColor:   template.CSS(r.CharColor),
		UserShare:   user,
		CharShare:   char,
		PeakHour:    s.PeakHour(),
		TrendStart:  "- / -",
		TrendEnd:    "- / -",
	}
	if !charts.Hours.IsEmpty() {
		data.HoursChart = chart.SVG(charts.Hours, r.UserColor)
	}
	if !charts.Trend.IsEmpty() {
		data.TrendChart = chart.SVG(charts.Trend, r.CharColor)
	}
	if n := len(charts.TrendLabels); n > 0 {
		data.TrendStart = charts.TrendLabels[0]
		data.TrendEnd = charts.TrendLabels[n-1]
	}

	if err := r.tmpl.ExecuteTemplate(w, "page.html", data); err != nil {
		return fmt.Errorf("render stats page: %w", err)
	}
	return nil
}

// RenderSearch writes the search results page for query.
func (r *Renderer) RenderSearch(w io.Writer, query string, hits []search.Hit) error {
	return r.RenderSearchPage(w, "", query, hits)
}

// RenderSearchPage writes the search results page of a character's chats.
func (r *Renderer) RenderSearchPage(w io.Writer, character, query string, hits []search.Hit) error {
	data := searchData{
		Title:       "Search: " + query,
		Character:   character,
		Interactive: r.Interactive,
		Query:       query,
		UserColor:   template.CSS(r.UserColor),
		CharColor:   template.CSS(r.CharColor),
	}
	for _, h := range hits {
		data.Hits = append(data.Hits, hitData{
			Index:    h.Index,
			Name:     displayName(h.Message.Name, "?"),
			IsUser:   h.Message.IsUser,
			SendDate: h.Message.SendDate,
			Body:     highlight(h),
		})
	}

	if err := r.tmpl.ExecuteTemplate(w, "search.html", data); err != nil {
		return fmt.Errorf("render search page: %w", err)
	}
	return nil
}

// RenderMemories writes the memory list of a character.
func (r *Renderer) RenderMemories(w io.Writer, character string, list []memory.Memory) error {
	return r.RenderMemoriesPage(w, character, list, "", false)
}

// RenderMemoriesPage writes the memory list with the active filter.
func (r *Renderer) RenderMemoriesPage(w io.Writer, character string, list []memory.Memory, query string, fuzzy bool) error {
	data := memoriesData{
		Title:       "Memories: " + character,
		Character:   character,
		Interactive: r.Interactive,
		Query:       query,
		Fuzzy:       fuzzy,
	}
	for _, m := range list {
		body, err := r.renderBody(m.Text)
		if err != nil {
			return fmt.Errorf("render memory %s: %w", m.ID, err)
		}
		data.Memories = append(data.Memories, memoryData{Memory: m, Body: body})
	}

	if err := r.tmpl.ExecuteTemplate(w, "memories.html", data); err != nil {
		return fmt.Errorf("render memories page: %w", err)
	}
	return nil
}

// RenderIndex writes the list of characters.
func (r *Renderer) RenderIndex(w io.Writer, characters []string) error {
	data := indexData{Title: render.Title(""), Characters: characters}
	if err := r.tmpl.ExecuteTemplate(w, "index.html", data); err != nil {
		return fmt.Errorf("render index page: %w", err)
	}
	return nil
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}

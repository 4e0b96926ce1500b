// Package export lays a curriculum out as a paginated document and writes
// it as PDF, plain text, an XLSX workbook or PNG page images.
package export

import (
	"fmt"
	"strings"

	"github.com/p-n-ai/curriculum-designer/internal/curriculum"
)

// Style is the typographic role of a line.
type Style int

const (
	StyleBody Style = iota
	StyleTitle
	StyleSubtitle
	StyleHeading
	StyleRule
	StyleBlank
)

// Line is one laid-out line of a page.
type Line struct {
	Text   string `json:"text"`
	Style  Style  `json:"style"`
	Indent int    `json:"indent"`
}

// Page is a fixed-height list of lines.
type Page struct {
	Lines []Line `json:"lines"`
}

// Document is a paginated curriculum.
type Document struct {
	Title  string `json:"title"`
	Layout Layout `json:"layout"`
	Pages  []Page `json:"pages"`
}

// Layout is the page model: content width in columns and page height in
// lines. A section heading needs HeadingRoom free lines or it starts a new
// page.
type Layout struct {
	Width       int `json:"width"`
	Height      int `json:"height"`
	HeadingRoom int `json:"heading_room"`
	ListIndent  int `json:"list_indent"`
}

// DefaultLayout approximates an A4 page at 10pt.
var DefaultLayout = Layout{Width: 90, Height: 54, HeadingRoom: 4, ListIndent: 2}

const bullet = "• "

type builder struct {
	layout Layout
	pages  []Page
}

func (b *builder) current() *Page {
	if len(b.pages) == 0 {
		b.pages = append(b.pages, Page{})
	}
	return &b.pages[len(b.pages)-1]
}

func (b *builder) ensure(lines int) {
	if len(b.current().Lines)+lines > b.layout.Height {
		b.pages = append(b.pages, Page{})
	}
}

func (b *builder) add(l Line) {
	b.ensure(1)
	p := b.current()
	p.Lines = append(p.Lines, l)
}

func (b *builder) section(title string, items []string, list bool, indent int) {
	b.ensure(b.layout.HeadingRoom)
	b.add(Line{Text: title, Style: StyleHeading})

	prefix := ""
	if list {
		prefix = bullet
	}
	for _, item := range items {
		for _, l := range Wrap(prefix+item, b.layout.Width-indent) {
			b.add(Line{Text: l, Style: StyleBody, Indent: indent})
		}
	}
	b.add(Line{Style: StyleBlank})
}

// Build lays out the curriculum. A zero layout uses DefaultLayout.
func Build(c *curriculum.Curriculum, layout Layout) Document {
	if layout.Width <= 0 || layout.Height <= 0 {
		layout = DefaultLayout
	}
	if layout.HeadingRoom <= 0 {
		layout.HeadingRoom = DefaultLayout.HeadingRoom
	}

	b := &builder{layout: layout}
	title := "Agentic Curriculum: " + c.Subject

	for _, l := range Wrap(title, layout.Width) {
		b.add(Line{Text: l, Style: StyleTitle})
	}
	b.add(Line{Text: fmt.Sprintf("Level: %s | Duration: %s", c.TargetAudience, c.Duration), Style: StyleSubtitle})
	b.add(Line{Text: strings.Repeat("-", layout.Width), Style: StyleRule})

	b.section("1. Vision of the Subject", []string{c.Vision}, false, 0)
	b.section("2. Key Learning Objectives", c.LearningObjectives, true, 0)
	b.section("3. Content Planning (Modules)", []string{"Plan Title: " + c.ContentPlan.Title}, false, 0)

	modules := make([]string, 0, len(c.ContentPlan.Modules))
	for _, m := range c.ContentPlan.Modules {
		modules = append(modules, fmt.Sprintf("%s (%s). Assessment: %s. Topics: %s",
			m.ModuleTitle, m.Weeks, m.Assessment, strings.Join(m.Topics, ", ")))
	}
	b.section("Modules:", modules, true, layout.ListIndent)

	b.section("4. Resources & Guidance", []string{
		"Tips for Success: " + c.ContentPlan.LevelTips,
		"Essential Tools: " + c.ContentPlan.Tools,
	}, false, 0)

	projects := make([]string, 0, len(c.ProjectsByIndustry))
	for _, p := range c.ProjectsByIndustry {
		projects = append(projects, fmt.Sprintf("Project: %s (%s). Description: %s. GitHub: %s",
			p.Title, p.Level, p.Description, p.GithubLink))
	}
	b.section("5. Industry Projects", projects, true, 0)

	refs := make([]string, 0, len(c.References))
	for _, r := range c.References {
		refs = append(refs, fmt.Sprintf("%s - Link: %s", r.Name, r.Link))
	}
	b.section("6. Recommended References", refs, true, 0)

	return Document{Title: title, Layout: layout, Pages: b.pages}
}

// FileName returns the download name for a format extension.
func FileName(c *curriculum.Curriculum, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		return r
	}, strings.TrimSpace(c.Subject))
	if name == "" {
		name = "Curriculum"
	}
	return name + "_Curriculum." + ext
}

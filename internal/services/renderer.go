package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"alfredoptarigan/kryptohire/internal/models"
)

const pdfRenderTimeout = 60 * time.Second

// ResumeRenderer produces the printable form of a resume.
type ResumeRenderer interface {
	RenderHTML(resume *models.Resume) (string, error)
	RenderPDF(ctx context.Context, resume *models.Resume) ([]byte, error)
}

type chromedpRenderer struct {
	tmpl       *template.Template
	chromePath string
}

func NewResumeRenderer(chromePath string) ResumeRenderer {
	return &chromedpRenderer{
		tmpl:       template.Must(template.New("resume").Parse(resumeTemplate)),
		chromePath: chromePath,
	}
}

type layout struct {
	FontSize         float64 `json:"document_font_size"`
	LineHeight       float64 `json:"document_line_height"`
	MarginVertical   float64 `json:"document_margin_vertical"`
	MarginHorizontal float64 `json:"document_margin_horizontal"`
	HeaderNameSize   float64 `json:"header_name_size"`
}

type renderSection struct {
	Key            string
	Title          string
	WorkExperience []models.WorkExperience
	Education      []models.Education
	Skills         []models.Skill
	Projects       []models.Project
}

type renderView struct {
	Name     string
	Contact  []string
	Layout   layout
	Sections []renderSection
}

func (r *chromedpRenderer) RenderHTML(resume *models.Resume) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, buildRenderView(resume)); err != nil {
		return "", fmt.Errorf("failed to render resume html: %w", err)
	}
	return buf.String(), nil
}

func (r *chromedpRenderer) RenderPDF(ctx context.Context, resume *models.Resume) ([]byte, error) {
	html, err := r.RenderHTML(resume)
	if err != nil {
		return nil, err
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if r.chromePath != "" {
		opts = append(opts, chromedp.ExecPath(r.chromePath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, pdfRenderTimeout)
	defer cancel()

	tmpDir, err := os.MkdirTemp("", "resume-")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	htmlPath := filepath.Join(tmpDir, "index.html")
	if err := os.WriteFile(htmlPath, []byte(html), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write resume html: %w", err)
	}

	var pdfBuf []byte
	err = chromedp.Run(runCtx,
		chromedp.Navigate("file://"+htmlPath),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			// US Letter, matching the editor's preview.
			pdfBuf, _, err = page.PrintToPDF().
				WithPrintBackground(true).
				WithPaperWidth(8.5).
				WithPaperHeight(11).
				WithPreferCSSPageSize(true).
				Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to print resume pdf: %w", err)
	}
	return pdfBuf, nil
}

var sectionTitles = map[string]string{
	"work_experience": "Experience",
	"education":       "Education",
	"skills":          "Skills",
	"projects":        "Projects",
}

func buildRenderView(resume *models.Resume) renderView {
	view := renderView{
		Name:   strings.TrimSpace(resume.FirstName + " " + resume.LastName),
		Layout: layout{FontSize: 10, LineHeight: 1.2, MarginVertical: 20, MarginHorizontal: 28, HeaderNameSize: 24},
	}
	if len(resume.DocumentSettings) > 0 {
		_ = json.Unmarshal(resume.DocumentSettings, &view.Layout)
	}

	for _, c := range []string{resume.Email, resume.PhoneNumber, resume.Location, resume.Website, resume.LinkedinURL, resume.GithubURL} {
		if c != "" {
			view.Contact = append(view.Contact, c)
		}
	}

	hidden := hiddenSections(resume)
	order := resume.SectionOrder
	if len(order) == 0 {
		order = models.DefaultSectionOrder
	}

	for _, key := range order {
		if hidden[key] {
			continue
		}
		s := renderSection{Key: key, Title: sectionTitles[key]}
		switch key {
		case "work_experience":
			s.WorkExperience = resume.WorkExperience
		case "education":
			s.Education = resume.Education
		case "skills":
			s.Skills = resume.Skills
		case "projects":
			s.Projects = resume.Projects
		default:
			continue
		}
		if len(s.WorkExperience)+len(s.Education)+len(s.Skills)+len(s.Projects) == 0 {
			continue
		}
		view.Sections = append(view.Sections, s)
	}
	return view
}

func hiddenSections(resume *models.Resume) map[string]bool {
	hidden := map[string]bool{}
	if len(resume.SectionConfigs) == 0 {
		return hidden
	}

	var configs map[string]struct {
		Visible *bool `json:"visible"`
	}
	if err := json.Unmarshal(resume.SectionConfigs, &configs); err != nil {
		return hidden
	}
	for key, c := range configs {
		if c.Visible != nil && !*c.Visible {
			hidden[key] = true
		}
	}
	return hidden
}

const resumeTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<style>
  @page { size: letter; margin: {{.Layout.MarginVertical}}pt {{.Layout.MarginHorizontal}}pt; }
  body { font-family: "Helvetica Neue", Arial, sans-serif; font-size: {{.Layout.FontSize}}pt; line-height: {{.Layout.LineHeight}}; color: #111; }
  h1 { font-size: {{.Layout.HeaderNameSize}}pt; margin: 0; text-align: center; }
  .contact { text-align: center; margin: 4pt 0 12pt; }
  .contact span + span::before { content: " | "; }
  h2 { font-size: 1.1em; text-transform: uppercase; border-bottom: 1px solid #111; margin: 10pt 0 4pt; }
  .row { display: flex; justify-content: space-between; font-weight: bold; }
  .sub { display: flex; justify-content: space-between; font-style: italic; }
  ul { margin: 2pt 0 6pt 14pt; padding: 0; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<div class="contact">{{range .Contact}}<span>{{.}}</span>{{end}}</div>
{{range .Sections}}
<h2>{{.Title}}</h2>
{{range .WorkExperience}}
  <div class="row"><span>{{.Company}}</span><span>{{.Date}}</span></div>
  <div class="sub"><span>{{.Position}}</span><span>{{.Location}}</span></div>
  <ul>{{range .Description}}<li>{{.}}</li>{{end}}</ul>
{{end}}
{{range .Education}}
  <div class="row"><span>{{.School}}</span><span>{{.Date}}</span></div>
  <div class="sub"><span>{{.Degree}}{{if .Field}} in {{.Field}}{{end}}{{if .GPA}} (GPA {{.GPA}}){{end}}</span><span>{{.Location}}</span></div>
  {{if .Achievements}}<ul>{{range .Achievements}}<li>{{.}}</li>{{end}}</ul>{{end}}
{{end}}
{{range .Skills}}
  <div><strong>{{.Category}}:</strong> {{range $i, $item := .Items}}{{if $i}}, {{end}}{{$item}}{{end}}</div>
{{end}}
{{range .Projects}}
  <div class="row"><span>{{.Name}}</span><span>{{.Date}}</span></div>
  <ul>{{range .Description}}<li>{{.}}</li>{{end}}</ul>
{{end}}
{{end}}
</body>
</html>`

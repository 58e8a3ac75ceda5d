package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

//go:embed pages/*.html
var pageFS embed.FS

const fallbackEventName = "your event"

// pageData is the view model shared by every public HTML page
type pageData struct {
	Title     string
	Headline  string
	Message   string
	Failed    bool
	LogoURL   string
	Event     string
	SubmitURL string
	Prefill   suggestPrefill
	Errors    map[string]string
}

type suggestPrefill struct {
	EventDate string
	StartTime string
	EndTime   string
	Notes     string
}

// PageRenderer renders the branded pages shown to clients who follow a
// link from a quote email
type PageRenderer struct {
	status  *template.Template
	suggest *template.Template
	logoURL string
	logger  *zap.Logger
}

// NewPageRenderer parses the embedded page templates
func NewPageRenderer(appURL string, logger *zap.Logger) (*PageRenderer, error) {
	status, err := template.ParseFS(pageFS, "pages/layout.html", "pages/status.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse status page: %w", err)
	}
	suggest, err := template.ParseFS(pageFS, "pages/layout.html", "pages/suggest_time.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse suggest time page: %w", err)
	}
	return &PageRenderer{
		status:  status,
		suggest: suggest,
		logoURL: strings.TrimRight(appURL, "/") + "/images/logo.png",
		logger:  logger,
	}, nil
}

// Status renders a single message page
func (p *PageRenderer) Status(w http.ResponseWriter, status int, title, headline, message string) {
	p.render(w, p.status, status, pageData{
		Title:    title,
		Headline: headline,
		Message:  message,
		Failed:   status >= http.StatusBadRequest,
	})
}

// SuggestTimeForm renders the suggest-time form with any field errors
func (p *PageRenderer) SuggestTimeForm(w http.ResponseWriter, status int, event, submitURL string, prefill suggestPrefill, errors map[string]string) {
	if errors == nil {
		errors = map[string]string{}
	}
	p.render(w, p.suggest, status, pageData{
		Title:     "Suggest a Different Time",
		Headline:  "Suggest a Time",
		Event:     eventName(event),
		SubmitURL: submitURL,
		Prefill:   prefill,
		Errors:    errors,
	})
}

func (p *PageRenderer) render(w http.ResponseWriter, tmpl *template.Template, status int, data pageData) {
	data.LogoURL = p.logoURL

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout.html", data); err != nil {
		p.logger.Error("failed to render page", zap.String("title", data.Title), zap.Error(err))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store, private")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func eventName(event string) string {
	if strings.TrimSpace(event) == "" {
		return fallbackEventName
	}
	return event
}

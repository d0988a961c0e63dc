package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"ap-script-web/internal/adapters"
	"ap-script-web/internal/config"
	"ap-script-web/internal/domain"
	"ap-script-web/internal/pipeline"
	"ap-script-web/internal/prompts"
	"ap-script-web/internal/session"
)

const generatedDoc = `## SYNOPSIS
A keeper guards a haunted light.

## COMIC PANEL STORYBOARD
Panel 1: waves.

## SHORT FILM SCRIPT
FADE IN:
INT. LIGHTHOUSE - NIGHT`

type scriptedGenerator struct {
	replies []string
	errs    []error
	calls   int
}

func (g *scriptedGenerator) Generate(context.Context, string, prompts.Prompt) (string, error) {
	i := g.calls
	g.calls++
	var err error
	if i < len(g.errs) {
		err = g.errs[i]
	}
	if err != nil {
		return "", err
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "", nil
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, string, domain.NotificationRequest) error { return nil }
func (nopNotifier) NotifyError(context.Context, error, domain.NotificationRequest) error {
	return nil
}

var _ adapters.SlackNotifier = nopNotifier{}

type client struct {
	t      *testing.T
	h      *Handler
	cookie *http.Cookie
}

func newTestClient(t *testing.T, gen *scriptedGenerator) *client {
	t.Helper()
	cfg := &config.Config{TemplateDir: "../../../templates"}

	pb, err := prompts.NewBuilder()
	if err != nil {
		t.Fatal(err)
	}
	p, err := pipeline.NewAdaptationPipeline(pipeline.Dependencies{Generator: gen, Prompts: pb, Notifier: nopNotifier{}})
	if err != nil {
		t.Fatal(err)
	}
	store := session.NewStore(session.StoreConfig{
		CookieName: "test_session",
		Secret:     []byte(strings.Repeat("x", 32)),
		TTL:        time.Hour,
	})

	h, err := NewHandler(cfg, store, p)
	if err != nil {
		t.Fatalf("NewHandler: %v", err)
	}
	return &client{t: t, h: h}
}

func (c *client) do(fn http.HandlerFunc, method, target string, form url.Values) *httptest.ResponseRecorder {
	c.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rec := httptest.NewRecorder()
	fn(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == "test_session" {
			c.cookie = ck
		}
	}
	return rec
}

func (c *client) extract(apiKey, sourceURL string) *httptest.ResponseRecorder {
	return c.do(c.h.Extract, http.MethodPost, "/extract", url.Values{"api_key": {apiKey}, "source_url": {sourceURL}})
}

func (c *client) generate(genre string) *httptest.ResponseRecorder {
	return c.do(c.h.Generate, http.MethodPost, "/generate", url.Values{"genre": {genre}})
}

func assertStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()
	if rec.Code != want {
		t.Fatalf("status = %d, want %d; body = %s", rec.Code, want, rec.Body.String())
	}
}

func assertBodyContains(t *testing.T, rec *httptest.ResponseRecorder, wants ...string) {
	t.Helper()
	body := rec.Body.String()
	for _, want := range wants {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func TestIndex_FreshSession(t *testing.T) {
	c := newTestClient(t, &scriptedGenerator{})

	rec := c.do(c.h.Index, http.MethodGet, "/", nil)
	assertStatus(t, rec, http.StatusOK)
	assertBodyContains(t, rec, "Interactive Script Generator", "Where do I get an API key?", "AIza...")
	if strings.Contains(rec.Body.String(), "Content Extracted") {
		t.Error("fresh session should not show an extraction")
	}
	if c.cookie == nil {
		t.Error("session cookie was not issued")
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
}

func TestExtract_ValidationError(t *testing.T) {
	gen := &scriptedGenerator{}
	c := newTestClient(t, gen)

	rec := c.extract("", "https://example.com/post")
	assertStatus(t, rec, http.StatusBadRequest)
	assertBodyContains(t, rec, "Please enter your Gemini API key", `value="https://example.com/post"`)

	rec = c.extract("key", "")
	assertStatus(t, rec, http.StatusBadRequest)
	assertBodyContains(t, rec, "Please enter a URL")

	if gen.calls != 0 {
		t.Errorf("calls = %d, want 0", gen.calls)
	}
}

func TestExtract_RemoteError(t *testing.T) {
	gen := &scriptedGenerator{errs: []error{&domain.CallError{Kind: domain.ErrRemote, Message: "API key not valid. Please pass a valid API key."}}}
	c := newTestClient(t, gen)

	rec := c.extract("bad-key", "https://example.com/post")
	assertStatus(t, rec, http.StatusBadGateway)
	assertBodyContains(t, rec, "API key not valid. Please pass a valid API key.")
}

func TestFullFlow(t *testing.T) {
	gen := &scriptedGenerator{replies: []string{"An essay about lighthouses.", generatedDoc}}
	c := newTestClient(t, gen)

	rec := c.extract("key", "https://example.com/post")
	assertStatus(t, rec, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("location = %q", loc)
	}

	rec = c.do(c.h.Index, http.MethodGet, "/", nil)
	assertStatus(t, rec, http.StatusOK)
	assertBodyContains(t, rec, "Content Extracted", "An essay about lighthouses.", "A key is stored for this session", "Choose a genre...")

	rec = c.generate("")
	assertStatus(t, rec, http.StatusBadRequest)
	assertBodyContains(t, rec, "Please select a genre")
	if gen.calls != 1 {
		t.Fatalf("generate without genre made a call: calls = %d", gen.calls)
	}

	rec = c.generate("Noir")
	assertStatus(t, rec, http.StatusSeeOther)

	rec = c.do(c.h.Index, http.MethodGet, "/?tab=script", nil)
	assertBodyContains(t, rec, "FADE IN:", "output-content monospace", "Genre: Noir", `class="tab tab-script active"`)

	rec = c.do(c.h.Index, http.MethodGet, "/?tab=notes", nil)
	assertBodyContains(t, rec, "Section not found.")

	rec = c.do(c.h.Index, http.MethodGet, "/?tab=full", nil)
	assertBodyContains(t, rec, "## COMIC PANEL STORYBOARD")

	rec = c.do(c.h.Download, http.MethodGet, "/download", nil)
	assertStatus(t, rec, http.StatusOK)
	if ct := rec.Header().Get("Content-Type"); ct != "text/markdown; charset=utf-8" {
		t.Errorf("content type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != `attachment; filename="adaptation-noir.md"` {
		t.Errorf("content disposition = %q", cd)
	}
	if rec.Body.String() != generatedDoc {
		t.Errorf("download body = %q", rec.Body.String())
	}

	rec = c.do(c.h.Reset, http.MethodPost, "/reset", url.Values{})
	assertStatus(t, rec, http.StatusSeeOther)

	rec = c.do(c.h.Index, http.MethodGet, "/", nil)
	body := rec.Body.String()
	if strings.Contains(body, "Content Extracted") || strings.Contains(body, "FADE IN:") {
		t.Error("reset should clear the extraction and the document")
	}
	assertBodyContains(t, rec, "A key is stored for this session")
}

func TestGenerate_BeforeExtract(t *testing.T) {
	gen := &scriptedGenerator{}
	c := newTestClient(t, gen)

	rec := c.generate("Horror")
	assertStatus(t, rec, http.StatusBadRequest)
	if gen.calls != 0 {
		t.Errorf("calls = %d, want 0", gen.calls)
	}
}

func TestGenerate_FailureKeepsSummary(t *testing.T) {
	gen := &scriptedGenerator{
		replies: []string{"summary text"},
		errs:    []error{nil, &domain.CallError{Kind: domain.ErrMalformedResponse, Message: "No text content in response"}},
	}
	c := newTestClient(t, gen)

	assertStatus(t, c.extract("key", "https://example.com"), http.StatusSeeOther)
	rec := c.generate("Comedy")
	assertStatus(t, rec, http.StatusBadGateway)
	assertBodyContains(t, rec, "No text content in response", "summary text", `<option value="Comedy" selected>`)
}

func TestDownload_NothingGenerated(t *testing.T) {
	c := newTestClient(t, &scriptedGenerator{})
	rec := c.do(c.h.Download, http.MethodGet, "/download", nil)
	assertStatus(t, rec, http.StatusNotFound)
}

func TestHealthz(t *testing.T) {
	c := newTestClient(t, &scriptedGenerator{})
	rec := c.do(c.h.Healthz, http.MethodGet, "/healthz", nil)
	assertStatus(t, rec, http.StatusOK)
	if rec.Body.String() != "ok" {
		t.Errorf("body = %q", rec.Body.String())
	}
}

func TestNewHandler_MissingLayout(t *testing.T) {
	_, err := NewHandler(&config.Config{TemplateDir: t.TempDir()}, nil, nil)
	if err == nil {
		t.Error("expected error when layout.html is missing")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("x"), http.StatusBadRequest},
		{&domain.CallError{Kind: domain.ErrNotExtracted}, http.StatusBadRequest},
		{&domain.CallError{Kind: domain.ErrBusy}, http.StatusConflict},
		{&domain.CallError{Kind: domain.ErrRemote}, http.StatusBadGateway},
		{errors.New("anything else"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestBuildIndexView(t *testing.T) {
	snap := session.Snapshot{
		Genre:    domain.GenreHorror,
		Summary:  "s",
		Phase:    session.PhaseGenerated,
		Error:    "previous failure",
		Document: &domain.GeneratedDocument{RawText: "## SYNOPSIS\nA hero rises.\n## SHORT FILM SCRIPT\nFADE IN:\n"},
	}

	data := buildIndexView(snap, domain.SectionStoryboard, formEcho{}, "")
	if data.Content != sectionNotFound {
		t.Errorf("storyboard content = %q", data.Content)
	}
	if data.Error != "previous failure" {
		t.Errorf("error = %q", data.Error)
	}
	if len(data.Tabs) != 5 || !data.Tabs[1].Active {
		t.Errorf("tabs = %+v", data.Tabs)
	}

	data = buildIndexView(snap, domain.SectionSynopsis, formEcho{Genre: "Satire"}, "override")
	if data.Content != "A hero rises." {
		t.Errorf("synopsis content = %q", data.Content)
	}
	if data.Error != "override" || data.Genre != domain.GenreSatire || data.DocumentGenre != domain.GenreHorror {
		t.Errorf("data = %+v", data)
	}
	if data.Monospace {
		t.Error("only the script tab is monospace")
	}
}

func TestBuildIndexView_ExtractedWithBlankSummary(t *testing.T) {
	snap := session.Snapshot{
		SourceURL: "https://example.com/a",
		Phase:     session.PhaseExtracted,
		Extracted: true,
	}

	data := buildIndexView(snap, domain.SectionSynopsis, formEcho{}, "")
	if !data.Extracted {
		t.Error("genre form must be offered once extraction completed, even with an empty summary")
	}
	if data.HasDocument {
		t.Error("no document has been generated yet")
	}

	data = buildIndexView(session.Snapshot{Summary: "stale", Phase: session.PhaseIdle}, domain.SectionSynopsis, formEcho{}, "")
	if data.Extracted {
		t.Error("idle snapshot must not offer the genre form")
	}
}

func TestDownloadFileName(t *testing.T) {
	tests := map[domain.Genre]string{
		domain.GenreActionAdventure: "adaptation-action-adventure.md",
		domain.GenreTeenRomance:     "adaptation-teen-romance.md",
		domain.GenreComingOfAge:     "adaptation-coming-of-age.md",
		"":                          "adaptation.md",
	}
	for genre, want := range tests {
		if got := downloadFileName(genre); got != want {
			t.Errorf("downloadFileName(%q) = %q, want %q", genre, got, want)
		}
	}
}

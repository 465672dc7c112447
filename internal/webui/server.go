// Package webui serves the staged screens. It is a pure consumer of
// session state: every handler reads a snapshot, asks the orchestrator to
// advance when the user acts, and redirects back to the screen matching
// the session's stage.
package webui

import (
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"brandforge/internal/models"
	"brandforge/internal/pipeline"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templatesFS embed.FS

const sessionCookie = "brandforge_session"

type Server struct {
	store  *pipeline.Store
	orch   *pipeline.Orchestrator
	logger *zap.Logger
}

func NewServer(store *pipeline.Store, orch *pipeline.Orchestrator, logger *zap.Logger) *Server {
	return &Server{store: store, orch: orch, logger: logger.Named("webui")}
}

// Routes builds the gin engine with all screen and action endpoints.
func (s *Server) Routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.SetHTMLTemplate(template.Must(template.ParseFS(templatesFS, "templates/*.html")))

	router.GET("/", s.handleLanding)
	router.POST("/analyze", s.handleAnalyze)
	router.GET("/dashboard", s.handleDashboard)
	router.POST("/campaigns", s.handleCampaigns)
	router.GET("/results", s.handleResults)
	router.POST("/render/:id", s.handleRerender)
	router.POST("/reset", s.handleReset)

	router.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "OK")
	})

	return router
}

// session returns the caller's session, creating one and setting the
// cookie on first contact.
func (s *Server) session(c *gin.Context) *pipeline.Session {
	if id, err := c.Cookie(sessionCookie); err == nil {
		if sess := s.store.Get(id); sess != nil {
			return sess
		}
	}
	sess := s.store.New()
	c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
	return sess
}

func (s *Server) handleLanding(c *gin.Context) {
	view := s.session(c).View()
	c.HTML(http.StatusOK, "landing", gin.H{
		"Error": view.LastErr,
		"URL":   view.URL,
	})
}

func (s *Server) handleAnalyze(c *gin.Context) {
	sess := s.session(c)
	if err := s.orch.SubmitURL(c.Request.Context(), sess, c.PostForm("url")); err != nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *Server) handleDashboard(c *gin.Context) {
	view := s.session(c).View()
	if view.Profile == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	c.HTML(http.StatusOK, "dashboard", dashboardData(view))
}

func (s *Server) handleCampaigns(c *gin.Context) {
	sess := s.session(c)
	if sess.View().Profile == nil {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	if err := s.orch.GenerateCampaigns(c.Request.Context(), sess); err != nil {
		c.Redirect(http.StatusSeeOther, "/dashboard")
		return
	}
	c.Redirect(http.StatusSeeOther, "/results")
}

func (s *Server) handleResults(c *gin.Context) {
	view := s.session(c).View()
	if len(view.Campaigns) == 0 {
		if view.Profile != nil {
			c.Redirect(http.StatusSeeOther, "/dashboard")
		} else {
			c.Redirect(http.StatusSeeOther, "/")
		}
		return
	}
	c.HTML(http.StatusOK, "results", resultsData(view))
}

func (s *Server) handleRerender(c *gin.Context) {
	sess := s.session(c)
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.Redirect(http.StatusSeeOther, "/results")
		return
	}
	if err := s.orch.RerenderConcept(c.Request.Context(), sess, id); err != nil {
		s.logger.Warn("manual re-render failed", zap.Int("concept", id), zap.Error(err))
	}
	c.Redirect(http.StatusSeeOther, "/results")
}

func (s *Server) handleReset(c *gin.Context) {
	if id, err := c.Cookie(sessionCookie); err == nil {
		sess := s.store.Reset(id)
		c.SetCookie(sessionCookie, sess.ID, 0, "/", "", false, true)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

// dashboardData shapes a profile for the dashboard screen, applying the
// display-time defaults for absent fields.
func dashboardData(view pipeline.SessionView) gin.H {
	p := view.Profile

	name := p.Name
	if name == "" {
		name = "BRAND"
	}

	colors := p.Colors
	if len(colors) > 5 {
		colors = colors[:5]
	}
	images := p.Images
	if len(images) > 4 {
		images = images[:4]
	}

	return gin.H{
		"Name":      name,
		"Tagline":   p.Tagline,
		"Industry":  p.Industry,
		"Concept":   p.Concept,
		"Colors":    colors,
		"Fonts":     p.Fonts,
		"Aesthetic": p.Aesthetic,
		"Values":    p.Values,
		"Tone":      p.Tone,
		"Images":    images,
		"Error":     view.LastErr,
	}
}

type conceptCard struct {
	ID       int
	Title    string
	Strategy string
	Prompt   string
	Visual   template.URL
	Failed   bool
}

type artifactCard struct {
	Name    string
	Label   string
	Visual  template.URL
	IsVideo bool
	Failed  bool
}

func resultsData(view pipeline.SessionView) gin.H {
	cards := make([]conceptCard, 0, len(view.Campaigns))
	for _, camp := range view.Campaigns {
		card := conceptCard{
			ID:       camp.ID,
			Title:    camp.Title,
			Strategy: camp.Strategy,
			Prompt:   camp.VisualPrompt.String(),
		}
		if v := view.Visuals[camp.ID]; v.Available() {
			card.Visual = dataURI(v)
		} else {
			card.Failed = true
		}
		cards = append(cards, card)
	}

	artifacts := make([]artifactCard, 0, len(view.Artifacts))
	for _, name := range []string{pipeline.ArtifactAvatar, pipeline.ArtifactBanner, pipeline.ArtifactTeaser} {
		v, ok := view.Artifacts[name]
		if !ok {
			continue
		}
		card := artifactCard{Name: name, Label: artifactLabel(name), IsVideo: name == pipeline.ArtifactTeaser}
		if v.Available() {
			card.Visual = dataURI(v)
		} else {
			card.Failed = true
		}
		artifacts = append(artifacts, card)
	}

	return gin.H{
		"Cards":     cards,
		"Artifacts": artifacts,
	}
}

func artifactLabel(name string) string {
	switch name {
	case pipeline.ArtifactAvatar:
		return "Profile Avatar"
	case pipeline.ArtifactBanner:
		return "Social Banner"
	case pipeline.ArtifactTeaser:
		return "Campaign Teaser"
	}
	return name
}

// dataURI inlines the visual bytes; nothing ever touches disk.
func dataURI(v *models.RenderedVisual) template.URL {
	return template.URL(fmt.Sprintf("data:%s;base64,%s", v.MIME, base64.StdEncoding.EncodeToString(v.Data)))
}

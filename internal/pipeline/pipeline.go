// Package pipeline sequences the three generation stages and owns all
// session state transitions.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"brandforge/internal/models"
	"brandforge/internal/provider"
	"brandforge/internal/scraper"

	"go.uber.org/zap"
)

// Names of the fixed auxiliary artifacts rendered alongside the campaign
// visuals.
const (
	ArtifactAvatar = "avatar"
	ArtifactBanner = "banner"
	ArtifactTeaser = "teaser"
)

type Extractor interface {
	Extract(ctx context.Context, url string) (*models.BrandProfile, error)
}

type Strategist interface {
	Strategize(ctx context.Context, profile *models.BrandProfile) ([]models.CampaignConcept, error)
}

type Renderer interface {
	RenderImage(ctx context.Context, prompt string, aspect models.AspectRatio) (*models.RenderedVisual, error)
	RenderVideo(ctx context.Context, prompt string, aspect models.AspectRatio) (*models.RenderedVisual, error)
}

// Orchestrator drives a session through the pipeline. All methods take
// the session lock, so there is never more than one stage running per
// session.
type Orchestrator struct {
	extractor    Extractor
	strategist   Strategist
	renderer     Renderer
	videoEnabled bool
	logger       *zap.Logger
}

func NewOrchestrator(e Extractor, s Strategist, r Renderer, videoEnabled bool, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		extractor:    e,
		strategist:   s,
		renderer:     r,
		videoEnabled: videoEnabled,
		logger:       logger.Named("pipeline"),
	}
}

// SubmitURL normalizes the raw input and runs extraction. On failure the
// session stays on the input stage with the profile absent; it never
// advances past a failed extraction.
func (o *Orchestrator) SubmitURL(ctx context.Context, s *Session, raw string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(raw) == "" {
		s.LastErr = "Enter a website URL to analyze."
		return fmt.Errorf("empty url")
	}

	target := scraper.NormalizeURL(raw)
	log := o.logger.With(zap.String("session", s.ID), zap.String("url", target))

	s.Stage = StageExtracting
	profile, err := o.extractor.Extract(ctx, target)
	if err != nil {
		s.Stage = StageInput
		s.LastErr = "Unable to analyze this site."
		log.Warn("extraction failed", zap.Stringer("kind", provider.KindOf(err)), zap.Error(err))
		return err
	}

	s.URL = target
	s.Profile = profile
	s.LastErr = ""
	s.Stage = StageDashboard
	log.Info("session advanced to dashboard", zap.String("brand", profile.Name))
	return nil
}

// GenerateCampaigns runs the strategy stage and then renders every
// concept's visual plus the fixed social-kit artifacts. It is safe to
// re-enter: a cached non-empty campaign list is never regenerated, and a
// visual slot that already holds a result or an explicit failure is never
// re-attempted automatically.
func (o *Orchestrator) GenerateCampaigns(ctx context.Context, s *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Profile == nil {
		return fmt.Errorf("no brand profile in session")
	}
	log := o.logger.With(zap.String("session", s.ID))

	s.Stage = StageGenerating
	if len(s.Campaigns) == 0 {
		campaigns, err := o.strategist.Strategize(ctx, s.Profile)
		if err != nil || len(campaigns) == 0 {
			s.Stage = StageDashboard
			s.LastErr = "Campaign generation failed. Try again or start over."
			if err == nil {
				err = fmt.Errorf("strategist returned no campaigns")
			}
			log.Warn("strategy stage failed", zap.Stringer("kind", provider.KindOf(err)), zap.Error(err))
			return err
		}
		s.Campaigns = campaigns
		log.Info("campaigns cached", zap.Int("count", len(campaigns)))
	}

	// One render attempt per concept; a failed sibling never blocks the
	// rest. Failures become explicit unavailable slots.
	for _, c := range s.Campaigns {
		if _, attempted := s.Visuals[c.ID]; attempted {
			continue
		}
		s.Visuals[c.ID] = o.renderSlot(ctx, log.With(zap.Int("concept", c.ID)), c.VisualPrompt.String(), models.AspectPortrait)
	}

	o.renderSocialKit(ctx, s, log)

	s.LastErr = ""
	s.Stage = StageResults
	return nil
}

// RerenderConcept is the manual per-card re-attempt. Unlike the automatic
// pass it may run any number of times.
func (o *Orchestrator) RerenderConcept(ctx context.Context, s *Session, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var concept *models.CampaignConcept
	for i := range s.Campaigns {
		if s.Campaigns[i].ID == id {
			concept = &s.Campaigns[i]
			break
		}
	}
	if concept == nil {
		return fmt.Errorf("no campaign with id %d", id)
	}

	log := o.logger.With(zap.String("session", s.ID), zap.Int("concept", id))
	slot := o.renderSlot(ctx, log, concept.VisualPrompt.String(), models.AspectPortrait)
	s.Visuals[id] = slot
	if !slot.Available() {
		return fmt.Errorf("render attempt failed: %s", slot.Err)
	}
	return nil
}

func (o *Orchestrator) renderSlot(ctx context.Context, log *zap.Logger, prompt string, aspect models.AspectRatio) *models.RenderedVisual {
	visual, err := o.renderer.RenderImage(ctx, prompt, aspect)
	if err != nil {
		log.Warn("visual unavailable", zap.Stringer("kind", provider.KindOf(err)), zap.Error(err))
		return &models.RenderedVisual{Err: err.Error()}
	}
	return visual
}

func (o *Orchestrator) renderSocialKit(ctx context.Context, s *Session, log *zap.Logger) {
	if _, attempted := s.Artifacts[ArtifactAvatar]; !attempted {
		prompt := socialPrompt(s.Profile, "minimalist square brand avatar, emblem style")
		s.Artifacts[ArtifactAvatar] = o.renderSlot(ctx, log.With(zap.String("artifact", ArtifactAvatar)), prompt, models.AspectSquare)
	}
	if _, attempted := s.Artifacts[ArtifactBanner]; !attempted {
		prompt := socialPrompt(s.Profile, "wide social media profile banner, hero composition")
		s.Artifacts[ArtifactBanner] = o.renderSlot(ctx, log.With(zap.String("artifact", ArtifactBanner)), prompt, models.AspectLandscape)
	}

	if !o.videoEnabled || len(s.Campaigns) == 0 {
		return
	}
	if _, attempted := s.Artifacts[ArtifactTeaser]; attempted {
		return
	}
	teaser, err := o.renderer.RenderVideo(ctx, s.Campaigns[0].VisualPrompt.String(), models.AspectLandscape)
	if err != nil {
		log.Warn("teaser unavailable", zap.Stringer("kind", provider.KindOf(err)), zap.Error(err))
		teaser = &models.RenderedVisual{Err: err.Error()}
	}
	s.Artifacts[ArtifactTeaser] = teaser
}

func socialPrompt(p *models.BrandProfile, style string) string {
	parts := []string{style}
	if p.Name != "" {
		parts = append(parts, "for the brand "+p.Name)
	}
	if p.Concept != "" {
		parts = append(parts, p.Concept)
	}
	var keywords []string
	for _, k := range p.Aesthetic {
		if k.Keyword != "" {
			keywords = append(keywords, k.Keyword)
		}
	}
	if len(keywords) > 0 {
		parts = append(parts, strings.Join(keywords, ", "))
	}
	return strings.Join(parts, ", ")
}

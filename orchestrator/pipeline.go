package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/clinote/affect"
	"github.com/maastricht-university/clinote/entities"
	"github.com/maastricht-university/clinote/events"
	"github.com/maastricht-university/clinote/logger"
	"github.com/maastricht-university/clinote/narrative"
	"github.com/maastricht-university/clinote/soap"
	"github.com/maastricht-university/clinote/transcript"
)

const maxCurrentStatus = 200

type Pipeline struct {
	segmenter *transcript.Segmenter
	resolver  *entities.Resolver
	narrator  *narrative.Synthesizer
	affect    *affect.Classifier
	assembler *soap.Assembler
	events    events.Publisher
	now       func() time.Time
}

type Option func(*Pipeline)

func WithPublisher(pub events.Publisher) Option {
	return func(p *Pipeline) { p.events = pub }
}

// WithClock sets the clock that dates reports.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithSegmenter replaces the default speaker roles.
func WithSegmenter(s *transcript.Segmenter) Option {
	return func(p *Pipeline) { p.segmenter = s }
}

// NewPipeline wires the stages. Collaborators are injected into the stages
// beforehand, so one Pipeline serves any number of runs.
func NewPipeline(r *entities.Resolver, n *narrative.Synthesizer, a *affect.Classifier, s *soap.Assembler, opts ...Option) *Pipeline {
	p := &Pipeline{
		segmenter: transcript.NewSegmenter(),
		resolver:  r,
		narrator:  n,
		affect:    a,
		assembler: s,
		events:    events.Nop{},
		now:       time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Check reports configurations that can never yield a complete report.
func (p *Pipeline) Check() error {
	if err := p.resolver.Check(); err != nil {
		return &IncompletePipelineError{Stage: "entities", Err: err}
	}
	return nil
}

// Process turns one raw transcript into a validated report. Only a
// transcript.FormatError or an IncompletePipelineError stop a run; every
// collaborator failure degrades to its fallback instead.
func (p *Pipeline) Process(ctx context.Context, raw string) (*StructuredReport, error) {
	runID := uuid.New().String()
	log := logger.WithField("run_id", runID)

	utts, err := p.segmenter.Segment(raw)
	if err != nil {
		log.WithError(err).Error("segmentation failed")
		return nil, err
	}
	if err := p.Check(); err != nil {
		log.WithError(err).Error("no entity source configured")
		return nil, err
	}
	log.WithField("utterances", len(utts)).Info("transcript segmented")

	var (
		set     *entities.Set
		summary narrative.Narrative
		profile affect.Profile
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		set, err = p.resolver.Resolve(gctx, transcript.FullText(utts))
		if err != nil {
			return &IncompletePipelineError{Stage: "entities", Err: err}
		}
		return nil
	})
	g.Go(func() error {
		summary = p.narrator.Synthesize(gctx, utts)
		return nil
	})
	g.Go(func() error {
		profile = p.affect.Classify(gctx, utts)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	status, _ := narrative.BoundWords(summary.Text, maxCurrentStatus)
	if status == "" {
		status = transcript.NotSpecified
	}
	report := &StructuredReport{
		MedicalReport: MedicalReport{
			PatientName:   transcript.PatientName(utts),
			Date:          p.now().Format(DateLayout),
			Symptoms:      set.Names(entities.Symptom),
			Diagnosis:     set.Names(entities.Diagnosis),
			Treatment:     set.Names(entities.Treatment),
			Prognosis:     set.Names(entities.Prognosis),
			Keywords:      set.Names(entities.Other),
			CurrentStatus: status,
			Summary:       summary,
		},
		SentimentIntent: profile,
		SOAPNote:        p.assembler.Assemble(utts, set, profile, summary),
	}
	if err := report.Validate(); err != nil {
		return nil, fmt.Errorf("report validation: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"entities":       set.Len(),
		"summary_method": summary.Method,
		"sentiment":      profile.Sentiment,
		"intent":         profile.Intent,
	}).Info("report assembled")

	p.publish(ctx, runID, report)
	return report, nil
}

// Run processes the transcript at path and writes the four output documents
// into outDir.
func (p *Pipeline) Run(ctx context.Context, path, outDir string) (*StructuredReport, error) {
	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	report, err := p.Process(ctx, string(raw))
	if err != nil {
		return nil, err
	}
	if err := Persist(outDir, report); err != nil {
		return nil, err
	}
	logger.WithFields(map[string]interface{}{"input": path, "out": outDir}).Info("report written")
	return report, nil
}

func (p *Pipeline) publish(ctx context.Context, runID string, r *StructuredReport) {
	e := events.New(events.ReportGenerated, runID, map[string]interface{}{
		"patient_name":   r.MedicalReport.PatientName,
		"sentiment":      r.SentimentIntent.Sentiment,
		"intent":         r.SentimentIntent.Intent,
		"summary_method": r.MedicalReport.Summary.Method,
		"symptoms":       len(r.MedicalReport.Symptoms),
	})
	if err := p.events.Publish(ctx, e); err != nil {
		logger.WithField("run_id", runID).WithError(err).Warn("report event not published")
	}
}

package bridge

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
)

// DefaultTargetFormat is used when Harmonize is called without a target.
const DefaultTargetFormat = "obsidian"

const harmonizePromptTemplate = `Harmonization request

Please harmonize this markdown content for %[1]s compatibility:

---
%[2]s
---

Requirements:
- Preserve semantic meaning
- Convert to %[1]s-style syntax
- Maintain structural coherence (headings, links and tags)
- Enable cross-platform compatibility

Return the harmonized content with brief notes on changes made.`

// Harmonization is a successful harmonization.
type Harmonization struct {
	OriginalContent   string            `json:"original_content"`
	HarmonizedContent string            `json:"harmonized_content"`
	TargetFormat      string            `json:"target_format"`
	SpectralAnalysis  spectral.Analysis `json:"spectral_analysis"`
	HarmonizedAt      time.Time         `json:"harmonization_timestamp"`
}

// HarmonizeFailure carries the generator error and the unchanged content.
type HarmonizeFailure struct {
	Error           string `json:"error"`
	FallbackContent string `json:"fallback_content"`
}

// HarmonizeResult holds exactly one of Harmonization or Failure.
type HarmonizeResult struct {
	Harmonization *Harmonization
	Failure       *HarmonizeFailure
}

// OK reports whether harmonization succeeded.
func (r HarmonizeResult) OK() bool {
	return r.Failure == nil && r.Harmonization != nil
}

// Content returns the harmonized content, or the fallback on failure.
func (r HarmonizeResult) Content() string {
	if r.Failure != nil {
		return r.Failure.FallbackContent
	}
	if r.Harmonization != nil {
		return r.Harmonization.HarmonizedContent
	}
	return ""
}

// MarshalJSON encodes whichever variant is set.
func (r HarmonizeResult) MarshalJSON() ([]byte, error) {
	if r.Failure != nil {
		return json.Marshal(r.Failure)
	}
	if r.Harmonization != nil {
		return json.Marshal(r.Harmonization)
	}
	return []byte("null"), nil
}

// HarmonizePrompt builds the generator prompt for content and target.
func HarmonizePrompt(content, targetFormat string) string {
	return fmt.Sprintf(harmonizePromptTemplate, targetFormat, content)
}

// Harmonize asks the generator to rewrite content for targetFormat and
// analyzes the result. It never returns an error: generator failures yield
// the failure variant with the original content as fallback.
func (b *Bridge) Harmonize(ctx context.Context, content, targetFormat string) HarmonizeResult {
	targetFormat = cmp.Or(targetFormat, DefaultTargetFormat)

	if b.generate == nil {
		return b.harmonizeFailed(content, targetFormat, ErrNoGenerator)
	}

	ctx, cancel := context.WithTimeout(ctx, b.harmonizeTimeout)
	defer cancel()

	harmonized, err := b.generate(ctx, HarmonizePrompt(content, targetFormat))
	if err != nil {
		return b.harmonizeFailed(content, targetFormat, err)
	}

	b.logger.Debug("harmonized content",
		zap.String("target_format", targetFormat),
		zap.Int("original_len", len(content)),
		zap.Int("harmonized_len", len(harmonized)),
	)

	return HarmonizeResult{
		Harmonization: &Harmonization{
			OriginalContent:   content,
			HarmonizedContent: harmonized,
			TargetFormat:      targetFormat,
			SpectralAnalysis:  spectral.Analyze(harmonized),
			HarmonizedAt:      b.now(),
		},
	}
}

func (b *Bridge) harmonizeFailed(content, targetFormat string, err error) HarmonizeResult {
	b.logger.Error("harmonization failed",
		zap.String("target_format", targetFormat),
		zap.Error(err),
	)
	return HarmonizeResult{
		Failure: &HarmonizeFailure{
			Error:           err.Error(),
			FallbackContent: content,
		},
	}
}

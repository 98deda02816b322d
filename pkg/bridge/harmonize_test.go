package bridge_test

import (
	"context"
	"encoding/json"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/bridge"
	testutils "github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/utils/test"
)

var _ = Describe("Harmonize", func() {
	var (
		generator *testutils.MockGenerator
		b         *bridge.Bridge
	)

	BeforeEach(func() {
		generator = testutils.NewMockGenerator("# Harmonized\n[[Concept]]")
		var err error
		b, err = bridge.New(bridge.Config{
			Generate: generator.Func(),
			Options: bridge.Options{
				Now: func() time.Time { return fixedNow },
			},
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("returns the generated content with its analysis", func() {
		result := b.Harmonize(context.Background(), "some notes", "logseq")
		Expect(result.OK()).To(BeTrue())
		Expect(result.Failure).To(BeNil())

		h := result.Harmonization
		Expect(h.OriginalContent).To(Equal("some notes"))
		Expect(h.HarmonizedContent).To(Equal("# Harmonized\n[[Concept]]"))
		Expect(h.TargetFormat).To(Equal("logseq"))
		Expect(h.SpectralAnalysis.SpectralFrequency).To(BeNumerically("~", 1.5, 1e-9))
		Expect(h.SpectralAnalysis.ResonanceThreads).To(Equal([]string{"Concept"}))
		Expect(h.HarmonizedAt).To(Equal(fixedNow))
		Expect(result.Content()).To(Equal(h.HarmonizedContent))
	})

	It("defaults the target format to obsidian", func() {
		result := b.Harmonize(context.Background(), "notes", "")
		Expect(result.Harmonization.TargetFormat).To(Equal(bridge.DefaultTargetFormat))
		Expect(generator.Prompts).To(HaveLen(1))
		Expect(generator.Prompts[0]).To(ContainSubstring("obsidian compatibility"))
	})

	It("embeds the content and target in the prompt", func() {
		b.Harmonize(context.Background(), "my [[note]]", "notion")
		Expect(generator.Prompts[0]).To(Equal(bridge.HarmonizePrompt("my [[note]]", "notion")))
		Expect(generator.Prompts[0]).To(ContainSubstring("---\nmy [[note]]\n---"))
		Expect(generator.Prompts[0]).To(ContainSubstring("Convert to notion-style syntax"))
	})

	It("falls back to the original content when the generator fails", func() {
		generator.Fail = true
		result := b.Harmonize(context.Background(), "keep me", "logseq")
		Expect(result.OK()).To(BeFalse())
		Expect(result.Harmonization).To(BeNil())
		Expect(result.Failure.Error).To(Equal(testutils.ErrMockGeneration.Error()))
		Expect(result.Failure.FallbackContent).To(Equal("keep me"))
		Expect(result.Content()).To(Equal("keep me"))
	})

	It("reports a missing generator as a failure", func() {
		br, err := bridge.New(bridge.Config{})
		Expect(err).NotTo(HaveOccurred())

		result := br.Harmonize(context.Background(), "text", "")
		Expect(result.OK()).To(BeFalse())
		Expect(result.Failure.Error).To(Equal(bridge.ErrNoGenerator.Error()))
		Expect(result.Failure.FallbackContent).To(Equal("text"))
	})

	It("bounds the generator call with the harmonize timeout", func() {
		br, err := bridge.New(bridge.Config{
			Generate: func(ctx context.Context, _ string) (string, error) {
				<-ctx.Done()
				return "", ctx.Err()
			},
			Options: bridge.Options{HarmonizeTimeout: 20 * time.Millisecond},
		})
		Expect(err).NotTo(HaveOccurred())

		result := br.Harmonize(context.Background(), "slow", "")
		Expect(result.OK()).To(BeFalse())
		Expect(result.Failure.Error).To(ContainSubstring("deadline exceeded"))
	})

	Describe("JSON encoding", func() {
		It("encodes the success variant", func() {
			data, err := json.Marshal(b.Harmonize(context.Background(), "notes", "logseq"))
			Expect(err).NotTo(HaveOccurred())

			var got map[string]any
			Expect(json.Unmarshal(data, &got)).To(Succeed())
			Expect(got).To(HaveKeyWithValue("original_content", "notes"))
			Expect(got).To(HaveKeyWithValue("target_format", "logseq"))
			Expect(got).To(HaveKey("harmonized_content"))
			Expect(got).To(HaveKey("spectral_analysis"))
			Expect(got).To(HaveKey("harmonization_timestamp"))
			Expect(got).NotTo(HaveKey("error"))
		})

		It("encodes the failure variant", func() {
			generator.Fail = true
			data, err := json.Marshal(b.Harmonize(context.Background(), "notes", ""))
			Expect(err).NotTo(HaveOccurred())

			var got map[string]any
			Expect(json.Unmarshal(data, &got)).To(Succeed())
			Expect(got).To(HaveLen(2))
			Expect(got).To(HaveKeyWithValue("fallback_content", "notes"))
			Expect(got).To(HaveKey("error"))
		})
	})
})

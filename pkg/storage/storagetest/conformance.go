// Package storagetest holds the behaviour every storage.Driver must share,
// written as reusable ginkgo specs.
package storagetest

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/memory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/spectral"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
)

// AlignedNode builds an aligned node for id and content.
func AlignedNode(id, content string) memory.MemoryNode {
	captured := time.Date(2026, 5, 4, 3, 2, 1, 123456789, time.UTC)
	return memory.NewNode(id, content, "obsidian", memory.SourceMarley, captured).
		WithAnalysis(spectral.Analyze(content))
}

// ItBehavesLikeADriver registers the shared driver specs. newDriver is
// called before every test; the returned driver is closed afterwards.
func ItBehavesLikeADriver(newDriver func(ctx context.Context) storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver(ctx)
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("Put and Get", func() {
		It("round-trips every field", func() {
			node := AlignedNode("rec1", "# Title\n[[Go]] and [docs](https://go.dev)\n#tag")

			Expect(driver.Put(ctx, node)).To(Succeed())

			got, err := driver.Get(ctx, "rec1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ID).To(Equal(node.ID))
			Expect(got.Content).To(Equal(node.Content))
			Expect(got.MarkdownFormat).To(Equal(node.MarkdownFormat))
			Expect(got.SpectralFrequency).To(BeNumerically("~", node.SpectralFrequency, 1e-9))
			Expect(got.ResonanceThreads).To(Equal(node.ResonanceThreads))
			Expect(got.Timestamp.Equal(node.Timestamp)).To(BeTrue())
			Expect(got.Source).To(Equal(memory.SourceMarley))
			Expect(got.HarmonizationStatus).To(Equal(memory.StatusAligned))
		})

		It("replaces the previous entry for the same id", func() {
			Expect(driver.Put(ctx, AlignedNode("rec1", "# first"))).To(Succeed())
			Expect(driver.Put(ctx, AlignedNode("rec1", "[[second]]"))).To(Succeed())

			got, err := driver.Get(ctx, "rec1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("[[second]]"))
			Expect(got.ResonanceThreads).To(Equal([]string{"second"}))

			n, err := driver.Len(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("returns NotFoundError for unknown ids", func() {
			_, err := driver.Get(ctx, "missing")
			Expect(err).To(HaveOccurred())
			Expect(err).To(BeAssignableToTypeOf(storage.NotFoundError{}))
			Expect(err.Error()).To(ContainSubstring("missing"))
		})

		It("rejects nodes without an id", func() {
			err := driver.Put(ctx, AlignedNode("", "text"))
			Expect(err).To(MatchError(storage.ErrEmptyID))
		})

		It("stores an empty thread set as an empty slice", func() {
			Expect(driver.Put(ctx, AlignedNode("plain", "no links"))).To(Succeed())

			got, err := driver.Get(ctx, "plain")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ResonanceThreads).NotTo(BeNil())
			Expect(got.ResonanceThreads).To(BeEmpty())
		})
	})

	Describe("List and Len", func() {
		It("returns every cached node", func() {
			Expect(driver.Put(ctx, AlignedNode("a", "# a"))).To(Succeed())
			Expect(driver.Put(ctx, AlignedNode("b", "[[b]]"))).To(Succeed())
			Expect(driver.Put(ctx, AlignedNode("c", "c"))).To(Succeed())

			nodes, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(HaveLen(3))

			n, err := driver.Len(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(3))
		})

		It("returns an empty list for an empty cache", func() {
			nodes, err := driver.List(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(nodes).To(BeEmpty())
		})
	})

	It("tolerates concurrent writers", func() {
		var wg sync.WaitGroup
		for i := range 8 {
			wg.Add(1)
			go func(i int) {
				defer GinkgoRecover()
				defer wg.Done()
				content := "# writer"
				if i%2 == 0 {
					content = "[[even]]"
				}
				Expect(driver.Put(ctx, AlignedNode("shared", content))).To(Succeed())
			}(i)
		}
		wg.Wait()

		n, err := driver.Len(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(1))
	})
}

package inmemory_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/inmemory"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.ItBehavesLikeADriver(func(_ context.Context) storage.Driver {
		return inmemory.NewDriver()
	})

	It("returns copies so callers cannot mutate cached state", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()
		Expect(d.Put(ctx, storagetest.AlignedNode("rec1", "[[a]]"))).To(Succeed())

		got, err := d.Get(ctx, "rec1")
		Expect(err).NotTo(HaveOccurred())
		got.ResonanceThreads[0] = "mutated"

		again, err := d.Get(ctx, "rec1")
		Expect(err).NotTo(HaveOccurred())
		Expect(again.ResonanceThreads).To(Equal([]string{"a"}))
	})

	It("satisfies storage.Driver", func() {
		var _ storage.Driver = inmemory.NewDriver()
	})
})

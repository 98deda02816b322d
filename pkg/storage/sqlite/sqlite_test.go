package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/sqlite"
	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.ItBehavesLikeADriver(func(ctx context.Context) storage.Driver {
		d, err := sqlite.NewDriver(ctx, ":memory:")
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	Describe("NewDriver", func() {
		It("creates a database file and keeps nodes across reopen", func() {
			ctx := context.Background()
			dbPath := filepath.Join(GinkgoT().TempDir(), "cache.db")

			d, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(d.Put(ctx, storagetest.AlignedNode("rec1", "# persisted"))).To(Succeed())
			Expect(d.Close()).To(Succeed())

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())

			reopened, err := sqlite.NewDriver(ctx, dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer reopened.Close()

			got, err := reopened.Get(ctx, "rec1")
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Content).To(Equal("# persisted"))
		})
	})
})

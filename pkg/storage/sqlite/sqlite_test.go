package sqlite_test

import (
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/storage"
	"github.com/jasonzFong/aura-editor/pkg/storage/sqlite"
	"github.com/jasonzFong/aura-editor/pkg/storage/storagetest"
)

var _ = Describe("Driver", func() {
	storagetest.Conformance(func() storage.Driver {
		d, err := sqlite.NewDriver(context.Background(), ":memory:")
		Expect(err).NotTo(HaveOccurred())
		return d
	})

	Describe("NewDriver", func() {
		It("creates a driver with file database", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "aura.db")

			d, err := sqlite.NewDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			defer d.Close()

			_, err = os.Stat(dbPath)
			Expect(err).NotTo(HaveOccurred())
		})

		It("reopens an existing database without losing the schema", func() {
			dbPath := filepath.Join(GinkgoT().TempDir(), "aura.db")

			first, err := sqlite.NewDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(first.Close()).To(Succeed())

			second, err := sqlite.NewDriver(context.Background(), dbPath)
			Expect(err).NotTo(HaveOccurred())
			Expect(second.Close()).To(Succeed())
		})
	})
})

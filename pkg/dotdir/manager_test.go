package dotdir_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/dotdir"
)

var _ = Describe("dotdir", func() {
	var tmpDir string
	var m *dotdir.Manager

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		// Resolve symlinks so paths match filepath.Abs results
		// (e.g. on macOS /var -> /private/var).
		var err error
		tmpDir, err = filepath.EvalSymlinks(tmpDir)
		Expect(err).NotTo(HaveOccurred())

		m = dotdir.NewManager()
	})

	chdir := func(dir string) {
		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(dir)).To(Succeed())
		DeferCleanup(func() { _ = os.Chdir(origDir) })
	}

	Describe("Target", func() {
		It("creates the directory if it doesn't exist", func() {
			dir := filepath.Join(tmpDir, "newdir")
			result, err := m.Target(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(dir))

			info, err := os.Stat(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(info.IsDir()).To(BeTrue())
		})

		It("returns the override dir even when a local .aura dir exists", func() {
			Expect(os.Mkdir(filepath.Join(tmpDir, ".aura"), 0o755)).To(Succeed())
			chdir(tmpDir)

			overrideDir := filepath.Join(tmpDir, "override")
			result, err := m.Target(overrideDir)
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(overrideDir))
		})

		It("returns the local .aura dir when it exists and no override is provided", func() {
			localAura := filepath.Join(tmpDir, ".aura")
			Expect(os.Mkdir(localAura, 0o755)).To(Succeed())
			chdir(tmpDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(localAura))
		})

		It("falls back to creating ~/.aura", func() {
			emptyDir := filepath.Join(tmpDir, "empty")
			Expect(os.Mkdir(emptyDir, 0o755)).To(Succeed())
			chdir(emptyDir)
			GinkgoT().Setenv("HOME", emptyDir)

			result, err := m.Target("")
			Expect(err).NotTo(HaveOccurred())
			Expect(result).To(Equal(filepath.Join(emptyDir, ".aura")))
			Expect(filepath.Join(emptyDir, ".aura")).To(BeADirectory())
		})
	})

	It("resolves files inside the directory", func() {
		path, err := m.File(tmpDir, "aura.db")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(tmpDir, "aura.db")))
	})
})

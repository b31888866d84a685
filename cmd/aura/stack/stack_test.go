package stack_test

import (
	"context"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/cmd/aura/stack"
	"github.com/jasonzFong/aura-editor/pkg/config"
	"github.com/jasonzFong/aura-editor/pkg/eventstream/nop"
	"github.com/jasonzFong/aura-editor/pkg/logger"
	"github.com/jasonzFong/aura-editor/pkg/storage/inmemory"
	"github.com/jasonzFong/aura-editor/pkg/storage/sqlite"
)

var _ = Describe("Open", func() {
	var (
		ctx context.Context
		cfg *config.Config
	)

	BeforeEach(func() {
		ctx = context.Background()
		cfg = config.NewDefaultConfig()
		cfg.Oracle.Provider = "mock"
	})

	It("opens an in-memory stack with every service", func() {
		cfg.Storage.Driver = "memory"

		s, err := stack.Open(ctx, cfg, GinkgoT().TempDir(), logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		Expect(s.Store).To(BeAssignableToTypeOf(&inmemory.Driver{}))
		Expect(s.Publisher).To(BeAssignableToTypeOf(&nop.Publisher{}))
		Expect(s.Memory).NotTo(BeNil())
		Expect(s.Scanner).NotTo(BeNil())
		Expect(s.Comments).NotTo(BeNil())
		Expect(s.Almanac).NotTo(BeNil())
	})

	It("defaults SQLite into the aura directory", func() {
		dir := GinkgoT().TempDir()

		driver, err := stack.OpenStorage(ctx, cfg, dir, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(driver.Close)

		Expect(driver).To(BeAssignableToTypeOf(&sqlite.Driver{}))
		Expect(filepath.Join(dir, "aura.db")).To(BeAnExistingFile())
	})

	It("skips the almanac when disabled", func() {
		cfg.Storage.Driver = "memory"
		cfg.Almanac.Enabled = false

		s, err := stack.Open(ctx, cfg, "", logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
		Expect(s.Almanac).To(BeNil())
	})

	It("rejects an unknown failure policy", func() {
		cfg.Storage.Driver = "memory"
		cfg.Scanner.OnOracleFailure = "ignore"

		_, err := stack.Open(ctx, cfg, "", logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("unknown oracle failure policy")))
	})

	It("requires brokers for kafka", func() {
		cfg.Events.Provider = "kafka"
		_, err := stack.OpenPublisher(cfg, logger.Nop())
		Expect(err).To(HaveOccurred())
	})
})

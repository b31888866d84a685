package configcmder_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	configcmder "github.com/jasonzFong/aura-editor/cmd/aura/config"
	"github.com/jasonzFong/aura-editor/pkg/config"
)

var _ = Describe("NewConfigCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := configcmder.NewConfigCmd()
		Expect(cmd.Use).To(Equal("config"))
	})

	It("has set, get, and list subcommands", func() {
		cmd := configcmder.NewConfigCmd()
		subcommands := []string{}
		for _, sub := range cmd.Commands() {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("set", "get", "list"))
	})
})

var _ = Describe("Config command execution", func() {
	var tmpDir string

	run := func(args ...string) error {
		cmd := configcmder.NewConfigCmd()
		cmd.SetArgs(args)
		return cmd.Execute()
	}

	load := func() *config.Config {
		cfger, err := config.NewConfiger(filepath.Join(tmpDir, ".aura"))
		Expect(err).NotTo(HaveOccurred())
		cfg, err := cfger.LoadConfig()
		Expect(err).NotTo(HaveOccurred())
		return cfg
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()

		// A local .aura dir so the manager picks it up.
		Expect(os.MkdirAll(filepath.Join(tmpDir, ".aura"), 0o755)).To(Succeed())

		origDir, err := os.Getwd()
		Expect(err).NotTo(HaveOccurred())
		Expect(os.Chdir(tmpDir)).To(Succeed())
		DeferCleanup(os.Chdir, origDir)
	})

	Describe("set subcommand", func() {
		It("writes the value to config.toml", func() {
			Expect(run("set", "oracle.provider", "anthropic")).To(Succeed())
			Expect(filepath.Join(tmpDir, ".aura", "config.toml")).To(BeAnExistingFile())
			Expect(load().Oracle.Provider).To(Equal("anthropic"))
		})

		It("keeps other defaults when setting one key", func() {
			Expect(run("set", "scanner.on_oracle_failure", "retry")).To(Succeed())
			cfg := load()
			Expect(cfg.Scanner.OnOracleFailure).To(Equal("retry"))
			Expect(cfg.Scanner.Enabled).To(BeTrue())
			Expect(cfg.API.Listen).To(Equal(":8000"))
		})

		It("rejects unknown keys", func() {
			Expect(run("set", "invalid_key", "value")).NotTo(Succeed())
		})

		It("rejects values that fail validation", func() {
			Expect(run("set", "scanner.on_oracle_failure", "ignore")).NotTo(Succeed())
			Expect(run("set", "scanner.tick", "soon")).NotTo(Succeed())
			Expect(load().Scanner.OnOracleFailure).To(Equal("stamp"))
		})

		It("rejects invalid numbers", func() {
			Expect(run("set", "scanner.workers", "not-a-number")).NotTo(Succeed())
		})

		It("requires exactly two arguments", func() {
			Expect(run("set", "oracle.provider")).NotTo(Succeed())
			Expect(run("set")).NotTo(Succeed())
		})
	})

	Describe("get subcommand", func() {
		It("gets a previously set value", func() {
			Expect(run("set", "oracle.model", "gpt-4o")).To(Succeed())
			Expect(run("get", "oracle.model")).To(Succeed())
		})

		It("runs without error for an unset key", func() {
			Expect(run("get", "oracle.base_url", "--raw")).To(Succeed())
		})

		It("rejects unknown keys", func() {
			Expect(run("get", "invalid_key")).NotTo(Succeed())
		})

		It("requires exactly one argument", func() {
			Expect(run("get")).NotTo(Succeed())
		})
	})

	Describe("list subcommand", func() {
		It("runs without error when no config exists", func() {
			Expect(run("list")).To(Succeed())
		})

		It("rejects any arguments", func() {
			Expect(run("list", "extra")).NotTo(Succeed())
		})
	})
})

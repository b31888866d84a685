package almanaccmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	almanaccmder "github.com/jasonzFong/aura-editor/cmd/aura/almanac"
	"github.com/jasonzFong/aura-editor/pkg/journal"
)

var _ = Describe("NewAlmanacCmd", func() {
	It("accepts at most one date", func() {
		cmd := almanaccmder.NewAlmanacCmd()
		Expect(cmd.Args(cmd, []string{})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"2025-03-01"})).To(Succeed())
		Expect(cmd.Args(cmd, []string{"2025-03-01", "2025-03-02"})).NotTo(Succeed())
	})

	It("registers the storage and oracle flags", func() {
		cmd := almanaccmder.NewAlmanacCmd()
		Expect(cmd.Flags().Lookup("storage")).NotTo(BeNil())
		Expect(cmd.Flags().Lookup("provider")).NotTo(BeNil())
	})
})

var _ = Describe("Markdown", func() {
	It("lists suitable and avoid activities", func() {
		md := almanaccmder.Markdown(&journal.Almanac{
			Date: "2025-03-01",
			Icon: "🧧",
			Yi:   []string{"Wedding", "Travel"},
			Ji:   []string{},
		})
		Expect(md).To(HavePrefix("# 🧧 2025-03-01\n"))
		Expect(md).To(ContainSubstring("## Suitable\n\n- Wedding\n- Travel\n"))
		Expect(md).To(ContainSubstring("## Avoid\n\n_nothing_\n"))
	})
})

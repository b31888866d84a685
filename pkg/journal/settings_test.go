package journal_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/jasonzFong/aura-editor/pkg/journal"
)

var _ = Describe("ScanSettings", func() {
	DescribeTable("Interval",
		func(unit string, value int, expected time.Duration) {
			s := journal.ScanSettings{IntervalUnit: unit, IntervalValue: value}
			Expect(s.Interval()).To(Equal(expected))
		},
		Entry("minutes", "minutes", 30, 30*time.Minute),
		Entry("hours", "hours", 6, 6*time.Hour),
		Entry("days", "days", 2, 48*time.Hour),
		Entry("unknown unit falls back to a day", "weeks", 3, 24*time.Hour),
		Entry("zero value falls back to a day", "minutes", 0, 24*time.Hour),
	)

	DescribeTable("SkipOlderThan",
		func(unit string, value int, expected time.Duration) {
			s := journal.ScanSettings{SkipOlderThanUnit: unit, SkipOlderThanValue: value}
			Expect(s.SkipOlderThan()).To(Equal(expected))
		},
		Entry("days", "days", 7, 7*24*time.Hour),
		Entry("months are 30 days", "months", 2, 60*24*time.Hour),
		Entry("years are 365 days", "years", 1, 365*24*time.Hour),
		Entry("unknown unit falls back to 14 days", "", 0, 14*24*time.Hour),
		Entry("negative value falls back to 14 days", "days", -3, 14*24*time.Hour),
	)

	It("starts users with the background scan disabled", func() {
		d := journal.DefaultSettings()
		Expect(d.BackgroundScan.Enabled).To(BeFalse())
		Expect(d.BackgroundScan.Interval()).To(Equal(24 * time.Hour))
		Expect(d.BackgroundScan.SkipOlderThan()).To(Equal(14 * 24 * time.Hour))
	})
})

var _ = Describe("Confidence", func() {
	It("ranks low below medium below high", func() {
		Expect(journal.ConfidenceLow.Rank()).To(BeNumerically("<", journal.ConfidenceMedium.Rank()))
		Expect(journal.ConfidenceMedium.Rank()).To(BeNumerically("<", journal.ConfidenceHigh.Rank()))
		Expect(journal.Confidence("certain").Valid()).To(BeFalse())
	})
})

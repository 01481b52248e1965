package timer_test

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/timer"
)

var _ = Describe("ParseStartTime", func() {
	midnight := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	DescribeTable("normalises stored timestamps to UTC",
		func(raw string, want time.Time) {
			got, err := timer.ParseStartTime(raw)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Equal(want)).To(BeTrue(), "got %s want %s", got, want)
			Expect(got.Location()).To(Equal(time.UTC))
		},
		Entry("Z suffix", "2024-01-01T00:00:00Z", midnight),
		Entry("space separator", "2024-01-01 00:00:00Z", midnight),
		Entry("offset with colon", "2024-01-01T05:30:00+05:30", midnight),
		Entry("hour-only offset", "2024-01-01 00:00:00+00", midnight),
		Entry("negative hour-only offset", "2023-12-31 19:00:00-05", midnight),
		Entry("offset without colon", "2024-01-01T01:00:00+0100", midnight),
		Entry("short fraction", "2024-01-01T00:00:00.5Z", midnight.Add(500*time.Millisecond)),
		Entry("microseconds", "2024-01-01 00:00:00.123456+00:00", midnight.Add(123456*time.Microsecond)),
		Entry("nanoseconds", "2024-01-01T00:00:00.000000001Z", midnight.Add(time.Nanosecond)),
		Entry("no zone is UTC", "2024-01-01T00:00:00", midnight),
		Entry("no zone with fraction", "2024-01-01 00:00:00.25", midnight.Add(250*time.Millisecond)),
	)

	DescribeTable("rejects malformed timestamps",
		func(raw string) {
			_, err := timer.ParseStartTime(raw)
			Expect(err).To(HaveOccurred())
		},
		Entry("empty", ""),
		Entry("date only", "2024-01-01"),
		Entry("garbage", "yesterday at noon"),
		Entry("bad month", "2024-13-01T00:00:00Z"),
	)
})

package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/cliui"
)

var _ = Describe("Mark", func() {
	It("returns the success mark for nil", func() {
		Expect(cliui.Mark(nil)).To(Equal(cliui.SuccessMark))
	})

	It("returns the fail mark for an error", func() {
		Expect(cliui.Mark(errors.New("boom"))).To(Equal(cliui.FailMark))
	})
})

var _ = Describe("Verdict", func() {
	It("marks a correct answer", func() {
		Expect(cliui.Verdict(true)).To(HavePrefix(cliui.SuccessMark))
		Expect(cliui.Verdict(true)).To(ContainSubstring("correct"))
	})

	It("marks an answer that is not there yet", func() {
		Expect(cliui.Verdict(false)).To(HavePrefix(cliui.FailMark))
		Expect(cliui.Verdict(false)).To(ContainSubstring("not yet"))
	})
})

var _ = Describe("KeyValue", func() {
	It("shows the value", func() {
		out := cliui.KeyValue("completion.provider", "gemini")
		Expect(out).To(ContainSubstring("completion.provider"))
		Expect(out).To(ContainSubstring("gemini"))
	})

	It("shows unset values as not set", func() {
		Expect(cliui.KeyValue("events.brokers", "")).To(ContainSubstring("<not set>"))
	})
})

var _ = DescribeTable("FormatDuration",
	func(d time.Duration, want string) {
		Expect(cliui.FormatDuration(d)).To(Equal(want))
	},
	Entry("sub-millisecond", 300*time.Microsecond, "0ms"),
	Entry("milliseconds", 12*time.Millisecond, "12ms"),
	Entry("just under a second", 999*time.Millisecond, "999ms"),
	Entry("seconds", 3200*time.Millisecond, "3.2s"),
	Entry("just under a minute", 59*time.Second, "59.0s"),
	Entry("minutes", 65*time.Second, "1m05s"),
	Entry("rounds to the second", 90*time.Second+600*time.Millisecond, "1m31s"),
)

var _ = Describe("Step", func() {
	It("returns the function's error and ends the line", func() {
		var buf bytes.Buffer
		want := errors.New("connect refused")

		err := cliui.Step(&buf, "Connecting", func() error { return want })
		Expect(err).To(MatchError(want))

		out := buf.String()
		Expect(out).To(ContainSubstring("Connecting"))
		Expect(strings.HasSuffix(out, "\n")).To(BeTrue())
	})

	It("prints the final line last", func() {
		var buf bytes.Buffer

		Expect(cliui.Step(&buf, "Loading", func() error {
			time.Sleep(200 * time.Millisecond)
			return nil
		})).To(Succeed())

		lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\r")
		Expect(lines[len(lines)-1]).To(ContainSubstring("ms)"))
	})
})

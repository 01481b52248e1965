package logger_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/logger"
)

var _ = Describe("Logger", func() {
	Describe("NewLoggerWithWriters", func() {
		It("writes structured fields", func() {
			var buf bytes.Buffer
			l := logger.NewLoggerWithWriters(false, &buf)
			l.Info("stream finished", zap.String("route", "/chat"))
			_ = l.Sync()

			Expect(buf.String()).To(ContainSubstring("stream finished"))
			Expect(buf.String()).To(ContainSubstring("/chat"))
		})

		It("filters debug when not enabled", func() {
			var buf bytes.Buffer
			l := logger.NewLoggerWithWriters(false, &buf)
			l.Debug("hidden")
			_ = l.Sync()

			Expect(buf.String()).To(BeEmpty())
		})

		It("fans out to multiple writers", func() {
			var buf1, buf2 bytes.Buffer
			l := logger.NewLoggerWithWriters(true, &buf1, &buf2)
			l.Debug("multi")
			_ = l.Sync()

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})
	})

	Describe("NewLoggerWithLevel", func() {
		It("follows level changes at runtime", func() {
			var buf bytes.Buffer
			level := logger.LevelFor(false)
			l := logger.NewLoggerWithLevel(level, &buf)

			l.Debug("before")
			level.SetLevel(zap.DebugLevel)
			l.Debug("after")
			_ = l.Sync()

			Expect(buf.String()).NotTo(ContainSubstring("before"))
			Expect(buf.String()).To(ContainSubstring("after"))
		})
	})

	Describe("Nop", func() {
		It("does not panic on any method", func() {
			l := logger.Nop()
			Expect(func() {
				l.Debug("msg")
				l.Info("msg")
				l.Warn("msg")
				l.Error("msg")
				l.With(zap.String("key", "value")).Info("msg")
			}).NotTo(Panic())
		})
	})

	Describe("NewPretty", func() {
		It("writes human readable output", func() {
			var buf bytes.Buffer
			l := logger.NewPretty(&buf, false)
			l.Info("connected", "url", "http://localhost:5001")

			Expect(buf.String()).To(ContainSubstring("connected"))
			Expect(buf.String()).To(ContainSubstring("localhost:5001"))
		})

		It("hides debug unless enabled", func() {
			var buf bytes.Buffer
			logger.NewPretty(&buf, false).Debug("quiet")
			Expect(buf.String()).To(BeEmpty())

			logger.NewPretty(&buf, true).Debug("loud")
			Expect(buf.String()).To(ContainSubstring("loud"))
		})
	})
})

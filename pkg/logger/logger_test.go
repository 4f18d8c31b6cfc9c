package logger

import (
	"context"
	"log/slog"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

var _ = Describe("Init", func() {
	It("honors the configured minimum level", func() {
		Init("development", "warn")

		ctx := context.Background()
		Expect(LoggerWrapper().Enabled(ctx, slog.LevelInfo)).To(BeFalse())
		Expect(LoggerWrapper().Enabled(ctx, slog.LevelWarn)).To(BeTrue())
	})

	It("falls back to info for an unknown level name", func() {
		Expect(parseLevel("verbose")).To(Equal(slog.LevelInfo))
	})

	It("accepts the usual level names case-insensitively", func() {
		Expect(parseLevel("DEBUG")).To(Equal(slog.LevelDebug))
		Expect(parseLevel("warning")).To(Equal(slog.LevelWarn))
		Expect(parseLevel("error")).To(Equal(slog.LevelError))
	})
})

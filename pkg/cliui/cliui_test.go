package cliui_test

import (
	"bytes"
	"errors"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/IraBond/ClaudeCodeV2-HiveSwarm/pkg/cliui"
)

var _ = Describe("Step", func() {
	It("returns the error from fn and ends with the fail mark", func() {
		var buf bytes.Buffer
		boom := errors.New("boom")

		err := cliui.Step(&buf, "syncing", func() error { return boom })
		Expect(err).To(MatchError(boom))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\r")
		last := lines[len(lines)-1]
		Expect(last).To(ContainSubstring(cliui.FailMark))
		Expect(last).To(ContainSubstring("syncing"))
	})

	It("ends with the success mark once fn returns nil", func() {
		var buf bytes.Buffer

		err := cliui.Step(&buf, "analyzing", func() error {
			time.Sleep(100 * time.Millisecond)
			return nil
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(buf.String()).To(HaveSuffix("\n"))

		lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\r")
		Expect(lines[len(lines)-1]).To(ContainSubstring(cliui.SuccessMark))
	})
})

var _ = Describe("FormatDuration", func() {
	It("uses milliseconds below a second", func() {
		Expect(cliui.FormatDuration(12 * time.Millisecond)).To(Equal("12ms"))
	})

	It("uses fractional seconds above a second", func() {
		Expect(cliui.FormatDuration(3200 * time.Millisecond)).To(Equal("3.2s"))
	})
})

var _ = Describe("KeyValues", func() {
	It("writes every key and marks empty values unset", func() {
		var buf bytes.Buffer
		cliui.KeyValues(&buf, "Config", []cliui.KeyValue{
			{Key: "server.listen", Value: ":8080"},
			{Key: "cache.sqlite_path"},
		})

		out := buf.String()
		Expect(out).To(ContainSubstring("Config"))
		Expect(out).To(ContainSubstring("server.listen"))
		Expect(out).To(ContainSubstring(":8080"))
		Expect(out).To(ContainSubstring("(unset)"))
	})
})

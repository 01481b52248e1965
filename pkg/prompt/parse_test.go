package prompt_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/Pagnarith-Pit/code-scribe-analytics-lab/pkg/prompt"
)

var _ = Describe("Parsing", func() {
	Describe("SplitReasoning", func() {
		It("separates the think section", func() {
			reasoning, answer := prompt.SplitReasoning("<think>\nconsider loops\n</think>\n\nStep 1: loop")
			Expect(reasoning).To(Equal("consider loops"))
			Expect(answer).To(Equal("Step 1: loop"))
		})

		It("treats text without a closing tag as the answer", func() {
			reasoning, answer := prompt.SplitReasoning("  just an answer ")
			Expect(reasoning).To(BeEmpty())
			Expect(answer).To(Equal("just an answer"))
		})
	})

	Describe("ParseSteps", func() {
		It("reads step lines in order", func() {
			steps := prompt.ParseSteps("Here is the plan.\nStep 1: Initialize total\n**Step 2:** Loop over xs\n  add each x\n- Step 3. Return total")
			Expect(steps).To(Equal(prompt.Steps{
				{Label: "Step 1", Text: "Initialize total"},
				{Label: "Step 2", Text: "Loop over xs\nadd each x"},
				{Label: "Step 3", Text: "Return total"},
			}))
		})

		It("falls back to a single step", func() {
			Expect(prompt.ParseSteps("Use a loop.")).To(Equal(prompt.Steps{{Label: "Step 1", Text: "Use a loop."}}))
		})

		It("encodes as an ordered object", func() {
			steps := prompt.Steps{{Label: "Step 2", Text: "b"}, {Label: "Step 10", Text: "c"}}

			b, err := json.Marshal(steps)
			Expect(err).NotTo(HaveOccurred())
			Expect(string(b)).To(Equal(`{"Step 2":"b","Step 10":"c"}`))
		})
	})

	Describe("ParseCheck", func() {
		It("reads mistake and strategy lines", func() {
			v := prompt.ParseCheck("MISTAKE: loop stops early\nSTRATEGY: trace the loop by hand")
			Expect(v).To(Equal(prompt.Verdict{Mistake: "loop stops early", Strategy: "trace the loop by hand"}))
		})

		It("forces START for correct replies", func() {
			v := prompt.ParseCheck("<think>looks right</think>\n**MISTAKE:** correct\nSTRATEGY: move on")
			Expect(v).To(Equal(prompt.Verdict{Mistake: prompt.Correct, Strategy: prompt.StartStrategy}))
		})

		It("uses the first line when unformatted", func() {
			v := prompt.ParseCheck("\nThe student forgot the base case.\nMore detail.")
			Expect(v.Mistake).To(Equal("The student forgot the base case."))
			Expect(v.Strategy).To(Equal(prompt.StartStrategy))
		})
	})
})

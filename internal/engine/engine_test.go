package engine

import (
	"context"
	"errors"
	"strings"

	"github.com/onsi/ginkgo/v2"
	"github.com/onsi/gomega"

	"mlem2/internal/approx"
	"mlem2/internal/coverage"
	"mlem2/internal/lers"
)

const fluDataset = `
< a a a d >
[ Temperature Headache Nausea Flu ]
high      ?   no  yes
very_high yes yes yes
?         no  no  no
high      yes yes yes
high      ?   yes no
normal    yes no  no
normal    no  yes no
-         yes *   yes
`

func ruleStrings(r *Result) []string {
	out := make([]string, 0, len(r.Rules))
	for _, rule := range r.Rules {
		out = append(out, rule.String())
	}
	return out
}

var _ = ginkgo.Describe("Model", func() {
	ginkgo.It("induces certain and possible rules from one preprocessing pass", func() {
		t, err := lers.Parse(strings.NewReader(fluDataset))
		gomega.Expect(err).To(gomega.Succeed())

		m := Prepare(t)
		gomega.Expect(m.Coverage.Strategy()).To(gomega.Equal(coverage.Characteristic))

		certain, err := m.Induce(context.Background(), RunConfig{RuleSet: Certain})
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(ruleStrings(certain)).To(gomega.Equal([]string{
			"(Temperature, high) & (Headache, yes) -> (Flu, yes)",
			"(Temperature, high) & (Nausea, no) -> (Flu, yes)",
			"(Temperature, very_high) -> (Flu, yes)",
			"(Temperature, normal) -> (Flu, no)",
			"(Headache, no) -> (Flu, no)",
		}))

		possible, err := m.Induce(context.Background(), RunConfig{RuleSet: Possible, Workers: 2})
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(ruleStrings(possible)).To(gomega.Equal([]string{
			"(Temperature, high) & (Headache, yes) -> (Flu, yes)",
			"(Temperature, high) & (Nausea, no) -> (Flu, yes)",
			"(Temperature, very_high) -> (Flu, yes)",
			"(Nausea, yes) & (Temperature, high) -> (Flu, no)",
			"(Temperature, normal) -> (Flu, no)",
			"(Headache, no) -> (Flu, no)",
		}))
	})

	ginkgo.It("keeps lower within upper for every concept", func() {
		t, err := lers.Parse(strings.NewReader(fluDataset))
		gomega.Expect(err).To(gomega.Succeed())
		m := Prepare(t)

		lower, upper := m.Goals(approx.Lower), m.Goals(approx.Upper)
		for i, c := range m.Partition.Concepts() {
			gomega.Expect(lower[i].Cases.SubsetOf(c.Cases)).To(gomega.BeTrue(), c.Decision)
			gomega.Expect(c.Cases.SubsetOf(upper[i].Cases)).To(gomega.BeTrue(), c.Decision)
		}
		no, _ := lower.Get("no")
		gomega.Expect(no.Members()).To(gomega.Equal([]int{2, 5, 6}))
	})

	ginkgo.It("uses equivalence classes for complete tables", func() {
		t, err := lers.Parse(strings.NewReader("[ a1 a2 d ]\nx p d1\nx q d1\ny p d2\ny q d2\n"))
		gomega.Expect(err).To(gomega.Succeed())
		m := Prepare(t)
		gomega.Expect(m.Coverage.Strategy()).To(gomega.Equal(coverage.EquivalenceClasses))

		res, err := m.Induce(context.Background(), RunConfig{RuleSet: Certain})
		gomega.Expect(err).To(gomega.Succeed())
		gomega.Expect(ruleStrings(res)).To(gomega.Equal([]string{
			"(a1, x) -> (d, d1)",
			"(a1, y) -> (d, d2)",
		}))
	})
})

var _ = ginkgo.Describe("RunConfig", func() {
	ginkgo.DescribeTable("NewRunConfig",
		func(in string, workers int, want RuleSet, ok bool) {
			cfg, err := NewRunConfig(in, workers)
			if !ok {
				gomega.Expect(err).To(gomega.HaveOccurred())
				return
			}
			gomega.Expect(err).To(gomega.Succeed())
			gomega.Expect(cfg.RuleSet).To(gomega.Equal(want))
		},
		ginkgo.Entry("certain", "certain", 0, Certain, true),
		ginkgo.Entry("possible upper case", "POSSIBLE", 2, Possible, true),
		ginkgo.Entry("menu choice 1", "1", 0, Certain, true),
		ginkgo.Entry("menu choice 2", "2", 0, Possible, true),
		ginkgo.Entry("out of range", "3", 0, RuleSet(""), false),
		ginkgo.Entry("negative workers", "certain", -1, RuleSet(""), false),
	)

	ginkgo.It("wraps ErrInvalidRuleSet", func() {
		_, err := ParseRuleSet("both")
		gomega.Expect(errors.Is(err, ErrInvalidRuleSet)).To(gomega.BeTrue())
		gomega.Expect(Possible.Kind()).To(gomega.Equal(approx.Upper))
	})
})

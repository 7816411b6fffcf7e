package plate

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Consonants ক (U+0995) through হ (U+09B9).
const classLetter = `([ক-হ])`

// Class rule names, in precedence order.
const (
	ClassRuleAfterMetro     = "after-metro"
	ClassRuleAfterCityMetro = "after-city-metro"
	ClassRuleBeforeDigit    = "before-digit"
	ClassRuleAnywhere       = "anywhere"
	ClassRuleCandidateScan  = "candidate-scan"
)

type classRule struct {
	name    string
	pattern *regexp.Regexp
}

// buildClassRules compiles the positional anchors for the class letter. Each
// later rule is looser than the one before it, because recognized text often
// loses the separators the stricter rules rely on.
func buildClassRules(cityVariants, metroVariants []string) ([]classRule, error) {
	metro := alternation(metroVariants)
	city := alternation(cityVariants)

	type ruleDef struct{ name, expr string }
	var defs []ruleDef
	if metro != "" {
		defs = append(defs, ruleDef{ClassRuleAfterMetro, `(?i)(?:` + metro + `)[\s-]*` + classLetter})
		if city != "" {
			defs = append(defs, ruleDef{ClassRuleAfterCityMetro, `(?i)(?:` + city + `)[\s-]*(?:` + metro + `)[\s-]*` + classLetter})
		}
	}
	defs = append(defs,
		ruleDef{ClassRuleBeforeDigit, classLetter + `[\s-]*[0-9০-৯]`},
		ruleDef{ClassRuleAnywhere, classLetter},
	)

	rules := make([]classRule, 0, len(defs))
	for _, d := range defs {
		re, err := regexp.Compile(d.expr)
		if err != nil {
			return nil, fmt.Errorf("class rule %s: %w", d.name, err)
		}
		rules = append(rules, classRule{name: d.name, pattern: re})
	}
	return rules, nil
}

// alternation quotes the variants and joins them longest first.
func alternation(variants []string) string {
	vs := make([]string, 0, len(variants))
	for _, v := range variants {
		if v = strings.TrimSpace(v); v != "" {
			vs = append(vs, regexp.QuoteMeta(v))
		}
	}
	sort.SliceStable(vs, func(i, j int) bool { return len(vs[i]) > len(vs[j]) })
	return strings.Join(vs, "|")
}

// MatchClass resolves the vehicle-class letter. The first rule that matches
// wins; rule reports which one did.
func (g *Gazetteer) MatchClass(text string) (letter, rule string, ok bool) {
	for _, r := range g.classRules {
		if m := r.pattern.FindStringSubmatch(text); m != nil {
			return m[1], r.name, true
		}
	}
	for _, c := range g.candidates {
		if strings.Contains(text, c) {
			return c, ClassRuleCandidateScan, true
		}
	}
	return "", "", false
}

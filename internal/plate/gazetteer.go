package plate

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Area is a canonical name with the spellings it may appear under in
// recognized text. The canonical name always matches itself.
type Area struct {
	Name     string   `yaml:"name"`
	Variants []string `yaml:"variants"`
}

// DefaultAreas are the registration areas printed on plates, in match order.
var DefaultAreas = []Area{
	{Name: "ঢাকা", Variants: []string{"dhaka", "DHAKA", "Dhaka"}},
	{Name: "চট্টগ্রাম", Variants: []string{"chittagong", "CHITTAGONG", "Chittagong", "ctg", "CTG"}},
	{Name: "সিলেট", Variants: []string{"sylhet", "SYLHET", "Sylhet"}},
	{Name: "রাজশাহী", Variants: []string{"rajshahi", "RAJSHAHI", "Rajshahi"}},
	{Name: "বরিশাল", Variants: []string{"barisal", "BARISAL", "Barisal"}},
	{Name: "খুলনা", Variants: []string{"khulna", "KHULNA", "Khulna"}},
	{Name: "রংপুর", Variants: []string{"rangpur", "RANGPUR", "Rangpur"}},
	{Name: "ময়মনসিংহ", Variants: []string{"mymensingh", "MYMENSINGH", "Mymensingh"}},
}

// DefaultMetro is the metropolitan qualifier.
var DefaultMetro = Area{
	Name:     "মেট্রো",
	Variants: []string{"metro", "METRO", "Metro", "Metropoliton", "Metropolitan"},
}

// DefaultClassCandidates is the last-resort scan order for the class letter.
var DefaultClassCandidates = []string{
	"ক", "খ", "গ", "ঘ", "ঙ", "চ", "ছ", "জ", "ঝ", "ঞ",
	"ট", "ঠ", "ড", "ঢ", "ণ", "ত", "থ", "দ", "ধ", "ন",
	"প", "ফ", "ব", "ভ", "ম", "য", "র", "ল", "শ", "ষ", "স", "হ",
}

var defaultGazetteer = mustGazetteer(NewGazetteer(DefaultAreas, DefaultMetro, DefaultClassCandidates))

type areaEntry struct {
	name     string
	variants []string // every spelling, including name
	folded   []string
}

func newAreaEntry(a Area) (areaEntry, error) {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return areaEntry{}, errors.New("area name is empty")
	}
	e := areaEntry{name: name}
	seen := map[string]bool{}
	for _, v := range append([]string{name}, a.Variants...) {
		v = strings.TrimSpace(v)
		f := FoldLatin(v)
		if v == "" || seen[f] {
			continue
		}
		seen[f] = true
		e.variants = append(e.variants, v)
		e.folded = append(e.folded, f)
	}
	return e, nil
}

func (e areaEntry) containedIn(foldedText string) bool {
	for _, v := range e.folded {
		if strings.Contains(foldedText, v) {
			return true
		}
	}
	return false
}

// Gazetteer resolves area names, the metro qualifier and the vehicle-class
// letter from free-form text. It is immutable once built.
type Gazetteer struct {
	areas      []areaEntry
	metro      areaEntry
	classRules []classRule
	candidates []string
}

// NewGazetteer builds a gazetteer from an ordered area table, the metro
// qualifier and the class-letter scan order.
func NewGazetteer(areas []Area, metro Area, classCandidates []string) (*Gazetteer, error) {
	if len(areas) == 0 {
		return nil, errors.New("gazetteer: area table is empty")
	}
	g := &Gazetteer{candidates: append([]string(nil), classCandidates...)}

	var cityVariants []string
	for i, a := range areas {
		e, err := newAreaEntry(a)
		if err != nil {
			return nil, fmt.Errorf("gazetteer: area #%d: %w", i, err)
		}
		g.areas = append(g.areas, e)
		cityVariants = append(cityVariants, e.variants...)
	}

	m, err := newAreaEntry(metro)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: metro: %w", err)
	}
	g.metro = m

	rules, err := buildClassRules(cityVariants, m.variants)
	if err != nil {
		return nil, fmt.Errorf("gazetteer: %w", err)
	}
	g.classRules = rules
	return g, nil
}

func mustGazetteer(g *Gazetteer, err error) *Gazetteer {
	if err != nil {
		panic(err)
	}
	return g
}

// DefaultGazetteer returns the built-in tables. The value is shared and must
// be treated as read-only.
func DefaultGazetteer() *Gazetteer {
	return defaultGazetteer
}

type gazetteerFile struct {
	Areas           []Area `yaml:"areas"`
	Metro           *Area  `yaml:"metro"`
	ClassCandidates string `yaml:"class_candidates"`
}

// LoadGazetteer reads a YAML table file. Sections missing from the file keep
// their built-in defaults.
//
//	areas:
//	  - name: ঢাকা
//	    variants: [dhaka, DHAKA]
//	metro:
//	  name: মেট্রো
//	  variants: [metro]
//	class_candidates: "কখগঘ"
func LoadGazetteer(path string) (*Gazetteer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadGazetteer: %w", err)
	}
	var f gazetteerFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("LoadGazetteer: parse %s: %w", path, err)
	}

	areas := f.Areas
	if len(areas) == 0 {
		areas = DefaultAreas
	}
	metro := DefaultMetro
	if f.Metro != nil {
		metro = *f.Metro
	}
	candidates := DefaultClassCandidates
	if s := strings.TrimSpace(f.ClassCandidates); s != "" {
		candidates = nil
		for _, r := range s {
			if r == ' ' || r == ',' {
				continue
			}
			candidates = append(candidates, string(r))
		}
	}
	return NewGazetteer(areas, metro, candidates)
}

// MatchArea returns the first canonical area, in table order, that has any
// variant contained in text.
func (g *Gazetteer) MatchArea(text string) (string, bool) {
	folded := FoldLatin(text)
	for _, a := range g.areas {
		if a.containedIn(folded) {
			return a.name, true
		}
	}
	return "", false
}

// MatchMetro reports whether the metro qualifier appears in text.
func (g *Gazetteer) MatchMetro(text string) (string, bool) {
	if g.metro.containedIn(FoldLatin(text)) {
		return g.metro.name, true
	}
	return "", false
}

// AreaName combines the area and metro matches. The metro tag is returned
// even when no area was found, but it never becomes the area name by itself.
func (g *Gazetteer) AreaName(text string) (areaName, metroTag string) {
	area, okArea := g.MatchArea(text)
	metro, okMetro := g.MatchMetro(text)
	switch {
	case okArea && okMetro:
		return area + "-" + metro, metro
	case okArea:
		return area, ""
	default:
		return "", metro
	}
}

package ledger

import (
	"strings"
	"unicode"
)

type wearLevel struct {
	name     string
	keywords []string
}

// wearLevels are checked in order; the full name precedes its short form.
var wearLevels = []wearLevel{
	{name: "崭新出厂", keywords: []string{"崭新出厂", "崭新"}},
	{name: "略有磨损", keywords: []string{"略有磨损", "略磨"}},
	{name: "久经沙场", keywords: []string{"久经沙场", "久经"}},
	{name: "破损不堪", keywords: []string{"破损不堪", "破损"}},
	{name: "战痕累累", keywords: []string{"战痕累累", "战痕"}},
}

// Agents and cosmetics have no wear, so their names are never split.
var (
	agentMarkers = []string{
		"专业人士", "游击队", "海豹部队", "军刀", "FBI特工",
		"上校", "中队长", "海军上尉", "指挥官", "特种部队",
		"达里尔爵士",
	}
	wearlessMarkers = []string{"印花", "音乐盒", "挂件", "胸章"}
)

var bracketStripper = strings.NewReplacer("(", "", ")", "", "（", "", "）", "")

// WearLevel extracts the wear level from an item name and returns the rest of the name.
// The level is empty for wearless items.
func WearLevel(name string) (level, remaining string) {
	if containsAny(name, agentMarkers) || containsAny(name, wearlessMarkers) {
		return "", name
	}
	for _, wl := range wearLevels {
		for _, keyword := range wl.keywords {
			if strings.Contains(name, keyword) {
				rest := bracketStripper.Replace(strings.ReplaceAll(name, keyword, ""))
				return wl.name, strings.TrimSpace(rest)
			}
		}
	}
	return "", name
}

// StandardizeName keeps only letters and digits.
func StandardizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Similarity is the Jaccard index of the character sets of a and b.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	setA := runeSet(a)
	setB := runeSet(b)

	intersection := 0
	for r := range setA {
		if _, ok := setB[r]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func wearCompatible(a, b string) bool {
	if a == "" || b == "" {
		return true
	}
	return a == b || strings.Contains(a, b) || strings.Contains(b, a)
}

func runeSet(s string) map[rune]struct{} {
	set := make(map[rune]struct{})
	for _, r := range s {
		set[r] = struct{}{}
	}
	return set
}

func containsAny(s string, markers []string) bool {
	for _, m := range markers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

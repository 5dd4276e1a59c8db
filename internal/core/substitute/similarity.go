package substitute

import (
	"sort"
	"strings"

	"recipe-nutrition/internal/core/ingredient"

	"github.com/pmezard/go-difflib/difflib"
)

// 分數權重
const (
	NutritionWeight = 0.6
	TextWeight      = 0.4
	SemanticWeight  = 0.7
	LexicalWeight   = 0.3
)

// Scored 一個候選食材與其綜合分數（0 到 1）
type Scored struct {
	Ingredient ingredient.Ingredient
	Score      float64
}

// RankSubstitutes 依營養、語意與字面相似度為目標食材排序候選替代品。
// 目標不在快照中或 topK <= 0 時回傳空結果；目標本身永遠不會出現在結果中。
func RankSubstitutes(snap *Snapshot, targetID string, topK int) []Scored {
	if snap == nil || topK <= 0 {
		return []Scored{}
	}
	target, ok := snap.Row(targetID)
	if !ok {
		return []Scored{}
	}

	targetName := strings.ToLower(snap.Ingredients[target].Name)
	scores := make([]float64, snap.Len())
	for i := range snap.Ingredients {
		nutr := dot(snap.Nutrition[target], snap.Nutrition[i])
		semantic := dot(snap.Names[target], snap.Names[i])
		lexical := lexicalRatio(targetName, strings.ToLower(snap.Ingredients[i].Name))

		text := SemanticWeight*semantic + LexicalWeight*lexical
		scores[i] = clamp01(NutritionWeight*nutr + TextWeight*text)
	}

	order := make([]int, snap.Len())
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	out := make([]Scored, 0, min(topK, snap.Len()))
	for _, i := range order {
		if i == target {
			continue
		}
		if len(out) == topK {
			break
		}
		out = append(out, Scored{Ingredient: snap.Ingredients[i], Score: scores[i]})
	}
	return out
}

// lexicalRatio 2*M/T 相似比例，以 rune 為單位比較
func lexicalRatio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func dot(a, b []float64) float64 {
	n := min(len(a), len(b))
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

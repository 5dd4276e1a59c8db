package ingredient

// Nutrition 每 100 克的營養成分
type Nutrition struct {
	Energy  float64 `json:"energy"`
	Carb    float64 `json:"carb"`
	Protein float64 `json:"protein"`
	Fat     float64 `json:"fat"`
	Sugar   float64 `json:"sugar"`
	Water   float64 `json:"water"`
	Fiber   float64 `json:"fiber"`
}

// FeatureVector 相似度計算使用的六個欄位，水分不列入
func (n Nutrition) FeatureVector() []float64 {
	return []float64{n.Energy, n.Carb, n.Protein, n.Fat, n.Sugar, n.Fiber}
}

// Add 累加 scale 倍的營養成分
func (n Nutrition) Add(other Nutrition, scale float64) Nutrition {
	return Nutrition{
		Energy:  n.Energy + other.Energy*scale,
		Carb:    n.Carb + other.Carb*scale,
		Protein: n.Protein + other.Protein*scale,
		Fat:     n.Fat + other.Fat*scale,
		Sugar:   n.Sugar + other.Sugar*scale,
		Water:   n.Water + other.Water*scale,
		Fiber:   n.Fiber + other.Fiber*scale,
	}
}

// Ingredient 食材；ID 一律為正規格式
type Ingredient struct {
	ID           string    `json:"id"`
	Name         string    `json:"ingredient_name"`
	Nutrition    Nutrition `json:"nutrition"`
	CostPerGram  float64   `json:"cost_per_gram"`
	SupplierName string    `json:"supplier_name"`
}

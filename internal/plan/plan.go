// Package plan holds the static subscription plan catalog shown on the
// pricing page. Price IDs belong to the payment provider's catalog.
package plan

import "errors"

var ErrPlanNotFound = errors.New("plan not found")

// Plan is one purchasable subscription option.
type Plan struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Price    string   `json:"price"`
	Period   string   `json:"period"`
	PriceID  string   `json:"priceId"`
	Features []string `json:"features"`
	Popular  bool     `json:"popular"`
	Badge    string   `json:"badge,omitempty"`
}

// Catalog is an ordered, immutable set of plans.
type Catalog struct {
	plans   []Plan
	byPrice map[string]Plan
}

// NewCatalog builds a catalog and its price-id index.
func NewCatalog(plans []Plan) *Catalog {
	byPrice := make(map[string]Plan, len(plans))
	for _, p := range plans {
		byPrice[p.PriceID] = p
	}
	return &Catalog{plans: plans, byPrice: byPrice}
}

// Plans returns the catalog in display order.
func (c *Catalog) Plans() []Plan {
	out := make([]Plan, len(c.plans))
	copy(out, c.plans)
	return out
}

// ByPriceID returns the plan selling under the given provider price id.
func (c *Catalog) ByPriceID(priceID string) (Plan, error) {
	p, ok := c.byPrice[priceID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return p, nil
}

// Default is the production catalog.
func Default() *Catalog {
	return NewCatalog([]Plan{
		{
			ID:      "monthly",
			Name:    "Mensal",
			Price:   "R$ 31,90",
			Period:  "/mês",
			PriceID: "price_1SUWcJBgKzDsfhDgz36JYTQW",
			Features: []string{
				"Acesso completo ao protocolo personalizado",
				"Todas as técnicas de foco",
				"Sons e meditações guiadas",
				"Gamificação e desafios",
				"Estatísticas detalhadas",
				"Suporte prioritário",
			},
		},
		{
			ID:      "quarterly",
			Name:    "Trimestral",
			Price:   "R$ 25,90",
			Period:  "/mês",
			PriceID: "price_1SUWn1BgKzDsfhDgZBiK5TIT",
			Features: []string{
				"Tudo do plano mensal",
				"Economia de 19%",
				"Protocolo adaptativo",
				"Novos recursos em primeira mão",
				"Comunidade exclusiva",
				"Sessões de coaching mensais",
			},
			Popular: true,
			Badge:   "Mais Popular",
		},
		{
			ID:      "annual",
			Name:    "Anual",
			Price:   "R$ 19,90",
			Period:  "/mês",
			PriceID: "price_1SUWpLBgKzDsfhDgzDp4yQrY",
			Features: []string{
				"Tudo do plano trimestral",
				"Economia de 38%",
				"Acesso vitalício a atualizações",
				"Protocolo premium personalizado",
				"Mentoria individual mensal",
				"Certificado de conclusão",
			},
			Badge: "Melhor Custo-Benefício",
		},
	})
}

// Package categorization assigns a spending category to each transaction by
// matching keyword substrings against its description. The rule table is an
// explicit ordered configuration injected at construction; declared order is
// the only tie-break.
package categorization

// Outros is the catch-all label for descriptions no rule matches.
const Outros = "outros"

// Rule binds one category label to its lowercase keyword substrings.
type Rule struct {
	Category string
	Keywords []string
}

// Ruleset is an ordered list of rules. Earlier rules win over later ones
// when a description matches keywords from more than one category.
type Ruleset []Rule

// DefaultRuleset returns the built-in Portuguese-centric rule table. Order
// matters: "uber eats" appears under both transporte and alimentacao, and
// resolves to transporte because it is declared first.
func DefaultRuleset() Ruleset {
	return Ruleset{
		{Category: "transporte", Keywords: []string{"uber", "lyft", "taxi", "metrô", "onibus", "bus", "uber eats"}},
		{Category: "alimentacao", Keywords: []string{"restaurante", "supermercado", "grocery", "mercado", "padaria", "uber eats", "ifood"}},
		{Category: "assinatura", Keywords: []string{"netflix", "spotify", "prime", "hulu", "subscription", "assinatura"}},
		{Category: "saude", Keywords: []string{"hospital", "farmacia", "drogaria", "clínica"}},
		{Category: "lazer", Keywords: []string{"cinema", "teatro", "viagem", "hotel"}},
		{Category: "moradia", Keywords: []string{"aluguel", "condominio", "energia", "agua", "iptu"}},
		{Category: "servicos", Keywords: []string{"telefone", "internet", "movimento", "cartao"}},
	}
}

// Categories returns the labels in declared order, without the catch-all.
func (rs Ruleset) Categories() []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.Category)
	}
	return out
}

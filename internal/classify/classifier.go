// Package classify implements the deterministic, rule-based account-type
// classifier. It is the fast path of the resolution pipeline: pure string
// checks, no I/O, and the same answer for the same input every time.
package classify

import (
	"strings"

	"github.com/ledgerlift/ledgerlift/internal/model"
	"github.com/ledgerlift/ledgerlift/internal/text"
)

// Result is a type guess with the confidence of the rule that produced it.
type Result struct {
	Type       model.AccountType
	Rationale  string
	Confidence float64
}

// rule is one entry of the ordered cascade. The first rule whose vocabulary
// appears in the normalized name or type wins.
type rule struct {
	accountType model.AccountType
	rationale   string
	terms       []string
	confidence  float64
}

// Classifier evaluates the rule cascade over a legacy account.
type Classifier struct {
	rules []rule
}

// New creates a classifier with the built-in rule table. Rules are evaluated
// in priority order: asset, liability, equity, revenue, cost of sales, then
// the expense sub-cascade.
func New() *Classifier {
	return &Classifier{
		rules: []rule{
			{
				accountType: model.TypeAsset,
				confidence:  0.95,
				rationale:   "matched asset account patterns",
				terms: []string{
					"cash", "bank", "petty", "receivable", "debtor", "inventory",
					"stock", "equipment", "machinery", "vehicle", "furniture",
					"building", "land", "deposit", "prepaid", "asset",
				},
			},
			{
				accountType: model.TypeLiability,
				confidence:  0.95,
				rationale:   "matched liability account patterns",
				terms: []string{
					"payable", "creditor", "loan", "borrowing", "mortgage",
					"overdraft", "accrued", "provision", "liability",
				},
			},
			{
				accountType: model.TypeEquity,
				confidence:  0.90,
				rationale:   "matched equity account patterns",
				terms: []string{
					"capital", "equity", "retained", "drawing", "drawings",
					"reserve", "shareholder", "owner",
				},
			},
			{
				accountType: model.TypeRevenue,
				confidence:  0.90,
				rationale:   "matched revenue account patterns",
				terms: []string{
					"sales", "revenue", "income", "turnover", "fees earned",
					"service charge",
				},
			},
			{
				accountType: model.TypeCostOfSales,
				confidence:  0.90,
				rationale:   "matched cost of sales patterns",
				terms: []string{
					"cost of goods", "cost of sales", "cogs", "purchase",
					"raw material", "direct material", "food cost",
					"beverage cost", "freight in",
				},
			},
		},
	}
}

// Expense sub-cascade vocabularies, checked only after the primary rules miss.
var (
	taxExpenseTerms = []string{
		"tax", "vat", "gst", "duty", "levy", "cess",
	}
	indirectExpenseTerms = []string{
		"rent", "utilities", "electricity", "water", "telephone", "internet",
		"insurance", "depreciation", "amortization", "office", "admin",
		"audit", "legal", "professional", "marketing", "advertising",
		"travel", "repair", "maintenance", "printing", "stationery",
	}
	directExpenseTerms = []string{
		"expense", "salary", "salaries", "wages", "labour", "labor",
		"commission", "packaging", "consumable", "overhead", "cost",
	}
)

// Classify returns the canonical type guess for a legacy account. It never
// fails: accounts nothing matches fall through to a low-confidence default.
func (c *Classifier) Classify(account model.LegacyAccount) Result {
	haystack := text.Normalize(account.DisplayName() + " " + account.OriginalType)

	for _, r := range c.rules {
		if containsAny(haystack, r.terms) {
			return Result{
				Type:       r.accountType,
				Confidence: r.confidence,
				Rationale:  r.rationale,
			}
		}
	}

	// Expense sub-cascade: tax beats indirect beats direct.
	if containsAny(haystack, taxExpenseTerms) {
		return Result{
			Type:       model.TypeTaxExpense,
			Confidence: 0.90,
			Rationale:  "matched tax expense patterns",
		}
	}
	if containsAny(haystack, indirectExpenseTerms) {
		return Result{
			Type:       model.TypeIndirectExpense,
			Confidence: 0.85,
			Rationale:  "matched indirect expense patterns",
		}
	}
	if containsAny(haystack, directExpenseTerms) {
		return Result{
			Type:       model.TypeDirectExpense,
			Confidence: 0.85,
			Rationale:  "matched direct expense patterns",
		}
	}

	// Weak evidence from the balance sign when no vocabulary fired.
	if account.Balance.IsNegative() {
		return Result{
			Type:       model.TypeRevenue,
			Confidence: 0.60,
			Rationale:  "credit balance suggests revenue",
		}
	}
	if account.Balance.IsPositive() {
		return Result{
			Type:       model.TypeDirectExpense,
			Confidence: 0.60,
			Rationale:  "debit balance suggests direct expense",
		}
	}

	return Result{
		Type:       model.TypeDirectExpense,
		Confidence: 0.50,
		Rationale:  "no classification rule matched, defaulting to direct expense (needs review)",
	}
}

func containsAny(haystack string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(haystack, term) {
			return true
		}
	}
	return false
}

// Package match implements the template search engine: a set of lookup
// structures built once per canonical template and a multi-strategy matching
// cascade that ranks template accounts against noisy legacy descriptions.
package match

import (
	"sort"

	"github.com/ledgerlift/ledgerlift/internal/model"
	"github.com/ledgerlift/ledgerlift/internal/text"
)

// aliasEntry pairs one normalized alias with the account that carries it.
type aliasEntry struct {
	alias   string
	account model.TemplateAccount
}

// Index holds the four parallel lookup structures over a template. It is
// built once and never mutated afterwards; rebuild wholesale if the template
// changes.
type Index struct {
	byNormalizedName map[string][]model.TemplateAccount
	byKeyword        map[string][]model.TemplateAccount
	byAlias          map[string][]model.TemplateAccount
	byType           map[model.AccountType][]model.TemplateAccount

	accounts        []model.TemplateAccount
	normalizedNames []string
	aliasEntries    []aliasEntry
}

// NewIndex builds the lookup structures from a template account collection.
// Construction is O(accounts x avg keywords); lookups are O(1) per key.
func NewIndex(accounts []model.TemplateAccount) *Index {
	idx := &Index{
		byNormalizedName: make(map[string][]model.TemplateAccount, len(accounts)),
		byKeyword:        make(map[string][]model.TemplateAccount),
		byAlias:          make(map[string][]model.TemplateAccount),
		byType:           make(map[model.AccountType][]model.TemplateAccount),
		accounts:         make([]model.TemplateAccount, len(accounts)),
		normalizedNames:  make([]string, len(accounts)),
	}
	copy(idx.accounts, accounts)

	for i, account := range idx.accounts {
		name := text.Normalize(account.AccountName)
		idx.normalizedNames[i] = name
		idx.byNormalizedName[name] = append(idx.byNormalizedName[name], account)

		for _, keyword := range account.Keywords {
			k := text.Normalize(keyword)
			if k == "" {
				continue
			}
			idx.byKeyword[k] = append(idx.byKeyword[k], account)
		}

		for _, alias := range account.Aliases {
			a := text.Normalize(alias)
			if a == "" {
				continue
			}
			idx.byAlias[a] = append(idx.byAlias[a], account)
			idx.aliasEntries = append(idx.aliasEntries, aliasEntry{alias: a, account: account})
		}

		idx.byType[account.AccountType] = append(idx.byType[account.AccountType], account)
	}

	return idx
}

// Size returns the number of indexed template accounts.
func (i *Index) Size() int {
	return len(i.accounts)
}

// LookupName returns the accounts whose normalized name equals name.
func (i *Index) LookupName(name string) []model.TemplateAccount {
	return i.byNormalizedName[name]
}

// LookupKeyword returns the accounts indexed under the normalized keyword.
func (i *Index) LookupKeyword(keyword string) []model.TemplateAccount {
	return i.byKeyword[keyword]
}

// LookupAlias returns the accounts whose normalized alias equals alias.
func (i *Index) LookupAlias(alias string) []model.TemplateAccount {
	return i.byAlias[alias]
}

// LookupType returns all template accounts of the given canonical type.
func (i *Index) LookupType(t model.AccountType) []model.TemplateAccount {
	return i.byType[t]
}

// ByPriority returns up to limit template accounts ordered by descending
// priority, breaking ties by usage frequency then account code. This is the
// shortlist handed to the semantic oracle.
func (i *Index) ByPriority(limit int) []model.TemplateAccount {
	if limit <= 0 {
		return nil
	}

	sorted := make([]model.TemplateAccount, len(i.accounts))
	copy(sorted, i.accounts)
	sort.Slice(sorted, func(a, b int) bool {
		if sorted[a].Priority != sorted[b].Priority {
			return sorted[a].Priority > sorted[b].Priority
		}
		if sorted[a].UsageFrequency != sorted[b].UsageFrequency {
			return sorted[a].UsageFrequency > sorted[b].UsageFrequency
		}
		return sorted[a].AccountCode < sorted[b].AccountCode
	})

	if limit > len(sorted) {
		limit = len(sorted)
	}
	return sorted[:limit]
}

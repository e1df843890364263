// Package heuristic implements the local rule-based transaction parser. It is
// a pure function of its inputs and the supplied clock: no I/O, no network,
// always available as an immediate fallback when the remote assistant is slow
// or unreachable.
package heuristic

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"jianji/ledger-assistant/internal/dateutils"
	"jianji/ledger-assistant/internal/models"
)

// amountPattern matches the first decimal numeral in the text. Without an
// amount no transaction can be produced.
var amountPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)

// incomeKeywords classify the utterance as income when any of them appears.
// Substring match, first hit wins; everything else is an expense.
var incomeKeywords = []string{"收入", "赚", "工资", "奖金", "红包", "转账收到"}

// itemRule maps a keyword set to a display label. Rules are ordered from most
// to least specific; the first match wins.
type itemRule struct {
	keywords []string
	item     string
}

var expenseRules = []itemRule{
	{[]string{"餐", "饭", "吃", "食"}, "餐饮"},
	{[]string{"交通", "打车", "地铁", "公交", "油费"}, "交通"},
	{[]string{"购物", "买", "商场", "超市"}, "购物"},
	{[]string{"娱乐", "电影", "游戏", "KTV"}, "娱乐"},
	{[]string{"医疗", "医院", "药"}, "医疗"},
	{[]string{"教育", "学费", "课"}, "教育"},
	{[]string{"住房", "房租", "水电"}, "住房"},
}

var incomeRules = []itemRule{
	{[]string{"工资", "薪水"}, "工资收入"},
	{[]string{"奖金"}, "奖金"},
	{[]string{"投资"}, "投资收益"},
	{[]string{"兼职"}, "兼职收入"},
	{[]string{"红包"}, "红包"},
}

// Default labels when no rule matches.
const (
	defaultExpenseItem = "其他"
	defaultIncomeItem  = "其他收入"
)

// Parse extracts a tentative transaction from free text. It returns nil when
// no amount can be found; the caller should ask the user to rephrase. The
// clock is passed in so the parser stays directly unit-testable.
func Parse(input string, categories []models.ExpandedCategory, person string, now time.Time) *models.Draft {
	match := amountPattern.FindString(input)
	if match == "" {
		return nil
	}
	amount, err := decimal.NewFromString(match)
	if err != nil {
		return nil
	}

	typ := classifyType(input)
	item := guessItem(input, typ)

	// The note stays empty: the raw utterance already lives in the transcript
	// and the user fills the note during confirmation if they want one.
	return &models.Draft{
		Type:     typ,
		Date:     dateutils.ToISODate(now),
		Item:     item,
		Amount:   amount,
		Person:   person,
		Category: ResolveCategory(item, typ, categories),
	}
}

func classifyType(input string) models.TransactionType {
	for _, kw := range incomeKeywords {
		if strings.Contains(input, kw) {
			return models.TypeIncome
		}
	}
	return models.TypeExpense
}

func guessItem(input string, typ models.TransactionType) string {
	rules := expenseRules
	fallback := defaultExpenseItem
	if typ == models.TypeIncome {
		rules = incomeRules
		fallback = defaultIncomeItem
	}
	for _, rule := range rules {
		for _, kw := range rule.keywords {
			if strings.Contains(input, kw) {
				return rule.item
			}
		}
	}
	return fallback
}

// ResolveCategory maps a guessed label onto the ledger's expanded categories:
// first a same-type category whose name contains the label, then the type's
// "other" category, otherwise unresolved so the confirmation workflow forces
// a manual choice.
func ResolveCategory(item string, typ models.TransactionType, categories []models.ExpandedCategory) models.CategoryKey {
	for _, cat := range categories {
		if cat.Type == typ && strings.Contains(cat.Name, item) {
			return cat.Key
		}
	}

	other := "其他支出"
	if typ == models.TypeIncome {
		other = "其他收入"
	}
	for _, cat := range categories {
		if cat.Type == typ && strings.Contains(cat.Name, other) {
			return cat.Key
		}
	}

	return models.CategoryKey{}
}

package survey

import "strings"

// Target field names that normalization guarantees or derives.
const (
	ColPhone                = "phone"
	ColPrice                = "price"
	ColStockOnHand          = "stock_on_hand"
	ColEstimatedWeeklySales = "estimated_weekly_sales"
	ColTotalSales           = "total_sales"
	ColDate                 = "date"
)

var labelReplacer = strings.NewReplacer(
	" ", "_",
	"&", "and",
	"-", "_",
)

// NormalizeLabel rewrites a source column label to the target naming
// convention: trimmed, lowercase, spaces and hyphens as underscores, and "&"
// spelled "and". Applying it twice gives the same result as applying it once.
func NormalizeLabel(label string) string {
	return labelReplacer.Replace(strings.ToLower(strings.TrimSpace(label)))
}

// NormalizeColumns normalizes every column label of f.
func NormalizeColumns(f *Frame) {
	for i, c := range f.Columns {
		f.Columns[i] = NormalizeLabel(c)
	}
}

// DropDuplicateColumns keeps the leftmost of any columns sharing a label and
// drops the rest. It returns the number of columns dropped.
func DropDuplicateColumns(f *Frame) int {
	seen := make(map[string]bool, len(f.Columns))
	keep := make([]int, 0, len(f.Columns))
	for i, c := range f.Columns {
		if seen[c] {
			continue
		}
		seen[c] = true
		keep = append(keep, i)
	}
	dropped := len(f.Columns) - len(keep)
	if dropped > 0 {
		f.keepColumns(keep)
	}
	return dropped
}

// AliasRule maps a differently-named source column onto a required target
// field. Match is evaluated against normalized labels.
type AliasRule struct {
	Target  string
	Match   func(label string) bool
	Default any
}

// DefaultAliasRules are the fallback lookups for the numeric fields every
// normalized frame must carry. Form revisions append suffixes to these
// question names, so matching is by prefix.
var DefaultAliasRules = []AliasRule{
	{
		Target:  ColStockOnHand,
		Match:   hasPrefix(ColStockOnHand),
		Default: "0",
	},
	{
		Target: ColPrice,
		Match: func(label string) bool {
			return strings.HasPrefix(label, "price") || strings.Contains(label, "unit_price")
		},
		Default: "0",
	},
	{
		Target:  ColEstimatedWeeklySales,
		Match:   hasPrefix(ColEstimatedWeeklySales),
		Default: "0",
	},
}

func hasPrefix(prefix string) func(string) bool {
	return func(label string) bool {
		return strings.HasPrefix(label, prefix)
	}
}

// AliasResolution records how a target field was satisfied.
type AliasResolution struct {
	Target    string `json:"target" yaml:"target"`
	Source    string `json:"source,omitempty" yaml:"source,omitempty"`
	Defaulted bool   `json:"defaulted" yaml:"defaulted"`
}

// ResolveAliases applies rules in order. For each rule whose target column is
// absent, the first column (left to right) accepted by Match is renamed to the
// target; later matches stay in place. If nothing matches, the target is added
// with the rule's default in every row.
func ResolveAliases(f *Frame, rules []AliasRule) []AliasResolution {
	var out []AliasResolution
	for _, rule := range rules {
		if f.Has(rule.Target) {
			continue
		}

		res := AliasResolution{Target: rule.Target}
		for i, c := range f.Columns {
			if rule.Match(c) {
				res.Source = c
				f.RenameAt(i, rule.Target)
				break
			}
		}
		if res.Source == "" {
			res.Defaulted = true
			f.AddColumn(rule.Target, rule.Default)
		}
		out = append(out, res)
	}
	return out
}

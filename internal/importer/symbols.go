package importer

import (
	"strings"
	"unicode"
)

// DefaultSuffix is appended to symbols that carry no exchange suffix.
const DefaultSuffix = ".NS"

var knownSuffixes = []string{".NS", ".BO"}

// NormalizeSymbol uppercases symbol and appends DefaultSuffix unless it already
// names NSE or BSE.
func NormalizeSymbol(symbol string) string {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	for _, s := range knownSuffixes {
		if strings.Contains(symbol, s) {
			return symbol
		}
	}
	return symbol + DefaultSuffix
}

type symbolRule struct {
	matches func(name string) bool
	symbol  string
}

func containsAll(parts ...string) func(string) bool {
	return func(name string) bool {
		for _, p := range parts {
			if !strings.Contains(name, p) {
				return false
			}
		}
		return true
	}
}

func containsAny(parts ...string) func(string) bool {
	return func(name string) bool {
		for _, p := range parts {
			if strings.Contains(name, p) {
				return true
			}
		}
		return false
	}
}

// Rules run against the compacted name, so multi-word patterns have no spaces.
var symbolRules = []symbolRule{
	{matches: containsAll("RELIANCE"), symbol: "RELIANCE"},
	{matches: containsAll("TCS"), symbol: "TCS"},
	{matches: containsAny("INFOSYS", "INFY"), symbol: "INFY"},
	{matches: containsAll("HDFC", "BANK"), symbol: "HDFCBANK"},
	{matches: containsAll("ITC"), symbol: "ITC"},
	{matches: containsAll("TATA", "MOTOR"), symbol: "TATAMOTORS"},
	{matches: containsAll("WIPRO"), symbol: "WIPRO"},
	{matches: containsAll("BHARTI"), symbol: "BHARTIARTL"},
	{matches: containsAll("MARUTI"), symbol: "MARUTI"},
	{matches: containsAny("SBIN", "STATEBANK"), symbol: "SBIN"},
}

var companySuffixes = strings.NewReplacer(" LIMITED", "", " LTD.", "", " LTD", "")

// ExtractSymbol maps a broker display name to a bare exchange symbol. Names that
// match no rule are returned uppercased with punctuation and spaces removed.
func ExtractSymbol(name string) string {
	name = strings.ToUpper(strings.TrimSpace(name))
	name = companySuffixes.Replace(name)
	name = strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '&' || r == '-' {
			return r
		}
		return -1
	}, name)

	for _, rule := range symbolRules {
		if rule.matches(name) {
			return rule.symbol
		}
	}
	return name
}

// Package currency converts between major-unit amounts and the minor-unit
// integers Adyen expects on the wire.
package currency

import (
	"math"
	"strings"

	"github.com/fatflowers/adyen-bridge/pkg/apperr"
)

var zeroDecimal = []string{
	"CVE", "DJF", "GNF", "IDR", "JPY", "KMF", "KRW", "PYG",
	"RWF", "UGX", "VND", "VUV", "XAF", "XOF", "XPF",
}

var threeDecimal = []string{
	"BHD", "IQD", "JOD", "KWD", "LYD", "OMR", "TND",
}

var twoDecimal = []string{
	"AED", "ALL", "AMD", "ANG", "AOA", "ARS", "AUD", "AWG", "AZN", "BAM",
	"BBD", "BDT", "BGN", "BMD", "BND", "BOB", "BRL", "BSD", "BWP", "BYN",
	"BZD", "CAD", "CHF", "CLP", "CNY", "COP", "CRC", "CUP", "CZK", "DKK",
	"DOP", "DZD", "EGP", "ETB", "EUR", "FJD", "FKP", "GBP", "GEL", "GHS",
	"GIP", "GMD", "GTQ", "GYD", "HKD", "HNL", "HTG", "HUF", "ILS", "INR",
	"ISK", "JMD", "KES", "KGS", "KHR", "KYD", "KZT", "LAK", "LBP", "LKR",
	"LRD", "LSL", "MAD", "MDL", "MKD", "MMK", "MNT", "MOP", "MRU", "MUR",
	"MVR", "MWK", "MXN", "MYR", "MZN", "NAD", "NGN", "NIO", "NOK", "NPR",
	"NZD", "PAB", "PEN", "PGK", "PHP", "PKR", "PLN", "QAR", "RON", "RSD",
	"RUB", "SAR", "SBD", "SCR", "SEK", "SGD", "SHP", "SLE", "SOS", "SRD",
	"STN", "SVC", "SZL", "THB", "TOP", "TRY", "TTD", "TWD", "TZS", "UAH",
	"USD", "UYU", "UZS", "VES", "WST", "XCD", "YER", "ZAR", "ZMW",
}

var decimals = func() map[string]int {
	m := make(map[string]int, len(zeroDecimal)+len(twoDecimal)+len(threeDecimal))
	for _, c := range zeroDecimal {
		m[c] = 0
	}
	for _, c := range twoDecimal {
		m[c] = 2
	}
	for _, c := range threeDecimal {
		m[c] = 3
	}
	return m
}()

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// IsSupported reports whether code is a known currency.
func IsSupported(code string) bool {
	_, ok := decimals[normalize(code)]
	return ok
}

// Decimals returns the number of minor-unit digits for code.
func Decimals(code string) (int, error) {
	d, ok := decimals[normalize(code)]
	if !ok {
		return 0, apperr.Validation("unsupported currency", map[string]string{"currency": code})
	}
	return d, nil
}

// ResolveMinorUnits converts a major-unit amount, e.g. 10.5 EUR, to minor units (1050).
func ResolveMinorUnits(amount float64, code string) (int64, error) {
	d, err := Decimals(code)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(amount * math.Pow10(d))), nil
}

// ToMajorUnits is the inverse of ResolveMinorUnits.
func ToMajorUnits(minor int64, code string) (float64, error) {
	d, err := Decimals(code)
	if err != nil {
		return 0, err
	}
	return float64(minor) / math.Pow10(d), nil
}

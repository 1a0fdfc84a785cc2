package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount renders an amount with thousand separators and a currency code, e.g. "1,250.00 SAR".
func FormatAmount(amount float64, currency string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	whole := int64(amount)
	cents := int64((amount-float64(whole))*100 + 0.5)
	if cents == 100 {
		whole++
		cents = 0
	}
	out := fmt.Sprintf("%s%s.%02d", sign, formatThousand(whole), cents)
	if c := strings.TrimSpace(currency); c != "" {
		out += " " + c
	}
	return out
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}

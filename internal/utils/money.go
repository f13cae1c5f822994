package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatFare renders a rupee amount as "Rs 1,250.00"; nil renders "-".
func FormatFare(amount *float64) string {
	if amount == nil {
		return "-"
	}
	v := *amount
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	whole := int64(v)
	paise := int64((v-float64(whole))*100 + 0.5)
	if paise == 100 {
		whole++
		paise = 0
	}
	return fmt.Sprintf("%sRs %s.%02d", sign, formatThousand(whole), paise)
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

package catalog

import (
	"fmt"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatPrice renders an amount of minor units with the currency code and
// grouped digits, e.g. "JPY 3,500" or "USD 12.50".
func (c *Catalog) FormatPrice(amount int64) string {
	scale, _ := currency.Standard.Rounding(c.unit)
	if scale == 0 {
		return printer.Sprintf("%s %d", c.unit.String(), amount)
	}

	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	div := int64(1)
	for range scale {
		div *= 10
	}
	minor := fmt.Sprintf("%0*d", scale, amount%div)
	return printer.Sprintf("%s %s%d.%s", c.unit.String(), sign, amount/div, minor)
}

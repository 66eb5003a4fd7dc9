package common

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// Default separator widths
	DefaultWidth = 80
	WideWidth    = 100
)

// PrintSeparator prints a separator line with the specified character and width
func PrintSeparator(char string, width int) {
	fmt.Println(strings.Repeat(char, width))
}

// PrintSeparatorNewline prints a separator with a newline before it
func PrintSeparatorNewline(char string, width int) {
	fmt.Println("\n" + strings.Repeat(char, width))
}

// PrintHeader prints a formatted header with title and separators
func PrintHeader(title string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(title)
	PrintSeparator("=", width)
}

// PrintFooter prints a formatted footer with message and separators
func PrintFooter(message string, width int) {
	PrintSeparatorNewline("=", width)
	fmt.Println(message)
	fmt.Println(strings.Repeat("=", width) + "\n")
}

// PrintBoxSeparator prints a box-drawing separator line (for sub-sections)
func PrintBoxSeparator(width int) {
	fmt.Println("├" + strings.Repeat("─", width))
}

// BoxPrefix returns the appropriate box-drawing prefix for list items
func BoxPrefix(isLast bool) string {
	if isLast {
		return "└  "
	}
	return "│  "
}

// BoxDetailPrefix returns the prefix for detail lines under list items
func BoxDetailPrefix(isLast bool) string {
	if isLast {
		return "   "
	}
	return "│  "
}

// FormatMoney renders an amount with two decimals and its currency code
func FormatMoney(amount decimal.Decimal, currency string) string {
	return fmt.Sprintf("%s %s", amount.StringFixed(2), currency)
}

// FormatSigned renders a ledger movement with an explicit sign
func FormatSigned(amount decimal.Decimal) string {
	if amount.IsPositive() {
		return "+" + amount.StringFixed(2)
	}
	return amount.StringFixed(2)
}

// StatusMark returns a one-character marker for a status string
func StatusMark(status string) string {
	switch status {
	case "completed", "verified":
		return "✓"
	case "failed", "fake":
		return "✗"
	case "active", "pending":
		return "•"
	}
	return "?"
}

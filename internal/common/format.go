// Package common — format.go содержит форматирование чисел и склонение
// русских числительных для логов, уведомлений и вывода CLI.
package common

import "fmt"

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(12350) → "12 350"
func FormatNumber(n int) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%s %03d", FormatNumber(n/1000), n%1000)
}

// Pluralize выбирает форму слова для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → one (1, 21, 101)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → few (2, 3, 22)
//   - Остальные случаи → many (0, 5-20, 25, 100)
func Pluralize(n int, one, few, many string) string {
	if n < 0 {
		n = -n
	}
	lastDigit, lastTwo := n%10, n%100

	if lastDigit == 1 && lastTwo != 11 {
		return one
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwo < 12 || lastTwo > 14) {
		return few
	}
	return many
}

// FormatClout создаёт строку вида "+15 клаута" или "-1 клаут".
//
// Примеры:
//
//	FormatClout(15)   → "+15 клаута"
//	FormatClout(1)    → "+1 клаут"
//	FormatClout(-48)  → "-48 клаута"
func FormatClout(amount int) string {
	word := Pluralize(amount, "клаут", "клаута", "клаута")
	if amount >= 0 {
		return "+" + FormatNumber(amount) + " " + word
	}
	return FormatNumber(amount) + " " + word
}

// FormatBadges — "1 бейдж", "3 бейджа", "5 бейджей".
func FormatBadges(n int) string {
	return fmt.Sprintf("%d %s", n, Pluralize(n, "бейдж", "бейджа", "бейджей"))
}

// FormatUsers — "1 пользователь", "2 пользователя", "5 пользователей".
func FormatUsers(n int) string {
	return fmt.Sprintf("%s %s", FormatNumber(n), Pluralize(n, "пользователь", "пользователя", "пользователей"))
}

// Package month содержит календарную арифметику по месяцам для расчёта сроков подписки.
package month

import (
	"time"
)

// AddMonths сдвигает t на months календарных месяцев, сохраняя число месяца.
// Если в целевом месяце такого числа нет, берётся последний день целевого месяца
// (31 января + 1 месяц = 29 февраля в високосный год). Время суток и часовой пояс сохраняются.
func AddMonths(t time.Time, months int) time.Time {
	year, mon, day := t.Date()
	hour, minute, sec := t.Clock()

	total := int(mon) - 1 + months
	targetYear := year + floorDiv(total, 12)
	targetMonth := time.Month(floorMod(total, 12) + 1)

	if last := DaysIn(targetYear, targetMonth); day > last {
		day = last
	}
	return time.Date(targetYear, targetMonth, day, hour, minute, sec, t.Nanosecond(), t.Location())
}

// DaysIn возвращает количество дней в месяце m года year.
func DaysIn(year int, m time.Month) int {
	// нулевой день следующего месяца = последний день текущего
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Remaining возвращает количество полных месяцев между now и expiry
// по календарю часового пояса now. Для истёкшей подписки возвращает 0.
func Remaining(now, expiry time.Time) int {
	if !expiry.After(now) {
		return 0
	}
	expiry = expiry.In(now.Location())
	n := (expiry.Year()-now.Year())*12 + int(expiry.Month()) - int(now.Month())
	for n > 0 && AddMonths(now, n).After(expiry) {
		n--
	}
	return max(n, 0)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}

func floorMod(a, b int) int {
	return a - floorDiv(a, b)*b
}

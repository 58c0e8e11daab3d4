package money

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ignatzorin/homeservice-backend/internal/pkg/apperror"
)

// Все денежные суммы хранятся в минорных единицах (халалы для SAR):
// int64, две десятичные позиции. Плавающая точка не используется нигде,
// кроме границы форматирования.

var ErrInvalidAmount = apperror.New(apperror.ErrCodeInvalidAmount, "некорректная сумма")

// ParseMinor разбирает строку вида "125.50" в минорные единицы.
// Допускается не более двух знаков после точки.
func ParseMinor(input string) (int64, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return 0, ErrInvalidAmount
	}

	sign := int64(1)
	switch trimmed[0] {
	case '-':
		sign = -1
		trimmed = trimmed[1:]
	case '+':
		trimmed = trimmed[1:]
	}

	parts := strings.SplitN(trimmed, ".", 2)
	wholePart := parts[0]
	if wholePart == "" {
		wholePart = "0"
	}
	if !isDigits(wholePart) {
		return 0, ErrInvalidAmount
	}

	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if len(fracPart) > 2 {
		return 0, ErrInvalidAmount
	}
	if fracPart != "" && !isDigits(fracPart) {
		return 0, ErrInvalidAmount
	}

	whole, err := strconv.ParseInt(wholePart, 10, 64)
	if err != nil {
		return 0, ErrInvalidAmount
	}

	frac := int64(0)
	switch len(fracPart) {
	case 1:
		frac = int64(fracPart[0]-'0') * 10
	case 2:
		value, err := strconv.ParseInt(fracPart, 10, 64)
		if err != nil {
			return 0, ErrInvalidAmount
		}
		frac = value
	}

	return sign * (whole*100 + frac), nil
}

// FormatMinor форматирует минорные единицы в строку с двумя знаками.
func FormatMinor(value int64) string {
	negative := value < 0
	if negative {
		value = -value
	}
	formatted := fmt.Sprintf("%d.%02d", value/100, value%100)
	if negative {
		return "-" + formatted
	}
	return formatted
}

// Split делит сумму на комиссию платформы и чистую выплату исполнителю.
// Комиссия округляется до минорной единицы (банковские полкопейки — вверх),
// остаток целиком уходит исполнителю, поэтому commission + net == total всегда.
func Split(total int64, rate decimal.Decimal) (commission, net int64) {
	commission = decimal.NewFromInt(total).Mul(rate).Round(0).IntPart()
	if commission < 0 {
		commission = 0
	}
	if commission > total {
		commission = total
	}
	net = total - commission
	return commission, net
}

// ParseRate разбирает ставку комиссии вида "0.15".
func ParseRate(input string) (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(input))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("money: некорректная ставка комиссии %q: %w", input, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Decimal{}, fmt.Errorf("money: ставка комиссии %q вне диапазона [0, 1]", input)
	}
	return rate, nil
}

func isDigits(value string) bool {
	for _, r := range value {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

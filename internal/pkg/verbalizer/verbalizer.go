package verbalizer

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxAmount 单张支票允许的最大金额
const MaxAmount = 25_000_000.00

// decimalTolerance 判断金额是否超过两位小数时允许的浮点误差
const decimalTolerance = 1e-9

var (
	ErrExceedsLimit    = errors.New("amount exceeds the limit of 25 million")
	ErrNegative        = errors.New("negative amounts are not allowed")
	ErrNotFinite       = errors.New("amount is not a finite number")
	ErrTooManyDecimals = errors.New("amount has more than two decimal places")
)

var maxAmountDecimal = decimal.NewFromFloat(MaxAmount)

var ones = [10]string{"Zero", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine"}

var teens = [10]string{
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = [10]string{"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety"}

// scales 以 1000 为基的分组单位，金额上限决定了不需要超过 Million
var scales = [3]string{"", "Thousand", "Million"}

// Amount 校验通过后的金额拆分结果
type Amount struct {
	Whole int64
	Cents int64
}

// Validate 按固定顺序校验浮点金额：上限、负数、非有限值、小数位数
func Validate(amount float64) (Amount, error) {
	if amount > MaxAmount {
		return Amount{}, ErrExceedsLimit
	}
	if amount < 0 {
		return Amount{}, ErrNegative
	}
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return Amount{}, ErrNotFinite
	}
	scaled := math.Round(amount * 100)
	if math.Abs(scaled/100-amount) > decimalTolerance {
		return Amount{}, ErrTooManyDecimals
	}
	total := int64(scaled)
	return Amount{Whole: total / 100, Cents: total % 100}, nil
}

// ValidateDecimal 对数据库中保存的 decimal 金额做同样的校验，不经过浮点运算
func ValidateDecimal(amount decimal.Decimal) (Amount, error) {
	if amount.GreaterThan(maxAmountDecimal) {
		return Amount{}, ErrExceedsLimit
	}
	if amount.IsNegative() {
		return Amount{}, ErrNegative
	}
	if !amount.Round(2).Equal(amount) {
		return Amount{}, ErrTooManyDecimals
	}
	total := amount.Shift(2).IntPart()
	return Amount{Whole: total / 100, Cents: total % 100}, nil
}

// Verbalize 将金额转换为支票上打印的英文大写
func Verbalize(amount float64, payee string) (string, error) {
	a, err := Validate(amount)
	if err != nil {
		return "", err
	}
	return a.Text(payee), nil
}

// VerbalizeDecimal 同 Verbalize，输入为 decimal 金额
func VerbalizeDecimal(amount decimal.Decimal, payee string) (string, error) {
	a, err := ValidateDecimal(amount)
	if err != nil {
		return "", err
	}
	return a.Text(payee), nil
}

// Text 输出两行文本: "Payee: ...\nAmount: ... Dollars and ... Cents"
func (a Amount) Text(payee string) string {
	dollarWord := "Dollars"
	if a.Whole == 1 {
		dollarWord = "Dollar"
	}
	centWord := "Cents"
	if a.Cents == 1 {
		centWord = "Cent"
	}
	// 分的部分始终小于 100，直接走分块渲染，0 分输出 "Zero"
	return fmt.Sprintf("Payee: %s\nAmount: %s %s and %s %s",
		payee, Words(a.Whole), dollarWord, chunkToWords(int(a.Cents)), centWord)
}

// Words 将整数转换为英文，0 输出小写 "zero"
func Words(n int64) string {
	if n == 0 {
		return "zero"
	}

	var groups []string
	for index := 0; n > 0 && index < len(scales); index++ {
		if chunk := int(n % 1000); chunk != 0 {
			group := strings.TrimSpace(chunkToWords(chunk) + " " + scales[index])
			groups = append([]string{group}, groups...)
		}
		n /= 1000
	}
	return strings.Join(groups, " ")
}

func chunkToWords(n int) string {
	switch {
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n < 100:
		if n%10 == 0 {
			return tens[n/10]
		}
		return tens[n/10] + "-" + ones[n%10]
	default:
		if n%100 == 0 {
			return ones[n/100] + " Hundred"
		}
		return ones[n/100] + " Hundred and " + chunkToWords(n%100)
	}
}

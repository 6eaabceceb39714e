// Package money does integer arithmetic on token amounts expressed as decimal
// strings of base units (wei-style). Amounts never round-trip through floats.
package money

import (
	"errors"
	"math/big"
)

var ErrInvalidAmount = errors.New("invalid amount")

// Parse accepts a non-negative base-unit decimal string.
func Parse(s string) (*big.Int, error) {
	if s == "" {
		return nil, ErrInvalidAmount
	}
	v, ok := new(big.Int).SetString(s, 10)
	if !ok || v.Sign() < 0 {
		return nil, ErrInvalidAmount
	}
	return v, nil
}

func IsPositive(s string) bool {
	v, err := Parse(s)
	return err == nil && v.Sign() > 0
}

func Add(a, b string) (string, error) {
	av, err := Parse(a)
	if err != nil {
		return "", err
	}
	bv, err := Parse(b)
	if err != nil {
		return "", err
	}
	return new(big.Int).Add(av, bv).String(), nil
}

// Sub returns a-b and fails if the result would go negative.
func Sub(a, b string) (string, error) {
	av, err := Parse(a)
	if err != nil {
		return "", err
	}
	bv, err := Parse(b)
	if err != nil {
		return "", err
	}
	res := new(big.Int).Sub(av, bv)
	if res.Sign() < 0 {
		return "", ErrInvalidAmount
	}
	return res.String(), nil
}

// Net computes amount - gasFee - platformFee. Empty fee strings count as zero.
func Net(amount, gasFee, platformFee string) (string, error) {
	net := amount
	var err error
	for _, fee := range []string{gasFee, platformFee} {
		if fee == "" {
			continue
		}
		net, err = Sub(net, fee)
		if err != nil {
			return "", err
		}
	}
	if _, err := Parse(net); err != nil {
		return "", err
	}
	return net, nil
}

func Cmp(a, b string) (int, error) {
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return av.Cmp(bv), nil
}

// BpsOf returns amount*bps/10000 rounded down, for basis-point fee policies.
func BpsOf(amount string, bps int64) (string, error) {
	if bps < 0 || bps > 10000 {
		return "", ErrInvalidAmount
	}
	av, err := Parse(amount)
	if err != nil {
		return "", err
	}
	num := new(big.Int).Mul(av, big.NewInt(bps))
	return num.Quo(num, big.NewInt(10000)).String(), nil
}

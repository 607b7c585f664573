package models

import "github.com/shopspring/decimal"

// ToFloat64 safely converts decimal to float64
func ToFloat64(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}

// RoundScore rounds a score to two decimal places for reporting
func RoundScore(score float64) float64 {
	return ToFloat64(decimal.NewFromFloat(score).Round(2))
}

// RoundRating rounds an average star rating to one decimal place
func RoundRating(rating float64) float64 {
	return ToFloat64(decimal.NewFromFloat(rating).Round(1))
}

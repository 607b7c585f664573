package models

import (
	"encoding/json"
	"time"
)

// MaxInsightKeywords caps each keyword list of a CommunityInsight
const MaxInsightKeywords = 10

// CommunityInsight summarizes what posts say about a product
type CommunityInsight struct {
	LastUpdated      time.Time `json:"last_updated" db:"last_updated"`
	CommonPraise     *string   `json:"common_praise,omitempty" db:"common_praise"`
	CommonComplaints *string   `json:"common_complaints,omitempty" db:"common_complaints"`
	ProductName      string    `json:"product_name" db:"product_name"`
	PositiveJSON     string    `json:"-" db:"positive_keywords"`
	NegativeJSON     string    `json:"-" db:"negative_keywords"`
	PositiveKeywords []string  `json:"positive_keywords" db:"-"`
	NegativeKeywords []string  `json:"negative_keywords" db:"-"`
}

// EncodeKeywords fills the JSON columns from the keyword slices
func (c *CommunityInsight) EncodeKeywords() error {
	pos, err := marshalKeywords(c.PositiveKeywords)
	if err != nil {
		return err
	}
	neg, err := marshalKeywords(c.NegativeKeywords)
	if err != nil {
		return err
	}
	c.PositiveJSON, c.NegativeJSON = pos, neg
	return nil
}

// DecodeKeywords fills the keyword slices from the JSON columns.
// Empty or malformed columns decode to an empty list.
func (c *CommunityInsight) DecodeKeywords() {
	c.PositiveKeywords = unmarshalKeywords(c.PositiveJSON)
	c.NegativeKeywords = unmarshalKeywords(c.NegativeJSON)
}

func marshalKeywords(words []string) (string, error) {
	if words == nil {
		words = []string{}
	}
	data, err := json.Marshal(words)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalKeywords(raw string) []string {
	words := []string{}
	if raw == "" {
		return words
	}
	if err := json.Unmarshal([]byte(raw), &words); err != nil || words == nil {
		return []string{}
	}
	return words
}

package services

import (
	"regexp"
	"strconv"
	"strings"

	"shop-harvester/models"
	"shop-harvester/utils"
)

var (
	// priceDigits captures the leading run of digits once separators are gone
	priceDigits = regexp.MustCompile(`\d+`)
	// ratingDecimal captures a rating such as "4.3"
	ratingDecimal = regexp.MustCompile(`\d+\.\d+`)

	priceNoise = strings.NewReplacer("₹", "", ",", "")
)

// NormalizePrice turns a harvested price such as "₹1,299" into 1299.
// ok is false when the text holds no digits, which excludes the record.
func NormalizePrice(raw string) (float64, bool) {
	if raw == models.Missing {
		return 0, false
	}
	match := priceDigits.FindString(priceNoise.Replace(raw))
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeRating extracts a 0.0–5.0 rating such as "4.3 out of 5 stars" → 4.3.
func NormalizeRating(raw string) (float64, bool) {
	match := ratingDecimal.FindString(raw)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil || v < 0 || v > 5 {
		return 0, false
	}
	return v, true
}

// Normalizer derives the typed view of stored records.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize keeps every record whose price parses, in input order.
// The rating is set only when one could be read.
func (n *Normalizer) Normalize(records []models.ListingRecord) []models.NormalizedRecord {
	out := make([]models.NormalizedRecord, 0, len(records))
	for _, r := range records {
		price, ok := NormalizePrice(r.RawPrice)
		if !ok {
			n.logger.Debug("[normalizer] No price in %q for %s", r.RawPrice, r.Link)
			continue
		}

		nr := models.NormalizedRecord{ListingRecord: r, Price: price}
		if rating, ok := NormalizeRating(r.RawRating); ok {
			nr.Rating = &rating
		}
		out = append(out, nr)
	}

	n.logger.Debug("[normalizer] Normalized %d → %d records (rejected %d)",
		len(records), len(out), len(records)-len(out))
	return out
}

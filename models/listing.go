package models

// Source identifies the retail site a record was harvested from.
type Source string

const (
	SourceAmazon Source = "Amazon"
	SourceMyntra Source = "Myntra"
)

// Missing is stored in place of an optional field that could not be extracted.
const Missing = "N/A"

// ListingRecord is one harvested item exactly as it was read from the page.
// Source, Title and Link are always populated; RawPrice and RawRating may hold Missing.
type ListingRecord struct {
	Source    Source `json:"source"`
	Title     string `json:"title"`
	RawPrice  string `json:"raw_price"`
	RawRating string `json:"raw_rating"`
	Link      string `json:"link"`
}

// NormalizedRecord is the typed view derived from a ListingRecord on read.
// It is never persisted.
type NormalizedRecord struct {
	ListingRecord
	Price  float64  `json:"price"`
	Rating *float64 `json:"rating,omitempty"`
}

// SourceStats holds the per-site aggregates of an InsightReport.
type SourceStats struct {
	Count        int     `json:"count"`
	AveragePrice float64 `json:"average_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	RatedCount   int     `json:"rated_count"`
	AvgRating    float64 `json:"average_rating"`
}

// PriceBucket counts listings whose price falls in [Low, High).
type PriceBucket struct {
	Low    float64        `json:"low"`
	High   float64        `json:"high"`
	Counts map[Source]int `json:"counts"`
}

// InsightReport holds the computed analytics over the normalized dataset.
type InsightReport struct {
	TotalRows       int                    `json:"total_rows"`
	TotalListings   int                    `json:"total_listings"`
	Rejected        int                    `json:"rejected"`
	DuplicateLinks  int                    `json:"duplicate_links"`
	BySource        map[Source]SourceStats `json:"by_source"`
	MostExpensive   *NormalizedRecord      `json:"most_expensive,omitempty"`
	TopRated        []NormalizedRecord     `json:"top_rated"`
	PriceBuckets    []PriceBucket          `json:"price_buckets"`
	RatingHistogram map[string]int         `json:"rating_histogram"`
}

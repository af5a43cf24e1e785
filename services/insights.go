package services

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"shop-harvester/models"
	"shop-harvester/utils"
)

// priceEdges are the lower bounds of the price histogram buckets, in rupees.
// The last bucket is open-ended.
var priceEdges = []float64{0, 500, 1000, 2000, 5000}

// ratingBins label the rating histogram; a rating r falls in bin floor(r),
// with 5.0 counted in the top bin.
var ratingBins = []string{"0-1", "1-2", "2-3", "3-4", "4-5"}

const topRatedLimit = 5

type InsightService struct {
	normalizer *Normalizer
	logger     *utils.Logger
}

func NewInsightService(logger *utils.Logger) *InsightService {
	return &InsightService{normalizer: NewNormalizer(logger), logger: logger}
}

// Report normalizes the stored rows and summarizes them. Rows without a
// parsable price count as rejected.
func (s *InsightService) Report(rows []models.ListingRecord) *models.InsightReport {
	records := s.normalizer.Normalize(rows)
	report := s.Generate(records)
	report.TotalRows = len(rows)
	report.Rejected = len(rows) - len(records)

	links := utils.NewLinkSet()
	report.DuplicateLinks = 0
	for _, r := range rows {
		if !links.Add(r.Link) {
			report.DuplicateLinks++
		}
	}

	s.logger.Info("[insights] %d rows, %d priced, %d rejected, %d duplicate links",
		report.TotalRows, report.TotalListings, report.Rejected, report.DuplicateLinks)
	return report
}

// Generate summarizes already-normalized records.
func (s *InsightService) Generate(records []models.NormalizedRecord) *models.InsightReport {
	report := &models.InsightReport{
		TotalRows:       len(records),
		TotalListings:   len(records),
		BySource:        make(map[models.Source]models.SourceStats),
		TopRated:        []models.NormalizedRecord{},
		PriceBuckets:    newPriceBuckets(),
		RatingHistogram: make(map[string]int, len(ratingBins)),
	}
	for _, bin := range ratingBins {
		report.RatingHistogram[bin] = 0
	}

	if len(records) == 0 {
		return report
	}

	priceTotals := make(map[models.Source]float64)
	ratingTotals := make(map[models.Source]float64)
	links := utils.NewLinkSet()
	var rated []models.NormalizedRecord

	for i := range records {
		r := records[i]
		st := report.BySource[r.Source]
		if st.Count == 0 || r.Price < st.MinPrice {
			st.MinPrice = r.Price
		}
		if st.Count == 0 || r.Price > st.MaxPrice {
			st.MaxPrice = r.Price
		}
		st.Count++
		priceTotals[r.Source] += r.Price

		if r.Rating != nil {
			st.RatedCount++
			ratingTotals[r.Source] += *r.Rating
			rated = append(rated, r)
			report.RatingHistogram[ratingBin(*r.Rating)]++
		}
		report.BySource[r.Source] = st

		if report.MostExpensive == nil || r.Price > report.MostExpensive.Price {
			report.MostExpensive = &records[i]
		}
		if !links.Add(r.Link) {
			report.DuplicateLinks++
		}
		bucketFor(report.PriceBuckets, r.Price).Counts[r.Source]++
	}

	for src, st := range report.BySource {
		st.AveragePrice = round2(priceTotals[src] / float64(st.Count))
		st.MinPrice = round2(st.MinPrice)
		st.MaxPrice = round2(st.MaxPrice)
		if st.RatedCount > 0 {
			st.AvgRating = round2(ratingTotals[src] / float64(st.RatedCount))
		}
		report.BySource[src] = st
	}

	sort.SliceStable(rated, func(i, j int) bool {
		return *rated[i].Rating > *rated[j].Rating
	})
	if len(rated) > topRatedLimit {
		rated = rated[:topRatedLimit]
	}
	report.TopRated = append(report.TopRated, rated...)

	return report
}

// newPriceBuckets builds empty buckets from priceEdges. A High of 0 marks
// the open-ended last bucket.
func newPriceBuckets() []models.PriceBucket {
	out := make([]models.PriceBucket, len(priceEdges))
	for i, lo := range priceEdges {
		out[i] = models.PriceBucket{Low: lo, Counts: make(map[models.Source]int)}
		if i+1 < len(priceEdges) {
			out[i].High = priceEdges[i+1]
		}
	}
	return out
}

func bucketFor(buckets []models.PriceBucket, price float64) *models.PriceBucket {
	for i := range buckets {
		if buckets[i].High == 0 || price < buckets[i].High {
			return &buckets[i]
		}
	}
	return &buckets[len(buckets)-1]
}

func ratingBin(r float64) string {
	i := int(math.Floor(r))
	if i >= len(ratingBins) {
		i = len(ratingBins) - 1
	}
	if i < 0 {
		i = 0
	}
	return ratingBins[i]
}

// Print writes the report with text bar charts.
func (s *InsightService) Print(w io.Writer, r *models.InsightReport) {
	sep := strings.Repeat("═", 58)
	thin := strings.Repeat("─", 58)
	sources := sortedSources(r.BySource)

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n", sep)
	fmt.Fprintf(w, "\033[1;35m  📊 PRODUCT LISTING INSIGHTS\033[0m\n")
	fmt.Fprintf(w, "\033[1;35m%s\033[0m\n\n", sep)

	fmt.Fprintf(w, "\033[1;33m  Overview\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	fmt.Fprintf(w, "  Stored rows            : \033[1m%d\033[0m\n", r.TotalRows)
	fmt.Fprintf(w, "  Priced listings        : \033[1m%d\033[0m\n", r.TotalListings)
	fmt.Fprintf(w, "  Rejected (no price)    : \033[1m%d\033[0m\n", r.Rejected)
	fmt.Fprintf(w, "  Duplicate links        : \033[1m%d\033[0m\n", r.DuplicateLinks)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Price Statistics by Source\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	if len(sources) == 0 {
		fmt.Fprintf(w, "  No price data available\n")
	}
	for _, src := range sources {
		st := r.BySource[src]
		fmt.Fprintf(w, "  %-8s n=%-4d avg \033[1;32m₹%.2f\033[0m  min ₹%.2f  max ₹%.2f",
			src, st.Count, st.AveragePrice, st.MinPrice, st.MaxPrice)
		if st.RatedCount > 0 {
			fmt.Fprintf(w, "  rating %.2f (%d)", st.AvgRating, st.RatedCount)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w)

	// mean price per source
	if len(sources) > 0 {
		fmt.Fprintf(w, "\033[1;33m  Average Price per Source\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		var top float64
		for _, src := range sources {
			top = math.Max(top, r.BySource[src].AveragePrice)
		}
		for _, src := range sources {
			avg := r.BySource[src].AveragePrice
			fmt.Fprintf(w, "  %-8s %s ₹%.0f\n", src, bar(avg, top, 36), avg)
		}
		fmt.Fprintln(w)
	}

	if r.MostExpensive != nil {
		fmt.Fprintf(w, "\033[1;33m  Most Expensive Listing\033[0m\n")
		fmt.Fprintf(w, "  %s\n", thin)
		fmt.Fprintf(w, "  %s\n", truncate(r.MostExpensive.Title, 54))
		fmt.Fprintf(w, "  Source : %s\n", r.MostExpensive.Source)
		fmt.Fprintf(w, "  Price  : \033[1;31m₹%.2f\033[0m\n", r.MostExpensive.Price)
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "\033[1;33m  Top %d Highest Rated\033[0m\n", topRatedLimit)
	fmt.Fprintf(w, "  %s\n", thin)
	if len(r.TopRated) == 0 {
		fmt.Fprintf(w, "  No rated listings found\n")
	}
	for i, l := range r.TopRated {
		fmt.Fprintf(w, "  \033[1m%d.\033[0m %-44s \033[1;32m%.1f ★\033[0m\n",
			i+1, truncate(l.Title, 42), *l.Rating)
	}
	fmt.Fprintln(w)

	// price distribution per source
	fmt.Fprintf(w, "\033[1;33m  Price Distribution\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	var most int
	for _, b := range r.PriceBuckets {
		for _, n := range b.Counts {
			most = max(most, n)
		}
	}
	for _, b := range r.PriceBuckets {
		label := fmt.Sprintf("₹%.0f+", b.Low)
		if b.High > 0 {
			label = fmt.Sprintf("₹%.0f-%.0f", b.Low, b.High)
		}
		for _, src := range sources {
			n := b.Counts[src]
			fmt.Fprintf(w, "  %-12s %-8s %s (%d)\n", label, src, bar(float64(n), float64(most), 30), n)
			label = ""
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "\033[1;33m  Rating Distribution\033[0m\n")
	fmt.Fprintf(w, "  %s\n", thin)
	most = 0
	for _, n := range r.RatingHistogram {
		most = max(most, n)
	}
	for _, bin := range ratingBins {
		n := r.RatingHistogram[bin]
		fmt.Fprintf(w, "  %-6s %s (%d)\n", bin, bar(float64(n), float64(most), 36), n)
	}

	fmt.Fprintf(w, "\n\033[1;35m%s\033[0m\n\n", sep)
}

func sortedSources(m map[models.Source]models.SourceStats) []models.Source {
	out := make([]models.Source, 0, len(m))
	for src := range m {
		out = append(out, src)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// bar scales v against top into at most width blocks.
func bar(v, top float64, width int) string {
	if top <= 0 || v <= 0 {
		return ""
	}
	n := int(math.Round(v / top * float64(width)))
	return strings.Repeat("█", max(n, 1))
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

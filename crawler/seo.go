package crawler

// ScoreSEO computes a coarse, placeholder SEO score in [0, 100] from the
// fields a scrape extracts. It is not a ranking signal on its own — just a
// cheap summary persisted alongside each page for the downstream indexer to
// consult.
func ScoreSEO(p ScrapedPage) int {
	score := 0
	if p.Title != "" {
		score += 25
	}
	if p.MetaDescription != "" {
		score += 20
		if n := len(p.MetaDescription); n >= 50 && n <= 160 {
			score += 5
		}
	}
	if p.MetaKeywords != "" {
		score += 20
	}
	if p.MetaOGImage != "" {
		score += 10
	}
	if p.HasH1 {
		score += 10
	}
	if len(p.Links) >= 5 {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

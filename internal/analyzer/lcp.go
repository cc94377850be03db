package analyzer

// lcpAdvice is prepended to the flagged record when the page is likely
// framework-built and the image bypasses the framework component
const lcpAdvice = "This is likely the LCP image; serve it with next/image and the priority attribute so it loads eagerly"

// SelectLCP flags the likely Largest Contentful Paint image: the
// largest byte size among records both visible and in the viewport,
// falling back to the largest overall when that partition is empty.
// Strictly-greater comparison keeps the first encountered on ties, so
// the choice is stable in discovery order. Exactly one record is
// flagged unless there are none.
func SelectLCP(records []ImageRecord, isLikelyFrameworkSite bool) {
	if len(records) == 0 {
		return
	}

	best := -1
	for i := range records {
		if !records[i].IsVisible || !records[i].IsInViewport {
			continue
		}
		if best == -1 || records[i].ByteSize > records[best].ByteSize {
			best = i
		}
	}

	if best == -1 {
		best = 0
		for i := range records {
			if records[i].ByteSize > records[best].ByteSize {
				best = i
			}
		}
	}

	records[best].IsLCP = true

	if !records[best].IsUsingFrameworkImageComponent && isLikelyFrameworkSite {
		records[best].Recommendations = append([]string{lcpAdvice}, records[best].Recommendations...)
	}
}

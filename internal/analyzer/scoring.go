package analyzer

import "fmt"

// lowTTLSeconds is the advisory threshold for short cache lifetimes.
// Independent of the cache-miss score penalty: a hit with a short TTL
// earns an appended advisory, never a deduction.
const lowTTLSeconds = 86400

// Score computes the 0-100 optimization score and the ordered
// recommendation list for one normalized record. Pure function of the
// record plus the page-level framework flag; recommendations are
// derived from the same inputs, not from the score.
func Score(rec *ImageRecord, isLikelyFrameworkSite bool) (int, []string) {
	return scoreRecord(rec), buildRecommendations(rec, isLikelyFrameworkSite)
}

// scoreRecord starts at 100 and subtracts weighted penalties,
// clamped to [0, 100]
func scoreRecord(rec *ImageRecord) int {
	score := 100

	// Cache miss: evidence exists and no hit signal was found
	if rec.CacheEvidence != nil && !rec.CacheEvidence.CacheHit {
		score -= 15
	}

	switch rec.Format {
	case "webp", "avif":
		// modern formats keep full marks
	case "png":
		score -= 15
	case "jpeg":
		score -= 10
	case "gif":
		score -= 30
	default:
		score -= 5
	}

	switch {
	case rec.ByteSize > 1000000:
		score -= 20
	case rec.ByteSize > 500000:
		score -= 10
	case rec.ByteSize > 200000:
		score -= 5
	}

	if rec.Dimensions != nil {
		area := rec.Dimensions.Width * rec.Dimensions.Height
		switch {
		case area > 2000000:
			score -= 15
		case area > 1000000:
			score -= 10
		case area > 500000:
			score -= 5
		}
	}

	// Only the variant count is penalized; breakpoint coverage gaps
	// surface as advice alone
	switch variantCount(rec) {
	case 0:
		score -= 15
	case 1:
		score -= 5
	}

	if !rec.IsUsingFrameworkImageComponent {
		score -= 15
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// buildRecommendations assembles advice in fixed order: framework
// adoption, format conversion, compression, resizing, responsive
// coverage. The cache rule wraps the list afterwards: a miss is pushed
// to the front, a short TTL on a hit is appended.
func buildRecommendations(rec *ImageRecord, isLikelyFrameworkSite bool) []string {
	recs := []string{}

	if !rec.IsUsingFrameworkImageComponent {
		if isLikelyFrameworkSite {
			recs = append(recs, "Use the next/image component to get automatic resizing, modern formats and lazy loading")
		} else {
			recs = append(recs, "Serve this image through an image CDN or build-time optimizer for automatic resizing and format conversion")
		}
	}

	switch rec.Format {
	case "png":
		recs = append(recs, "Convert PNG to WebP or AVIF to reduce file size without visible quality loss")
	case "jpeg":
		recs = append(recs, "Convert JPEG to WebP or AVIF to reduce file size without visible quality loss")
	case "gif":
		recs = append(recs, "Replace GIF with a short video or animated WebP; GIF is the heaviest common image format")
	}

	if rec.ByteSize > 200000 {
		recs = append(recs, fmt.Sprintf("Compress this image; %s is heavy for web delivery", FormatBytes(rec.ByteSize)))
	}

	if rec.Dimensions != nil {
		if rec.Dimensions.Width*rec.Dimensions.Height > 500000 {
			recs = append(recs, fmt.Sprintf("Resize the source image; %dx%d exceeds typical display dimensions",
				rec.Dimensions.Width, rec.Dimensions.Height))
		}
	}

	recs = append(recs, responsiveAdvice(rec)...)

	if rec.CacheEvidence != nil {
		if !rec.CacheEvidence.CacheHit {
			recs = append([]string{"Image is not served from CDN cache; configure caching to cut latency and origin load"}, recs...)
		} else if rec.CacheEvidence.TTLSeconds != nil && *rec.CacheEvidence.TTLSeconds < lowTTLSeconds {
			recs = append(recs, fmt.Sprintf("Cache TTL is only %d seconds; raise max-age so repeat visits stay cached",
				*rec.CacheEvidence.TTLSeconds))
		}
	}

	if len(recs) == 0 {
		recs = append(recs, "Image appears to be well optimized.")
	}

	return recs
}

// responsiveAdvice emits srcset coverage advice. Zero variants produce
// none: the framework-adoption advice already covers that case.
func responsiveAdvice(rec *ImageRecord) []string {
	if rec.ResponsiveVariants == nil {
		return nil
	}
	summary := rec.ResponsiveVariants.Summary

	switch {
	case summary.TransformationCount == 0:
		return nil
	case summary.TransformationCount == 1:
		return []string{"Add more srcset variants so browsers can pick a size that fits the layout"}
	}

	var advice []string
	if !summary.HasMobileSize {
		advice = append(advice, "Add smaller srcset variants (640w or below) for mobile screens")
	}
	if !summary.HasDesktopSize {
		advice = append(advice, "Add larger srcset variants (1024w or above) for desktop screens")
	}
	return advice
}

func variantCount(rec *ImageRecord) int {
	if rec.ResponsiveVariants == nil {
		return 0
	}
	return rec.ResponsiveVariants.Summary.TransformationCount
}

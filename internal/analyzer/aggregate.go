package analyzer

// Aggregate folds scored records into page-level totals. Percentages
// are 0 when there is nothing to divide by.
func Aggregate(result *AnalysisResult) {
	var totalBytes, savings int64
	transformations := 0
	cacheHits := 0

	for i := range result.Images {
		rec := &result.Images[i]
		totalBytes += rec.ByteSize

		// A record scoring below 80 is assumed compressible roughly in
		// proportion to its score shortfall
		if rec.OptimizationScore < 80 {
			savings += rec.ByteSize * int64(80-rec.OptimizationScore) / 100
		}

		if rec.ResponsiveVariants != nil {
			transformations += rec.ResponsiveVariants.Summary.TransformationCount
		}
		if rec.CacheEvidence != nil && rec.CacheEvidence.CacheHit {
			cacheHits++
		}
	}

	result.TotalBytes = totalBytes
	result.PotentialSavingsBytes = savings
	if totalBytes > 0 {
		result.PotentialSavingsPercent = float64(savings) / float64(totalBytes) * 100
	}
	result.TotalTransformations = transformations
	if len(result.Images) > 0 {
		result.CachedImagesPercent = float64(cacheHits) / float64(len(result.Images)) * 100
	}
}

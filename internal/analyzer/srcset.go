package analyzer

import (
	"strconv"
	"strings"
)

// VariantEntry is one parsed srcset candidate
type VariantEntry struct {
	URL     string  // candidate URL
	Width   int     // from a "<N>w" descriptor, 0 when absent
	Density float64 // from a "<N>x" descriptor, 0 when absent
}

// ParseSrcset parses a srcset attribute into variant entries.
// Candidates without a usable width or density descriptor are discarded.
func ParseSrcset(raw string) []VariantEntry {
	var entries []VariantEntry

	for _, candidate := range strings.Split(raw, ",") {
		fields := strings.Fields(strings.TrimSpace(candidate))
		if len(fields) < 2 {
			continue
		}
		url, desc := fields[0], fields[1]

		switch {
		case strings.HasSuffix(desc, "w"):
			w, err := strconv.Atoi(strings.TrimSuffix(desc, "w"))
			if err != nil || w <= 0 {
				continue
			}
			entries = append(entries, VariantEntry{URL: url, Width: w})
		case strings.HasSuffix(desc, "x"):
			d, err := strconv.ParseFloat(strings.TrimSuffix(desc, "x"), 64)
			if err != nil || d <= 0 {
				continue
			}
			entries = append(entries, VariantEntry{URL: url, Density: d})
		}
	}

	return entries
}

// SummarizeVariants derives breakpoint coverage from parsed entries.
// Width-bearing entries drive the summary when present; density-only
// srcsets serve every breakpoint by definition, so mobile and desktop
// coverage are both true and no size range applies.
func SummarizeVariants(entries []VariantEntry) VariantSummary {
	summary := VariantSummary{TransformationCount: len(entries)}
	if len(entries) == 0 {
		return summary
	}

	var widths []int
	maxDensity := 0.0
	for _, e := range entries {
		if e.Width > 0 {
			widths = append(widths, e.Width)
		}
		if e.Density > maxDensity {
			maxDensity = e.Density
		}
	}

	if len(widths) > 0 {
		minW, maxW := widths[0], widths[0]
		for _, w := range widths[1:] {
			if w < minW {
				minW = w
			}
			if w > maxW {
				maxW = w
			}
		}
		summary.HasAppropriateRange = maxW >= 2*minW
		summary.HasMobileSize = minW <= 640
		summary.HasDesktopSize = maxW >= 1024
		summary.SizeRange = &SizeRange{Min: minW, Max: maxW}
		return summary
	}

	summary.HasAppropriateRange = maxDensity >= 2
	summary.HasMobileSize = true
	summary.HasDesktopSize = true
	return summary
}

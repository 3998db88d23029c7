// Package normalize holds the pure text-cleaning functions shared by every
// source adapter. They run at adapter-mapping time, before fingerprinting,
// so two postings that differ only in markup or entity encoding come out
// byte-identical.
package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"jobfuse/internal/models"
)

var (
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
	entityPattern = regexp.MustCompile(`&[a-zA-Z]+;`)
	salaryPattern = regexp.MustCompile(`\d[\d,]*\s*-\s*\d[\d,]*\s*\w+`)
	numberPattern = regexp.MustCompile(`\d[\d,]*`)
)

// namedEntities is the explicit decode table. Input here is short plain-text
// snippets, not documents, so an HTML parser would be overkill; entities not
// in the table pass through unchanged.
var namedEntities = map[string]string{
	"&amp;":    "&",
	"&lt;":     "<",
	"&gt;":     ">",
	"&quot;":   `"`,
	"&apos;":   "'",
	"&nbsp;":   " ",
	"&ndash;":  "–",
	"&mdash;":  "—",
	"&lsquo;":  "'",
	"&rsquo;":  "'",
	"&ldquo;":  `"`,
	"&rdquo;":  `"`,
	"&hellip;": "…",
	"&bull;":   "•",
	"&middot;": "·",
	"&copy;":   "©",
	"&reg;":    "®",
	"&trade;":  "™",
	"&euro;":   "€",
	"&pound;":  "£",
}

// StripTags removes anything shaped like an HTML tag. Nested tags reduce to
// their text content; a stray `<` without a closing `>` is left alone.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// DecodeEntities replaces known named entities with their literal characters.
func DecodeEntities(s string) string {
	if !strings.Contains(s, "&") {
		return s
	}
	return entityPattern.ReplaceAllStringFunc(s, func(ent string) string {
		if decoded, ok := namedEntities[ent]; ok {
			return decoded
		}
		return ent
	})
}

// CleanText strips tags then decodes entities, preserving surrounding
// whitespace. Used for description snippets.
func CleanText(s string) string {
	return DecodeEntities(StripTags(s))
}

// CleanField is CleanText plus a final trim, for title/company/location.
// The trim must be last so "<b>Engineer</b> " and "Engineer" converge.
func CleanField(s string) string {
	return strings.TrimSpace(CleanText(s))
}

// Snippet truncates a cleaned description to at most n bytes, cutting at the
// previous word boundary where possible.
func Snippet(s string, n int) string {
	s = strings.TrimSpace(CleanText(s))
	if n <= 0 || len(s) <= n {
		return s
	}
	cut := s[:n]
	if idx := strings.LastIndexByte(cut, ' '); idx > 0 {
		cut = cut[:idx]
	}
	return cut + "…"
}

// SalaryRange is a salary extracted from free text.
type SalaryRange struct {
	Min      float64
	Max      float64
	Currency string // trailing token of the match, stored literally
	Display  string // the matched substring
}

// ParseSalaryText extracts a numeric range from a free-text salary string
// when the source provides no structured data. Returns ok=false when no
// range is present.
func ParseSalaryText(s string) (SalaryRange, bool) {
	match := salaryPattern.FindString(s)
	if match == "" {
		return SalaryRange{}, false
	}

	spans := numberPattern.FindAllStringIndex(match, 2)
	if len(spans) < 2 {
		return SalaryRange{}, false
	}

	min, err := strconv.ParseFloat(strings.ReplaceAll(match[spans[0][0]:spans[0][1]], ",", ""), 64)
	if err != nil {
		return SalaryRange{}, false
	}
	max, err := strconv.ParseFloat(strings.ReplaceAll(match[spans[1][0]:spans[1][1]], ",", ""), 64)
	if err != nil {
		return SalaryRange{}, false
	}

	// Whatever trails the second number is the currency token, kept as-is.
	currency := strings.TrimSpace(match[spans[1][1]:])

	return SalaryRange{Min: min, Max: max, Currency: currency, Display: match}, true
}

// jobTypeVocabulary maps source-specific contract labels onto the canonical
// enum. Unknown labels map to the zero value, never to an error: a posting
// with an odd contract string is still a posting.
var jobTypeVocabulary = map[string]models.JobType{
	"full_time":   models.JobTypeFullTime,
	"full-time":   models.JobTypeFullTime,
	"fulltime":    models.JobTypeFullTime,
	"full time":   models.JobTypeFullTime,
	"permanent":   models.JobTypeFullTime,
	"part_time":   models.JobTypePartTime,
	"part-time":   models.JobTypePartTime,
	"parttime":    models.JobTypePartTime,
	"part time":   models.JobTypePartTime,
	"contract":    models.JobTypeContract,
	"contractor":  models.JobTypeContract,
	"b2b":         models.JobTypeContract,
	"internship":  models.JobTypeInternship,
	"intern":      models.JobTypeInternship,
	"trainee":     models.JobTypeInternship,
	"temporary":   models.JobTypeTemporary,
	"temp":        models.JobTypeTemporary,
	"seasonal":    models.JobTypeTemporary,
	"freelance":     models.JobTypeFreelance,
	"freelancer":    models.JobTypeFreelance,
	"self_employed": models.JobTypeFreelance,
}

// MapJobType resolves a source vocabulary term to the canonical JobType.
func MapJobType(raw string) models.JobType {
	return jobTypeVocabulary[strings.ToLower(strings.TrimSpace(raw))]
}

var workLocationVocabulary = map[string]models.WorkLocation{
	"remote":           models.WorkLocationRemote,
	"fully remote":     models.WorkLocationRemote,
	"fully_remote":     models.WorkLocationRemote,
	"work_from_home":   models.WorkLocationRemote,
	"work from home":   models.WorkLocationRemote,
	"wfh":              models.WorkLocationRemote,
	"telecommute":      models.WorkLocationRemote,
	"hybrid":           models.WorkLocationHybrid,
	"partially remote": models.WorkLocationHybrid,
	"onsite":           models.WorkLocationOnsite,
	"on_site":          models.WorkLocationOnsite,
	"on-site":          models.WorkLocationOnsite,
	"on site":          models.WorkLocationOnsite,
	"office":           models.WorkLocationOnsite,
	"in_person":        models.WorkLocationOnsite,
	"in person":        models.WorkLocationOnsite,
}

// MapWorkLocation resolves a source vocabulary term to the canonical
// WorkLocation.
func MapWorkLocation(raw string) models.WorkLocation {
	return workLocationVocabulary[strings.ToLower(strings.TrimSpace(raw))]
}

// InferWorkLocation falls back to scanning free text for remote/hybrid
// markers when the source has no structured field.
func InferWorkLocation(texts ...string) models.WorkLocation {
	combined := strings.ToLower(strings.Join(texts, " "))
	switch {
	case strings.Contains(combined, "hybrid"):
		return models.WorkLocationHybrid
	case strings.Contains(combined, "remote"), strings.Contains(combined, "work from home"):
		return models.WorkLocationRemote
	}
	return ""
}

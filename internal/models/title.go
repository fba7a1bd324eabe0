package models

import (
	"regexp"
	"strconv"
	"strings"
)

// TitleInfo is display metadata derived from a book's filename.
type TitleInfo struct {
	Title  string `json:"title"`
	Volume int    `json:"volume,omitempty"`
	Year   int    `json:"year,omitempty"`
}

var (
	bookExtPattern = regexp.MustCompile(`(?i)\.(epub|zip|rar|txt|pdf)$`)

	// (2020), [2020], (Jan 2020)
	yearPattern = regexp.MustCompile(`[\(\[](?:(?:Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)[a-z]*\.?\s+)?(\d{4})[\)\]]`)

	// Vol. 1, Volume 1, v01, 第1巻
	volumePattern = regexp.MustCompile(`(?i)(?:Vol(?:ume)?\.?\s*|v)(\d+)|第(\d+)巻`)

	parenPattern      = regexp.MustCompile(`[\(\[][^\)\]]*[\)\]]`)
	multiSpacePattern = regexp.MustCompile(`\s+`)
	separatorPattern  = regexp.MustCompile(`[_\.]`)
	trailingPattern   = regexp.MustCompile(`\s*[-–]\s*$`)
)

// ParseTitle cleans a book filename into a display title: extension,
// bracketed release tags and separator noise removed, volume and year
// pulled out when present.
func ParseTitle(fileName string) *TitleInfo {
	info := &TitleInfo{}
	name := bookExtPattern.ReplaceAllString(fileName, "")

	if m := yearPattern.FindStringSubmatch(name); len(m) > 1 {
		if y, err := strconv.Atoi(m[1]); err == nil && y >= 1900 && y <= 2100 {
			info.Year = y
		}
	}

	if m := volumePattern.FindStringSubmatch(name); m != nil {
		digits := m[1]
		if digits == "" {
			digits = m[2]
		}
		if v, err := strconv.Atoi(digits); err == nil {
			info.Volume = v
		}
	}

	title := parenPattern.ReplaceAllString(name, "")
	title = volumePattern.ReplaceAllString(title, " ")
	title = separatorPattern.ReplaceAllString(title, " ")
	title = multiSpacePattern.ReplaceAllString(title, " ")
	title = trailingPattern.ReplaceAllString(title, "")
	title = strings.TrimSpace(title)
	if title == "" {
		title = strings.TrimSpace(bookExtPattern.ReplaceAllString(fileName, ""))
	}
	info.Title = title

	return info
}

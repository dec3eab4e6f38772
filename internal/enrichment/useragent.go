package enrichment

import (
	"regexp"

	"go-linkstats/internal/biz"

	ua "github.com/mileusna/useragent"
)

var _ biz.VisitClassifier = (*Classifier)(nil)

var (
	tabletPattern  = regexp.MustCompile(`(?i)ipad|tablet|kindle|silk|playbook`)
	androidPattern = regexp.MustCompile(`(?i)android`)
	mobileWord     = regexp.MustCompile(`(?i)mobile`)
	mobilePattern  = regexp.MustCompile(`(?i)mobile|iphone|ipod|android|blackberry|opera mini|iemobile`)
)

// Classifier derives OS, browser and device category from a User-Agent header.
type Classifier struct{}

func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify never fails. Anything it cannot recognize is reported as unknown,
// and the device falls back to desktop.
func (c *Classifier) Classify(userAgent string) biz.ClientInfo {
	info := biz.ClientInfo{
		OS:      biz.Unknown,
		Browser: biz.Unknown,
		Device:  DeviceCategory(userAgent),
	}
	if userAgent == "" {
		return info
	}

	parsed := ua.Parse(userAgent)
	if parsed.OS != "" {
		info.OS = parsed.OS
	}
	if parsed.Name != "" {
		info.Browser = parsed.Name
	}
	return info
}

// DeviceCategory pattern-matches the raw agent for tablet, then mobile
// signatures. Android without "mobile" is a tablet.
func DeviceCategory(userAgent string) string {
	switch {
	case userAgent == "":
		return biz.DeviceDesktop
	case tabletPattern.MatchString(userAgent):
		return biz.DeviceTablet
	case androidPattern.MatchString(userAgent) && !mobileWord.MatchString(userAgent):
		return biz.DeviceTablet
	case mobilePattern.MatchString(userAgent):
		return biz.DeviceMobile
	default:
		return biz.DeviceDesktop
	}
}

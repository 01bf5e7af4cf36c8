package units

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	blackStar = "★"
	whiteStar = "☆"
	ellipsis  = "…"
)

// Stars renders a 0-5 rating; out-of-range ratings render as zero stars.
func Stars(rating int) string {
	if rating < 0 || rating > 5 {
		rating = 0
	}
	return strings.Repeat(blackStar, rating) + strings.Repeat(whiteStar, 5-rating)
}

// Duration renders seconds as m:ss.
func Duration(sec int) string {
	if sec < 0 {
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// DiveDate renders a dive timestamp, e.g. "Sat, Jun 1, 2025 09:30".
func DiveDate(t time.Time) string {
	return t.UTC().Format("Mon, Jan 2, 2006 15:04")
}

// TripLabel renders a trip summary, e.g. "Trip Sat, Jun 1, 2025 (3 dives)".
func TripLabel(t time.Time, count int) string {
	plural := ""
	if count > 1 {
		plural = "s"
	}
	return fmt.Sprintf("Trip %s (%d dive%s)", t.UTC().Format("Mon, Jan 2, 2006"), count, plural)
}

// Nitrox renders a gas class as returned by stats.GasMix: "air", "32",
// "18/45" for trimix, or "21…50" when the lean and rich oxygen differ.
func Nitrox(o2, he, o2low int) string {
	o2 = (o2 + 5) / 10
	he = (he + 5) / 10
	o2low = (o2low + 5) / 10
	switch {
	case he != 0:
		return fmt.Sprintf("%d/%d", o2, he)
	case o2 == 0:
		return "air"
	case o2 == o2low:
		return strconv.Itoa(o2)
	default:
		return fmt.Sprintf("%d%s%d", o2low, ellipsis, o2)
	}
}

// OTU renders oxygen toxicity units; zero yields an empty string.
func OTU(otu int) string {
	if otu == 0 {
		return ""
	}
	return strconv.Itoa(otu)
}

// Zodiacal seasons from the civil calendar (tropical boundaries).
package astro

import "time"

// SignForDate returns the zodiac sign the Sun occupies on a calendar date,
// using fixed tropical boundaries. Good to within a day of the true ingress,
// which is all the seasonal context needs.
func SignForDate(t time.Time) Sign {
	month := t.Month()
	day := t.Day()

	switch month {
	case time.January:
		if day < 20 {
			return Capricorn
		}
		return Aquarius
	case time.February:
		if day < 19 {
			return Aquarius
		}
		return Pisces
	case time.March:
		if day < 21 {
			return Pisces
		}
		return Aries
	case time.April:
		if day < 20 {
			return Aries
		}
		return Taurus
	case time.May:
		if day < 21 {
			return Taurus
		}
		return Gemini
	case time.June:
		if day < 21 {
			return Gemini
		}
		return Cancer
	case time.July:
		if day < 23 {
			return Cancer
		}
		return Leo
	case time.August:
		if day < 23 {
			return Leo
		}
		return Virgo
	case time.September:
		if day < 23 {
			return Virgo
		}
		return Libra
	case time.October:
		if day < 23 {
			return Libra
		}
		return Scorpio
	case time.November:
		if day < 22 {
			return Scorpio
		}
		return Sagittarius
	case time.December:
		if day < 22 {
			return Sagittarius
		}
		return Capricorn
	}
	return Aries
}

// SeasonElement returns the element of the current zodiacal season.
func SeasonElement(t time.Time) Element {
	return SignForDate(t).Element()
}

// Planetary day and hour rulers from the Chaldean order.
package astro

import "time"

// ChaldeanOrder lists the seven classical planets from slowest to fastest,
// the sequence the hour rulers cycle through.
var ChaldeanOrder = [7]Planet{Saturn, Jupiter, Mars, Sun, Venus, Mercury, Moon}

// DayRuler returns the planet ruling a weekday.
func DayRuler(day time.Weekday) Planet {
	switch day {
	case time.Sunday:
		return Sun
	case time.Monday:
		return Moon
	case time.Tuesday:
		return Mars
	case time.Wednesday:
		return Mercury
	case time.Thursday:
		return Jupiter
	case time.Friday:
		return Venus
	case time.Saturday:
		return Saturn
	default:
		return Sun
	}
}

// HourRuler returns the planet ruling the planetary hour containing t.
// Hours are approximated as equal clock hours from 06:00 local time, the
// first hour of the day belonging to its day ruler.
func HourRuler(t time.Time) Planet {
	day := t.Weekday()
	hour := t.Hour() - 6
	if hour < 0 {
		// Before dawn the previous day's sequence is still running.
		day = (day + 6) % 7
		hour += 24
	}

	start := chaldeanIndex(DayRuler(day))
	return ChaldeanOrder[(start+hour)%7]
}

func chaldeanIndex(p Planet) int {
	for i, c := range ChaldeanOrder {
		if c == p {
			return i
		}
	}
	return 0
}

// RulerElement returns the element a classical ruling planet lends to its
// day or hour. The outer planets do not rule hours and map to no element.
func RulerElement(p Planet) Element {
	switch p {
	case Sun, Jupiter, Mars:
		return Fire
	case Venus, Saturn:
		return Earth
	case Mercury:
		return Air
	case Moon:
		return Water
	default:
		return ""
	}
}

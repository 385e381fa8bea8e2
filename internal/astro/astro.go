// Package astro provides the planetary and zodiacal primitives the engine
// computes from: planets, signs, elements, position sets, seasons, lunar
// phases, and planetary day/hour rulers.
package astro

import "fmt"

// Element is one of the four classical elements.
type Element string

const (
	Fire  Element = "Fire"
	Water Element = "Water"
	Earth Element = "Earth"
	Air   Element = "Air"
)

// Elements returns the four elements in canonical order.
func Elements() [4]Element {
	return [4]Element{Fire, Water, Earth, Air}
}

// Valid reports whether e is one of the four elements.
func (e Element) Valid() bool {
	switch e {
	case Fire, Water, Earth, Air:
		return true
	}
	return false
}

// Compatible reports whether two distinct elements form a supportive pair.
// Fire pairs with Air, Earth pairs with Water.
func Compatible(a, b Element) bool {
	switch {
	case a == Fire && b == Air, a == Air && b == Fire:
		return true
	case a == Earth && b == Water, a == Water && b == Earth:
		return true
	}
	return false
}

// Planet identifies one of the ten planets tracked by position feeds.
// Values are lowercase to match the wire format of the position providers.
type Planet string

const (
	Sun     Planet = "sun"
	Moon    Planet = "moon"
	Mercury Planet = "mercury"
	Venus   Planet = "venus"
	Mars    Planet = "mars"
	Jupiter Planet = "jupiter"
	Saturn  Planet = "saturn"
	Uranus  Planet = "uranus"
	Neptune Planet = "neptune"
	Pluto   Planet = "pluto"
)

// Planets returns the ten tracked planets in traditional order.
func Planets() []Planet {
	return []Planet{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto}
}

// Valid reports whether p is a tracked planet.
func (p Planet) Valid() bool {
	switch p {
	case Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto:
		return true
	}
	return false
}

// Name returns the display name of the planet.
func (p Planet) Name() string {
	switch p {
	case Sun:
		return "Sun"
	case Moon:
		return "Moon"
	case Mercury:
		return "Mercury"
	case Venus:
		return "Venus"
	case Mars:
		return "Mars"
	case Jupiter:
		return "Jupiter"
	case Saturn:
		return "Saturn"
	case Uranus:
		return "Uranus"
	case Neptune:
		return "Neptune"
	case Pluto:
		return "Pluto"
	default:
		return "Unknown"
	}
}

// Sign identifies one of the twelve zodiac signs.
// Values are lowercase to match the wire format of the position providers.
type Sign string

const (
	Aries       Sign = "aries"
	Taurus      Sign = "taurus"
	Gemini      Sign = "gemini"
	Cancer      Sign = "cancer"
	Leo         Sign = "leo"
	Virgo       Sign = "virgo"
	Libra       Sign = "libra"
	Scorpio     Sign = "scorpio"
	Sagittarius Sign = "sagittarius"
	Capricorn   Sign = "capricorn"
	Aquarius    Sign = "aquarius"
	Pisces      Sign = "pisces"
)

// Signs returns the twelve signs in zodiacal order starting from Aries.
func Signs() []Sign {
	return []Sign{
		Aries, Taurus, Gemini, Cancer, Leo, Virgo,
		Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces,
	}
}

// Valid reports whether s is a zodiac sign.
func (s Sign) Valid() bool {
	switch s {
	case Aries, Taurus, Gemini, Cancer, Leo, Virgo,
		Libra, Scorpio, Sagittarius, Capricorn, Aquarius, Pisces:
		return true
	}
	return false
}

// Element returns the classical element ruling the sign.
func (s Sign) Element() Element {
	switch s {
	case Aries, Leo, Sagittarius:
		return Fire
	case Taurus, Virgo, Capricorn:
		return Earth
	case Gemini, Libra, Aquarius:
		return Air
	case Cancer, Scorpio, Pisces:
		return Water
	default:
		return ""
	}
}

// Name returns the display name of the sign.
func (s Sign) Name() string {
	switch s {
	case Aries:
		return "Aries"
	case Taurus:
		return "Taurus"
	case Gemini:
		return "Gemini"
	case Cancer:
		return "Cancer"
	case Leo:
		return "Leo"
	case Virgo:
		return "Virgo"
	case Libra:
		return "Libra"
	case Scorpio:
		return "Scorpio"
	case Sagittarius:
		return "Sagittarius"
	case Capricorn:
		return "Capricorn"
	case Aquarius:
		return "Aquarius"
	case Pisces:
		return "Pisces"
	default:
		return "Unknown"
	}
}

// SignAt returns the sign containing an ecliptic longitude in degrees.
func SignAt(longitude float64) Sign {
	l := longitude
	for l < 0 {
		l += 360
	}
	for l >= 360 {
		l -= 360
	}
	return Signs()[int(l/30)]
}

// Position is a single planet's place in the zodiac at some moment.
type Position struct {
	Sign       Sign    `json:"sign"`
	Degree     float64 `json:"degree,omitempty"` // 0-30 within the sign
	Retrograde bool    `json:"retrograde,omitempty"`
}

// PlanetaryPositions maps planets to their positions for one moment.
// Treated as immutable once fetched; use Clone before mutating.
type PlanetaryPositions map[Planet]Position

// Clone returns an independent copy of the position set.
func (pp PlanetaryPositions) Clone() PlanetaryPositions {
	if pp == nil {
		return nil
	}
	out := make(PlanetaryPositions, len(pp))
	for k, v := range pp {
		out[k] = v
	}
	return out
}

// Validate checks that every planet and sign identifier is known.
func (pp PlanetaryPositions) Validate() error {
	for planet, pos := range pp {
		if !planet.Valid() {
			return fmt.Errorf("unknown planet %q", planet)
		}
		if !pos.Sign.Valid() {
			return fmt.Errorf("planet %s: unknown sign %q", planet, pos.Sign)
		}
		if pos.Degree < 0 || pos.Degree >= 30 {
			return fmt.Errorf("planet %s: degree %.2f out of range", planet, pos.Degree)
		}
	}
	return nil
}

// Package classifier implements majority-vote severity classification of a
// sensor reading against the parameter bands configured on a meter.
package classifier

import (
	"github.com/Fredev01/water-quality-alert-engine/internal/model"
)

// MajorityVotes is the minimum number of parameter votes (out of five) a
// level must collect before the reading is classified into it.
const MajorityVotes = 3

// Classify determines which severity level the reading most strongly
// matches, or none.
//
// For each of the five parameters, the levels are scanned in the
// caller-supplied order and the first level whose band contains the value
// receives that parameter's vote; a parameter with no containing band (or a
// missing value) casts no vote. The level with the most votes wins, with
// ties broken by the first level in the supplied order reaching the maximum
// count. The winner is returned only when it collected at least
// MajorityVotes votes.
//
// Bands are half-open: a value exactly equal to a band's min belongs to
// that band, not the one below.
//
// Classify is pure and deterministic; it never fails for well-formed input.
func Classify(reading model.SensorReading, levels []model.SeverityLevel, bands map[model.SeverityLevel]model.ParameterBands) (model.SeverityLevel, bool) {
	if len(levels) == 0 {
		return "", false
	}

	votes := make(map[model.SeverityLevel]int, len(levels))

	for _, param := range model.Parameters() {
		value, ok := reading.Value(param)
		if !ok {
			// Missing parameter abstains.
			continue
		}
		for _, level := range levels {
			band, ok := bands[level][param]
			if !ok {
				continue
			}
			if band.Contains(value) {
				votes[level]++
				break
			}
		}
	}

	// Scan in the supplied order so a tie resolves to the first level
	// reaching the maximum count. Iterating the votes map here would make
	// the tie-break depend on map iteration order.
	var winner model.SeverityLevel
	best := 0
	for _, level := range levels {
		if votes[level] > best {
			winner = level
			best = votes[level]
		}
	}

	if best < MajorityVotes {
		return "", false
	}
	return winner, true
}

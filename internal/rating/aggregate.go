// AngelaMos | 2026
// aggregate.go

package rating

import (
	"math"
	"strconv"
)

// Aggregate is the derived rating summary stored on a listing.
type Aggregate struct {
	Average float64 `json:"average_rating"`
	Count   int     `json:"review_count"`
}

// Compute derives the aggregate from the complete set of ratings of one
// listing. An empty set yields {0, 0}.
func Compute(ratings []int) Aggregate {
	if len(ratings) == 0 {
		return Aggregate{}
	}

	sum := 0
	for _, r := range ratings {
		sum += r
	}

	return Aggregate{
		Average: Round1(float64(sum) / float64(len(ratings))),
		Count:   len(ratings),
	}
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Average renders a stored average with exactly one decimal, or null when
// the listing has no reviews.
type Average struct {
	Value float64
	Valid bool
}

func NewAverage(value float64, count int) Average {
	return Average{Value: value, Valid: count > 0}
}

func (a Average) MarshalJSON() ([]byte, error) {
	if !a.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(Round1(a.Value), 'f', 1, 64)), nil
}

func (a Average) String() string {
	if !a.Valid {
		return ""
	}
	return strconv.FormatFloat(Round1(a.Value), 'f', 1, 64)
}

package dbtypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// RatingHistogram counts reviews per star, index 0 holding one-star counts.
type RatingHistogram [5]int

func (h *RatingHistogram) Scan(src any) error {
	if src == nil {
		*h = RatingHistogram{}
		return nil
	}

	switch v := src.(type) {
	case []byte:
		return json.Unmarshal(v, h)
	case string:
		return json.Unmarshal([]byte(v), h)
	default:
		return fmt.Errorf("RatingHistogram: unsupported Scan type %T", src)
	}
}

func (h RatingHistogram) Value() (driver.Value, error) {
	out, err := json.Marshal(h)
	if err != nil {
		return nil, err
	}
	return string(out), nil
}

// Bucket increments the count for the given 1-5 rating.
func (h *RatingHistogram) Bucket(rating int) error {
	if rating < 1 || rating > 5 {
		return fmt.Errorf("RatingHistogram: rating %d out of range", rating)
	}
	h[rating-1]++
	return nil
}

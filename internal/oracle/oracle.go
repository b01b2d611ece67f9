// Package oracle reads external price feeds for market resolution. All
// prices are normalized to 10^-8 fixed point regardless of the exponent the
// feed publishes with, matching the scale strike prices are quoted in.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"
)

// Expo is the fixed-point exponent every reading is normalized to.
const Expo = -8

var (
	ErrUnavailable = errors.New("oracle: price unavailable")
	ErrStalePrice  = errors.New("oracle: price too old")
)

// Price is one normalized oracle reading.
type Price struct {
	FeedID      string
	Price       int64
	Confidence  uint64
	PublishedAt time.Time
}

// PriceSource yields the freshest known reading for a feed. Implementations
// return ErrUnavailable when the feed has never published and ErrStalePrice
// when the newest reading is older than maxStaleness.
type PriceSource interface {
	GetPrice(ctx context.Context, feedID string, now time.Time, maxStaleness time.Duration) (*Price, error)
}

// feedUpdate mirrors the JSON shape Hermes uses for one feed, both in REST
// responses and stream messages.
type feedUpdate struct {
	ID    string    `json:"id"`
	Price feedPrice `json:"price"`
}

type feedPrice struct {
	Price       string `json:"price"`
	Conf        string `json:"conf"`
	Expo        int32  `json:"expo"`
	PublishTime int64  `json:"publish_time"`
}

func (u feedUpdate) normalize() (*Price, error) {
	mantissa, err := strconv.ParseInt(u.Price.Price, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("oracle: parse price %q: %w", u.Price.Price, err)
	}
	conf, err := strconv.ParseUint(u.Price.Conf, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("oracle: parse conf %q: %w", u.Price.Conf, err)
	}
	price, err := scaleSigned(mantissa, u.Price.Expo)
	if err != nil {
		return nil, err
	}
	confidence, err := scaleUnsigned(conf, u.Price.Expo)
	if err != nil {
		return nil, err
	}
	return &Price{
		FeedID:      u.ID,
		Price:       price,
		Confidence:  confidence,
		PublishedAt: time.Unix(u.Price.PublishTime, 0).UTC(),
	}, nil
}

func scaleSigned(mantissa int64, expo int32) (int64, error) {
	shift := expo - Expo
	switch {
	case shift == 0:
		return mantissa, nil
	case shift > 0:
		if shift > 18 {
			return 0, fmt.Errorf("oracle: exponent %d out of range", expo)
		}
		factor := pow10(int(shift))
		if mantissa > math.MaxInt64/int64(factor) || mantissa < math.MinInt64/int64(factor) {
			return 0, fmt.Errorf("oracle: price %d overflows at exponent %d", mantissa, expo)
		}
		return mantissa * int64(factor), nil
	default:
		if -shift > 18 {
			return 0, nil
		}
		return mantissa / int64(pow10(int(-shift))), nil
	}
}

func scaleUnsigned(mantissa uint64, expo int32) (uint64, error) {
	shift := expo - Expo
	switch {
	case shift == 0:
		return mantissa, nil
	case shift > 0:
		if shift > 19 {
			return 0, fmt.Errorf("oracle: exponent %d out of range", expo)
		}
		factor := pow10(int(shift))
		if mantissa > math.MaxUint64/factor {
			return 0, fmt.Errorf("oracle: confidence %d overflows at exponent %d", mantissa, expo)
		}
		return mantissa * factor, nil
	default:
		if -shift > 19 {
			return 0, nil
		}
		return mantissa / pow10(int(-shift)), nil
	}
}

func pow10(n int) uint64 {
	out := uint64(1)
	for i := 0; i < n; i++ {
		out *= 10
	}
	return out
}

// Copyright (c) 2026 desokit Contributors.
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package network

import (
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/time/rate"
)

// Limits are the request limits applied to a remote API.
type Limits struct {
	// RateLimit is the number of requests per minute.
	RateLimit int `toml:"rate_limit" validate:"gte=1,lte=6000"`
	// Burst is the number of requests allowed to go through at once.
	Burst uint `toml:"burst" validate:"gte=1,lte=100"`
	// Retries is the number of attempts for a single request.
	Retries int `toml:"retries" validate:"gte=1,lte=20"`
	// Timeout is the per-request timeout.
	Timeout time.Duration `toml:"timeout" validate:"gte=0,lte=10m"`
}

// DefLimits are the default limits for the public DeSo node.
var DefLimits = Limits{
	RateLimit: 300,
	Burst:     3,
	Retries:   3,
	Timeout:   30 * time.Second,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks the limits.  The error, if any, is
// validator.ValidationErrors.
func (l *Limits) Validate() error {
	return validate.Struct(l)
}

// Apply overwrites the limits with the non-zero values of other and
// validates the result.  On validation failure l is left unchanged.
func (l *Limits) Apply(other Limits) error {
	merged := *l
	if other.RateLimit != 0 {
		merged.RateLimit = other.RateLimit
	}
	if other.Burst != 0 {
		merged.Burst = other.Burst
	}
	if other.Retries != 0 {
		merged.Retries = other.Retries
	}
	if other.Timeout != 0 {
		merged.Timeout = other.Timeout
	}
	if err := merged.Validate(); err != nil {
		return err
	}
	*l = merged
	return nil
}

// Limiter returns a rate limiter configured from l.
func (l *Limits) Limiter() *rate.Limiter {
	return NewLimiter(l.RateLimit, l.Burst)
}

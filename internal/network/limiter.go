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

	"golang.org/x/time/rate"
)

// NewLimiter returns a throttler allowing perMinute requests per minute with
// the given burst.  A non-positive perMinute disables throttling.
func NewLimiter(perMinute int, burst uint) *rate.Limiter {
	if perMinute <= 0 {
		return rate.NewLimiter(rate.Inf, int(max(burst, 1)))
	}
	return rate.NewLimiter(rate.Every(every(perMinute)), int(max(burst, 1)))
}

func every(perMinute int) time.Duration {
	return time.Minute / time.Duration(perMinute)
}

// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package hub

import (
	"time"
)

// Clock supplies the current time for record timestamps
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

type systemClock struct{}

// Now returns the wall clock time truncated to whole seconds
func (systemClock) Now() time.Time {
	return time.Now().Truncate(time.Second)
}

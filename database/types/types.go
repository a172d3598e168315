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

package types

import (
	"database/sql/driver"
	"fmt"
	"strconv"
)

// Uint64 is persisted as a decimal string. Not every dialect has an
// unsigned 64-bit column, and sale counters must not wrap.
type Uint64 uint64

func (u Uint64) Value() (driver.Value, error) {
	return strconv.FormatUint(uint64(u), 10), nil
}

func (u *Uint64) Scan(val any) error {
	var raw string
	switch v := val.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	case int64:
		// Some drivers hand back numeric-looking strings as integers
		if v < 0 {
			return fmt.Errorf("negative value %d for Uint64", v)
		}
		*u = Uint64(v)
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Uint64", val)
	}
	parsed, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return fmt.Errorf("scan Uint64: %w", err)
	}
	*u = Uint64(parsed)
	return nil
}

func (Uint64) GormDataType() string {
	return "string"
}

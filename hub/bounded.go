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
	"fmt"
	"unicode/utf8"
)

// MaxTextLength is the capacity in bytes of every bounded text field
const MaxTextLength = 100

// BoundedText is a string known to fit its field's capacity
type BoundedText string

// NewBoundedText validates value for the named field. Values longer than
// MaxTextLength bytes are rejected, never truncated. Records are CBOR text
// strings, so the value must also be valid UTF-8.
func NewBoundedText(field string, value string) (BoundedText, error) {
	if !utf8.ValidString(value) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8", ErrFieldInvalid, field)
	}
	if len(value) > MaxTextLength {
		return "", fmt.Errorf(
			"%w: %s is %d bytes, maximum is %d",
			ErrFieldTooLong,
			field,
			len(value),
			MaxTextLength,
		)
	}
	return BoundedText(value), nil
}

// newRequiredText is NewBoundedText that also rejects empty values
func newRequiredText(field string, value string) (BoundedText, error) {
	if value == "" {
		return "", fmt.Errorf("%w: %s", ErrFieldEmpty, field)
	}
	return NewBoundedText(field, value)
}

func (b BoundedText) String() string {
	return string(b)
}

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
	"errors"

	"github.com/blinklabs-io/hubd/database/types"
)

var (
	// ErrUnauthorized is returned when the acting principal lacks the
	// membership record or capability flag an operation requires
	ErrUnauthorized = errors.New("unauthorized")

	// ErrDuplicateRecord is returned when a record already exists at the
	// derived address
	ErrDuplicateRecord = types.ErrDuplicateRecord

	// ErrNotFound is returned when a required record does not exist
	ErrNotFound = types.ErrRecordNotFound

	// ErrFieldTooLong is returned when a bounded text field exceeds its
	// capacity
	ErrFieldTooLong = errors.New("field too long")

	ErrFieldEmpty          = errors.New("field must not be empty")
	ErrFieldInvalid        = errors.New("field is not valid text")
	ErrInvalidSubscription = errors.New("invalid subscription")
	ErrSalesOverflow       = errors.New("sales counter overflow")
)

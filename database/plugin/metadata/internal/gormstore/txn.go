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

package gormstore

import (
	"gorm.io/gorm"
)

// Txn wraps a gorm transaction and implements types.Txn
type Txn struct {
	db       *gorm.DB
	beginErr error
	finished bool
}

func (t *Txn) Commit() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	if result := t.db.Commit(); result.Error != nil {
		return result.Error
	}
	return nil
}

func (t *Txn) Rollback() error {
	if t.beginErr != nil {
		return t.beginErr
	}
	if t.finished {
		return nil
	}
	t.finished = true
	if result := t.db.Rollback(); result.Error != nil {
		return result.Error
	}
	return nil
}

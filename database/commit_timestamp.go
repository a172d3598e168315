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

package database

import (
	"fmt"
)

// CommitTimestampError means the blob and metadata stores were last
// committed at different times, so one of them holds a partial write
type CommitTimestampError struct {
	MetadataTimestamp int64
	BlobTimestamp     int64
}

func (e CommitTimestampError) Error() string {
	return fmt.Sprintf(
		"commit timestamp mismatch: metadata=%d blob=%d",
		e.MetadataTimestamp,
		e.BlobTimestamp,
	)
}

// checkCommitTimestamp compares the last commit stamp of both stores. A
// metadata store that has never been stamped is treated as fresh.
func (d *Database) checkCommitTimestamp() error {
	var tsErr CommitTimestampError
	var err error
	if tsErr.MetadataTimestamp, err = d.Metadata().GetCommitTimestamp(); err != nil {
		return fmt.Errorf("read metadata commit timestamp: %w", err)
	}
	if tsErr.MetadataTimestamp <= 0 {
		return nil
	}
	if tsErr.BlobTimestamp, err = d.Blob().GetCommitTimestamp(); err != nil {
		return fmt.Errorf("read blob commit timestamp: %w", err)
	}
	if tsErr.BlobTimestamp != tsErr.MetadataTimestamp {
		return tsErr
	}
	return nil
}

// updateCommitTimestamp writes the same stamp into both halves of txn
func (d *Database) updateCommitTimestamp(txn *Txn, timestamp int64) error {
	if err := d.Metadata().SetCommitTimestamp(timestamp, txn.Metadata()); err != nil {
		return fmt.Errorf("stamp metadata: %w", err)
	}
	if err := d.Blob().SetCommitTimestamp(timestamp, txn.Blob()); err != nil {
		return fmt.Errorf("stamp blob: %w", err)
	}
	return nil
}

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

package api

import (
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePage(t *testing.T) {
	testDefs := []struct {
		query    string
		expected Page
	}{
		{query: "", expected: Page{Count: DefaultPageSize, Number: 1}},
		{query: "count=25&page=3&order=DESC", expected: Page{Count: 25, Number: 3, Desc: true}},
		{query: "order=asc", expected: Page{Count: DefaultPageSize, Number: 1}},
		{query: "count=999&page=0", expected: Page{Count: MaxPageSize, Number: 1}},
		{query: "count=-4&page=-2", expected: Page{Count: 1, Number: 1}},
	}
	for _, testDef := range testDefs {
		t.Run(testDef.query, func(t *testing.T) {
			query, err := url.ParseQuery(testDef.query)
			require.NoError(t, err)
			page, err := parsePage(query)
			require.NoError(t, err)
			assert.Equal(t, testDef.expected, page)
		})
	}
}

func TestParsePageInvalid(t *testing.T) {
	for _, raw := range []string{
		"count=abc",
		"page=1.5",
		"order=sideways",
		"page=100000000000000000",
		"page=" + strconv.Itoa(MaxPageNumber+1),
		"page=99999999999999999999999",
	} {
		query, err := url.ParseQuery(raw)
		require.NoError(t, err)
		page, err := parsePage(query)
		require.ErrorIs(t, err, ErrInvalidPaginationParameters, raw)
		assert.Zero(t, page)
	}
}

func TestPageOffset(t *testing.T) {
	assert.Equal(t, 50, Page{Count: 25, Number: 3}.Offset())
	assert.Equal(t, 0, Page{Count: 10, Number: 1}.Offset())

	query, err := url.ParseQuery(
		"count=999&page=" + strconv.Itoa(MaxPageNumber),
	)
	require.NoError(t, err)
	page, err := parsePage(query)
	require.NoError(t, err)
	assert.Positive(t, page.Offset())
}

func TestWritePageHeaders(t *testing.T) {
	testDefs := []struct {
		total     int
		page      Page
		wantTotal string
		wantPages string
	}{
		{total: 250, page: Page{Count: 100, Number: 1}, wantTotal: "250", wantPages: "3"},
		{total: 100, page: Page{Count: 100, Number: 1}, wantTotal: "100", wantPages: "1"},
		{total: -1, page: Page{}, wantTotal: "0", wantPages: "0"},
	}
	for _, testDef := range testDefs {
		rec := httptest.NewRecorder()
		writePageHeaders(rec, testDef.total, testDef.page)
		assert.Equal(t, testDef.wantTotal, rec.Header().Get("X-Pagination-Count-Total"))
		assert.Equal(t, testDef.wantPages, rec.Header().Get("X-Pagination-Page-Total"))
	}
}

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
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 100
	MaxPageSize     = 100
	// MaxPageNumber keeps the page offset within an int
	MaxPageNumber = math.MaxInt / MaxPageSize
)

var ErrInvalidPaginationParameters = errors.New(
	"invalid pagination parameters",
)

// Page is a window over an ordered listing, selected with the count, page
// and order query parameters. Page numbers start at 1.
type Page struct {
	Count  int
	Number int
	Desc   bool
}

func intParam(query url.Values, name string, def int) (int, error) {
	raw := query.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s", ErrInvalidPaginationParameters, name)
	}
	return v, nil
}

// parsePage reads the page from query. Out of range counts and page
// numbers below 1 are clamped. Page numbers above MaxPageNumber are
// rejected.
func parsePage(query url.Values) (Page, error) {
	count, err := intParam(query, "count", DefaultPageSize)
	if err != nil {
		return Page{}, err
	}
	number, err := intParam(query, "page", 1)
	if err != nil {
		return Page{}, err
	}
	if number > MaxPageNumber {
		return Page{}, fmt.Errorf("%w: page", ErrInvalidPaginationParameters)
	}
	var desc bool
	switch strings.ToLower(query.Get("order")) {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return Page{}, fmt.Errorf("%w: order", ErrInvalidPaginationParameters)
	}
	return Page{
		Count:  min(max(count, 1), MaxPageSize),
		Number: max(number, 1),
		Desc:   desc,
	}, nil
}

// Offset is the number of items before the first one on the page
func (p Page) Offset() int {
	return (p.Number - 1) * p.Count
}

// writePageHeaders reports the listing size and the resulting page count
func writePageHeaders(w http.ResponseWriter, total int, p Page) {
	total = max(total, 0)
	count := p.Count
	if count < 1 {
		count = DefaultPageSize
	}
	pages := (total + count - 1) / count
	w.Header().Set("X-Pagination-Count-Total", strconv.Itoa(total))
	w.Header().Set("X-Pagination-Page-Total", strconv.Itoa(pages))
}

package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Preparer is implemented by requests that need decoding after binding
// (JSON strings inside multipart forms). It returns an *apperrors.AppError.
type Preparer interface {
	Prepare() error
}

// Decimal accepts both JSON numbers and numeric strings ("10", "10.50")
// and is rendered with two decimals.
type Decimal float64

func (d *Decimal) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}
	if len(data) == 0 || string(data) == "null" {
		*d = 0
		return nil
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return fmt.Errorf("invalid decimal %q", string(data))
	}
	*d = Decimal(f)
	return nil
}

func (d Decimal) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatFloat(float64(d), 'f', 2, 64))), nil
}

func (d Decimal) Float64() float64 {
	return math.Round(float64(d)*100) / 100
}

// ListResponse is the paginated envelope for collection endpoints.
type ListResponse[T any] struct {
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
	Results    []T   `json:"results"`
}

func NewListResponse[T any](items []T, total int64, page, pageSize int) *ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if pageSize > 0 {
		totalPages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return &ListResponse[T]{
		Count:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
		Results:    items,
	}
}

type DetailResponse struct {
	Detail string `json:"detail"`
}

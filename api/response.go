package api

import (
	"fmt"

	"github.com/VanDung-dev/hierachain-frame/data"
)

// ColumnInfo describes one column of a FrameResponse.
type ColumnInfo struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// FrameResponse is the JSON reply to a conversion request.
type FrameResponse struct {
	RequestID string       `json:"request_id"`
	Columns   []ColumnInfo `json:"columns,omitempty"`
	Rows      [][]any      `json:"rows,omitempty"`
	RowCount  int          `json:"row_count"`
	Table     string       `json:"table,omitempty"`
	Error     string       `json:"error,omitempty"`
}

// NewFrameResponse encodes df into a response. Row values are the native
// forms from data.TableValue.Native; Table is the rendered grid.
func NewFrameResponse(requestID string, df *data.DataFrame) (*FrameResponse, error) {
	resp := &FrameResponse{
		RequestID: requestID,
		Columns:   make([]ColumnInfo, len(df.Columns())),
		Rows:      make([][]any, 0, df.Len()),
		RowCount:  df.Len(),
	}

	for i, c := range df.Columns() {
		resp.Columns[i] = ColumnInfo{Name: c.Name(), Type: c.Type().String()}
	}

	for i, row := range df.Rows() {
		values := make([]any, row.Len())
		for j, v := range row.Values() {
			native, err := v.Native()
			if err != nil {
				return nil, fmt.Errorf("row %d column %d: %w", i, j, err)
			}
			values[j] = native
		}
		resp.Rows = append(resp.Rows, values)
	}

	table, err := df.Print()
	if err != nil {
		return nil, err
	}
	resp.Table = table

	return resp, nil
}

package kite

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
)

// Instrument is one row of the exchange instrument dump.
type Instrument struct {
	TradingSymbol  string
	Name           string
	Expiry         string
	LotSize        int
	InstrumentType string
	Segment        string
	Exchange       string
}

// Instruments downloads the full instrument dump for an exchange. The API
// returns CSV, not JSON; columns are located by header name so reordering
// on the broker side does not break parsing.
func (c *Client) Instruments(ctx context.Context, exchange string) ([]Instrument, error) {
	if exchange == "" {
		return nil, errors.New("exchange is required")
	}
	body, err := c.do(ctx, http.MethodGet, "/instruments/"+exchange, nil)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	return parseInstrumentsCSV(body)
}

func parseInstrumentsCSV(r io.Reader) ([]Instrument, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	header, err := reader.Read()
	if err != nil {
		return nil, err
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	if _, ok := col["tradingsymbol"]; !ok {
		return nil, errors.New("instrument dump missing tradingsymbol column")
	}
	field := func(row []string, name string) string {
		idx, ok := col[name]
		if !ok || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
	var out []Instrument
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		lotSize, _ := strconv.Atoi(field(row, "lot_size"))
		out = append(out, Instrument{
			TradingSymbol:  field(row, "tradingsymbol"),
			Name:           field(row, "name"),
			Expiry:         field(row, "expiry"),
			LotSize:        lotSize,
			InstrumentType: field(row, "instrument_type"),
			Segment:        field(row, "segment"),
			Exchange:       field(row, "exchange"),
		})
	}
	return out, nil
}

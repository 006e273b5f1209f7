// internal/app/system/listnorm/listnorm.go

// Package listnorm reconciles the monitoring API's heterogeneous list
// response shapes into a uniform items/total structure. Different endpoint
// generations return a bare array, {items,total}, {data:[...]}, or
// {data:{items,total}}; the decoder tries each known shape in that priority
// order and falls back to empty. Normalize is total: it never errors, no
// matter what the server sent.
package listnorm

import "encoding/json"

// PagedList is one page (or an accumulation of pages) of list rows plus the
// total for the full result set. Total falls back to the item count when the
// response carried no total; ServerTotal is nil in that case so callers can
// tell a reported total from an inferred one.
type PagedList struct {
	Items       []json.RawMessage
	Total       int
	ServerTotal *int
}

// HasMore reports whether the server holds rows beyond what is loaded.
func (p PagedList) HasMore() bool {
	return len(p.Items) < p.Total
}

// envelopes for the known shapes, decoded strictly enough that a wrong shape
// fails fast and the next one is tried.
type itemsEnvelope struct {
	Items []json.RawMessage `json:"items"`
	Total *int              `json:"total"`
}

type dataEnvelope struct {
	Data json.RawMessage `json:"data"`
}

// Normalize decodes any of the known list shapes into a PagedList.
// Unknown shapes, nulls, and malformed JSON all normalize to an empty list.
func Normalize(raw json.RawMessage) PagedList {
	if len(raw) == 0 {
		return PagedList{Items: []json.RawMessage{}}
	}

	// (a) bare array
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err == nil && arr != nil {
		return PagedList{Items: arr, Total: len(arr)}
	}

	// (b) {items: [...], total?}
	var env itemsEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Items != nil {
		return pagedFrom(env)
	}

	// (c)/(d) {data: <array or items-envelope>}
	var outer dataEnvelope
	if err := json.Unmarshal(raw, &outer); err == nil && len(outer.Data) > 0 {
		if err := json.Unmarshal(outer.Data, &arr); err == nil && arr != nil {
			return PagedList{Items: arr, Total: len(arr)}
		}
		env = itemsEnvelope{}
		if err := json.Unmarshal(outer.Data, &env); err == nil && env.Items != nil {
			return pagedFrom(env)
		}
	}

	return PagedList{Items: []json.RawMessage{}}
}

// DecodeItems unmarshals each raw row into T, skipping rows that do not
// decode. A partially well-formed page still yields its good rows.
func DecodeItems[T any](items []json.RawMessage) []T {
	out := make([]T, 0, len(items))
	for _, raw := range items {
		var v T
		if err := json.Unmarshal(raw, &v); err == nil {
			out = append(out, v)
		}
	}
	return out
}

func pagedFrom(env itemsEnvelope) PagedList {
	if env.Total != nil && *env.Total >= 0 {
		return PagedList{Items: env.Items, Total: *env.Total, ServerTotal: env.Total}
	}
	return PagedList{Items: env.Items, Total: len(env.Items)}
}

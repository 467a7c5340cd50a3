package domain

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// DefaultStoreID is the "all stores" scope. A label bound to it is visible
// in every store and conflicts with labels bound to any specific store.
const DefaultStoreID int64 = 0

// Store is a storefront a label can be scoped to.
type Store struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// StoreSet is a sorted, duplicate-free set of store ids.
type StoreSet []int64

// NewStoreSet builds a normalized set from the given ids.
func NewStoreSet(ids ...int64) StoreSet {
	if len(ids) == 0 {
		return StoreSet{}
	}
	out := slices.Clone(ids)
	slices.Sort(out)
	return StoreSet(slices.Compact(out))
}

// ParseStoreSet parses a comma-joined id list such as "0,1,3".
func ParseStoreSet(raw string) (StoreSet, error) {
	var ids []int64
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid store id %q: %w", part, err)
		}
		if id < 0 {
			return nil, fmt.Errorf("invalid store id %d", id)
		}
		ids = append(ids, id)
	}
	return NewStoreSet(ids...), nil
}

// Contains reports whether id is in the set.
func (s StoreSet) Contains(id int64) bool {
	_, found := slices.BinarySearch(s, id)
	return found
}

// IncludesDefault reports whether the set contains the "all stores" scope.
func (s StoreSet) IncludesDefault() bool {
	return s.Contains(DefaultStoreID)
}

// With returns a new set with id added.
func (s StoreSet) With(id int64) StoreSet {
	return NewStoreSet(append(slices.Clone(s), id)...)
}

// Difference returns the ids in s that are not in other.
func (s StoreSet) Difference(other StoreSet) StoreSet {
	out := StoreSet{}
	for _, id := range s {
		if !other.Contains(id) {
			out = append(out, id)
		}
	}
	return out
}

// String returns the comma-joined form.
func (s StoreSet) String() string {
	parts := make([]string, len(s))
	for i, id := range s {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// UnmarshalJSON accepts an array of numbers or numeric strings, a single
// number, or a comma-joined string.
func (s *StoreSet) UnmarshalJSON(data []byte) error {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err == nil {
		ids := make([]int64, 0, len(items))
		for _, item := range items {
			set, err := parseStoreScalar(item)
			if err != nil {
				return err
			}
			ids = append(ids, set...)
		}
		*s = NewStoreSet(ids...)
		return nil
	}

	set, err := parseStoreScalar(data)
	if err != nil {
		return err
	}
	*s = set
	return nil
}

func parseStoreScalar(data json.RawMessage) (StoreSet, error) {
	var n int64
	if err := json.Unmarshal(data, &n); err == nil {
		if n < 0 {
			return nil, fmt.Errorf("invalid store id %d", n)
		}
		return NewStoreSet(n), nil
	}

	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("stores: expected number, string or array: %w", err)
	}
	return ParseStoreSet(raw)
}

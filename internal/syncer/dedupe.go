package syncer

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v2"

	"github.com/dbsmedya/sheetsync/internal/schema"
)

// Dedupe collapses records sharing a primary-key value, keeping the
// last-seen record per key: rows appended over time overwrite earlier ones.
// Output order is the insertion order of first-seen keys. Returns the number
// of collapsed duplicates.
//
// With no primary key declared the input is returned unchanged. A record
// missing the primary key value is never grouped with anything (validation
// already enforces presence when the key is a required column).
func Dedupe(records []schema.Record, pkColumn string) ([]schema.Record, int) {
	if pkColumn == "" || len(records) == 0 {
		return records, 0
	}

	unique := orderedmap.NewOrderedMap[string, schema.Record]()
	for i, record := range records {
		key := record.StringValue(pkColumn)
		if !record.Has(pkColumn) || key == "" {
			// Synthetic key keeps keyless records distinct and in place.
			key = fmt.Sprintf("\x00nokey:%d", i)
		}
		// Set on an existing key replaces the value but keeps the
		// original position, which is exactly last-write-wins with
		// first-seen ordering.
		unique.Set(key, record)
	}

	if unique.Len() == len(records) {
		return records, 0
	}

	deduped := make([]schema.Record, 0, unique.Len())
	for el := unique.Front(); el != nil; el = el.Next() {
		deduped = append(deduped, el.Value)
	}
	return deduped, len(records) - len(deduped)
}

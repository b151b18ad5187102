package syncer

import (
	"context"
	"fmt"
	"sort"

	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/schema"
)

// keySource loads the set of existing key values for a table. Satisfied by
// store.Client; narrowed here so tests can stub it.
type keySource interface {
	SelectColumn(ctx context.Context, table, column string) ([]string, error)
}

// KeyCache memoizes primary-key sets per referenced table for the duration
// of one run. Each table's keys are fetched at most once, on first use.
//
// A failed fetch memoizes the empty set with a warning rather than aborting:
// the affected rows are rejected as FK errors and the run continues.
type KeyCache struct {
	src   keySource
	reg   *schema.Registry
	log   *logger.Logger
	cache map[string]map[string]struct{}
}

// NewKeyCache creates an empty cache backed by the given store.
func NewKeyCache(src keySource, reg *schema.Registry, log *logger.Logger) (*KeyCache, error) {
	if src == nil {
		return nil, fmt.Errorf("store client is nil")
	}
	if reg == nil {
		return nil, fmt.Errorf("schema registry is nil")
	}
	if log == nil {
		log = logger.NewDefault()
	}
	return &KeyCache{
		src:   src,
		reg:   reg,
		log:   log,
		cache: make(map[string]map[string]struct{}),
	}, nil
}

// Keys returns the set of primary-key values present in the referenced
// table, loading and memoizing it on first call.
func (kc *KeyCache) Keys(ctx context.Context, table string) (map[string]struct{}, error) {
	if set, ok := kc.cache[table]; ok {
		return set, nil
	}

	target := kc.reg.Get(table)
	if target == nil {
		return nil, fmt.Errorf("referenced table %q not defined", table)
	}

	values, err := kc.src.SelectColumn(ctx, target.Name, target.PrimaryKey)
	if err != nil {
		kc.log.Warnw("failed to load keys for referenced table, treating as empty",
			"table", table,
			"error", err,
		)
		values = nil
	}

	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	kc.cache[table] = set
	return set, nil
}

// ValidateForeignKeys filters records down to those whose foreign-key values
// all exist in their referenced tables. A record missing an FK column is not
// rejected on that column; only present values are checked. Rejections are
// reported with the record's 1-based position in the input slice.
//
// FK columns are checked in sorted order so rejection messages are stable.
func ValidateForeignKeys(ctx context.Context, cache *KeyCache, table *schema.Table, records []schema.Record) ([]schema.Record, []RowError, error) {
	if len(table.ForeignKeys) == 0 || len(records) == 0 {
		return records, nil, nil
	}

	fkColumns := make([]string, 0, len(table.ForeignKeys))
	for column := range table.ForeignKeys {
		fkColumns = append(fkColumns, column)
	}
	sort.Strings(fkColumns)

	valid := make([]schema.Record, 0, len(records))
	var rejected []RowError

	for i, record := range records {
		keep := true
		for _, column := range fkColumns {
			if !record.Has(column) {
				continue
			}
			value := record.StringValue(column)
			ref := table.ForeignKeys[column]
			keys, err := cache.Keys(ctx, ref)
			if err != nil {
				return nil, nil, err
			}
			if _, exists := keys[value]; !exists {
				rejected = append(rejected, RowError{
					Row:    i + 1,
					Column: column,
					Message: fmt.Sprintf("value %q not found in %s.%s",
						value, ref, cache.reg.Get(ref).PrimaryKey),
				})
				keep = false
				break
			}
		}
		if keep {
			valid = append(valid, record)
		}
	}

	return valid, rejected, nil
}

package syncer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/sheetsync/internal/logger"
	"github.com/dbsmedya/sheetsync/internal/schema"
)

type stubKeySource struct {
	keys  map[string][]string
	err   error
	calls map[string]int
}

func (s *stubKeySource) SelectColumn(_ context.Context, table, _ string) ([]string, error) {
	if s.calls == nil {
		s.calls = make(map[string]int)
	}
	s.calls[table]++
	if s.err != nil {
		return nil, s.err
	}
	return s.keys[table], nil
}

func testRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg, err := schema.NewRegistry([]*schema.Table{
		{
			Name:       "clientes",
			Sheet:      "Clientes",
			PrimaryKey: "id_cliente",
			Columns:    []string{"id_cliente", "nome"},
			Required:   map[string]bool{"id_cliente": true},
			Types:      map[string]schema.ColumnType{"id_cliente": schema.TypeText, "nome": schema.TypeText},
		},
		{
			Name:       "produtos",
			Sheet:      "Produtos",
			PrimaryKey: "id_produto",
			Columns:    []string{"id_produto", "nome_produto"},
			Required:   map[string]bool{"id_produto": true},
			Types:      map[string]schema.ColumnType{"id_produto": schema.TypeText, "nome_produto": schema.TypeText},
		},
		{
			Name:       "vendas",
			Sheet:      "Vendas",
			PrimaryKey: "id_venda",
			Columns:    []string{"id_venda", "id_cliente", "id_produto"},
			Required:   map[string]bool{"id_venda": true, "id_cliente": true, "id_produto": true},
			Types: map[string]schema.ColumnType{
				"id_venda":   schema.TypeText,
				"id_cliente": schema.TypeText,
				"id_produto": schema.TypeText,
			},
			ForeignKeys: map[string]string{"id_cliente": "clientes", "id_produto": "produtos"},
		},
	})
	require.NoError(t, err)
	return reg
}

func newTestKeyCache(t *testing.T, src keySource) *KeyCache {
	t.Helper()
	cache, err := NewKeyCache(src, testRegistry(t), logger.NewDefault())
	require.NoError(t, err)
	return cache
}

func TestValidateForeignKeysRejectsUnknownValue(t *testing.T) {
	src := &stubKeySource{keys: map[string][]string{
		"clientes": {"cli_001", "cli_002"},
		"produtos": {"prd_001"},
	}}
	cache := newTestKeyCache(t, src)
	table := cache.reg.Get("vendas")
	require.NotNil(t, table)

	records := []schema.Record{
		{"id_venda": "ven_001", "id_cliente": "cli_001", "id_produto": "prd_001"},
		{"id_venda": "ven_002", "id_cliente": "cli_002", "id_produto": "prd_999"},
	}

	valid, rejected, err := ValidateForeignKeys(context.Background(), cache, table, records)
	require.NoError(t, err)

	require.Len(t, valid, 1)
	assert.Equal(t, "ven_001", valid[0].StringValue("id_venda"))
	require.Len(t, rejected, 1)
	assert.Equal(t, 2, rejected[0].Row)
	assert.Equal(t, "id_produto", rejected[0].Column)
	assert.Contains(t, rejected[0].Message, "prd_999")
	// Rejection names the referenced table and its key column.
	assert.Contains(t, rejected[0].Message, "produtos.id_produto")
}

func TestKeyCacheLoadsEachTableOnce(t *testing.T) {
	src := &stubKeySource{keys: map[string][]string{
		"clientes": {"cli_001"},
		"produtos": {"prd_001"},
	}}
	cache := newTestKeyCache(t, src)
	table := cache.reg.Get("vendas")
	require.NotNil(t, table)

	records := []schema.Record{
		{"id_venda": "ven_001", "id_cliente": "cli_001", "id_produto": "prd_001"},
		{"id_venda": "ven_002", "id_cliente": "cli_001", "id_produto": "prd_001"},
		{"id_venda": "ven_003", "id_cliente": "cli_001", "id_produto": "prd_001"},
	}

	valid, rejected, err := ValidateForeignKeys(context.Background(), cache, table, records)
	require.NoError(t, err)

	assert.Len(t, valid, 3)
	assert.Empty(t, rejected)
	assert.Equal(t, 1, src.calls["clientes"])
	assert.Equal(t, 1, src.calls["produtos"])
}

func TestKeyCacheFetchFailureTreatedAsEmpty(t *testing.T) {
	src := &stubKeySource{err: errors.New("connection reset")}
	cache := newTestKeyCache(t, src)
	table := cache.reg.Get("vendas")
	require.NotNil(t, table)

	records := []schema.Record{
		{"id_venda": "ven_001", "id_cliente": "cli_001", "id_produto": "prd_001"},
	}

	valid, rejected, err := ValidateForeignKeys(context.Background(), cache, table, records)
	require.NoError(t, err)

	assert.Empty(t, valid)
	require.Len(t, rejected, 1)
	assert.Equal(t, "id_cliente", rejected[0].Column)
	// The failure is memoized, not retried.
	assert.Equal(t, 1, src.calls["clientes"])
}

func TestValidateForeignKeysMissingColumnNotRejected(t *testing.T) {
	src := &stubKeySource{keys: map[string][]string{
		"clientes": {"cli_001"},
		"produtos": {},
	}}
	cache := newTestKeyCache(t, src)
	table := cache.reg.Get("vendas")
	require.NotNil(t, table)

	// id_produto absent from the record: only present FK values are checked.
	records := []schema.Record{
		{"id_venda": "ven_001", "id_cliente": "cli_001"},
	}

	valid, rejected, err := ValidateForeignKeys(context.Background(), cache, table, records)
	require.NoError(t, err)

	assert.Len(t, valid, 1)
	assert.Empty(t, rejected)
}

func TestValidateForeignKeysAcceptanceGrowsWithKeys(t *testing.T) {
	records := []schema.Record{
		{"id_venda": "ven_001", "id_cliente": "cli_001", "id_produto": "prd_001"},
		{"id_venda": "ven_002", "id_cliente": "cli_002", "id_produto": "prd_001"},
	}

	smaller := &stubKeySource{keys: map[string][]string{
		"clientes": {"cli_001"},
		"produtos": {"prd_001"},
	}}
	larger := &stubKeySource{keys: map[string][]string{
		"clientes": {"cli_001", "cli_002"},
		"produtos": {"prd_001"},
	}}

	cacheSmall := newTestKeyCache(t, smaller)
	table := cacheSmall.reg.Get("vendas")
	require.NotNil(t, table)

	validSmall, _, err := ValidateForeignKeys(context.Background(), cacheSmall, table, records)
	require.NoError(t, err)

	cacheLarge := newTestKeyCache(t, larger)
	validLarge, _, err := ValidateForeignKeys(context.Background(), cacheLarge, table, records)
	require.NoError(t, err)

	// Growing the referenced key set never rejects a previously accepted record.
	assert.Greater(t, len(validLarge), len(validSmall))
	for _, r := range validSmall {
		assert.Contains(t, validLarge, r)
	}
}

func TestValidateForeignKeysNoForeignKeys(t *testing.T) {
	cache := newTestKeyCache(t, &stubKeySource{})
	table := cache.reg.Get("clientes")
	require.NotNil(t, table)

	records := []schema.Record{{"id_cliente": "cli_001"}}

	valid, rejected, err := ValidateForeignKeys(context.Background(), cache, table, records)
	require.NoError(t, err)

	assert.Equal(t, records, valid)
	assert.Empty(t, rejected)
	assert.Empty(t, cache.cache)
}

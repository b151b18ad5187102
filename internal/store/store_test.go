package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dbsmedya/sheetsync/internal/schema"
	"github.com/dbsmedya/sheetsync/internal/sqlutil"
)

func newClient(t *testing.T, dialect sqlutil.Dialect) (*Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	client, err := NewClient(db, dialect)
	require.NoError(t, err)
	return client, mock
}

func produtosTable() *schema.Table {
	return &schema.Table{
		Name:    "produtos",
		Columns: []string{"id_produto", "nome_produto", "preco_atual"},
	}
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(nil, sqlutil.DialectPostgres)
	assert.Error(t, err)

	db, _, _ := sqlmock.New()
	defer func() { _ = db.Close() }()

	_, err = NewClient(db, "oracle")
	assert.Error(t, err)

	client, err := NewClient(db, sqlutil.DialectPostgres)
	assert.NoError(t, err)
	assert.NotNil(t, client)
}

func TestClearTable(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	mock.ExpectExec(`DELETE FROM "produtos"`).
		WillReturnResult(sqlmock.NewResult(0, 42))

	err := client.ClearTable(context.Background(), "produtos")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestClearTable_InvalidIdentifier(t *testing.T) {
	client, _ := newClient(t, sqlutil.DialectPostgres)

	err := client.ClearTable(context.Background(), "produtos; drop table vendas")
	require.Error(t, err)
	assert.IsType(t, &sqlutil.InvalidIdentifierError{}, err)
}

func TestClearTable_StoreError(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	mock.ExpectExec(`DELETE FROM "produtos"`).
		WillReturnError(fmt.Errorf("permission denied"))

	err := client.ClearTable(context.Background(), "produtos")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to clear table produtos")
}

func TestInsertBatch_Postgres(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	records := []schema.Record{
		{"id_produto": "prd_001", "nome_produto": "Fone", "preco_atual": 89.90},
		{"id_produto": "prd_002", "nome_produto": "Teclado"},
	}

	mock.ExpectExec(`INSERT INTO "produtos" ("id_produto", "nome_produto", "preco_atual") VALUES ($1, $2, $3), ($4, $5, $6)`).
		WithArgs("prd_001", "Fone", 89.90, "prd_002", "Teclado", nil).
		WillReturnResult(sqlmock.NewResult(0, 2))

	err := client.InsertBatch(context.Background(), produtosTable(), records)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_MySQL(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectMySQL)

	records := []schema.Record{
		{"id_produto": "prd_001", "preco_atual": 10.5},
	}

	mock.ExpectExec("INSERT INTO `produtos` (`id_produto`, `preco_atual`) VALUES (?, ?)").
		WithArgs("prd_001", 10.5).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := client.InsertBatch(context.Background(), produtosTable(), records)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_ColumnsFollowSchemaOrder(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	// Record column presence must not depend on map iteration: the column
	// list always follows the schema's declared order.
	records := []schema.Record{
		{"preco_atual": 5.0, "id_produto": "prd_003"},
	}

	mock.ExpectExec(`INSERT INTO "produtos" ("id_produto", "preco_atual") VALUES ($1, $2)`).
		WithArgs("prd_003", 5.0).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := client.InsertBatch(context.Background(), produtosTable(), records)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_Empty(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	err := client.InsertBatch(context.Background(), produtosTable(), nil)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertBatch_StoreError(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	mock.ExpectExec(`INSERT INTO "produtos" ("id_produto") VALUES ($1)`).
		WithArgs("prd_001").
		WillReturnError(fmt.Errorf("duplicate key value violates unique constraint"))

	err := client.InsertBatch(context.Background(), produtosTable(), []schema.Record{{"id_produto": "prd_001"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to insert 1 records into produtos")
}

func TestSelectColumn(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	rows := sqlmock.NewRows([]string{"id_produto"}).
		AddRow("prd_001").
		AddRow([]byte(" prd_002 ")).
		AddRow("")

	mock.ExpectQuery(`SELECT DISTINCT "id_produto" FROM "produtos" WHERE "id_produto" IS NOT NULL`).
		WillReturnRows(rows)

	values, err := client.SelectColumn(context.Background(), "produtos", "id_produto")
	require.NoError(t, err)
	// Values are trimmed and empties dropped
	assert.Equal(t, []string{"prd_001", "prd_002"}, values)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectColumn_QueryError(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	mock.ExpectQuery(`SELECT DISTINCT "id_produto" FROM "produtos" WHERE "id_produto" IS NOT NULL`).
		WillReturnError(fmt.Errorf("relation does not exist"))

	_, err := client.SelectColumn(context.Background(), "produtos", "id_produto")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "produtos.id_produto")
}

func TestCountRows(t *testing.T) {
	client, mock := newClient(t, sqlutil.DialectPostgres)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "vendas"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(120))

	count, err := client.CountRows(context.Background(), "vendas")
	require.NoError(t, err)
	assert.Equal(t, int64(120), count)
}

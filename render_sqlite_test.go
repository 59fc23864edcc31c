package csvinfer

import (
	"context"
	"errors"
	"testing"

	"github.com/nao1215/csvinfer/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderSQLite(t *testing.T) {
	t.Parallel()

	t.Run("table name from source", func(t *testing.T) {
		t.Parallel()

		ddl, err := RenderSQLite(renderFixture(), "")
		require.NoError(t, err)

		want := `CREATE TABLE IF NOT EXISTS "orders" (
  "id" INTEGER NOT NULL,
  "unit price" NUMERIC,
  "created" TEXT NOT NULL,
  "key" TEXT NOT NULL,
  "note" TEXT,
  "ID" INTEGER NOT NULL,
  "ratio" REAL,
  "active" INTEGER NOT NULL
);
`
		assert.Equal(t, want, ddl)
	})

	t.Run("explicit table name is quoted", func(t *testing.T) {
		t.Parallel()

		result := &Result{Columns: []model.ColumnResult{{Name: `say "hi"`, Type: model.ColumnTypeString, Nullable: true}}}
		ddl, err := RenderSQLite(result, "my table")
		require.NoError(t, err)
		assert.Equal(t, "CREATE TABLE IF NOT EXISTS \"my table\" (\n  \"say \"\"hi\"\"\" TEXT\n);\n", ddl)
	})

	t.Run("no usable name", func(t *testing.T) {
		t.Parallel()

		_, err := RenderSQLite(&Result{}, "")
		assert.True(t, errors.Is(err, ErrInvalidConfig))

		_, err = RenderSQLite(nil, "t")
		assert.Error(t, err)
	})
}

func TestVerifyDDL(t *testing.T) {
	t.Parallel()

	t.Run("rendered DDL is accepted", func(t *testing.T) {
		t.Parallel()

		ddl, err := RenderSQLite(renderFixture(), "")
		require.NoError(t, err)
		assert.NoError(t, VerifyDDL(context.Background(), ddl))
	})

	t.Run("analyzed file round trips", func(t *testing.T) {
		t.Parallel()

		result, err := AnalyzeFile(context.Background(), "testdata/people.csv")
		require.NoError(t, err)
		ddl, err := RenderSQLite(result, "")
		require.NoError(t, err)
		assert.NoError(t, VerifyDDL(context.Background(), ddl))
	})

	t.Run("broken DDL is rejected", func(t *testing.T) {
		t.Parallel()

		err := VerifyDDL(context.Background(), "CREATE TABLE (")
		assert.True(t, errors.Is(err, ErrInvalidData), "got %v", err)
	})
}

func TestQuoteIdentifier(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `"plain"`, quoteIdentifier("plain"))
	assert.Equal(t, `"a""b"`, quoteIdentifier(`a"b`))
	assert.Equal(t, `""`, quoteIdentifier(""))
}

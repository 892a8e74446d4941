package basic

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	core "pagekit/data/db"
	dbbasic "pagekit/data/db/basic"
	"pagekit/data/orm"
)

type note struct {
	ID        int64      `db:"id"`
	Title     string     `db:"title"`
	Score     int        `db:"score"`
	DeletedAt *time.Time `db:"deleted_at"`
	Scratch   string     `db:"-"`
}

func (note) TableName() string { return "notes" }

func setupNotes(t *testing.T) *Orm {
	t.Helper()
	db, err := dbbasic.New(core.DBConfig{Driver: "sqlite", Database: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, db.ExecDDL(context.Background(),
		`CREATE TABLE notes (id INTEGER PRIMARY KEY, title TEXT NOT NULL, score INTEGER NOT NULL, deleted_at DATETIME NULL)`))
	return New(db)
}

func TestModel_MetaFromStruct(t *testing.T) {
	o := setupNotes(t)
	m, err := o.Model(&orm.ModelMeta{Model: note{}})
	require.NoError(t, err)

	meta := m.Meta()
	assert.Equal(t, "notes", meta.Table)
	assert.Equal(t, "id", meta.PrimaryKey())
	col, ok := meta.Column("Score")
	assert.True(t, ok)
	assert.Equal(t, "score", col)
	_, ok = meta.Column("Scratch")
	assert.False(t, ok)
	assert.True(t, m.Capabilities().Supports(orm.CapabilityPagination))
}

func TestModel_InvalidTable(t *testing.T) {
	o := setupNotes(t)
	_, err := o.Model(&orm.ModelMeta{Table: "notes; drop table notes"})
	assert.Error(t, err)
	_, err = o.Model(nil)
	assert.Error(t, err)
}

func TestModel_CreateFindCount(t *testing.T) {
	ctx := context.Background()
	o := setupNotes(t)
	m, err := o.Model(&orm.ModelMeta{Model: note{}})
	require.NoError(t, err)

	require.NoError(t, m.Create(ctx,
		&note{ID: 1, Title: "a", Score: 30},
		&note{ID: 2, Title: "b", Score: 10},
		&note{ID: 3, Title: "c", Score: 20},
	))

	total, err := m.Count(ctx, orm.WithWhere("score >= ?", 20))
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	var page []note
	require.NoError(t, m.Find(ctx, &page,
		orm.WithOrderBy("score", true),
		orm.WithOffset(1),
		orm.WithLimit(2),
	))
	require.Len(t, page, 2)
	assert.Equal(t, []int64{3, 2}, []int64{page[0].ID, page[1].ID})

	var ptrs []*note
	require.NoError(t, m.Find(ctx, &ptrs, orm.WithOffset(2)))
	require.Len(t, ptrs, 1)
	assert.Nil(t, ptrs[0].DeletedAt)

	var titles []note
	require.NoError(t, m.Find(ctx, &titles, orm.WithSelect("title"), orm.WithOrderBy("title", true)))
	require.Len(t, titles, 3)
	assert.Equal(t, "c", titles[0].Title)
	assert.Zero(t, titles[0].ID, "unselected columns stay zero")
}

func TestModel_First(t *testing.T) {
	ctx := context.Background()
	o := setupNotes(t)
	m, err := o.Model(&orm.ModelMeta{Model: note{}})
	require.NoError(t, err)

	var n note
	assert.ErrorIs(t, m.First(ctx, &n), orm.ErrNotFound)

	require.NoError(t, m.Create(ctx, note{ID: 7, Title: "x", Score: 1}))
	require.NoError(t, m.First(ctx, &n, orm.WithWhere("id = ?", 7)))
	assert.Equal(t, "x", n.Title)
}

func TestModel_CreateMixedTypes(t *testing.T) {
	o := setupNotes(t)
	m, err := o.Model(&orm.ModelMeta{Model: note{}})
	require.NoError(t, err)
	err = m.Create(context.Background(), note{ID: 1}, struct{ ID int64 }{ID: 2})
	assert.Error(t, err)
}

func TestToSnakeCase(t *testing.T) {
	assert.Equal(t, "created_at", toSnakeCase("CreatedAt"))
	assert.Equal(t, "score", toSnakeCase("Score"))
}

package ormsource

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	core "pagekit/data/db"
	dbbasic "pagekit/data/db/basic"
	"pagekit/data/orm"
	ormbasic "pagekit/data/orm/basic"
	"pagekit/paging"
)

type post struct {
	ID        int64      `db:"id"`
	Title     string     `db:"title"`
	Status    string     `db:"status"`
	Score     int        `db:"score"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (post) TableName() string { return "posts" }

var postSchema = paging.MustSchema(
	paging.OrderedField("Id", "id", func(p post) int64 { return p.ID }),
	paging.OrderedField("Title", "title", func(p post) string { return p.Title }),
	paging.OrderedField("Status", "status", func(p post) string { return p.Status }),
	paging.OrderedField("Score", "score", func(p post) int { return p.Score }),
)

const createPosts = `CREATE TABLE posts (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	score INTEGER NOT NULL,
	deleted_at DATETIME NULL
)`

// setupPosts 建表并写入 n 篇文章：ID 1..n，ID%8==3 为 active，score = ID%5。
func setupPosts(t *testing.T, n int) (*dbbasic.DB, orm.IModel) {
	t.Helper()
	ctx := context.Background()
	db, err := dbbasic.New(core.DBConfig{Driver: "sqlite", Database: ":memory:", MaxOpenConns: 1})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.ExecDDL(ctx, createPosts))

	model, err := ormbasic.New(db).Model(&orm.ModelMeta{Model: post{}})
	require.NoError(t, err)

	if n > 0 {
		posts := make([]any, 0, n)
		for i := n; i >= 1; i-- {
			status := "draft"
			if i%8 == 3 {
				status = "active"
			}
			posts = append(posts, &post{ID: int64(i), Title: fmt.Sprintf("post-%02d", i), Status: status, Score: i % 5})
		}
		require.NoError(t, model.Create(ctx, posts...))
	}
	return db, model
}

func postIDs(items []post) []int64 {
	out := make([]int64, len(items))
	for i, p := range items {
		out[i] = p.ID
	}
	return out
}

func idRange(from, to int64) []int64 {
	var out []int64
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

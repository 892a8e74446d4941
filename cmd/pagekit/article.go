package main

import (
	"time"

	"pagekit/paging"
)

const createArticles = `CREATE TABLE IF NOT EXISTS articles (
	id INTEGER PRIMARY KEY,
	title TEXT NOT NULL,
	status TEXT NOT NULL,
	score INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	deleted_at DATETIME NULL
)`

type article struct {
	ID        int64      `db:"id" json:"id,string"`
	Title     string     `db:"title" json:"title" validate:"required"`
	Status    string     `db:"status" json:"status" validate:"oneof=draft active archived"`
	Score     int        `db:"score" json:"score" validate:"gte=0"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"-"`
}

func (article) TableName() string { return "articles" }

var articleSchema = paging.MustSchema(
	paging.OrderedField("Id", "id", func(a article) int64 { return a.ID }),
	paging.OrderedField("Title", "title", func(a article) string { return a.Title }),
	paging.OrderedField("Status", "status", func(a article) string { return a.Status }),
	paging.OrderedField("Score", "score", func(a article) int { return a.Score }),
	paging.TimeField("CreatedAt", "created_at", func(a article) time.Time { return a.CreatedAt }),
)

var statuses = []string{"draft", "active", "archived"}

package paging_test

import (
	"fmt"
	"time"

	"pagekit/paging"
)

type article struct {
	ID        int64
	Title     string
	Status    string
	Score     int
	CreatedAt time.Time
	Deleted   bool
}

var articleSchema = paging.MustSchema(
	paging.OrderedField("Id", "id", func(a article) int64 { return a.ID }),
	paging.OrderedField("Title", "title", func(a article) string { return a.Title }),
	paging.OrderedField("Status", "status", func(a article) string { return a.Status }),
	paging.OrderedField("Score", "score", func(a article) int { return a.Score }),
	paging.TimeField("CreatedAt", "created_at", func(a article) time.Time { return a.CreatedAt }),
)

var baseTime = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

// makeArticles 生成 n 篇文章，ID 1..n；第 3、11、19 篇为 active，score 在 0..4 循环。
// 切片按 ID 逆序排列，确保默认排序确实生效。
func makeArticles(n int) []article {
	items := make([]article, 0, n)
	for i := n; i >= 1; i-- {
		status := "draft"
		if i%8 == 3 {
			status = "active"
		}
		items = append(items, article{
			ID:        int64(i),
			Title:     fmt.Sprintf("article-%02d", i),
			Status:    status,
			Score:     i % 5,
			CreatedAt: baseTime.Add(time.Duration(i) * time.Hour),
		})
	}
	return items
}

func ids(items []article) []int64 {
	out := make([]int64, len(items))
	for i, a := range items {
		out[i] = a.ID
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

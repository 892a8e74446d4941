package paging_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/paging"
)

func TestPredicate_Match(t *testing.T) {
	a := article{ID: 7, Title: "Go Paging Notes", Status: "active", Score: 3, CreatedAt: baseTime}

	tests := []struct {
		name string
		p    paging.Predicate[article]
		want bool
	}{
		{"eq", paging.Eq[article]("Status", "active"), true},
		{"ne", paging.Ne[article]("Status", "active"), false},
		{"gt int literal converts to int64", paging.Gt[article]("Id", 6), true},
		{"gte", paging.Gte[article]("Score", 3), true},
		{"lt", paging.Lt[article]("Score", 3), false},
		{"lte time", paging.Lte[article]("CreatedAt", baseTime), true},
		{"like is case-insensitive", paging.Like[article]("Title", "paging"), true},
		{"in", paging.In[article]("Status", "draft", "active"), true},
		{"empty in", paging.In[article]("Status"), false},
		{"and", paging.And(paging.Eq[article]("Status", "active"), paging.Gt[article]("Score", 5)), false},
		{"or", paging.Or(paging.Eq[article]("Status", "draft"), paging.Gt[article]("Score", 1)), true},
		{"not", paging.Not(paging.Eq[article]("Status", "draft")), true},
		{"empty and", paging.And[article](), true},
		{"empty or", paging.Or[article](), false},
		{"func", paging.Func("odd", func(a article) bool { return a.ID%2 == 1 }), true},
		{"float literal on int field is exact", paging.Eq[article]("Score", 3.0), true},
		{"fractional literal never equals int", paging.Eq[article]("Score", 3.9), false},
		{"fractional literal not truncated for gte", paging.Gte[article]("Score", 3.5), false},
		{"fractional literal gt", paging.Gt[article]("Score", 2.5), true},
		{"fractional literal lt", paging.Lt[article]("Score", 3.1), true},
		{"fractional literal in set", paging.In[article]("Score", 2.9, 3.9), false},
		{"negative literal on int64 id", paging.Gt[article]("Id", int8(-1)), true},
		{"uint literal beyond int range", paging.Lt[article]("Score", uint64(1<<63)), true},
		{"wide literal not wrapped", paging.Gt[article]("Score", int64(1<<40)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.p.Match(articleSchema, a)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPredicate_MatchErrors(t *testing.T) {
	a := article{ID: 1}

	_, err := paging.Eq[article]("Missing", 1).Match(articleSchema, a)
	assert.ErrorIs(t, err, paging.ErrUnknownField)

	_, err = paging.Eq[article]("Score", "three").Match(articleSchema, a)
	assert.ErrorIs(t, err, paging.ErrInvalidRequest)

	_, err = paging.Gt[article]("CreatedAt", "yesterday").Match(articleSchema, a)
	assert.ErrorIs(t, err, paging.ErrInvalidRequest)

	_, err = paging.Not(paging.Eq[article]("Missing", 1)).Match(articleSchema, a)
	assert.Error(t, err)
}

func TestPredicate_String(t *testing.T) {
	p := paging.And(
		paging.Eq[article]("Status", "active"),
		paging.Or(paging.Gt[article]("Score", 2), paging.In[article]("Id", 1, 2)),
		paging.Not(paging.Like[article]("Title", "draft")),
	)
	assert.Equal(t, `(Status = "active" AND (Score > 2 OR Id IN (1, 2)) AND NOT Title LIKE "draft")`, p.String())
	assert.Equal(t, "TRUE", paging.And[article]().String())
	assert.Equal(t, "FALSE", paging.Or[article]().String())
	assert.Equal(t, "FALSE", paging.Not[article](nil).String())
}

func TestNot_NilTermMatchesNothing(t *testing.T) {
	p := paging.Not[article](nil)
	require.NotNil(t, p)

	ok, err := p.Match(articleSchema, article{ID: 1})
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, paging.Translatable(p))
}

func TestTranslatable(t *testing.T) {
	fn := paging.Func("x", func(article) bool { return true })

	assert.True(t, paging.Translatable[article](nil))
	assert.True(t, paging.Translatable(paging.Eq[article]("Status", "active")))
	assert.False(t, paging.Translatable(fn))
	assert.False(t, paging.Translatable(paging.And(paging.Eq[article]("Status", "a"), paging.Not(fn))))
}

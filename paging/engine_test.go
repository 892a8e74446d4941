package paging_test

import (
	"context"
	stdErrors "errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagekit/errors"
	"pagekit/paging"
	"pagekit/paging/memory"
)

func newArticleEngine(t *testing.T, items []article, opts ...paging.Option[article]) *paging.Engine[article] {
	t.Helper()
	provider := memory.NewProvider(articleSchema, items,
		paging.Func("not_deleted", func(a article) bool { return !a.Deleted }))
	engine, err := paging.NewEngine(articleSchema, append([]paging.Option[article]{paging.WithProvider[article](provider)}, opts...)...)
	require.NoError(t, err)
	return engine
}

func generate(t *testing.T, e *paging.Engine[article], req *paging.PageRequest, filter paging.Predicate[article]) *paging.PagedResult[article] {
	t.Helper()
	result, err := e.Generate(context.Background(), paging.GenerateParams[article]{Request: req, Filter: filter})
	require.NoError(t, err)
	return result
}

func TestEngine_FirstPageByID(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))
	req := paging.NewPageRequest(1, 10).OrderBy("Id", paging.Ascending)

	result := generate(t, e, req, nil)

	assert.Equal(t, idRange(1, 10), ids(result.Items()))
	assert.Equal(t, int64(25), result.TotalCount())
	assert.Equal(t, 3, result.TotalPages())
	assert.Equal(t, 1, result.CurrentPage())
	assert.Same(t, req, result.Request())
	assert.True(t, result.HasNext())
	assert.False(t, result.HasPrevious())
}

func TestEngine_LastPartialPage(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))

	result := generate(t, e, paging.NewPageRequest(3, 10), nil)

	assert.Equal(t, idRange(21, 25), ids(result.Items()))
	assert.Equal(t, int64(25), result.TotalCount())
	assert.False(t, result.HasNext())
	assert.True(t, result.HasPrevious())
}

func TestEngine_ExplicitSkip(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))

	result := generate(t, e, paging.NewPageRequest(4, 5).WithSkip(5), nil)

	assert.Equal(t, idRange(6, 10), ids(result.Items()))
	assert.Equal(t, 4, result.CurrentPage(), "current page still reports the requested page number")
}

func TestEngine_FilterBeforeCount(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))

	result := generate(t, e, paging.NewPageRequest(1, 10), paging.Eq[article]("Status", "active"))

	assert.Equal(t, int64(3), result.TotalCount())
	assert.Equal(t, []int64{3, 11, 19}, ids(result.Items()))
	assert.Equal(t, 1, result.TotalPages())
}

func TestEngine_UnknownOrderingFieldFailsFast(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))
	req := paging.NewPageRequest(1, 10).OrderBy("DoesNotExist", paging.Ascending)

	result, err := e.Generate(context.Background(), paging.GenerateParams[article]{Request: req})

	require.Error(t, err)
	assert.Nil(t, result)
	assert.ErrorIs(t, err, paging.ErrUnknownField)
	assert.True(t, errors.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "DoesNotExist")
}

func TestEngine_PageSizeBoundAndCountConsistency(t *testing.T) {
	items := makeArticles(37)
	e := newArticleEngine(t, items)

	for _, size := range []int{1, 3, 10, 36, 37, 50} {
		for page := 1; page <= 5; page++ {
			result := generate(t, e, paging.NewPageRequest(page, size), nil)
			assert.LessOrEqual(t, len(result.Items()), size)
			assert.Equal(t, int64(len(items)), result.TotalCount())
			assert.GreaterOrEqual(t, result.TotalCount(), int64(len(result.Items())))
		}
	}
}

func TestEngine_DefaultOrderingDeterministic(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))
	req := paging.NewPageRequest(2, 7)

	first := generate(t, e, req, nil)
	second := generate(t, e, req, nil)

	assert.Equal(t, ids(first.Items()), ids(second.Items()))
	assert.Equal(t, idRange(8, 14), ids(first.Items()))
}

func TestEngine_MultiKeyOrdering(t *testing.T) {
	e := newArticleEngine(t, makeArticles(40))
	req := paging.NewPageRequest(1, 40).
		OrderBy("Score", paging.Ascending).
		OrderBy("CreatedAt", paging.Descending)

	items := generate(t, e, req, nil).Items()
	require.Len(t, items, 40)
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		assert.LessOrEqual(t, prev.Score, cur.Score)
		if prev.Score == cur.Score {
			assert.False(t, prev.CreatedAt.Before(cur.CreatedAt), "secondary key must be non-increasing within equal primary keys")
		}
	}
}

func TestEngine_IDTieBreak(t *testing.T) {
	items := makeArticles(20)
	req := paging.NewPageRequest(1, 20).OrderBy("Status", paging.Descending)

	withTieBreak := generate(t, newArticleEngine(t, items), req, nil).Items()
	// draft 在前，同状态内按 ID 升序
	assert.Equal(t, []int64{1, 2, 4, 5}, ids(withTieBreak[:4]))

	withoutTieBreak := generate(t, newArticleEngine(t, items, paging.WithIDTieBreak[article](false)), req, nil).Items()
	// 关闭后保持数据源的稳定顺序（输入为 ID 逆序）
	assert.Equal(t, []int64{20, 18, 17, 16}, ids(withoutTieBreak[:4]))
}

func TestEngine_SourceIgnoresFilter(t *testing.T) {
	e := newArticleEngine(t, nil)
	source := memory.New(articleSchema, makeArticles(12))

	result, err := e.Generate(context.Background(), paging.GenerateParams[article]{
		Source:  source,
		Request: paging.NewPageRequest(1, 5),
		Filter:  paging.Eq[article]("Status", "active"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(12), result.TotalCount())
}

func TestEngine_ProviderValidExcludesDeleted(t *testing.T) {
	items := makeArticles(10)
	items[0].Deleted = true // ID 10
	e := newArticleEngine(t, items)

	result := generate(t, e, paging.NewPageRequest(1, 20), nil)
	assert.Equal(t, int64(9), result.TotalCount())
	assert.Equal(t, idRange(1, 9), ids(result.Items()))
}

func TestEngine_NoSourceNoProvider(t *testing.T) {
	e, err := paging.NewEngine(articleSchema)
	require.NoError(t, err)

	_, err = e.Generate(context.Background(), paging.GenerateParams[article]{Request: paging.NewPageRequest(1, 10)})
	assert.ErrorIs(t, err, paging.ErrNoSource)
	assert.True(t, errors.IsConfiguration(err))

	_, err = paging.NewEngine[article](nil)
	assert.ErrorIs(t, err, paging.ErrInvalidSchema)
}

func TestEngine_ProviderReturnsNilQuery(t *testing.T) {
	provider := paging.ProviderFunc[article](func(context.Context, paging.Predicate[article]) (paging.Query[article], error) {
		return nil, nil
	})
	e, err := paging.NewEngine(articleSchema, paging.WithProvider[article](provider))
	require.NoError(t, err)

	_, err = e.Generate(context.Background(), paging.GenerateParams[article]{Request: paging.NewPageRequest(1, 10)})
	assert.ErrorIs(t, err, paging.ErrNoSource)
}

func TestEngine_InvalidRequest(t *testing.T) {
	e := newArticleEngine(t, makeArticles(5), paging.WithMaxPageSize[article](50))

	tests := []struct {
		name string
		req  *paging.PageRequest
	}{
		{"nil request", nil},
		{"negative page", paging.NewPageRequest(-1, 10)},
		{"negative size", paging.NewPageRequest(1, -5)},
		{"negative skip", paging.NewPageRequest(1, 10).WithSkip(-1)},
		{"too large", paging.NewPageRequest(1, 51)},
		{"offset overflow", paging.NewPageRequest(math.MaxInt/10+2, 10)},
		{"bad direction", paging.NewPageRequest(1, 10).OrderBy("Id", paging.Direction("sideways"))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.Generate(context.Background(), paging.GenerateParams[article]{Request: tt.req})
			assert.ErrorIs(t, err, paging.ErrInvalidRequest)
			assert.True(t, errors.IsInvalidInput(err))
		})
	}
}

func TestEngine_NotOrderableSource(t *testing.T) {
	e := newArticleEngine(t, nil)
	src := &stubQuery{count: 3, items: makeArticles(3), orderable: false}

	_, err := e.Generate(context.Background(), paging.GenerateParams[article]{Source: src, Request: paging.NewPageRequest(1, 10)})
	assert.ErrorIs(t, err, paging.ErrNotOrderable)
	assert.True(t, errors.IsInternal(err))
}

func TestEngine_PageOverflow(t *testing.T) {
	e := newArticleEngine(t, nil)
	src := &stubQuery{count: 30, items: makeArticles(11), orderable: true}

	result, err := e.Generate(context.Background(), paging.GenerateParams[article]{Source: src, Request: paging.NewPageRequest(1, 10)})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, paging.ErrPageOverflow)
}

func TestEngine_TotalNeverBelowSeenRows(t *testing.T) {
	e := newArticleEngine(t, nil)
	src := &stubQuery{count: 2, items: makeArticles(5), orderable: true}

	result, err := e.Generate(context.Background(), paging.GenerateParams[article]{Source: src, Request: paging.NewPageRequest(3, 5)})
	require.NoError(t, err)
	assert.Len(t, result.Items(), 5)
	assert.Equal(t, int64(15), result.TotalCount())
	assert.False(t, result.HasNext())

	empty := &stubQuery{count: 0, orderable: true}
	result, err = e.Generate(context.Background(), paging.GenerateParams[article]{Source: empty, Request: paging.NewPageRequest(3, 5)})
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount())
}

func TestEngine_SourceErrorsWrapped(t *testing.T) {
	e := newArticleEngine(t, nil)
	boom := stdErrors.New("connection reset")

	_, err := e.Generate(context.Background(), paging.GenerateParams[article]{
		Source:  &stubQuery{countErr: boom, orderable: true},
		Request: paging.NewPageRequest(1, 10),
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, errors.ErrCodeDatabase, errors.GetErrorCode(err))

	_, err = e.Generate(context.Background(), paging.GenerateParams[article]{
		Source:  &stubQuery{count: 1, findErr: boom, orderable: true},
		Request: paging.NewPageRequest(1, 10),
	})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, errors.ErrCodeDatabase, errors.GetErrorCode(err))
}

func TestEngine_CanceledBeforeStart(t *testing.T) {
	e := newArticleEngine(t, makeArticles(5))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := e.Generate(ctx, paging.GenerateParams[article]{Request: paging.NewPageRequest(1, 10)})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, errors.IsInternal(err), "cancellation is returned as the bare context error")
}

func TestEngine_AsyncCanceledDuringCount(t *testing.T) {
	e := newArticleEngine(t, nil)
	src := &stubQuery{blockCount: true, orderable: true, started: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	ch := e.GenerateAsync(ctx, paging.GenerateParams[article]{Source: src, Request: paging.NewPageRequest(1, 10)})
	<-src.started
	cancel()

	select {
	case out := <-ch:
		assert.True(t, out.Canceled())
		assert.Nil(t, out.Result)
		assert.ErrorIs(t, out.Err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("async generate did not observe cancellation")
	}
	_, open := <-ch
	assert.False(t, open, "channel is closed after the single outcome")
}

func TestEngine_AsyncCanceledDuringFind(t *testing.T) {
	e := newArticleEngine(t, nil)
	src := &stubQuery{count: 5, blockFind: true, orderable: true, started: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	out := <-e.GenerateAsync(ctx, paging.GenerateParams[article]{Source: src, Request: paging.NewPageRequest(1, 10)})
	assert.True(t, out.Canceled())
	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Nil(t, out.Result)
}

func TestEngine_AsyncSuccess(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))

	out := <-e.GenerateAsync(context.Background(), paging.GenerateParams[article]{Request: paging.NewPageRequest(3, 10)})
	require.NoError(t, out.Err)
	assert.False(t, out.Canceled())
	assert.Equal(t, idRange(21, 25), ids(out.Result.Items()))
}

func TestEngine_ConcurrentGenerate(t *testing.T) {
	e := newArticleEngine(t, makeArticles(50))
	chans := make([]<-chan paging.Outcome[article], 0, 5)
	for page := 1; page <= 5; page++ {
		chans = append(chans, e.GenerateAsync(context.Background(), paging.GenerateParams[article]{Request: paging.NewPageRequest(page, 10)}))
	}
	for i, ch := range chans {
		out := <-ch
		require.NoError(t, out.Err)
		assert.Equal(t, idRange(int64(i*10+1), int64(i*10+10)), ids(out.Result.Items()))
	}
}

func TestEngine_RequestNotMutated(t *testing.T) {
	e := newArticleEngine(t, makeArticles(25))
	req := paging.NewPageRequest(0, 0).OrderBy("score", paging.Descending)
	before := req.Clone()

	generate(t, e, req, nil)
	assert.Equal(t, before, req)
}

func TestPaginateHelpers(t *testing.T) {
	ctx := context.Background()
	items := makeArticles(25)
	provider := memory.NewProvider(articleSchema, items, nil)

	result, err := paging.Paginate[article](ctx, articleSchema, provider, paging.NewPageRequest(1, 10), paging.Gte[article]("Score", 4))
	require.NoError(t, err)
	assert.Equal(t, int64(5), result.TotalCount())

	result, err = paging.PaginateQuery[article](ctx, articleSchema, memory.New(articleSchema, items), paging.NewPageRequest(2, 20))
	require.NoError(t, err)
	assert.Equal(t, idRange(21, 25), ids(result.Items()))

	page, err := paging.PaginateSummary[article](ctx, articleSchema, provider, paging.NewPageRequest(3, 10), nil)
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.Size)
	assert.Equal(t, 3, page.TotalPages)
	assert.Len(t, page.Items, 5)

	_, err = paging.PaginateSummary[article](ctx, articleSchema, provider, paging.NewPageRequest(1, 10).OrderBy("nope", paging.Ascending), nil)
	assert.ErrorIs(t, err, paging.ErrUnknownField)
}

// stubQuery 可控行为的数据源，用于覆盖引擎的错误路径。
type stubQuery struct {
	count      int64
	countErr   error
	items      []article
	findErr    error
	orderable  bool
	blockCount bool
	blockFind  bool
	started    chan struct{}
}

func (s *stubQuery) Where(paging.Predicate[article]) paging.Query[article] { return s }

func (s *stubQuery) OrderBy(string, paging.Direction) (paging.Query[article], error) {
	if s.orderable {
		return orderedStub{s}, nil
	}
	return s, nil
}

func (s *stubQuery) Skip(int) paging.Query[article] { return s }
func (s *stubQuery) Take(int) paging.Query[article] { return s }

func (s *stubQuery) Count(ctx context.Context) (int64, error) {
	if s.blockCount {
		close(s.started)
		<-ctx.Done()
		return 0, ctx.Err()
	}
	return s.count, s.countErr
}

func (s *stubQuery) Find(ctx context.Context) ([]article, error) {
	if s.blockFind {
		close(s.started)
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.items, s.findErr
}

type orderedStub struct{ *stubQuery }

func (o orderedStub) ThenBy(string, paging.Direction) (paging.OrderedQuery[article], error) {
	return o, nil
}

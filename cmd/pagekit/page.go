package main

import (
	"encoding/json"
	"maps"

	"github.com/spf13/cobra"

	"pagekit/data/orm/repo"
	"pagekit/logging"
	"pagekit/paging"
)

type pageFlags struct {
	page    int
	size    int
	skip    int
	order   string
	status  string
	filters map[string]string
	async   bool
}

func newPageCmd(a *app) *cobra.Command {
	f := &pageFlags{}
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Print one page of articles as JSON",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			r, cleanup, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := &repo.QueryOptions{
				Page:    f.page,
				Size:    f.size,
				Order:   f.order,
				Filters: maps.Clone(f.filters),
			}
			if opts.Size == 0 {
				opts.Size = a.cfg.Paging.DefaultPageSize
			}
			if cmd.Flags().Changed("skip") {
				opts.Skip = &f.skip
			}
			if f.status != "" {
				if opts.Filters == nil {
					opts.Filters = map[string]string{}
				}
				opts.Filters["Status"] = f.status
			}

			var result *paging.PagedResult[article]
			if f.async {
				out := <-r.GeneratePageAsync(ctx, opts)
				result, err = out.Result, out.Err
			} else {
				result, err = r.GeneratePage(ctx, opts)
			}
			if err != nil {
				a.logger.Error(ctx, "page query failed", logging.Error(err))
				return err
			}
			a.logger.Info(ctx, "page generated",
				logging.Int("page", result.CurrentPage()),
				logging.Int("items", len(result.Items())),
				logging.Int64("total", result.TotalCount()),
				logging.Bool("has_next", result.HasNext()))

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result.Summary())
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.page, "page", paging.DefaultPageNumber, "1-based page number")
	fl.IntVar(&f.size, "size", 0, "page size (default from config)")
	fl.IntVar(&f.skip, "skip", 0, "explicit offset, overrides --page")
	fl.StringVar(&f.order, "order", "", "orderings, e.g. status,score:desc")
	fl.StringVar(&f.status, "status", "", "only articles with this status")
	fl.StringToStringVar(&f.filters, "filter", nil, "extra filters, e.g. Score_gte=50")
	fl.BoolVar(&f.async, "async", false, "generate the page on a background goroutine")
	return cmd
}

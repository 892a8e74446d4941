package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pagekit/codegen/snowflake"
	"pagekit/logging"
)

func newSeedCmd(a *app) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the articles table and insert demo rows",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count <= 0 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}
			ctx := cmd.Context()
			r, cleanup, err := a.openRepo(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			gen, err := snowflake.NewGenerator(a.cfg.Snowflake)
			if err != nil {
				return err
			}
			ids, err := gen.NextIDs(count)
			if err != nil {
				return err
			}

			base := time.Now().UTC().Truncate(time.Second)
			items := make([]article, count)
			for i, id := range ids {
				items[i] = article{
					ID:        id,
					Title:     fmt.Sprintf("article %d", i+1),
					Status:    statuses[i%len(statuses)],
					Score:     (i * 37) % 100,
					CreatedAt: base.Add(time.Duration(i) * time.Minute),
				}
			}
			if err := r.AddAll(ctx, items); err != nil {
				return err
			}
			a.logger.Info(ctx, "seeded articles", logging.Int("count", count))
			fmt.Fprintf(cmd.OutOrStdout(), "inserted %d articles\n", count)
			return nil
		},
	}
	cmd.Flags().IntVar(&count, "count", 50, "number of articles to insert")
	return cmd
}

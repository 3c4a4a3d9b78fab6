// internal/cli/seed.go
package cli

import (
	"log/slog"

	"go_4_learn_progress/internal/repository"
	"go_4_learn_progress/internal/seed"

	"github.com/spf13/cobra"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load courses, quizzes and enrollments from a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfigAndLogger()
			if err != nil {
				return err
			}
			db, closeDB, err := openDB(cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			if err := repository.AutoMigrate(cmd.Context(), db); err != nil {
				return err
			}

			fixture, err := seed.ParseFile(file)
			if err != nil {
				return err
			}
			ds, err := seed.Build(fixture)
			if err != nil {
				return err
			}
			if err := seed.Apply(cmd.Context(), db, ds); err != nil {
				return err
			}

			// 投入したコースのキャッシュ済みツリーを破棄する
			cache, closeCache := newCurriculumCache(cmd.Context(), cfg, logger)
			defer closeCache()
			for _, c := range ds.Courses {
				if err := cache.Invalidate(cmd.Context(), c.CourseID); err != nil {
					logger.Warn("Failed to invalidate cached course tree", slog.String("course_id", c.CourseID.String()), slog.Any("error", err))
				}
			}

			logger.Info("Seed applied",
				slog.String("file", file),
				slog.Int("courses", len(ds.Courses)),
				slog.Int("quizzes", len(ds.Quizzes)),
				slog.Int("enrollments", len(ds.Enrollments)),
			)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "configs/seed.yaml", "seed YAML file")
	return cmd
}

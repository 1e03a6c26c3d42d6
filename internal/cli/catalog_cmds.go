package cli

import (
	"fmt"

	"studypath/internal/catalog"

	"github.com/spf13/cobra"
)

func newSubjectsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List subjects",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAuth(); err != nil {
				return err
			}

			subjects, err := a.loader.LoadSubjects(ctx)
			if err != nil {
				return err
			}
			for _, s := range subjects {
				fmt.Printf("%-24s %s (grade %d, %s)\n", s.ID, s.Name, s.Grade, s.Board)
			}
			return nil
		},
	}
}

func newChaptersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chapters <subject-id>",
		Short: "List a subject's chapters",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAuth(); err != nil {
				return err
			}

			chapters, err := a.loader.LoadChapters(ctx, args[0])
			if err != nil {
				return err
			}
			for _, c := range chapters {
				fmt.Printf("%-24s %s (%d quizzes)\n", c.ID, c.Name, c.QuizCount)
			}
			return nil
		},
	}
}

func newQuizzesCmd() *cobra.Command {
	var (
		subjectID, chapterID string
		page, limit          int
	)
	cmd := &cobra.Command{
		Use:   "quizzes",
		Short: "List quizzes, optionally scoped to a subject or chapter",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()
			if err := a.requireAuth(); err != nil {
				return err
			}

			var cached catalog.Page
			switch {
			case subjectID != "":
				if err := a.loader.LoadBySubject(ctx, subjectID, page, limit); err != nil {
					return err
				}
				cached, _ = a.loader.BySubject(subjectID)
			case chapterID != "":
				if err := a.loader.LoadByChapter(ctx, chapterID, page, limit); err != nil {
					return err
				}
				cached, _ = a.loader.ByChapter(chapterID)
			default:
				if err := a.loader.LoadAll(ctx, page, limit); err != nil {
					return err
				}
				cached = a.loader.All()
			}

			for _, q := range cached.Quizzes {
				limitDesc := "no limit"
				if q.TimeLimit > 0 {
					limitDesc = fmt.Sprintf("%d min", q.TimeLimit)
				}
				fmt.Printf("%-24s %s (%s, %d questions, %s)\n",
					q.ID, q.Title, q.Type, q.QuestionCount, limitDesc)
			}
			meta := cached.Meta
			if meta.TotalPages > 0 {
				fmt.Printf("page %d of %d (%d total)\n", meta.Page, meta.TotalPages, meta.Total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&subjectID, "subject", "", "filter by subject id")
	cmd.Flags().StringVar(&chapterID, "chapter", "", "filter by chapter id")
	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 20, "page size")
	cmd.MarkFlagsMutuallyExclusive("subject", "chapter")
	return cmd
}

func newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "Show completed quizzes",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			records, err := a.store.ListCompleted(ctx)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No completed quizzes yet")
				return nil
			}
			for _, r := range records {
				fmt.Printf("%s  %-24s score %3d  (%d/%d correct)\n",
					r.CompletedAt.Format("2006-01-02 15:04"),
					r.QuizID, r.Score, r.CorrectAnswers, r.TotalQuestions)
			}
			return nil
		},
	}
}

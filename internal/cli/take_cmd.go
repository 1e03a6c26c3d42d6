package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"studypath/internal/attempt"
	"studypath/internal/domain"

	"github.com/spf13/cobra"
)

func newTakeCmd() *cobra.Command {
	var page, limit int

	cmd := &cobra.Command{
		Use:   "take <quiz-id>",
		Short: "Take a quiz interactively",
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

			// The engine only starts quizzes present in the catalog.
			if err := a.loader.LoadAll(ctx, page, limit); err != nil {
				return err
			}

			opts := []attempt.Option{}
			if a.cfg.Attempt.RemoteScoring {
				opts = append(opts, attempt.WithRemote(a.client))
			}
			opts = append(opts, attempt.WithBonusHook(func(score int) {
				fmt.Printf("Bonus credit earned for scoring %d!\n", score)
			}))

			engine := attempt.NewEngine(a.loader, a.store, opts...)
			if err := engine.Start(ctx, args[0]); err != nil {
				return err
			}

			runAttemptLoop(cmd, engine)

			if engine.Status() == attempt.StatusSubmitted {
				quiz := engine.Quiz()
				fmt.Printf("\nScore: %d (%d/%d correct)\n",
					engine.Score(), engine.CorrectAnswers(), len(quiz.Questions))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&page, "page", 1, "catalog page to search for the quiz")
	cmd.Flags().IntVar(&limit, "limit", 50, "catalog page size")
	return cmd
}

func runAttemptLoop(cmd *cobra.Command, engine *attempt.Engine) {
	scanner := bufio.NewScanner(os.Stdin)

	for engine.IsActive() {
		question, ok := engine.CurrentQuestion()
		if !ok {
			return
		}
		printQuestion(engine, question)
		fmt.Print("> ")

		if !scanner.Scan() {
			// stdin closed; leave the attempt resumable server-side.
			engine.Abandon()
			return
		}
		// The timer may have auto-submitted while we waited for input.
		if !engine.IsActive() {
			return
		}

		input := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(input)
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "a", "answer":
			if len(fields) < 2 {
				fmt.Println("usage: a <option-number>")
				continue
			}
			choice, err := strconv.Atoi(fields[1])
			if err != nil || choice < 1 || choice > len(question.Options) {
				fmt.Println("invalid option number")
				continue
			}
			answer := domain.QuizAnswer{
				QuestionID:     question.ID,
				SelectedOption: question.Options[choice-1].Text,
			}
			if err := engine.Answer(engine.CurrentQuestionIndex(), answer); err != nil {
				fmt.Println(err)
			}
		case "n", "next":
			engine.NextQuestion()
		case "p", "prev":
			engine.PreviousQuestion()
		case "submit":
			if err := engine.Submit(cmd.Context()); err != nil {
				fmt.Printf("submit failed: %v (attempt still active, retry with `submit`)\n", err)
			}
		case "quit":
			engine.Abandon()
		default:
			fmt.Println("commands: a <n>, next, prev, submit, quit")
		}
	}
}

func printQuestion(engine *attempt.Engine, question domain.Question) {
	quiz := engine.Quiz()
	remaining := engine.TimeRemaining()
	fmt.Printf("\n[%d:%02d remaining] Question %d/%d: %s\n",
		remaining/60, remaining%60,
		engine.CurrentQuestionIndex()+1, len(quiz.Questions),
		question.QuestionText)

	answers := engine.Answers()
	current := answers[engine.CurrentQuestionIndex()]
	for i, opt := range question.Options {
		marker := " "
		if current != nil && current.SelectedOption == opt.Text {
			marker = "*"
		}
		fmt.Printf("  %s %d) %s\n", marker, i+1, opt.Text)
	}
}

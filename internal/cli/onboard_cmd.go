package cli

import (
	"context"
	"fmt"
	"strings"

	"studypath/internal/domain"
	"studypath/internal/onboarding"
	"studypath/internal/store"

	"github.com/spf13/cobra"
)

func newOnboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Complete the multi-step profile onboarding",
	}
	cmd.AddCommand(newOnboardStatusCmd())
	cmd.AddCommand(newOnboardSetCmd())
	cmd.AddCommand(newOnboardNextCmd())
	cmd.AddCommand(newOnboardBackCmd())
	cmd.AddCommand(newOnboardSkipCmd())
	cmd.AddCommand(newOnboardSubmitCmd())
	cmd.AddCommand(newOnboardSchoolsCmd())
	cmd.AddCommand(newOnboardCitiesCmd())
	return cmd
}

// newWizard hydrates the wizard from the persisted step and data, so the
// flow resumes across CLI invocations.
func newWizard(ctx context.Context, a *app) (*onboarding.Wizard, error) {
	return onboarding.NewWizard(ctx, store.NewOnboardingStore(a.store), a.client, a.auth)
}

func newOnboardStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the current step and accumulated data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := newWizard(ctx, a)
			if err != nil {
				return err
			}
			data := w.Data()
			fmt.Printf("Step %d of %d\n", w.Step(), onboarding.LastStep)
			fmt.Printf("  grade: %d  board: %s\n", data.Grade, data.Board)
			fmt.Printf("  school: %s  city: %s\n", data.SchoolID, data.CityID)
			if data.DateOfBirth != "" || data.PhoneNumber != "" {
				fmt.Printf("  dob: %s  phone: %s\n", data.DateOfBirth, data.PhoneNumber)
			}
			if len(data.Interests) > 0 {
				fmt.Printf("  interests: %s\n", strings.Join(data.Interests, ", "))
			}
			if msg := w.StepError(w.Step()); msg != "" {
				fmt.Printf("  step error: %s\n", msg)
			}
			if msg := w.SubmitError(); msg != "" {
				fmt.Printf("  submit error: %s\n", msg)
			}
			return nil
		},
	}
}

func newOnboardSetCmd() *cobra.Command {
	var (
		grade                           int
		board, school, city, dob, phone string
		parentEmail, parentPhone        string
		interests                       []string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Merge fields into the accumulated onboarding data",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			w, err := newWizard(ctx, a)
			if err != nil {
				return err
			}

			var update onboarding.Update
			if cmd.Flags().Changed("grade") {
				update.Grade = &grade
			}
			if cmd.Flags().Changed("board") {
				b := domain.Board(strings.ToUpper(board))
				update.Board = &b
			}
			if cmd.Flags().Changed("school") {
				update.SchoolID = &school
			}
			if cmd.Flags().Changed("city") {
				update.CityID = &city
			}
			if cmd.Flags().Changed("dob") {
				update.DateOfBirth = &dob
			}
			if cmd.Flags().Changed("phone") {
				update.PhoneNumber = &phone
			}
			if cmd.Flags().Changed("parent-email") {
				update.ParentEmail = &parentEmail
			}
			if cmd.Flags().Changed("parent-phone") {
				update.ParentPhone = &parentPhone
			}
			if cmd.Flags().Changed("interests") {
				update.Interests = interests
			}
			return w.UpdateData(ctx, update)
		},
	}
	cmd.Flags().IntVar(&grade, "grade", 0, "grade (1-12)")
	cmd.Flags().StringVar(&board, "board", "", "curriculum board (CBSE|ICSE|IB|STATE|CAMBRIDGE)")
	cmd.Flags().StringVar(&school, "school", "", "school id")
	cmd.Flags().StringVar(&city, "city", "", "city id")
	cmd.Flags().StringVar(&dob, "dob", "", "date of birth (YYYY-MM-DD)")
	cmd.Flags().StringVar(&phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&parentEmail, "parent-email", "", "parent email")
	cmd.Flags().StringVar(&parentPhone, "parent-phone", "", "parent phone")
	cmd.Flags().StringSliceVar(&interests, "interests", nil, "comma-separated interests")
	return cmd
}

func newOnboardNextCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next",
		Short: "Advance to the next step (validates the current one)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wizardStep(cmd, func(ctx context.Context, w *onboarding.Wizard) error {
				return w.NextStep(ctx)
			})
		},
	}
}

func newOnboardBackCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "back",
		Short: "Go back one step",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wizardStep(cmd, func(ctx context.Context, w *onboarding.Wizard) error {
				return w.PreviousStep(ctx)
			})
		},
	}
}

func newOnboardSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Skip an optional step (3 or 4)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wizardStep(cmd, func(ctx context.Context, w *onboarding.Wizard) error {
				return w.Skip(ctx)
			})
		},
	}
}

func newOnboardSubmitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "submit",
		Short: "Submit the completed profile",
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

			w, err := newWizard(ctx, a)
			if err != nil {
				return err
			}
			if err := w.Submit(ctx); err != nil {
				return err
			}
			fmt.Println("Onboarding complete")
			return nil
		},
	}
}

func newOnboardSchoolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schools <query>",
		Short: "Search schools for step 2",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			schools, err := a.client.SearchSchools(ctx, args[0])
			if err != nil {
				return err
			}
			for _, s := range schools {
				fmt.Printf("%-24s %s\n", s.ID, s.Name)
			}
			return nil
		},
	}
}

func newOnboardCitiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cities [query]",
		Short: "List or search cities for step 2",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := newApp(ctx)
			if err != nil {
				return err
			}
			defer a.Close()

			var (
				cities []domain.City
				err2   error
			)
			if len(args) == 1 {
				cities, err2 = a.client.SearchLocations(ctx, args[0])
			} else {
				cities, err2 = a.client.Cities(ctx)
			}
			if err2 != nil {
				return err2
			}
			for _, c := range cities {
				fmt.Printf("%-24s %s, %s\n", c.ID, c.Name, c.State)
			}
			return nil
		},
	}
}

func wizardStep(cmd *cobra.Command, fn func(context.Context, *onboarding.Wizard) error) error {
	ctx := cmd.Context()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := newWizard(ctx, a)
	if err != nil {
		return err
	}
	if err := fn(ctx, w); err != nil {
		return err
	}
	fmt.Printf("Now at step %d of %d\n", w.Step(), onboarding.LastStep)
	return nil
}

package main

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/store"
	"github.com/rx3lixir/cepic-app/internal/validate"
	"github.com/spf13/cobra"
)

func newTrainingsCmd(opts *rootOptions) *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "trainings",
		Short: "List published trainings",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}

			categories := store.NewCategoryStore(s.api.Catalog)
			if err := categories.Select(cmd.Context(), category); err != nil {
				return describe(err, nil)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTITLE\tHOURS\tSTARTS\tPRICE\t")
			for _, t := range categories.State().Trainings {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\t\n", t.ID, t.Title, t.DurationHours, t.StartDate.Format("2006-01-02"), formatPrice(t.Price, false))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&category, "category", "", "category id")
	return cmd
}

func newEnrollCmd(opts *rootOptions) *cobra.Command {
	var (
		data   store.WizardData
		method string
	)

	cmd := &cobra.Command{
		Use:   "enroll TRAINING_ID",
		Short: "Enroll in a training and pay for it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			if err := s.login(ctx, opts); err != nil {
				return err
			}

			switch method {
			case "mobile-money":
				data.Method = entity.MethodMobileMoney
			case "card":
				data.Method = entity.MethodCard
			default:
				return fmt.Errorf("unknown payment method %q, use mobile-money or card", method)
			}

			user := s.auth.State().User
			wizard := store.NewWizard()
			wizard.Update(func(d *store.WizardData) {
				*d = data
				d.FirstName = user.FirstName
				d.LastName = user.LastName
				d.Email = user.Email
				d.TrainingID = args[0]
				if d.PayPhone == "" {
					d.PayPhone = d.Phone
				}
			})

			// Шаги проходятся по порядку, как в форме
			for wizard.State().Step != store.StepPayment {
				if !wizard.Next() {
					return describe(errors.New("invalid enrollment details"), wizard.State().Errors)
				}
			}
			trainingID, motivation, payment, err := wizard.Submission()
			if err != nil {
				return describe(errors.New("invalid payment details"), wizard.State().Errors)
			}

			enrollments := store.NewEnrollmentStore(s.api.Enrollments, s.api.Payments, s.nav, s.log)
			pay, err := enrollments.EnrollAndPay(ctx, trainingID, motivation, payment)
			if err != nil {
				return describe(err, enrollments.State().Errors)
			}

			out := cmd.OutOrStdout()
			switch pay.Kind {
			case store.PaymentSimulated:
				fmt.Fprintf(out, "Payment %s accepted. %s\n", pay.TransactionID, pay.Message)
			case store.PaymentRedirect:
				fmt.Fprintf(out, "Complete the payment %s at:\n%s\n", pay.TransactionID, pay.RedirectURL)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&data.Phone, "phone", "", "contact phone, 10 digits")
	f.StringVar(&data.Schedule, "schedule", "morning", "morning, afternoon, evening or weekend")
	f.StringVar(&data.Motivation, "motivation", "", "why you want to join")
	f.StringVar(&method, "method", "mobile-money", "mobile-money or card")
	f.StringVar(&data.Operator, "operator", "", "mobile money operator")
	f.StringVar(&data.PayPhone, "pay-phone", "", "mobile money number, defaults to --phone")
	f.StringVar(&data.Card.Number, "card-number", "", "card number")
	f.StringVar(&data.Card.Holder, "card-holder", "", "name on the card")
	f.IntVar(&data.Card.ExpiryMonth, "card-month", 0, "card expiry month")
	f.IntVar(&data.Card.ExpiryYear, "card-year", 0, "card expiry year")
	f.StringVar(&data.Card.CVV, "cvv", "", "card security code")
	return cmd
}

func newEnrollmentsCmd(opts *rootOptions) *cobra.Command {
	var cancel string

	cmd := &cobra.Command{
		Use:   "enrollments",
		Short: "List your enrollments, optionally cancelling one",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			if err := s.login(ctx, opts); err != nil {
				return err
			}

			enrollments := store.NewEnrollmentStore(s.api.Enrollments, s.api.Payments, s.nav, s.log)
			if cancel != "" {
				if err := enrollments.Cancel(ctx, cancel); err != nil {
					return describe(err, nil)
				}
			}
			if err := enrollments.FetchMine(ctx); err != nil {
				return describe(err, nil)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tTRAINING\tSTATUS\tPAYMENT\tAMOUNT\t")
			for _, e := range enrollments.State().Enrollments {
				title := e.TrainingID
				if e.Training != nil {
					title = e.Training.Title
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t\n", e.ID, title, e.Status, e.PaymentStatus, e.Amount)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&cancel, "cancel", "", "enrollment id to cancel first")
	return cmd
}

func newContactCmd(opts *rootOptions) *cobra.Command {
	var form validate.ContactForm

	cmd := &cobra.Command{
		Use:   "contact",
		Short: "Send a message to the institute",
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := newSession(opts)
			if err != nil {
				return err
			}
			if form.Email == "" {
				form.Email = opts.email
			}

			contact := store.NewContactStore(s.api.Catalog, s.log)
			if err := contact.Submit(cmd.Context(), form); err != nil {
				return describe(err, contact.State().Errors)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Your message has been sent")
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&form.Name, "name", "", "your name")
	f.StringVar(&form.Phone, "phone", "", "phone, optional")
	f.StringVar(&form.Subject, "subject", "", "subject")
	f.StringVarP(&form.Message, "message", "m", "", "message")
	return cmd
}

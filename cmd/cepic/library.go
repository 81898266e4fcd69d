package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/rx3lixir/cepic-app/internal/entity"
	"github.com/rx3lixir/cepic-app/internal/store"
	"github.com/rx3lixir/cepic-app/pkg/pricing"
	"github.com/spf13/cobra"
)

func newBooksCmd(opts *rootOptions) *cobra.Command {
	q := store.DefaultBookQuery()
	var bookmark string

	cmd := &cobra.Command{
		Use:   "books",
		Short: "Search the digital library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := newSession(opts)
			if err != nil {
				return err
			}

			// С учетными данными видны закладки
			if opts.email != "" {
				if err := s.login(ctx, opts); err != nil {
					return err
				}
			}

			books := store.NewBookStore(s.api.Library, s.log, store.WithSearchDebounce(0))
			defer books.Close()

			filters := map[string]string{
				"search":     q.Search,
				"categoryId": q.CategoryID,
				"author":     q.Author,
				"language":   q.Language,
				"fileType":   q.FileType,
				"sortBy":     q.SortBy,
				"sortOrder":  q.SortOrder,
			}
			for key, value := range filters {
				if value == "" {
					continue
				}
				if err := books.SetFilter(ctx, key, value); err != nil {
					return describe(err, nil)
				}
			}
			if err := books.SetPage(ctx, q.Page); err != nil {
				return describe(err, nil)
			}

			if bookmark != "" {
				if err := books.ToggleBookmark(ctx, bookmark); err != nil {
					return describe(err, nil)
				}
			}

			st := books.State()
			printBooks(cmd.OutOrStdout(), st.Books)
			fmt.Fprintf(cmd.OutOrStdout(), "\nPage %d of %d, %d books\n",
				st.Pagination.CurrentPage, st.Pagination.TotalPages, st.Pagination.TotalCount)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&q.Search, "search", "s", "", "search in title, author and description")
	f.StringVar(&q.CategoryID, "category", "", "category id")
	f.StringVar(&q.Author, "author", "", "author name")
	f.StringVar(&q.Language, "language", "", "language code")
	f.StringVar(&q.FileType, "file-type", "", "pdf or epub")
	f.StringVar(&q.SortBy, "sort", q.SortBy, "title, author, price, createdAt or publishedAt")
	f.StringVar(&q.SortOrder, "order", q.SortOrder, "asc or desc")
	f.IntVar(&q.Page, "page", 1, "page number")
	f.StringVar(&bookmark, "bookmark", "", "toggle the bookmark of a book id (needs a session)")
	return cmd
}

func printBooks(w io.Writer, books []entity.Book) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tAUTHOR\tLANG\tPRICE\t")
	for _, b := range books {
		mark := ""
		if b.IsBookmarked {
			mark = "*"
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\t%s\t\n", b.ID, b.Title, mark, b.Author, b.Language, formatPrice(b.Price, b.IsFree))
	}
	tw.Flush()
}

func formatPrice(amount int64, free bool) string {
	if free || amount == 0 {
		return "free"
	}
	return fmt.Sprintf("%d FCFA", amount)
}

func newCartCmd(opts *rootOptions) *cobra.Command {
	var (
		ids      []string
		promo    string
		checkout bool
	)

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Price a basket of books, optionally applying a promo code and checking out",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			s, err := newSession(opts)
			if err != nil {
				return err
			}

			cart := store.NewCartStore(s.cfg.Pricing.Rules(), s.log, store.WithCheckoutDelay(s.cfg.Client.CheckoutDelay))
			for _, id := range ids {
				b, err := s.api.Library.Book(ctx, id)
				if err != nil {
					return describe(err, nil)
				}
				if !cart.Add(*b) {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s is already in the cart\n", id)
				}
			}

			if promo != "" {
				if err := cart.ApplyPromo(promo); err != nil {
					return fmt.Errorf("promo %s: %s", promo, cart.State().PromoError)
				}
			}

			out := cmd.OutOrStdout()
			st := cart.State()
			printBooks(out, st.Items)
			printQuote(out, st.Quote)

			if !checkout {
				return nil
			}
			receipt, err := cart.Checkout(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "\nPaid %s. Cart cleared.\n", formatPrice(receipt.Total, false))
			return nil
		},
	}

	f := cmd.Flags()
	f.StringSliceVarP(&ids, "book", "b", nil, "book id to add, repeatable")
	f.StringVar(&promo, "promo", "", "promo code")
	f.BoolVar(&checkout, "checkout", false, "simulate the payment and clear the cart")
	_ = cmd.MarkFlagRequired("book")
	return cmd
}

func printQuote(w io.Writer, q pricing.Quote) {
	fmt.Fprintf(w, "\nSubtotal: %d\n", q.Subtotal)
	if q.Promo != nil {
		fmt.Fprintf(w, "Discount (%s, %d%%): -%d\n", q.Promo.Code, q.Promo.Percent, q.Discount)
	}
	if q.Shipping == 0 {
		fmt.Fprintln(w, "Shipping: free")
	} else {
		fmt.Fprintf(w, "Shipping: %d\n", q.Shipping)
	}
	fmt.Fprintf(w, "Total: %d FCFA\n", q.Total)
}

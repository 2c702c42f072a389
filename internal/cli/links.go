package cli

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/navsite/internal/domain"
	"github.com/MrSnakeDoc/navsite/internal/portal"
)

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

func newListCmd(e *env) *cobra.Command {
	var (
		category string
		refresh  bool
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List navigation links by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			res := app.Load(cmd.Context(), refresh)
			printStatus(e.out, res)

			cats := res.Data.Categories()
			if category != "" {
				if res.Data.Links(category) == nil {
					return fmt.Errorf("unknown category %q", category)
				}
				cats = []string{category}
			}

			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			for _, c := range cats {
				fmt.Fprintf(tw, "[%s]\n", c)
				for _, l := range res.Data.Links(c) {
					fmt.Fprintf(tw, "  %s\t%s\t%s\n", l.ID, l.Name, l.URL)
				}
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringVarP(&category, "category", "c", "", "only show this category")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the local cache")
	return cmd
}

func newSearchCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Search links by name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			hits := app.Search.Search(cmd.Context(), args[0])
			if len(hits) == 0 {
				fmt.Fprintln(e.out, "no match")
				return nil
			}
			tw := tabwriter.NewWriter(e.out, 0, 4, 2, ' ', 0)
			for _, l := range hits {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.ID, l.Category, l.Name, l.URL)
			}
			return tw.Flush()
		},
	}
}

func newAddCmd(e *env) *cobra.Command {
	var (
		link domain.NewLink
		sort int
	)
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a link to the table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("sort") {
				link.Sort = &sort
			}
			app, err := e.portal()
			if err != nil {
				return err
			}
			res, err := app.Data.AddLink(cmd.Context(), link)
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, messageOr(res, "link added"))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&link.Name, "name", "", "display name")
	f.StringVar(&link.URL, "url", "", "site address")
	f.StringVar(&link.Category, "category", "", "category")
	f.IntVar(&sort, "sort", 0, "order inside the category")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("url")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func newDeleteCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a link from the table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := e.portal()
			if err != nil {
				return err
			}
			res, err := app.Data.DeleteLink(cmd.Context(), args[0])
			var demo *portal.DemoRecordError
			if errors.As(err, &demo) {
				fmt.Fprintln(e.out, portal.DemoRecordMessage)
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintln(e.out, messageOr(res, "link deleted"))
			return nil
		},
	}
}

func messageOr(res portal.MutationResult, def string) string {
	if res.Message != "" {
		return res.Message
	}
	return def
}

func printStatus(w io.Writer, res portal.Result) {
	d := res.DateInfo
	if d.Date != "" {
		fmt.Fprintf(w, "%s %s %s\n", d.Date, d.Weekday, d.LunarDate)
	}
	switch {
	case res.FromDefault:
		fmt.Fprintln(w, "offline: showing the default dataset")
	case res.IsMockData:
		fmt.Fprintln(w, "demo data: the server is not connected to a table")
	case res.FromCache:
		fmt.Fprintln(w, "cached at", res.Timestamp)
	}
}

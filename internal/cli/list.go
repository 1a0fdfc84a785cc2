package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"

	"backoffice/internal/apiclient"
	intconfig "backoffice/internal/config"
	"backoffice/internal/listing"
	"backoffice/internal/resources"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"
	"github.com/spf13/cobra"
)

type listOptions struct {
	Token   string
	Page    int
	Limit   int
	Search  string
	SortBy  string
	Order   string
	Filters map[string]string
	JSON    bool
}

func newListCmd() *cobra.Command {
	var opts listOptions

	cmd := &cobra.Command{
		Use:   "list [resource]",
		Short: "Print one page of a list screen, or the screen names when no resource is given",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnv()
			if err != nil {
				return err
			}
			reg := resources.Default(env.DefaultPageSize, env.MaxPageSize, env.ExportCurrency)
			if len(args) == 0 {
				for _, d := range reg.Descriptors() {
					fmt.Fprintf(cmd.OutOrStdout(), "%-12s %s\n", d.Name, d.Title)
				}
				return nil
			}
			if opts.Token == "" {
				opts.Token = os.Getenv("BACKOFFICE_TOKEN")
			}
			return runList(cmd.Context(), cmd.OutOrStdout(), env, reg, args[0], opts)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.Token, "token", "", "bearer token (default $BACKOFFICE_TOKEN)")
	f.IntVar(&opts.Page, "page", 1, "page number")
	f.IntVar(&opts.Limit, "limit", 0, "rows per page (default DEFAULT_PAGE_SIZE)")
	f.StringVar(&opts.Search, "search", "", "free-text search")
	f.StringVar(&opts.SortBy, "sort", "", "sort field")
	f.StringVar(&opts.Order, "order", "", "sort direction: asc or desc")
	f.StringToStringVar(&opts.Filters, "filter", nil, "filters as key=value, repeatable")
	f.BoolVar(&opts.JSON, "json", false, "print the raw page as JSON")
	return cmd
}

func runList(ctx context.Context, out io.Writer, env intconfig.Env, reg *resources.Registry, name string, opts listOptions) error {
	if strings.TrimSpace(opts.Token) == "" {
		return errors.New("--token or BACKOFFICE_TOKEN is required")
	}
	res, err := reg.Get(name)
	if err != nil {
		return err
	}
	client, err := apiclient.New(env.APIBaseURL, apiclient.NewSession(opts.Token),
		apiclient.WithTimeout(env.APITimeout),
		apiclient.WithRequestIDHeader(env.RequestIDHeader),
	)
	if err != nil {
		return err
	}

	q := listing.ParseQuery(queryValues(opts), res.Spec().Query)
	page, err := res.List(ctx, client, q)
	if err != nil {
		return err
	}

	if opts.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(page)
	}
	return printTable(out, page, q.PerPage)
}

func queryValues(opts listOptions) url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	if opts.Page > 0 {
		set("page", strconv.Itoa(opts.Page))
	}
	if opts.Limit > 0 {
		set("limit", strconv.Itoa(opts.Limit))
	}
	set("search", opts.Search)
	set("sort_by", opts.SortBy)
	set("sort_order", opts.Order)
	for k, val := range opts.Filters {
		set(k, val)
	}
	return v
}

func printTable(out io.Writer, page resources.Page, perPage int) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(page.Table.Headers...).
		Rows(page.Table.Rows...)
	if _, err := fmt.Fprintln(out, t.Render()); err != nil {
		return err
	}
	w := listing.WindowFromMeta(page.Meta, perPage)
	_, err := fmt.Fprintf(out, "%s  (page %d of %d)\n", w.Label, w.Page, max(w.LastPage, 1))
	return err
}

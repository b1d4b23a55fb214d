package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/ziadkadry99/transitdir/internal/catalog"
	"github.com/ziadkadry99/transitdir/internal/detail"
	"github.com/ziadkadry99/transitdir/internal/directory"
	"github.com/ziadkadry99/transitdir/internal/query"
	"github.com/ziadkadry99/transitdir/internal/site"
)

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Search and filter the route directory",
	Long:  `Lists routes the way the directory page does: search, then category filter, then pagination.`,
	Args:  cobra.NoArgs,
	RunE:  runRoutes,
}

var routeShowCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show the details of one route",
	Args:  cobra.ExactArgs(1),
	RunE:  runRouteShow,
}

func init() {
	routesCmd.Flags().StringP("search", "s", "", "search route numbers, details and stops")
	routesCmd.Flags().StringP("category", "c", "", "filter by category: "+categoryList())
	routesCmd.Flags().Int("page", 1, "page to show")
	routesCmd.Flags().Int("page-size", 0, "routes per page (default site.page_size)")
	routesCmd.Flags().Bool("json", false, "output results as JSON")
	routesCmd.AddCommand(routeShowCmd)
	rootCmd.AddCommand(routesCmd)
}

func categoryList() string {
	var names []string
	for _, c := range catalog.Categories() {
		names = append(names, string(c))
	}
	return strings.Join(names, ", ")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	search, _ := cmd.Flags().GetString("search")
	category, _ := cmd.Flags().GetString("category")
	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if category != "" && !catalog.Category(category).Known() {
		return fmt.Errorf("unknown category %q: must be one of %s", category, categoryList())
	}
	if pageSize < 1 {
		pageSize = cfg.Site.PageSize
	}

	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	ctrl := directory.New(cat, pageSize, nil)
	ctrl.Restore(directory.State{Search: search, Category: catalog.Category(category), Page: page})
	view := ctrl.View()

	if jsonOutput {
		return printRoutesJSON(os.Stdout, view)
	}
	printRoutes(os.Stdout, view, detail.NewPrinter(cfg.Site.Locale), cfg.Site.Currency)
	return nil
}

func printRoutesJSON(w io.Writer, view query.Result) error {
	out := site.PageJSON{
		Items:        make([]site.RouteJSON, 0, len(view.Items)),
		Page:         view.Page,
		TotalPages:   view.TotalPages,
		TotalMatches: view.TotalMatches,
		PageSize:     view.PageSize,
	}
	for _, r := range view.Items {
		out.Items = append(out.Items, site.ToRouteJSON(r))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func printRoutes(w io.Writer, view query.Result, printer *message.Printer, currency string) {
	if view.Empty() {
		fmt.Fprintln(w, "No routes found.")
		return
	}

	t := newTable("ID", "CATEGORY", "NUMBER", "STOPS", "FARE")
	for _, r := range view.Items {
		t.Row(
			strconv.Itoa(r.ID),
			categoryLabel(r.Category),
			r.Number,
			strconv.Itoa(r.StopCount()),
			detail.FormatFare(printer, currency, r.Fare),
		)
	}
	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Page %d of %d (%d routes)", view.Page, view.TotalPages, view.TotalMatches)))
	if view.HasNext() {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("Next page: --page %d", view.Page+1)))
	}
}

func runRouteShow(cmd *cobra.Command, args []string) error {
	id, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid route id %q", args[0])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	view := detail.NewView()
	if _, err := directory.New(cat, cfg.Site.PageSize, view).Activate(id, ""); err != nil {
		return fmt.Errorf("route %d: %w", id, err)
	}
	printRoute(os.Stdout, view.Current().Route, detail.NewPrinter(cfg.Site.Locale), cfg.Site.Currency)
	return nil
}

func printRoute(w io.Writer, r catalog.Route, printer *message.Printer, currency string) {
	fmt.Fprintf(w, "%s  %s\n", titleStyle.Render(r.Number), categoryLabel(r.Category))
	if summary := r.Summary(); summary != "" {
		fmt.Fprintln(w, summary)
	}
	fmt.Fprintf(w, "Fare: %s\n\n", detail.FormatFare(printer, currency, r.Fare))
	fmt.Fprintf(w, "%d stops\n", r.StopCount())
	for i, stop := range r.Stops {
		fmt.Fprintf(w, "  %2d. %s\n", i+1, stop)
	}
}

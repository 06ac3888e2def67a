package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aryannaik/sustainify/internal/catalog"
	"github.com/aryannaik/sustainify/internal/export"
	"github.com/aryannaik/sustainify/internal/query"
	"github.com/aryannaik/sustainify/internal/session"
)

// viewFlags are the query controls shared by list and export.
type viewFlags struct {
	query         string
	category      string
	sort          string
	onlyBookmarks bool
	page          int
}

func (v *viewFlags) register(cmd *cobra.Command, withPage bool) {
	f := cmd.Flags()
	f.StringVarP(&v.query, "query", "q", "", "Case-insensitive text to search for")
	f.StringVarP(&v.category, "category", "c", query.AllCategories, "Category to show")
	f.StringVarP(&v.sort, "sort", "s", string(query.ScoreDesc), "Sort order: score-desc, score-asc, name-asc or name-desc")
	f.BoolVarP(&v.onlyBookmarks, "bookmarks", "b", false, "Only show bookmarked products")
	if withPage {
		f.IntVarP(&v.page, "page", "p", 1, "Page to show")
	}
}

// apply runs the flags through the same transitions the web front end uses.
func (v *viewFlags) apply(ctrl *session.Controller) (session.Snapshot, error) {
	order, err := query.ParseSortOrder(v.sort)
	if err != nil {
		return session.Snapshot{}, err
	}
	ctrl.SetQuery(v.query)
	ctrl.SetCategory(v.category)
	snap := ctrl.SetSort(order)
	if v.onlyBookmarks {
		snap = ctrl.ToggleBookmarkOnly()
	}
	if v.page > 1 {
		snap = ctrl.SetPage(v.page)
	}
	return snap, nil
}

// withSession opens the store, loads the catalog and hands the controller to fn.
func withSession(cmd *cobra.Command, fn func(ctrl *session.Controller) error) error {
	ctrl, st, err := openSession()
	if err != nil {
		return err
	}
	defer st.Close()
	loadCatalog(cmd.Context(), ctrl)
	return fn(ctrl)
}

var (
	listView viewFlags
	listJSON bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of products",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			snap, err := listView.apply(ctrl)
			if err != nil {
				return err
			}
			if listJSON {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			renderPage(cmd.OutOrStdout(), snap, ctrl.IsBookmarked)
			return nil
		})
	},
}

var showJSON bool

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show the details of a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			p, err := ctrl.Get(args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if showJSON {
				return writeJSON(cmd.OutOrStdout(), p)
			}
			renderProduct(cmd.OutOrStdout(), p, ctrl.IsBookmarked(p.ID))
			return nil
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories to filter by",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, query.AllCategories)
			for _, c := range ctrl.Categories() {
				fmt.Fprintln(out, c)
			}
			return nil
		})
	},
}

var addInput struct {
	name, category, replaces, description, image string
	tags, materials, certifications              []string
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product of your own",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			p, _ := ctrl.AddContribution(catalog.Fields{
				Name:           addInput.name,
				Category:       addInput.category,
				Replaces:       addInput.replaces,
				Description:    addInput.description,
				Tags:           addInput.tags,
				Materials:      addInput.materials,
				Certifications: addInput.certifications,
				Image:          addInput.image,
			})
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s), score %d\n", p.Name, p.ID, p.Score)
			return nil
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a product you added",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			if _, err := ctrl.DeleteContribution(args[0]); err != nil {
				if errors.Is(err, session.ErrNotContribution) {
					return fmt.Errorf("%s is not one of your products", args[0])
				}
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		})
	},
}

var bookmarkCmd = &cobra.Command{
	Use:   "bookmark <id>",
	Short: "Bookmark a product, or remove its bookmark",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			out := cmd.OutOrStdout()
			on, _ := ctrl.ToggleBookmark(args[0])
			if on {
				fmt.Fprintf(out, "Bookmarked %s\n", args[0])
			} else {
				fmt.Fprintf(out, "Removed bookmark %s\n", args[0])
			}
			// Bookmarks outlive their products, so unknown ids are only noted.
			if _, err := ctrl.Get(args[0]); err != nil {
				fmt.Fprintf(out, "Note: %s is not in the catalog or your products\n", args[0])
			}
			return nil
		})
	},
}

var bookmarksCmd = &cobra.Command{
	Use:   "bookmarks",
	Short: "List every bookmarked product",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			ctrl.ToggleBookmarkOnly()
			renderList(cmd.OutOrStdout(), ctrl.Matches(), ctrl.IsBookmarked)
			return nil
		})
	},
}

var (
	exportView viewFlags
	exportOut  string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export every product matching the filters to an XLSX workbook",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withSession(cmd, func(ctrl *session.Controller) error {
			if _, err := exportView.apply(ctrl); err != nil {
				return err
			}
			items := ctrl.Matches()

			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			if err := export.WriteXLSX(f, items); err != nil {
				f.Close()
				return fmt.Errorf("write %s: %w", exportOut, err)
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d products to %s\n", len(items), exportOut)
			return nil
		})
	},
}

func init() {
	listView.register(listCmd, true)
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Print the page as JSON")

	showCmd.Flags().BoolVar(&showJSON, "json", false, "Print the product as JSON")

	f := addCmd.Flags()
	f.StringVar(&addInput.name, "name", "", "Product name")
	f.StringVar(&addInput.category, "category", "", "Category")
	f.StringVar(&addInput.replaces, "replaces", "", "What the product replaces")
	f.StringVar(&addInput.description, "description", "", "Short description")
	f.StringVar(&addInput.image, "image", "", "Image URL")
	f.StringSliceVar(&addInput.tags, "tags", nil, "Comma-separated tags")
	f.StringSliceVar(&addInput.materials, "materials", nil, "Comma-separated materials")
	f.StringSliceVar(&addInput.certifications, "certifications", nil, "Comma-separated certifications")
	_ = addCmd.MarkFlagRequired("name")

	exportView.register(exportCmd, false)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "products.xlsx", "Workbook to write")
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

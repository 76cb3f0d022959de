package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/TuckerBrewer12/ScanScorecards/internal/model"
	"github.com/TuckerBrewer12/ScanScorecards/internal/store"
)

var coursesCmd = &cobra.Command{
	Use:   "courses",
	Short: "Inspect the course database",
	Long:  "Commands for listing and viewing golf courses, both shared master records and user-scanned ones.",
}

// -- courses list --

var coursesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List courses",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		search, _ := cmd.Flags().GetString("search")
		user, _ := cmd.Flags().GetString("user")
		masters, _ := cmd.Flags().GetBool("masters")
		limit, _ := cmd.Flags().GetInt("limit")

		courses, err := st.ListCourses(ctx, store.CourseFilter{
			UserID:      user,
			MastersOnly: masters,
			Search:      search,
			Limit:       limit,
		})
		if err != nil {
			return eris.Wrap(err, "courses list")
		}

		if len(courses) == 0 {
			fmt.Fprintln(os.Stderr, "No courses found.")
			return nil
		}

		formatCoursesList(os.Stdout, courses)
		return nil
	},
}

// -- courses find --

var coursesFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Find a course by name",
	Long:  "Runs the tiered name lookup (exact, substring, then fuzzy) against the shared master courses, the way a scan resolves the course it reads off a card.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		location, _ := cmd.Flags().GetString("location")

		course, err := st.FindCourseByName(ctx, args[0], location)
		if err != nil {
			return eris.Wrap(err, "courses find")
		}
		if course == nil {
			fmt.Fprintln(os.Stderr, "No matching course found.")
			return nil
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(course)
	},
}

// -- courses show --

var coursesShowCmd = &cobra.Command{
	Use:   "show <course-id>",
	Short: "Show full details of a course",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		course, err := st.GetCourse(ctx, args[0])
		if err != nil {
			return eris.Wrap(err, "courses show")
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(course)
	},
}

func init() {
	coursesListCmd.Flags().String("search", "", "filter by name or location substring")
	coursesListCmd.Flags().String("user", "", "include this user's own courses alongside masters")
	coursesListCmd.Flags().Bool("masters", false, "only shared master courses")
	coursesListCmd.Flags().Int("limit", 50, "max number of courses to display")

	coursesFindCmd.Flags().String("location", "", "narrow the lookup by location")

	coursesCmd.AddCommand(coursesListCmd)
	coursesCmd.AddCommand(coursesFindCmd)
	coursesCmd.AddCommand(coursesShowCmd)
	rootCmd.AddCommand(coursesCmd)
}

// formatCoursesList writes a tabular list of courses to w.
func formatCoursesList(out io.Writer, courses []model.Course) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tNAME\tLOCATION\tPAR\tHOLES\tTEES\tOWNER")
	_, _ = fmt.Fprintln(w, "--\t----\t--------\t---\t-----\t----\t-----")

	for _, c := range courses {
		par := "-"
		if c.Par != nil {
			par = fmt.Sprintf("%d", *c.Par)
		}
		owner := "master"
		if c.UserID != "" {
			owner = c.UserID
		}

		name := c.Name
		if len(name) > 30 {
			name = name[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%s\n",
			truncateID(c.ID), name, c.Location, par, len(c.Holes), len(c.Tees), owner)
	}
	_ = w.Flush()
}

// truncateID shortens a UUID to its first segment for table display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Roupies/holbertonschool-web-back-end/internal/application/query"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
)

var idsCmd = &cobra.Command{
	Use:   "ids",
	Short: "Print the IDs of every student, one per line",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := openBackend(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		result, err := query.NewListStudentIDsHandler(b.source).Handle(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range result.IDs {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var gradeFlags struct {
	location string
	students string
	grades   string
}

var gradeCmd = &cobra.Command{
	Use:   "grade",
	Short: "Print the students of a location with their grades as JSON",
	Long: `Filters the roster by --location and attaches each student's grade.

By default the roster and grades come from the configured store. --students
and --grades read JSON files instead; a students file that is not a JSON
array yields an empty result, and an unusable grades file grades every
student "N/A".`,
	Args: cobra.NoArgs,
	RunE: runGrade,
}

func init() {
	gradeCmd.Flags().StringVar(&gradeFlags.location, "location", "", "location to select (required)")
	gradeCmd.Flags().StringVar(&gradeFlags.students, "students", "", "JSON file with the roster to grade")
	gradeCmd.Flags().StringVar(&gradeFlags.grades, "grades", "", "JSON file with studentId/grade entries")
	_ = gradeCmd.MarkFlagRequired("location")
}

func runGrade(cmd *cobra.Command, _ []string) error {
	if gradeFlags.students != "" {
		studentsData, err := os.ReadFile(gradeFlags.students)
		if err != nil {
			return err
		}
		var grades roster.GradeBook
		if gradeFlags.grades != "" {
			gradesData, err := os.ReadFile(gradeFlags.grades)
			if err != nil {
				return err
			}
			grades = roster.DecodeGradeBook(gradesData)
		}
		return writeJSON(cmd.OutOrStdout(), query.GradeRoster(query.GradeRosterQuery{
			Students: roster.DecodeRosterArg(studentsData),
			Location: gradeFlags.location,
			Grades:   grades,
		}).Students)
	}

	b, err := openBackend(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	var grades roster.GradeSource = b.grades
	if gradeFlags.grades != "" {
		data, err := os.ReadFile(gradeFlags.grades)
		if err != nil {
			return err
		}
		grades = staticGrades(roster.DecodeGradeBook(data))
	}

	h := query.NewGetGradedByLocationHandler(b.source, grades)
	result, err := h.Handle(cmd.Context(), query.GetGradedByLocationQuery{Location: gradeFlags.location})
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result.Students)
}

var censusCmd = &cobra.Command{
	Use:   "census",
	Short: "Print the number of students per field",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		b, err := openBackend(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()

		return query.NewCountStudentsHandler(b.source).Report(cmd.Context(), cmd.OutOrStdout())
	},
}

var pageFlags struct {
	page     int
	pageSize int
	index    int
	style    string
}

var pageCmd = &cobra.Command{
	Use:   "page",
	Short: "Print one page of students as JSON",
	Long: `Pages through the roster. --style selects the response shape:

  page    the rows only
  hyper   rows plus next/prev page and total pages
  index   rows starting at --index, stable across deletions`,
	Args: cobra.NoArgs,
	RunE: runPage,
}

func init() {
	pageCmd.Flags().IntVar(&pageFlags.page, "page", 1, "1-based page number")
	pageCmd.Flags().IntVar(&pageFlags.pageSize, "page-size", 0, "rows per page (default ROSTER_PAGE_SIZE)")
	pageCmd.Flags().IntVar(&pageFlags.index, "index", 0, "start index for --style=index")
	pageCmd.Flags().StringVar(&pageFlags.style, "style", "page", "page, hyper or index")
}

func runPage(cmd *cobra.Command, _ []string) error {
	b, err := openBackend(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	h := query.NewPageStudentsHandler(b.source, cfg.Roster.DefaultPageSize)
	q := query.PageStudentsQuery{Page: pageFlags.page, PageSize: pageFlags.pageSize}

	var result any
	switch pageFlags.style {
	case "page":
		result, err = h.Page(cmd.Context(), q)
	case "hyper":
		result, err = h.Hyper(cmd.Context(), q)
	case "index":
		result, err = h.HyperIndex(cmd.Context(), query.IndexStudentsQuery{Index: pageFlags.index, PageSize: pageFlags.pageSize})
	default:
		return fmt.Errorf("unknown --style %q (want page, hyper or index)", pageFlags.style)
	}
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), result)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// staticGrades serves a grade book read from a file.
type staticGrades roster.GradeBook

func (g staticGrades) Grades(context.Context) (roster.GradeBook, error) {
	return roster.GradeBook(g), nil
}

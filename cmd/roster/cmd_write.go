package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/Roupies/holbertonschool-web-back-end/internal/application/command"
	"github.com/Roupies/holbertonschool-web-back-end/internal/domain/roster"
	"github.com/Roupies/holbertonschool-web-back-end/internal/infrastructure/persistence/csvfile"
	"github.com/Roupies/holbertonschool-web-back-end/internal/interface/http/handlers"
)

var normalizeFlags struct {
	name string
	file string
}

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Double the numeric entries of a tag map",
	Long: `Reads a JSON object from --file (or stdin), doubles every numeric value and
prints the result. Anything other than a JSON object fails with
"Cannot process".

With --name the tag map stored under that name is normalized in place.`,
	Args: cobra.NoArgs,
	RunE: runNormalize,
}

func init() {
	normalizeCmd.Flags().StringVar(&normalizeFlags.name, "name", "", "stored tag map to normalize in place")
	normalizeCmd.Flags().StringVarP(&normalizeFlags.file, "file", "f", "", "JSON file to normalize (default stdin)")
}

func runNormalize(cmd *cobra.Command, _ []string) error {
	if normalizeFlags.name != "" {
		b, err := openBackend(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer b.Close()
		if b.tags == nil {
			return errReadOnly
		}

		tags, err := command.NewNormalizeTagsHandler(b.tags, log).Handle(cmd.Context(),
			command.NormalizeStoredTagsCommand{Name: normalizeFlags.name})
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), tags)
	}

	var in io.Reader = cmd.InOrStdin()
	if normalizeFlags.file != "" {
		f, err := os.Open(normalizeFlags.file)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return err
	}

	tags, err := command.NewNormalizeTagsHandler(nil, log).NormalizeInline(roster.DecodeTagArg(data))
	if err != nil {
		if errors.Is(err, roster.ErrTypeProcessing) {
			return errors.New(roster.ErrTypeProcessing.Message)
		}
		return err
	}
	return writeJSON(cmd.OutOrStdout(), tags)
}

var importCmd = &cobra.Command{
	Use:   "import <students.csv> [grades.csv]",
	Short: "Load students (and grades) from CSV into the database",
	Long: `Upserts every row of a students CSV into the configured Postgres or SQLite
store. Rows keep their file order; existing IDs are updated in place. An
optional grades CSV (studentId,grade) is appended afterwards.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	b, err := openBackend(cmd.Context(), cfg, log)
	if err != nil {
		return err
	}
	defer b.Close()

	repo, err := b.writable()
	if err != nil {
		return err
	}

	students, err := readCSV(args[0], csvfile.ReadStudents)
	if err != nil {
		return err
	}

	h := command.NewRosterWriteHandler(repo, b.cache, log)
	result, err := h.ImportRoster(cmd.Context(), command.ImportRosterCommand{Students: students})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d students\n", result.Imported)

	if len(args) < 2 {
		return nil
	}

	grades, err := readCSV(args[1], csvfile.ReadGrades)
	if err != nil {
		return err
	}
	for _, g := range grades {
		if err := h.RecordGrade(cmd.Context(), command.RecordGradeCommand{StudentID: g.StudentID, Grade: g.Grade}); err != nil {
			return err
		}
	}
	fmt.Fprintf(cmd.OutOrStdout(), "recorded %d grades\n", len(grades))
	return nil
}

func readCSV[T any](path string, parse func(io.Reader) (T, error)) (T, error) {
	var zero T
	f, err := os.Open(path)
	if err != nil {
		return zero, err
	}
	defer f.Close()

	v, err := parse(f)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", path, err)
	}
	return v, nil
}

var hashKeyCmd = &cobra.Command{
	Use:   "hash-key <key>",
	Short: "Print the bcrypt hash of an API key for API_KEY_HASHES",
	Args:  cobra.ExactArgs(1),
	// No config is needed to hash a key.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := handlers.HashKey(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pavelanni/autograder/internal/document"
	"github.com/pavelanni/autograder/internal/grader"
	appI18n "github.com/pavelanni/autograder/internal/i18n"
	"github.com/pavelanni/autograder/internal/model"
)

func addInputFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("questions", "", "Questions file path (required)")
	f.String("references", "", "Reference answers file path (required)")
	f.String("students", "", "Student answers file path (required)")
	f.StringP("output", "o", "-", "Output file path (- for stdout)")
	f.StringP("lang", "l", "en", "Language for the summary line (en, ru)")
	addAnswerLimitFlag(cmd)
	addLogFlags(cmd)

	_ = cmd.MarkFlagRequired("questions")
	_ = cmd.MarkFlagRequired("references")
	_ = cmd.MarkFlagRequired("students")
}

func gradeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade",
		Short: "Grade a multi-question submission and print the report as JSON",
		RunE:  runGrade,
	}
	addInputFlags(cmd)
	cmd.Flags().String("split", document.SplitBlank, "How files are split into answers (blank, numbered)")
	return cmd
}

func gradeDocumentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "grade-document",
		Short: "Grade a student document as a single answer and print the result as JSON",
		RunE:  runGradeDocument,
	}
	addInputFlags(cmd)
	return cmd
}

func runGrade(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	split, err := document.SplitterFor(v.GetString("split"))
	if err != nil {
		return err
	}

	files, err := readInputs(v.GetString("questions"), v.GetString("references"), v.GetString("students"))
	if err != nil {
		return err
	}
	sub, err := document.Parse(split, files[0], files[1], files[2])
	if err != nil {
		return fmt.Errorf("parse inputs: %w", err)
	}

	res, err := newGrader(v).Batch(context.Background(), sub.Questions, sub.References, sub.Students)
	if err != nil {
		return err
	}

	if err := writeOutput(v.GetString("output"), model.NewGradeReport(res, sub.Questions, sub.References, sub.Students)); err != nil {
		return err
	}

	tr, err := appI18n.New(v.GetString("lang"))
	if err != nil {
		return err
	}
	ctx := context.Background()
	fmt.Fprintln(cmd.ErrOrStderr(), tr.Tp(ctx, "QuestionsGraded", res.TotalQuestions),
		tr.Td(ctx, "FinalGrade", map[string]any{"Score": fmt.Sprintf("%.2f", res.FinalScore), "Grade": res.Grade}))
	return nil
}

func runGradeDocument(cmd *cobra.Command, _ []string) error {
	setupLogging(cmd)
	v := viperForCmd(cmd)

	var res model.DocumentResult
	texts, err := readDocuments(v.GetString("questions"), v.GetString("references"), v.GetString("students"))
	if err != nil {
		slog.Error("cannot read documents", "error", err)
		res = model.ErrorDocumentResult(err.Error())
	} else {
		res, err = newGrader(v).Document(context.Background(), texts[0], texts[1], texts[2])
		if err != nil {
			slog.Error("cannot grade document", "error", err)
		}
	}

	return writeOutput(v.GetString("output"), res)
}

func newGrader(v *viper.Viper) *grader.Grader {
	return grader.New(slog.Default(), nil, grader.WithMaxAnswerChars(v.GetInt("max-answer-chars")))
}

func readInputs(paths ...string) ([][]byte, error) {
	files := make([][]byte, 0, len(paths))
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", p, err)
		}
		files = append(files, data)
	}
	return files, nil
}

func readDocuments(paths ...string) ([]string, error) {
	files, err := readInputs(paths...)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(files))
	for i, data := range files {
		text, err := document.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", paths[i], err)
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func writeOutput(outPath string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal JSON: %w", err)
	}

	var w io.Writer
	if outPath == "" || outPath == "-" {
		w = os.Stdout
	} else {
		f, err := os.Create(outPath)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	_, err = w.Write(data)
	if err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	// Ensure trailing newline.
	_, _ = fmt.Fprintln(w)

	return nil
}

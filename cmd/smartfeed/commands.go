package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"smart-feeding/internal/domain/history"
	"smart-feeding/internal/domain/nutrition"
)

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "smartfeed",
		Short:         "Recomendaciones de alimentación e historial de mascotas",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(recommendCmd(), aggregateCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smartfeed version %s\n", version)
		},
	})
	return cmd
}

func recommendCmd() *cobra.Command {
	var (
		file     string
		species  string
		weightKg float64
	)

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Genera la recomendación a partir de un cuestionario en YAML",
		Example: `  smartfeed recommend -f answers.yaml --species cat --weight 4.2
  cat answers.yaml | smartfeed recommend -f -`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var a nutrition.Answers
			if err := decodeYAML(cmd, file, &a); err != nil {
				return err
			}
			a = a.Normalize()
			if err := a.Validate(); err != nil {
				return err
			}
			if species != "" && !nutrition.KnownSpecies(species) {
				return fmt.Errorf("unknown species %q", species)
			}
			if weightKg < 0 {
				return fmt.Errorf("weight must be >= 0")
			}

			rec := nutrition.Generate(a, nutrition.Profile{
				Species:  nutrition.ParseSpecies(species),
				WeightKg: weightKg,
			})
			return writeJSON(cmd.OutOrStdout(), rec)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Archivo YAML con las respuestas (- = stdin)")
	cmd.Flags().StringVar(&species, "species", "", "Especie: dog|cat (perro|gato)")
	cmd.Flags().Float64Var(&weightKg, "weight", 0, "Peso en kg (0 = desconocido)")
	return cmd
}

// entryInput es una línea del historial en YAML; las cantidades aceptan coma decimal.
type entryInput struct {
	Kind        history.Kind `yaml:"kind"`
	Date        string       `yaml:"date"`
	Weight      string       `yaml:"weight"`
	ExpenseType string       `yaml:"expense_type"`
	Amount      string       `yaml:"amount"`
	Grams       string       `yaml:"grams"`
	FoodType    string       `yaml:"food_type"`
}

type aggregateOutput struct {
	history.Report
	LastUpdate string `json:"last_update,omitempty"`
}

func aggregateCmd() *cobra.Command {
	var (
		file   string
		period string
	)

	cmd := &cobra.Command{
		Use:     "aggregate",
		Short:   "Agrupa un historial en YAML por día, semana o mes",
		Example: `  smartfeed aggregate -f history.yaml --period weekly`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !history.KnownPeriod(period) {
				return fmt.Errorf("unknown period %q", period)
			}

			var in []entryInput
			if err := decodeYAML(cmd, file, &in); err != nil {
				return err
			}

			entries := make([]history.Entry, 0, len(in))
			for i, e := range in {
				entry, err := e.toEntry()
				if err != nil {
					return fmt.Errorf("entry %d: %w", i, err)
				}
				entries = append(entries, entry)
			}

			out := aggregateOutput{Report: history.Aggregate(entries, history.ParsePeriod(period))}
			if last, ok := history.LastDate(entries, history.KindWeight); ok {
				out.LastUpdate = last
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "Archivo YAML con las entradas (- = stdin)")
	cmd.Flags().StringVar(&period, "period", string(history.Monthly), "daily|weekly|monthly")
	return cmd
}

func (e entryInput) toEntry() (history.Entry, error) {
	out := history.Entry{Kind: e.Kind, Date: e.Date, ExpenseType: e.ExpenseType, FoodType: e.FoodType}

	var (
		raw string
		dst *float64
	)
	switch e.Kind {
	case history.KindWeight:
		raw, dst = e.Weight, &out.Weight
	case history.KindExpense:
		raw, dst = e.Amount, &out.Amount
	case history.KindFeeding:
		raw, dst = e.Grams, &out.Grams
	default:
		return history.Entry{}, fmt.Errorf("unknown kind %q", e.Kind)
	}

	v, err := history.ParseQuantity(raw)
	if err != nil {
		return history.Entry{}, err
	}
	*dst = v
	return out, nil
}

func decodeYAML(cmd *cobra.Command, file string, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if file != "" && file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}

	if err := yaml.NewDecoder(r).Decode(v); err != nil && err != io.EOF {
		return fmt.Errorf("decode yaml: %w", err)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

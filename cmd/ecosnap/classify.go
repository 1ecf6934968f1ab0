package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Akshith040/EcoScan1/internal/photostore"
	"github.com/Akshith040/EcoScan1/internal/waste"
)

type classifyOutput struct {
	WasteType             string   `json:"wasteType"`
	Confidence            float64  `json:"confidence"`
	Details               string   `json:"details"`
	UserDescription       string   `json:"userDescription,omitempty"`
	RecyclingInstructions string   `json:"recyclingInstructions"`
	Steps                 []string `json:"steps"`
}

func newClassifyCommand(ctx *commandContext) *cobra.Command {
	var (
		describe string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "classify <image>",
		Short: "Classify one photo and print recycling instructions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := ctx.ensure()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			mimeType, ok := photostore.DetectImageMIME(data)
			if !ok {
				return errNotImage
			}

			p, err := newPipeline(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer p.release()

			c, err := p.classifier.Classify(cmd.Context(), bytes.NewReader(data), mimeType)
			if err != nil {
				return err
			}
			describe = strings.TrimSpace(describe)
			ins, err := p.generator.Generate(cmd.Context(), c.WasteType, waste.ComposeDetails(c.Details, describe))
			if err != nil {
				return err
			}

			out := classifyOutput{
				WasteType:             c.WasteType,
				Confidence:            c.Confidence,
				Details:               c.Details,
				UserDescription:       describe,
				RecyclingInstructions: ins.RecyclingInstructions,
				Steps:                 waste.FormatSteps(ins.RecyclingInstructions),
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Waste type: %s\n", out.WasteType)
			fmt.Fprintf(w, "Confidence: %.2f%%\n", out.Confidence*100)
			if out.Details != "" {
				fmt.Fprintf(w, "Details:    %s\n", out.Details)
			}
			fmt.Fprintln(w, "Recycling instructions:")
			printSteps(cmd, waste.NumberSteps(out.Steps))
			return nil
		},
	}

	cmd.Flags().StringVar(&describe, "describe", "", "Your own description of the item, used to refine the instructions")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the result as JSON")
	return cmd
}

var errNotImage = errors.New("file is not a supported image (jpeg, png, gif, webp)")

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/octobees/catering-leads/internal/app"
	"github.com/octobees/catering-leads/internal/dto"
	"github.com/octobees/catering-leads/internal/entity"
	"github.com/octobees/catering-leads/internal/export"
	"github.com/octobees/catering-leads/internal/service"
	"github.com/octobees/catering-leads/internal/service/scoring"
)

var (
	discoverAddress     string
	discoverRadius      float64
	discoverCategory    string
	discoverTerms       []string
	discoverEnrich      bool
	discoverEnrichLimit int
	discoverOut         string
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Discover leads around an address",
	Long:  "Geocodes the address, searches Google Places for every term of the category, keeps places inside the radius and prints them as JSON or writes an xlsx file.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if cmd.Flags().Changed("enrich-limit") {
			cfg.EnrichLimit = discoverEnrichLimit
		}
		svc := app.NewLeadService(cfg)

		out, err := svc.Generate(ctx, service.GenerateInput{
			DiscoveryRequest: service.DiscoveryRequest{
				SchoolAddress: discoverAddress,
				RadiusMiles:   discoverRadius,
				Category:      service.SearchCategory(discoverCategory),
				CustomTerms:   discoverTerms,
			},
			Enrich: discoverEnrich,
		})
		if err != nil {
			return eris.Wrap(err, "discover leads")
		}

		zap.L().Info("discovery complete",
			zap.String("run_id", out.RunID),
			zap.Int("leads", len(out.Leads)),
			zap.Strings("terms", out.TermsUsed),
			zap.Strings("failed_terms", out.FailedTerms),
			zap.Bool("enriched", out.Enriched),
		)

		return writeLeads(cmd.OutOrStdout(), discoverOut, out.Leads)
	},
}

type leadOutput struct {
	*entity.Lead
	Score scoring.ScoreResult `json:"score"`
}

// writeLeads writes an xlsx workbook when path ends in .xlsx, JSON to path
// otherwise, and JSON to stdout when path is empty.
func writeLeads(stdout io.Writer, path string, leads []*entity.Lead) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		f, err := os.Create(path)
		if err != nil {
			return eris.Wrapf(err, "create %s", path)
		}
		defer f.Close()
		if err := export.WriteXLSX(f, leads); err != nil {
			return err
		}
		if err := f.Close(); err != nil {
			return eris.Wrapf(err, "close %s", path)
		}
		return nil
	}

	if path == "" {
		return encodeLeads(stdout, leads)
	}

	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "create %s", path)
	}
	defer f.Close()
	if err := encodeLeads(f, leads); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return eris.Wrapf(err, "close %s", path)
	}
	return nil
}

func encodeLeads(w io.Writer, leads []*entity.Lead) error {
	scored := make([]leadOutput, 0, len(leads))
	for _, lead := range leads {
		scored = append(scored, leadOutput{Lead: lead, Score: scoring.ScoreLead(lead)})
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(scored); err != nil {
		return eris.Wrap(err, "encode leads")
	}
	return nil
}

func init() {
	discoverCmd.Flags().StringVar(&discoverAddress, "address", "", "school or target address (required)")
	discoverCmd.Flags().Float64Var(&discoverRadius, "radius", dto.DefaultRadiusMiles, "search radius in miles")
	discoverCmd.Flags().StringVar(&discoverCategory, "category", dto.DefaultSearchType, "search category: catering, pizza_diner, meal_prep or custom")
	discoverCmd.Flags().StringSliceVar(&discoverTerms, "term", nil, "custom search term (repeatable, used with --category custom)")
	discoverCmd.Flags().BoolVar(&discoverEnrich, "enrich", false, "scrape websites of the nearest leads for contact details")
	discoverCmd.Flags().IntVar(&discoverEnrichLimit, "enrich-limit", service.DefaultEnrichLimit, "maximum number of leads to enrich")
	discoverCmd.Flags().StringVar(&discoverOut, "out", "", "output file (.xlsx for a workbook, anything else for JSON)")
	_ = discoverCmd.MarkFlagRequired("address")
	rootCmd.AddCommand(discoverCmd)
}

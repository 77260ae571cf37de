package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"portfoliocalc/internal/domain"
	"portfoliocalc/internal/expr"
	"portfoliocalc/internal/logger"
	"portfoliocalc/internal/service"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type cli struct {
	calculationService service.CalculationService
	ioService          service.PortfolioIOService
	logger             *zap.SugaredLogger
	out                io.Writer

	file      string
	capital   string
	scenarios string
	preset    string
	targets   []string
	weights   []string
	strict    bool
}

func (c *cli) context(cmd *cobra.Command) context.Context {
	profile, _ := domain.NewProfile()
	ctx := logger.NewContext(cmd.Context(), c.logger)
	return domain.NewCtxWithProfile(ctx, profile)
}

func (c *cli) print(v any) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (c *cli) portfolio(ctx context.Context) (*domain.PortfolioDocument, service.PortfolioRequest, error) {
	doc, err := loadDocument(ctx, c.ioService, c.file)
	if err != nil {
		return nil, service.PortfolioRequest{}, err
	}
	req, err := portfolioRequest(*doc, c.capital, c.strict)
	if err != nil {
		return nil, service.PortfolioRequest{}, err
	}
	return doc, req, nil
}

func newRootCommand(c *cli) *cobra.Command {
	root := &cobra.Command{
		Use:           "pcalc",
		Short:         "Portfolio what-if calculator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	portfolioFlags := func(cmd *cobra.Command) {
		cmd.Flags().StringVarP(&c.file, "file", "f", "", "portfolio document (JSON)")
		cmd.Flags().StringVar(&c.capital, "capital", "", "override the document's capital")
		cmd.Flags().BoolVar(&c.strict, "strict", false, "fail when invested exceeds capital")
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario",
		Short: "Value the portfolio under uniform price moves",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			doc, req, err := c.portfolio(ctx)
			if err != nil {
				return err
			}
			scenarios, err := resolveScenarios(c.scenarios, c.preset, *doc)
			if err != nil {
				return err
			}
			out, err := c.calculationService.Scenario(ctx, service.ScenarioRequest{
				PortfolioRequest: req,
				Scenarios:        scenarios,
			})
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}
	portfolioFlags(scenarioCmd)
	scenarioCmd.Flags().StringVar(&c.scenarios, "scenarios", "", "comma separated percentage moves, e.g. -10,0,10")
	scenarioCmd.Flags().StringVar(&c.preset, "preset", "", "named scenario preset")

	targetsCmd := &cobra.Command{
		Use:   "targets",
		Short: "Value the portfolio at per-asset target prices",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			_, req, err := c.portfolio(ctx)
			if err != nil {
				return err
			}
			prices, err := parseAssignments(c.targets)
			if err != nil {
				return err
			}
			out, err := c.calculationService.Targets(ctx, service.TargetsRequest{
				PortfolioRequest: req,
				TargetPrices:     prices,
			})
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}
	portfolioFlags(targetsCmd)
	targetsCmd.Flags().StringArrayVar(&c.targets, "target", nil, "target price as TICKER=price, repeatable")

	blendedCmd := &cobra.Command{
		Use:   "blended",
		Short: "Value the portfolio with every asset at its own exit plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			_, req, err := c.portfolio(ctx)
			if err != nil {
				return err
			}
			out, err := c.calculationService.Blended(ctx, service.BlendedRequest{PortfolioRequest: req})
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}
	portfolioFlags(blendedCmd)

	rebalanceCmd := &cobra.Command{
		Use:   "rebalance",
		Short: "Compute whole-share orders toward target weights",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := c.context(cmd)
			doc, req, err := c.portfolio(ctx)
			if err != nil {
				return err
			}
			weights := doc.TargetWeights
			if len(c.weights) > 0 {
				weights, err = parseAssignments(c.weights)
				if err != nil {
					return err
				}
			}
			out, err := c.calculationService.Rebalance(ctx, service.RebalanceRequest{
				PortfolioRequest: req,
				TargetWeights:    weights,
			})
			if err != nil {
				return err
			}
			return c.print(out)
		},
	}
	portfolioFlags(rebalanceCmd)
	rebalanceCmd.Flags().StringArrayVar(&c.weights, "weight", nil, "target weight as TICKER=percent, repeatable")

	evalCmd := &cobra.Command{
		Use:   "eval <expression>",
		Short: "Evaluate an arithmetic expression",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := expr.Evaluate(args[0])
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.out, v.String())
			return err
		},
	}

	importCsvCmd := &cobra.Command{
		Use:   "import-csv <file>",
		Short: "Convert a CSV holdings file into a portfolio document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}
			assets, err := c.ioService.ImportCSV(c.context(cmd), data)
			if err != nil {
				return err
			}
			doc := domain.PortfolioDocument{Assets: assets}.WithDefaults()
			return c.print(doc)
		},
	}

	templateCmd := &cobra.Command{
		Use:   "template",
		Short: "Print a sample holdings CSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := c.ioService.CSVTemplate()
			if err != nil {
				return err
			}
			_, err = io.WriteString(c.out, out)
			return err
		},
	}

	root.AddCommand(scenarioCmd, targetsCmd, blendedCmd, rebalanceCmd, evalCmd, importCsvCmd, templateCmd)
	return root
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	c := &cli{
		calculationService: service.NewCalculationService(false),
		ioService:          service.NewPortfolioIOService(),
		logger:             logger.New(),
		out:                os.Stdout,
	}
	err := newRootCommand(c).ExecuteContext(context.Background())
	_ = c.logger.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

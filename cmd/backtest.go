package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"etf-momentum/internal/dto"
	"etf-momentum/internal/repository"
	"etf-momentum/internal/service"
	"etf-momentum/pkg/utils"
)

var (
	backtestStart   string
	backtestEnd     string
	backtestSymbols []string
	oosSplit        string
)

var backtestCmd = &cobra.Command{
	Use:   "backtest",
	Short: "Run a one-shot in-sample backtest and print the result as JSON",
	Run:   runBacktestCmd,
}

var oosCmd = &cobra.Command{
	Use:   "oos",
	Short: "Run the full out-of-sample analysis pipeline and print the result as JSON",
	Run:   runOOSCmd,
}

func init() {
	for _, c := range []*cobra.Command{backtestCmd, oosCmd} {
		c.Flags().StringVar(&backtestStart, "start", "", "period start (YYYY-MM-DD)")
		c.Flags().StringVar(&backtestEnd, "end", "", "period end (YYYY-MM-DD)")
		c.Flags().StringSliceVar(&backtestSymbols, "symbols", nil, "ETF symbols (defaults to configured universe)")
	}
	oosCmd.Flags().StringVar(&oosSplit, "split", "", "in-sample/out-of-sample cut date (YYYY-MM-DD, recommended from data when omitted)")
}

func newServices(ctx context.Context) (*service.Service, *AppDependency, error) {
	appDep, err := NewAppDependency(ctx)
	if err != nil {
		return nil, nil, err
	}
	repo := repository.NewRepository(appDep.cfg, appDep.db.DB, appDep.cache, appDep.log)
	return service.NewService(appDep.cfg, appDep.log, repo), appDep, nil
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("Failed to render result: %v", err)
	}
	fmt.Println(string(out))
}

func runBacktestCmd(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start, err := utils.ParseDate(backtestStart)
	if err != nil {
		log.Fatalf("Invalid --start: %v", err)
	}
	end, err := utils.ParseDate(backtestEnd)
	if err != nil {
		log.Fatalf("Invalid --end: %v", err)
	}

	services, appDep, err := newServices(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer appDep.Close()

	result, err := services.BacktestService.RunBacktest(ctx, dto.BacktestRequest{
		Symbols:   backtestSymbols,
		StartDate: start,
		EndDate:   end,
	})
	if err != nil {
		log.Fatalf("Backtest failed: %v", err)
	}

	printJSON(result)
}

func runOOSCmd(cmd *cobra.Command, args []string) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start, err := utils.ParseDate(backtestStart)
	if err != nil {
		log.Fatalf("Invalid --start: %v", err)
	}
	end, err := utils.ParseDate(backtestEnd)
	if err != nil {
		log.Fatalf("Invalid --end: %v", err)
	}

	req := dto.OOSAnalysisRequest{
		Symbols:   backtestSymbols,
		StartDate: start,
		EndDate:   end,
	}
	if oosSplit != "" {
		split, err := utils.ParseDate(oosSplit)
		if err != nil {
			log.Fatalf("Invalid --split: %v", err)
		}
		req.SplitDate = split
	}

	services, appDep, err := newServices(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer appDep.Close()

	result, err := services.OOSBacktestService.RunOOSAnalysis(ctx, req)
	if err != nil {
		log.Fatalf("Out-of-sample analysis failed: %v", err)
	}

	printJSON(result)
}

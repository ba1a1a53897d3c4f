package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/camuig/stock-quest/internal/ai"
	"github.com/camuig/stock-quest/internal/game"
	"github.com/camuig/stock-quest/internal/importer"
	"github.com/camuig/stock-quest/internal/portfolio"
	"github.com/camuig/stock-quest/internal/scheduler"
	"github.com/camuig/stock-quest/internal/tracker"
	"github.com/camuig/stock-quest/internal/web"
)

// withApp opens the app for one command and always closes it afterwards.
func withApp(run func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.close()
		return run(ctx, a, cmd, args)
	}
}

var (
	addBuyPrice   float64
	listSort      string
	importFormat  string
	importMapping string
	tradeLoss     bool
)

var addCmd = &cobra.Command{
	Use:   "add SYMBOL QUANTITY",
	Short: "Add a holding at the current market price",
	Example: `  quest add TCS.NS 10
  quest add INFY.NS 15 --buy-price 1450`,
	Args: cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		qty, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid quantity %q", args[1])
		}

		h, unlocked, err := a.tracker.AddStock(ctx, args[0], qty, addBuyPrice)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Added %s (%s): %d @ %.2f, now %.2f\n", h.Name, h.Symbol, h.Quantity, h.BuyPrice, h.CurrentPrice)
		if p := h.Profit(); p != 0 {
			fmt.Fprintf(out, "P/L: %.2f (%.2f%%)\n", p, h.ProfitPercentage())
		}
		printUnlocked(out, unlocked)
		return nil
	}),
}

var removeCmd = &cobra.Command{
	Use:   "remove SYMBOL",
	Short: "Remove every holding with SYMBOL",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		removed, err := a.tracker.Remove(args[0])
		if err != nil {
			return err
		}
		if !removed {
			return fmt.Errorf("no holding with symbol %s", args[0])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", strings.ToUpper(args[0]))
		return nil
	}),
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List holdings",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if listSort != "" {
			if err := a.tracker.Sort(tracker.SortKey(listSort)); err != nil {
				return err
			}
		}
		printHoldings(cmd.OutOrStdout(), a.tracker.Holdings())
		return nil
	}),
}

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Fetch current prices for every holding",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		res, err := a.tracker.Refresh(ctx)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Updated %d holdings\n", res.Updated)
		if len(res.Failed) > 0 {
			fmt.Fprintf(out, "No price for: %s\n", strings.Join(res.Failed, ", "))
		}
		printUnlocked(out, res.Unlocked)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import holdings from a broker CSV export",
	Long: `Import holdings from a CSV file. Formats:
  zerodha  Instrument, Qty., Avg. cost, LTP, ...
  groww    Stock Name, Quantity, Average Price, Current Price
  generic  any layout; pass --mapping symbol,name,qty,buy,current
           as 0-based column indexes (name may be -1)`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		m := importer.TemplateMapping
		if importMapping != "" {
			var err error
			if m, err = parseMapping(importMapping); err != nil {
				return err
			}
		}

		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		res, err := a.tracker.Import(importer.Format(importFormat), f, m)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if res.Added == 0 {
			fmt.Fprintln(out, "No stocks found in CSV file")
		} else {
			fmt.Fprintf(out, "Imported %d stocks, +%d XP\n", res.Added, res.Added*game.XPPerHolding)
		}
		for _, s := range res.Skipped {
			fmt.Fprintf(out, "skipped %v\n", s)
		}
		printUnlocked(out, res.Unlocked)
		return nil
	}),
}

var exportCmd = &cobra.Command{
	Use:   "export FILE",
	Short: "Export holdings to CSV",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		if err := a.tracker.Export(f); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Exported to %s\n", args[0])
		return nil
	}),
}

var templateCmd = &cobra.Command{
	Use:   "template FILE",
	Short: "Write a sample CSV for the generic import format",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		return importer.WriteTemplate(f)
	},
}

var saveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save the portfolio",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if err := a.tracker.Save(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Portfolio saved, +%d XP\n", game.XPSave)
		return nil
	}),
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show level, health and achievements",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		printStatus(cmd.OutOrStdout(), a.tracker.Status())
		return nil
	}),
}

var tradeCmd = &cobra.Command{
	Use:   "trade",
	Short: "Record a closed trade as a win (default) or a loss",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.tracker.RecordTrade(!tradeLoss)
	}),
}

var renameCmd = &cobra.Command{
	Use:   "rename NAME",
	Short: "Rename the portfolio",
	Args:  cobra.MinimumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		return a.tracker.Rename(strings.Join(args, " "))
	}),
}

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Ask the configured model for HOLD/ADD/TRIM suggestions",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		if a.cfg.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is not configured")
		}

		st := a.tracker.Status()
		insights, _, err := ai.NewReviewer(a.cfg, a.log).Review(ctx, &ai.ReviewRequest{
			PortfolioName: st.Name,
			Holdings:      a.tracker.Holdings(),
			HealthScore:   st.HealthScore,
		})
		if err != nil {
			return err
		}

		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "SYMBOL\tACTION\tCONFIDENCE\tREASONING")
		for _, in := range insights {
			fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", in.Symbol, in.Action, in.Confidence, in.Reasoning)
		}
		return tw.Flush()
	}),
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Add the share positions held on the Tinkoff account",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		bc, err := a.openBroker(ctx)
		if err != nil {
			return err
		}

		positions, err := bc.Positions()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		added := 0
		for _, p := range positions {
			h, err := portfolio.NewHolding(p.Name, p.Ticker, p.Quantity, p.AvgPrice, p.CurrentPrice)
			if err != nil {
				a.log.Warn("skip position", "ticker", p.Ticker, "error", err)
				continue
			}
			unlocked, err := a.tracker.AddHolding(h)
			if err != nil {
				return err
			}
			added++
			printUnlocked(out, unlocked)
		}
		fmt.Fprintf(out, "Synced %d positions\n", added)
		return nil
	}),
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the dashboard with autosave and autorefresh",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, cmd *cobra.Command, args []string) error {
		sched := scheduler.New(a.tracker, scheduler.OptionsFromConfig(a.cfg), a.log)
		server := web.NewServer(a.tracker, a.cfg.Web.Port, a.log)

		schedDone := make(chan error, 1)
		go func() { schedDone <- sched.Run(ctx) }()

		go func() {
			if err := server.Start(); err != nil {
				a.log.Error("web server error", "error", err)
			}
		}()

		a.notifier.NotifyStatus(fmt.Sprintf("📈 Stock Quest started: %s", a.tracker.Status().Name))

		<-ctx.Done()
		a.log.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			a.log.Error("web server shutdown error", "error", err)
		}

		err := <-schedDone
		a.notifier.NotifyStatus("🛑 Stock Quest stopped")
		return err
	}),
}

func init() {
	addCmd.Flags().Float64Var(&addBuyPrice, "buy-price", 0, "price paid per share (default: current price)")
	listCmd.Flags().StringVar(&listSort, "sort", "", "sort by name, symbol, profit or value")
	importCmd.Flags().StringVar(&importFormat, "format", string(importer.FormatGeneric), "zerodha, groww or generic")
	importCmd.Flags().StringVar(&importMapping, "mapping", "", "generic column mapping: symbol,name,qty,buy,current")
	tradeCmd.Flags().BoolVar(&tradeLoss, "loss", false, "record a losing trade")
}

// parseMapping reads "symbol,name,qty,buy,current" column indexes.
func parseMapping(s string) (importer.Mapping, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 5 {
		return importer.Mapping{}, fmt.Errorf("invalid column mapping %q: want 5 indexes", s)
	}

	cols := make([]int, 5)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return importer.Mapping{}, fmt.Errorf("invalid column mapping %q: %w", s, err)
		}
		cols[i] = n
	}

	return importer.Mapping{
		SymbolCol:       cols[0],
		NameCol:         cols[1],
		QuantityCol:     cols[2],
		BuyPriceCol:     cols[3],
		CurrentPriceCol: cols[4],
	}, nil
}

func printUnlocked(w io.Writer, unlocked []string) {
	for _, name := range unlocked {
		fmt.Fprintf(w, "🏆 Achievement unlocked: %s\n", name)
	}
}

func printHoldings(w io.Writer, holdings []portfolio.Holding) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "SYMBOL\tNAME\tQTY\tBUY\tCURRENT\tVALUE\tPROFIT\t%\t")
	for _, h := range holdings {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%.2f\t%.2f\t%.2f\t%.2f\t%.2f\t\n",
			h.Symbol, h.Name, h.Quantity, h.BuyPrice, h.CurrentPrice, h.TotalValue(), h.Profit(), h.ProfitPercentage())
	}
	_ = tw.Flush()
}

func printStatus(w io.Writer, st tracker.Status) {
	fmt.Fprintf(w, "%s\n", st.Name)
	fmt.Fprintf(w, "Level %d: %s (%d/%d XP)\n", st.Level, st.Title, st.Experience, st.ExpForNextLevel)
	fmt.Fprintf(w, "Health %d/100\n", st.HealthScore)
	fmt.Fprintf(w, "Invested %.2f, value %.2f, P/L %.2f (%.2f%%)\n",
		st.TotalInvestment, st.TotalValue, st.TotalProfit, st.TotalProfitPercentage)
	fmt.Fprintf(w, "Daily P/L %.2f\n", st.DailyProfitLoss)
	fmt.Fprintf(w, "Trades %d, win rate %d%%, days active %d\n", st.Stats.TotalTrades, st.WinRate, st.Stats.DaysActive)
	fmt.Fprintf(w, "Achievements %d/%d\n", len(st.Achievements), st.TotalAchievements)
	for _, name := range st.Achievements {
		fmt.Fprintf(w, "  🏆 %s\n", name)
	}
}

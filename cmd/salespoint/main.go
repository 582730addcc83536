// Command salespoint runs a single-terminal point-of-sale session over the
// configured snapshot backend. It reads line-oriented commands from stdin and
// prints catalog, cart, receipt, and analytics views to stdout.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"salespoint/internal/analytics"
	"salespoint/internal/checkout"
	"salespoint/internal/observe"
	"salespoint/internal/session"
	"salespoint/pkg/domain"
)

var exitFunc = os.Exit

func main() {
	code := cli(os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	exitFunc(code)
}

func cli(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("salespoint", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		verbose     bool
		metricsMode string
		metricsAddr string
		traceFile   string
	)
	fs.BoolVar(&verbose, "v", false, "enable debug logging")
	fs.StringVar(&metricsMode, "metrics", "expvar", "metrics recorder: off|expvar|prometheus")
	fs.StringVar(&metricsAddr, "metrics-addr", "", "serve the prometheus scrape endpoint on this address")
	fs.StringVar(&traceFile, "trace", "", "append checkout trace spans to this file as JSON lines")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	opts := session.Options{Logger: logger}

	var expvarRec *observe.ExpvarMetricsRecorder
	switch metricsMode {
	case "off":
	case "expvar":
		expvarRec = observe.NewExpvarMetricsRecorder("")
		opts.Metrics = expvarRec
	case "prometheus":
		rec := observe.NewPrometheusMetricsRecorder()
		opts.Metrics = rec
		if metricsAddr != "" {
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.HandlerFor(rec.Registry(), promhttp.HandlerOpts{}))
			go func() {
				if err := http.ListenAndServe(metricsAddr, mux); err != nil {
					logger.Warn("metrics endpoint stopped", "error", err)
				}
			}()
		}
	default:
		fmt.Fprintf(stderr, "salespoint: unknown metrics mode %q\n", metricsMode)
		return 2
	}

	if traceFile != "" {
		f, err := os.OpenFile(traceFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(stderr, "salespoint: open trace file: %v\n", err)
			return 1
		}
		defer func() { _ = f.Close() }()
		opts.Tracer = observe.NewJSONTracer(f)
	}

	ctx := context.Background()
	sess, err := session.Open(ctx, opts)
	if err != nil {
		fmt.Fprintf(stderr, "salespoint: %v\n", err)
		return 1
	}
	defer func() {
		if err := sess.Close(ctx); err != nil {
			fmt.Fprintf(stderr, "salespoint: %v\n", err)
		}
	}()

	return repl(ctx, sess, expvarRec, stdin, stdout, stderr)
}

func repl(ctx context.Context, sess *session.Session, metrics *observe.ExpvarMetricsRecorder, stdin io.Reader, stdout, stderr io.Writer) int {
	fmt.Fprintln(stdout, "salespoint ready; type 'help' for commands")
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "> ")
		if !scanner.Scan() {
			break
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		cmd, rest := fields[0], fields[1:]
		switch cmd {
		case "help":
			printHelp(stdout)
		case "catalog":
			printCatalog(stdout, sess)
		case "add":
			if len(rest) != 1 {
				fmt.Fprintln(stderr, "usage: add <service-id>")
				continue
			}
			id, err := strconv.Atoi(rest[0])
			if err != nil {
				fmt.Fprintf(stderr, "bad service id %q\n", rest[0])
				continue
			}
			if err := sess.AddToCart(id); err != nil {
				fmt.Fprintln(stderr, err)
			}
		case "qty":
			if len(rest) != 2 {
				fmt.Fprintln(stderr, "usage: qty <service-id> <quantity>")
				continue
			}
			id, err1 := strconv.Atoi(rest[0])
			qty, err2 := strconv.Atoi(rest[1])
			if err1 != nil || err2 != nil {
				fmt.Fprintln(stderr, "usage: qty <service-id> <quantity>")
				continue
			}
			sess.SetQuantity(id, qty)
		case "cart":
			printCart(stdout, sess)
		case "clear":
			sess.ClearCart()
		case "customer":
			if len(rest) < 3 {
				fmt.Fprintln(stderr, "usage: customer <name> <email> <phone>")
				continue
			}
			c := domain.Customer{
				ID:    uuid.NewString(),
				Name:  strings.Join(rest[:len(rest)-2], " "),
				Email: rest[len(rest)-2],
				Phone: rest[len(rest)-1],
			}
			sess.SetCustomer(c)
			fmt.Fprintf(stdout, "customer attached: %s <%s>\n", c.Name, c.Email)
		case "guest":
			sess.ClearCustomer()
			fmt.Fprintln(stdout, "customer detached; next sale is a guest sale")
		case "checkout":
			method := domain.PaymentCash
			if len(rest) > 0 {
				method = domain.PaymentMethod(rest[0])
			}
			tx, err := sess.Checkout(ctx, checkout.Request{Method: method})
			if err != nil {
				fmt.Fprintf(stderr, "checkout failed: %v\n", err)
				continue
			}
			printReceipt(stdout, checkout.BuildReceipt(tx))
		case "history":
			printHistory(stdout, sess.Transactions())
		case "analytics":
			printAnalytics(stdout, sess.Analytics())
		case "stats":
			printStats(stdout, metrics)
		case "quit", "exit":
			return 0
		default:
			fmt.Fprintf(stderr, "unknown command %q; type 'help'\n", cmd)
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(stderr, "salespoint: read input: %v\n", err)
		return 1
	}
	return 0
}

func printHelp(w io.Writer) {
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  catalog                        list services")
	fmt.Fprintln(w, "  add <id>                       add one unit of a service")
	fmt.Fprintln(w, "  qty <id> <n>                   set quantity (0 removes)")
	fmt.Fprintln(w, "  cart                           show cart contents")
	fmt.Fprintln(w, "  clear                          empty the cart")
	fmt.Fprintln(w, "  customer <name> <email> <tel>  attach customer to the next sale")
	fmt.Fprintln(w, "  guest                          detach the customer")
	fmt.Fprintln(w, "  checkout [cash|card]           complete the sale")
	fmt.Fprintln(w, "  history                        list recorded transactions")
	fmt.Fprintln(w, "  analytics                      show revenue rollup")
	fmt.Fprintln(w, "  stats                          show terminal metrics")
	fmt.Fprintln(w, "  quit                           flush and exit")
}

func printCatalog(w io.Writer, sess *session.Session) {
	for _, svc := range sess.Catalog().List() {
		fmt.Fprintf(w, "%3d  %-20s $%7.2f  %-10s %s\n", svc.ID, svc.Name, svc.Price, svc.Category, svc.Description)
	}
}

func printCart(w io.Writer, sess *session.Session) {
	items := sess.CartItems()
	if len(items) == 0 {
		fmt.Fprintln(w, "cart is empty")
		return
	}
	for _, item := range items {
		fmt.Fprintf(w, "%3d  %-20s x%-3d $%7.2f\n", item.ID, item.Name, item.Quantity, item.LineTotal())
	}
	fmt.Fprintf(w, "subtotal: $%.2f\n", sess.Subtotal())
}

func printReceipt(w io.Writer, r checkout.Receipt) {
	fmt.Fprintf(w, "sale %s completed for %s\n", r.Transaction.ID, r.Transaction.Customer.Name)
	for _, item := range r.Transaction.Items {
		fmt.Fprintf(w, "  %-20s x%-3d $%7.2f\n", item.Name, item.Quantity, item.LineTotal())
	}
	fmt.Fprintf(w, "  subtotal $%.2f  tax $%.2f  total $%.2f\n", r.Subtotal, r.Tax, r.Total)
}

func printHistory(w io.Writer, txs []domain.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(w, "no transactions recorded")
		return
	}
	for _, tx := range txs {
		fmt.Fprintf(w, "%s  %s  %-12s $%8.2f  %d item(s)\n",
			tx.Date.Local().Format("2006-01-02 15:04"), tx.ID, tx.Customer.Name, tx.TotalAmount, len(tx.Items))
	}
}

func printAnalytics(w io.Writer, snap analytics.Snapshot) {
	fmt.Fprintf(w, "transactions: %d\n", snap.Count)
	fmt.Fprintf(w, "total revenue: $%.2f\n", snap.TotalRevenue)
	fmt.Fprintf(w, "average transaction: $%.2f\n", snap.AverageTransactionValue)
	for _, day := range snap.Days() {
		fmt.Fprintf(w, "  %s  $%.2f\n", day, snap.DailyRevenue[day])
	}
	for category, revenue := range snap.CategoryRevenue {
		fmt.Fprintf(w, "  %-10s $%.2f\n", category, revenue)
	}
}

func printStats(w io.Writer, metrics *observe.ExpvarMetricsRecorder) {
	if metrics == nil {
		fmt.Fprintln(w, "no local metrics recorder; run with -metrics expvar")
		return
	}
	snap := metrics.Snapshot()
	fmt.Fprintf(w, "transactions: %d  revenue: $%.2f  items sold: %d\n", snap.Transactions, snap.Revenue, snap.ItemsSold)
	for op, stats := range snap.Operations {
		fmt.Fprintf(w, "  %-10s ok=%d err=%d %.1fms\n", op, stats.Success, stats.Failure, stats.DurationMS)
	}
}

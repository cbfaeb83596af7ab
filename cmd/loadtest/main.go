package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	"github.com/vladislavdragonenkov/pos/internal/domain"
	"github.com/vladislavdragonenkov/pos/internal/service/commands"
	grpcsvc "github.com/vladislavdragonenkov/pos/internal/service/grpc"
)

type loadMode string

const (
	modeOrder          loadMode = "order"
	modeOrderDashboard loadMode = "order-dashboard"
)

type config struct {
	addr        string
	total       int
	totalSet    bool
	duration    time.Duration
	concurrency int
	connections int
	timeout     time.Duration
	mode        loadMode
	maxItems    int
	outputPath  string
}

// invoker: командная поверхность кассы; реализуется grpcsvc.Client.
type invoker interface {
	Invoke(ctx context.Context, command string, payload, out any, opts ...grpc.CallOption) error
}

func parseConfig(args []string) (config, error) {
	var cfg config
	var modeValue string

	flags := flag.NewFlagSet("loadtest", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	flags.StringVar(&cfg.addr, "addr", "127.0.0.1:50051", "gRPC target address")
	flags.IntVar(&cfg.total, "total", 400, "total scenarios to execute in count mode; in duration mode only used when explicitly set")
	flags.DurationVar(&cfg.duration, "duration", 0, "optional time-based run duration (e.g. 1m)")
	flags.IntVar(&cfg.concurrency, "concurrency", 8, "number of concurrent workers")
	flags.IntVar(&cfg.connections, "connections", 2, "number of gRPC client connections")
	flags.DurationVar(&cfg.timeout, "timeout", 5*time.Second, "per-command timeout")
	flags.StringVar(&modeValue, "mode", string(modeOrder), "load mode: order | order-dashboard")
	flags.IntVar(&cfg.maxItems, "max-items", 3, "max distinct products per order")
	flags.StringVar(&cfg.outputPath, "output", "", "optional JSON report output file path")
	if err := flags.Parse(args); err != nil {
		return cfg, err
	}

	flags.Visit(func(f *flag.Flag) {
		if f.Name == "total" {
			cfg.totalSet = true
		}
	})

	mode, err := parseMode(modeValue)
	if err != nil {
		return cfg, err
	}
	cfg.mode = mode

	switch {
	case cfg.duration < 0:
		return cfg, errors.New("duration must be >= 0")
	case cfg.duration == 0 && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when duration is not set")
	case cfg.duration > 0 && cfg.totalSet && cfg.total <= 0:
		return cfg, errors.New("total must be > 0 when explicitly set with duration")
	case cfg.concurrency <= 0:
		return cfg, errors.New("concurrency must be > 0")
	case cfg.connections <= 0:
		return cfg, errors.New("connections must be > 0")
	case cfg.timeout <= 0:
		return cfg, errors.New("timeout must be > 0")
	case cfg.maxItems <= 0:
		return cfg, errors.New("max-items must be > 0")
	}

	return cfg, nil
}

func parseMode(value string) (loadMode, error) {
	switch loadMode(strings.TrimSpace(value)) {
	case modeOrder:
		return modeOrder, nil
	case modeOrderDashboard:
		return modeOrderDashboard, nil
	default:
		return "", fmt.Errorf("unsupported mode: %s", value)
	}
}

func main() {
	cfg, err := parseConfig(os.Args[1:])
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}

	conns := make([]*grpc.ClientConn, 0, cfg.connections)
	clients := make([]invoker, 0, cfg.connections)
	for i := 0; i < cfg.connections; i++ {
		conn, dialErr := grpc.NewClient(cfg.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if dialErr != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to create grpc client connection: %v\n", dialErr)
			os.Exit(1)
		}
		conns = append(conns, conn)
		clients = append(clients, grpcsvc.NewClient(conn))
	}
	defer func() {
		for _, conn := range conns {
			_ = conn.Close()
		}
	}()

	result, err := run(cfg, clients)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "load test aborted: %v\n", err)
		os.Exit(1)
	}

	printReport(os.Stdout, result, cfg)
	if cfg.outputPath != "" {
		if err := writeJSONReport(cfg.outputPath, result); err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "failed to write report: %v\n", err)
			os.Exit(1)
		}
	}

	if result.FailedSales > 0 {
		os.Exit(1)
	}
}

// run загружает доступные товары и прогоняет сценарии на пуле воркеров.
func run(cfg config, clients []invoker) (report, error) {
	if len(clients) == 0 {
		return report{}, errors.New("no clients")
	}

	products, err := loadProducts(clients[0], cfg.timeout)
	if err != nil {
		return report{}, err
	}

	startedAt := time.Now()
	col := newCollector()
	jobs := make(chan int, cfg.concurrency*2)

	var wg sync.WaitGroup
	for workerID := 0; workerID < cfg.concurrency; workerID++ {
		wg.Add(1)
		go func(cli invoker) {
			defer wg.Done()
			for id := range jobs {
				_ = runScenario(cli, cfg, products, id, col)
			}
		}(clients[workerID%len(clients)])
	}

	dispatchJobs(jobs, cfg)
	wg.Wait()

	return col.snapshot(startedAt, time.Since(startedAt)), nil
}

// loadProducts возвращает товары, доступные к продаже.
func loadProducts(client invoker, timeout time.Duration) ([]domain.Product, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var all []domain.Product
	if err := client.Invoke(ctx, commands.ListProducts, nil, &all); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	available := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if p.Available {
			available = append(available, p)
		}
	}
	if len(available) == 0 {
		return nil, errors.New("no available products to sell")
	}
	return available, nil
}

func dispatchJobs(jobs chan<- int, cfg config) {
	defer close(jobs)

	if cfg.duration <= 0 {
		for i := 0; i < cfg.total; i++ {
			jobs <- i
		}
		return
	}

	timer := time.NewTimer(cfg.duration)
	defer timer.Stop()

	for i := 0; ; i++ {
		if cfg.totalSet && i >= cfg.total {
			return
		}

		select {
		case <-timer.C:
			return
		case jobs <- i:
		}
	}
}

// buildOrderInput детерминированно собирает заказ для сценария index.
func buildOrderInput(products []domain.Product, index, maxItems int) domain.CreateOrderInput {
	count := index%maxItems + 1
	if count > len(products) {
		count = len(products)
	}

	items := make([]domain.CreateOrderItemInput, 0, count)
	for i := 0; i < count; i++ {
		p := products[(index+i)%len(products)]
		items = append(items, domain.CreateOrderItemInput{
			ProductID:   p.ID,
			ProductName: p.Name,
			UnitPrice:   p.Price,
			Quantity:    int64((index+i)%3 + 1),
		})
	}

	method := domain.PaymentMethodCash
	if index%2 == 1 {
		method = domain.PaymentMethodCard
	}
	return domain.CreateOrderInput{Items: items, PaymentMethod: method}
}

func runScenario(client invoker, cfg config, products []domain.Product, index int, col *collector) (err error) {
	var order domain.OrderWithItems
	defer func() {
		col.sale(err == nil, order.Total)
	}()

	if err = call(client, cfg.timeout, commands.CreateOrder, buildOrderInput(products, index, cfg.maxItems), &order, col); err != nil {
		return err
	}
	if order.ID == "" {
		return errors.New("create_order returned empty order id")
	}

	if cfg.mode == modeOrderDashboard {
		var summary domain.DashboardSummary
		if err = call(client, cfg.timeout, commands.GetDashboardSummary, nil, &summary, col); err != nil {
			return err
		}
	}
	return nil
}

func call(client invoker, timeout time.Duration, command string, payload, out any, col *collector) error {
	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	err := client.Invoke(ctx, command, payload, out)
	col.command(command, time.Since(start), grpcCode(err))
	return err
}

func grpcCode(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	return status.Code(err)
}

package main

import (
	"fmt"
	"log"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"go-timeclock/config"
	"go-timeclock/internal/attendance"
	"go-timeclock/internal/repository"
	"go-timeclock/internal/service"
	"go-timeclock/internal/ws"
	"go-timeclock/pkg/database"
	"go-timeclock/pkg/logger"
	"go-timeclock/pkg/namecache"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	app := &cli.App{
		Name:  "payroll-report",
		Usage: "print monthly hours and sales from the terminal",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "month",
				Usage: "reporting month as YYYY-MM (default: current month)",
			},
		},
		Commands: []*cli.Command{
			payrollCommand,
			salesCommand,
		},
	}
	return app.Run(os.Args)
}

var payrollCommand = &cli.Command{
	Name:  "payroll",
	Usage: "hours per worker",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "xlsx", Usage: "also write the workbook to this path"},
	},
	Action: func(c *cli.Context) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		month := monthFlag(c, env.cfg.Location())
		summary, err := env.payroll.MonthSummary(month)
		if err != nil {
			return err
		}
		buildPayrollTable(os.Stdout, summary).Render()

		if path := c.String("xlsx"); path != "" {
			buf, _, err := service.NewExportService(env.payroll, env.logger).PayrollXLSX(month)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("failed to write %s: %w", path, err)
			}
			env.logger.Info("workbook written", zap.String("path", path))
		}
		return nil
	},
}

var salesCommand = &cli.Command{
	Name:  "sales",
	Usage: "sales per day and payment method",
	Action: func(c *cli.Context) error {
		env, err := setup()
		if err != nil {
			return err
		}
		defer env.logger.Sync()

		loc := env.cfg.Location()
		first, err := time.ParseInLocation("2006-01", monthFlag(c, loc), loc)
		if err != nil {
			return service.ErrInvalidMonthFormat
		}
		report, err := env.sales.DailyReport(first, first.AddDate(0, 1, 0))
		if err != nil {
			return err
		}
		buildSalesTable(os.Stdout, report).Render()
		return nil
	},
}

// noopPublisher discards events; nothing listens from the terminal.
type noopPublisher struct{}

func (noopPublisher) Publish(ws.Event) {}

type environment struct {
	cfg     *config.Config
	logger  *zap.Logger
	payroll service.PayrollService
	sales   service.SalesService
}

func setup() (*environment, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	zlog, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		return nil, err
	}
	db, err := database.ConnectDB(cfg, zlog)
	if err != nil {
		return nil, err
	}

	loc := cfg.Location()
	engine := attendance.NewEngine(loc, attendance.NewLogReporter(zlog))
	userRepo := repository.NewUserRepo(db)
	attendanceRepo := repository.NewAttendanceRepo(db)
	names := namecache.New(service.NewNameLoader(userRepo), namecache.SystemClock{}, cfg.Report.NameCacheTTL)

	return &environment{
		cfg:     cfg,
		logger:  zlog,
		payroll: service.NewPayrollService(attendanceRepo, userRepo, engine, names, zlog),
		sales: service.NewSalesService(repository.NewTransactionRepo(db), repository.NewRegisterRepo(db),
			userRepo, loc, noopPublisher{}, zlog),
	}, nil
}

func monthFlag(c *cli.Context, loc *time.Location) string {
	if m := c.String("month"); m != "" {
		return m
	}
	return time.Now().In(loc).Format("2006-01")
}

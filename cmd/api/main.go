package main

import (
	"log"
	"os"
	"os/signal"
	"slices"
	"syscall"
	_ "time/tzdata"

	"go-timeclock/config"
	"go-timeclock/internal/attendance"
	"go-timeclock/internal/handler"
	"go-timeclock/internal/middleware"
	"go-timeclock/internal/model"
	"go-timeclock/internal/repository"
	"go-timeclock/internal/service"
	"go-timeclock/internal/ws"
	"go-timeclock/pkg/database"
	"go-timeclock/pkg/logger"
	"go-timeclock/pkg/namecache"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	// 1. Load Env
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	zlog, err := logger.NewLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zlog.Sync()

	// 2. Setup Database
	db, err := database.ConnectDB(cfg, zlog)
	if err != nil {
		zlog.Fatal("failed to connect database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zlog.Fatal("failed to migrate", zap.Error(err))
	}

	// 3. Seed default privileges, roles, and owner account
	seedPrivilegesRolesAndOwner(db, &cfg.Owner, zlog)

	// 4. Setup WebSocket Hub
	wsHub := ws.NewHub(zlog.Named("ws"))
	go wsHub.Run()

	// 5. Dependency Injection (Wiring Layers)
	loc := cfg.Location()
	engine := attendance.NewEngine(loc, attendance.NewLogReporter(zlog.Named("attendance")))

	userRepo := repository.NewUserRepo(db)
	privilegeRepo := repository.NewPrivilegeRepo(db)
	roleRepo := repository.NewRoleRepo(db)
	attendanceRepo := repository.NewAttendanceRepo(db)
	txRepo := repository.NewTransactionRepo(db)
	registerRepo := repository.NewRegisterRepo(db)

	names := namecache.New(service.NewNameLoader(userRepo), namecache.SystemClock{}, cfg.Report.NameCacheTTL)

	authService := service.NewAuthService(userRepo, wsHub, zlog)
	userService := service.NewUserService(userRepo, privilegeRepo, roleRepo, names, zlog)
	attendanceService := service.NewAttendanceService(attendanceRepo, userRepo, engine, wsHub, zlog)
	payrollService := service.NewPayrollService(attendanceRepo, userRepo, engine, names, zlog)
	exportService := service.NewExportService(payrollService, zlog)
	salesService := service.NewSalesService(txRepo, registerRepo, userRepo, loc, wsHub, zlog)
	registerService := service.NewRegisterService(registerRepo, txRepo, wsHub, zlog)

	authHandler := handler.NewAuthHandler(authService)
	userHandler := handler.NewUserHandler(userService)
	roleHandler := handler.NewRoleHandler(roleRepo, privilegeRepo)
	attendanceHandler := handler.NewAttendanceHandler(attendanceService, loc)
	payrollHandler := handler.NewPayrollHandler(payrollService, exportService, loc)
	salesHandler := handler.NewSalesHandler(salesService, registerService, loc)

	// 6. Setup Fiber
	app := fiber.New(fiber.Config{
		AppName: "go-timeclock v1.0",
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(zlog.Named("http")))
	app.Use(cors.New())

	// 7. Routes
	api := app.Group("/api/v1")

	// ============ PUBLIC ROUTES ============
	auth := api.Group("/auth")
	auth.Post("/login", authHandler.Login)
	auth.Post("/reset-password", authHandler.ResetPassword)
	auth.Post("/validate-token", authHandler.ValidateToken)
	auth.Post("/heartbeat", middleware.RequireAuth(userRepo), authHandler.Heartbeat)

	// ============ PROTECTED ROUTES ============
	protected := api.Group("", middleware.RequireAuth(userRepo))

	// Attendance
	protected.Post("/attendance/clock-in", middleware.RequirePrivilege(model.PrivAttendanceClock), attendanceHandler.ClockIn)
	protected.Post("/attendance/clock-out", middleware.RequirePrivilege(model.PrivAttendanceClock), attendanceHandler.ClockOut)
	protected.Get("/attendance", attendanceHandler.ListAttendances)
	protected.Get("/attendance/calendar", attendanceHandler.GetCalendar)
	protected.Get("/attendance/summary", middleware.RequireAnyPrivilege(model.PrivAttendanceViewAll, model.PrivPayrollView), attendanceHandler.GetSummary)
	protected.Get("/attendance/:id", attendanceHandler.GetAttendance)
	protected.Put("/attendance/:id", middleware.RequirePrivilege(model.PrivAttendanceUpdate), attendanceHandler.UpdateAttendance)
	protected.Delete("/attendance/:id", middleware.RequirePrivilege(model.PrivAttendanceDelete), attendanceHandler.DeleteAttendance)

	// Payroll
	protected.Get("/payroll", middleware.RequirePrivilege(model.PrivPayrollView), payrollHandler.GetSummary)
	protected.Get("/payroll/export", middleware.RequirePrivilege(model.PrivPayrollView), payrollHandler.ExportXLSX)

	// Sales and register
	protected.Post("/sales", middleware.RequirePrivilege(model.PrivTransactionCreate), salesHandler.RecordTransaction)
	protected.Get("/sales/report", middleware.RequirePrivilege(model.PrivTransactionView), salesHandler.DailyReport)
	protected.Delete("/sales/:id", middleware.RequirePrivilege(model.PrivTransactionDelete), salesHandler.DeleteTransaction)
	protected.Get("/register/current", middleware.RequirePrivilege(model.PrivRegisterOperate), salesHandler.CurrentRegister)
	protected.Post("/register/open", middleware.RequirePrivilege(model.PrivRegisterOperate), salesHandler.OpenRegister)
	protected.Post("/register/close", middleware.RequirePrivilege(model.PrivRegisterOperate), salesHandler.CloseRegister)

	// User management
	protected.Get("/users", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUsers)
	protected.Get("/users/:id", middleware.RequirePrivilege(model.PrivUserView), userHandler.GetUser)
	protected.Post("/users", middleware.RequirePrivilege(model.PrivUserCreate), userHandler.CreateUser)
	protected.Put("/users/:id", middleware.RequirePrivilege(model.PrivUserUpdate), userHandler.UpdateUser)
	protected.Delete("/users/:id", middleware.RequirePrivilege(model.PrivUserDelete), userHandler.DeleteUser)
	protected.Put("/users/:id/privileges", middleware.RequirePrivilege(model.PrivUserUpdatePrivilege), userHandler.UpdateUserPrivileges)

	protected.Get("/roles", roleHandler.GetRoles)
	protected.Get("/privileges", roleHandler.GetPrivileges)

	// WebSocket Route
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return c.SendStatus(fiber.StatusUpgradeRequired)
	})
	app.Get("/ws", websocket.New(func(c *websocket.Conn) {
		wsHub.Register <- c
		defer func() { wsHub.Unregister <- c }()

		for {
			if _, _, err := c.ReadMessage(); err != nil {
				break
			}
		}
	}))

	// 8. Graceful Shutdown
	go func() {
		zlog.Info("listening", zap.String("port", cfg.Port), zap.String("timezone", loc.String()))
		if err := app.Listen(":" + cfg.Port); err != nil {
			zlog.Panic("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
	if err := app.Shutdown(); err != nil {
		zlog.Fatal("server forced to shutdown", zap.Error(err))
	}
	zlog.Info("server exited")
}

// seedPrivilegesRolesAndOwner creates default privileges, roles, and the
// owner account if they don't exist.
func seedPrivilegesRolesAndOwner(db *gorm.DB, ownerCfg *config.OwnerConfig, zlog *zap.Logger) {
	privilegeRepo := repository.NewPrivilegeRepo(db)
	userRepo := repository.NewUserRepo(db)
	roleRepo := repository.NewRoleRepo(db)

	// 1. Seed privileges first
	if err := privilegeRepo.SeedDefaults(); err != nil {
		zlog.Warn("failed to seed privileges", zap.Error(err))
	}

	// 2. Seed roles
	if err := roleRepo.SeedDefaults(); err != nil {
		zlog.Warn("failed to seed roles", zap.Error(err))
	}

	// 3. Owner gets everything, staff roles the clock/register set
	allPrivileges, _ := privilegeRepo.FindAll()

	ownerRole, err := roleRepo.FindByCode(model.RoleOwner)
	if err == nil && len(ownerRole.Privileges) == 0 {
		if err := roleRepo.ReplacePrivileges(ownerRole, allPrivileges); err != nil {
			zlog.Warn("failed to assign owner privileges", zap.Error(err))
		}
	}

	var staffPrivileges []model.Privilege
	for _, p := range allPrivileges {
		if slices.Contains(model.StaffPrivileges, p.Code) {
			staffPrivileges = append(staffPrivileges, p)
		}
	}
	for _, code := range []string{model.RoleCast, model.RoleDriver} {
		role, err := roleRepo.FindByCode(code)
		if err == nil && len(role.Privileges) == 0 {
			if err := roleRepo.ReplacePrivileges(role, staffPrivileges); err != nil {
				zlog.Warn("failed to assign staff privileges", zap.String("role", code), zap.Error(err))
			}
		}
	}

	// 4. Owner account
	email := ownerCfg.Email
	if _, err := userRepo.FindByEmail(email); err == nil {
		return
	}

	ownerRole, err = roleRepo.FindByCode(model.RoleOwner)
	if err != nil {
		zlog.Warn("owner role missing, skipping owner account", zap.Error(err))
		return
	}

	owner := &model.User{
		Email:      email,
		FullName:   "Owner",
		RoleID:     &ownerRole.ID,
		IsActive:   true,
		Privileges: ownerRole.Privileges,
	}
	owner.Audit("system")

	if err := owner.SetPassword(ownerCfg.Password); err != nil {
		zlog.Warn("failed to hash owner password", zap.Error(err))
		return
	}
	if err := userRepo.Create(owner); err != nil {
		zlog.Warn("failed to create owner account", zap.Error(err))
		return
	}
	zlog.Info("owner account created", zap.String("email", email))
}

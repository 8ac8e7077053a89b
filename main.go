// @title           Precast Erection API
// @version         1.0
// @description     Precast erection planning backend - stockyard snapshots, interactive erection planners and stock erection requests.
// @termsOfService  http://swagger.io/terms/

// @contact.name   API Support
// @contact.url    https://precastezy.blueinvent.com

// @license.name  Apache 2.0
// @license.url   http://www.apache.org/licenses/LICENSE-2.0.html

// @host      https://precastezy.blueinvent.com

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/planner"
	"backend/services"
	"backend/storage"
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var cronRunning int32

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"https://precastezy.blueinvent.com",
		"https://precast.blueinvent.com",
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding", "X-XSRF-TOKEN",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
		"X-Custom-Header", "X-API-Key", "X-Client-Version",
		"Accept-Language", "Accept-Charset", "DNT", "Connection",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "X-Total-Count",
		"X-Page-Count", "Access-Control-Allow-Origin", "Access-Control-Allow-Credentials",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

// Middleware to block suspended projects unless user is superadmin
func CheckProjectSuspension(db *sql.DB) gin.HandlerFunc {
	return func(c *gin.Context) {

		sessionID := c.GetHeader("Authorization")
		if sessionID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session ID required"})
			c.Abort()
			return
		}

		user, err := storage.GetUserBySessionID(db, sessionID)
		if err != nil || user == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session", "err": err.Error()})
			c.Abort()
			return
		}

		var roleID int
		err = db.QueryRow("SELECT role_id FROM users WHERE id = $1", user.ID).Scan(&roleID)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Failed to retrieve role ID"})
			c.Abort()
			return
		}

		projectIDStr := c.Param("project_id")
		projectID, err := strconv.Atoi(projectIDStr)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid project_id"})
			c.Abort()
			return
		}

		var suspended bool
		err = db.QueryRow("SELECT suspend FROM project WHERE project_id = $1", projectID).Scan(&suspended)
		if err != nil {
			log.Println("Error checking suspension status:", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
			c.Abort()
			return
		}

		if suspended && roleID != 1 {
			c.JSON(http.StatusForbidden, gin.H{"error": "Access denied: project is suspended"})
			c.Abort()
			return
		}

		c.Next()
	}
}

func safeGo(
	ctx context.Context,
	wg *sync.WaitGroup,
	name string,
	fn func(context.Context) error,
	cronLogger *log.Logger,
) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				if cronLogger != nil {
					cronLogger.Printf("PANIC in %s: %v\n%s", name, r, debug.Stack())
				}
			}
		}()

		if err := fn(ctx); err != nil {
			log.Printf("%s failed: %v", name, err)
			if cronLogger != nil {
				cronLogger.Printf("%s failed: %v", name, err)
			}
		} else {
			log.Printf("%s completed successfully", name)
			if cronLogger != nil {
				cronLogger.Printf("%s completed successfully", name)
			}
		}
	}()
}

func main() {
	db := storage.InitDB()
	gormDB := storage.InitGormDB()

	// Interactive planner sessions live in memory; abandoned ones are purged
	// by the maintenance cron.
	plannerStore := planner.NewSessionStore()

	// Initialize Firebase Cloud Messaging service using HTTP v1 API
	credentialsPath := os.Getenv("FCM_CREDENTIALS_PATH")
	if credentialsPath == "" {
		credentialsPath = "firebase-credentials.json"
	}
	fcmService, err := services.NewFCMService(credentialsPath, db)
	if err != nil {
		log.Printf("Warning: Failed to initialize FCM service: %v. Push notifications will be disabled.", err)
		fcmService = nil
	} else {
		log.Println("FCM service initialized successfully")
	}

	handlers.SetFCMService(fcmService)

	emailService := services.NewEmailService(db)

	// Daily maintenance at 00:30
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)

	cronLogFile, err := os.OpenFile("cron_errors.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Printf("Failed to open cron error log file: %v", err)
	}
	cronLogger := log.New(cronLogFile, "CRON_ERROR: ", log.LstdFlags)

	_, err = c.AddFunc("30 0 * * *", func() {
		if !atomic.CompareAndSwapInt32(&cronRunning, 0, 1) {
			log.Println("Previous cron still running. Skipping this run.")
			if cronLogger != nil {
				cronLogger.Println("Previous cron still running. Skipping this run.")
			}
			return
		}
		defer atomic.StoreInt32(&cronRunning, 0)

		log.Println("Starting daily maintenance cron job")
		if cronLogger != nil {
			cronLogger.Println("Starting daily maintenance cron job")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		var wg sync.WaitGroup

		safeGo(ctx, &wg, "CleanupExpiredSessions", func(ctx context.Context) error {
			return storage.CleanupExpiredSessions(db)
		}, cronLogger)

		safeGo(ctx, &wg, "PurgeIdlePlannerSessions", func(ctx context.Context) error {
			removed := plannerStore.PurgeIdle(24 * time.Hour)
			log.Printf("Purged %d idle planner sessions, %d remaining", removed, plannerStore.Count())
			return nil
		}, cronLogger)

		safeGo(ctx, &wg, "PurgeStaleDrafts", func(ctx context.Context) error {
			removed, err := handlers.PurgeStaleDrafts(gormDB, 30*24*time.Hour)
			if err != nil {
				return err
			}
			log.Printf("Purged %d stale plan drafts", removed)
			return nil
		}, cronLogger)

		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()

		select {
		case <-done:
			log.Println("All cron jobs finished")
			if cronLogger != nil {
				cronLogger.Println("All cron jobs finished")
			}
		case <-ctx.Done():
			log.Println("Cron timeout reached, jobs cancelled")
			if cronLogger != nil {
				cronLogger.Println("Cron timeout reached, jobs cancelled")
			}
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance cron job: %v", err)
	}

	c.Start()

	r := gin.Default()
	r.MaxMultipartMemory = 8 << 20

	r.Use(cors.New(CORSConfig()))

	// ==================== 1. AUTH & LOGIN ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.GET("/api/session/:user_id", handlers.GetSessionHandler(db))
	r.DELETE("/api/session/:user_id", handlers.DeleteSessionHandler(db))
	r.POST("/api/logout-device", handlers.LogoutDeviceHandler(db))

	// ==================== 2. ACTIVITY LOGS ====================
	r.GET("/api/logs", handlers.GetActivityLogsHandler(db))
	r.GET("/api/log/search", handlers.SearchActivityLogsHandler(db))

	// ==================== 3. NOTIFICATIONS ====================
	r.POST("/api/notifications", handlers.CreateNotificationHandler(db))
	r.GET("/api/notifications", handlers.GetMyNotificationsHandler(db))
	r.PUT("/api/notifications/:id/read", handlers.MarkNotificationAsReadHandler(db))
	r.PUT("/api/notifications/read-all", handlers.MarkAllNotificationsAsReadHandler(db))
	r.DELETE("/api/notifications/:id", handlers.DeleteNotificationHandler(db))
	r.POST("/api/fcm/register-token", handlers.RegisterFCMTokenHandler(db, fcmService))
	r.DELETE("/api/fcm/remove-token", handlers.RemoveFCMTokenHandler(db, fcmService))

	// ==================== 4. STOCKYARD & ERECTION ====================
	r.GET("/api/stockyard_elements/:project_id", CheckProjectSuspension(db), handlers.GetElementlistFromStockYard(db))
	r.POST("/api/stock_erection", handlers.RageStockRequestByErection(db))
	r.GET("/api/erection_orders/:project_id", CheckProjectSuspension(db), handlers.GetErectionOrderData(db))
	r.GET("/api/erection_orders/approved/:project_id", CheckProjectSuspension(db), handlers.GetApprovedErectionOrderData(db))
	r.PUT("/api/update_stock", handlers.UpdateStockByPlaning(db))
	r.POST("/api/erection_stock/update", handlers.UpdateErectedStatus(db))
	r.GET("/api/stock-erected/logs/:project_id", CheckProjectSuspension(db), handlers.GetStockErectedLogs(db))

	// ==================== 5. ERECTION PLANNER ====================
	r.POST("/api/erection_planner/:project_id", CheckProjectSuspension(db), handlers.OpenErectionPlanner(db, plannerStore))
	r.GET("/api/erection_planner/plan/:plan_id", handlers.GetPlannerState(db, plannerStore))
	r.DELETE("/api/erection_planner/plan/:plan_id", handlers.CloseErectionPlanner(db, plannerStore))
	r.POST("/api/erection_planner/plan/:plan_id/refresh", handlers.RefreshPlannerCatalog(db, plannerStore))
	r.PUT("/api/erection_planner/plan/:plan_id/tower", handlers.SelectPlannerTower(db, plannerStore))
	r.PUT("/api/erection_planner/plan/:plan_id/floor", handlers.SelectPlannerFloor(db, plannerStore))
	r.POST("/api/erection_planner/plan/:plan_id/rows", handlers.AddPlannerRow(db, plannerStore))
	r.DELETE("/api/erection_planner/plan/:plan_id/rows/:row_id", handlers.RemovePlannerRow(db, plannerStore))
	r.PUT("/api/erection_planner/plan/:plan_id/rows/:row_id/category", handlers.SetPlannerRowCategory(db, plannerStore))
	r.POST("/api/erection_planner/plan/:plan_id/rows/:row_id/toggle", handlers.TogglePlannerItem(db, plannerStore))
	r.PUT("/api/erection_planner/plan/:plan_id/rows/:row_id/quantity", handlers.SetPlannerQuantity(db, plannerStore))
	r.POST("/api/erection_planner/plan/:plan_id/blocks", handlers.AddPlannerBlock(db, plannerStore))
	r.DELETE("/api/erection_planner/plan/:plan_id/blocks/:index", handlers.RemovePlannerBlock(db, plannerStore))
	r.PUT("/api/erection_planner/plan/:plan_id/active", handlers.SetActivePlannerBlock(db, plannerStore))
	r.POST("/api/erection_planner/plan/:plan_id/reset", handlers.ResetPlanner(db, plannerStore))
	r.GET("/api/erection_planner/plan/:plan_id/review", handlers.ReviewErectionPlan(db, plannerStore))
	r.POST("/api/erection_planner/plan/:plan_id/submit", handlers.SubmitErectionPlan(db, plannerStore, fcmService, emailService))

	// ==================== 6. PLAN DRAFTS ====================
	r.POST("/api/erection_planner/draft/:project_id", handlers.SaveErectionPlanDraft(db, gormDB))
	r.GET("/api/erection_planner/draft/:project_id", handlers.ListErectionPlanDrafts(db, gormDB))
	r.GET("/api/erection_planner/draft/plan/:draft_id", handlers.GetErectionPlanDraft(db, gormDB))
	r.DELETE("/api/erection_planner/draft/plan/:draft_id", handlers.DeleteErectionPlanDraft(db, gormDB))

	// ==================== 7. SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}

	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cronCtx := c.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(10 * time.Second):
		log.Println("Warning: cron jobs did not finish before shutdown timeout")
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}

package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"hotel-management/config"
	"hotel-management/controllers"
	"hotel-management/middleware"
	"hotel-management/observability"
	"hotel-management/services"
	"hotel-management/session"
	"hotel-management/templates"
	"hotel-management/utils"
)

// Deps is everything the router needs to build the handlers.
type Deps struct {
	Config   *config.Config
	DB       *gorm.DB
	Sessions *session.Manager
	Mailer   utils.Mailer
	Avatars  services.AvatarStore
	Hasher   *services.PasswordHasher
	Metrics  *observability.Metrics
	Limiter  *middleware.IPRateLimiter
	Log      *zap.Logger
}

func corsConfig(origins []string) cors.Config {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}
}

// SetupRouter wires services, controllers and middleware.
func SetupRouter(d Deps) (*gin.Engine, error) {
	tmpl, err := templates.Load()
	if err != nil {
		return nil, err
	}

	users := services.NewUserService(d.DB)
	auth := services.NewAuthService(users, d.Hasher, d.Log)
	registration := services.NewRegistrationService(d.DB, users, d.Hasher, d.Avatars, d.Log)
	reset := services.NewPasswordResetService(auth, d.Mailer, d.Metrics, d.Log)
	rooms := services.NewRoomService(d.DB)
	comments := services.NewCommentService(d.DB)
	booking := services.NewBookingService(d.DB, d.Log)
	bills := services.NewBillService(d.DB)

	authCtrl := controllers.NewAuthController(auth, registration, reset, d.Metrics, d.Log)
	roomCtrl := controllers.NewRoomController(rooms, comments, d.Log)
	bookingCtrl := controllers.NewBookingController(booking, rooms, d.Log)
	staffCtrl := controllers.NewStaffController(booking, rooms, bills, d.Log)
	adminCtrl := controllers.NewAdminController(users, bills, d.Log)

	r := gin.New()
	if err := r.SetTrustedProxies(d.Config.TrustedProxies); err != nil {
		return nil, err
	}
	r.SetHTMLTemplate(tmpl)
	r.MaxMultipartMemory = 8 << 20
	r.Use(gin.Recovery(), middleware.Logger(d.Log), middleware.Metrics(d.Metrics))
	r.Use(cors.New(corsConfig(d.Config.CORSOrigins)))
	r.Static("/uploads", d.Config.UploadDir)

	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := d.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	app := r.Group("/", d.Sessions.Middleware(), middleware.LoadUser(auth, d.Log))
	{
		app.GET("/", roomCtrl.Home)
		app.GET("/roomdetail", roomCtrl.Detail)
		app.GET("/api/rooms", roomCtrl.APIList)
		app.GET("/logout", authCtrl.Logout)

		limited := app.Group("", middleware.RateLimitByIP(d.Limiter))
		{
			limited.GET("/login", authCtrl.ShowLogin)
			limited.POST("/login", authCtrl.Login)
			limited.GET("/register", authCtrl.ShowRegister)
			limited.POST("/register", authCtrl.RegisterUser)
			limited.GET("/forgot-password", authCtrl.ShowForgotPassword)
			limited.POST("/forgot-password", authCtrl.ForgotPassword)
		}

		member := app.Group("", middleware.RequireLogin())
		{
			member.POST("/rooms/:id/comments", roomCtrl.AddComment)
			member.GET("/booking", bookingCtrl.ShowBooking)
			member.POST("/booking", bookingCtrl.CreateBooking)
		}

		staff := app.Group("/staff", middleware.RequireStaff())
		{
			staff.GET("/rooms", staffCtrl.RoomList)
			staff.GET("/booking", staffCtrl.Reservations)
			staff.GET("/checkin", staffCtrl.ShowCheckIn)
			staff.POST("/checkin", staffCtrl.CheckIn)
			staff.GET("/checkout", staffCtrl.ShowCheckOut)
			staff.POST("/checkout", staffCtrl.CheckOut)
			staff.GET("/bills", staffCtrl.BillList)
			staff.GET("/bills/export", staffCtrl.ExportBills)
		}

		admin := app.Group("/admin", middleware.RequireAdmin())
		{
			admin.GET("/users", adminCtrl.UserList)
			admin.POST("/users/:id/delete", adminCtrl.DeleteUser)
			admin.POST("/bills/:id/delete", adminCtrl.DeleteBill)
		}
	}

	return r, nil
}

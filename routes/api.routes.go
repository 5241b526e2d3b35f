package routes

import (
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"medicare-backend/controllers"
	"medicare-backend/models"
	"medicare-backend/services"
	"medicare-backend/shared/apperr"
	"medicare-backend/shared/security"
)

// Deps are the collaborators the HTTP surface is built from.
type Deps struct {
	Users        services.UserStore
	Profiles     services.PatientProfileStore
	Appointments services.AppointmentStore
	DB           controllers.Pinger
	Tokens       *security.TokenManager
	Passwords    services.Passwords
	Logger       zerolog.Logger
	CORSOrigins  []string
}

type Controllers struct {
	Auth           *controllers.AuthController
	Users          *controllers.UserController
	MedicalProfile *controllers.MedicalProfileController
	Appointments   *controllers.AppointmentController
	Admin          *controllers.AdminController
	Health         *controllers.HealthController
}

func NewControllers(d Deps) Controllers {
	accounts := services.NewAccounts(d.Users, d.Passwords, d.Logger)
	return Controllers{
		Auth:           controllers.NewAuthController(services.NewAuth(d.Users, d.Tokens, d.Passwords, d.Logger)),
		Users:          controllers.NewUserController(accounts),
		MedicalProfile: controllers.NewMedicalProfileController(services.NewPatientProfiles(d.Profiles, d.Logger)),
		Appointments:   controllers.NewAppointmentController(services.NewAppointments(d.Appointments, d.Users, d.Logger)),
		Admin:          controllers.NewAdminController(services.NewAdmin(accounts, d.Users, d.Profiles, d.Appointments, d.Logger)),
		Health:         controllers.NewHealthController(d.DB),
	}
}

// NewRouter builds the engine with the middleware stack and every route.
func NewRouter(d Deps) *gin.Engine {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		apperr.RegisterJSONNames(v)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(security.RequestLogger(d.Logger))
	r.Use(security.CORSMiddleware(d.CORSOrigins))
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	APIRoutes(r.Group("/api"), NewControllers(d), security.AuthMiddleware(d.Tokens, d.Users))
	return r
}

func APIRoutes(rg *gin.RouterGroup, h Controllers, auth gin.HandlerFunc) {
	// Health check endpoint (no auth required)
	rg.GET("/health", h.Health.HealthCheck)

	// Public endpoints
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/login/", h.Auth.Login)
		authGroup.POST("/refresh/", h.Auth.Refresh)
	}

	users := rg.Group("/users")
	{
		users.POST("/", h.Users.Register)
		users.GET("/doctors/", h.Users.ListDoctors)
		users.GET("/profile/", auth, h.Users.GetProfile)
		users.PATCH("/profile/", auth, h.Users.UpdateProfile)
		users.PUT("/profile/", auth, h.Users.UpdateProfile)
	}

	// Protected endpoints (all authenticated users)
	protected := rg.Group("")
	protected.Use(auth)
	{
		protected.GET("/my-medical-profile/", h.MedicalProfile.Get)
		protected.PATCH("/my-medical-profile/", h.MedicalProfile.Update)

		appointments := protected.Group("/appointments")
		appointments.GET("/", h.Appointments.List)
		appointments.POST("/", h.Appointments.Create)
		appointments.GET("/:id/", h.Appointments.Get)
		appointments.PATCH("/:id/", h.Appointments.Update)
		appointments.PUT("/:id/", h.Appointments.Update)
		appointments.DELETE("/:id/", h.Appointments.Delete)
	}

	admin := rg.Group("/admin")
	admin.Use(auth, security.RequireRole(models.RoleAdmin))
	{
		admin.GET("/users/", h.Admin.ListUsers)
		admin.GET("/users/:id/", h.Admin.GetUser)
		admin.PATCH("/users/:id/", h.Admin.UpdateUser)
		admin.DELETE("/users/:id/", h.Admin.DeleteUser)
		admin.GET("/appointments/", h.Admin.ListAppointments)
		admin.GET("/patient-profiles/", h.Admin.ListPatientProfiles)
	}
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/edupredict/edupredict/internal/edu/domain"
	"github.com/edupredict/edupredict/internal/edu/service"
	"github.com/edupredict/edupredict/internal/edu/store"
	"github.com/edupredict/edupredict/pkg/httpx"
	"github.com/edupredict/edupredict/pkg/jwtx"
	"github.com/edupredict/edupredict/pkg/slogx"
	"github.com/redis/go-redis/v9"

	_ "github.com/edupredict/edupredict/api/docs" // Swagger docs
	httpSwagger "github.com/swaggo/http-swagger"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	verifier     jwtx.Verifier
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store store.Store
	cache *redis.Client

	AuthService         *service.AuthService
	UserService         *service.UserService
	MFAService          *service.MFAService
	StudentService      *service.StudentService
	CourseService       *service.CourseService
	GradeService        *service.GradeService
	AttendanceService   *service.AttendanceService
	NotificationService *service.NotificationService
	AnalyticsService    *service.AnalyticsService
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	cache *redis.Client,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		verifier:     verifier,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		cache:        cache,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerMFA()
	r.registerUsers()
	r.registerStudents()
	r.registerCourses()
	r.registerGrades()
	r.registerAttendance()
	r.registerNotifications()
	r.registerAnalytics()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			EduPredict API
//	@version		0.1.0
//	@description	Role-based educational administration service: accounts and sessions, student records, courses and rosters, grades, attendance, notifications and precomputed analytics.
//	@description
//	@description				Access tokens are EdDSA-signed JWTs carrying the user's single role. Refresh tokens are opaque and rotate on every use.
//
//	@license.name				MIT
//	@license.url				https://opensource.org/licenses/MIT
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				JWT access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	h := &AuthHandler{
		AuthService: r.AuthService,
		UserService: r.UserService,
	}

	// Credential-bearing endpoints get the strict IP limit to slow brute force.
	r.Mux.Handle("POST /v1/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleMFAExchange),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Token plumbing is unauthenticated by design; possession of the
	// refresh token is the credential.
	r.Mux.Handle("POST /v1/auth/refresh",
		httpx.Chain(http.HandlerFunc(h.HandleRefresh),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/revoke",
		httpx.Chain(http.HandlerFunc(h.HandleRevoke),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	r.Mux.Handle("GET /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("PATCH /v1/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateMe),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("POST /v1/auth/password",
		httpx.Chain(http.HandlerFunc(h.HandleChangePassword),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerMFA() {
	h := &MFAHandler{MFAService: r.MFAService}

	r.Mux.Handle("POST /v1/auth/mfa/enroll",
		httpx.Chain(http.HandlerFunc(h.HandleEnroll),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)

	// strict limit: prevents brute forcing TOTP codes
	r.Mux.Handle("POST /v1/auth/mfa/verify",
		httpx.Chain(http.HandlerFunc(h.HandleVerify),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
	r.Mux.Handle("DELETE /v1/auth/mfa",
		httpx.Chain(http.HandlerFunc(h.HandleDisable),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	adminOnly := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleAdmin.String()),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/users", adminOnly(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/users", adminOnly(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/users/{id}", adminOnly(h.HandleGet, httpx.LenientLimit))
	r.Mux.Handle("PATCH /v1/users/{id}/active", adminOnly(h.HandleSetActive, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/users/{id}", adminOnly(h.HandleDelete, httpx.ModerateLimit))
}

func (r *Router) registerStudents() {
	h := &StudentsHandler{
		StudentService:    r.StudentService,
		GradeService:      r.GradeService,
		AttendanceService: r.AttendanceService,
		AnalyticsService:  r.AnalyticsService,
	}

	secured := func(next http.HandlerFunc, limit httpx.RateLimitConfig, roles ...string) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(roles...),
			httpx.RateLimitByUser(limit),
		)
	}

	student := domain.RoleStudent.String()
	teacher := domain.RoleTeacher.String()
	admin := domain.RoleAdmin.String()
	analyst := domain.RoleAnalyst.String()

	r.Mux.Handle("GET /v1/students",
		secured(h.HandleList, httpx.LenientLimit, teacher, admin))
	r.Mux.Handle("POST /v1/students",
		secured(h.HandleCreate, httpx.ModerateLimit, admin))
	r.Mux.Handle("GET /v1/students/{id}",
		secured(h.HandleGet, httpx.LenientLimit, student, teacher, admin))
	r.Mux.Handle("PATCH /v1/students/{id}",
		secured(h.HandleUpdate, httpx.ModerateLimit, admin))
	r.Mux.Handle("DELETE /v1/students/{id}",
		secured(h.HandleDelete, httpx.ModerateLimit, admin))

	// Per-student read views. The handlers enforce the "students see only
	// their own" rule; the role gate here is the coarse filter.
	r.Mux.Handle("GET /v1/students/{id}/grades",
		secured(h.HandleListGrades, httpx.LenientLimit, student, teacher, admin))
	r.Mux.Handle("GET /v1/students/{id}/attendance",
		secured(h.HandleListAttendance, httpx.LenientLimit, student, teacher, admin))
	r.Mux.Handle("GET /v1/students/{id}/predictions",
		secured(h.HandleListPredictions, httpx.LenientLimit, student, teacher, admin, analyst))
}

func (r *Router) registerCourses() {
	coursesHandler := &CoursesHandler{CourseService: r.CourseService}

	teacher := domain.RoleTeacher.String()
	admin := domain.RoleAdmin.String()

	// Course reads are open to any authenticated user; students browse the
	// catalog too.
	r.Mux.Handle("GET /v1/courses",
		httpx.Chain(http.HandlerFunc(coursesHandler.HandleList),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /v1/courses/{id}",
		httpx.Chain(http.HandlerFunc(coursesHandler.HandleGet),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)

	staff := func(next http.HandlerFunc, limit httpx.RateLimitConfig, roles ...string) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(roles...),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/courses",
		staff(coursesHandler.HandleCreate, httpx.ModerateLimit, teacher, admin))
	r.Mux.Handle("PATCH /v1/courses/{id}",
		staff(coursesHandler.HandleUpdate, httpx.ModerateLimit, teacher, admin))
	r.Mux.Handle("DELETE /v1/courses/{id}",
		staff(coursesHandler.HandleDelete, httpx.ModerateLimit, admin))

	r.Mux.Handle("POST /v1/courses/{id}/enrollments",
		staff(coursesHandler.HandleEnroll, httpx.ModerateLimit, teacher, admin))
	r.Mux.Handle("GET /v1/courses/{id}/enrollments",
		staff(coursesHandler.HandleRoster, httpx.LenientLimit, teacher, admin))
	r.Mux.Handle("DELETE /v1/courses/{id}/enrollments/{studentID}",
		staff(coursesHandler.HandleUnenroll, httpx.ModerateLimit, teacher, admin))
}

func (r *Router) registerGrades() {
	h := &GradesHandler{
		GradeService:  r.GradeService,
		CourseService: r.CourseService,
	}

	staff := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleTeacher.String(), domain.RoleAdmin.String()),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/grades", staff(h.HandleCreate, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /v1/grades/{id}", staff(h.HandleUpdate, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/grades/{id}", staff(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/courses/{id}/grades", staff(h.HandleListByCourse, httpx.LenientLimit))
}

func (r *Router) registerAttendance() {
	h := &AttendanceHandler{
		AttendanceService: r.AttendanceService,
		CourseService:     r.CourseService,
	}

	staff := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleTeacher.String(), domain.RoleAdmin.String()),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/attendance", staff(h.HandleRecord, httpx.ModerateLimit))
	r.Mux.Handle("PATCH /v1/attendance/{id}", staff(h.HandleUpdateStatus, httpx.ModerateLimit))
	r.Mux.Handle("DELETE /v1/attendance/{id}", staff(h.HandleDelete, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/courses/{id}/attendance", staff(h.HandleListByCourse, httpx.LenientLimit))
}

func (r *Router) registerNotifications() {
	h := &NotificationsHandler{NotificationService: r.NotificationService}

	authed := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("GET /v1/notifications", authed(h.HandleList, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/notifications/{id}/read", authed(h.HandleMarkRead, httpx.LenientLimit))
	r.Mux.Handle("POST /v1/notifications/read-all", authed(h.HandleMarkAllRead, httpx.ModerateLimit))

	r.Mux.Handle("POST /v1/notifications",
		httpx.Chain(http.HandlerFunc(h.HandleSend),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleAdmin.String()),
			httpx.RateLimitByUser(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAnalytics() {
	h := &AnalyticsHandler{
		AnalyticsService:    r.AnalyticsService,
		NotificationService: r.NotificationService,
	}

	analystOrAdmin := func(next http.HandlerFunc, limit httpx.RateLimitConfig) http.Handler {
		return httpx.Chain(next,
			httpx.AuthnMiddleware(r.verifier),
			httpx.RequireAnyRole(domain.RoleAnalyst.String(), domain.RoleAdmin.String()),
			httpx.RateLimitByUser(limit),
		)
	}

	r.Mux.Handle("POST /v1/analytics/predictions", analystOrAdmin(h.HandleIngest, httpx.ModerateLimit))
	r.Mux.Handle("GET /v1/analytics/predictions", analystOrAdmin(h.HandleListByKind, httpx.LenientLimit))

	// Every role has a dashboard, so the endpoint is open to all of them.
	r.Mux.Handle("GET /v1/analytics/dashboard",
		httpx.Chain(http.HandlerFunc(h.HandleDashboard),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store, r.cache),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

// internal/app/bootstrap/routes.go
package bootstrap

import (
	"context"
	"net/http"

	calendarfeature "github.com/dalemusser/studypal/internal/app/features/calendar"
	dashboardfeature "github.com/dalemusser/studypal/internal/app/features/dashboard"
	errorsfeature "github.com/dalemusser/studypal/internal/app/features/errors"
	filesfeature "github.com/dalemusser/studypal/internal/app/features/files"
	groupsfeature "github.com/dalemusser/studypal/internal/app/features/groups"
	healthfeature "github.com/dalemusser/studypal/internal/app/features/health"
	materialsfeature "github.com/dalemusser/studypal/internal/app/features/materials"
	notificationsfeature "github.com/dalemusser/studypal/internal/app/features/notifications"
	profilefeature "github.com/dalemusser/studypal/internal/app/features/profile"
	sessionfeature "github.com/dalemusser/studypal/internal/app/features/session"
	tagsfeature "github.com/dalemusser/studypal/internal/app/features/tags"
	eventstore "github.com/dalemusser/studypal/internal/app/store/events"
	groupfilestore "github.com/dalemusser/studypal/internal/app/store/groupfiles"
	messagestore "github.com/dalemusser/studypal/internal/app/store/groupmessages"
	groupstore "github.com/dalemusser/studypal/internal/app/store/groups"
	materialstore "github.com/dalemusser/studypal/internal/app/store/materials"
	membershipstore "github.com/dalemusser/studypal/internal/app/store/memberships"
	notificationstore "github.com/dalemusser/studypal/internal/app/store/notifications"
	tagstore "github.com/dalemusser/studypal/internal/app/store/tags"
	userstore "github.com/dalemusser/studypal/internal/app/store/users"
	"github.com/dalemusser/studypal/internal/app/system/auth"
	"github.com/dalemusser/studypal/internal/app/system/metrics"
	"github.com/dalemusser/studypal/internal/app/system/profiles"
	"github.com/dalemusser/studypal/internal/app/system/ratelimit"
	"github.com/dalemusser/studypal/internal/app/system/txn"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup, and
// Startup have completed. Stores are built once here and shared by the
// feature handlers that need them.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	sessionMgr, err := auth.NewSessionManager(auth.Config{
		SessionKey:  appCfg.SessionKey,
		SessionName: appCfg.SessionName,
		Domain:      appCfg.SessionDomain,
		MaxAge:      appCfg.SessionMaxAge,
		Secure:      coreCfg.Env == "prod",
		TokenSecret: appCfg.TokenSecret,
		TokenIssuer: appCfg.TokenIssuer,

		CSRFKey:        appCfg.CSRFKey,
		TrustedOrigins: appCfg.CSRFTrustedOrigins,
	}, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	tags := tagstore.New(db)
	materials := materialstore.New(db)
	events := eventstore.New(db)
	notifications := notificationstore.New(db)
	groups := groupstore.New(db)
	memberships := membershipstore.New(db)
	messages := messagestore.New(db)
	groupFiles := groupfilestore.New(db)

	m := runtime.metrics
	if m == nil {
		m = metrics.New()
	}
	provisioner := &profiles.Provisioner{Users: users, Tags: tags, Log: logger}
	errLog := errorsfeature.NewErrorLogger(logger)

	r := chi.NewRouter()
	r.Use(m.Middleware)

	// Loads the SessionUser (bearer token or cookie) into the request context.
	r.Use(sessionMgr.LoadSessionUser)

	// Cookie-authenticated writes must carry the CSRF token.
	r.Use(sessionMgr.ProtectCookies)

	// Operations
	healthHandler := healthfeature.NewHandler(healthfeature.MongoPinger{Client: deps.MongoClient}, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	r.Handle("/metrics", m.Handler())

	sessionHandler := sessionfeature.NewHandler(sessionMgr, errLog, logger)
	var signInLimit func(http.Handler) http.Handler
	if runtime.signInLimit != nil {
		signInLimit = runtime.signInLimit.Middleware(ratelimit.KeyByIP(appCfg.TrustProxyHeaders))
	}
	r.Mount("/session", sessionfeature.Routes(sessionHandler, signInLimit))

	// Profile and tags
	profileHandler := profilefeature.NewHandler(users, tags, provisioner, errLog, logger)
	r.Mount("/user", profilefeature.Routes(profileHandler, sessionMgr))
	r.Mount("/onboarding", profilefeature.OnboardingRoutes(profileHandler, sessionMgr))

	tagsHandler := tagsfeature.NewHandler(tags, errLog, logger)
	r.Mount("/tags", tagsfeature.Routes(tagsHandler, sessionMgr))

	// Materials and the files behind them
	materialSvc := &materialsfeature.Service{
		Materials: materials,
		Tags:      tags,
		Profiles:  provisioner,
		Blobs:     deps.Blobs,
		Activity:  deps.Activity,
		Metrics:   m,
		Log:       logger,
	}
	materialsHandler := materialsfeature.NewHandler(materialSvc, errLog, logger)
	r.Mount("/materials", materialsfeature.Routes(materialsHandler, sessionMgr))

	filesHandler := filesfeature.NewHandler(deps.Blobs, appCfg.MaxUploadSize, appCfg.StorageQuota, errLog, logger)
	r.Mount("/files", filesfeature.Routes(filesHandler, sessionMgr))

	// Calendar
	calendarHandler := calendarfeature.NewHandler(events, notifications, errLog, logger)
	r.Mount("/events", calendarfeature.Routes(calendarHandler, sessionMgr))
	r.Mount("/calendar", calendarfeature.CalendarRoutes(calendarHandler, sessionMgr))

	notificationsHandler := notificationsfeature.NewHandler(notifications, errLog, logger)
	r.Mount("/notifications", notificationsfeature.Routes(notificationsHandler, sessionMgr))

	// Study groups
	groupsHandler := groupsfeature.NewHandler(groupsfeature.Deps{
		Groups:        groups,
		Members:       memberships,
		Messages:      messages,
		Files:         groupFiles,
		Notifications: notifications,
		Blobs:         deps.Blobs,
		Bus:           deps.Bus,
		ChatLimiter:   runtime.chatLimiter,
		Metrics:       m,
		MaxUpload:     appCfg.MaxUploadSize,
		Quota:         appCfg.StorageQuota,
		RunTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return txn.Run(ctx, db, logger, fn)
		},
	}, errLog, logger)
	r.Mount("/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	// Dashboard (/stats, /storage)
	dashboardHandler := dashboardfeature.NewHandler(materials, events, memberships, groupFiles,
		deps.Blobs, appCfg.StorageQuota, errLog, logger)
	r.Mount("/", dashboardfeature.Routes(dashboardHandler, sessionMgr))

	return r, nil
}

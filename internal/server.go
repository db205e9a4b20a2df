package internal

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fitstack/gymtracker/internal/analytics"
	"github.com/fitstack/gymtracker/internal/auth"
	"github.com/fitstack/gymtracker/internal/config"
	"github.com/fitstack/gymtracker/internal/db"
	"github.com/fitstack/gymtracker/internal/exercises"
	"github.com/fitstack/gymtracker/internal/instrumentation"
	"github.com/fitstack/gymtracker/internal/measurements"
	"github.com/fitstack/gymtracker/internal/members"
	"github.com/fitstack/gymtracker/internal/middleware"
	"github.com/fitstack/gymtracker/internal/workouts"
	"github.com/fitstack/gymtracker/pkg"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.uber.org/multierr"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config *config.Config
	dbPool *pgxpool.Pool

	redisClient *redis.Client
	gate        *auth.Gate
	membersRepo *members.Repo

	instr        *instrumentation.Instrumentation
	promRegistry *prometheus.Registry
}

type NewServerParams struct {
	Config        *config.Config
	VersionInfo   string
	RedisPassword string
}

func NewServer(ctx context.Context, params NewServerParams) (*Server, error) {
	dbPool, err := db.NewPool(ctx, db.PoolParams{
		Host:           params.Config.PostgresHost,
		Port:           params.Config.PostgresPort,
		Name:           params.Config.PostgresDBName,
		TracingEnabled: params.Config.TracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": params.Config.PostgresDBName},
	))
	instr := instrumentation.NewInstrumentationWithRegisterer("gymtracker", "backend", promRegistry)
	instr.GaugeLifeSignal.Set(0)

	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(params.Config.RedisHost, params.Config.RedisPort),
		Password: params.RedisPassword,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}

	membersRepo := members.NewRepo(dbPool)

	return &Server{
		config:       params.Config,
		versionInfo:  params.VersionInfo,
		dbPool:       dbPool,
		redisClient:  rdb,
		gate:         auth.NewGate(membersRepo),
		membersRepo:  membersRepo,
		instr:        instr,
		promRegistry: promRegistry,
	}, nil
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("main-router"))

	r.HandleFunc("/health", s.handleHealth).Methods("GET", "OPTIONS").Name("health")
	r.HandleFunc("/version", s.handleVersion).Methods("GET", "OPTIONS").Name("version")

	reqRateLimiter := redis_rate.NewLimiter(s.redisClient)
	loginRateLimit := middleware.RateLimit(
		reqRateLimiter, "login", s.config.LoginRateLimitAllowedPerMin,
	)
	registerRateLimit := middleware.RateLimit(
		reqRateLimiter, "register_admin", s.config.LoginRateLimitAllowedPerMin,
	)

	membersHandler := members.NewHandler(s.membersRepo, s.gate, s.instr)
	r.Handle("/login", loginRateLimit(http.HandlerFunc(membersHandler.HandleLogin))).
		Methods("POST", "OPTIONS").Name("login")
	r.Handle("/register_admin", registerRateLimit(http.HandlerFunc(membersHandler.HandleRegisterAdmin))).
		Methods("POST", "OPTIONS").Name("register-admin")
	r.HandleFunc("/me", membersHandler.HandleMe).Methods("GET", "OPTIONS").Name("me")
	r.HandleFunc("/members", membersHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-member")
	r.HandleFunc("/members", membersHandler.HandleList).Methods("GET", "OPTIONS").Name("list-members")
	r.HandleFunc("/members/name/{name}", membersHandler.HandleListByName).Methods("GET", "OPTIONS").Name("members-by-name")
	r.HandleFunc("/members/gender/{gender}", membersHandler.HandleListByGender).Methods("GET", "OPTIONS").Name("members-by-gender")
	r.HandleFunc("/members/{id}", membersHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-member")
	r.HandleFunc("/members/{id}", membersHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-member")
	r.HandleFunc("/members/{id}", membersHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-member")

	exercisesHandler := exercises.NewHandler(exercises.NewRepo(s.dbPool))
	r.HandleFunc("/exercises", exercisesHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-exercise")
	r.HandleFunc("/exercises", exercisesHandler.HandleList).Methods("GET", "OPTIONS").Name("list-exercises")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleGet).Methods("GET", "OPTIONS").Name("get-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-exercise")
	r.HandleFunc("/exercises/{id}", exercisesHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-exercise")

	workoutsRepo := workouts.NewRepo(s.dbPool)
	workoutsHandler := workouts.NewHandler(workoutsRepo)
	r.HandleFunc("/sessions", workoutsHandler.HandleAddSession).Methods("POST", "OPTIONS").Name("new-session")
	r.HandleFunc("/sessions/member/{memberId}", workoutsHandler.HandleSessionsForMember).Methods("GET", "OPTIONS").Name("member-sessions")
	r.HandleFunc("/sessions/{id}", workoutsHandler.HandleUpdateSession).Methods("PUT", "OPTIONS").Name("update-session")
	r.HandleFunc("/sessions/{id}", workoutsHandler.HandleDeleteSession).Methods("DELETE", "OPTIONS").Name("remove-session")
	r.HandleFunc("/logs", workoutsHandler.HandleAddLog).Methods("POST", "OPTIONS").Name("new-log")
	r.HandleFunc("/logs/session/{sessionId}", workoutsHandler.HandleLogsForSession).Methods("GET", "OPTIONS").Name("session-logs")
	r.HandleFunc("/logs/{id}", workoutsHandler.HandleUpdateLog).Methods("PUT", "OPTIONS").Name("update-log")
	r.HandleFunc("/logs/{id}", workoutsHandler.HandleDeleteLog).Methods("DELETE", "OPTIONS").Name("remove-log")

	measurementsRepo := measurements.NewRepo(s.dbPool)
	measurementsHandler := measurements.NewHandler(measurementsRepo)
	r.HandleFunc("/measurements", measurementsHandler.HandleAdd).Methods("POST", "OPTIONS").Name("new-measurement")
	r.HandleFunc("/measurements/member/{memberId}", measurementsHandler.HandleForMember).Methods("GET", "OPTIONS").Name("member-measurements")
	r.HandleFunc("/measurements/{id}", measurementsHandler.HandleUpdate).Methods("PUT", "OPTIONS").Name("update-measurement")
	r.HandleFunc("/measurements/{id}", measurementsHandler.HandleDelete).Methods("DELETE", "OPTIONS").Name("remove-measurement")

	analyticsHandler := analytics.NewHandler(
		analytics.NewAnalyzer(workoutsRepo, workoutsRepo, measurementsRepo),
	)
	r.HandleFunc("/analytics/weekly_volume", analyticsHandler.HandleWeeklyVolume).Methods("GET", "OPTIONS").Name("weekly-volume")
	r.HandleFunc("/analytics/weekly_duration", analyticsHandler.HandleWeeklyDuration).Methods("GET", "OPTIONS").Name("weekly-duration")
	r.HandleFunc("/analytics/monthly_measurements", analyticsHandler.HandleMonthlyMeasurements).Methods("GET", "OPTIONS").Name("monthly-measurements")
	r.HandleFunc("/analytics/top_exercises", analyticsHandler.HandleTopExercises).Methods("GET", "OPTIONS").Name("top-exercises")

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	authMiddleware := middleware.NewAuthMiddlewareHandler(s.gate)

	r.Use(middleware.PanicRecovery(s.instr))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.instr))
	r.Use(middleware.Cors())
	r.Use(authMiddleware.AuthCheck())
	r.Use(middleware.DrainAndCloseRequest())

	return r
}

func (s *Server) Serve(_ context.Context, host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.HandlerFor(
		s.promRegistry,
		promhttp.HandlerOpts{},
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	s.instr.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() error {
	log.Debug("graceful shutdown initiated ...")

	s.instr.GaugeLifeSignal.Set(0)

	var shutdownErr error

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
			shutdownErr = multierr.Append(shutdownErr, err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
			shutdownErr = multierr.Append(shutdownErr, err)
		}
	}
	log.Warnln("server shut down")

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
			shutdownErr = multierr.Append(shutdownErr, err)
		}
	}
	log.Warnln("metrics server shut down")

	return shutdownErr
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteJSONResponseOK(w, fmt.Sprintf(
		`{"status":"ok","time":%q}`,
		time.Now().UTC().Format(time.RFC3339),
	))
}

func (s *Server) handleVersion(w http.ResponseWriter, _ *http.Request) {
	pkg.WriteTextResponseOK(w, s.versionInfo)
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.instr.GaugeRequests.Add(1)
	case http.StateClosed:
		s.instr.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}

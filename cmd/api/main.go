package main

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"meetcal/cmd/internal/domain/sqlite"
	"meetcal/cmd/internal/domain/sqlite/repository"
	"meetcal/cmd/internal/events"
	cognitoclient "meetcal/cmd/internal/integration/aws/cognito"
	"meetcal/cmd/internal/maintenance"
	"meetcal/cmd/internal/routes"
	"meetcal/cmd/internal/service"
	"meetcal/cmd/internal/utils/validators"
)

func main() {
	validate := validator.New()
	registerValidators(validate)

	err := godotenv.Load()
	if err != nil {
		log.Fatal("failed to load .env file", err)
	}

	// Init SQLite
	db, err := sqlite.Init(envOr("DB_PATH", "./database.db"))
	if err != nil {
		log.Fatal("failed to initialize database", err)
	}

	// Cognito client
	cogClient, err := cognitoclient.InitCognitoClient()
	if err != nil {
		log.Fatal("failed to initialize cognito client", err)
	}

	// Getting repositories
	userRepo := repository.NewUserRepository(db)
	calRepo := repository.NewCalendarRepository(db)
	meetingRepo := repository.NewMeetingRepository(db)

	// Event bus with a logging subscriber; directory indexers hook in here.
	bus := events.NewBus()
	go logEvents(bus.Subscribe(64))

	// Getting services
	userService := service.NewUserService(userRepo, validate, cogClient)
	calService := service.NewCalendarService(calRepo, userRepo, validate, bus)
	meetingService := service.NewMeetingService(meetingRepo, calRepo, userRepo, validate, bus)

	// Getting routes
	userRoutes := routes.NewUserDefault(userService)
	calRoutes := routes.NewCalendarDefault(calService)
	meetingRoutes := routes.NewMeetingDefault(meetingService)

	// Nightly cleanup of cancelled meetings
	sweeper := maintenance.NewSweeper(meetingRepo, envIntOr("SWEEP_RETENTION_DAYS", 30))
	if err := sweeper.Start(); err != nil {
		log.Fatal("failed to start maintenance sweeper", err)
	}
	defer sweeper.Stop()

	e := echo.New()
	e.Use(middleware.CORS())

	// Calendars
	e.POST("/api/calendars", calRoutes.CreateCalendar)
	e.GET("/api/calendars/:username", calRoutes.GetCalendar)
	e.GET("/api/calendars/:username/availability", calRoutes.GetAvailability)
	e.PUT("/api/calendars/:username/availability", calRoutes.SetAvailability)

	// Meetings
	e.GET("/api/calendars/:username/meetings", meetingRoutes.GetMeetings)
	e.POST("/api/calendars/:username/meetings", meetingRoutes.BookMeeting)
	e.DELETE("/api/calendars/:username/meetings", meetingRoutes.CancelMeeting)

	// Users
	e.GET("/api/users", userRoutes.GetUsers)
	e.GET("/api/users/:id", userRoutes.GetUser)
	e.POST("/api/users", userRoutes.CreateUser)
	e.POST("/api/users/login", userRoutes.CreateLogin)
	e.POST("/api/users/verify", userRoutes.VerifySignup)

	err = e.Start(":" + envOr("PORT", "6060"))
	if err != nil {
		e.Logger.Fatal(err)
	}
}

func registerValidators(validate *validator.Validate) {
	_ = validate.RegisterValidation("hasupper", validators.HasUpper)
	_ = validate.RegisterValidation("haslower", validators.HasLower)
	_ = validate.RegisterValidation("hasdigit", validators.HasDigit)
	_ = validate.RegisterValidation("hasspecial", validators.HasSpecial)
	_ = validate.RegisterValidation("nospaces", validators.NoWhiteSpaces)
	_ = validate.RegisterValidation("clocktime", validators.ClockTime)
}

func logEvents(ch <-chan events.Event) {
	for e := range ch {
		log.Infof("event %s: %s calendar=%d actor=%d", e.ID, e.Type, e.CalendarID, e.ActorID)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s must be an integer, got %q", key, v)
	}
	return n
}

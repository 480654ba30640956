package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware" // Alias to avoid conflict
	"github.com/go-chi/cors"

	"github.com/sportsync/matchday/handlers"
	"github.com/sportsync/matchday/middleware"
)

type Handlers struct {
	Tournament   *handlers.TournamentHandler
	Schedule     *handlers.ScheduleHandler
	Result       *handlers.ResultHandler
	Standings    *handlers.StandingsHandler
	Announcement *handlers.AnnouncementHandler
	WebSocket    *handlers.WebSocketHandler
	Poll         *handlers.PollHandler
}

func SetupRoutes(router *chi.Mux, h Handlers, jwtSecret []byte) {
	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.RealIP)
	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	router.Use(middleware.Authenticate(jwtSecret))

	router.Route("/tournaments", func(r chi.Router) {
		// Публичные маршруты для просмотра (видимость решает сервис)
		r.Get("/{tournamentID}", h.Tournament.Get)
		r.Get("/{tournamentID}/fixtures", h.Schedule.List)
		r.Get("/{tournamentID}/standings", h.Standings.Get)
		r.Get("/{tournamentID}/updates", h.Poll.Updates)

		// Защищенные маршруты для организаторов
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser)

			r.Post("/", h.Tournament.Create)
			r.Post("/{tournamentID}/publish", h.Tournament.Publish)
			r.Post("/{tournamentID}/fixtures", h.Schedule.Generate)
			r.Post("/{tournamentID}/announcements", h.Announcement.Post)
		})
	})

	router.Route("/fixtures", func(r chi.Router) {
		r.Use(middleware.RequireUser)

		r.Post("/{fixtureID}/reschedule", h.Schedule.Reschedule)
		r.Post("/{fixtureID}/result", h.Result.Finalize)
		r.Put("/{fixtureID}/result", h.Result.Correct)
		r.Delete("/{fixtureID}/result", h.Result.Delete)
	})

	router.Get("/ws/tournaments/{tournamentID}/{topic}", h.WebSocket.ServeWs)
	router.Get("/broadcast/stats", h.Poll.Stats)
}

package routes

import (
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/narunbabu/chess-sub009/handlers"
	"github.com/narunbabu/chess-sub009/middleware"
)

type Handlers struct {
	Match     *handlers.MatchHandler
	Schedule  *handlers.ScheduleHandler
	LiveStart *handlers.LiveStartHandler
	Standings *handlers.StandingsHandler
	Pairing   *handlers.PairingHandler
	Presence  *handlers.PresenceHandler
	WebSocket *handlers.WebSocketHandler
}

func SetupRoutes(h Handlers, jwtSecret string) *chi.Mux {
	router := chi.NewRouter()

	router.Use(chiMiddleware.Logger)
	router.Use(chiMiddleware.Recoverer)

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Group(func(r chi.Router) {
		r.Use(middleware.Authenticate(jwtSecret))

		r.Get("/ws", h.WebSocket.Serve)

		r.Route("/matches", func(r chi.Router) {
			r.Get("/my", h.Match.ListMyMatches)
			r.Get("/{matchID}", h.Match.GetMatch)
			r.Delete("/{matchID}", h.Match.DeleteMatch)
			r.Post("/{matchID}/game", h.Match.CreateGame)
			r.Post("/{matchID}/result", h.Match.ReportResult)

			r.Get("/{matchID}/proposal", h.Schedule.GetActiveProposal)
			r.Post("/{matchID}/proposal", h.Schedule.Propose)

			r.Post("/{matchID}/live-start", h.LiveStart.Send)
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/{proposalID}/accept", h.Schedule.Accept)
			r.Post("/{proposalID}/alternative", h.Schedule.ProposeAlternative)
			r.Post("/{proposalID}/accept-alternative", h.Schedule.AcceptAlternative)
		})

		r.Route("/live-start-requests", func(r chi.Router) {
			r.Get("/incoming", h.LiveStart.ListIncoming)
			r.Post("/{requestID}/accept", h.LiveStart.Accept)
			r.Post("/{requestID}/decline", h.LiveStart.Decline)
		})

		r.Route("/championships/{championshipID}", func(r chi.Router) {
			r.Get("/matches", h.Match.ListChampionshipMatches)
			r.Post("/matches", h.Match.CreateMatch)
			r.Get("/standings", h.Standings.GetStandings)
			r.Post("/standings/export", h.Standings.ExportSnapshot)
			r.Get("/pairings/preview", h.Pairing.PreviewRound)
		})

		r.Get("/presence/{userID}", h.Presence.GetPresence)
		r.Post("/activity/ping", h.Presence.Ping)
	})

	return router
}

// Package http exposes the announcer over a small JSON API.
//
// The router exposes the following endpoints:
//   - GET /occurrences: upcoming published games. POST /occurrences (admin) creates a
//     one-off game exchanging the `occurrenceDTO` payload defined in game_handler.go.
//     Without `publish_at` the announcement is posted immediately.
//   - PUT /occurrences/{id}/date (admin): moves a game. Body: {"starts_at"}.
//   - POST /occurrences/{id}/publish (admin): publishes now. Responds with the
//     publication outcome, or 502 with `delivery_kind` when the channel refuses.
//   - GET /occurrences/{id}/preview (admin): the announcement text without posting it.
//   - GET /occurrences/{id}/registrations, POST /occurrences/{id}/registrations,
//     DELETE /occurrences/{id}/registrations/{participant_id}: roster view, join and
//     leave. Joining requires a completed registration.
//   - GET /templates, POST /templates, DELETE /templates/{id} (admin): recurrence
//     templates. Dates use "2006-01-02" in the configured time zone, times use "HH:MM".
//     Unparseable dates and timestamps are rejected with 422 per field.
//   - POST /participants, GET /participants/{id}: player registration.
//   - GET /stats (admin): participant totals, registered and incomplete.
//   - POST /archive, POST /spawn (admin): run the maintenance passes on demand.
//
// Admin endpoints require `Authorization: Bearer <token>`; `X-Admin-Name` names the
// operator recorded as the creator.
//
// Player writes (join, leave, register) trust the caller's participant id. When
// RouterConfig.Player is set they require the gateway's bearer token instead; without
// it the API must only be reachable through a trusted gateway such as the chat bot.
package http

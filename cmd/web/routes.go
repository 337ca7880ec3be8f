package main

import (
	"net/http"

	"github.com/justinas/alice"
)

func (app *application) routes() http.Handler {
	mux := http.NewServeMux()

	session := alice.New(app.sessionManager.LoadAndSave, app.assignUser)
	// SSE responses cannot use the buffering LoadAndSave wrapper.
	sse := alice.New(app.serverSentEventMiddleware, app.assignUser)

	mux.HandleFunc("GET /api/healthy", app.healthy)

	mux.Handle("GET /api/cases", session.ThenFunc(app.listCases))
	mux.Handle("POST /api/cases/{caseID}/accept", session.ThenFunc(app.acceptCase))
	mux.Handle("POST /api/cases/{caseID}/abandon", session.ThenFunc(app.abandonCase))
	mux.Handle("POST /api/cases/{caseID}/resolve", session.ThenFunc(app.resolveCase))
	mux.Handle("GET /api/user/cases", session.ThenFunc(app.userCases))

	mux.Handle("GET /api/evidence", session.ThenFunc(app.listEvidence))
	mux.Handle("POST /api/evidence", session.ThenFunc(app.collectEvidence))
	mux.Handle("POST /api/evidence/{evidenceID}/examine", session.ThenFunc(app.examineEvidence))
	mux.Handle("POST /api/evidence/connect", session.ThenFunc(app.connectEvidence))

	mux.Handle("GET /api/channels", session.ThenFunc(app.listChannels))
	mux.Handle("POST /api/channels/check", session.ThenFunc(app.checkChannels))
	mux.Handle("POST /api/channels/{channelID}/discover", session.ThenFunc(app.discoverChannel))
	mux.Handle("POST /api/channels/query", session.ThenFunc(app.openQueryWindow))

	mux.Handle("GET /api/relationship", session.ThenFunc(app.relationship))
	mux.Handle("POST /api/relationship/signals", session.ThenFunc(app.relationshipSignals))
	mux.Handle("POST /api/relationship/name", session.ThenFunc(app.chooseName))

	mux.Handle("POST /api/chat", session.ThenFunc(app.chat))
	mux.Handle("GET /api/chat/stream", sse.ThenFunc(app.streamChat))

	return app.recoverPanic(app.logRequest(secureHeaders(mux)))
}

package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/matheuspina/avaliatec/internal/crm/realtime"
	"github.com/matheuspina/avaliatec/internal/crm/service"
	"github.com/matheuspina/avaliatec/internal/crm/store"
	"github.com/matheuspina/avaliatec/pkg/access"
	"github.com/matheuspina/avaliatec/pkg/httpx"
	"github.com/matheuspina/avaliatec/pkg/jwtx"
	"github.com/matheuspina/avaliatec/pkg/slogx"

	_ "github.com/matheuspina/avaliatec/api/crm" // Swagger docs
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
	cache Pinger

	UserService       *service.UserService
	PermissionService *service.PermissionService
	GroupService      *service.GroupService
	InviteService     *service.InviteService
	BootstrapService  *service.BootstrapService
	ClientService     *service.ClientService
	InstanceService   *service.InstanceService
	MessageService    *service.MessageService
	WebhookService    *service.WebhookService
	Hub               *realtime.Hub
}

func NewRouter(
	verifier jwtx.Verifier,
	buildVersion string,
	st store.Store,
	cache Pinger,
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
	r.registerUsers()
	r.registerGroups()
	r.registerInvites()
	r.registerBootstrap()
	r.registerClients()
	r.registerWhatsApp()
	r.registerWebhooks()
	r.registerRealtime()
	r.registerSystem()

	r.Mux.Handle("/swagger/", httpSwagger.Handler())
}

// ServeHTTP implements http.Handler for Router and applies the global middleware chain.
//
//	@title			AvaliaTec API
//	@version		0.1.0
//	@description	Access control, CRM clients and WhatsApp customer service for AvaliaTec.
//	@description
//	@description				Identity tokens are issued by the external identity provider and signed with HS256.
//	@description				Permissions are resolved per application user from their group.
//
//	@contact.name				AvaliaTec Team
//	@contact.url				https://github.com/matheuspina/avaliatec
//
//	@host						localhost:8080
//	@BasePath					/
//
//	@schemes					http https
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Identity provider access token. Format: "Bearer {token}".
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// member authenticates the caller and resolves the application user.
func (r *Router) member(extra ...httpx.Middleware) []httpx.Middleware {
	mws := []httpx.Middleware{
		httpx.AuthnMiddleware(r.verifier),
		RequireUser(r.UserService),
	}
	return append(mws, extra...)
}

// section guards a route on the caller's permissions for s.
func (r *Router) section(s access.Section, limit httpx.RateLimitConfig) []httpx.Middleware {
	return r.member(RequireSection(r.PermissionService, s), httpx.RateLimitByUser(limit))
}

// admin guards a route on membership of the administrator group.
func (r *Router) admin(limit httpx.RateLimitConfig) []httpx.Middleware {
	return r.member(RequireAdmin(r.PermissionService), httpx.RateLimitByUser(limit))
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	// Any active user may read their own profile
	r.Mux.Handle("GET /v1/users/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.member(httpx.RateLimitByUser(httpx.LenientLimit))...,
		),
	)

	r.Mux.Handle("GET /v1/users",
		httpx.Chain(http.HandlerFunc(h.HandleList), r.section(access.Configuracoes, httpx.ModerateLimit)...),
	)
	r.Mux.Handle("PUT /v1/users/{id}",
		httpx.Chain(http.HandlerFunc(h.HandleUpdate), r.admin(httpx.ModerateLimit)...),
	)
}

func (r *Router) registerGroups() {
	h := &GroupsHandler{GroupService: r.GroupService}

	r.Mux.Handle("GET /v1/groups", httpx.Chain(http.HandlerFunc(h.HandleList), r.admin(httpx.ModerateLimit)...))
	r.Mux.Handle("POST /v1/groups", httpx.Chain(http.HandlerFunc(h.HandleCreate), r.admin(httpx.ModerateLimit)...))
	r.Mux.Handle("PUT /v1/groups/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), r.admin(httpx.ModerateLimit)...))
	r.Mux.Handle("DELETE /v1/groups/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), r.admin(httpx.ModerateLimit)...))
	r.Mux.Handle("GET /v1/groups/{id}/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleGetPermissions), r.admin(httpx.ModerateLimit)...),
	)
	r.Mux.Handle("PUT /v1/groups/{id}/permissions",
		httpx.Chain(http.HandlerFunc(h.HandleSavePermissions), r.admin(httpx.ModerateLimit)...),
	)
}

func (r *Router) registerInvites() {
	h := &InvitesHandler{InviteService: r.InviteService}

	r.Mux.Handle("POST /v1/invites", httpx.Chain(http.HandlerFunc(h.HandleCreate), r.admin(httpx.ModerateLimit)...))
	r.Mux.Handle("GET /v1/invites", httpx.Chain(http.HandlerFunc(h.HandleList), r.admin(httpx.ModerateLimit)...))
	r.Mux.Handle("DELETE /v1/invites/{id}", httpx.Chain(http.HandlerFunc(h.HandleCancel), r.admin(httpx.ModerateLimit)...))

	// Public token check - strict by IP to slow down token probing
	r.Mux.Handle("GET /v1/invites/validate",
		httpx.Chain(http.HandlerFunc(h.HandleValidate),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// Accepting only needs a verified identity; the application user may not exist yet
	r.Mux.Handle("POST /v1/invites/accept",
		httpx.Chain(http.HandlerFunc(h.HandleAccept),
			httpx.AuthnMiddleware(r.verifier),
			httpx.RateLimitByUser(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerBootstrap() {
	// POST /bootstrap - very strict rate limit by IP (one-time setup endpoint)
	bootstrapHandler := &BootstrapHandler{BootstrapService: r.BootstrapService}
	r.Mux.Handle("POST /v1/bootstrap",
		httpx.Chain(bootstrapHandler,
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)
}

func (r *Router) registerClients() {
	h := &ClientsHandler{ClientService: r.ClientService}
	guard := r.section(access.Clientes, httpx.LenientLimit)

	r.Mux.Handle("GET /v1/clients", httpx.Chain(http.HandlerFunc(h.HandleList), guard...))
	r.Mux.Handle("POST /v1/clients", httpx.Chain(http.HandlerFunc(h.HandleCreate), guard...))
	r.Mux.Handle("GET /v1/clients/{id}", httpx.Chain(http.HandlerFunc(h.HandleGet), guard...))
	r.Mux.Handle("PUT /v1/clients/{id}", httpx.Chain(http.HandlerFunc(h.HandleUpdate), guard...))
	r.Mux.Handle("DELETE /v1/clients/{id}", httpx.Chain(http.HandlerFunc(h.HandleDelete), guard...))
}

func (r *Router) registerWhatsApp() {
	ih := &InstancesHandler{InstanceService: r.InstanceService}
	mh := &MessagesHandler{MessageService: r.MessageService}
	guard := r.section(access.Atendimento, httpx.ModerateLimit)

	r.Mux.Handle("GET /v1/whatsapp/instances", httpx.Chain(http.HandlerFunc(ih.HandleList), guard...))
	r.Mux.Handle("POST /v1/whatsapp/instances", httpx.Chain(http.HandlerFunc(ih.HandleCreate), guard...))
	r.Mux.Handle("POST /v1/whatsapp/instances/{id}/connect", httpx.Chain(http.HandlerFunc(ih.HandleConnect), guard...))
	r.Mux.Handle("POST /v1/whatsapp/instances/{id}/disconnect", httpx.Chain(http.HandlerFunc(ih.HandleDisconnect), guard...))
	r.Mux.Handle("DELETE /v1/whatsapp/instances/{id}", httpx.Chain(http.HandlerFunc(ih.HandleDelete), guard...))

	// Conversations are read often while an agent has a chat open
	r.Mux.Handle("GET /v1/whatsapp/messages",
		httpx.Chain(http.HandlerFunc(mh.HandleList), r.section(access.Atendimento, httpx.LenientLimit)...),
	)
	r.Mux.Handle("GET /v1/whatsapp/contacts",
		httpx.Chain(http.HandlerFunc(mh.HandleContacts), r.section(access.Atendimento, httpx.LenientLimit)...),
	)
	// Per-instance pacing happens in the service; this only caps a single user
	r.Mux.Handle("POST /v1/whatsapp/messages",
		httpx.Chain(http.HandlerFunc(mh.HandleSend), r.section(access.Atendimento, httpx.LenientLimit)...),
	)
}

func (r *Router) registerWebhooks() {
	// Called by the gateway, which may burst during history sync
	r.Mux.Handle("POST /v1/webhooks/evolution",
		httpx.Chain(&WebhookHandler{WebhookService: r.WebhookService},
			httpx.RateLimitByIP(httpx.PublicLimit),
		),
	)
}

func (r *Router) registerRealtime() {
	r.Mux.Handle("GET /v1/realtime",
		httpx.Chain(RealtimeHandler(r.Hub), r.member(httpx.RateLimitByUser(httpx.ModerateLimit))...),
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

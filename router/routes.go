package router

import "github.com/sgdl/go-sgdl-client/users"

// Route names, mirroring the application's route table.
const (
	RouteDashboard        = "dashboard"
	RouteMapaCalor        = "mapa-calor"
	RouteDemandas         = "demandas"
	RouteDemandasNovo     = "demandas-novo"
	RouteDemandasEditar   = "demandas-editar"
	RouteDemandasDetalhes = "demandas-detalhes"
	RouteRelatorios       = "relatorios"
	RoutePerfil           = "perfil"
	RouteLogin            = "login"
	RouteResetConfirm     = "password-reset-confirm"
	RouteAccessDenied     = "accessDenied"
	RouteError            = "error"
	RouteNotFound         = "notfound"
)

// Navigation targets for forced redirects.
const (
	RootPath         = "/"
	LoginPath        = "/login"
	AccessDeniedPath = "/auth/access"
)

// Route is one entry of the application's route table. Public routes are
// reachable without a session; Perfis restricts a route to a profile set
// (empty means any authenticated user).
type Route struct {
	Name   string
	Path   string
	Public bool
	Perfis []users.Perfil
}

// RequiresAuth reports whether the route is gated on authentication.
func (r Route) RequiresAuth() bool {
	return !r.Public
}

// Routes is a route table keyed by name.
type Routes map[string]Route

// Lookup returns the route with the given name.
func (r Routes) Lookup(name string) (Route, bool) {
	route, ok := r[name]
	return route, ok
}

// DefaultRoutes returns the application's route table. The perfil
// restrictions follow the backend's authorization rules: dispatching is a
// protocol-office action, reports belong to managers and the protocol
// office.
func DefaultRoutes() Routes {
	list := []Route{
		{Name: RouteDashboard, Path: RootPath},
		{Name: RouteMapaCalor, Path: "/mapa-calor"},
		{Name: RouteDemandas, Path: "/demandas"},
		{Name: RouteDemandasNovo, Path: "/demandas/novo", Perfis: []users.Perfil{users.PerfilVereador, users.PerfilProtocolo}},
		{Name: RouteDemandasEditar, Path: "/demandas/editar/:id", Perfis: []users.Perfil{users.PerfilVereador, users.PerfilProtocolo}},
		{Name: RouteDemandasDetalhes, Path: "/demandas/detalhes/:id"},
		{Name: RouteRelatorios, Path: "/relatorios", Perfis: []users.Perfil{users.PerfilGestor, users.PerfilProtocolo}},
		{Name: RoutePerfil, Path: "/perfil"},
		{Name: RouteLogin, Path: LoginPath, Public: true},
		{Name: RouteResetConfirm, Path: "/password-reset-confirm/:token", Public: true},
		{Name: RouteAccessDenied, Path: AccessDeniedPath, Public: true},
		{Name: RouteError, Path: "/auth/error", Public: true},
		{Name: RouteNotFound, Path: "/pages/notfound", Public: true},
	}

	routes := make(Routes, len(list))
	for _, route := range list {
		routes[route.Name] = route
	}
	return routes
}

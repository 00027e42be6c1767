package server

import (
	"net/http"

	"github.com/jrsteele09/pcrs-client/users"
)

// exact anchors a trailing-slash route so it does not match sub-paths.
func exact(path string) string {
	return path + "{$}"
}

func (s *Server) initRoutes() {
	api := s.APIMiddleware
	authed := func(roles ...users.Role) []func(http.HandlerFunc) http.HandlerFunc {
		return s.APIMiddleware(s.RequireAuth(roles...))
	}

	// AUTH
	s.RegisterRouteHandler("POST "+exact(RouteToken), ChainMiddleware(s.TokenHandler(), api()...))
	s.RegisterRouteHandler("POST "+RouteTokenRefresh, ChainMiddleware(s.RefreshHandler(), api()...))
	s.RegisterRouteHandler("POST "+exact(RouteRegister), ChainMiddleware(s.RegisterHandler(), api()...))

	// PROFILE
	s.RegisterRouteHandler("GET "+exact(RouteUserProfile), ChainMiddleware(s.ProfileGetHandler(), authed()...))
	s.RegisterRouteHandler("PUT "+exact(RouteUserProfile), ChainMiddleware(s.ProfilePutHandler(), authed()...))
	s.RegisterRouteHandler("GET "+exact(RouteVendorProfile), ChainMiddleware(s.ProfileGetHandler(), authed(users.RoleVendor)...))
	s.RegisterRouteHandler("PUT "+exact(RouteVendorProfile), ChainMiddleware(s.ProfilePutHandler(), authed(users.RoleVendor)...))

	// ORDERS
	s.RegisterRouteHandler("GET "+exact(RouteOrders), ChainMiddleware(s.OrdersListHandler(), authed()...))
	s.RegisterRouteHandler("POST "+exact(RouteOrders), ChainMiddleware(s.OrderCreateHandler(), authed(users.RoleUser)...))
	s.RegisterRouteHandler("PATCH "+exact(RouteOrder), ChainMiddleware(s.OrderActionHandler(), authed(users.RoleVendor, users.RoleAdmin)...))
	s.RegisterRouteHandler("DELETE "+exact(RouteOrder), ChainMiddleware(s.OrderDeleteHandler(), authed()...))

	// ADMIN
	admin := authed(users.RoleAdmin)
	s.RegisterRouteHandler("GET "+exact(RouteAdminCollection), ChainMiddleware(s.AdminListHandler(), admin...))
	s.RegisterRouteHandler("POST "+exact(RouteAdminCollection), ChainMiddleware(s.AdminCreateHandler(), admin...))
	s.RegisterRouteHandler("POST "+exact(RouteAdminUpload), ChainMiddleware(s.AdminUploadHandler(), admin...))
	s.RegisterRouteHandler("GET "+exact(RouteAdminItem), ChainMiddleware(s.AdminGetHandler(), admin...))
	s.RegisterRouteHandler("PATCH "+exact(RouteAdminItem), ChainMiddleware(s.AdminUpdateHandler(), admin...))
	s.RegisterRouteHandler("DELETE "+exact(RouteAdminItem), ChainMiddleware(s.AdminDeleteHandler(), admin...))

	// VENDOR PRODUCTS
	vendor := authed(users.RoleVendor)
	s.RegisterRouteHandler("GET "+exact(RouteVendorProducts), ChainMiddleware(s.VendorProductsListHandler(), vendor...))
	s.RegisterRouteHandler("POST "+exact(RouteVendorProducts), ChainMiddleware(s.VendorProductCreateHandler(), vendor...))
	s.RegisterRouteHandler("GET "+exact(RouteVendorProduct), ChainMiddleware(s.VendorProductGetHandler(), vendor...))
	s.RegisterRouteHandler("PUT "+exact(RouteVendorProduct), ChainMiddleware(s.VendorProductReplaceHandler(), vendor...))
	s.RegisterRouteHandler("DELETE "+exact(RouteVendorProduct), ChainMiddleware(s.VendorProductDeleteHandler(), vendor...))

	// RECOMMENDER
	s.RegisterRouteHandler("POST "+exact(RouteUserPreference), ChainMiddleware(s.PreferenceHandler(), api()...))
	s.RegisterRouteHandler("POST "+exact(RouteRecommend), ChainMiddleware(s.RecommendHandler(), api()...))
	s.RegisterRouteHandler("GET "+exact(RouteRecommendProduct), ChainMiddleware(s.RecommendedProductsHandler(), api()...))
	s.RegisterRouteHandler("GET "+exact(RouteSuggestions), ChainMiddleware(s.SuggestionsHandler(), api()...))

	s.RegisterRouteHandler("/", ChainMiddleware(s.NotFoundHandler(), api()...))
}

package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Auth Routes
	RouteToken        = "/token/"
	RouteTokenRefresh = "/token/refresh"
	RouteRegister     = "/register/"

	// Profile Routes
	RouteUserProfile   = "/user/profile/"
	RouteVendorProfile = "/vendor/profile/"

	// Orders
	RouteOrders = "/orders/"
	RouteOrder  = "/orders/{id}/"

	// Admin Routes (generic per resource)
	RouteAdminCollection = "/admin/{resource}/"
	RouteAdminItem       = "/admin/{resource}/{id}/"
	RouteAdminUpload     = "/admin/{resource}/upload/"

	// Vendor product Routes
	RouteVendorProducts = "/vendor/products/"
	RouteVendorProduct  = "/vendor/products/{id}/"

	// Recommender Routes
	RouteUserPreference   = "/user_preference/"
	RouteRecommend        = "/recommend/"
	RouteRecommendProduct = "/recommend_product/"
	RouteSuggestions      = "/suggestions/"
)

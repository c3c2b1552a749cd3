package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/mangabrew/internal/config"
	"github.com/example/mangabrew/internal/handlers"
	"github.com/example/mangabrew/internal/middleware"
	"github.com/example/mangabrew/internal/repository"
	"github.com/example/mangabrew/internal/services"
	"github.com/example/mangabrew/internal/session"
)

// Dependencies are the outside collaborators the routes need besides the
// database.
type Dependencies struct {
	Config   *config.Config
	Sessions session.Store
	Mailer   services.Mailer
	Notifier services.OrderNotifier
	Storage  services.FileStorage
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, repos repository.Set, deps Dependencies) {
	cfg := deps.Config

	tokenService := services.NewTokenService(repos.Tx, repos.Tokens)
	limiter := services.NewRateLimiter(repos.LoginAttempts)
	authService := services.NewAuthService(repos.Users, tokenService, limiter, deps.Mailer, cfg.AppBaseURL)
	cartService := services.NewCartService(repos.Menu)
	checkoutService := services.NewCheckoutService(repos.Tx, repos.Menu, repos.Orders, deps.Notifier)
	rewardService := services.NewRewardService(repos.Tx, repos.Users, repos.Rewards)
	profileService := services.NewProfileService(repos.Users, repos.Orders, repos.Rewards, deps.Storage)
	reviewService := services.NewReviewService(repos.Reviews)
	libraryService := services.NewLibraryService(repos.Manga)

	socialService := services.NewSocialService(repos.Tx, repos.Users, repos.SocialLogins, cfg.StateSecret)
	socialService.Register(services.ProviderGoogle, services.GoogleProvider(
		cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.AppBaseURL+"/auth/google/callback"))
	socialService.Register(services.ProviderFacebook, services.FacebookProvider(
		cfg.FacebookClientID, cfg.FacebookClientSecret, cfg.AppBaseURL+"/auth/facebook/callback"))

	sessions := middleware.NewSessionManager(deps.Sessions, authService, cfg.SessionTTL, cfg.CookieSecure)

	authHandler := handlers.NewAuthHandler(authService, sessions)
	resetHandler := handlers.NewPasswordResetHandler(authService)
	socialHandler := handlers.NewSocialHandler(socialService)
	catalogHandler := handlers.NewCatalogHandler(cartService, libraryService)
	cartHandler := handlers.NewCartHandler(cartService)
	orderHandler := handlers.NewOrderHandler(checkoutService)
	profileHandler := handlers.NewProfileHandler(profileService, rewardService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	dashboardHandler := handlers.NewDashboardHandler(profileService)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Static("/uploads", cfg.UploadDir)

	app.Use(sessions.Handler())

	csrf := middleware.Guard(middleware.GuardConfig{CSRF: true})
	authed := middleware.Guard(middleware.GuardConfig{Auth: true})
	mutate := func(action, fallback string) fiber.Handler {
		return middleware.Guard(middleware.GuardConfig{Auth: true, CSRF: true, Action: action, Fallback: fallback})
	}
	mutateJSON := middleware.Guard(middleware.GuardConfig{Auth: true, CSRF: true, JSON: true})

	// Auth
	app.Get("/", authHandler.Home)
	app.Post("/login", csrf, authHandler.Login)
	app.Post("/signup", csrf, authHandler.Signup)
	app.Get("/logout", authHandler.Logout)
	app.Get("/forgot-password", resetHandler.ShowForgotPassword)
	app.Post("/forgot-password", middleware.Guard(middleware.GuardConfig{CSRF: true, Fallback: "/forgot-password"}), resetHandler.ForgotPassword)
	app.Get("/reset-password", resetHandler.ShowResetPassword)
	app.Post("/reset-password", middleware.Guard(middleware.GuardConfig{CSRF: true, Fallback: "/forgot-password"}), resetHandler.ResetPassword)
	app.Get("/verify-email", resetHandler.VerifyEmail)
	app.Get("/auth/:provider", socialHandler.Redirect)
	app.Get("/auth/:provider/callback", socialHandler.Callback)

	// Pages
	app.Get("/dashboard", authed, dashboardHandler.Dashboard)
	app.Get("/menu", authed, catalogHandler.Menu)
	app.Get("/library", authed, catalogHandler.Library)
	app.Get("/cart", authed, cartHandler.View)
	app.Get("/orders", authed, orderHandler.ListOrders)
	app.Get("/orders/:id", authed, orderHandler.GetOrder)
	app.Get("/profile", authed, profileHandler.GetProfile)
	app.Get("/reviews", authed, reviewHandler.List)

	// Cart and checkout
	app.Post("/menu/add-to-cart", mutate("add_to_cart", "/menu"), catalogHandler.AddToCart)
	app.Post("/cart/update-quantity",
		middleware.Guard(middleware.GuardConfig{Auth: true, CSRF: true, Action: "update_quantity", JSON: true}),
		cartHandler.UpdateQuantity)
	app.Post("/cart/remove-item", mutateJSON, cartHandler.RemoveItem)
	app.Post("/cart/clear", mutate("", "/cart"), cartHandler.Clear)
	app.Post("/checkout", mutate("", "/cart"), orderHandler.Checkout)

	// Profile and rewards
	app.Post("/profile/update", mutate("update_profile", "/profile"), profileHandler.UpdateProfile)
	app.Post("/profile/change-password", mutate("change_password", "/profile"), profileHandler.ChangePassword)
	app.Post("/profile/upload-avatar", mutate("upload_avatar", "/profile"), profileHandler.UploadAvatar)
	app.Post("/rewards/redeem", mutate("redeem_reward", "/profile"), profileHandler.RedeemReward)

	// Reviews
	app.Post("/reviews", mutate("", "/reviews"), reviewHandler.Post)
}

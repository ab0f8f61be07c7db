package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Rhuuuyyyy/mapa-sub000/internal/auth"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/httpserver/handlers"
	"github.com/Rhuuuyyyy/mapa-sub000/internal/storage"
)

func NewRouter(db *gorm.DB, store storage.ObjectStore, lg *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/api/admin/auth/login", handlers.Login(db, lg))
	r.Post("/api/admin/auth/setup-first-admin", handlers.SetupFirstAdmin(db, lg))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(db))

		protected.Get("/api/admin/me", handlers.Me(db, lg))
		protected.Post("/api/admin/auth/logout", handlers.Logout(db))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireAdmin())
			admin.Get("/api/admin/users", handlers.ListUsers(db, lg))
			admin.Post("/api/admin/users", handlers.CreateUser(db, lg))
			admin.Patch("/api/admin/users/{id}", handlers.UpdateUser(db, lg))
			admin.Delete("/api/admin/users/{id}", handlers.DeleteUser(db, lg))
		})

		protected.Get("/api/user/profile", handlers.GetProfile(db, lg))
		protected.Patch("/api/user/profile", handlers.UpdateProfile(db, lg))
		protected.Post("/api/user/change-password", handlers.ChangePassword(db, lg))
		protected.Get("/api/user/stats", handlers.Stats(db, lg))

		protected.Post("/api/user/companies", handlers.CreateCompany(db, lg))
		protected.Get("/api/user/companies", handlers.ListCompanies(db, lg))
		protected.Patch("/api/user/companies/{id}", handlers.UpdateCompany(db, lg))
		protected.Delete("/api/user/companies/{id}", handlers.DeleteCompany(db, lg))

		protected.Post("/api/user/products", handlers.CreateProduct(db, lg))
		protected.Get("/api/user/products", handlers.ListProducts(db, lg))
		protected.Patch("/api/user/products/{id}", handlers.UpdateProduct(db, lg))
		protected.Delete("/api/user/products/{id}", handlers.DeleteProduct(db, lg))

		protected.Get("/api/user/catalog", handlers.Catalog(db, lg))

		protected.Post("/api/user/upload", handlers.UploadXML(db, store, lg))
		protected.Get("/api/user/uploads", handlers.ListUploads(db, lg))
		protected.Patch("/api/user/uploads/{id}", handlers.UpdateUploadPeriod(db, lg))
		protected.Delete("/api/user/uploads/{id}", handlers.DeleteUpload(db, store, lg))

		protected.Post("/api/user/generate-report", handlers.GenerateReport(db, store, lg))
		protected.Get("/api/user/reports", handlers.ListReports(db, lg))
		protected.Delete("/api/user/reports/{id}", handlers.DeleteReport(db, lg))
		protected.Get("/api/user/reports/{period}/download", handlers.DownloadReport(db, store, lg))

		protected.Get("/api/user/logs", handlers.MyLogs(db, lg))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
